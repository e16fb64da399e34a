package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shindakun/orderdesk/internal/auth"
	"github.com/shindakun/orderdesk/internal/config"
	"github.com/shindakun/orderdesk/internal/logger"
	"github.com/shindakun/orderdesk/internal/server"
	"github.com/shindakun/orderdesk/internal/storage"
	"github.com/shindakun/orderdesk/internal/version"
)

const usage = `usage:
  orderdesk                              run the web server
  orderdesk useradd <username> <password> provision a local user
  orderdesk version                      print the build version`

func main() {
	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config.yaml"
	}

	args := os.Args[1:]
	if len(args) > 0 && args[0] == "version" {
		fmt.Println(version.GetFullVersion())
		return
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Options{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})

	db, err := storage.InitDB(cfg.Database.Path)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.Database.Path).Msg("failed to initialize database")
	}
	defer db.Close()

	switch {
	case len(args) == 0:
		err = serve(cfg, db, log)
	case args[0] == "useradd" && len(args) == 3:
		err = userAdd(db, args[1], args[2], log)
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		log.Error().Err(err).Msg("exiting")
		db.Close()
		os.Exit(1)
	}
}

func userAdd(db *sql.DB, username, password string, log zerolog.Logger) error {
	user, err := auth.AddUser(context.Background(), db, username, password)
	if err != nil {
		return err
	}
	log.Info().Str("user", user.Username).Str("id", user.ID).Msg("user created")
	return nil
}

func serve(cfg *config.Config, db *sql.DB, log zerolog.Logger) error {
	log.Info().Str("version", version.GetFullVersion()).Msg("starting orderdesk")

	repo, closeRepo, err := sessionRepository(cfg, db)
	if err != nil {
		return err
	}
	defer closeRepo()

	sessions := auth.NewSessionManager(cfg.Session.Secret, cfg.Session.MaxAge, cfg.CookieSecure(), cfg.CookieSameSite(), repo)
	log.Info().Str("backend", cfg.Session.Backend).Msg("session manager initialized")

	var authenticator auth.Authenticator
	switch cfg.Auth.Mode {
	case "remote":
		authenticator = auth.NewRemoteAuthenticator(cfg.Auth.RemoteURL, cfg.Auth.Timeout)
		log.Info().Str("url", cfg.Auth.RemoteURL).Msg("using remote authentication")
	default:
		authenticator = auth.NewLocalAuthenticator(db)
		log.Info().Msg("using local authentication")
	}

	router, err := server.NewRouter(server.Deps{
		Config:        cfg,
		Sessions:      sessions,
		Authenticator: authenticator,
		Logger:        log,
		Version:       version.GetVersion(),
	})
	if err != nil {
		return fmt.Errorf("failed to build router: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go server.RunSessionSweeper(ctx, sessions, 15*time.Minute, log)

	srv := server.NewHTTPServer(cfg, router)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.GetAddr()).Str("base_url", cfg.GetBaseURL()).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info().Msg("server exited")
	return nil
}

// sessionRepository picks the session store configured in session.backend
func sessionRepository(cfg *config.Config, db *sql.DB) (auth.SessionRepository, func(), error) {
	if cfg.Session.Backend != "redis" {
		return storage.NewSQLiteSessions(db), func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Redis.Addr, err)
	}

	return storage.NewRedisSessions(client), func() { client.Close() }, nil
}
