package server

import (
	"context"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shindakun/orderdesk/internal/auth"
	"github.com/shindakun/orderdesk/internal/models"
	"github.com/shindakun/orderdesk/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunSessionSweeper(t *testing.T) {
	db, err := storage.InitDB(filepath.Join(t.TempDir(), "sweep.db"))
	require.NoError(t, err)
	defer db.Close()

	repo := storage.NewSQLiteSessions(db)
	sm := auth.NewSessionManager(testSecret, 60, false, http.SameSiteLaxMode, repo)

	now := time.Now().UTC()
	require.NoError(t, repo.Save(context.Background(), &models.Session{
		ID:        "stale",
		Username:  "validUser",
		CreatedAt: now.Add(-2 * time.Hour),
		ExpiresAt: now.Add(-time.Hour),
	}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		RunSessionSweeper(ctx, sm, 10*time.Millisecond, zerolog.Nop())
		close(done)
	}()

	assert.Eventually(t, func() bool {
		_, err := repo.Get(context.Background(), "stale")
		return err == storage.ErrNotFound
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	<-done
}
