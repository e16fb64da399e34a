package models

// LoginPageData represents the data passed to the login template for rendering.
type LoginPageData struct {
	// Title is the page title displayed in the browser tab and page header
	Title string

	// FormID identifies the server-side form instance this page belongs to.
	FormID string

	// Username and Password repopulate the inputs after a failed attempt or a
	// visibility toggle so the user does not have to re-type them.
	Username string
	Password string

	// PasswordInputType is "password" while masked and "text" while visible.
	PasswordInputType string

	// ToggleLabel is the visibility button text: "show" while masked, "hide" while visible.
	ToggleLabel string

	// Error is the failure reason from the last submission, shown verbatim.
	// Empty string means no error.
	Error string
}

// OrdersPageData is rendered on the post-login destination
type OrdersPageData struct {
	Username     string
	SignedInAgo  string
	SessionUntil string
}
