package handlers

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"folio/internal/auth"
	"folio/internal/config"
	"folio/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/pquerna/otp/totp"
)

const (
	testPassword = "Str0ngPassw0rd"
	testJWTKey   = "test-secret-key-at-least-32-chars!!"
)

func newAuthApp(t *testing.T) (*fiber.App, *sql.DB, *config.Config) {
	t.Helper()
	conn := newTestDB(t)
	cfg := &config.Config{
		JWTSecret:      testJWTKey,
		JWTExpiryHours: 24,
		TOTPIssuer:     "folio-test",
	}

	if err := models.EnsureAdminExists(conn, "admin", testPassword); err != nil {
		t.Fatalf("EnsureAdminExists: %v", err)
	}

	lockout := auth.NewLockoutTracker(3, time.Minute)

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Post("/admin/login", LoginPost(conn, cfg, lockout))
	app.Post("/admin/login/totp", LoginTOTP(conn, cfg, lockout))

	protected := app.Group("/admin", auth.AuthMiddleware(cfg.JWTSecret, conn))
	protected.Post("/logout", Logout(conn))
	protected.Post("/password", ChangePassword(conn))
	protected.Get("/me", func(c *fiber.Ctx) error { return c.SendString("ok") })

	return app, conn, cfg
}

func cookieValue(resp *http.Response, name string) string {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

func TestLoginPost_WrongPassword(t *testing.T) {
	app, _, _ := newAuthApp(t)

	resp := postJSON(t, app, "/admin/login", `{"username":"admin","password":"nope"}`)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", resp.StatusCode)
	}
	if cookieValue(resp, "token") != "" {
		t.Error("expected no session cookie on failed login")
	}
}

func TestLoginPost_LockoutAfterRepeatedFailures(t *testing.T) {
	app, _, _ := newAuthApp(t)

	for i := 0; i < 3; i++ {
		resp := postJSON(t, app, "/admin/login", `{"username":"admin","password":"nope"}`)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("attempt %d: expected 401, got %d", i+1, resp.StatusCode)
		}
	}

	// Even the correct password is refused while locked out.
	resp := postJSON(t, app, "/admin/login", `{"username":"admin","password":"`+testPassword+`"}`)
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Errorf("expected 429 while locked, got %d", resp.StatusCode)
	}
}

func TestLoginPost_SuccessSetsSessionCookie(t *testing.T) {
	app, _, _ := newAuthApp(t)

	resp := postJSON(t, app, "/admin/login", `{"username":"admin","password":"`+testPassword+`"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	m := decodeJSON(t, resp)
	if m["success"] != true {
		t.Error("expected success true")
	}

	token := cookieValue(resp, "token")
	if token == "" {
		t.Fatal("expected a session cookie")
	}

	req := httptest.NewRequest(http.MethodGet, "/admin/me", nil)
	req.Header.Set("Cookie", "token="+token)
	authed, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if authed.StatusCode != http.StatusOK {
		t.Errorf("expected session cookie to grant access, got %d", authed.StatusCode)
	}
}

func TestLogin_TOTPFlow(t *testing.T) {
	app, conn, _ := newAuthApp(t)

	user, err := models.GetUserByUsername(conn, "admin")
	if err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	enrollment, err := auth.GenerateTOTPSecret("admin", "folio-test")
	if err != nil {
		t.Fatalf("GenerateTOTPSecret: %v", err)
	}
	if err := models.SetUserTOTPSecret(conn, user.ID, enrollment.Secret); err != nil {
		t.Fatalf("SetUserTOTPSecret: %v", err)
	}
	if err := models.EnableUserTOTP(conn, user.ID); err != nil {
		t.Fatalf("EnableUserTOTP: %v", err)
	}

	resp := postJSON(t, app, "/admin/login", `{"username":"admin","password":"`+testPassword+`"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	m := decodeJSON(t, resp)
	if m["totp_required"] != true {
		t.Fatal("expected totp_required true")
	}
	if cookieValue(resp, "token") != "" {
		t.Fatal("expected no session cookie before the TOTP step")
	}

	pending := cookieValue(resp, "totp_pending")
	if pending == "" {
		t.Fatal("expected a pending cookie")
	}

	// Wrong code is rejected.
	req := httptest.NewRequest(http.MethodPost, "/admin/login/totp", strings.NewReader(`{"code":"000000"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Cookie", "totp_pending="+pending)
	wrong, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if wrong.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for a wrong code, got %d", wrong.StatusCode)
	}

	code, err := totp.GenerateCode(enrollment.Secret, time.Now())
	if err != nil {
		t.Fatalf("GenerateCode: %v", err)
	}

	req = httptest.NewRequest(http.MethodPost, "/admin/login/totp", strings.NewReader(`{"code":"`+code+`"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Cookie", "totp_pending="+pending)
	good, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if good.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for a valid code, got %d", good.StatusCode)
	}
	if cookieValue(good, "token") == "" {
		t.Error("expected a session cookie after the TOTP step")
	}
}

func TestLogin_PendingCookieDoesNotGrantSession(t *testing.T) {
	app, conn, _ := newAuthApp(t)

	user, err := models.GetUserByUsername(conn, "admin")
	if err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	enrollment, err := auth.GenerateTOTPSecret("admin", "folio-test")
	if err != nil {
		t.Fatalf("GenerateTOTPSecret: %v", err)
	}
	if err := models.SetUserTOTPSecret(conn, user.ID, enrollment.Secret); err != nil {
		t.Fatalf("SetUserTOTPSecret: %v", err)
	}
	if err := models.EnableUserTOTP(conn, user.ID); err != nil {
		t.Fatalf("EnableUserTOTP: %v", err)
	}

	resp := postJSON(t, app, "/admin/login", `{"username":"admin","password":"`+testPassword+`"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	pending := cookieValue(resp, "totp_pending")
	if pending == "" {
		t.Fatal("expected a pending cookie")
	}

	// The pending cookie proves the password only. Presented as the session
	// cookie it must be refused, or the TOTP step could be skipped entirely.
	req := httptest.NewRequest(http.MethodGet, "/admin/me", nil)
	req.Header.Set("Cookie", "token="+pending)
	replay, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if replay.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for a pending token used as a session, got %d", replay.StatusCode)
	}
}

func TestLoginTOTP_WithoutPendingCookie(t *testing.T) {
	app, _, _ := newAuthApp(t)

	resp := postJSON(t, app, "/admin/login/totp", `{"code":"123456"}`)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 without a pending cookie, got %d", resp.StatusCode)
	}
}

func TestLogout_RevokesSession(t *testing.T) {
	app, _, _ := newAuthApp(t)

	login := postJSON(t, app, "/admin/login", `{"username":"admin","password":"`+testPassword+`"}`)
	token := cookieValue(login, "token")
	if token == "" {
		t.Fatal("expected a session cookie")
	}

	req := httptest.NewRequest(http.MethodPost, "/admin/logout", nil)
	req.Header.Set("Cookie", "token="+token)
	out, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if out.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from logout, got %d", out.StatusCode)
	}

	// The same token must be refused after logout.
	req = httptest.NewRequest(http.MethodGet, "/admin/me", nil)
	req.Header.Set("Cookie", "token="+token)
	replay, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if replay.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected revoked token to be refused, got %d", replay.StatusCode)
	}
}

func TestChangePassword(t *testing.T) {
	app, conn, _ := newAuthApp(t)

	login := postJSON(t, app, "/admin/login", `{"username":"admin","password":"`+testPassword+`"}`)
	token := cookieValue(login, "token")
	if token == "" {
		t.Fatal("expected a session cookie")
	}

	send := func(body string) *http.Response {
		req := httptest.NewRequest(http.MethodPost, "/admin/password", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Cookie", "token="+token)
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		return resp
	}

	if resp := send(`{"current_password":"wrong","new_password":"NewStr0ngPass"}`); resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for wrong current password, got %d", resp.StatusCode)
	}
	if resp := send(`{"current_password":"` + testPassword + `","new_password":"weak"}`); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for weak new password, got %d", resp.StatusCode)
	}
	if resp := send(`{"current_password":"` + testPassword + `","new_password":"NewStr0ngPass"}`); resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 for valid change, got %d", resp.StatusCode)
	}

	user, err := models.GetUserByUsername(conn, "admin")
	if err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	if !auth.CheckPassword(user.Password, "NewStr0ngPass") {
		t.Error("expected stored hash to match the new password")
	}
	if auth.CheckPassword(user.Password, testPassword) {
		t.Error("expected stored hash to no longer match the old password")
	}
}
