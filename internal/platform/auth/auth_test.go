package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func signToken(t *testing.T, secret string, claims Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func runRequest(mw echo.MiddlewareFunc, authorization string) (*httptest.ResponseRecorder, error) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	handler := mw(func(c echo.Context) error {
		return c.String(http.StatusOK, SubjectFromContext(c.Request().Context()))
	})
	return rec, handler(c)
}

func TestJWTMiddleware_ValidToken(t *testing.T) {
	claims := Claims{
		Roles: []string{"nurse"},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	rec, err := runRequest(JWTMiddleware(Config{Secret: testSecret}), "Bearer "+signToken(t, testSecret, claims))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Body.String() != "user-1" {
		t.Errorf("expected subject user-1, got %q", rec.Body.String())
	}
}

func TestJWTMiddleware_MissingToken(t *testing.T) {
	_, err := runRequest(JWTMiddleware(Config{Secret: testSecret}), "")
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestJWTMiddleware_WrongSecret(t *testing.T) {
	claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	_, err := runRequest(JWTMiddleware(Config{Secret: testSecret}), "Bearer "+signToken(t, "another-secret-another-secret-xx", claims))
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestJWTMiddleware_ExpiredToken(t *testing.T) {
	claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	}}
	_, err := runRequest(JWTMiddleware(Config{Secret: testSecret}), "Bearer "+signToken(t, testSecret, claims))
	if err == nil {
		t.Fatal("expected error for expired token")
	}
}

func TestJWTMiddleware_IssuerChecked(t *testing.T) {
	claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "user-1",
		Issuer:    "other",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	mw := JWTMiddleware(Config{Secret: testSecret, Issuer: "vigia"})
	_, err := runRequest(mw, "Bearer "+signToken(t, testSecret, claims))
	if err == nil {
		t.Fatal("expected error for wrong issuer")
	}
}

func TestRequireRole(t *testing.T) {
	e := echo.New()
	ok := func(c echo.Context) error { return c.NoContent(http.StatusOK) }

	run := func(roles []string) error {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		chain := DevAuthMiddleware()
		if roles != nil {
			chain = func(next echo.HandlerFunc) echo.HandlerFunc {
				return JWTMiddleware(Config{Secret: testSecret})(next)
			}
			token := signToken(t, testSecret, Claims{
				Roles: roles,
				RegisteredClaims: jwt.RegisteredClaims{
					Subject:   "u",
					ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
				},
			})
			req.Header.Set("Authorization", "Bearer "+token)
		}
		return chain(RequireRole("physician")(ok))(c)
	}

	if err := run(nil); err != nil {
		t.Errorf("dev auth (admin) must pass any role gate: %v", err)
	}
	if err := run([]string{"physician"}); err != nil {
		t.Errorf("matching role must pass: %v", err)
	}
	err := run([]string{"nurse"})
	httpErr, ok2 := err.(*echo.HTTPError)
	if !ok2 || httpErr.Code != http.StatusForbidden {
		t.Errorf("expected 403 for missing role, got %v", err)
	}
}
