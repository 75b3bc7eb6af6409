package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/andikasp/desa-wisata-api/internal/utils"
)

const testSecret = "middleware-test-secret"

func newProtectedEcho() *echo.Echo {
	e := echo.New()
	e.GET("/protected", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{
			"user_id": c.Get("user_id"),
			"email":   c.Get("email"),
		})
	}, JWTAuth(testSecret))
	return e
}

func get(e *echo.Echo, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestJWTAuth_NoToken(t *testing.T) {
	e := newProtectedEcho()
	for name, header := range map[string]string{
		"absent header":    "",
		"wrong scheme":     "Basic abc123",
		"bare token":       "sometoken",
		"lowercase bearer": "bearer sometoken",
	} {
		if rec := get(e, header); rec.Code != http.StatusUnauthorized {
			t.Errorf("%s: status = %d, want 401", name, rec.Code)
		}
	}
}

func TestJWTAuth_InvalidToken(t *testing.T) {
	e := newProtectedEcho()
	if rec := get(e, "Bearer not.a.token"); rec.Code != http.StatusForbidden {
		t.Errorf("garbage token: status = %d, want 403", rec.Code)
	}

	// Signed with a different secret.
	tok, err := utils.NewAccessToken("other-secret", 1, "a@b.c", "", 60)
	if err != nil {
		t.Fatal(err)
	}
	if rec := get(e, "Bearer "+tok.Token); rec.Code != http.StatusForbidden {
		t.Errorf("foreign signature: status = %d, want 403", rec.Code)
	}
}

func TestJWTAuth_ExpiredToken(t *testing.T) {
	e := newProtectedEcho()
	tok, err := utils.NewAccessToken(testSecret, 1, "a@b.c", "", -10)
	if err != nil {
		t.Fatal(err)
	}
	if rec := get(e, "Bearer "+tok.Token); rec.Code != http.StatusForbidden {
		t.Errorf("expired token: status = %d, want 403", rec.Code)
	}
}

func TestJWTAuth_ValidToken(t *testing.T) {
	e := newProtectedEcho()
	tok, err := utils.NewAccessToken(testSecret, 42, "alice@example.com", "alice", 60)
	if err != nil {
		t.Fatal(err)
	}
	rec := get(e, "Bearer "+tok.Token)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `"user_id":42`) || !strings.Contains(body, `"email":"alice@example.com"`) {
		t.Errorf("claims not attached to context: %s", body)
	}
}
