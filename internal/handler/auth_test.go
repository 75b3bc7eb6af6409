package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/andikasp/desa-wisata-api/internal/config"
	"github.com/andikasp/desa-wisata-api/internal/model"
	"github.com/andikasp/desa-wisata-api/internal/utils"
)

const testSecret = "unit-test-signing-secret"

// memUserStore is an in-memory UserStore for handler tests.
type memUserStore struct {
	users  map[string]model.User // keyed by email
	nextID uint64
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: map[string]model.User{}}
}

func (m *memUserStore) Exists(_ context.Context, email, username string) (bool, error) {
	for _, u := range m.users {
		if u.Email == email || u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (m *memUserStore) Create(_ context.Context, username, email, password, name string, cost int) (uint64, error) {
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	m.nextID++
	m.users[email] = model.User{
		ID:           m.nextID,
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Name:         name,
	}
	return m.nextID, nil
}

func (m *memUserStore) GetByEmail(_ context.Context, email string) (model.User, error) {
	u, ok := m.users[email]
	if !ok {
		return model.User{}, sql.ErrNoRows
	}
	return u, nil
}

func newAuthEcho(users UserStore) *echo.Echo {
	cfg := config.Config{JWTSecret: testSecret, AccessTTLMin: 60, BcryptCost: 4}
	h := NewAuthHandler(cfg, users)
	e := echo.New()
	e.POST("/api/auth/register", h.Register)
	e.POST("/api/auth/login", h.Login)
	return e
}

func postJSON(e *echo.Echo, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRegister(t *testing.T) {
	e := newAuthEcho(newMemUserStore())

	rec := postJSON(e, "/api/auth/register",
		`{"username":"alice","email":"a@x.com","password":"pw","name":"Alice"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body)
	}

	var resp struct {
		Token string `json:"token"`
		User  struct {
			ID       uint64 `json:"id"`
			Username string `json:"username"`
			Email    string `json:"email"`
		} `json:"user"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.User.Username != "alice" || resp.User.Email != "a@x.com" {
		t.Errorf("user = %+v", resp.User)
	}

	claims, err := utils.ParseAccessToken(testSecret, resp.Token)
	if err != nil {
		t.Fatalf("returned token does not verify: %v", err)
	}
	if claims.UserID != resp.User.ID {
		t.Errorf("token sub = %d, want %d", claims.UserID, resp.User.ID)
	}
	if claims.Username != "alice" {
		t.Errorf("token username = %q", claims.Username)
	}
}

func TestRegister_MissingFields(t *testing.T) {
	e := newAuthEcho(newMemUserStore())
	for _, body := range []string{
		`{"email":"a@x.com","password":"pw"}`,
		`{"username":"alice","password":"pw"}`,
		`{"username":"alice","email":"a@x.com"}`,
	} {
		if rec := postJSON(e, "/api/auth/register", body); rec.Code != http.StatusBadRequest {
			t.Errorf("register %s: status = %d, want 400", body, rec.Code)
		}
	}
}

func TestRegister_Conflict(t *testing.T) {
	e := newAuthEcho(newMemUserStore())

	if rec := postJSON(e, "/api/auth/register",
		`{"username":"alice","email":"a@x.com","password":"pw"}`); rec.Code != http.StatusCreated {
		t.Fatalf("first register: %d", rec.Code)
	}
	// Same username, different email.
	if rec := postJSON(e, "/api/auth/register",
		`{"username":"alice","email":"b@y.com","password":"pw2"}`); rec.Code != http.StatusConflict {
		t.Errorf("duplicate username: status = %d, want 409", rec.Code)
	}
	// Same email, different username.
	if rec := postJSON(e, "/api/auth/register",
		`{"username":"bob","email":"a@x.com","password":"pw2"}`); rec.Code != http.StatusConflict {
		t.Errorf("duplicate email: status = %d, want 409", rec.Code)
	}
}

func TestLogin(t *testing.T) {
	e := newAuthEcho(newMemUserStore())
	if rec := postJSON(e, "/api/auth/register",
		`{"username":"alice","email":"a@x.com","password":"pw"}`); rec.Code != http.StatusCreated {
		t.Fatalf("register: %d", rec.Code)
	}

	rec := postJSON(e, "/api/auth/login", `{"email":"a@x.com","password":"pw"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body)
	}
	var resp struct {
		Token string `json:"token"`
		User  struct {
			ID    uint64 `json:"id"`
			Email string `json:"email"`
		} `json:"user"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	claims, err := utils.ParseAccessToken(testSecret, resp.Token)
	if err != nil {
		t.Fatalf("token does not verify: %v", err)
	}
	if claims.UserID != resp.User.ID || claims.UserID == 0 {
		t.Errorf("token sub = %d, user id = %d", claims.UserID, resp.User.ID)
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	e := newAuthEcho(newMemUserStore())
	if rec := postJSON(e, "/api/auth/register",
		`{"username":"alice","email":"a@x.com","password":"pw"}`); rec.Code != http.StatusCreated {
		t.Fatalf("register: %d", rec.Code)
	}

	wrongPw := postJSON(e, "/api/auth/login", `{"email":"a@x.com","password":"wrong"}`)
	noUser := postJSON(e, "/api/auth/login", `{"email":"nobody@x.com","password":"pw"}`)

	if wrongPw.Code != http.StatusUnauthorized || noUser.Code != http.StatusUnauthorized {
		t.Fatalf("statuses = %d/%d, want 401/401", wrongPw.Code, noUser.Code)
	}
	// The two failures must be indistinguishable to the caller.
	if wrongPw.Body.String() != noUser.Body.String() {
		t.Errorf("wrong-password body %q differs from unknown-user body %q",
			wrongPw.Body, noUser.Body)
	}
}
