package handler

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/andikasp/desa-wisata-api/internal/config"
	"github.com/andikasp/desa-wisata-api/internal/model"
	"github.com/andikasp/desa-wisata-api/internal/repository"
	"github.com/andikasp/desa-wisata-api/internal/utils"
)

// UserStore is the credential-store surface the auth endpoints need.  The
// concrete implementation is repository.UserRepo; tests substitute an
// in-memory fake.
type UserStore interface {
	Exists(ctx context.Context, email, username string) (bool, error)
	Create(ctx context.Context, username, email, password, name string, cost int) (uint64, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
}

// AuthHandler bundles dependencies for the auth endpoints.
type AuthHandler struct {
	Cfg   config.Config
	Users UserStore
}

func NewAuthHandler(cfg config.Config, users UserStore) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: users}
}

// ----- DTOs -----

type registerReq struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register: create user and return a token immediately.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request body"})
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "username, email and password are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	taken, err := h.Users.Exists(ctx, req.Email, req.Username)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "registration failed"})
	}
	if taken {
		return c.JSON(http.StatusConflict, echo.Map{"message": "username or email already in use"})
	}

	uid, err := h.Users.Create(ctx, req.Username, req.Email, req.Password, req.Name, h.Cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrUserExists) {
			return c.JSON(http.StatusConflict, echo.Map{"message": "username or email already in use"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "registration failed"})
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, uid, req.Email, req.Username, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "registration failed"})
	}

	log.Printf("auth: registered user %s", req.Username)
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "registration successful",
		"token":   access.Token,
		"user": echo.Map{
			"id":       uid,
			"username": req.Username,
			"email":    req.Email,
			"name":     req.Name,
		},
	})
}

// Login: verify credentials and return a token.  Unknown email and wrong
// password answer with the same message so callers cannot probe which
// accounts exist.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "email and password are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"message": "invalid email or password"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "login failed"})
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "invalid email or password"})
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Email, "", h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "login failed"})
	}

	log.Printf("auth: user %s logged in", u.Username)
	return c.JSON(http.StatusOK, echo.Map{
		"token": access.Token,
		"user": echo.Map{
			"id":    u.ID,
			"email": u.Email,
		},
	})
}
