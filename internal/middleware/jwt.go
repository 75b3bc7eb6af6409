package middleware // middleware provides shared request processing for handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/andikasp/desa-wisata-api/internal/utils"
)

// JWTAuth returns an Echo middleware gating the mutating content endpoints.
// The header must be exactly `Authorization: Bearer <token>`; anything else
// counts as no token at all and answers 401.  A token that is present but
// fails verification (bad signature, malformed payload, expired) answers
// 403 — the body does not say which, only the server log can tell.  On
// success the identity claims are stored in the context under "user_id",
// "email" and "username".
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			claims, err := utils.ParseAccessToken(secret, raw)
			if err != nil {
				if errors.Is(err, utils.ErrTokenExpired) {
					c.Logger().Debugf("auth: expired token rejected")
				}
				return c.JSON(http.StatusForbidden, echo.Map{"message": "invalid or expired token"})
			}

			c.Set("user_id", claims.UserID)
			c.Set("email", claims.Email)
			c.Set("username", claims.Username)
			return next(c)
		}
	}
}
