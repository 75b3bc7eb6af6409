package utils // package utils provides helper functions for token creation and hashing

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5" // JWT library for creating and parsing signed tokens
)

// Token verification failures.  ErrTokenExpired covers a well-formed token
// whose exp claim has passed; ErrTokenInvalid covers everything else
// (malformed string, bad signature, wrong algorithm).  The middleware maps
// the two onto distinct status codes.
var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("invalid token")
)

// AccessToken represents a signed JWT access token along with its expiry.
// Access tokens are short-lived and sent in the Authorization header when
// calling protected endpoints.  There is no refresh lifecycle; expiry is the
// only control.
type AccessToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// Claims carries the identity encoded in an access token.  Username is empty
// on tokens issued by login, which binds only {sub, email}.
type Claims struct {
	UserID   uint64
	Email    string
	Username string
}

// NewAccessToken builds and signs an HS256 JWT for a user.  The JWT includes
// the subject (sub), email, optional username, expiration (exp) and issued
// at (iat) claims.  ttlMin is the token lifetime in minutes.
func NewAccessToken(secret string, userID uint64, email, username string, ttlMin int) (AccessToken, error) {
	now := time.Now().UTC()
	exp := now.Add(time.Duration(ttlMin) * time.Minute)
	claims := jwt.MapClaims{
		"sub":   userID,
		"email": email,
		"exp":   exp.Unix(),
		"iat":   now.Unix(),
	}
	if username != "" {
		claims["username"] = username
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// ParseAccessToken verifies the signature and expiry of a serialized token
// and returns its identity claims.  Expired tokens come back as
// ErrTokenExpired; any other failure is ErrTokenInvalid.
func ParseAccessToken(secret, raw string) (Claims, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		// Reject tokens signed with anything other than HMAC.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrTokenExpired
		}
		return Claims{}, ErrTokenInvalid
	}
	if !tok.Valid {
		return Claims{}, ErrTokenInvalid
	}
	mc, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrTokenInvalid
	}
	var out Claims
	// Numeric JSON claims decode as float64.
	if sub, ok := mc["sub"].(float64); ok {
		out.UserID = uint64(sub)
	} else {
		return Claims{}, ErrTokenInvalid
	}
	if v, ok := mc["email"].(string); ok {
		out.Email = v
	}
	if v, ok := mc["username"].(string); ok {
		out.Username = v
	}
	return out, nil
}
