package utils

import (
	"errors"
	"testing"
	"time"
)

const testSecret = "test-secret-used-only-in-tests"

func TestAccessTokenRoundTrip(t *testing.T) {
	tok, err := NewAccessToken(testSecret, 42, "alice@example.com", "alice", 60)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}
	if tok.Token == "" {
		t.Fatal("empty token string")
	}
	if !tok.Exp.After(time.Now().UTC().Add(59 * time.Minute)) {
		t.Errorf("expiry %v not ~60m out", tok.Exp)
	}

	claims, err := ParseAccessToken(testSecret, tok.Token)
	if err != nil {
		t.Fatalf("ParseAccessToken: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("UserID = %d, want 42", claims.UserID)
	}
	if claims.Email != "alice@example.com" {
		t.Errorf("Email = %q", claims.Email)
	}
	if claims.Username != "alice" {
		t.Errorf("Username = %q", claims.Username)
	}
}

func TestAccessTokenWithoutUsername(t *testing.T) {
	tok, err := NewAccessToken(testSecret, 7, "bob@example.com", "", 60)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}
	claims, err := ParseAccessToken(testSecret, tok.Token)
	if err != nil {
		t.Fatalf("ParseAccessToken: %v", err)
	}
	if claims.Username != "" {
		t.Errorf("Username = %q, want empty", claims.Username)
	}
}

func TestParseAccessToken_Expired(t *testing.T) {
	tok, err := NewAccessToken(testSecret, 1, "a@b.c", "", -5)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}
	_, err = ParseAccessToken(testSecret, tok.Token)
	if !errors.Is(err, ErrTokenExpired) {
		t.Errorf("err = %v, want ErrTokenExpired", err)
	}
}

func TestParseAccessToken_WrongSecret(t *testing.T) {
	tok, err := NewAccessToken(testSecret, 1, "a@b.c", "", 60)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}
	_, err = ParseAccessToken("another-secret", tok.Token)
	if !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("err = %v, want ErrTokenInvalid", err)
	}
}

func TestParseAccessToken_Garbage(t *testing.T) {
	for _, raw := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, err := ParseAccessToken(testSecret, raw); !errors.Is(err, ErrTokenInvalid) {
			t.Errorf("ParseAccessToken(%q) err = %v, want ErrTokenInvalid", raw, err)
		}
	}
}
