package auth_test

import (
	"testing"
	"time"

	"github.com/hearthside/homeschool-hub/internal/apperr"
	"github.com/hearthside/homeschool-hub/internal/auth"
)

func TestToken_RoundTrip(t *testing.T) {
	m := auth.NewManager("secret", time.Hour)

	token, err := m.GenerateToken("u1", "teacher@example.com")
	if err != nil {
		t.Fatal(err)
	}
	claims, err := m.ParseToken(token)
	if err != nil {
		t.Fatal(err)
	}
	if claims.UserID != "u1" || claims.Email != "teacher@example.com" {
		t.Fatalf("получили %#v", claims)
	}
}

func TestToken_Expired(t *testing.T) {
	m := auth.NewManager("secret", -time.Minute)

	token, err := m.GenerateToken("u1", "teacher@example.com")
	if err != nil {
		t.Fatal(err)
	}
	_, err = m.ParseToken(token)
	if !apperr.IsKind(err, apperr.Unauthenticated) {
		t.Fatalf("ожидали unauthenticated, получили %v", err)
	}
}

func TestToken_WrongSecret(t *testing.T) {
	m := auth.NewManager("secret", time.Hour)
	other := auth.NewManager("other-secret", time.Hour)

	token, err := m.GenerateToken("u1", "teacher@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := other.ParseToken(token); !apperr.IsKind(err, apperr.Unauthenticated) {
		t.Fatalf("ожидали unauthenticated, получили %v", err)
	}
}

func TestToken_Garbage(t *testing.T) {
	m := auth.NewManager("secret", time.Hour)
	if _, err := m.ParseToken("not-a-token"); !apperr.IsKind(err, apperr.Unauthenticated) {
		t.Fatalf("ожидали unauthenticated, получили %v", err)
	}
}
