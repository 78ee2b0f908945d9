// Package auth — вход через Google ID-токен и собственные JWT-сессии.
package auth

import (
	googleAuthIDTokenVerifier "github.com/futurenda/google-auth-id-token-verifier"

	"github.com/hearthside/homeschool-hub/internal/apperr"
)

// GoogleProfile — подтверждённая личность из ID-токена.
type GoogleProfile struct {
	Sub     string
	Email   string
	Name    string
	Picture string
}

// TokenVerifier отделён интерфейсом, чтобы тесты входа не ходили в Google.
type TokenVerifier interface {
	Verify(idToken string) (*GoogleProfile, error)
}

type GoogleVerifier struct {
	ClientID string
}

func (v *GoogleVerifier) Verify(idToken string) (*GoogleProfile, error) {
	ver := googleAuthIDTokenVerifier.Verifier{}
	if err := ver.VerifyIDToken(idToken, []string{v.ClientID}); err != nil {
		return nil, apperr.Wrap(apperr.Unauthenticated, "invalid Google ID token", err)
	}
	claims, err := googleAuthIDTokenVerifier.Decode(idToken)
	if err != nil {
		return nil, apperr.Wrap(apperr.Unauthenticated, "failed to decode ID token", err)
	}
	return &GoogleProfile{
		Sub:     claims.Sub,
		Email:   claims.Email,
		Name:    claims.Name,
		Picture: claims.Picture,
	}, nil
}
