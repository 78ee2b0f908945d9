package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/hearthside/homeschool-hub/internal/apperr"
)

type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// Manager подписывает и проверяет сессионные токены. Роль в токен не
// кладётся: ролевые множества изменяемы, поэтому они перечитываются из
// хранилища на каждый запрос.
type Manager struct {
	secretKey []byte
	lifetime  time.Duration
}

func NewManager(secretKey string, lifetime time.Duration) *Manager {
	return &Manager{secretKey: []byte(secretKey), lifetime: lifetime}
}

func (m *Manager) GenerateToken(userID, email string) (string, error) {
	claims := &Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(m.lifetime)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ID:        uuid.New().String(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secretKey)
}

func (m *Manager) ParseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apperr.Newf(apperr.Unauthenticated, "unexpected signing method %v", token.Header["alg"])
		}
		return m.secretKey, nil
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.Unauthenticated, "invalid session token", err)
	}
	if !token.Valid {
		return nil, apperr.New(apperr.Unauthenticated, "invalid session token")
	}
	return claims, nil
}
