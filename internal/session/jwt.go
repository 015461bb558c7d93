// Package session проверяет сессии администраторов, выданные внешним сервисом аутентификации.
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidSession возвращается для отсутствующей, просроченной или поддельной сессии.
var ErrInvalidSession = errors.New("invalid session")

// Admin описывает пользователя, которому принадлежит сессия.
type Admin struct {
	ID    string
	Email string
}

// Verifier проверяет токен сессии.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Admin, error)
}

// Claims содержит утверждения токена доступа внешнего сервиса аутентификации.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// JWTVerifier проверяет токены HS256 общим секретом.
type JWTVerifier struct {
	secret   []byte
	audience string
}

// NewJWTVerifier создаёт проверку токенов. Пустая аудитория не проверяется.
func NewJWTVerifier(secret, audience string) *JWTVerifier {
	return &JWTVerifier{
		secret:   []byte(secret),
		audience: audience,
	}
}

// Verify проверяет подпись и срок действия токена.
func (v *JWTVerifier) Verify(_ context.Context, token string) (*Admin, error) {
	if token == "" {
		return nil, ErrInvalidSession
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil || !tkn.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidSession)
	}

	return &Admin{ID: claims.Subject, Email: claims.Email}, nil
}
