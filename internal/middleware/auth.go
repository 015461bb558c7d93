// Package middleware содержит HTTP middleware витрины cheapplay.
package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/mmeshcher/cheapplay/internal/session"
)

type contextKey string

const adminKey contextKey = "admin"

// AccessTokenCookie задаёт имя cookie, в котором админ-панель хранит токен сессии.
const AccessTokenCookie = "access_token"

// AuthMiddleware пропускает к админским маршрутам только запросы с действующей сессией.
type AuthMiddleware struct {
	verifier session.Verifier
	allowed  map[string]struct{}
	logger   *zap.Logger
}

// NewAuthMiddleware создаёт проверку сессий. Пустой список адресов пускает любого
// пользователя с действующей сессией.
func NewAuthMiddleware(verifier session.Verifier, adminEmails []string, logger *zap.Logger) *AuthMiddleware {
	allowed := make(map[string]struct{}, len(adminEmails))
	for _, e := range adminEmails {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" {
			allowed[e] = struct{}{}
		}
	}

	return &AuthMiddleware{
		verifier: verifier,
		allowed:  allowed,
		logger:   logger,
	}
}

// Middleware проверяет токен из заголовка Authorization или cookie и кладёт администратора в контекст.
func (a *AuthMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := tokenFromRequest(r)
		if token == "" || a.verifier == nil {
			writeJSONError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		admin, err := a.verifier.Verify(r.Context(), token)
		if err != nil {
			if !errors.Is(err, session.ErrInvalidSession) {
				a.logger.Warn("session verification failed", zap.Error(err))
			}
			writeJSONError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		if !a.isAllowed(admin.Email) {
			writeJSONError(w, http.StatusForbidden, "forbidden")
			return
		}

		ctx := context.WithValue(r.Context(), adminKey, admin)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *AuthMiddleware) isAllowed(email string) bool {
	if len(a.allowed) == 0 {
		return true
	}
	_, ok := a.allowed[strings.ToLower(strings.TrimSpace(email))]
	return ok
}

func tokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if t, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(t)
		}
		return ""
	}

	if c, err := r.Cookie(AccessTokenCookie); err == nil {
		return c.Value
	}
	return ""
}

// AdminFromContext извлекает администратора из контекста запроса.
func AdminFromContext(ctx context.Context) (*session.Admin, bool) {
	admin, ok := ctx.Value(adminKey).(*session.Admin)
	return admin, ok
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":"` + msg + `"}`))
}
