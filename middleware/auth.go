package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/Dosada05/club-engine/models"
	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

type contextKey string

const staffContextKey contextKey = "staff"

// Заголовок с PIN терминала регистрации.
const terminalPINHeader = "X-Terminal-Pin"

// Authenticator проверяет JWT, выданные внешним сервисом аутентификации.
// Движок токены не выпускает — только валидирует.
type Authenticator struct {
	secret []byte
}

func NewAuthenticator(secret string) *Authenticator {
	return &Authenticator{secret: []byte(secret)}
}

func (a *Authenticator) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		tokenString := strings.TrimPrefix(header, "Bearer ")

		claims := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return a.secret, nil
		})
		if err != nil || !token.Valid {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), staffContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Authorize пропускает только перечисленные роли персонала.
func Authorize(roles ...models.StaffRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, err := GetStaffRoleFromContext(r.Context())
			if err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			for _, allowed := range roles {
				if role == allowed {
					next.ServeHTTP(w, r)
					return
				}
			}
			http.Error(w, "Forbidden", http.StatusForbidden)
		})
	}
}

// RequireTerminalPIN дополнительно проверяет PIN терминала регистрации.
// В конфигурации хранится только bcrypt-хеш PIN.
func RequireTerminalPIN(pinHash string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if pinHash == "" {
				// PIN не настроен — достаточно JWT.
				next.ServeHTTP(w, r)
				return
			}
			pin := r.Header.Get(terminalPINHeader)
			if pin == "" || bcrypt.CompareHashAndPassword([]byte(pinHash), []byte(pin)) != nil {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
