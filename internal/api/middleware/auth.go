package middleware

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-VetBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-VetBookingService/internal/domain"
)

const (
	msgMissingToken = "требуется авторизация"
	msgInvalidToken = "недействительный токен"
	msgForbidden    = "недостаточно прав"
)

// Auth проверяет заголовок Authorization: Bearer <token> и кладёт вызывающего в контекст
func Auth(parser TokenParser, logger Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				handlers.RespondUnauthorized(w, msgMissingToken)
				return
			}

			scheme, token, found := strings.Cut(header, " ")
			token = strings.TrimSpace(token)
			if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
				logger.Warn("%s %s - malformed Authorization header", r.Method, r.URL.Path)
				handlers.RespondUnauthorized(w, msgInvalidToken)
				return
			}

			principal, err := parser.ParseToken(token)
			if err != nil {
				logger.Warn("%s %s - token rejected: %v", r.Method, r.URL.Path, err)
				handlers.RespondUnauthorized(w, msgInvalidToken)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
		})
	}
}

// RequireRoles пропускает вызывающего, если у него есть хотя бы одна из ролей.
// Должен стоять после Auth.
func RequireRoles(roles ...domain.Role) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := PrincipalFromContext(r.Context())
			if !ok {
				handlers.RespondUnauthorized(w, msgMissingToken)
				return
			}
			if !principal.Roles.HasAny(roles...) {
				handlers.RespondForbidden(w, msgForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
