package middleware

import (
	"errors"
	"net/http"
	"strings"

	"seat-reservation/pkg/utils"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// Identity verifies the HS256 bearer token issued by the identity provider and
// stores its subject in the request context. The subject is used as-is.
func Identity(secret string, logger *zap.Logger) func(http.Handler) http.Handler {
	key := []byte(secret)
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				utils.ResponseUnauthorized(w, "Missing authorization token")
				return
			}

			raw, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || raw == "" {
				utils.ResponseUnauthorized(w, "Invalid token format. Use: Bearer <token>")
				return
			}

			var claims jwt.RegisteredClaims
			_, err := parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
				return key, nil
			})
			if err != nil {
				msg := "Invalid token"
				if errors.Is(err, jwt.ErrTokenExpired) {
					msg = "Token expired"
				}
				logger.Warn("Rejected bearer token", zap.String("path", r.URL.Path), zap.Error(err))
				utils.ResponseUnauthorized(w, msg)
				return
			}

			subject := strings.TrimSpace(claims.Subject)
			if subject == "" {
				utils.ResponseUnauthorized(w, "Token has no subject")
				return
			}

			next.ServeHTTP(w, r.WithContext(utils.SetIdentityContext(r.Context(), subject)))
		})
	}
}
