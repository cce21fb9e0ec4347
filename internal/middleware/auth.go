package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

type contextKey string

const principalKey contextKey = "principal"

// Claims are the JWT claims accepted by the API. Authorities holds role
// names such as ROLE_ADMIN.
type Claims struct {
	Authorities []string `json:"authorities"`
	jwt.RegisteredClaims
}

// Principal is the authenticated caller of a request
type Principal struct {
	Subject     string
	Authorities []string
}

// HasAnyAuthority reports whether the principal holds one of authorities
func (p Principal) HasAnyAuthority(authorities ...string) bool {
	for _, held := range p.Authorities {
		for _, wanted := range authorities {
			if held == wanted {
				return true
			}
		}
	}
	return false
}

// AuthMiddleware validates bearer tokens signed with HS256 and stores the
// caller's Principal in the request context
func AuthMiddleware(jwtSecret string, logger *zap.Logger) func(http.Handler) http.Handler {
	keyFunc := func(token *jwt.Token) (interface{}, error) {
		return []byte(jwtSecret), nil
	}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Debug("Missing authorization header")
				RespondWithError(w, r, http.StatusUnauthorized, "missing authorization header")
				return
			}

			scheme, tokenString, found := strings.Cut(authHeader, " ")
			if !found || !strings.EqualFold(scheme, "Bearer") || tokenString == "" {
				logger.Debug("Invalid authorization header format")
				RespondWithError(w, r, http.StatusUnauthorized, "invalid authorization header format")
				return
			}

			claims := &Claims{}
			token, err := parser.ParseWithClaims(tokenString, claims, keyFunc)
			if err != nil {
				logger.Debug("Token validation failed", zap.Error(err))
				if errors.Is(err, jwt.ErrTokenExpired) {
					RespondWithError(w, r, http.StatusUnauthorized, "token expired")
				} else {
					RespondWithError(w, r, http.StatusUnauthorized, "invalid token")
				}
				return
			}

			if !token.Valid || claims.Subject == "" {
				logger.Debug("Token without subject")
				RespondWithError(w, r, http.StatusUnauthorized, "invalid token claims")
				return
			}

			principal := Principal{
				Subject:     claims.Subject,
				Authorities: claims.Authorities,
			}

			logger.Debug("Caller authenticated",
				zap.String("subject", principal.Subject),
				zap.Strings("authorities", principal.Authorities),
			)

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
		})
	}
}

// WithPrincipal stores principal in ctx
func WithPrincipal(ctx context.Context, principal Principal) context.Context {
	return context.WithValue(ctx, principalKey, principal)
}

// GetPrincipal extracts the authenticated caller from ctx
func GetPrincipal(ctx context.Context) (Principal, bool) {
	principal, ok := ctx.Value(principalKey).(Principal)
	return principal, ok
}
