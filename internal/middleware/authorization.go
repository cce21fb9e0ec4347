package middleware

import (
	"net/http"

	"go.uber.org/zap"
)

const RoleAdmin = "ROLE_ADMIN"

// RequireAnyRole lets the request through when the authenticated principal
// holds at least one of roles. It must run after AuthMiddleware.
func RequireAnyRole(logger *zap.Logger, roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := GetPrincipal(r.Context())
			if !ok {
				logger.Warn("Principal not found in context")
				RespondWithError(w, r, http.StatusForbidden, "insufficient permissions")
				return
			}

			if !principal.HasAnyAuthority(roles...) {
				logger.Warn("Caller lacks required role",
					zap.String("subject", principal.Subject),
					zap.Strings("authorities", principal.Authorities),
					zap.Strings("required", roles),
				)
				RespondWithError(w, r, http.StatusForbidden, "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
