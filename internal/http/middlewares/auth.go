package middlewares

import (
	"errors"
	"net/http"
	"strings"

	httperrors "github.com/dropDatabas3/wahlbot/internal/http/errors"
	svcauth "github.com/dropDatabas3/wahlbot/internal/http/services/auth"
	"github.com/dropDatabas3/wahlbot/internal/observability/logger"
)

// BearerToken extrae el token de "Authorization: Bearer <token>".
func BearerToken(r *http.Request) string {
	ah := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(ah) < 7 || !strings.EqualFold(ah[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(ah[7:])
}

// RequireUser valida el access token con el Gate y deja el principal en el
// contexto. Token ausente o inválido: 401; principal deshabilitado: 400.
func RequireUser(gate svcauth.Gate) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, err := gate.Authenticate(r.Context(), BearerToken(r))
			if err != nil {
				log := logger.From(r.Context())
				switch {
				case errors.Is(err, svcauth.ErrInvalidToken):
					log.Debug("bearer rejected", logger.Err(err))
					httperrors.WriteError(w, httperrors.ErrUnauthorized)
				case errors.Is(err, svcauth.ErrInactivePrincipal):
					httperrors.WriteError(w, httperrors.ErrInactiveUser)
				default:
					log.Error("gate failed", logger.Err(err))
					httperrors.WriteError(w, httperrors.ErrInternalServerError)
				}
				return
			}

			ctx := WithPrincipal(r.Context(), p)
			ctx = logger.ToContext(ctx, logger.From(ctx).With(logger.UserID(p.ID)))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
