package auth

import (
	"errors"
	"net/http"

	dto "github.com/dropDatabas3/wahlbot/internal/http/dto/auth"
	httperrors "github.com/dropDatabas3/wahlbot/internal/http/errors"
	"github.com/dropDatabas3/wahlbot/internal/http/helpers"
	mw "github.com/dropDatabas3/wahlbot/internal/http/middlewares"
	svc "github.com/dropDatabas3/wahlbot/internal/http/services/auth"
	"github.com/dropDatabas3/wahlbot/internal/observability/logger"
)

// LogoutController maneja POST /auth/logout y POST /auth/logout-all.
type LogoutController struct {
	service svc.SessionService
	cookies cookies
}

func NewLogoutController(service svc.SessionService, c cookies) *LogoutController {
	return &LogoutController{service: service, cookies: c}
}

// Logout revoca el refresh token de la cookie. A diferencia de refresh,
// un token ausente o inválido es 400.
func (c *LogoutController) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("LogoutController.Logout"))

	if err := c.service.Logout(ctx, c.cookies.read(r)); err != nil {
		switch {
		case errors.Is(err, svc.ErrMissingRefreshToken):
			httperrors.WriteError(w, httperrors.ErrTokenMissing.WithStatus(http.StatusBadRequest))
		case errors.Is(err, svc.ErrInvalidRefreshToken):
			httperrors.WriteError(w, httperrors.ErrTokenInvalid.WithStatus(http.StatusBadRequest))
		default:
			log.Error("logout failed", logger.Err(err))
			httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
		}
		return
	}

	c.cookies.clear(w, r)
	helpers.WriteJSON(w, http.StatusOK, dto.MessageResponse{Message: "Successfully logged out"})
}

// LogoutAll revoca todas las sesiones del principal autenticado.
func (c *LogoutController) LogoutAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("LogoutController.LogoutAll"))

	p := mw.MustPrincipal(ctx)
	if _, err := c.service.LogoutAll(ctx, p); err != nil {
		log.Error("logout-all failed", logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.MessageResponse{Message: "Successfully logged out from all devices"})
}
