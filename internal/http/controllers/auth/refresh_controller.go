package auth

import (
	"errors"
	"net/http"

	dto "github.com/dropDatabas3/wahlbot/internal/http/dto/auth"
	httperrors "github.com/dropDatabas3/wahlbot/internal/http/errors"
	"github.com/dropDatabas3/wahlbot/internal/http/helpers"
	svc "github.com/dropDatabas3/wahlbot/internal/http/services/auth"
	"github.com/dropDatabas3/wahlbot/internal/observability/logger"
)

// RefreshController maneja POST /auth/refresh.
type RefreshController struct {
	service svc.SessionService
	cookies cookies
}

func NewRefreshController(service svc.SessionService, c cookies) *RefreshController {
	return &RefreshController{service: service, cookies: c}
}

// Refresh rota el refresh token de la cookie y devuelve un access token nuevo.
func (c *RefreshController) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("RefreshController.Refresh"))

	pair, err := c.service.Refresh(ctx, c.cookies.read(r), requestMeta(r))
	if err != nil {
		switch {
		case errors.Is(err, svc.ErrMissingRefreshToken):
			httperrors.WriteError(w, httperrors.ErrTokenMissing)
		case errors.Is(err, svc.ErrInvalidRefreshToken):
			httperrors.WriteError(w, httperrors.ErrTokenInvalid)
		default:
			log.Error("refresh failed", logger.Err(err))
			httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
		}
		return
	}

	c.cookies.set(w, r, pair.RefreshToken)
	helpers.WriteJSON(w, http.StatusOK, dto.TokenResponse{AccessToken: pair.AccessToken, TokenType: "bearer"})
}
