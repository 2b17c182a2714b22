package auth

import (
	"net/http"

	dto "github.com/dropDatabas3/wahlbot/internal/http/dto/auth"
	httperrors "github.com/dropDatabas3/wahlbot/internal/http/errors"
	"github.com/dropDatabas3/wahlbot/internal/http/helpers"
	mw "github.com/dropDatabas3/wahlbot/internal/http/middlewares"
	svc "github.com/dropDatabas3/wahlbot/internal/http/services/auth"
	"github.com/dropDatabas3/wahlbot/internal/observability/logger"
)

// MeController maneja GET /auth/users/me.
type MeController struct{}

func NewMeController() *MeController { return &MeController{} }

func (c *MeController) Me(w http.ResponseWriter, r *http.Request) {
	p := mw.MustPrincipal(r.Context())
	helpers.WriteJSON(w, http.StatusOK, dto.UserResponse{
		Username: p.Username,
		Email:    p.Email,
		FullName: p.FullName,
		Disabled: p.Disabled,
	})
}

// SessionsController maneja GET /auth/users/me/sessions.
type SessionsController struct {
	service svc.SessionService
}

func NewSessionsController(service svc.SessionService) *SessionsController {
	return &SessionsController{service: service}
}

func (c *SessionsController) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("SessionsController.List"))

	sessions, err := c.service.ListSessions(ctx, mw.MustPrincipal(ctx))
	if err != nil {
		log.Error("list sessions failed", logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.SessionsResponse{ActiveSessions: sessions})
}
