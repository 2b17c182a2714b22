package auth

import (
	"errors"
	"net/http"
	"strings"

	dto "github.com/dropDatabas3/wahlbot/internal/http/dto/auth"
	httperrors "github.com/dropDatabas3/wahlbot/internal/http/errors"
	"github.com/dropDatabas3/wahlbot/internal/http/helpers"
	svc "github.com/dropDatabas3/wahlbot/internal/http/services/auth"
	"github.com/dropDatabas3/wahlbot/internal/observability/logger"
)

const maxFormBody = 64 << 10

// TokenController maneja POST /auth/token.
type TokenController struct {
	service svc.SessionService
	cookies cookies
}

func NewTokenController(service svc.SessionService, c cookies) *TokenController {
	return &TokenController{service: service, cookies: c}
}

// Login recibe un form (username, password), responde el access token y
// deja el refresh token en la cookie.
func (c *TokenController) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("TokenController.Login"))

	r.Body = http.MaxBytesReader(w, r.Body, maxFormBody)
	if err := r.ParseForm(); err != nil {
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("invalid form body"))
		return
	}
	req := dto.LoginRequest{
		Username: strings.TrimSpace(r.PostForm.Get("username")),
		Password: r.PostForm.Get("password"),
	}
	if req.Username == "" || req.Password == "" {
		httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail("username and password are required"))
		return
	}

	pair, err := c.service.Login(ctx, req, requestMeta(r))
	if err != nil {
		if errors.Is(err, svc.ErrDenied) {
			httperrors.WriteError(w, httperrors.ErrInvalidCredentials)
			return
		}
		log.Error("login failed", logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
		return
	}

	c.cookies.set(w, r, pair.RefreshToken)
	helpers.WriteJSON(w, http.StatusOK, dto.TokenResponse{AccessToken: pair.AccessToken, TokenType: "bearer"})
}
