// Package chat contiene el controller de /chat.
package chat

import (
	"errors"
	"net/http"

	dto "github.com/dropDatabas3/wahlbot/internal/http/dto/chat"
	httperrors "github.com/dropDatabas3/wahlbot/internal/http/errors"
	"github.com/dropDatabas3/wahlbot/internal/http/helpers"
	svc "github.com/dropDatabas3/wahlbot/internal/http/services/chat"
	"github.com/dropDatabas3/wahlbot/internal/observability/logger"
	"github.com/go-chi/chi/v5"
)

type Controllers struct {
	Chat *ChatController
}

func NewControllers(s svc.ChatService) *Controllers {
	return &Controllers{Chat: NewChatController(s)}
}

// ChatController maneja POST /chat/{program_name}.
type ChatController struct {
	service svc.ChatService
}

func NewChatController(service svc.ChatService) *ChatController {
	return &ChatController{service: service}
}

func (c *ChatController) Chat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	program := chi.URLParam(r, "program_name")
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("ChatController.Chat"), logger.Program(program))

	var req dto.ChatRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}

	res, err := c.service.Chat(ctx, program, req.Messages)
	if err != nil {
		switch {
		case errors.Is(err, svc.ErrEmptyMessages), errors.Is(err, svc.ErrInvalidRole):
			httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail(err.Error()))
		case errors.Is(err, svc.ErrProgramNotFound):
			httperrors.WriteError(w, httperrors.ErrProgramNotFound)
		default:
			log.Error("chat failed", logger.Err(err))
			httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
		}
		return
	}
	helpers.WriteJSON(w, http.StatusOK, res)
}
