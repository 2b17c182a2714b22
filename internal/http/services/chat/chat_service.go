// Package chat contiene el service de preguntas sobre un programa.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dropDatabas3/wahlbot/internal/chat"
	"github.com/dropDatabas3/wahlbot/internal/domain/repository"
	dto "github.com/dropDatabas3/wahlbot/internal/http/dto/chat"
	"github.com/dropDatabas3/wahlbot/internal/observability/logger"
)

var (
	ErrEmptyMessages   = errors.New("messages must not be empty")
	ErrInvalidRole     = errors.New("invalid message role")
	ErrProgramNotFound = errors.New("program not found")
)

// Recorder registra el resultado de cada chat (implementado por *metrics.Metrics).
type Recorder interface {
	RecordChat(outcome string)
}

type noopRecorder struct{}

func (noopRecorder) RecordChat(string) {}

type Deps struct {
	Programs  repository.ProgramRepository
	Retriever chat.Retriever
	Answerer  chat.Answerer
	Metrics   Recorder
	// RetrievalLimit es la cantidad de pasajes que entran al prompt.
	RetrievalLimit int
	// RewriteQuery pide al modelo una consulta autocontenida cuando hay historial.
	RewriteQuery bool
}

type ChatService interface {
	Chat(ctx context.Context, program string, messages []dto.Message) (*dto.ChatResponse, error)
}

type chatService struct {
	deps Deps
}

func NewChatService(d Deps) ChatService {
	if d.Metrics == nil {
		d.Metrics = noopRecorder{}
	}
	if d.RetrievalLimit <= 0 {
		d.RetrievalLimit = 5
	}
	return &chatService{deps: d}
}

func (s *chatService) Chat(ctx context.Context, program string, messages []dto.Message) (*dto.ChatResponse, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("chat"),
		logger.Program(program),
	)

	history, question, err := splitConversation(messages)
	if err != nil {
		s.deps.Metrics.RecordChat("invalid")
		return nil, err
	}

	if _, err := s.deps.Programs.GetByName(ctx, program); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.deps.Metrics.RecordChat("invalid")
			return nil, ErrProgramNotFound
		}
		s.deps.Metrics.RecordChat("error")
		return nil, fmt.Errorf("chat: lookup program: %w", err)
	}

	query := question
	if s.deps.RewriteQuery && len(history) > 0 {
		rewritten, err := s.deps.Answerer.Complete(ctx, chat.RewriteMessages(history, question))
		if err != nil {
			s.deps.Metrics.RecordChat("error")
			return nil, fmt.Errorf("chat: rewrite query: %w", err)
		}
		query = rewritten
		log.Debug("query rewritten", logger.Int("query_len", len(query)))
	}

	docs, err := s.deps.Retriever.Retrieve(ctx, program, query, s.deps.RetrievalLimit)
	if err != nil {
		s.deps.Metrics.RecordChat("error")
		return nil, fmt.Errorf("chat: %w", err)
	}
	log.Debug("documents retrieved", logger.Count(len(docs)))

	answer, err := s.deps.Answerer.Complete(ctx, chat.AnswerMessages(program, docs, history, query))
	if err != nil {
		s.deps.Metrics.RecordChat("error")
		return nil, fmt.Errorf("chat: answer: %w", err)
	}

	s.deps.Metrics.RecordChat("success")
	log.Info("chat answered", logger.Count(len(docs)))
	return &dto.ChatResponse{Message: dto.Message{Role: chat.RoleAssistant, Content: answer}}, nil
}

// splitConversation separa la última pregunta del historial previo.
func splitConversation(messages []dto.Message) ([]chat.Message, string, error) {
	if len(messages) == 0 {
		return nil, "", ErrEmptyMessages
	}
	history := make([]chat.Message, 0, len(messages)-1)
	for i, m := range messages {
		role := strings.ToLower(strings.TrimSpace(m.Role))
		if role != chat.RoleUser && role != chat.RoleAssistant {
			return nil, "", fmt.Errorf("%w: %q", ErrInvalidRole, m.Role)
		}
		if i < len(messages)-1 {
			history = append(history, chat.Message{Role: role, Content: m.Content})
		}
	}
	question := strings.TrimSpace(messages[len(messages)-1].Content)
	if question == "" {
		return nil, "", ErrEmptyMessages
	}
	return history, question, nil
}
