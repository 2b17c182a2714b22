package middlewares

import (
	"context"

	"github.com/dropDatabas3/wahlbot/internal/domain/repository"
)

type ctxKey string

const (
	ctxPrincipalKey ctxKey = "principal"
	ctxRequestIDKey ctxKey = "request_id"
)

// WithPrincipal inyecta el principal autenticado en el contexto.
func WithPrincipal(ctx context.Context, p *repository.Principal) context.Context {
	return context.WithValue(ctx, ctxPrincipalKey, p)
}

func setRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxRequestIDKey, requestID)
}

// GetPrincipal devuelve el principal del request o nil si la ruta no pasó
// por RequireUser.
func GetPrincipal(ctx context.Context) *repository.Principal {
	if p, ok := ctx.Value(ctxPrincipalKey).(*repository.Principal); ok {
		return p
	}
	return nil
}

// MustPrincipal hace panic si no hay principal. Solo para rutas montadas
// detrás de RequireUser.
func MustPrincipal(ctx context.Context) *repository.Principal {
	p := GetPrincipal(ctx)
	if p == nil {
		panic("middlewares: no principal in context")
	}
	return p
}

// GetRequestID obtiene el request ID del contexto.
func GetRequestID(ctx context.Context) string {
	if s, ok := ctx.Value(ctxRequestIDKey).(string); ok {
		return s
	}
	return ""
}
