package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dropDatabas3/wahlbot/internal/domain/repository"
	jwtx "github.com/dropDatabas3/wahlbot/internal/jwt"
)

var (
	// ErrInvalidToken cubre bearer ausente, inválido, de tipo refresh o de
	// un sujeto inexistente.
	ErrInvalidToken = errors.New("could not validate credentials")
	// ErrInactivePrincipal: el token es válido pero el principal está deshabilitado.
	ErrInactivePrincipal = errors.New("inactive principal")
)

// Gate valida access tokens y resuelve el principal del request.
type Gate interface {
	Authenticate(ctx context.Context, bearer string) (*repository.Principal, error)
}

type GateDeps struct {
	Principals repository.PrincipalRepository
	Codec      *jwtx.Codec
}

type gate struct {
	deps GateDeps
}

func NewGate(deps GateDeps) Gate {
	return &gate{deps: deps}
}

func (g *gate) Authenticate(ctx context.Context, bearer string) (*repository.Principal, error) {
	bearer = strings.TrimSpace(bearer)
	if bearer == "" {
		return nil, ErrInvalidToken
	}
	claims, err := g.deps.Codec.Decode(bearer)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	access, ok := claims.(jwtx.AccessClaims)
	if !ok {
		return nil, fmt.Errorf("%w: not an access token", ErrInvalidToken)
	}
	p, err := g.deps.Principals.GetByUsername(ctx, access.Subject)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: unknown subject", ErrInvalidToken)
	}
	if err != nil {
		return nil, fmt.Errorf("gate: load principal: %w", err)
	}
	if p.Disabled {
		return nil, ErrInactivePrincipal
	}
	return p, nil
}
