package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/dropDatabas3/wahlbot/internal/domain/repository"
	"github.com/dropDatabas3/wahlbot/internal/security/password"
)

// ErrDenied se devuelve igual para usuario inexistente y contraseña errónea.
var ErrDenied = errors.New("invalid credentials")

// CredentialStore resuelve principals y verifica contraseñas.
type CredentialStore interface {
	// Load retorna repository.ErrNotFound si el handle no existe.
	Load(ctx context.Context, handle string) (*repository.Principal, error)
	VerifyPassword(plain, hash string) bool
	// Authenticate retorna ErrDenied para handle desconocido o contraseña
	// incorrecta, sin distinguirlos.
	Authenticate(ctx context.Context, handle, plain string) (*repository.Principal, error)
}

type credentialStore struct {
	principals repository.PrincipalRepository
	verify     func(plain, hash string) bool
	dummyHash  func() string
}

func NewCredentialStore(principals repository.PrincipalRepository) CredentialStore {
	return &credentialStore{
		principals: principals,
		verify:     password.Verify,
		dummyHash:  password.DummyHash,
	}
}

func (c *credentialStore) Load(ctx context.Context, handle string) (*repository.Principal, error) {
	return c.principals.GetByUsername(ctx, handle)
}

func (c *credentialStore) VerifyPassword(plain, hash string) bool {
	return c.verify(plain, hash)
}

func (c *credentialStore) Authenticate(ctx context.Context, handle, plain string) (*repository.Principal, error) {
	p, err := c.Load(ctx, handle)
	if errors.Is(err, repository.ErrNotFound) {
		// mismo costo que una contraseña incorrecta
		_ = c.verify(plain, c.dummyHash())
		return nil, ErrDenied
	}
	if err != nil {
		return nil, fmt.Errorf("authenticate: load principal: %w", err)
	}
	if !c.verify(plain, p.HashedPassword) {
		return nil, ErrDenied
	}
	return p, nil
}
