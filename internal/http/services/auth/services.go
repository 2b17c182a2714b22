// Package auth contiene los services de autenticación: credenciales,
// validación de access tokens y ciclo de vida de refresh tokens.
package auth

import (
	"github.com/dropDatabas3/wahlbot/internal/domain/repository"
	jwtx "github.com/dropDatabas3/wahlbot/internal/jwt"
)

// EventRecorder registra eventos de auth (implementado por *metrics.Metrics).
type EventRecorder interface {
	RecordAuth(event, outcome string)
}

type noopRecorder struct{}

func (noopRecorder) RecordAuth(string, string) {}

// Deps contiene las dependencias para crear los services auth.
type Deps struct {
	Principals repository.PrincipalRepository
	Ledger     repository.SessionLedger
	Codec      *jwtx.Codec
	Events     EventRecorder // nil = no-op
}

// Services agrupa todos los services del dominio auth.
type Services struct {
	Credentials CredentialStore
	Gate        Gate
	Sessions    SessionService
}

// NewServices crea el agregador de services auth.
func NewServices(d Deps) Services {
	if d.Events == nil {
		d.Events = noopRecorder{}
	}
	creds := NewCredentialStore(d.Principals)
	return Services{
		Credentials: creds,
		Gate:        NewGate(GateDeps{Principals: d.Principals, Codec: d.Codec}),
		Sessions: NewSessionService(SessionDeps{
			Credentials: creds,
			Principals:  d.Principals,
			Ledger:      d.Ledger,
			Codec:       d.Codec,
			Events:      d.Events,
		}),
	}
}
