// Package memory implementa repository.Store en memoria.
//
// Respeta la misma semántica que store/pg (ledger incluido) y se usa en
// tests y con storage.driver=memory. Un único mutex protege todo el estado;
// cada método es atómico respecto de los demás.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/dropDatabas3/wahlbot/internal/domain/repository"
)

type Store struct {
	mu  sync.Mutex
	now func() time.Time

	users      map[string]*repository.Principal
	nextUserID int64

	sessions      map[string]*repository.RefreshSession
	nextSessionID int64

	programs      map[string]*repository.Program
	nextProgramID int64

	docs      []repository.Document
	nextDocID int64

	tasks      map[string]*repository.ProgramTask
	nextTaskID int64
}

type Option func(*Store)

// WithClock reemplaza time.Now (tests de expiración).
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(opts ...Option) *Store {
	s := &Store{
		now:      time.Now,
		users:    map[string]*repository.Principal{},
		sessions: map[string]*repository.RefreshSession{},
		programs: map[string]*repository.Program{},
		tasks:    map[string]*repository.ProgramTask{},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Store) Principals() repository.PrincipalRepository { return &principalRepo{s} }
func (s *Store) Sessions() repository.SessionLedger         { return &ledger{s} }
func (s *Store) Programs() repository.ProgramRepository     { return &programRepo{s} }
func (s *Store) Documents() repository.DocumentRepository   { return &documentRepo{s} }
func (s *Store) Tasks() repository.TaskRepository           { return &taskRepo{s} }

func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }
func (s *Store) Close()                         {}

var _ repository.Store = (*Store)(nil)

func strPtr(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
