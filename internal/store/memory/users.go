package memory

import (
	"context"
	"strings"

	"github.com/dropDatabas3/wahlbot/internal/domain/repository"
)

type principalRepo struct{ s *Store }

func (r *principalRepo) GetByUsername(ctx context.Context, username string) (*repository.Principal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.users[username]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *principalRepo) Create(ctx context.Context, in repository.CreatePrincipalInput) (*repository.Principal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if in.Username == "" || in.HashedPassword == "" {
		return nil, repository.ErrInvalidInput
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[in.Username]; ok {
		return nil, repository.ErrConflict
	}
	for _, u := range r.s.users {
		if in.Email != "" && strings.EqualFold(u.Email, in.Email) {
			return nil, repository.ErrConflict
		}
	}
	r.s.nextUserID++
	p := &repository.Principal{
		ID:             r.s.nextUserID,
		Username:       in.Username,
		Email:          in.Email,
		FullName:       in.FullName,
		Disabled:       in.Disabled,
		HashedPassword: in.HashedPassword,
		CreatedAt:      r.s.now().UTC(),
	}
	r.s.users[p.Username] = p
	cp := *p
	return &cp, nil
}
