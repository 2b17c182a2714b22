package memory

import (
	"context"
	"sort"

	"github.com/dropDatabas3/wahlbot/internal/domain/repository"
)

type ledger struct{ s *Store }

func (l *ledger) Insert(ctx context.Context, in repository.InsertSessionInput) (*repository.RefreshSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if in.TokenID == "" {
		return nil, repository.ErrInvalidInput
	}
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	if _, ok := l.s.sessions[in.TokenID]; ok {
		return nil, repository.ErrConflict
	}
	l.s.nextSessionID++
	row := &repository.RefreshSession{
		ID:         l.s.nextSessionID,
		TokenID:    in.TokenID,
		UserID:     in.UserID,
		ExpiresAt:  in.ExpiresAt.UTC(),
		CreatedAt:  l.s.now().UTC(),
		DeviceInfo: strPtr(in.DeviceInfo),
		IPAddress:  strPtr(in.IPAddress),
	}
	l.s.sessions[in.TokenID] = row
	cp := *row
	return &cp, nil
}

func (l *ledger) FindActive(ctx context.Context, tokenID string) (*repository.RefreshSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	row, ok := l.s.sessions[tokenID]
	if !ok || !l.active(row) {
		return nil, repository.ErrNotFound
	}
	cp := *row
	return &cp, nil
}

func (l *ledger) Revoke(ctx context.Context, tokenID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	if row, ok := l.s.sessions[tokenID]; ok {
		row.Revoked = true
	}
	return nil
}

func (l *ledger) RevokeAll(ctx context.Context, userID int64) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	n := 0
	for _, row := range l.s.sessions {
		if row.UserID == userID && !row.Revoked {
			row.Revoked = true
			n++
		}
	}
	return n, nil
}

func (l *ledger) ListActive(ctx context.Context, userID int64) ([]repository.RefreshSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	out := make([]repository.RefreshSession, 0)
	for _, row := range l.s.sessions {
		if row.UserID == userID && l.active(row) {
			out = append(out, *row)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// active requiere l.s.mu tomado.
func (l *ledger) active(row *repository.RefreshSession) bool {
	return !row.Revoked && row.ExpiresAt.After(l.s.now())
}
