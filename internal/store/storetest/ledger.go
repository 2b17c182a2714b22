// Package storetest contiene suites compartidas que corren contra cada
// implementación de repository.Store.
package storetest

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dropDatabas3/wahlbot/internal/domain/repository"
	tokens "github.com/dropDatabas3/wahlbot/internal/security/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var seq atomic.Int64

// NewPrincipal crea un usuario con handle único para no chocar entre suites.
func NewPrincipal(t *testing.T, s repository.Store) *repository.Principal {
	t.Helper()
	n := seq.Add(1)
	p, err := s.Principals().Create(context.Background(), repository.CreatePrincipalInput{
		Username:       fmt.Sprintf("user-%d-%d", time.Now().UnixNano(), n),
		Email:          fmt.Sprintf("user-%d-%d@example.test", time.Now().UnixNano(), n),
		FullName:       "Test User",
		HashedPassword: "$argon2id$v=19$m=8,t=1,p=1$c2FsdA$a2V5",
	})
	require.NoError(t, err)
	return p
}

func newTokenID(t *testing.T) string {
	t.Helper()
	id, err := tokens.GenerateOpaqueToken(tokens.RefreshIDBytes)
	require.NoError(t, err)
	return id
}

func insert(t *testing.T, l repository.SessionLedger, userID int64, exp time.Time) string {
	t.Helper()
	id := newTokenID(t)
	_, err := l.Insert(context.Background(), repository.InsertSessionInput{
		TokenID:    id,
		UserID:     userID,
		ExpiresAt:  exp,
		DeviceInfo: "go-test",
		IPAddress:  "127.0.0.1",
	})
	require.NoError(t, err)
	return id
}

// RunLedger ejercita repository.SessionLedger sobre el store que devuelve newStore.
func RunLedger(t *testing.T, newStore func(t *testing.T) repository.Store) {
	ctx := context.Background()
	future := time.Now().Add(time.Hour)

	t.Run("insert then find active", func(t *testing.T) {
		s := newStore(t)
		u := NewPrincipal(t, s)
		id := insert(t, s.Sessions(), u.ID, future)

		row, err := s.Sessions().FindActive(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, id, row.TokenID)
		assert.Equal(t, u.ID, row.UserID)
		assert.False(t, row.Revoked)
		require.NotNil(t, row.DeviceInfo)
		assert.Equal(t, "go-test", *row.DeviceInfo)
	})

	t.Run("unknown id is not active", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Sessions().FindActive(ctx, "nope")
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("expired row is not active", func(t *testing.T) {
		s := newStore(t)
		u := NewPrincipal(t, s)
		id := insert(t, s.Sessions(), u.ID, time.Now().Add(-time.Second))

		_, err := s.Sessions().FindActive(ctx, id)
		assert.ErrorIs(t, err, repository.ErrNotFound)

		list, err := s.Sessions().ListActive(ctx, u.ID)
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("duplicate token id conflicts", func(t *testing.T) {
		s := newStore(t)
		u := NewPrincipal(t, s)
		id := insert(t, s.Sessions(), u.ID, future)
		_, err := s.Sessions().Insert(ctx, repository.InsertSessionInput{TokenID: id, UserID: u.ID, ExpiresAt: future})
		assert.ErrorIs(t, err, repository.ErrConflict)
	})

	t.Run("revoke is visible and idempotent", func(t *testing.T) {
		s := newStore(t)
		u := NewPrincipal(t, s)
		id := insert(t, s.Sessions(), u.ID, future)

		require.NoError(t, s.Sessions().Revoke(ctx, id))
		_, err := s.Sessions().FindActive(ctx, id)
		assert.ErrorIs(t, err, repository.ErrNotFound)

		require.NoError(t, s.Sessions().Revoke(ctx, id))
		require.NoError(t, s.Sessions().Revoke(ctx, "never-issued"))
	})

	t.Run("revoke visible to concurrent readers", func(t *testing.T) {
		s := newStore(t)
		u := NewPrincipal(t, s)
		id := insert(t, s.Sessions(), u.ID, future)
		require.NoError(t, s.Sessions().Revoke(ctx, id))

		var wg sync.WaitGroup
		var found atomic.Int32
		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := s.Sessions().FindActive(ctx, id); err == nil {
					found.Add(1)
				}
			}()
		}
		wg.Wait()
		assert.Zero(t, found.Load())
	})

	t.Run("concurrent revoke and find", func(t *testing.T) {
		s := newStore(t)
		u := NewPrincipal(t, s)
		ids := make([]string, 8)
		for i := range ids {
			ids[i] = insert(t, s.Sessions(), u.ID, future)
		}

		var wg sync.WaitGroup
		for _, id := range ids {
			wg.Add(2)
			go func(id string) {
				defer wg.Done()
				assert.NoError(t, s.Sessions().Revoke(ctx, id))
			}(id)
			go func(id string) {
				defer wg.Done()
				_, _ = s.Sessions().FindActive(ctx, id)
			}(id)
		}
		wg.Wait()

		for _, id := range ids {
			_, err := s.Sessions().FindActive(ctx, id)
			assert.ErrorIs(t, err, repository.ErrNotFound)
		}
	})

	for _, n := range []int{0, 1, 5} {
		t.Run(fmt.Sprintf("revoke all with %d sessions", n), func(t *testing.T) {
			s := newStore(t)
			u := NewPrincipal(t, s)
			other := NewPrincipal(t, s)
			otherID := insert(t, s.Sessions(), other.ID, future)

			ids := make([]string, n)
			for i := range ids {
				ids[i] = insert(t, s.Sessions(), u.ID, future)
			}

			count, err := s.Sessions().RevokeAll(ctx, u.ID)
			require.NoError(t, err)
			assert.Equal(t, n, count)

			for _, id := range ids {
				_, err := s.Sessions().FindActive(ctx, id)
				assert.ErrorIs(t, err, repository.ErrNotFound)
			}
			list, err := s.Sessions().ListActive(ctx, u.ID)
			require.NoError(t, err)
			assert.Empty(t, list)

			_, err = s.Sessions().FindActive(ctx, otherID)
			assert.NoError(t, err, "other principal's session must survive")

			again, err := s.Sessions().RevokeAll(ctx, u.ID)
			require.NoError(t, err)
			assert.Zero(t, again)
		})
	}

	t.Run("list active newest first", func(t *testing.T) {
		s := newStore(t)
		u := NewPrincipal(t, s)
		first := insert(t, s.Sessions(), u.ID, future)
		time.Sleep(5 * time.Millisecond)
		second := insert(t, s.Sessions(), u.ID, future)
		time.Sleep(5 * time.Millisecond)
		third := insert(t, s.Sessions(), u.ID, future)
		require.NoError(t, s.Sessions().Revoke(ctx, second))

		list, err := s.Sessions().ListActive(ctx, u.ID)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, third, list[0].TokenID)
		assert.Equal(t, first, list[1].TokenID)
	})
}
