package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/dropDatabas3/wahlbot/internal/domain/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunStore ejercita los repositorios de soporte (usuarios, programas,
// documentos, tasks).
func RunStore(t *testing.T, newStore func(t *testing.T) repository.Store) {
	ctx := context.Background()

	t.Run("principals", func(t *testing.T) {
		s := newStore(t)
		p := NewPrincipal(t, s)

		got, err := s.Principals().GetByUsername(ctx, p.Username)
		require.NoError(t, err)
		assert.Equal(t, p.ID, got.ID)
		assert.Equal(t, p.Email, got.Email)
		assert.False(t, got.Disabled)

		_, err = s.Principals().GetByUsername(ctx, "ghost-"+uuid.NewString())
		assert.ErrorIs(t, err, repository.ErrNotFound)

		_, err = s.Principals().Create(ctx, repository.CreatePrincipalInput{
			Username:       p.Username,
			Email:          "another-" + uuid.NewString() + "@example.test",
			HashedPassword: "x",
		})
		assert.ErrorIs(t, err, repository.ErrConflict)
	})

	t.Run("programs", func(t *testing.T) {
		s := newStore(t)
		name := "prog-" + uuid.NewString()[:8]

		p, err := s.Programs().Create(ctx, name, "/tmp/"+name+".txt")
		require.NoError(t, err)
		assert.NotZero(t, p.ID)

		_, err = s.Programs().Create(ctx, name, "/tmp/dup.txt")
		assert.ErrorIs(t, err, repository.ErrConflict)

		got, err := s.Programs().GetByName(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, p.ID, got.ID)

		list, err := s.Programs().List(ctx)
		require.NoError(t, err)
		assert.True(t, containsProgram(list, name))

		require.NoError(t, s.Programs().Delete(ctx, name))
		assert.ErrorIs(t, s.Programs().Delete(ctx, name), repository.ErrNotFound)
		_, err = s.Programs().GetByName(ctx, name)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("documents", func(t *testing.T) {
		s := newStore(t)
		name := "docs-" + uuid.NewString()[:8]

		n, err := s.Documents().CountByProgram(ctx, name)
		require.NoError(t, err)
		assert.Zero(t, n)

		inserted, err := s.Documents().InsertPages(ctx, name, []string{"page one", "page two"})
		require.NoError(t, err)
		assert.Equal(t, 2, inserted)

		n, err = s.Documents().CountByProgram(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		deleted, err := s.Documents().DeleteByProgram(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, 2, deleted)
	})

	t.Run("tasks", func(t *testing.T) {
		s := newStore(t)
		id := uuid.NewString()

		task, err := s.Tasks().Create(ctx, repository.CreateTaskInput{
			TaskID:      id,
			SessionID:   uuid.NewString(),
			ProgramName: "p",
			Action:      repository.ActionIngest,
		})
		require.NoError(t, err)
		assert.Equal(t, repository.TaskPending, task.Status)
		assert.Nil(t, task.CompletedAt)

		require.NoError(t, s.Tasks().Update(ctx, id, repository.TaskUpdate{Status: repository.TaskProcessing}))
		got, err := s.Tasks().Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, repository.TaskProcessing, got.Status)
		assert.Nil(t, got.CompletedAt)

		pid := int64(7)
		require.NoError(t, s.Tasks().Update(ctx, id, repository.TaskUpdate{Status: repository.TaskCompleted, ProgramID: &pid}))
		got, err = s.Tasks().Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, repository.TaskCompleted, got.Status)
		require.NotNil(t, got.ProgramID)
		assert.Equal(t, pid, *got.ProgramID)
		require.NotNil(t, got.CompletedAt)
		assert.WithinDuration(t, time.Now(), *got.CompletedAt, time.Minute)

		_, err = s.Tasks().Get(ctx, uuid.NewString())
		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.ErrorIs(t, s.Tasks().Update(ctx, uuid.NewString(), repository.TaskUpdate{Status: repository.TaskFailed}), repository.ErrNotFound)
	})

	t.Run("ping", func(t *testing.T) {
		s := newStore(t)
		assert.NoError(t, s.Ping(ctx))
	})
}

func containsProgram(list []repository.Program, name string) bool {
	for _, p := range list {
		if p.Name == name {
			return true
		}
	}
	return false
}

