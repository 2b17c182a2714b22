package auth

import (
	"context"
	"testing"
	"time"

	"github.com/dropDatabas3/wahlbot/internal/domain/repository"
	jwtx "github.com/dropDatabas3/wahlbot/internal/jwt"
	"github.com/dropDatabas3/wahlbot/internal/security/password"
	"github.com/dropDatabas3/wahlbot/internal/store/memory"
	"github.com/stretchr/testify/require"
)

var fastParams = password.Params{Memory: 8 * 1024, Time: 1, Parallelism: 1, KeyLen: 32}

type clock struct{ t time.Time }

func (c *clock) Now() time.Time { return c.t }

type fixture struct {
	store *memory.Store
	codec *jwtx.Codec
	clk   *clock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clk := &clock{t: time.Now()}
	codec, err := jwtx.NewCodec(jwtx.Options{
		Secret:     "unit-test-secret",
		Algorithm:  "HS256",
		AccessTTL:  30 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
		Now:        clk.Now,
	})
	require.NoError(t, err)
	return &fixture{
		store: memory.New(memory.WithClock(clk.Now)),
		codec: codec,
		clk:   clk,
	}
}

func (f *fixture) addUser(t *testing.T, username, plain string, disabled bool) *repository.Principal {
	t.Helper()
	h, err := password.Hash(fastParams, plain)
	require.NoError(t, err)
	p, err := f.store.Principals().Create(context.Background(), repository.CreatePrincipalInput{
		Username:       username,
		Email:          username + "@example.test",
		FullName:       "User " + username,
		Disabled:       disabled,
		HashedPassword: h,
	})
	require.NoError(t, err)
	return p
}

// hookLedger permite inyectar fallas y efectos alrededor de Revoke/Insert.
type hookLedger struct {
	repository.SessionLedger
	revokeErr   error
	afterRevoke func()
}

func (h *hookLedger) Revoke(ctx context.Context, tokenID string) error {
	if h.revokeErr != nil {
		return h.revokeErr
	}
	err := h.SessionLedger.Revoke(ctx, tokenID)
	if h.afterRevoke != nil {
		h.afterRevoke()
	}
	return err
}

type countingRecorder struct{ events map[string]int }

func (c *countingRecorder) RecordAuth(event, outcome string) {
	if c.events == nil {
		c.events = map[string]int{}
	}
	c.events[event+":"+outcome]++
}
