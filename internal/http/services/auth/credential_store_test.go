package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/dropDatabas3/wahlbot/internal/domain/repository"
	"github.com/dropDatabas3/wahlbot/internal/security/password"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingPrincipals struct{ err error }

func (f failingPrincipals) GetByUsername(context.Context, string) (*repository.Principal, error) {
	return nil, f.err
}

func (f failingPrincipals) Create(context.Context, repository.CreatePrincipalInput) (*repository.Principal, error) {
	return nil, f.err
}

func TestAuthenticate_Success(t *testing.T) {
	f := newFixture(t)
	u := f.addUser(t, "alice", "s3cret-pass", false)

	p, err := NewCredentialStore(f.store.Principals()).Authenticate(context.Background(), "alice", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, u.ID, p.ID)
}

func TestAuthenticate_UnknownAndWrongPasswordAreIndistinguishable(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "alice", "s3cret-pass", false)
	creds := NewCredentialStore(f.store.Principals())

	p1, errUnknown := creds.Authenticate(context.Background(), "mallory", "whatever")
	p2, errWrong := creds.Authenticate(context.Background(), "alice", "wrong")

	assert.Nil(t, p1)
	assert.Nil(t, p2)
	assert.Same(t, ErrDenied, errUnknown)
	assert.Same(t, ErrDenied, errWrong)
	assert.Equal(t, errUnknown.Error(), errWrong.Error())
}

func TestAuthenticate_UnknownUserStillVerifies(t *testing.T) {
	f := newFixture(t)
	var calls []string
	cs := &credentialStore{
		principals: f.store.Principals(),
		verify: func(plain, hash string) bool {
			calls = append(calls, hash)
			return false
		},
		dummyHash: func() string { return "dummy" },
	}

	_, err := cs.Authenticate(context.Background(), "nobody", "pw")
	assert.ErrorIs(t, err, ErrDenied)
	assert.Equal(t, []string{"dummy"}, calls)
}

func TestAuthenticate_StoreFailureIsNotDenied(t *testing.T) {
	boom := errors.New("db down")
	_, err := NewCredentialStore(failingPrincipals{err: boom}).Authenticate(context.Background(), "alice", "pw")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrDenied)
	assert.ErrorIs(t, err, boom)
}

func TestVerifyPassword(t *testing.T) {
	h, err := password.Hash(fastParams, "pw")
	require.NoError(t, err)
	creds := NewCredentialStore(nil)
	assert.True(t, creds.VerifyPassword("pw", h))
	assert.False(t, creds.VerifyPassword("PW", h))
}

func TestLoad(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "alice", "pw", false)
	creds := NewCredentialStore(f.store.Principals())

	p, err := creds.Load(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", p.Username)

	_, err = creds.Load(context.Background(), "bob")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
