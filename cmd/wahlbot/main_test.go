package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/dropDatabas3/wahlbot/internal/domain/repository"
	"github.com/dropDatabas3/wahlbot/internal/security/password"
	"github.com/dropDatabas3/wahlbot/internal/store/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUser(t *testing.T) {
	st := memory.New()
	ctx := context.Background()

	p, err := createUser(ctx, st.Principals(), createUserInput{
		Username: " carla ", Email: "carla@example.test", FullName: "Carla", Password: "lang-genug", Disabled: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "carla", p.Username)
	assert.True(t, p.Disabled)

	stored, err := st.Principals().GetByUsername(ctx, "carla")
	require.NoError(t, err)
	assert.True(t, password.Verify("lang-genug", stored.HashedPassword))

	_, err = createUser(ctx, st.Principals(), createUserInput{Username: "carla", Password: "lang-genug"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestCreateUser_Rejects(t *testing.T) {
	st := memory.New()
	cases := map[string]createUserInput{
		"blank username": {Username: "  ", Password: "lang-genug"},
		"short password": {Username: "dora", Password: "kurz"},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := createUser(context.Background(), st.Principals(), in)
			require.Error(t, err)
		})
	}
	_, err := st.Principals().GetByUsername(context.Background(), "dora")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestRootCmd_LoadsConfigAndRequiresFlags(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("jwt:\n  secret_key: k\nstorage:\n  driver: memory\n"), 0o600))

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"--config", cfgPath, "--env-file", filepath.Join(dir, "none.env"), "user", "create", "--username", "eva"})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "password")

	cmd = newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--config", cfgPath, "--env-file", filepath.Join(dir, "none.env"),
		"user", "create", "--username", "eva", "--password", "lang-genug"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), `created user "eva"`)
}

func TestMigrate_RequiresPostgres(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("jwt:\n  secret_key: k\nstorage:\n  driver: memory\n"), 0o600))

	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", cfgPath, "--env-file", filepath.Join(dir, "none.env"), "migrate", "status"})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres")
}
