package tokens

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateOpaqueToken(t *testing.T) {
	a, err := GenerateOpaqueToken(RefreshIDBytes)
	require.NoError(t, err)
	b, err := GenerateOpaqueToken(RefreshIDBytes)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.Len(t, a, 43)
	raw, err := base64.RawURLEncoding.DecodeString(a)
	require.NoError(t, err)
	assert.Len(t, raw, RefreshIDBytes)
}

func TestGenerateOpaqueToken_InvalidSize(t *testing.T) {
	_, err := GenerateOpaqueToken(0)
	assert.Error(t, err)
}
