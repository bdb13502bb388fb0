package jwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateParse_RoundTrip(t *testing.T) {
	tok, err := Generate("secreto", 42, "secretario", "ventas-api", 5)
	require.NoError(t, err)

	uid, role, err := Parse("secreto", tok)
	require.NoError(t, err)
	assert.Equal(t, int64(42), uid)
	assert.Equal(t, "secretario", role)
}

func TestParse_FirmaIncorrecta(t *testing.T) {
	tok, err := Generate("secreto", 1, "admin", "ventas-api", 5)
	require.NoError(t, err)

	_, _, err = Parse("otro", tok)
	assert.Error(t, err)
}

func TestParse_Expirado(t *testing.T) {
	tok, err := Generate("secreto", 1, "admin", "ventas-api", -1)
	require.NoError(t, err)

	_, _, err = Parse("secreto", tok)
	assert.Error(t, err)
}

func TestGenerate_SecretVacio(t *testing.T) {
	_, err := Generate("", 1, "admin", "x", 5)
	assert.Error(t, err)
}
