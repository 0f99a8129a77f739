package apikey

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	key, err := Generate()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(key, Prefix))
	// 32 bytes base64url without padding is 43 characters
	assert.Len(t, key, len(Prefix)+43)
	assert.NotContains(t, key, "+")
	assert.NotContains(t, key, "/")
	assert.NotContains(t, key, "=")
}

func TestGenerateUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		key, err := Generate()
		require.NoError(t, err)
		require.False(t, seen[key], "duplicate key generated")
		seen[key] = true
	}
}

func TestRedact(t *testing.T) {
	tests := []struct {
		name string
		key  string
		want string
	}{
		{"normal key", "bw_abcdefghij", "bw_abcd****"},
		{"short key", "bw_ab", "bw_****"},
		{"empty", "", "bw_****"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Redact(tt.key))
		})
	}
}
