package sessions

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var hexToken = regexp.MustCompile(`^[0-9a-f]+$`)

func TestGenerateToken(t *testing.T) {
	seen := make(map[string]struct{}, 100)
	for i := 0; i < 100; i++ {
		token, err := GenerateToken()
		require.NoError(t, err)
		assert.Len(t, token, TokenLength)
		assert.True(t, hexToken.MatchString(token), "token must be lowercase hex")

		_, dup := seen[token]
		assert.False(t, dup, "tokens must not repeat")
		seen[token] = struct{}{}
	}
}

func TestMaskToken(t *testing.T) {
	token, err := GenerateToken()
	require.NoError(t, err)

	masked := MaskToken(token)
	assert.Len(t, masked, 19)
	assert.Equal(t, token[:8]+"..."+token[len(token)-8:], masked)
	assert.True(t, strings.Contains(masked, "..."))
}

func TestMaskTokenShortInput(t *testing.T) {
	assert.Equal(t, "", MaskToken(""))
	assert.Equal(t, "short", MaskToken("short"))
	assert.Equal(t, "fifteen-chars..", MaskToken("fifteen-chars.."))
	// Sixteen characters is the shortest input that still masks.
	assert.Equal(t, "abcdef01...23456789", MaskToken("abcdef0123456789"))
}
