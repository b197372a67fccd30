package accesscode

import (
	"errors"
	"io"
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Shape(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := Generate()
		require.NoError(t, err)
		require.Len(t, code, Length)
		require.True(t, Valid(code), code)
	}
}

func TestGenerate_CoversAlphabet(t *testing.T) {
	seen := map[rune]bool{}
	for i := 0; i < 2000; i++ {
		code, err := Generate()
		require.NoError(t, err)
		for _, r := range code {
			seen[r] = true
		}
	}
	assert.Len(t, seen, len(Alphabet))
}

func TestGenerate_RandomFailure(t *testing.T) {
	orig := randInt
	t.Cleanup(func() { randInt = orig })
	randInt = func(io.Reader, *big.Int) (*big.Int, error) { return nil, errors.New("entropy exhausted") }

	_, err := Generate()
	require.Error(t, err)
}

func TestValid(t *testing.T) {
	assert.True(t, Valid("ZZZZZZZZ"))
	assert.True(t, Valid("AB12CD34"))
	assert.False(t, Valid("ab12cd34"))
	assert.False(t, Valid("AB12CD3"))
	assert.False(t, Valid(strings.Repeat("A", 9)))
	assert.False(t, Valid("AB12-D34"))
}
