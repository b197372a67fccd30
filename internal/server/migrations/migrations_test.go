package migrations

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFor(t *testing.T) {
	for _, service := range []string{"auth", "profiles", "teams"} {
		t.Run(service, func(t *testing.T) {
			sub, err := For(service)
			require.NoError(t, err)

			entries, err := fs.ReadDir(sub, ".")
			require.NoError(t, err)
			require.NotEmpty(t, entries)
			for _, e := range entries {
				b, err := fs.ReadFile(sub, e.Name())
				require.NoError(t, err)
				assert.True(t, strings.HasPrefix(string(b), "-- +goose Up"), e.Name())
			}
		})
	}
}

func TestFor_UnknownService(t *testing.T) {
	_, err := For("billing")
	require.Error(t, err)
}
