package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runVersion(t *testing.T) string {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"version"})
	require.NoError(t, rootCmd.Execute())
	return buf.String()
}

func TestVersionCmd(t *testing.T) {
	assert.Equal(t, "version", versionCmd.Use)

	t.Run("prints dev by default", func(t *testing.T) {
		assert.Contains(t, runVersion(t), "pharmaguard version dev")
	})

	t.Run("prints the build version", func(t *testing.T) {
		original := version
		version = "test-version-1.0.0"
		defer func() { version = original }()

		assert.Contains(t, runVersion(t), "pharmaguard version test-version-1.0.0")
	})
}
