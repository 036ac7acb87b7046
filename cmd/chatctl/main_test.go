package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio-chat-api/pkg/utils"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("APP_ENV", "test")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		configDir = ""
	})

	err := rootCmd.Execute()
	return out.String(), err
}

func TestClassifyCommand(t *testing.T) {
	out, err := runCLI(t, "--config-dir", t.TempDir(), "classify", "hello")
	require.NoError(t, err)
	assert.Equal(t, "greeting", strings.TrimSpace(out))
}

func TestPassagesCommand(t *testing.T) {
	out, err := runCLI(t, "--config-dir", t.TempDir(), "passages")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.NotEmpty(t, lines)
	assert.True(t, strings.HasPrefix(lines[0], "[0] ("))
}

func TestTokenCommand(t *testing.T) {
	t.Run("requires secret", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "")
		t.Setenv("SECURITY_JWT_SECRET", "")
		_, err := runCLI(t, "--config-dir", t.TempDir(), "token")
		assert.Error(t, err)
	})

	t.Run("issues operator token", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(`
security:
  jwt:
    secret: cli-test-secret
`), 0o600))
		t.Setenv("JWT_SECRET", "")
		t.Setenv("SECURITY_JWT_SECRET", "")

		out, err := runCLI(t, "--config-dir", dir, "token", "--subject", "alice")
		require.NoError(t, err)

		claims, err := utils.NewJWTManager("cli-test-secret", "portfolio-chat-api").ParseToken(strings.TrimSpace(out))
		require.NoError(t, err)
		assert.Equal(t, utils.RoleOperator, claims.Role)
		assert.Equal(t, "alice", claims.Subject)
	})
}
