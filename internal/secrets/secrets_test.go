// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package secrets

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
		dirs  []string
		want  Set
	}{
		{
			name:  "trims values",
			files: map[string]string{"anthropic-api-key": "  sk-ant-abc123  \n", "judge-model": "claude-haiku-4-5-20251001\n"},
			want:  Set{"anthropic-api-key": "sk-ant-abc123", "judge-model": "claude-haiku-4-5-20251001"},
		},
		{
			name:  "empty and blank files are ignored",
			files: map[string]string{"anthropic-api-key": "k", "empty": "", "blank": " \n\t "},
			want:  Set{"anthropic-api-key": "k"},
		},
		{
			name:  "dotfiles and directories are ignored",
			files: map[string]string{".gitkeep": "", ".hidden": "x", "anthropic-api-key": "k"},
			dirs:  []string{"nested"},
			want:  Set{"anthropic-api-key": "k"},
		},
		{name: "empty directory", want: Set{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for name, content := range tt.files {
				writeSecret(t, dir, name, content, 0o600)
			}
			for _, d := range tt.dirs {
				require.NoError(t, os.Mkdir(filepath.Join(dir, d), 0o755))
			}
			got, err := Load(dir, quiet())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoad_MissingDirectory(t *testing.T) {
	got, err := Load(filepath.Join(t.TempDir(), "nope"), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestLoad_Warnings(t *testing.T) {
	dir := t.TempDir()
	writeSecret(t, dir, "open-key", "v", 0o644)
	writeSecret(t, dir, "closed-key", "v", 0o600)

	var logs bytes.Buffer
	got, err := Load(dir, slog.New(slog.NewTextHandler(&logs, nil)))
	require.NoError(t, err)
	assert.Equal(t, Set{"open-key": "v", "closed-key": "v"}, got)
	assert.Contains(t, logs.String(), "secrets.permissions")
	assert.Contains(t, logs.String(), "open-key")
	assert.NotContains(t, logs.String(), "closed-key")
}

func TestLoad_UnreadableFile(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root ignores permission bits")
	}
	dir := t.TempDir()
	writeSecret(t, dir, "good-key", "value123", 0o600)
	writeSecret(t, dir, "bad-key", "secret", 0o000)

	var logs bytes.Buffer
	got, err := Load(dir, slog.New(slog.NewTextHandler(&logs, nil)))
	require.NoError(t, err)
	assert.Equal(t, Set{"good-key": "value123"}, got)
	assert.Contains(t, logs.String(), "secrets.unreadable")
}

func TestSet_Get(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", " from-env ")

	assert.Equal(t, "from-file", Set{AnthropicAPIKey: "from-file"}.Get(AnthropicAPIKey))
	assert.Equal(t, "from-env", Set{}.Get(AnthropicAPIKey))
	assert.Equal(t, "from-env", Set(nil).Get(AnthropicAPIKey))
	assert.Empty(t, Set{}.Get("unknown-key"))

	t.Setenv("ANTHROPIC_API_KEY", "")
	assert.Empty(t, Set{}.Get(AnthropicAPIKey))
}

func TestKeysAndHint(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, Set{"b": "1", "a": "2"}.Keys())
	assert.Empty(t, Set{}.Keys())
	assert.Equal(t, "ANTHROPIC_API_KEY", EnvVar(AnthropicAPIKey))
	assert.Equal(t, "add .secrets/anthropic-api-key or export ANTHROPIC_API_KEY", Hint(AnthropicAPIKey))
	assert.Equal(t, "add .secrets/other", Hint("other"))
}

func writeSecret(t *testing.T, dir, name, content string, mode os.FileMode) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), mode))
	// WriteFile is subject to umask; set the mode explicitly.
	require.NoError(t, os.Chmod(path, mode))
	t.Cleanup(func() { os.Chmod(path, 0o600) })
}
