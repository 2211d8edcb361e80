// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets reads credentials from a directory of one-value files
// (file name = key, trimmed contents = value), with an environment
// variable as fallback for each known key.
package secrets

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// AnthropicAPIKey is the key file holding the Claude API key.
const AnthropicAPIKey = "anthropic-api-key"

// envVars maps known keys to the environment variable consulted when the
// key file is absent.
var envVars = map[string]string{
	AnthropicAPIKey: "ANTHROPIC_API_KEY",
}

// EnvVar returns the environment variable backing key, or "".
func EnvVar(key string) string {
	return envVars[key]
}

// Set holds the secrets loaded from a directory.
type Set map[string]string

// Load reads every regular, non-hidden file in dir. A missing directory
// yields an empty Set. Files that cannot be read are skipped with a
// warning, as are empty ones; group- or world-readable files load but are
// flagged.
func Load(dir string, logger *slog.Logger) (Set, error) {
	if logger == nil {
		logger = slog.Default()
	}
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return Set{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	set := Set{}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("secrets.unreadable", "file", path, "error", err)
			continue
		}
		v := strings.TrimSpace(string(data))
		if v == "" {
			continue
		}
		if info, err := e.Info(); err == nil && info.Mode().Perm()&0o077 != 0 {
			logger.Warn("secrets.permissions", "file", path, "mode", info.Mode().Perm().String())
		}
		set[name] = v
	}
	return set, nil
}

// Keys returns the loaded key names, sorted.
func (s Set) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the value of key from the directory, falling back to its
// environment variable.
func (s Set) Get(key string) string {
	if v, ok := s[key]; ok {
		return v
	}
	if env := envVars[key]; env != "" {
		return strings.TrimSpace(os.Getenv(env))
	}
	return ""
}

// Hint says where key can be provided, for error messages.
func Hint(key string) string {
	if env := envVars[key]; env != "" {
		return fmt.Sprintf("add .secrets/%s or export %s", key, env)
	}
	return fmt.Sprintf("add .secrets/%s", key)
}
