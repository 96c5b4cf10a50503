package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultEnvPaths are the .env locations probed by LoadEnv, first match wins.
var DefaultEnvPaths = []string{
	".env",
	".env.local",
	"../.env",
}

// LoadEnv loads environment variables from the first .env file found in paths.
// Variables already present in the process environment are never overridden.
// It returns the file that was loaded, or "" when none exists.
func LoadEnv(paths ...string) (string, error) {
	if len(paths) == 0 {
		paths = DefaultEnvPaths
	}

	for _, envPath := range paths {
		if _, err := os.Stat(envPath); err == nil {
			if err := godotenv.Load(envPath); err != nil {
				return "", fmt.Errorf("error loading %s file: %w", envPath, err)
			}
			return envPath, nil
		}
	}

	return "", nil
}

// prefixedEnv collects SPEITE_* variables keyed by their lower-cased setting name.
// Matching is case-insensitive, so speite_device and SPEITE_DEVICE are the same key.
func prefixedEnv() map[string]string {
	vars := make(map[string]string)
	for _, kv := range os.Environ() {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		upper := strings.ToUpper(key)
		if !strings.HasPrefix(upper, EnvPrefix) {
			continue
		}
		vars[strings.ToLower(strings.TrimPrefix(upper, EnvPrefix))] = value
	}
	return vars
}
