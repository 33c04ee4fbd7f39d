package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// DefaultEnvPaths returns the candidate .env locations, most specific
// first: next to the config file, then the working directory.
func DefaultEnvPaths(configDir string) []string {
	paths := []string{".env"}
	if configDir != "" && configDir != "." {
		paths = append([]string{filepath.Join(configDir, ".env")}, paths...)
	}
	return paths
}

// LoadDotenv loads the first existing .env file from paths into the
// process environment and returns its path. With override enabled the
// file values replace machine-level environment values of the same name;
// this is deliberate, a stale key exported in the shell must not shadow
// the key the operator just rotated in the file. No file found is not an
// error.
func LoadDotenv(paths []string, override bool) (string, error) {
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		var err error
		if override {
			err = godotenv.Overload(path)
		} else {
			err = godotenv.Load(path)
		}
		if err != nil {
			return "", fmt.Errorf("failed to load %s: %w", path, err)
		}
		syncCredentialAliases()
		return path, nil
	}
	return "", nil
}

// EnvFileValues reads a .env file without touching the process
// environment. Used by the keycheck diagnostic to compare file-level and
// machine-level values.
func EnvFileValues(path string) (map[string]string, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return values, nil
}

// syncCredentialAliases forces GEMINI_API_KEY and GOOGLE_API_KEY to the
// same resolved value so every downstream consumer observes one
// credential. GEMINI_API_KEY is authoritative when both are set.
func syncCredentialAliases() {
	key := os.Getenv("GEMINI_API_KEY")
	if key == "" {
		key = os.Getenv("GOOGLE_API_KEY")
	}
	if key == "" {
		return
	}
	os.Setenv("GEMINI_API_KEY", key)
	os.Setenv("GOOGLE_API_KEY", key)
}

// Redact shortens a credential for display, keeping a recognizable
// prefix. Empty input stays empty.
func Redact(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 8 {
		return "..."
	}
	return key[:8] + "..."
}
