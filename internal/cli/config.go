package cli

import (
	"os"
)

// Config holds CLI configuration
type Config struct {
	ServerURL     string
	Output        string
	DictionaryDir string
	Verbose       bool
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		ServerURL:     getEnvOrDefault("LETTERCRUSH_SERVER", "http://localhost:8080"),
		Output:        getEnvOrDefault("LETTERCRUSH_OUTPUT", "text"),
		DictionaryDir: os.Getenv("DICTIONARY_DIR"),
		Verbose:       false,
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
