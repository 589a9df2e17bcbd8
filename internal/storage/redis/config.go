package redis

import "time"

// Config holds Redis connection and behavior settings
type Config struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379/0)
	URL string

	// KeyPrefix namespaces every key this storage writes
	KeyPrefix string

	// Pool settings
	PoolSize     int
	MinIdleConns int

	// DictionaryTTL expires cached word lists, 0 keeps them forever
	DictionaryTTL time.Duration
}

// DefaultConfig returns sensible defaults for Redis configuration
func DefaultConfig() Config {
	return Config{
		URL:           "redis://localhost:6379/0",
		KeyPrefix:     "lettercrush",
		PoolSize:      10,
		MinIdleConns:  2,
		DictionaryTTL: 0,
	}
}
