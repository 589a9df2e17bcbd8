package game

import "time"

// Config holds the turn rules and timings
type Config struct {
	MinWordLength   int
	MinWords        int           // selectable words guaranteed after each cascade
	EnsureAttempts  int           // grid regenerations allowed per cascade
	MatchDelay      time.Duration // accepted word shown before clearing
	ClearDelay      time.Duration // cleared tiles shown before gravity
	CascadeDelay    time.Duration // fallen tiles shown before refill checks
	WatchdogTimeout time.Duration
	MaxStrikes      int           // 0 disables the strike rule
	TimeLimit       time.Duration // 0 disables the countdown
}

// DefaultConfig returns the standard rules
func DefaultConfig() Config {
	return Config{
		MinWordLength:   3,
		MinWords:        6,
		EnsureAttempts:  50,
		MatchDelay:      300 * time.Millisecond,
		ClearDelay:      300 * time.Millisecond,
		CascadeDelay:    300 * time.Millisecond,
		WatchdogTimeout: 10 * time.Second,
		MaxStrikes:      3,
		TimeLimit:       120 * time.Second,
	}
}
