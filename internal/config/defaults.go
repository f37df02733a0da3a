package config

const currentVersion = "1"

// DefaultConfig returns the configuration written on first run.
func DefaultConfig() *Config {
	return &Config{
		Version:  currentVersion,
		MaxDepth: 6,
	}
}
