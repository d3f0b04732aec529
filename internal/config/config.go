package config

import (
	"os"
	"strconv"
)

// DefaultAutoHideThreshold is the report count at which content is
// automatically hidden when AUTO_HIDE_THRESHOLD is not set.
const DefaultAutoHideThreshold = 10

// AutoHideThreshold returns the configured report-count threshold for
// auto-hiding content.
func AutoHideThreshold() int {
	if v := os.Getenv("AUTO_HIDE_THRESHOLD"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return DefaultAutoHideThreshold
}

// GetEnvOrDefault returns environment variable or default value
func GetEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
