package util

import (
	"strconv"
	"strings"
)

// ParseInt parses a string to an integer, returning defaultValue if parsing fails
func ParseInt(s string, defaultValue int) int {
	if val, err := strconv.Atoi(s); err == nil {
		return val
	}
	return defaultValue
}

// ParseLimit parses a page-size parameter, clamping it to [1, max]
func ParseLimit(s string, defaultValue, max int) int {
	limit := ParseInt(s, defaultValue)
	if limit < 1 {
		limit = defaultValue
	}
	if limit > max {
		limit = max
	}
	return limit
}

// ParseGenreArray parses a comma-separated string of genres into a slice
func ParseGenreArray(s string) []string {
	if s == "" {
		return []string{}
	}
	genres := strings.Split(s, ",")
	result := make([]string, 0, len(genres))
	for _, g := range genres {
		g = strings.TrimSpace(g)
		if g != "" {
			result = append(result, g)
		}
	}
	return result
}
