package pkg

import (
	"strconv"
	"strings"
)

// CoerceInt converts a decoded JSON value to an int the lenient way:
// numbers are truncated, numeric strings parsed, anything else (including
// absent values) falls back to defaultVal.
func CoerceInt(value any, defaultVal int) int {
	switch v := value.(type) {
	case float64:
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return defaultVal
		}
		return parsed
	default:
		return defaultVal
	}
}
