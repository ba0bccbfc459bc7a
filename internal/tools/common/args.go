package common

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// GetStringArg returns a trimmed string argument, or def when absent or empty.
func GetStringArg(args map[string]interface{}, key, def string) string {
	if v, ok := args[key].(string); ok {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return def
}

// GetInt64Arg reads an integer argument sent as a JSON number or a numeric
// string. ok is false when the argument is absent.
func GetInt64Arg(args map[string]interface{}, key string) (n int64, ok bool, err error) {
	raw, present := args[key]
	if !present || raw == nil {
		return 0, false, nil
	}

	switch v := raw.(type) {
	case float64:
		if v != math.Trunc(v) || math.Abs(v) > 1<<53 {
			return 0, true, fmt.Errorf("%s must be an integer, got %v", key, v)
		}
		return int64(v), true, nil
	case int:
		return int64(v), true, nil
	case int64:
		return v, true, nil
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, true, fmt.Errorf("%s must be an integer: %w", key, err)
		}
		return n, true, nil
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(v), " ", "")
		if s == "" {
			return 0, false, nil
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, true, fmt.Errorf("%s must be an integer, got %q", key, v)
		}
		return n, true, nil
	default:
		return 0, true, fmt.Errorf("%s has unsupported type %T", key, raw)
	}
}

// GetBoolArg returns a boolean argument, or def when absent.
func GetBoolArg(args map[string]interface{}, key string, def bool) bool {
	if v, ok := args[key].(bool); ok {
		return v
	}
	return def
}
