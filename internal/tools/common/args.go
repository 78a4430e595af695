package common

import (
	"fmt"
	"time"
)

// StringArg returns the string argument name, or "" when it is missing or
// not a string.
func StringArg(args map[string]any, name string) string {
	v, _ := args[name].(string)
	return v
}

// RequiredString returns the non-empty string argument name.
func RequiredString(args map[string]any, name string) (string, error) {
	v := StringArg(args, name)
	if v == "" {
		return "", fmt.Errorf("%s is required", name)
	}
	return v, nil
}

// TimeArg parses the optional RFC3339 argument name. A missing argument
// yields the zero time.
func TimeArg(args map[string]any, name string) (time.Time, error) {
	v := StringArg(args, name)
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be an RFC3339 time: %w", name, err)
	}
	return t, nil
}

// IntArg returns the numeric argument name, or def when it is missing.
// JSON numbers arrive as float64.
func IntArg(args map[string]any, name string, def int) (int, error) {
	switch v := args[name].(type) {
	case nil:
		return def, nil
	case float64:
		if v != float64(int(v)) {
			return 0, fmt.Errorf("%s must be a whole number", name)
		}
		return int(v), nil
	case int:
		return v, nil
	default:
		return 0, fmt.Errorf("%s must be a number", name)
	}
}
