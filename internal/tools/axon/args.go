package axon

import (
	"math"
	"time"

	"github.com/axonhq/axon/internal/domain"
)

// Argument extraction helpers. Tool arguments arrive as map[string]any decoded
// from JSON, so numbers are float64 and absent keys are simply missing.
// Helpers return typed validation errors so the dispatcher can encode them in
// the canonical error body.

// requireString extracts a non-empty string argument.
func requireString(args map[string]any, key string) (string, error) {
	v, exists := args[key]
	if !exists || v == nil {
		return "", domain.Validationf("%s is required", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", domain.Validationf("%s must be a string, got %T", key, v)
	}
	if s == "" {
		return "", domain.Validationf("%s must not be empty", key)
	}
	return s, nil
}

// optionalString extracts a string argument, nil when absent or empty.
func optionalString(args map[string]any, key string) (*string, error) {
	v, exists := args[key]
	if !exists || v == nil {
		return nil, nil
	}
	s, ok := v.(string)
	if !ok {
		return nil, domain.Validationf("%s must be a string, got %T", key, v)
	}
	if s == "" {
		return nil, nil
	}
	return &s, nil
}

// presentString extracts a string argument, nil only when absent or JSON
// null. Unlike optionalString a provided empty string comes back as-is, so
// callers can tell "clear the field" apart from "leave unchanged".
func presentString(args map[string]any, key string) (*string, error) {
	v, exists := args[key]
	if !exists || v == nil {
		return nil, nil
	}
	s, ok := v.(string)
	if !ok {
		return nil, domain.Validationf("%s must be a string, got %T", key, v)
	}
	return &s, nil
}

// requireInt64 extracts an integer argument. JSON numbers decode as float64;
// fractional values are rejected rather than silently truncated.
func requireInt64(args map[string]any, key string) (int64, error) {
	v, exists := args[key]
	if !exists || v == nil {
		return 0, domain.Validationf("%s is required", key)
	}
	f, ok := v.(float64)
	if !ok {
		return 0, domain.Validationf("%s must be a number, got %T", key, v)
	}
	if f != math.Trunc(f) {
		return 0, domain.Validationf("%s must be an integer, got %g", key, f)
	}
	return int64(f), nil
}

// optionalInt64 extracts an integer argument, nil when absent.
func optionalInt64(args map[string]any, key string) (*int64, error) {
	v, exists := args[key]
	if !exists || v == nil {
		return nil, nil
	}
	f, ok := v.(float64)
	if !ok {
		return nil, domain.Validationf("%s must be a number, got %T", key, v)
	}
	if f != math.Trunc(f) {
		return nil, domain.Validationf("%s must be an integer, got %g", key, f)
	}
	n := int64(f)
	return &n, nil
}

// optionalInt extracts an int argument, nil when absent.
func optionalInt(args map[string]any, key string) (*int, error) {
	n, err := optionalInt64(args, key)
	if err != nil || n == nil {
		return nil, err
	}
	i := int(*n)
	return &i, nil
}

// optionalFloat64 extracts a float argument, nil when absent.
func optionalFloat64(args map[string]any, key string) (*float64, error) {
	v, exists := args[key]
	if !exists || v == nil {
		return nil, nil
	}
	f, ok := v.(float64)
	if !ok {
		return nil, domain.Validationf("%s must be a number, got %T", key, v)
	}
	return &f, nil
}

// optionalTime extracts an RFC 3339 timestamp argument, nil when absent.
func optionalTime(args map[string]any, key string) (*time.Time, error) {
	s, err := optionalString(args, key)
	if err != nil || s == nil {
		return nil, err
	}
	t, err := time.Parse(time.RFC3339, *s)
	if err != nil {
		return nil, domain.Validationf("%s must be an RFC 3339 timestamp, got %q", key, *s)
	}
	return &t, nil
}

// stringSlice extracts a string array argument, empty when absent. Non-string
// elements are rejected.
func stringSlice(args map[string]any, key string) ([]string, error) {
	v, exists := args[key]
	if !exists || v == nil {
		return nil, nil
	}
	raw, ok := v.([]any)
	if !ok {
		return nil, domain.Validationf("%s must be an array of strings, got %T", key, v)
	}
	out := make([]string, 0, len(raw))
	for _, x := range raw {
		s, ok := x.(string)
		if !ok {
			return nil, domain.Validationf("%s must contain only strings, got %T", key, x)
		}
		out = append(out, s)
	}
	return out, nil
}

// nullableString reports whether key is present in args and, when it is, the
// string value (nil for JSON null or the empty string). update_task and
// assign_task use this to tell "unassign" apart from "leave unchanged".
func nullableString(args map[string]any, key string) (value *string, set bool, err error) {
	v, exists := args[key]
	if !exists {
		return nil, false, nil
	}
	if v == nil {
		return nil, true, nil
	}
	s, ok := v.(string)
	if !ok {
		return nil, false, domain.Validationf("%s must be a string or null, got %T", key, v)
	}
	if s == "" {
		return nil, true, nil
	}
	return &s, true, nil
}
