package plugin

import (
	"encoding/json"
	"fmt"
	"math"

	apperrors "smskit/pkg/errors"
)

// Args are the named arguments of one method call, as decoded from JSON.
type Args map[string]interface{}

// Int returns the integer argument name, or def when it is absent or null.
func (a Args) Int(name string, def int) (int, error) {
	v, ok := a[name]
	if !ok || v == nil {
		return def, nil
	}

	switch n := v.(type) {
	case int:
		return n, nil
	case int32:
		return int(n), nil
	case int64:
		return int(n), nil
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) || math.IsNaN(n) {
			return 0, invalidArg(name, "must be an integer")
		}
		return int(n), nil
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, invalidArg(name, "must be an integer")
		}
		return int(i), nil
	default:
		return 0, invalidArg(name, fmt.Sprintf("must be an integer, got %T", v))
	}
}

// String returns the required string argument name.
func (a Args) String(name string) (string, error) {
	v, ok := a[name]
	if !ok || v == nil {
		return "", invalidArg(name, "is required")
	}
	s, ok := v.(string)
	if !ok {
		return "", invalidArg(name, fmt.Sprintf("must be a string, got %T", v))
	}
	return s, nil
}

func invalidArg(name, msg string) error {
	return apperrors.ErrValidation.
		WithDetail("argument", name).
		WithDetail("message", fmt.Sprintf("argument %q %s", name, msg))
}
