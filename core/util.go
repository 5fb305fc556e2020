package core

import (
	"encoding/json"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// Truncate shortens s to max runes, marking the cut with an ellipsis.
func Truncate(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max-1]) + "…"
}

// Logger is implemented by the error reporting services.
// args may carry errors, maps of extras and the request's user.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}

// Flag is a boolean that also decodes from the 0/1 numbers sqlite-era clients send.
type Flag bool

func (f *Flag) UnmarshalJSON(b []byte) error {
	switch strings.TrimSpace(string(b)) {
	case "null", "false", "0", `"0"`, `"false"`, `""`:
		*f = false
	case "true", "1", `"1"`, `"true"`:
		*f = true
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return errors.Errorf("invalid flag %s", b)
		}
		v, err := n.Float64()
		if err != nil {
			return errors.Errorf("invalid flag %s", b)
		}
		*f = v != 0
	}
	return nil
}
