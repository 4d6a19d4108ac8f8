package timer

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseDuration reads a duration typed by a user: a Go duration ("4m30s"),
// a clock value ("4:30", "1:05:00") or a bare number of seconds ("270").
// The result is truncated to whole seconds and must be positive.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty duration")
	}

	var d time.Duration
	switch {
	case strings.Contains(s, ":"):
		parts := strings.Split(s, ":")
		if len(parts) > 3 {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
		for _, p := range parts {
			n, err := strconv.Atoi(p)
			if err != nil || n < 0 {
				return 0, fmt.Errorf("invalid duration %q", s)
			}
			d = d*60 + time.Duration(n)
		}
		d *= time.Second
	default:
		if n, err := strconv.Atoi(s); err == nil {
			d = time.Duration(n) * time.Second
			break
		}
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
		d = parsed
	}

	d = d.Truncate(Step)
	if d <= 0 {
		return 0, fmt.Errorf("duration %q must be at least one second", s)
	}
	return d, nil
}

// ParsePresets reads two durations separated by spaces or a comma.
func ParsePresets(s string) ([2]time.Duration, error) {
	var out [2]time.Duration
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' || r == '/' })
	if len(fields) != 2 {
		return out, fmt.Errorf("want two durations, got %d", len(fields))
	}
	for i, f := range fields {
		d, err := ParseDuration(f)
		if err != nil {
			return out, err
		}
		out[i] = d
	}
	return out, nil
}
