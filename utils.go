package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"invitation/constants"
)

// parseAllowedOrigins splits a comma-separated AllowedOrigins string into
// a cleaned slice of origin strings. Returns nil if the input is empty.
func parseAllowedOrigins(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	var origins []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		p = strings.TrimRight(p, "/")
		if p != "" {
			origins = append(origins, strings.ToLower(p))
		}
	}
	return origins
}

// splitAddresses splits a comma separated list of mail addresses.
func splitAddresses(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// formatDisplayDate renders t as YYYY.MM.DD in loc. The zero time renders
// as an empty string.
func formatDisplayDate(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	return t.In(loc).Format(constants.DISPLAY_DATE_FORMAT)
}

func formatStoredTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// parseStoredTime is the inverse of formatStoredTime. Unparsable cells give
// the zero time.
func parseStoredTime(cell string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, cell)
	if err != nil {
		return time.Time{}
	}
	return t
}

// positiveIntOr parses a query value, falling back to def when it is missing,
// malformed or not positive.
func positiveIntOr(raw string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return def
	}
	return n
}

// flexInt accepts both 2 and "2". HTML form values reach us as strings.
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*f = 0
			return nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("count %q is not a number", s)
		}
		*f = flexInt(n)
		return nil
	}

	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexInt(n)
	return nil
}

// ceilDiv returns ceil(a/b) for non-negative a and positive b.
func ceilDiv(a, b int) int {
	if a == 0 {
		return 0
	}
	return (a + b - 1) / b
}
