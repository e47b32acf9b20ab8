package validate

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	reLeadingInt = regexp.MustCompile(`^[+-]?[0-9]+`)
	reDate       = regexp.MustCompile(`^[0-9]{4}-[0-9]{2}-[0-9]{2}$`)
	reCategory   = regexp.MustCompile(`^[a-z0-9_-]{1,40}$`)
)

// Int parses the leading integer of s the way a browser form would: "12abc" is 12,
// "abc" is not a number.
func Int(s string) (int64, bool) {
	m := reLeadingInt.FindString(strings.TrimSpace(s))
	if m == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(m, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Qty returns a cart quantity; anything below 1 or unparsable is 1.
func Qty(s string) int {
	n, ok := Int(s)
	if !ok || n < 1 {
		return 1
	}
	if n > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(n)
}

// ID validates a positive numeric identifier.
func ID(s string) (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	return n, err == nil && n > 0
}

// Date accepts a calendar date as YYYY-MM-DD. Empty input is valid and means "no bound".
func Date(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", true
	}
	if !reDate.MatchString(s) {
		return "", false
	}
	if _, err := time.Parse("2006-01-02", s); err != nil {
		return "", false
	}
	return s, true
}

// Category validates a category slug from the URL.
func Category(s string) (string, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	return s, reCategory.MatchString(s)
}

// Required trims every value and reports whether all of them are non-empty.
func Required(vals ...string) bool {
	for _, v := range vals {
		if strings.TrimSpace(v) == "" {
			return false
		}
	}
	return true
}

// Next keeps post-login redirects on this site.
func Next(s, fallback string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "/") || strings.HasPrefix(s, "//") || strings.HasPrefix(s, "/\\") {
		return fallback
	}
	return s
}
