package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var ErrShelfLifeFormat = errors.New("shelf life must be MM/YYYY")

// ParseShelfLife parses an MM/YYYY shelf life into the last instant of that month (UTC).
func ParseShelfLife(s string) (time.Time, error) {
	month, year, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok || len(month) != 2 || len(year) != 4 {
		return time.Time{}, fmt.Errorf("%w: %q", ErrShelfLifeFormat, s)
	}
	m, err := strconv.Atoi(month)
	if err != nil || m < 1 || m > 12 {
		return time.Time{}, fmt.Errorf("%w: %q", ErrShelfLifeFormat, s)
	}
	y, err := strconv.Atoi(year)
	if err != nil || y < 1900 {
		return time.Time{}, fmt.Errorf("%w: %q", ErrShelfLifeFormat, s)
	}
	firstOfNext := time.Date(y, time.Month(m)+1, 1, 0, 0, 0, 0, time.UTC)
	return firstOfNext.Add(-time.Nanosecond), nil
}

func ValidShelfLife(s string) bool {
	_, err := ParseShelfLife(s)
	return err == nil
}

// Expired reports whether the shelf-life month has fully passed at now.
func Expired(shelfLife string, now time.Time) bool {
	end, err := ParseShelfLife(shelfLife)
	if err != nil {
		return false
	}
	return end.Before(now)
}

// ExpiresWithin reports whether the shelf-life month ends before now+window.
// Already expired products are included.
func ExpiresWithin(shelfLife string, now time.Time, window time.Duration) (time.Time, bool) {
	end, err := ParseShelfLife(shelfLife)
	if err != nil {
		return time.Time{}, false
	}
	return end, end.Before(now.Add(window))
}
