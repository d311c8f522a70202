package engine

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

func normalizeName(name string) (string, error) {
	n := strings.TrimSpace(name)
	if n == "" {
		return "", errors.New("name is required")
	}
	return n, nil
}

// ParseTaskKind parses user input to a TaskKind.
// Supported: standard, paid (plus the legacy names main and demon).
// Empty input is KindStandard.
func ParseTaskKind(input string) (TaskKind, error) {
	switch strings.TrimSpace(strings.ToLower(input)) {
	case "", "standard", "std", "main":
		return KindStandard, nil
	case "paid", "paid_challenge", "challenge", "demon":
		return KindPaidChallenge, nil
	default:
		return "", fmt.Errorf("unknown task kind %q (want standard or paid)", input)
	}
}

// ParsePoints parses a non-negative point amount such as "20" or "12.5".
func ParsePoints(input string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(input))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid points %q", input)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("points must not be negative: %s", input)
	}
	return d, nil
}

// ParseDay parses YYYY-MM-DD, "today", "tomorrow" or "yesterday" in now's
// location and returns the start of that day. Deadlines use the end of
// that day.
func ParseDay(input string, now time.Time) (time.Time, error) {
	s := strings.TrimSpace(strings.ToLower(input))
	switch s {
	case "today":
		return StartOfDay(now), nil
	case "tomorrow":
		return StartOfDay(now).AddDate(0, 0, 1), nil
	case "yesterday":
		return StartOfDay(now).AddDate(0, 0, -1), nil
	}
	d, err := time.ParseInLocation("2006-01-02", s, now.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", input)
	}
	return d, nil
}
