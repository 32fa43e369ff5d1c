package service

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"jarvis/internal/domain"
)

type conversionRequest struct {
	Amount float64
	From   string
	To     string
}

// parseConversion parses "<amount> <FROM> <TO>"
func parseConversion(text string) (conversionRequest, error) {
	fields := strings.Fields(text)
	if len(fields) != 3 {
		return conversionRequest{}, fmt.Errorf("expected 3 fields, got %d: %w", len(fields), domain.ErrInputFormat)
	}

	amount, err := strconv.ParseFloat(fields[0], 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return conversionRequest{}, fmt.Errorf("amount %q: %w", fields[0], domain.ErrInputFormat)
	}

	return conversionRequest{
		Amount: amount,
		From:   strings.ToUpper(fields[1]),
		To:     strings.ToUpper(fields[2]),
	}, nil
}

// parsePosition parses the argument of /del
func parsePosition(args []string) (int, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("expected 1 argument, got %d: %w", len(args), domain.ErrInputFormat)
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("position %q: %w", args[0], domain.ErrInputFormat)
	}
	return n, nil
}

// stripTrigger removes a leading trigger phrase and the punctuation after it.
// It reports whether the phrase was present.
func stripTrigger(text, trigger string) (string, bool) {
	text = strings.TrimSpace(text)
	if trigger == "" {
		return text, false
	}

	tr := []rune(trigger)
	rs := []rune(text)
	if len(rs) < len(tr) || !strings.EqualFold(string(rs[:len(tr)]), trigger) {
		return text, false
	}
	if len(rs) > len(tr) && (unicode.IsLetter(rs[len(tr)]) || unicode.IsDigit(rs[len(tr)])) {
		return text, false
	}

	rest := strings.TrimLeftFunc(string(rs[len(tr):]), func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r)
	})
	return strings.TrimSpace(rest), true
}
