package service

import (
	"testing"

	"jarvis/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConversion(t *testing.T) {
	tests := []struct {
		name          string
		text          string
		expected      conversionRequest
		expectedError bool
	}{
		{name: "integer amount", text: "100 USD RUB", expected: conversionRequest{Amount: 100, From: "USD", To: "RUB"}},
		{name: "lower case codes", text: "1.5 eur usd", expected: conversionRequest{Amount: 1.5, From: "EUR", To: "USD"}},
		{name: "extra spaces", text: "  10   gbp\tjpy ", expected: conversionRequest{Amount: 10, From: "GBP", To: "JPY"}},
		{name: "codes not validated", text: "5 foo bar", expected: conversionRequest{Amount: 5, From: "FOO", To: "BAR"}},
		{name: "empty", text: "", expectedError: true},
		{name: "one token", text: "100", expectedError: true},
		{name: "two tokens", text: "100 USD", expectedError: true},
		{name: "four tokens", text: "100 USD to RUB", expectedError: true},
		{name: "bad amount", text: "сто USD RUB", expectedError: true},
		{name: "infinity", text: "Inf USD RUB", expectedError: true},
		{name: "nan", text: "nan USD RUB", expectedError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := parseConversion(tt.text)

			if tt.expectedError {
				assert.ErrorIs(t, err, domain.ErrInputFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, req)
		})
	}
}

func TestParsePosition(t *testing.T) {
	tests := []struct {
		name          string
		args          []string
		expected      int
		expectedError bool
	}{
		{name: "number", args: []string{"3"}, expected: 3},
		{name: "zero parses", args: []string{"0"}, expected: 0},
		{name: "negative parses", args: []string{"-1"}, expected: -1},
		{name: "no args", args: nil, expectedError: true},
		{name: "word", args: []string{"two"}, expectedError: true},
		{name: "float", args: []string{"1.5"}, expectedError: true},
		{name: "two args", args: []string{"1", "2"}, expectedError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := parsePosition(tt.args)

			if tt.expectedError {
				assert.ErrorIs(t, err, domain.ErrInputFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, n)
		})
	}
}

func TestStripTrigger(t *testing.T) {
	tests := []struct {
		name          string
		text          string
		trigger       string
		expected      string
		expectedFound bool
	}{
		{name: "comma", text: "Джарвис, привет", trigger: "Джарвис", expected: "привет", expectedFound: true},
		{name: "case insensitive", text: "ДЖАРВИС: статус", trigger: "Джарвис", expected: "статус", expectedFound: true},
		{name: "only trigger", text: "Джарвис...", trigger: "Джарвис", expected: "", expectedFound: true},
		{name: "no trigger", text: "привет", trigger: "Джарвис", expected: "привет", expectedFound: false},
		{name: "longer word", text: "Джарвисов день", trigger: "Джарвис", expected: "Джарвисов день", expectedFound: false},
		{name: "trigger in middle", text: "эй Джарвис", trigger: "Джарвис", expected: "эй Джарвис", expectedFound: false},
		{name: "empty trigger", text: " вопрос ", trigger: "", expected: "вопрос", expectedFound: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rest, found := stripTrigger(tt.text, tt.trigger)
			assert.Equal(t, tt.expected, rest)
			assert.Equal(t, tt.expectedFound, found)
		})
	}
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		value    float64
		expected string
	}{
		{value: 100, expected: "100.0"},
		{value: 2.5, expected: "2.5"},
		{value: 0.001, expected: "0.001"},
		{value: 0, expected: "0.0"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatAmount(tt.value))
		})
	}
}
