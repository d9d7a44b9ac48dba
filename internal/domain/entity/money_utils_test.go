package entity

import (
	"testing"

	errs "github.com/amirhossein-jamali/payment-reconciler/internal/domain/error"

	"github.com/stretchr/testify/assert"
)

func TestValidateAndConvertAmount(t *testing.T) {
	tests := []struct {
		name          string
		amount        string
		expectedCents int64
		expectedError error
	}{
		{
			name:          "Valid amount with two decimals",
			amount:        "100.50",
			expectedCents: 10050,
		},
		{
			name:          "Valid amount with one decimal",
			amount:        "100.5",
			expectedCents: 10050,
		},
		{
			name:          "Valid amount without decimals",
			amount:        "100",
			expectedCents: 10000,
		},
		{
			name:          "Valid amount with trailing dot",
			amount:        "10.",
			expectedCents: 1000,
		},
		{
			name:          "Valid amount with surrounding whitespace",
			amount:        "  25.99  ",
			expectedCents: 2599,
		},
		{
			name:          "Smallest valid amount",
			amount:        "0.01",
			expectedCents: 1,
		},
		{
			name:          "Empty amount",
			amount:        "",
			expectedError: errs.ErrInvalidAmount,
		},
		{
			name:          "Whitespace only",
			amount:        "   ",
			expectedError: errs.ErrInvalidAmount,
		},
		{
			name:          "Negative amount",
			amount:        "-10.00",
			expectedError: errs.ErrNegativeAmount,
		},
		{
			name:          "Zero amount",
			amount:        "0.00",
			expectedError: errs.ErrInvalidAmount,
		},
		{
			name:          "Too many decimal places",
			amount:        "10.123",
			expectedError: errs.ErrInvalidAmount,
		},
		{
			name:          "Multiple decimal points",
			amount:        "10.0.0",
			expectedError: errs.ErrInvalidAmount,
		},
		{
			name:          "Non-numeric input",
			amount:        "ten dollars",
			expectedError: errs.ErrInvalidAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cents, err := ValidateAndConvertAmount(tt.amount)

			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.ErrorIs(t, err, tt.expectedError)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expectedCents, cents)
		})
	}
}

func TestAmountInCentsToString(t *testing.T) {
	tests := []struct {
		name     string
		cents    int64
		expected string
	}{
		{"Whole amount", 1000, "10.00"},
		{"Amount with cents", 1015, "10.15"},
		{"Less than one unit", 5, "0.05"},
		{"Exactly one cent", 1, "0.01"},
		{"Zero", 0, "0.00"},
		{"Negative amount", -1250, "-12.50"},
		{"Large amount", 123456789, "1234567.89"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, AmountInCentsToString(tt.cents))
		})
	}
}

func TestEnsureTwoDecimalPlaces(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		expected string
	}{
		{"No decimal point", "10", "10.00"},
		{"One decimal place", "10.1", "10.10"},
		{"Two decimal places", "10.15", "10.15"},
		{"More than two decimal places truncates", "10.156", "10.15"},
		{"Trailing dot", "10.", "10.00"},
		{"Empty string", "", "0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, EnsureTwoDecimalPlaces(tt.amount))
		})
	}
}
