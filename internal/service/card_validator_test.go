package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"jiffyapply/internal/errors"
)

func TestCardNetwork(t *testing.T) {
	tests := []struct {
		number string
		want   string
	}{
		{"4111111111111111", CardVisa},
		{"4111 1111 1111 1111", CardVisa},
		{"5500000000000004", CardMastercard},
		{"5105-1051-0510-5100", CardMastercard},
		{"5600000000000000", CardUnknown},
		{"5000000000000000", CardUnknown},
		{"340000000000009", CardAmex},
		{"378282246310005", CardAmex},
		{"6011111111111117", CardDiscover},
		{"6500000000000002", CardDiscover},
		{"6200000000000000", CardUnknown},
		{"", CardUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.number, func(t *testing.T) {
			assert.Equal(t, tt.want, CardNetwork(tt.number))
		})
	}
}

func TestLastFour(t *testing.T) {
	assert.Equal(t, "1111", LastFour("4111 1111 1111 1111"))
	assert.Equal(t, "12", LastFour("12"))
}

func TestCardValidator_ValidateCard(t *testing.T) {
	v := NewCardValidator()
	v.now = func() time.Time { return time.Date(2026, time.June, 15, 0, 0, 0, 0, time.UTC) }

	tests := []struct {
		name    string
		number  string
		expiry  string
		cvv     string
		wantErr bool
	}{
		{"valid visa", "4111 1111 1111 1111", "12/28", "123", false},
		{"expiring this month", "4111111111111111", "06/26", "123", false},
		{"expired last month", "4111111111111111", "05/26", "123", true},
		{"bad expiry format", "4111111111111111", "2028-12", "123", true},
		{"letters in number", "4111abcd11111111", "12/28", "123", true},
		{"too short", "41111", "12/28", "123", true},
		{"amex cvv", "378282246310005", "12/28", "1234", false},
		{"short cvv", "4111111111111111", "12/28", "12", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateCard(tt.number, tt.expiry, tt.cvv)
			if tt.wantErr {
				assert.ErrorIs(t, err, errors.ErrValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
