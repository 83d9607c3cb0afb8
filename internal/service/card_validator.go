package service

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"jiffyapply/internal/errors"
)

var (
	cardNumberRegex = regexp.MustCompile(`^\d{12,19}$`)
	expiryRegex     = regexp.MustCompile(`^(0[1-9]|1[0-2])/(\d{2})$`)
	cvvRegex        = regexp.MustCompile(`^\d{3,4}$`)
)

// Card network labels.
const (
	CardVisa       = "Visa"
	CardMastercard = "Mastercard"
	CardAmex       = "Amex"
	CardDiscover   = "Discover"
	CardUnknown    = "Unknown"
)

// CardValidator performs superficial card checks. No payment authorization happens anywhere.
type CardValidator struct {
	now func() time.Time
}

// NewCardValidator creates a new card validator.
func NewCardValidator() *CardValidator {
	return &CardValidator{now: time.Now}
}

// ValidateCard validates card number shape, expiry, and CVV.
func (v *CardValidator) ValidateCard(cardNumber, expiry, cvv string) error {
	if !cardNumberRegex.MatchString(normalizeCardNumber(cardNumber)) {
		return errors.ErrInvalidCard
	}

	if !expiryRegex.MatchString(expiry) || !v.validateExpiry(expiry) {
		return errors.ErrInvalidCard
	}

	if !cvvRegex.MatchString(cvv) {
		return errors.ErrInvalidCard
	}

	return nil
}

// validateExpiry validates that the MM/YY expiry is not in the past.
func (v *CardValidator) validateExpiry(expiry string) bool {
	parts := strings.Split(expiry, "/")
	if len(parts) != 2 {
		return false
	}

	month, err := strconv.Atoi(parts[0])
	if err != nil || month < 1 || month > 12 {
		return false
	}

	year, err := strconv.Atoi(parts[1])
	if err != nil {
		return false
	}
	year += 2000

	// A card is valid through the last day of its expiry month.
	firstOfNextMonth := time.Date(year, time.Month(month)+1, 1, 0, 0, 0, 0, time.UTC)
	return v.now().UTC().Before(firstOfNextMonth)
}

// CardNetwork derives a display label from the leading digits of the number.
func CardNetwork(cardNumber string) string {
	n := normalizeCardNumber(cardNumber)
	switch {
	case strings.HasPrefix(n, "4"):
		return CardVisa
	case len(n) >= 2 && n[0] == '5' && n[1] >= '1' && n[1] <= '5':
		return CardMastercard
	case strings.HasPrefix(n, "34"), strings.HasPrefix(n, "37"):
		return CardAmex
	case strings.HasPrefix(n, "6011"), strings.HasPrefix(n, "65"):
		return CardDiscover
	default:
		return CardUnknown
	}
}

// LastFour returns the last four digits of the card number.
func LastFour(cardNumber string) string {
	n := normalizeCardNumber(cardNumber)
	if len(n) < 4 {
		return n
	}
	return n[len(n)-4:]
}

func normalizeCardNumber(cardNumber string) string {
	return strings.ReplaceAll(strings.ReplaceAll(strings.TrimSpace(cardNumber), " ", ""), "-", "")
}
