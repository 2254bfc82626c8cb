package expense

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	maxAmount          = 1_000_000
	maxAmountDigits    = 12
	maxDescriptionLen  = 500
	minIDLen           = 3
	maxFutureDateSkew  = 24 * time.Hour
	maxPastDateWindow  = 10 * 365 * 24 * time.Hour
	minMonthlySumYear  = 2000
)

// descriptionDenylist blocks the common script-injection markers,
// matched case-insensitively
var descriptionDenylist = []string{"<script", "javascript:", "onerror=", "onload="}

// ValidateAmount checks an expense amount: positive, at most one million,
// and with a bounded digit count.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return errors.New("amount must be greater than zero")
	}
	if amount.GreaterThan(decimal.NewFromInt(maxAmount)) {
		return fmt.Errorf("amount must not exceed %d", maxAmount)
	}

	digits := 0
	for _, r := range amount.Abs().String() {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	if digits > maxAmountDigits {
		return fmt.Errorf("amount must have at most %d digits", maxAmountDigits)
	}
	return nil
}

// ValidateDescription checks length and rejects script-injection markers
func ValidateDescription(description string) error {
	if len(description) > maxDescriptionLen {
		return fmt.Errorf("description must be at most %d characters", maxDescriptionLen)
	}
	lower := strings.ToLower(description)
	for _, marker := range descriptionDenylist {
		if strings.Contains(lower, marker) {
			return errors.New("description contains disallowed content")
		}
	}
	return nil
}

// ValidateDate checks an epoch-millisecond event timestamp: positive, at most
// one day in the future, at most ten years in the past.
func ValidateDate(millis int64) error {
	if millis <= 0 {
		return errors.New("date must be a positive timestamp")
	}
	t := time.UnixMilli(millis)
	now := time.Now()
	if t.After(now.Add(maxFutureDateSkew)) {
		return errors.New("date must not be more than one day in the future")
	}
	if t.Before(now.Add(-maxPastDateWindow)) {
		return errors.New("date must not be more than ten years in the past")
	}
	return nil
}

// ValidateID checks the format of a supplied entity id. Existence is not
// checked here.
func ValidateID(id string) error {
	if len(id) < minIDLen {
		return fmt.Errorf("id must be at least %d characters", minIDLen)
	}
	return nil
}

// ValidateMonth checks a month number
func ValidateMonth(month int) error {
	if month < 1 || month > 12 {
		return errors.New("month must be between 1 and 12")
	}
	return nil
}

// ValidateYear checks a year against a sane historical range
func ValidateYear(year int) error {
	if year < minMonthlySumYear || year > time.Now().Year()+1 {
		return fmt.Errorf("year must be between %d and %d", minMonthlySumYear, time.Now().Year()+1)
	}
	return nil
}
