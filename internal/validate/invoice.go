package validate

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	minorUnitsPerMajor = decimal.NewFromInt(100)
	maxMinorUnits      = decimal.NewFromInt(math.MaxInt64)
)

func Required(field string, value string) error {
	if strings.TrimSpace(value) == "" {
		return &BadRequestError{Field: field, Reason: "required"}
	}
	return nil
}

// ToMinorUnits converts an amount in major currency units to minor units,
// rounding to the nearest one.
func ToMinorUnits(field string, amount decimal.Decimal) (int64, error) {
	if !amount.IsPositive() {
		return 0, &BadRequestError{Field: field, Reason: "must be > 0"}
	}
	minor := amount.Mul(minorUnitsPerMajor).Round(0)
	if !minor.IsPositive() {
		return 0, &BadRequestError{Field: field, Reason: "must be > 0"}
	}
	if minor.GreaterThan(maxMinorUnits) {
		return 0, &BadRequestError{Field: field, Reason: "too large"}
	}
	return minor.IntPart(), nil
}
