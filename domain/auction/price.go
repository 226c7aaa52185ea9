package auction

import (
	"github.com/shopspring/decimal"
	"golang.org/x/xerrors"
)

// Prices are stored as decimal strings with at most two fraction digits and
// handled in integer minor units everywhere arithmetic or comparison happens.

// PriceToMinorUnits parses a decimal price string into minor units.
func PriceToMinorUnits(s string) (int64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, xerrors.Errorf("parse price %q: %w", s, err)
	}

	shifted := d.Shift(2)
	if !shifted.IsInteger() {
		return 0, xerrors.Errorf("price %q has sub-cent precision", s)
	}
	return shifted.IntPart(), nil
}

// MinorUnitsToPrice renders minor units back into a decimal price string.
func MinorUnitsToPrice(v int64) string {
	return decimal.New(v, -2).String()
}

// StartingPriceMinorUnits parses the stored starting price into minor units.
func (a *Auction) StartingPriceMinorUnits() (int64, error) {
	return PriceToMinorUnits(a.StartingPrice)
}
