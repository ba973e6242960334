// Package ledger provides the double-entry ledger model: amounts with
// explicit cost bases, per-account balances, transaction validation and
// running-balance computation over an ordered posting history.
//
// All quantities are fixed-point integers scaled by 10^dps, where dps is set
// once per ledger and shared by every commodity. Decimal arithmetic is only
// used at the parse and conversion boundary; balances are plain integer sums.
package ledger

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jdekker/daybook/date"
)

// MaxQuantity is the largest magnitude a quantity may take. Quantities beyond
// this are not exactly representable in double-precision consumers of the
// ledger.
const MaxQuantity = int64(1)<<53 - 1

// Amount is a fixed-point quantity of a commodity. The commodity string may
// carry a trailing cost base: "USD {1.50}" is a unit price, "USD {{150}}" a
// total price, both denominated in the reporting commodity.
type Amount struct {
	Quantity  int64
	Commodity string
}

// costBase is a parsed cost base suffix of a commodity string.
type costBase struct {
	price decimal.Decimal
	total bool // {{P}} rather than {P}
}

// splitCommodity splits a commodity string into its symbol and raw cost base
// suffix. The second return is empty when no cost base is present.
func splitCommodity(commodity string) (symbol, suffix string) {
	if i := strings.IndexByte(commodity, '{'); i >= 0 {
		return strings.TrimRight(commodity[:i], " "), commodity[i:]
	}
	return commodity, ""
}

// parseCostBase parses the cost base suffix of a commodity string.
func parseCostBase(commodity string) (costBase, error) {
	_, suffix := splitCommodity(commodity)
	if suffix == "" {
		return costBase{}, &MissingCostBaseError{Commodity: commodity}
	}

	var raw string
	var total bool
	switch {
	case strings.HasPrefix(suffix, "{{") && strings.HasSuffix(suffix, "}}"):
		raw, total = suffix[2:len(suffix)-2], true
	case strings.HasPrefix(suffix, "{") && strings.HasSuffix(suffix, "}"):
		raw, total = suffix[1:len(suffix)-1], false
	default:
		return costBase{}, &MissingCostBaseError{Commodity: commodity}
	}

	price, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return costBase{}, &MissingCostBaseError{Commodity: commodity}
	}
	return costBase{price: price, total: total}, nil
}

// AsCost converts a quantity of the given commodity into an integer cost in
// the reporting commodity. The reporting commodity converts to itself; any
// other commodity must carry a cost base.
//
// A total-price cost base values the whole lot: the result depends only on
// the sign of the quantity, so a partial disposal of a total-priced lot
// carries the full lot cost. This mirrors the historical behaviour of ledgers
// recorded with {{P}} bases and is deliberately left unchanged.
//
// Rounding is to the nearest integer, ties away from zero.
func AsCost(quantity int64, commodity string, meta Metadata) (int64, error) {
	if commodity == meta.ReportingCommodity {
		return quantity, nil
	}

	base, err := parseCostBase(commodity)
	if err != nil {
		return 0, err
	}

	if base.total {
		cost := base.price.Shift(meta.DecimalPlaces).Round(0).IntPart()
		switch {
		case quantity < 0:
			return -cost, nil
		case quantity == 0:
			return 0, nil
		default:
			return cost, nil
		}
	}

	return decimal.NewFromInt(quantity).Mul(base.price).Round(0).IntPart(), nil
}

// ParseQuantity parses a decimal quantity string into the ledger's fixed-point
// integer representation. Excess precision and out-of-range magnitudes are
// errors, never truncated.
func ParseQuantity(str string, dps int32) (int64, error) {
	d, err := decimal.NewFromString(str)
	if err != nil {
		return 0, &InvalidQuantityError{Value: str, Reason: "not a decimal number"}
	}

	scaled := d.Shift(dps)
	if !scaled.IsInteger() {
		return 0, &InvalidQuantityError{
			Value:  str,
			Reason: fmt.Sprintf("more than %d decimal places", dps),
		}
	}
	if scaled.Abs().Cmp(decimal.NewFromInt(MaxQuantity)) > 0 {
		return 0, &InvalidQuantityError{Value: str, Reason: "exceeds safe integer range"}
	}
	return scaled.IntPart(), nil
}

// FormatQuantity renders a fixed-point quantity with the ledger's decimal
// places, e.g. 11000 with dps 2 renders as "110.00".
func FormatQuantity(quantity int64, dps int32) string {
	return decimal.New(quantity, -dps).StringFixed(dps)
}

// Metadata carries the per-ledger configuration every computation depends on.
type Metadata struct {
	// ReportingCommodity is the commodity all reports are expressed in. It
	// needs no cost base.
	ReportingCommodity string `json:"reportingCommodity"`

	// DecimalPlaces scales every quantity in the ledger; set once at ledger
	// creation and identical for all commodities.
	DecimalPlaces int32 `json:"decimalPlaces"`

	// EOFY is the recurring financial-year-end day, the default report date
	// anchor and equity reclassification boundary.
	EOFY date.MonthDay `json:"eofy"`
}
