package ledger

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// dateLayouts are tried in order. Day-first layouts win over month-first ones,
// matching how the ledgers are keyed in.
var dateLayouts = []string{
	"2006-01-02",
	"2-1-2006",
	"2/1/2006",
	"2.1.2006",
	"2-Jan-2006",
	"2-Jan-06",
	"2 Jan 2006",
	"Jan 2, 2006",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

// maxSerialDay is 9999-12-31 in the 1900 date system.
const maxSerialDay = 2958465

// ParseDate reads a ledger date cell. It accepts textual dates and spreadsheet
// serial day numbers (epoch 1899-12-30). The result is a UTC calendar date.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return calendarDate(t), true
		}
	}

	serial, err := strconv.ParseFloat(s, 64)
	if err != nil || serial <= 0 || serial > maxSerialDay {
		return time.Time{}, false
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return time.Time{}, false
	}
	return calendarDate(t), true
}

func calendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AmountState tells a parsed zero apart from a blank or garbage cell.
type AmountState int

const (
	AmountEmpty AmountState = iota
	AmountParsed
	AmountInvalid
)

// Amount is the result of a best-effort currency parse.
// Value is zero unless State is AmountParsed.
type Amount struct {
	Value decimal.Decimal
	State AmountState
}

// Parsed amounts outside these bounds are treated as unreadable. Arithmetic on
// a decimal rescales it to the larger exponent, so a cell like "1e30000000"
// would otherwise allocate a multi-megabyte integer on the first comparison.
const (
	maxAmountIntegerDigits = 15
	minAmountExponent      = -40
)

var amountNoise = strings.NewReplacer(
	",", "",
	"₹", "",
	"INR", "",
	"Rs.", "",
	"Rs", "",
	" ", "",
	"\u00a0", "",
)

// ParseAmount reads a currency cell such as "1,00,000.50", "₹ 250" or "(75.00)".
// It never fails; unreadable input yields a zero Value with State AmountInvalid.
func ParseAmount(s string) Amount {
	cleaned := strings.TrimSpace(s)
	if cleaned == "" {
		return Amount{Value: decimal.Zero, State: AmountEmpty}
	}

	negative := false
	if strings.HasPrefix(cleaned, "(") && strings.HasSuffix(cleaned, ")") {
		negative = true
		cleaned = cleaned[1 : len(cleaned)-1]
	}

	cleaned = amountNoise.Replace(cleaned)
	if cleaned == "" {
		return Amount{Value: decimal.Zero, State: AmountInvalid}
	}

	v, err := decimal.NewFromString(cleaned)
	if err != nil || !amountInRange(v) {
		return Amount{Value: decimal.Zero, State: AmountInvalid}
	}
	if negative {
		v = v.Neg()
	}
	return Amount{Value: v, State: AmountParsed}
}

func amountInRange(v decimal.Decimal) bool {
	exp := int64(v.Exponent())
	if exp < minAmountExponent || exp > maxAmountIntegerDigits {
		return false
	}
	if v.IsZero() {
		return true
	}
	return int64(v.NumDigits())+exp <= maxAmountIntegerDigits
}
