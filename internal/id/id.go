package id

import "strings"

// CarryForwardPrefix marks references of invoices brought in from an earlier period.
const CarryForwardPrefix = "CF-"

// openingBalanceCode stands in for a blank transaction number.
const openingBalanceCode = "OB"

// FormatCarryForward returns the reference a still-open invoice takes into the next period.
// "INV-7" -> "CF-INV-7", "" -> "CF-OB". References that are already carried keep their label.
func FormatCarryForward(txn string) string {
	txn = strings.TrimSpace(txn)
	if IsCarryForward(txn) {
		return txn
	}
	if txn == "" {
		txn = openingBalanceCode
	}
	return CarryForwardPrefix + txn
}

// IsCarryForward reports whether ref was produced by FormatCarryForward.
func IsCarryForward(ref string) bool {
	return strings.HasPrefix(ref, CarryForwardPrefix)
}
