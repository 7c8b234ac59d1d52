package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerRow is one retained row of a counterparty ledger sheet.
type LedgerRow struct {
	Location          string
	InvoiceDate       time.Time
	Particulars       string
	TransactionType   string
	TransactionNumber string // empty = opening balance entry
	InvoiceAmount     decimal.Decimal
	ReceivedPayment   decimal.Decimal
	RowOrder          int // index within the retained rows, breaks date ties
}

// IsInvoice reports whether the row raises a charge against the counterparty.
func (r LedgerRow) IsInvoice() bool {
	return r.InvoiceAmount.IsPositive()
}

// IsPayment reports whether the row records money received.
func (r LedgerRow) IsPayment() bool {
	return r.ReceivedPayment.IsPositive()
}
