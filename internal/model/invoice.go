package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/exim-ops/ledgerrecon/internal/id"
)

// InvoiceStatus is the settlement state of an invoice.
type InvoiceStatus string

const (
	InvoicePending InvoiceStatus = "Pending"
	InvoiceCleared InvoiceStatus = "Cleared"
)

// OpeningBalanceRef labels invoices that carry no transaction number.
const OpeningBalanceRef = "Opening Balance"

// Invoice is an obligation in the allocation queue.
type Invoice struct {
	TransactionNumber string
	Particulars       string
	InvoiceDate       time.Time
	RowOrder          int
	InvoiceAmount     decimal.Decimal
	OutstandingAmount decimal.Decimal
	Status            InvoiceStatus
	SourcePeriod      string // set on carried-forward invoices
}

// Ref returns the reference shown in reports.
func (i Invoice) Ref() string {
	if strings.TrimSpace(i.TransactionNumber) == "" {
		return OpeningBalanceRef
	}
	return i.TransactionNumber
}

// IsCarryForward reports whether the invoice was brought in from a previous period.
func (i Invoice) IsCarryForward() bool {
	return id.IsCarryForward(i.TransactionNumber)
}

// Payment is money received, applied oldest invoice first.
type Payment struct {
	TransactionNumber string
	PaymentDate       time.Time
	PaymentAmount     decimal.Decimal
	RowOrder          int
}
