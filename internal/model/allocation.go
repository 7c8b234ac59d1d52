package model

import "github.com/shopspring/decimal"

// ReportDateFormat is the DD-Mon-YYYY layout used in allocation records.
const ReportDateFormat = "02-Jan-2006"

// AllocationRecord is one application of a payment to an invoice.
// Amounts are rounded to 2 places.
type AllocationRecord struct {
	InvoiceRef        string
	InvoiceDate       string
	InvoiceAmount     decimal.Decimal
	PaymentRef        string
	PaymentDate       string
	PaymentAmount     decimal.Decimal
	AppliedAmount     decimal.Decimal
	OutstandingBefore decimal.Decimal
	OutstandingAfter  decimal.Decimal
	DelayDays         int
	InterestCharged   decimal.Decimal
	Status            InvoiceStatus
}

// PeriodSummary aggregates one fiscal period's reconciliation.
type PeriodSummary struct {
	Label             string
	OpeningBalance    decimal.Decimal // carried-forward outstanding entering the period
	TotalInvoiced     decimal.Decimal // this period's own invoices
	TotalReceived     decimal.Decimal
	TotalApplied      decimal.Decimal
	TotalInterest     decimal.Decimal
	UnappliedPayments decimal.Decimal // received but left with no invoice to settle
	TotalOutstanding  decimal.Decimal
	ClearedCount      int
	PendingCount      int
	Allocations       []AllocationRecord
	Outstanding       []Invoice
}
