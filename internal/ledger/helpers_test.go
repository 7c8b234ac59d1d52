package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/exim-ops/ledgerrecon/internal/model"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func invoice(txn, amount string, on time.Time, order int) model.Invoice {
	return model.Invoice{
		TransactionNumber: txn,
		InvoiceDate:       on,
		RowOrder:          order,
		InvoiceAmount:     dec(amount),
		OutstandingAmount: dec(amount),
		Status:            model.InvoicePending,
	}
}

func payment(txn, amount string, on time.Time) model.Payment {
	return model.Payment{TransactionNumber: txn, PaymentDate: on, PaymentAmount: dec(amount)}
}

// sheet prepends the two title rows every ledger export carries.
func sheet(rows ...RawRow) []RawRow {
	out := []RawRow{
		{"ACME IMPEX PVT LTD - Ledger"},
		{"Location", "Invoice Date", "Particulars", "Txn Type", "Transaction No.", "Invoice Amount (INR)", "Received Payment(INR)"},
	}
	return append(out, rows...)
}
