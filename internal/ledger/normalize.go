package ledger

import (
	"strings"

	"github.com/exim-ops/ledgerrecon/internal/model"
)

// RawRow is one spreadsheet row as positional cells.
type RawRow []string

// Cell returns the trimmed cell at i, or "" past the end of a short row.
func (r RawRow) Cell(i int) string {
	if i < 0 || i >= len(r) {
		return ""
	}
	return strings.TrimSpace(r[i])
}

// Ledger sheet layout: two title rows, then
// Location, Invoice Date, Particulars, Txn Type, Transaction No., Invoice Amount (INR), Received Payment(INR).
const (
	headerRows       = 2
	colLocation      = 0
	colDate          = 1
	colParticulars   = 2
	colTxnType       = 3
	colTxnNumber     = 4
	colInvoiceAmount = 5
	colReceived      = 6
)

// Normalize turns raw sheet rows into typed ledger rows.
// The first two rows are skipped. Rows without a readable date or with blank
// particulars are dropped; unreadable amounts count as zero.
func Normalize(rows []RawRow) []model.LedgerRow {
	if len(rows) <= headerRows {
		return nil
	}

	var out []model.LedgerRow
	for _, raw := range rows[headerRows:] {
		row, ok := normalizeRow(raw)
		if !ok {
			continue
		}
		row.RowOrder = len(out)
		out = append(out, row)
	}
	return out
}

func normalizeRow(raw RawRow) (model.LedgerRow, bool) {
	date, ok := ParseDate(raw.Cell(colDate))
	if !ok {
		return model.LedgerRow{}, false
	}
	particulars := raw.Cell(colParticulars)
	if particulars == "" {
		return model.LedgerRow{}, false
	}

	return model.LedgerRow{
		Location:          raw.Cell(colLocation),
		InvoiceDate:       date,
		Particulars:       particulars,
		TransactionType:   raw.Cell(colTxnType),
		TransactionNumber: raw.Cell(colTxnNumber),
		InvoiceAmount:     ParseAmount(raw.Cell(colInvoiceAmount)).Value,
		ReceivedPayment:   ParseAmount(raw.Cell(colReceived)).Value,
	}, true
}
