package ledger

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/exim-ops/ledgerrecon/internal/id"
	"github.com/exim-ops/ledgerrecon/internal/model"
)

// PeriodInput is one fiscal period's raw ledger for a counterparty.
type PeriodInput struct {
	Label string
	Rows  []RawRow
}

// PeriodResult is the outcome of RunPeriod.
type PeriodResult struct {
	Summary          model.PeriodSummary
	NextCarryForward []model.Invoice
}

// Partition splits ledger rows into invoices ordered by (date, row order) and
// payments ordered by date. A row with both amounts lands in both lists.
func Partition(rows []model.LedgerRow) ([]model.Invoice, []model.Payment) {
	var invoices []model.Invoice
	var payments []model.Payment

	for _, r := range rows {
		if r.IsInvoice() {
			invoices = append(invoices, model.Invoice{
				TransactionNumber: r.TransactionNumber,
				Particulars:       r.Particulars,
				InvoiceDate:       r.InvoiceDate,
				RowOrder:          r.RowOrder,
				InvoiceAmount:     r.InvoiceAmount,
				OutstandingAmount: r.InvoiceAmount,
				Status:            model.InvoicePending,
			})
		}
		if r.IsPayment() {
			payments = append(payments, model.Payment{
				TransactionNumber: r.TransactionNumber,
				PaymentDate:       r.InvoiceDate,
				PaymentAmount:     r.ReceivedPayment,
				RowOrder:          r.RowOrder,
			})
		}
	}

	sort.SliceStable(invoices, func(i, j int) bool {
		if !invoices[i].InvoiceDate.Equal(invoices[j].InvoiceDate) {
			return invoices[i].InvoiceDate.Before(invoices[j].InvoiceDate)
		}
		return invoices[i].RowOrder < invoices[j].RowOrder
	})
	sort.SliceStable(payments, func(i, j int) bool {
		return payments[i].PaymentDate.Before(payments[j].PaymentDate)
	})

	return invoices, payments
}

// RunPeriod reconciles one period. carryForward holds the open invoices of the
// previous period (nil for the first).
func (e *Engine) RunPeriod(label string, rows []RawRow, carryForward []model.Invoice) PeriodResult {
	invoices, payments := Partition(Normalize(rows))
	alloc := e.Allocate(invoices, payments, carryForward)

	return PeriodResult{
		Summary:          summarize(label, carryForward, invoices, payments, alloc),
		NextCarryForward: carryForwardFrom(label, alloc.FinalInvoiceState),
	}
}

// RunMultiPeriod reconciles consecutive periods of one counterparty, feeding
// each period's open invoices into the next. Labels are checked before any
// period is processed.
func (e *Engine) RunMultiPeriod(periods []PeriodInput) ([]model.PeriodSummary, error) {
	labels := make([]string, len(periods))
	for i, p := range periods {
		labels[i] = p.Label
	}
	if err := ValidateLabels(labels, len(periods)); err != nil {
		return nil, err
	}

	summaries := make([]model.PeriodSummary, 0, len(periods))
	var carry []model.Invoice
	for _, p := range periods {
		res := e.RunPeriod(strings.TrimSpace(p.Label), p.Rows, carry)
		summaries = append(summaries, res.Summary)
		carry = res.NextCarryForward
	}
	return summaries, nil
}

// ValidateLabels checks the caller-level shape of a multi-period request:
// at least one ledger, one label per ledger, no blank or repeated label.
func ValidateLabels(labels []string, ledgers int) error {
	if ledgers == 0 {
		return &ValidationError{Field: "files", Reason: "at least one ledger is required"}
	}
	if len(labels) != ledgers {
		return &ValidationError{
			Field:  "labels",
			Reason: fmt.Sprintf("got %d labels for %d ledgers", len(labels), ledgers),
			Err:    ErrPeriodMismatch,
		}
	}

	seen := make(map[string]int, len(labels))
	for i, l := range labels {
		key := strings.ToLower(strings.TrimSpace(l))
		if key == "" {
			return &ValidationError{Field: "labels", Reason: fmt.Sprintf("label %d is blank", i+1)}
		}
		if prev, dup := seen[key]; dup {
			return &ValidationError{
				Field:  "labels",
				Reason: fmt.Sprintf("label %d repeats label %d (%q)", i+1, prev+1, strings.TrimSpace(l)),
			}
		}
		seen[key] = i
	}
	return nil
}

// PairPeriods zips ledgers with their labels after validating the pairing.
func PairPeriods(ledgers [][]RawRow, labels []string) ([]PeriodInput, error) {
	if err := ValidateLabels(labels, len(ledgers)); err != nil {
		return nil, err
	}
	periods := make([]PeriodInput, len(ledgers))
	for i := range ledgers {
		periods[i] = PeriodInput{Label: strings.TrimSpace(labels[i]), Rows: ledgers[i]}
	}
	return periods, nil
}

func summarize(label string, carried, invoices []model.Invoice, payments []model.Payment, alloc Allocation) model.PeriodSummary {
	opening := decimal.Zero
	for _, inv := range carried {
		opening = opening.Add(inv.InvoiceAmount)
	}
	invoiced := decimal.Zero
	for _, inv := range invoices {
		invoiced = invoiced.Add(inv.InvoiceAmount)
	}
	received := decimal.Zero
	for _, p := range payments {
		received = received.Add(p.PaymentAmount)
	}
	interest := decimal.Zero
	for _, rec := range alloc.Allocations {
		interest = interest.Add(rec.InterestCharged)
	}

	s := model.PeriodSummary{
		Label:             label,
		OpeningBalance:    round2(opening),
		TotalInvoiced:     round2(invoiced),
		TotalReceived:     round2(received),
		TotalApplied:      round2(received.Sub(alloc.Unapplied)),
		TotalInterest:     round2(interest),
		UnappliedPayments: round2(alloc.Unapplied),
		Allocations:       alloc.Allocations,
	}

	outstanding := decimal.Zero
	for _, inv := range alloc.FinalInvoiceState {
		if inv.Status == model.InvoiceCleared {
			s.ClearedCount++
			continue
		}
		s.PendingCount++
		if inv.OutstandingAmount.IsPositive() {
			outstanding = outstanding.Add(inv.OutstandingAmount)
			s.Outstanding = append(s.Outstanding, inv)
		}
	}
	s.TotalOutstanding = round2(outstanding)
	return s
}

// carryForwardFrom relabels every open invoice so the next period can tell
// carried balances from its own. The carried amount is what is still owed and
// the original invoice date is kept so interest keeps running from it.
func carryForwardFrom(label string, final []model.Invoice) []model.Invoice {
	var next []model.Invoice
	for _, inv := range final {
		if !inv.OutstandingAmount.IsPositive() {
			continue
		}
		cf := model.Invoice{
			TransactionNumber: id.FormatCarryForward(inv.TransactionNumber),
			Particulars:       inv.Particulars,
			InvoiceDate:       inv.InvoiceDate,
			RowOrder:          inv.RowOrder,
			InvoiceAmount:     inv.OutstandingAmount,
			OutstandingAmount: inv.OutstandingAmount,
			Status:            model.InvoicePending,
			SourcePeriod:      inv.SourcePeriod,
		}
		if !inv.IsCarryForward() {
			cf.Particulars = "Carried forward from " + label
			cf.SourcePeriod = label
		}
		next = append(next, cf)
	}
	return next
}
