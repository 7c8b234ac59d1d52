package ledger

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/exim-ops/ledgerrecon/internal/model"
)

// Policy sets how overdue interest accrues on an allocation.
type Policy struct {
	AnnualRate    decimal.Decimal // simple interest, e.g. 0.12
	GraceDays     int             // delay days free of interest
	DayCountBasis int             // days per year
}

// DefaultPolicy is 12% p.a. after a 30-day grace period on a 365-day year.
func DefaultPolicy() Policy {
	return Policy{
		AnnualRate:    decimal.RequireFromString("0.12"),
		GraceDays:     30,
		DayCountBasis: 365,
	}
}

// Engine reconciles counterparty ledgers. It holds no mutable state and is
// safe for concurrent use.
type Engine struct {
	policy Policy
}

// NewEngine creates an Engine. A non-positive day-count basis falls back to 365.
func NewEngine(policy Policy) *Engine {
	if policy.DayCountBasis <= 0 {
		policy.DayCountBasis = 365
	}
	if policy.GraceDays < 0 {
		policy.GraceDays = 0
	}
	return &Engine{policy: policy}
}

// Policy returns the interest policy in effect.
func (e *Engine) Policy() Policy {
	return e.policy
}

// Allocation is the outcome of applying one period's payments.
type Allocation struct {
	Allocations       []model.AllocationRecord
	FinalInvoiceState []model.Invoice
	Unapplied         decimal.Decimal // payment money left after every invoice was settled
}

// Allocate applies payments to invoices oldest first.
//
// invoices must be ordered by (InvoiceDate, RowOrder) and payments by date.
// carryForward is queued ahead of invoices. Neither input slice is modified.
// A payment remainder with no open invoice left to absorb it is not carried
// anywhere; it is only totalled in Unapplied.
func (e *Engine) Allocate(invoices []model.Invoice, payments []model.Payment, carryForward []model.Invoice) Allocation {
	queue := make([]model.Invoice, 0, len(carryForward)+len(invoices))
	queue = append(queue, carryForward...)
	queue = append(queue, invoices...)
	for i := range queue {
		queue[i].OutstandingAmount = queue[i].InvoiceAmount
		queue[i].Status = model.InvoicePending
	}

	var records []model.AllocationRecord
	unapplied := decimal.Zero

	for _, p := range payments {
		remaining := p.PaymentAmount
		for i := range queue {
			if !remaining.IsPositive() {
				break
			}
			inv := &queue[i]
			if !inv.OutstandingAmount.IsPositive() {
				continue
			}

			applied := decimal.Min(remaining, inv.OutstandingAmount)
			before := inv.OutstandingAmount
			delay := DelayDays(inv.InvoiceDate, p.PaymentDate)
			interest := e.Interest(before, delay)

			inv.OutstandingAmount = before.Sub(applied)
			if inv.OutstandingAmount.IsZero() {
				inv.Status = model.InvoiceCleared
			}

			records = append(records, model.AllocationRecord{
				InvoiceRef:        inv.Ref(),
				InvoiceDate:       formatDate(inv.InvoiceDate),
				InvoiceAmount:     round2(inv.InvoiceAmount),
				PaymentRef:        p.TransactionNumber,
				PaymentDate:       formatDate(p.PaymentDate),
				PaymentAmount:     round2(p.PaymentAmount),
				AppliedAmount:     round2(applied),
				OutstandingBefore: round2(before),
				OutstandingAfter:  round2(inv.OutstandingAmount),
				DelayDays:         delay,
				InterestCharged:   interest,
				Status:            inv.Status,
			})

			remaining = remaining.Sub(applied)
		}
		if remaining.IsPositive() {
			unapplied = unapplied.Add(remaining)
		}
	}

	return Allocation{
		Allocations:       records,
		FinalInvoiceState: queue,
		Unapplied:         unapplied,
	}
}

// Interest is the overdue charge on outstanding for a payment delay days late,
// rounded to 2 places. Only days past the grace period accrue.
func (e *Engine) Interest(outstanding decimal.Decimal, delayDays int) decimal.Decimal {
	overdue := delayDays - e.policy.GraceDays
	if overdue <= 0 || !outstanding.IsPositive() || !e.policy.AnnualRate.IsPositive() {
		return decimal.Zero
	}
	return outstanding.
		Mul(e.policy.AnnualRate).
		Mul(decimal.NewFromInt(int64(overdue))).
		Div(decimal.NewFromInt(int64(e.policy.DayCountBasis))).
		Round(2)
}

// DelayDays is the whole number of days from invoiced to paid, or 0 when
// either date is missing. A payment made before the invoice yields a negative delay.
func DelayDays(invoiced, paid time.Time) int {
	if invoiced.IsZero() || paid.IsZero() {
		return 0
	}
	return int(math.Floor(paid.Sub(invoiced).Hours() / 24))
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(model.ReportDateFormat)
}

func round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
