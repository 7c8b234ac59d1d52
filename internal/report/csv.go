package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/exim-ops/ledgerrecon/internal/model"
)

// Header is the CSV header for an allocation export.
const Header = "period,invoice_no,invoice_date,invoice_amount,payment_ref,payment_date,payment_amount,applied_amount,outstanding_before,outstanding_after,delay_days,interest,status"

const (
	numFields    = 13
	colPeriod    = 0
	colInvoice   = 1
	colInvDate   = 2
	colInvAmount = 3
	colPayRef    = 4
	colPayDate   = 5
	colPayAmount = 6
	colApplied   = 7
	colBefore    = 8
	colAfter     = 9
	colDelay     = 10
	colInterest  = 11
	colStatus    = 12
)

// WriteCSV writes every period's allocations to w, header first.
func WriteCSV(w io.Writer, summaries []model.PeriodSummary) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	line := 1
	for _, s := range summaries {
		for _, rec := range s.Allocations {
			line++
			if err := cw.Write(MarshalAllocation(s.Label, rec)); err != nil {
				return fmt.Errorf("writing row %d: %w", line, err)
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalAllocation converts an allocation record to a CSV row.
func MarshalAllocation(period string, rec model.AllocationRecord) []string {
	row := make([]string, numFields)
	row[colPeriod] = period
	row[colInvoice] = rec.InvoiceRef
	row[colInvDate] = rec.InvoiceDate
	row[colInvAmount] = rec.InvoiceAmount.StringFixed(2)
	row[colPayRef] = rec.PaymentRef
	row[colPayDate] = rec.PaymentDate
	row[colPayAmount] = rec.PaymentAmount.StringFixed(2)
	row[colApplied] = rec.AppliedAmount.StringFixed(2)
	row[colBefore] = rec.OutstandingBefore.StringFixed(2)
	row[colAfter] = rec.OutstandingAfter.StringFixed(2)
	row[colDelay] = strconv.Itoa(rec.DelayDays)
	row[colInterest] = rec.InterestCharged.StringFixed(2)
	row[colStatus] = string(rec.Status)
	return row
}
