package report

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/exim-ops/ledgerrecon/internal/model"
)

// ErrNoPeriods is returned when there is nothing to render.
var ErrNoPeriods = errors.New("no periods to render")

// ContentType is the media type of a rendered workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// maxSheetName is the worksheet name limit imposed by spreadsheet applications.
const maxSheetName = 31

var (
	summaryHeader = []string{
		"Period", "Opening Balance", "Total Invoiced", "Total Received", "Total Applied",
		"Total Interest", "Unapplied Payments", "Cleared Invoices", "Pending Invoices", "Total Outstanding",
	}
	allocationHeader = []string{
		"Invoice No", "Invoice Date", "Invoice Amount", "Payment Ref", "Payment Date", "Payment Amount",
		"Applied Amount", "Outstanding Before", "Outstanding After", "Delay Days", "Interest", "Status",
	}
	pendingHeader = []string{"Invoice No", "Invoice Date", "Particulars", "Invoice Amount", "Outstanding"}
)

// PendingTitle heads the open-invoice table on each sheet.
const PendingTitle = "Pending Invoices"

var sheetNameReplacer = strings.NewReplacer(
	":", "_", "\\", "_", "/", "_", "?", "_", "*", "_", "[", "_", "]", "_",
)

// SheetName turns a period label into a valid worksheet name.
func SheetName(label string) string {
	name := strings.Trim(sheetNameReplacer.Replace(strings.TrimSpace(label)), "'")
	if utf8.RuneCountInString(name) > maxSheetName {
		name = string([]rune(name)[:maxSheetName])
	}
	return name
}

type renderer struct {
	f      *excelize.File
	header int
	money  int
	title  int
}

// Render builds a workbook with one worksheet per period, in order.
// The caller must Close the returned file.
func Render(summaries []model.PeriodSummary) (*excelize.File, error) {
	if len(summaries) == 0 {
		return nil, ErrNoPeriods
	}

	f := excelize.NewFile()
	r, err := newRenderer(f)
	if err != nil {
		f.Close()
		return nil, err
	}

	used := make(map[string]bool, len(summaries))
	for i, s := range summaries {
		name := uniqueSheetName(s.Label, i, used)
		if i == 0 {
			err = f.SetSheetName(f.GetSheetName(0), name)
		} else {
			_, err = f.NewSheet(name)
		}
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("creating sheet %q: %w", name, err)
		}
		if err := r.writePeriod(name, s); err != nil {
			f.Close()
			return nil, fmt.Errorf("writing sheet %q: %w", name, err)
		}
	}
	f.SetActiveSheet(0)
	return f, nil
}

// WriteXLSX renders summaries and streams the workbook to w.
func WriteXLSX(w io.Writer, summaries []model.PeriodSummary) error {
	f, err := Render(summaries)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

// SaveXLSX renders summaries to a file at path.
func SaveXLSX(path string, summaries []model.PeriodSummary) error {
	f, err := Render(summaries)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook: %w", err)
	}
	return nil
}

func newRenderer(f *excelize.File) (*renderer, error) {
	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("creating header style: %w", err)
	}
	money, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return nil, fmt.Errorf("creating amount style: %w", err)
	}
	title, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 12}})
	if err != nil {
		return nil, fmt.Errorf("creating title style: %w", err)
	}
	return &renderer{f: f, header: header, money: money, title: title}, nil
}

// uniqueSheetName disambiguates labels that collide once sanitised and truncated.
func uniqueSheetName(label string, index int, used map[string]bool) string {
	base := SheetName(label)
	if base == "" {
		base = "Period " + strconv.Itoa(index+1)
	}
	name := base
	for n := 2; used[strings.ToLower(name)]; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		runes := []rune(base)
		if len(runes)+len(suffix) > maxSheetName {
			runes = runes[:maxSheetName-len(suffix)]
		}
		name = string(runes) + suffix
	}
	used[strings.ToLower(name)] = true
	return name
}

func (r *renderer) writePeriod(sheet string, s model.PeriodSummary) error {
	row := 1
	if err := r.headerRow(sheet, row, summaryHeader); err != nil {
		return err
	}
	row++
	if err := r.setRow(sheet, row, []interface{}{
		s.Label,
		amount(s.OpeningBalance),
		amount(s.TotalInvoiced),
		amount(s.TotalReceived),
		amount(s.TotalApplied),
		amount(s.TotalInterest),
		amount(s.UnappliedPayments),
		s.ClearedCount,
		s.PendingCount,
		amount(s.TotalOutstanding),
	}); err != nil {
		return err
	}
	if err := r.moneyCells(sheet, row, 2, 7); err != nil {
		return err
	}
	if err := r.moneyCells(sheet, row, 10, 10); err != nil {
		return err
	}

	row += 2
	if err := r.headerRow(sheet, row, allocationHeader); err != nil {
		return err
	}
	for _, rec := range s.Allocations {
		row++
		if err := r.setRow(sheet, row, []interface{}{
			rec.InvoiceRef,
			rec.InvoiceDate,
			amount(rec.InvoiceAmount),
			rec.PaymentRef,
			rec.PaymentDate,
			amount(rec.PaymentAmount),
			amount(rec.AppliedAmount),
			amount(rec.OutstandingBefore),
			amount(rec.OutstandingAfter),
			rec.DelayDays,
			amount(rec.InterestCharged),
			string(rec.Status),
		}); err != nil {
			return err
		}
	}
	if len(s.Allocations) > 0 {
		first := row - len(s.Allocations) + 1
		for _, col := range []int{3, 6, 7, 8, 9, 11} {
			if err := r.moneyRange(sheet, col, first, row); err != nil {
				return err
			}
		}
	}

	row += 2
	titleCell, _ := excelize.CoordinatesToCellName(1, row)
	if err := r.f.SetCellValue(sheet, titleCell, PendingTitle); err != nil {
		return err
	}
	if err := r.f.SetCellStyle(sheet, titleCell, titleCell, r.title); err != nil {
		return err
	}
	row++
	if err := r.headerRow(sheet, row, pendingHeader); err != nil {
		return err
	}
	for _, inv := range s.Outstanding {
		row++
		if err := r.setRow(sheet, row, []interface{}{
			inv.Ref(),
			inv.InvoiceDate.Format(model.ReportDateFormat),
			inv.Particulars,
			amount(inv.InvoiceAmount),
			amount(inv.OutstandingAmount),
		}); err != nil {
			return err
		}
	}
	if len(s.Outstanding) > 0 {
		first := row - len(s.Outstanding) + 1
		for _, col := range []int{4, 5} {
			if err := r.moneyRange(sheet, col, first, row); err != nil {
				return err
			}
		}
	}

	return r.f.SetColWidth(sheet, "A", "L", 18)
}

func (r *renderer) headerRow(sheet string, row int, titles []string) error {
	values := make([]interface{}, len(titles))
	for i, t := range titles {
		values[i] = t
	}
	if err := r.setRow(sheet, row, values); err != nil {
		return err
	}
	first, _ := excelize.CoordinatesToCellName(1, row)
	last, _ := excelize.CoordinatesToCellName(len(titles), row)
	return r.f.SetCellStyle(sheet, first, last, r.header)
}

func (r *renderer) setRow(sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return r.f.SetSheetRow(sheet, cell, &values)
}

func (r *renderer) moneyCells(sheet string, row, fromCol, toCol int) error {
	first, _ := excelize.CoordinatesToCellName(fromCol, row)
	last, _ := excelize.CoordinatesToCellName(toCol, row)
	return r.f.SetCellStyle(sheet, first, last, r.money)
}

func (r *renderer) moneyRange(sheet string, col, fromRow, toRow int) error {
	first, _ := excelize.CoordinatesToCellName(col, fromRow)
	last, _ := excelize.CoordinatesToCellName(col, toRow)
	return r.f.SetCellStyle(sheet, first, last, r.money)
}

// amount converts a rounded currency value to a spreadsheet number.
func amount(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
