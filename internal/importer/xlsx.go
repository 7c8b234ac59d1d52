package importer

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/exim-ops/ledgerrecon/internal/ledger"
)

// XLSXParser reads the first worksheet of an Office Open XML workbook.
type XLSXParser struct{}

// Format returns the parser name.
func (p *XLSXParser) Format() string { return "xlsx" }

// Parse returns every row of the first worksheet. Cells are read raw so date
// cells come back as serial day numbers rather than locale-formatted text.
func (p *XLSXParser) Parse(r io.Reader) ([]ledger.RawRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, ErrEmptyWorkbook
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheet, err)
	}

	out := make([]ledger.RawRow, len(rows))
	for i, row := range rows {
		out[i] = ledger.RawRow(row)
	}
	return out, nil
}
