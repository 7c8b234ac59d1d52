package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/exim-ops/ledgerrecon/internal/ledger"
)

// CSVParser reads a ledger saved as comma-separated text.
type CSVParser struct{}

// Format returns the parser name.
func (p *CSVParser) Format() string { return "csv" }

// Parse reads all records. Rows may have differing field counts.
func (p *CSVParser) Parse(r io.Reader) ([]ledger.RawRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading ledger CSV: %w", err)
	}

	out := make([]ledger.RawRow, len(records))
	for i, rec := range records {
		out[i] = ledger.RawRow(rec)
	}
	if len(out) > 0 && len(out[0]) > 0 {
		out[0][0] = strings.TrimPrefix(out[0][0], "\ufeff")
	}
	return out, nil
}
