package importer

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/exim-ops/ledgerrecon/internal/ledger"
)

var (
	// ErrUnsupportedFormat is returned for a file whose extension has no parser.
	ErrUnsupportedFormat = errors.New("unsupported ledger file format")
	// ErrEmptyWorkbook is returned for a workbook without any worksheet.
	ErrEmptyWorkbook = errors.New("workbook has no worksheets")
)

// Parser converts a ledger export into raw sheet rows.
type Parser interface {
	Parse(r io.Reader) ([]ledger.RawRow, error)
	Format() string
}

// Registry holds parsers keyed by format, which doubles as the file extension.
type Registry struct {
	parsers map[string]Parser
}

// FileInfo describes a ledger file found by Scan.
type FileInfo struct {
	Name string
	Path string
	Size int64
}

// NewRegistry creates an empty parser registry.
func NewRegistry() *Registry {
	return &Registry{parsers: make(map[string]Parser)}
}

// Register adds a parser. Panics on duplicate format.
func (r *Registry) Register(p Parser) {
	key := strings.ToLower(p.Format())
	if _, ok := r.parsers[key]; ok {
		panic("duplicate parser format: " + key)
	}
	r.parsers[key] = p
}

// Get returns the parser for format, or nil.
func (r *Registry) Get(format string) Parser {
	return r.parsers[strings.ToLower(format)]
}

// DefaultRegistry returns a registry with all built-in parsers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&XLSXParser{})
	r.Register(&CSVParser{})
	return r
}

// ForFile picks the parser matching the extension of name.
func (r *Registry) ForFile(name string) (Parser, error) {
	ext := strings.TrimPrefix(filepath.Ext(name), ".")
	p := r.Get(ext)
	if p == nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(name), ErrUnsupportedFormat)
	}
	return p, nil
}

// ParseFile opens path and parses it with the parser for its extension.
func (r *Registry) ParseFile(path string) ([]ledger.RawRow, error) {
	p, err := r.ForFile(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening ledger: %w", err)
	}
	defer f.Close()

	rows, err := p.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	return rows, nil
}

// Scan returns the ledger files in dir that some parser accepts, in name order.
// Subdirectories are not descended into.
func (r *Registry) Scan(dir string) ([]FileInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading ledger dir: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), "~$") {
			continue
		}
		if _, err := r.ForFile(e.Name()); err != nil {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, FileInfo{
			Name: e.Name(),
			Path: filepath.Join(dir, e.Name()),
			Size: info.Size(),
		})
	}
	return files, nil
}
