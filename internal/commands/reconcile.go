package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/exim-ops/ledgerrecon/internal/importer"
	"github.com/exim-ops/ledgerrecon/internal/ledger"
	"github.com/exim-ops/ledgerrecon/internal/logger"
	"github.com/exim-ops/ledgerrecon/internal/model"
	"github.com/exim-ops/ledgerrecon/internal/report"
)

type reconcileOptions struct {
	labels []string
	out    string
	format string
}

func newReconcileCommand() *cobra.Command {
	var opts reconcileOptions

	cmd := &cobra.Command{
		Use:   "reconcile FILE|DIR...",
		Short: "Reconcile consecutive period ledgers of one counterparty",
		Long: "Reconcile one ledger file per fiscal period, oldest first. A directory\n" +
			"argument expands to the ledger files it contains, in name order.\n" +
			"Period labels default to the file names without extension.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			policy, err := cfg.Policy()
			if err != nil {
				return err
			}
			return runReconcile(cmd.OutOrStdout(), ledger.NewEngine(policy), importer.DefaultRegistry(), args, opts)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.labels, "label", "l", nil, "period label, once per file in order")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "output path (default ledger-reconciliation.<format>)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "xlsx", "output format: xlsx or csv")

	return cmd
}

func runReconcile(out io.Writer, engine *ledger.Engine, parsers *importer.Registry, args []string, opts reconcileOptions) error {
	format := strings.ToLower(opts.format)
	if format != "xlsx" && format != "csv" {
		return fmt.Errorf("unknown format %q (want xlsx or csv)", opts.format)
	}

	paths, err := expandLedgerArgs(parsers, args)
	if err != nil {
		return err
	}

	labels := opts.labels
	if len(labels) == 0 {
		labels = make([]string, len(paths))
		for i, p := range paths {
			labels[i] = strings.TrimSuffix(filepath.Base(p), filepath.Ext(p))
		}
	}
	if err := ledger.ValidateLabels(labels, len(paths)); err != nil {
		return err
	}

	log := logger.WithComponent("reconcile")
	ledgers := make([][]ledger.RawRow, len(paths))
	for i, p := range paths {
		rows, err := parsers.ParseFile(p)
		if err != nil {
			return err
		}
		log.Debug().Str("file", p).Int("rows", len(rows)).Msg("ledger loaded")
		ledgers[i] = rows
	}

	periods, err := ledger.PairPeriods(ledgers, labels)
	if err != nil {
		return err
	}
	summaries, err := engine.RunMultiPeriod(periods)
	if err != nil {
		return err
	}

	dest := opts.out
	if dest == "" {
		dest = "ledger-reconciliation." + format
	}
	if err := writeReport(dest, format, summaries); err != nil {
		return err
	}

	for _, s := range summaries {
		printSummary(out, s)
	}
	fmt.Fprintf(out, "Report written to %s\n", dest)
	return nil
}

// expandLedgerArgs replaces directory arguments by the ledger files inside them.
func expandLedgerArgs(parsers *importer.Registry, args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", arg, err)
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		files, err := parsers.Scan(arg)
		if err != nil {
			return nil, err
		}
		if len(files) == 0 {
			return nil, fmt.Errorf("no ledger files in %s", arg)
		}
		for _, f := range files {
			paths = append(paths, f.Path)
		}
	}
	return paths, nil
}

func writeReport(dest, format string, summaries []model.PeriodSummary) error {
	if format == "xlsx" {
		return report.SaveXLSX(dest, summaries)
	}

	f, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dest, err)
	}
	if err := report.WriteCSV(f, summaries); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", dest, err)
	}
	return f.Close()
}

func printSummary(out io.Writer, s model.PeriodSummary) {
	fmt.Fprintf(out, "%s: opening %s, invoiced %s, received %s, interest %s, outstanding %s (%d cleared, %d pending)\n",
		s.Label,
		s.OpeningBalance.StringFixed(2),
		s.TotalInvoiced.StringFixed(2),
		s.TotalReceived.StringFixed(2),
		s.TotalInterest.StringFixed(2),
		s.TotalOutstanding.StringFixed(2),
		s.ClearedCount,
		s.PendingCount,
	)
	if s.UnappliedPayments.IsPositive() {
		fmt.Fprintf(out, "  warning: %s received with no open invoice to settle\n", s.UnappliedPayments.StringFixed(2))
	}
}
