package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/exim-ops/ledgerrecon/internal/buildinfo"
	"github.com/exim-ops/ledgerrecon/internal/importer"
	"github.com/exim-ops/ledgerrecon/internal/ledger"
	"github.com/exim-ops/ledgerrecon/internal/logger"
	"github.com/exim-ops/ledgerrecon/internal/server"
	"github.com/exim-ops/ledgerrecon/internal/storage"
)

func newServeCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the reconciliation upload API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cmd, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")

	return cmd
}

func runServe(ctx context.Context, cmd *cobra.Command, addr string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	policy, err := cfg.Policy()
	if err != nil {
		return err
	}

	if cfg.Log.Level != "debug" && cfg.Log.Level != "trace" {
		gin.SetMode(gin.ReleaseMode)
	}

	archiver, err := storage.New(cfg.Storage, storage.WithLogger(logger.WithComponent("storage")))
	if err != nil {
		return fmt.Errorf("setting up report archive: %w", err)
	}

	srv := server.New(server.Deps{
		Engine:        ledger.NewEngine(policy),
		Parsers:       importer.DefaultRegistry(),
		Archiver:      archiver,
		ArchivePrefix: cfg.Storage.Prefix,
		Config:        cfg.Server,
		Logger:        logger.WithComponent("server"),
		Version:       buildinfo.Version,
	})
	return srv.Run(ctx, addr)
}
