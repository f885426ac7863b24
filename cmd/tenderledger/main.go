package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/invmis/tenderledger/pkg/infrastructure/config"
	"github.com/invmis/tenderledger/pkg/infrastructure/logging"
	"github.com/invmis/tenderledger/pkg/infrastructure/metrics"
	"github.com/invmis/tenderledger/pkg/interfaces/cli/commands"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:           "tenderledger",
		Short:         "Tender delivery reconciliation and valuation",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(reconcileCmd())
	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(versionCmd())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func reconcileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Reconcile a tender's deliveries against its line items",
		Example: `  tenderledger reconcile --scenario examples/office_supplies --verbose
  tenderledger reconcile --tender tender.json --deliveries deliveries.json --mode ordered
  tenderledger reconcile --db tenders.db --tender-id TND-001 --format csv --output results/`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			// stdout carries rendered results; logs go to stderr
			logger := logging.NewWithWriter(cfg, os.Stderr)
			reg := metrics.NewRegistry()

			stopMetrics := serveMetrics(cfg.MetricsAddr, reg, logger)
			defer stopMetrics()

			flags := cmd.Flags()
			scenario, _ := flags.GetString("scenario")
			tenderFile, _ := flags.GetString("tender")
			deliveriesFile, _ := flags.GetString("deliveries")
			tenderID, _ := flags.GetString("tender-id")
			outputDir, _ := flags.GetString("output")
			format, _ := flags.GetString("format")
			verbose, _ := flags.GetBool("verbose")

			return commands.NewReconcileCommand(commands.Config{
				ScenarioDir:    scenario,
				TenderFile:     tenderFile,
				DeliveriesFile: deliveriesFile,
				DatabaseDSN:    stringFlag(cmd, "db", dsnDefault(cfg, scenario, tenderFile)),
				TenderID:       tenderID,
				Mode:           stringFlag(cmd, "mode", cfg.ValuationMode),
				Policy:         stringFlag(cmd, "policy", cfg.ReceiptPolicy),
				OutputDir:      outputDir,
				Format:         format,
				Verbose:        verbose,
				Logger:         logger,
				Metrics:        reg,
			}).Execute(cmd.Context())
		},
	}

	flags := cmd.Flags()
	flags.String("scenario", "", "Path to scenario directory containing CSV files")
	flags.String("tender", "", "Path to a tender JSON payload")
	flags.String("deliveries", "", "Path to a deliveries JSON payload")
	flags.String("db", "", "SQLite DSN to read the snapshot from")
	flags.String("tender-id", "", "Tender to reconcile")
	flags.String("mode", "", "Valuation mode: received, ordered")
	flags.String("policy", "", "Receipt policy: all, finalized")
	flags.String("output", "", "Output directory for results (optional)")
	flags.String("format", "text", "Output format: text, json, csv")
	flags.Bool("verbose", false, "Enable verbose output")
	return cmd
}

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load a CSV scenario into a SQLite database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			scenario, _ := cmd.Flags().GetString("scenario")

			return commands.NewImportCommand(commands.ImportConfig{
				ScenarioDir: scenario,
				DatabaseDSN: stringFlag(cmd, "db", cfg.DatabaseDSN),
				Logger:      logging.NewWithWriter(cfg, os.Stderr),
			}).Execute(cmd.Context())
		},
	}
	cmd.Flags().String("scenario", "", "Path to scenario directory containing CSV files")
	cmd.Flags().String("db", "", "SQLite DSN to write to")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "tenderledger", version)
		},
	}
}

// stringFlag returns the flag value when set on the command line, else fallback
func stringFlag(cmd *cobra.Command, name, fallback string) string {
	if cmd.Flags().Changed(name) {
		v, _ := cmd.Flags().GetString(name)
		return v
	}
	return fallback
}

// dsnDefault only falls back to the configured database when no file source was given
func dsnDefault(cfg *config.Config, scenario, tenderFile string) string {
	if scenario != "" || tenderFile != "" {
		return ""
	}
	return cfg.DatabaseDSN
}

// serveMetrics exposes /metrics on addr until the returned func is called.
// An empty addr disables it.
func serveMetrics(addr string, reg *metrics.Registry, logger zerolog.Logger) func() {
	if addr == "" {
		return func() {}
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", reg.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		logger.Info().Str("addr", addr).Msg("metrics server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics server failed")
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Warn().Err(err).Msg("metrics server shutdown")
		}
	}
}
