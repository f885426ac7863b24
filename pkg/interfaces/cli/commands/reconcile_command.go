package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/invmis/tenderledger/pkg/application/dto"
	"github.com/invmis/tenderledger/pkg/application/services"
	"github.com/invmis/tenderledger/pkg/domain/entities"
	"github.com/invmis/tenderledger/pkg/domain/repositories"
	engine "github.com/invmis/tenderledger/pkg/domain/services"
	"github.com/invmis/tenderledger/pkg/infrastructure/events"
	"github.com/invmis/tenderledger/pkg/infrastructure/metrics"
	"github.com/invmis/tenderledger/pkg/infrastructure/payload"
	"github.com/invmis/tenderledger/pkg/infrastructure/repositories/csv"
	"github.com/invmis/tenderledger/pkg/infrastructure/repositories/sqlstore"
	"github.com/invmis/tenderledger/pkg/interfaces/cli/output"
)

// Config holds configuration for the reconcile command
type Config struct {
	ScenarioDir    string
	TenderFile     string
	DeliveriesFile string
	DatabaseDSN    string
	TenderID       string
	Mode           string
	Policy         string
	OutputDir      string
	Format         string
	Verbose        bool

	Logger  zerolog.Logger
	Metrics *metrics.Registry
	// Out receives rendered results; nil means stdout.
	Out io.Writer
	// Progress receives verbose progress lines; nil means stderr.
	Progress io.Writer
}

// ReconcileCommand loads one tender snapshot from a CSV scenario, REST
// payload files or a SQLite database and renders its reconciliation.
type ReconcileCommand struct {
	config   Config
	out      io.Writer
	progress io.Writer
}

// NewReconcileCommand creates a new reconcile command with the given configuration
func NewReconcileCommand(config Config) *ReconcileCommand {
	out := config.Out
	if out == nil {
		out = os.Stdout
	}
	progress := config.Progress
	if progress == nil {
		progress = os.Stderr
	}
	return &ReconcileCommand{config: config, out: out, progress: progress}
}

// Execute runs the reconcile command
func (c *ReconcileCommand) Execute(ctx context.Context) error {
	if err := c.validateInputs(); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	opts, err := c.options()
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	if c.config.Verbose {
		c.printHeader(opts)
	}

	startTime := time.Now()
	var result *dto.ReconciliationResult
	switch {
	case c.config.ScenarioDir != "":
		result, err = c.reconcileScenario(ctx, opts)
	case c.config.TenderFile != "":
		result, err = c.reconcilePayloads(ctx, opts)
	default:
		result, err = c.reconcileDatabase(ctx, opts)
	}
	if err != nil {
		return err
	}
	reconcileTime := time.Since(startTime)

	if c.config.Verbose {
		fmt.Fprintf(c.progress, "✅ Reconciliation completed in %v\n\n", reconcileTime)
	}

	outputConfig := output.Config{
		Format:        c.config.Format,
		OutputDir:     c.config.OutputDir,
		Verbose:       c.config.Verbose,
		ReconcileTime: reconcileTime,
		Source:        c.source(),
		Writer:        c.out,
	}
	if err := output.Generate(result, outputConfig); err != nil {
		return fmt.Errorf("error generating output: %w", err)
	}
	return nil
}

// validateInputs checks that exactly one snapshot source is configured
func (c *ReconcileCommand) validateInputs() error {
	sources := 0
	if c.config.ScenarioDir != "" {
		sources++
	}
	if c.config.TenderFile != "" {
		sources++
	}
	if c.config.DatabaseDSN != "" {
		sources++
	}

	switch {
	case sources == 0:
		return fmt.Errorf("must specify one of --scenario, --tender or --db")
	case sources > 1:
		return fmt.Errorf("--scenario, --tender and --db are mutually exclusive")
	case c.config.DeliveriesFile != "" && c.config.TenderFile == "":
		return fmt.Errorf("--deliveries requires --tender")
	case c.config.DatabaseDSN != "" && c.config.TenderID == "":
		return fmt.Errorf("--db requires --tender-id")
	}

	if c.config.ScenarioDir != "" {
		if info, err := os.Stat(c.config.ScenarioDir); err != nil || !info.IsDir() {
			return fmt.Errorf("scenario directory not found: %s", c.config.ScenarioDir)
		}
	}

	switch c.config.Format {
	case "text", "json", "csv":
	default:
		return fmt.Errorf("unsupported output format: %s", c.config.Format)
	}
	return nil
}

func (c *ReconcileCommand) options() (services.Options, error) {
	mode, err := engine.ParseValuationMode(c.config.Mode)
	if err != nil {
		return services.Options{}, err
	}
	policy, err := engine.ParseReceiptPolicy(c.config.Policy)
	if err != nil {
		return services.Options{}, err
	}
	return services.Options{Mode: mode, Policy: policy}, nil
}

// newService wires a reconciliation service. Snapshot sources pass nil repositories.
func (c *ReconcileCommand) newService(tenders repositories.TenderRepository, deliveries repositories.DeliveryRepository) *services.ReconciliationService {
	store := events.NewInMemoryEventStore(c.config.Logger)
	return services.NewReconciliationService(tenders, deliveries, store, c.config.Metrics, c.config.Logger)
}

func (c *ReconcileCommand) reconcileScenario(ctx context.Context, opts services.Options) (*dto.ReconciliationResult, error) {
	if c.config.Verbose {
		fmt.Fprintln(c.progress, "📂 Loading scenario from CSV files...")
	}

	scenario, err := csv.NewLoader().LoadScenario(c.config.ScenarioDir)
	if err != nil {
		return nil, fmt.Errorf("error loading scenario: %w", err)
	}

	tender, err := pickTender(scenario.Tenders, c.config.TenderID)
	if err != nil {
		return nil, err
	}

	var deliveries []*entities.Delivery
	for _, d := range scenario.Deliveries {
		if d.TenderID == tender.ID {
			deliveries = append(deliveries, d)
		}
	}

	if c.config.Verbose {
		fmt.Fprintf(c.progress, "✅ Loaded tender %s with %d items and %d deliveries\n", tender.ID, len(tender.Items), len(deliveries))
	}

	result, err := c.newService(nil, nil).ReconcileSnapshot(ctx, tender, deliveries, opts)
	if err != nil {
		return nil, fmt.Errorf("error reconciling tender %s: %w", tender.ID, err)
	}
	return result, nil
}

func (c *ReconcileCommand) reconcilePayloads(ctx context.Context, opts services.Options) (*dto.ReconciliationResult, error) {
	tenderFile, err := os.Open(c.config.TenderFile)
	if err != nil {
		return nil, fmt.Errorf("error opening tender payload: %w", err)
	}
	defer tenderFile.Close()

	tender, err := payload.DecodeTender(tenderFile)
	if err != nil {
		return nil, fmt.Errorf("error decoding tender payload: %w", err)
	}
	if c.config.TenderID != "" && c.config.TenderID != tender.ID {
		return nil, fmt.Errorf("tender payload is %s, not %s", tender.ID, c.config.TenderID)
	}

	var deliveries []*entities.Delivery
	if c.config.DeliveriesFile != "" {
		deliveriesFile, err := os.Open(c.config.DeliveriesFile)
		if err != nil {
			return nil, fmt.Errorf("error opening deliveries payload: %w", err)
		}
		defer deliveriesFile.Close()

		deliveries, err = payload.DecodeDeliveries(deliveriesFile, tender.ID)
		if err != nil {
			return nil, fmt.Errorf("error decoding deliveries payload: %w", err)
		}
	}

	if c.config.Verbose {
		fmt.Fprintf(c.progress, "✅ Decoded tender %s with %d items and %d deliveries\n", tender.ID, len(tender.Items), len(deliveries))
	}

	result, err := c.newService(nil, nil).ReconcileSnapshot(ctx, tender, deliveries, opts)
	if err != nil {
		return nil, fmt.Errorf("error reconciling tender %s: %w", tender.ID, err)
	}
	return result, nil
}

func (c *ReconcileCommand) reconcileDatabase(ctx context.Context, opts services.Options) (*dto.ReconciliationResult, error) {
	db, err := sqlstore.Open(c.config.DatabaseDSN, c.config.Verbose)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	svc := c.newService(sqlstore.NewTenderRepository(db), sqlstore.NewDeliveryRepository(db))
	result, err := svc.Reconcile(ctx, c.config.TenderID, opts)
	if err != nil {
		return nil, fmt.Errorf("error reconciling tender %s: %w", c.config.TenderID, err)
	}
	return result, nil
}

// pickTender selects the requested tender, or the only one when id is empty
func pickTender(tenders []*entities.Tender, id string) (*entities.Tender, error) {
	if id == "" {
		if len(tenders) != 1 {
			return nil, fmt.Errorf("scenario holds %d tenders, --tender-id is required", len(tenders))
		}
		return tenders[0], nil
	}
	for _, t := range tenders {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", entities.ErrTenderNotFound, id)
}

func (c *ReconcileCommand) source() string {
	switch {
	case c.config.ScenarioDir != "":
		return filepath.Clean(c.config.ScenarioDir)
	case c.config.TenderFile != "":
		return filepath.Clean(c.config.TenderFile)
	default:
		return "sqlite"
	}
}

// printHeader prints the command header information
func (c *ReconcileCommand) printHeader(opts services.Options) {
	fmt.Fprintf(c.progress, "🚀 Tender Ledger CLI\n")
	fmt.Fprintf(c.progress, "Source: %s\n", c.source())
	fmt.Fprintf(c.progress, "Valuation mode: %s\n", opts.Mode)
	fmt.Fprintf(c.progress, "Receipt policy: %s\n", opts.Policy)
	fmt.Fprintf(c.progress, "Output format: %s\n", c.config.Format)
	if c.config.OutputDir != "" {
		fmt.Fprintf(c.progress, "Output directory: %s\n", c.config.OutputDir)
	}
	fmt.Fprintln(c.progress)
}
