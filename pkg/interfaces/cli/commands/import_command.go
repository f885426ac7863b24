package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/invmis/tenderledger/pkg/domain/entities"
	"github.com/invmis/tenderledger/pkg/infrastructure/repositories/csv"
	"github.com/invmis/tenderledger/pkg/infrastructure/repositories/sqlstore"
)

// ImportConfig holds configuration for the import command
type ImportConfig struct {
	ScenarioDir string
	DatabaseDSN string
	Logger      zerolog.Logger
}

// ImportSummary counts what an import wrote
type ImportSummary struct {
	Tenders    int
	Deliveries int
	// Skipped counts deliveries already finalized in the database
	Skipped int
}

// ImportCommand copies a CSV scenario into a SQLite snapshot database
type ImportCommand struct {
	config ImportConfig
	logger zerolog.Logger
}

// NewImportCommand creates a new import command
func NewImportCommand(config ImportConfig) *ImportCommand {
	return &ImportCommand{
		config: config,
		logger: config.Logger.With().Str("component", "import").Logger(),
	}
}

// Execute runs the import and discards the summary
func (c *ImportCommand) Execute(ctx context.Context) error {
	_, err := c.Run(ctx)
	return err
}

// Run loads the scenario, migrates the schema and saves every tender and delivery.
// Finalized deliveries already stored are left untouched.
func (c *ImportCommand) Run(ctx context.Context) (*ImportSummary, error) {
	if c.config.ScenarioDir == "" || c.config.DatabaseDSN == "" {
		return nil, fmt.Errorf("validation error: import requires --scenario and --db")
	}

	scenario, err := csv.NewLoader().LoadScenario(c.config.ScenarioDir)
	if err != nil {
		return nil, fmt.Errorf("error loading scenario: %w", err)
	}

	db, err := sqlstore.Open(c.config.DatabaseDSN, false)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	if err := sqlstore.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("error migrating database: %w", err)
	}

	tenders := sqlstore.NewTenderRepository(db)
	deliveries := sqlstore.NewDeliveryRepository(db)
	summary := &ImportSummary{}

	for _, t := range scenario.Tenders {
		if err := tenders.SaveTender(ctx, t); err != nil {
			return nil, fmt.Errorf("error saving tender %s: %w", t.ID, err)
		}
		summary.Tenders++
	}

	for _, d := range scenario.Deliveries {
		err := deliveries.SaveDelivery(ctx, d)
		if errors.Is(err, entities.ErrDeliveryFinalized) {
			c.logger.Warn().Str("delivery_number", d.DeliveryNumber).Msg("delivery already finalized, skipped")
			summary.Skipped++
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("error saving delivery %s: %w", d.DeliveryNumber, err)
		}
		summary.Deliveries++
	}

	c.logger.Info().
		Int("tenders", summary.Tenders).
		Int("deliveries", summary.Deliveries).
		Int("skipped", summary.Skipped).
		Msg("scenario imported")
	return summary, nil
}
