package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/invmis/tenderledger/pkg/application/dto"
)

// Config holds configuration for output generation
type Config struct {
	Format        string
	OutputDir     string
	Verbose       bool
	ReconcileTime time.Duration
	Source        string
	// Writer receives console output; nil means stdout.
	Writer io.Writer
}

func (c Config) writer() io.Writer {
	if c.Writer == nil {
		return os.Stdout
	}
	return c.Writer
}

// Generate creates output in the specified format
func Generate(result *dto.ReconciliationResult, config Config) error {
	switch config.Format {
	case "text":
		return generateTextOutput(result, config)
	case "json":
		return generateJSONOutput(result, config)
	case "csv":
		return generateCSVOutput(result, config)
	default:
		return fmt.Errorf("unsupported output format: %s", config.Format)
	}
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func percent(d decimal.Decimal) string {
	return d.StringFixed(1) + "%"
}

// generateTextOutput creates human-readable text output
func generateTextOutput(result *dto.ReconciliationResult, config Config) error {
	w := config.writer()

	fmt.Fprintf(w, "📊 Tender Reconciliation: %s", result.TenderID)
	if result.ReferenceNumber != "" {
		fmt.Fprintf(w, " (%s)", result.ReferenceNumber)
	}
	fmt.Fprintf(w, "\n==============================\n\n")
	if result.Title != "" {
		fmt.Fprintf(w, "Title: %s\n", result.Title)
	}
	fmt.Fprintf(w, "Valuation: %s-weighted, receipts: %s deliveries\n", result.Mode, result.Policy)
	fmt.Fprintf(w, "Pricing: %s\n", result.PricingStatus)
	fmt.Fprintf(w, "Overall Progress: %s\n", percent(result.OverallProgressPercent))
	if config.Verbose {
		if config.Source != "" {
			fmt.Fprintf(w, "Source: %s\n", config.Source)
		}
		fmt.Fprintf(w, "Reconcile Time: %v\n", config.ReconcileTime)
	}
	fmt.Fprintln(w)

	if len(result.Items) > 0 {
		fmt.Fprintf(w, "📋 Items:\n")
		fmt.Fprintf(w, "%-15s %-25s %-8s %-8s %-8s %-9s %-12s %-14s\n",
			"Item", "Nomenclature", "Ordered", "Recvd", "Outstd", "Status", "Unit Price", "Actual Total")
		fmt.Fprintf(w, "%-15s %-25s %-8s %-8s %-8s %-9s %-12s %-14s\n",
			"---------------", "-------------------------", "--------", "--------", "--------", "---------", "------------", "--------------")

		for _, item := range result.Items {
			fmt.Fprintf(w, "%-15s %-25s %-8d %-8d %-8d %-9s %-12s %-14s\n",
				item.ItemMasterID,
				truncate(item.Nomenclature, 25),
				item.OrderedQuantity,
				item.ReceivedQuantity,
				item.OutstandingQuantity,
				item.Status,
				money(item.EffectiveUnitPrice),
				money(item.ActualLineTotal))
		}
		fmt.Fprintln(w)
	}

	if len(result.Deliveries) > 0 {
		fmt.Fprintf(w, "🚚 Deliveries:\n")
		fmt.Fprintf(w, "%-17s %-12s %-10s %-6s %-8s\n", "Number", "Date", "Status", "Lines", "Qty")
		fmt.Fprintf(w, "%-17s %-12s %-10s %-6s %-8s\n", "-----------------", "------------", "----------", "------", "--------")

		for _, d := range result.Deliveries {
			fmt.Fprintf(w, "%-17s %-12s %-10s %-6d %-8d\n",
				d.DeliveryNumber,
				d.DeliveryDate.Format("2006-01-02"),
				d.Status,
				d.ItemCount,
				d.TotalQuantity)
		}
		fmt.Fprintln(w)
	}

	v := result.Valuation
	fmt.Fprintf(w, "💰 Valuation:\n")
	fmt.Fprintf(w, "  Estimated: %s\n", money(v.EstimatedValue))
	fmt.Fprintf(w, "  Actual:    %s\n", money(v.ActualValue))
	fmt.Fprintf(w, "  Variance:  %s (%s)\n", money(v.VarianceAbsolute), percent(v.VariancePercent))
	fmt.Fprintf(w, "  Pending:   %s\n", money(v.PendingValue))

	if len(result.Warnings) > 0 {
		fmt.Fprintf(w, "\n⚠️  Warnings:\n")
		for _, warning := range result.Warnings {
			fmt.Fprintf(w, "  - %s\n", warning)
		}
	}

	return nil
}

// generateJSONOutput creates JSON output
func generateJSONOutput(result *dto.ReconciliationResult, config Config) error {
	jsonData, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if config.OutputDir == "" {
		fmt.Fprintln(config.writer(), string(jsonData))
		return nil
	}

	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	filename := filepath.Join(config.OutputDir, "reconciliation.json")
	if err := os.WriteFile(filename, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write JSON file: %w", err)
	}

	if config.Verbose {
		fmt.Fprintf(config.writer(), "💾 JSON results saved to: %s\n", filename)
	}
	return nil
}

// generateCSVOutput writes items.csv, deliveries.csv and valuation.csv
func generateCSVOutput(result *dto.ReconciliationResult, config Config) error {
	if config.OutputDir == "" {
		return fmt.Errorf("output directory required for CSV format")
	}

	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	itemsFile := filepath.Join(config.OutputDir, "items.csv")
	if err := writeItemsCSV(result.Items, itemsFile); err != nil {
		return fmt.Errorf("failed to write items CSV: %w", err)
	}

	deliveriesFile := filepath.Join(config.OutputDir, "deliveries.csv")
	if err := writeDeliveriesCSV(result.Deliveries, deliveriesFile); err != nil {
		return fmt.Errorf("failed to write deliveries CSV: %w", err)
	}

	valuationFile := filepath.Join(config.OutputDir, "valuation.csv")
	if err := writeValuationCSV(result, valuationFile); err != nil {
		return fmt.Errorf("failed to write valuation CSV: %w", err)
	}

	if config.Verbose {
		w := config.writer()
		fmt.Fprintf(w, "💾 CSV results saved to:\n")
		fmt.Fprintf(w, "  Items: %s\n", itemsFile)
		fmt.Fprintf(w, "  Deliveries: %s\n", deliveriesFile)
		fmt.Fprintf(w, "  Valuation: %s\n", valuationFile)
	}

	return nil
}

func writeItemsCSV(items []dto.ItemReconciliation, filename string) error {
	rows := [][]string{{
		"item_master_id", "nomenclature", "ordered_quantity", "received_quantity", "outstanding_quantity",
		"status", "progress_percent", "estimated_unit_price", "effective_unit_price",
		"estimated_line_total", "actual_line_total",
	}}
	for _, item := range items {
		rows = append(rows, []string{
			string(item.ItemMasterID),
			item.Nomenclature,
			strconv.FormatInt(int64(item.OrderedQuantity), 10),
			strconv.FormatInt(int64(item.ReceivedQuantity), 10),
			strconv.FormatInt(int64(item.OutstandingQuantity), 10),
			item.Status.String(),
			item.ProgressPercent.StringFixed(2),
			item.EstimatedUnitPrice.String(),
			item.EffectiveUnitPrice.String(),
			item.EstimatedLineTotal.String(),
			item.ActualLineTotal.String(),
		})
	}
	return writeCSV(filename, rows)
}

func writeDeliveriesCSV(deliveries []dto.DeliveryReconciliation, filename string) error {
	rows := [][]string{{"id", "delivery_number", "delivery_date", "status", "item_count", "total_quantity"}}
	for _, d := range deliveries {
		rows = append(rows, []string{
			d.ID,
			d.DeliveryNumber,
			d.DeliveryDate.Format("2006-01-02"),
			d.Status.String(),
			strconv.Itoa(d.ItemCount),
			strconv.FormatInt(int64(d.TotalQuantity), 10),
		})
	}
	return writeCSV(filename, rows)
}

func writeValuationCSV(result *dto.ReconciliationResult, filename string) error {
	v := result.Valuation
	rows := [][]string{
		{"tender_id", "mode", "policy", "estimated_value", "actual_value", "variance_absolute", "variance_percent", "pending_value", "overall_progress_percent"},
		{
			result.TenderID,
			result.Mode.String(),
			result.Policy.String(),
			v.EstimatedValue.String(),
			v.ActualValue.String(),
			v.VarianceAbsolute.String(),
			v.VariancePercent.StringFixed(2),
			v.PendingValue.String(),
			result.OverallProgressPercent.StringFixed(2),
		},
	}
	return writeCSV(filename, rows)
}

func writeCSV(filename string, rows [][]string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	return file.Close()
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
