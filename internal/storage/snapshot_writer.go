package storage

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/prymal/inventory-metrics/internal/domain"
	"github.com/prymal/inventory-metrics/pkg/logger"
)

const (
	runRatePrefix         = "shipbob/inventory_run_rate"
	rawMaterialPrefix     = "katana/raw_material_status"
	materialRunRatePrefix = "katana/raw_material_run_rate"
)

// SnapshotWriter mirrors finished partitions to object storage as CSV, one
// object per as-of date under a Hive-style partition_date= prefix so the
// query engine picks partitions up directly.
type SnapshotWriter struct {
	store ObjectStorage
}

func NewSnapshotWriter(store ObjectStorage) *SnapshotWriter {
	return &SnapshotWriter{store: store}
}

func (w *SnapshotWriter) WriteRunRateSnapshot(ctx context.Context, asOf time.Time, rows []domain.RunRateMetric) error {
	records := make([][]string, 0, len(rows)+1)
	records = append(records, []string{
		"inventory_id", "name", "run_rate", "total_fulfillable_quantity",
		"est_stock_days_on_hand", "estimated_stockout_date", "restock_point",
		"active_flag", "skew", "kurtosis",
	})
	for _, m := range rows {
		records = append(records, []string{
			strconv.FormatInt(m.InventoryID, 10),
			scrubField(m.Name),
			formatFloat(m.RunRate),
			strconv.Itoa(m.TotalFulfillableQuantity),
			formatFloat(m.EstStockDaysOnHand),
			m.EstimatedStockoutDate.Format("2006-01-02"),
			strconv.Itoa(m.RestockPoint),
			strconv.FormatBool(m.ActiveFlag),
			formatFloat(m.Skew),
			formatFloat(m.Kurtosis),
		})
	}

	key := partitionKey(runRatePrefix, "shipbob_inventory_run_rate", asOf)
	return w.upload(ctx, key, records)
}

func (w *SnapshotWriter) WriteRawMaterialSnapshot(ctx context.Context, asOf time.Time, rows []domain.RawMaterialStatus) error {
	records := make([][]string, 0, len(rows)+1)
	records = append(records, []string{
		"variant_code_sku", "name", "units_of_measure", "in_stock", "in_stock_as_of",
		"planned_qty", "planned_qty_as_of", "inventory_remaining",
		"in_stock_percentage", "needs_replenished",
	})
	for _, s := range rows {
		records = append(records, []string{
			scrubField(s.MaterialKey),
			scrubField(s.Name),
			scrubField(s.UOM),
			s.InStock.String(),
			s.InStockAsOf.Format("2006-01-02"),
			s.PlannedQty.String(),
			s.PlannedQtyAsOf.Format("2006-01-02"),
			s.InventoryRemaining.String(),
			s.InStockPercentage.String(),
			strconv.FormatBool(s.NeedsReplenished),
		})
	}

	key := partitionKey(rawMaterialPrefix, "katana_raw_material_status", asOf)
	return w.upload(ctx, key, records)
}

func (w *SnapshotWriter) WriteRawMaterialRunRateSnapshot(ctx context.Context, asOf time.Time, rows []domain.RawMaterialRunRate) error {
	records := make([][]string, 0, len(rows)+1)
	records = append(records, []string{
		"variant_code_sku", "name", "units_of_measure", "run_rate", "restock_point",
	})
	for _, r := range rows {
		records = append(records, []string{
			scrubField(r.MaterialKey),
			scrubField(r.Name),
			scrubField(r.UOM),
			r.RunRate.String(),
			r.RestockPoint.String(),
		})
	}

	key := partitionKey(materialRunRatePrefix, "katana_raw_material_run_rate", asOf)
	return w.upload(ctx, key, records)
}

func (w *SnapshotWriter) upload(ctx context.Context, key string, records [][]string) error {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	if err := cw.WriteAll(records); err != nil {
		return fmt.Errorf("failed to encode snapshot csv: %w", err)
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to encode snapshot csv: %w", err)
	}

	if err := w.store.UploadObject(ctx, key, buf.Bytes(), "text/csv"); err != nil {
		return err
	}

	logger.Log.Info().
		Str("key", key).
		Int("rows", len(records)-1).
		Msg("snapshot mirrored to object storage")
	return nil
}

func partitionKey(prefix, table string, asOf time.Time) string {
	date := asOf.Format("2006-01-02")
	return fmt.Sprintf("%s/partition_date=%s/%s_%s.csv",
		prefix, date, table, strings.ReplaceAll(date, "-", "_"))
}

// scrubField strips characters that downstream CSV consumers choke on:
// double quotes become single quotes, newlines become spaces, and commas
// become semicolons.
func scrubField(s string) string {
	s = strings.ReplaceAll(s, `"`, "'")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, ",", ";")
	return s
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
