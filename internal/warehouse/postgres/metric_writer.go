package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/prymal/inventory-metrics/internal/domain"
	"github.com/prymal/inventory-metrics/internal/warehouse"
)

// MetricRepository persists and reads run-rate and raw-material status
// partitions. Writes are transactional delete-then-insert on the partition
// date: either the new partition fully replaces the old one, or the old one
// survives intact.
type MetricRepository struct {
	db *DB
}

func NewMetricRepository(db *DB) *MetricRepository {
	return &MetricRepository{db: db}
}

func (r *MetricRepository) ReplaceRunRatePartition(ctx context.Context, asOf time.Time, rows []domain.RunRateMetric) error {
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM shipbob_inventory_run_rate WHERE partition_date = $1`, asOf); err != nil {
			return fmt.Errorf("error clearing run rate partition: %w", err)
		}

		insert := `
			INSERT INTO shipbob_inventory_run_rate (
				inventory_id, name, run_rate, total_fulfillable_quantity,
				est_stock_days_on_hand, estimated_stockout_date, restock_point,
				active_flag, skew, kurtosis, partition_date
			) VALUES (
				:inventory_id, :name, :run_rate, :total_fulfillable_quantity,
				:est_stock_days_on_hand, :estimated_stockout_date, :restock_point,
				:active_flag, :skew, :kurtosis, :partition_date
			)
		`
		for _, row := range rows {
			if _, err := tx.NamedExecContext(ctx, insert, row); err != nil {
				return fmt.Errorf("error inserting run rate row for inventory_id %d: %w", row.InventoryID, err)
			}
		}
		return nil
	})
}

func (r *MetricRepository) LatestRunRateMetrics(ctx context.Context) ([]domain.RunRateMetric, error) {
	query := `
		SELECT
			inventory_id, name, run_rate, total_fulfillable_quantity,
			est_stock_days_on_hand, estimated_stockout_date, restock_point,
			active_flag, skew, kurtosis, partition_date
		FROM shipbob_inventory_run_rate
		WHERE partition_date = (SELECT MAX(partition_date) FROM shipbob_inventory_run_rate)
		ORDER BY inventory_id
	`

	var rows []domain.RunRateMetric
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("error fetching latest run rate metrics: %w", err)
	}
	return rows, nil
}

func (r *MetricRepository) ReplaceStatusPartition(ctx context.Context, asOf time.Time, rows []domain.RawMaterialStatus) error {
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM katana_raw_material_status WHERE partition_date = $1`, asOf); err != nil {
			return fmt.Errorf("error clearing raw material status partition: %w", err)
		}

		insert := `
			INSERT INTO katana_raw_material_status (
				variant_code_sku, name, units_of_measure, in_stock, in_stock_as_of,
				planned_qty, planned_qty_as_of, inventory_remaining,
				in_stock_percentage, needs_replenished, partition_date
			) VALUES (
				:variant_code_sku, :name, :units_of_measure, :in_stock, :in_stock_as_of,
				:planned_qty, :planned_qty_as_of, :inventory_remaining,
				:in_stock_percentage, :needs_replenished, :partition_date
			)
		`
		for _, row := range rows {
			if _, err := tx.NamedExecContext(ctx, insert, row); err != nil {
				return fmt.Errorf("error inserting status row for %s: %w", row.MaterialKey, err)
			}
		}
		return nil
	})
}

func (r *MetricRepository) LatestRawMaterialStatus(ctx context.Context) ([]domain.RawMaterialStatus, error) {
	query := `
		SELECT
			variant_code_sku, name, units_of_measure, in_stock, in_stock_as_of,
			planned_qty, planned_qty_as_of, inventory_remaining,
			in_stock_percentage, needs_replenished, partition_date
		FROM katana_raw_material_status
		WHERE partition_date = (SELECT MAX(partition_date) FROM katana_raw_material_status)
		ORDER BY variant_code_sku
	`

	var rows []domain.RawMaterialStatus
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("error fetching latest raw material status: %w", err)
	}
	return rows, nil
}

func (r *MetricRepository) ReplaceMaterialRunRatePartition(ctx context.Context, asOf time.Time, rows []domain.RawMaterialRunRate) error {
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM katana_raw_material_run_rate WHERE partition_date = $1`, asOf); err != nil {
			return fmt.Errorf("error clearing raw material run rate partition: %w", err)
		}

		insert := `
			INSERT INTO katana_raw_material_run_rate (
				variant_code_sku, name, units_of_measure, run_rate, restock_point,
				partition_date
			) VALUES (
				:variant_code_sku, :name, :units_of_measure, :run_rate, :restock_point,
				:partition_date
			)
		`
		for _, row := range rows {
			if _, err := tx.NamedExecContext(ctx, insert, row); err != nil {
				return fmt.Errorf("error inserting run rate row for %s: %w", row.MaterialKey, err)
			}
		}
		return nil
	})
}

var (
	_ warehouse.MetricStore          = (*MetricRepository)(nil)
	_ warehouse.StatusStore          = (*MetricRepository)(nil)
	_ warehouse.MaterialRunRateStore = (*MetricRepository)(nil)
)
