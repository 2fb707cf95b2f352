package postgres

import (
	"context"
	"fmt"

	"github.com/prymal/inventory-metrics/internal/domain"
	"github.com/prymal/inventory-metrics/internal/warehouse"
)

// MaterialRepository reads raw-material inventory and open manufacturing
// order consumption from the landed Katana tables.
type MaterialRepository struct {
	db *DB
}

func NewMaterialRepository(db *DB) *MaterialRepository {
	return &MaterialRepository{db: db}
}

func (r *MaterialRepository) FetchRawMaterialOnHand(ctx context.Context) ([]domain.RawMaterialOnHand, error) {
	query := `
		SELECT
			variant_code_sku,
			name,
			units_of_measure,
			COALESCE(in_stock, 0) AS in_stock,
			partition_date AS in_stock_as_of
		FROM katana_inventory
		WHERE partition_date = (SELECT MAX(partition_date) FROM katana_inventory)
		ORDER BY variant_code_sku
	`

	var rows []domain.RawMaterialOnHand
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("error fetching raw material on-hand: %w", err)
	}

	return rows, nil
}

func (r *MaterialRepository) FetchOpenMOConsumption(ctx context.Context) ([]domain.PlannedConsumption, error) {
	query := `
		SELECT
			ingredient_variant_code_sku AS variant_code_sku,
			ingredient_variant AS variant,
			unit_of_measure AS uom,
			COALESCE(SUM(planned_quantity_of_ingredient), 0) AS planned_qty,
			partition_date AS planned_qty_as_of
		FROM katana_open_manufacturing_orders
		WHERE partition_date = (SELECT MAX(partition_date) FROM katana_open_manufacturing_orders)
		GROUP BY ingredient_variant_code_sku, ingredient_variant, unit_of_measure, partition_date
		ORDER BY ingredient_variant_code_sku
	`

	var rows []domain.PlannedConsumption
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("error fetching open MO consumption: %w", err)
	}

	return rows, nil
}

func (r *MaterialRepository) FetchRecipeLines(ctx context.Context) ([]domain.RecipeLine, error) {
	// Recipes are keyed by product name in the Katana export; joining to the
	// inventory snapshot resolves them to the same item ids the run-rate
	// partition carries.
	query := `
		SELECT
			d.inventory_id AS product_inventory_id,
			f.ingredient_variant_code_sku_required AS variant_code_sku,
			f.ingredient_variant_name AS name,
			f.unit_of_measure AS units_of_measure,
			COALESCE(f.quantity_required, 0) AS qty_per_unit
		FROM katana_formulas f
		JOIN shipbob_inventory_details d
			ON d.name = f.product_variant_name
			AND d.partition_date = (SELECT MAX(partition_date) FROM shipbob_inventory_details)
		WHERE f.partition_date = (SELECT MAX(partition_date) FROM katana_formulas)
		ORDER BY f.ingredient_variant_code_sku_required, d.inventory_id
	`

	var rows []domain.RecipeLine
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("error fetching recipe lines: %w", err)
	}

	return rows, nil
}

var (
	_ warehouse.RawMaterialSource   = (*MaterialRepository)(nil)
	_ warehouse.ManufacturingSource = (*MaterialRepository)(nil)
	_ warehouse.RecipeSource        = (*MaterialRepository)(nil)
)
