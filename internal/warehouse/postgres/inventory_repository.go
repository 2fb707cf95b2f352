package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/prymal/inventory-metrics/internal/domain"
	"github.com/prymal/inventory-metrics/internal/warehouse"
)

// InventoryRepository reads daily on-hand snapshots and the storefront
// active-SKU feed.
type InventoryRepository struct {
	db *DB
}

func NewInventoryRepository(db *DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

func (r *InventoryRepository) FetchOnHandSnapshot(ctx context.Context, asOf time.Time) ([]domain.InventorySnapshot, error) {
	query := `
		SELECT
			inventory_id,
			name,
			COALESCE(total_fulfillable_quantity, 0) AS total_fulfillable_quantity,
			partition_date
		FROM shipbob_inventory_details
		WHERE partition_date = $1
		ORDER BY inventory_id
	`

	var rows []domain.InventorySnapshot
	if err := r.db.SelectContext(ctx, &rows, query, asOf); err != nil {
		return nil, fmt.Errorf("error fetching on-hand snapshot: %w", err)
	}

	return rows, nil
}

func (r *InventoryRepository) FetchActiveSKUFlags(ctx context.Context, asOf time.Time) ([]domain.ActiveSKUFlag, error) {
	// The feed repeats an inventory item once per storefront variant; the
	// pipeline is responsible for rejecting conflicting repeats.
	query := `
		SELECT
			inventory_id,
			is_active
		FROM shopify_active_variant_skus
		WHERE partition_date = (
			SELECT MAX(partition_date)
			FROM shopify_active_variant_skus
			WHERE partition_date <= $1
		)
		ORDER BY inventory_id
	`

	var rows []domain.ActiveSKUFlag
	if err := r.db.SelectContext(ctx, &rows, query, asOf); err != nil {
		return nil, fmt.Errorf("error fetching active sku flags: %w", err)
	}

	return rows, nil
}

var (
	_ warehouse.InventorySource = (*InventoryRepository)(nil)
	_ warehouse.ActiveSKUSource = (*InventoryRepository)(nil)
)
