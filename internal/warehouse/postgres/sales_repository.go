package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/prymal/inventory-metrics/internal/domain"
	"github.com/prymal/inventory-metrics/internal/warehouse"
)

// SalesRepository reads daily unit sales from the landed order-details table.
type SalesRepository struct {
	db *DB
}

func NewSalesRepository(db *DB) *SalesRepository {
	return &SalesRepository{db: db}
}

func (r *SalesRepository) FetchDailySales(ctx context.Context, start, end time.Time) ([]domain.DailySales, error) {
	query := `
		SELECT
			order_date,
			inventory_id,
			COALESCE(SUM(inventory_qty), 0) AS qty_sold
		FROM shipbob_order_details
		WHERE order_date BETWEEN $1 AND $2
		GROUP BY order_date, inventory_id
		ORDER BY inventory_id, order_date
	`

	var rows []domain.DailySales
	if err := r.db.SelectContext(ctx, &rows, query, start, end); err != nil {
		return nil, fmt.Errorf("error fetching daily sales: %w", err)
	}

	return rows, nil
}

var _ warehouse.SalesSource = (*SalesRepository)(nil)
