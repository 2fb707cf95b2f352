package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DailySales is one day of unit sales for one inventory item. After
// densification there is exactly one row per item per calendar day in the
// window, zero-filled where no orders were observed.
type DailySales struct {
	InventoryID int64     `json:"inventory_id" db:"inventory_id"`
	Date        time.Time `json:"order_date" db:"order_date"`
	QtySold     int       `json:"qty_sold" db:"qty_sold"`
}

// InventorySnapshot is the on-hand position of one item on one day. It is a
// separate daily extract with its own lifecycle, independent of sales data.
type InventorySnapshot struct {
	InventoryID              int64     `json:"inventory_id" db:"inventory_id"`
	Name                     string    `json:"name" db:"name"`
	TotalFulfillableQuantity int       `json:"total_fulfillable_quantity" db:"total_fulfillable_quantity"`
	AsOfDate                 time.Time `json:"partition_date" db:"partition_date"`
}

// ActiveSKUFlag marks whether an item is currently listed for sale in the
// storefront. The feed may repeat an item; repeats must agree.
type ActiveSKUFlag struct {
	InventoryID int64 `json:"inventory_id" db:"inventory_id"`
	Active      bool  `json:"is_active" db:"is_active"`
}

// RunRateMetric is the per-item replenishment snapshot produced by the
// finished-goods pipeline. Rows are value-typed: each run fully replaces the
// partition for its as-of date, nothing is mutated in place.
type RunRateMetric struct {
	InventoryID              int64     `json:"inventory_id" db:"inventory_id"`
	Name                     string    `json:"name" db:"name"`
	RunRate                  float64   `json:"run_rate" db:"run_rate"`
	TotalFulfillableQuantity int       `json:"total_fulfillable_quantity" db:"total_fulfillable_quantity"`
	EstStockDaysOnHand       float64   `json:"est_stock_days_on_hand" db:"est_stock_days_on_hand"`
	EstimatedStockoutDate    time.Time `json:"estimated_stockout_date" db:"estimated_stockout_date"`
	RestockPoint             int       `json:"restock_point" db:"restock_point"`
	ActiveFlag               bool      `json:"active_flag" db:"active_flag"`
	Skew                     float64   `json:"skew" db:"skew"`
	Kurtosis                 float64   `json:"kurtosis" db:"kurtosis"`
	AsOfDate                 time.Time `json:"partition_date" db:"partition_date"`
}

// NeedsReplenished reports whether on-hand stock has fallen below the restock
// point, i.e. a new order placed now would not arrive before stockout.
func (m RunRateMetric) NeedsReplenished() bool {
	return m.TotalFulfillableQuantity < m.RestockPoint
}

// RawMaterialOnHand is the current physical stock of one raw material.
type RawMaterialOnHand struct {
	MaterialKey string          `json:"variant_code_sku" db:"variant_code_sku"`
	Name        string          `json:"name" db:"name"`
	UOM         string          `json:"units_of_measure" db:"units_of_measure"`
	InStock     decimal.Decimal `json:"in_stock" db:"in_stock"`
	AsOfDate    time.Time       `json:"in_stock_as_of" db:"in_stock_as_of"`
}

// PlannedConsumption is the summed planned usage of one raw material across
// all currently open manufacturing orders.
type PlannedConsumption struct {
	MaterialKey string          `json:"variant_code_sku" db:"variant_code_sku"`
	Name        string          `json:"variant" db:"variant"`
	UOM         string          `json:"uom" db:"uom"`
	PlannedQty  decimal.Decimal `json:"planned_qty" db:"planned_qty"`
	AsOfDate    time.Time       `json:"planned_qty_as_of" db:"planned_qty_as_of"`
}

// RawMaterialStatus nets on-hand raw material against planned consumption.
// Only materials actually consumed by an open manufacturing order appear;
// everything else is excluded, not flagged.
type RawMaterialStatus struct {
	MaterialKey        string          `json:"variant_code_sku" db:"variant_code_sku"`
	Name               string          `json:"name" db:"name"`
	UOM                string          `json:"units_of_measure" db:"units_of_measure"`
	InStock            decimal.Decimal `json:"in_stock" db:"in_stock"`
	InStockAsOf        time.Time       `json:"in_stock_as_of" db:"in_stock_as_of"`
	PlannedQty         decimal.Decimal `json:"planned_qty" db:"planned_qty"`
	PlannedQtyAsOf     time.Time       `json:"planned_qty_as_of" db:"planned_qty_as_of"`
	InventoryRemaining decimal.Decimal `json:"inventory_remaining" db:"inventory_remaining"`
	InStockPercentage  decimal.Decimal `json:"in_stock_percentage" db:"in_stock_percentage"`
	NeedsReplenished   bool            `json:"needs_replenished" db:"needs_replenished"`
	AsOfDate           time.Time       `json:"partition_date" db:"partition_date"`
}

// RecipeLine maps one finished good to one raw material it consumes, with the
// quantity required per unit produced.
type RecipeLine struct {
	ProductInventoryID int64           `json:"product_inventory_id" db:"product_inventory_id"`
	MaterialKey        string          `json:"variant_code_sku" db:"variant_code_sku"`
	MaterialName       string          `json:"name" db:"name"`
	UOM                string          `json:"units_of_measure" db:"units_of_measure"`
	QtyPerUnit         decimal.Decimal `json:"qty_per_unit" db:"qty_per_unit"`
}

// RawMaterialRunRate is the daily consumption velocity of one raw material,
// derived by pushing the finished-goods run rates through the product
// recipes. Quantities stay decimal because materials are measured in
// fractional units.
type RawMaterialRunRate struct {
	MaterialKey  string          `json:"variant_code_sku" db:"variant_code_sku"`
	Name         string          `json:"name" db:"name"`
	UOM          string          `json:"units_of_measure" db:"units_of_measure"`
	RunRate      decimal.Decimal `json:"run_rate" db:"run_rate"`
	RestockPoint decimal.Decimal `json:"restock_point" db:"restock_point"`
	AsOfDate     time.Time       `json:"partition_date" db:"partition_date"`
}

// Severity is the replenishment urgency band for a finished-goods item.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityOK       Severity = "ok"
)

// ClassifiedMetric pairs a run-rate metric with its severity band for the
// read API and alert payloads.
type ClassifiedMetric struct {
	RunRateMetric
	Severity Severity `json:"severity"`
}
