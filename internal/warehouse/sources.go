package warehouse

import (
	"context"
	"time"

	"github.com/prymal/inventory-metrics/internal/domain"
)

// The pipelines own no storage or transport. Every input is an injected
// source and every output goes through an injected store, so the computation
// layer stays free of query-engine details.

// SalesSource supplies historical daily unit sales per item.
type SalesSource interface {
	// FetchDailySales returns (item, date, qty) rows for order dates in
	// [start, end] inclusive. Rows may be sparse; densification happens in
	// the pipeline.
	FetchDailySales(ctx context.Context, start, end time.Time) ([]domain.DailySales, error)
}

// InventorySource supplies point-in-time on-hand positions.
type InventorySource interface {
	// FetchOnHandSnapshot returns the inventory snapshot taken on asOf.
	FetchOnHandSnapshot(ctx context.Context, asOf time.Time) ([]domain.InventorySnapshot, error)
}

// ActiveSKUSource supplies the storefront listing status per item.
type ActiveSKUSource interface {
	FetchActiveSKUFlags(ctx context.Context, asOf time.Time) ([]domain.ActiveSKUFlag, error)
}

// ManufacturingSource supplies planned raw-material consumption from open
// manufacturing orders, already grouped and summed by material.
type ManufacturingSource interface {
	FetchOpenMOConsumption(ctx context.Context) ([]domain.PlannedConsumption, error)
}

// RawMaterialSource supplies current raw-material stock levels.
type RawMaterialSource interface {
	FetchRawMaterialOnHand(ctx context.Context) ([]domain.RawMaterialOnHand, error)
}

// RecipeSource supplies product recipe lines, already joined to the
// finished-goods items they belong to.
type RecipeSource interface {
	FetchRecipeLines(ctx context.Context) ([]domain.RecipeLine, error)
}

// MetricStore persists finished-goods run-rate snapshots, one partition per
// as-of date. Replace semantics: a rerun for the same date fully replaces the
// prior partition, and a failed run must leave it untouched.
type MetricStore interface {
	ReplaceRunRatePartition(ctx context.Context, asOf time.Time, rows []domain.RunRateMetric) error
	LatestRunRateMetrics(ctx context.Context) ([]domain.RunRateMetric, error)
}

// StatusStore persists raw-material status snapshots with the same
// partition-replace semantics as MetricStore.
type StatusStore interface {
	ReplaceStatusPartition(ctx context.Context, asOf time.Time, rows []domain.RawMaterialStatus) error
	LatestRawMaterialStatus(ctx context.Context) ([]domain.RawMaterialStatus, error)
}

// MaterialRunRateStore persists derived raw-material run rates, again one
// fully-replaced partition per as-of date.
type MaterialRunRateStore interface {
	ReplaceMaterialRunRatePartition(ctx context.Context, asOf time.Time, rows []domain.RawMaterialRunRate) error
}
