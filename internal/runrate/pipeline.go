package runrate

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/prymal/inventory-metrics/internal/config"
	"github.com/prymal/inventory-metrics/internal/domain"
	"github.com/prymal/inventory-metrics/internal/warehouse"
	"github.com/prymal/inventory-metrics/pkg/logger"
)

// SnapshotSink mirrors a finished partition to object storage. Optional; the
// warehouse write is the source of truth.
type SnapshotSink interface {
	WriteRunRateSnapshot(ctx context.Context, asOf time.Time, rows []domain.RunRateMetric) error
}

// Pipeline computes the per-item run-rate snapshot for one as-of date:
// fetch sales history and inventory, densify, smooth, project, validate,
// write. Each run is an independent batch; a rerun for the same date fully
// replaces its partition.
type Pipeline struct {
	cfg      config.ReplenishConfig
	sales    warehouse.SalesSource
	stock    warehouse.InventorySource
	flags    warehouse.ActiveSKUSource
	metrics  warehouse.MetricStore
	snapshot SnapshotSink
}

func NewPipeline(
	cfg config.ReplenishConfig,
	sales warehouse.SalesSource,
	stock warehouse.InventorySource,
	flags warehouse.ActiveSKUSource,
	metrics warehouse.MetricStore,
	snapshot SnapshotSink,
) *Pipeline {
	if cfg.EWMAAlpha <= 0 || cfg.EWMAAlpha > 1 {
		cfg.EWMAAlpha = 0.5
	}
	if cfg.SalesWindowDays <= 0 {
		cfg.SalesWindowDays = 90
	}
	if cfg.MaxDaysOnHand <= 0 {
		cfg.MaxDaysOnHand = DefaultMaxDaysOnHand
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 1
	}
	return &Pipeline{
		cfg:      cfg,
		sales:    sales,
		stock:    stock,
		flags:    flags,
		metrics:  metrics,
		snapshot: snapshot,
	}
}

// Run executes one batch for the given as-of date. The sales window is the
// trailing SalesWindowDays ending the day before asOf, and the inventory
// snapshot joined in is the one taken the day before asOf, so the stock
// position always predates the sales window's close (no look-ahead).
func (p *Pipeline) Run(ctx context.Context, asOf time.Time) error {
	asOf = dateKey(asOf)
	windowEnd := asOf.AddDate(0, 0, -1)
	windowStart := asOf.AddDate(0, 0, -p.cfg.SalesWindowDays)

	log := logger.Component("inventory_run_rate").With().
		Str("as_of", asOf.Format("2006-01-02")).
		Logger()

	log.Info().
		Str("window_start", windowStart.Format("2006-01-02")).
		Str("window_end", windowEnd.Format("2006-01-02")).
		Msg("starting run rate batch")

	sales, err := p.sales.FetchDailySales(ctx, windowStart, windowEnd)
	if err != nil {
		return fmt.Errorf("fetch daily sales: %w", err)
	}
	if len(sales) == 0 {
		// Upstream-empty is not an error; there is simply nothing to compute.
		log.Info().Msg("no sales rows in window, skipping run")
		return nil
	}

	snapshots, err := p.stock.FetchOnHandSnapshot(ctx, windowEnd)
	if err != nil {
		return fmt.Errorf("fetch on-hand snapshot: %w", err)
	}
	onHandByID := make(map[int64]domain.InventorySnapshot, len(snapshots))
	for _, s := range snapshots {
		onHandByID[s.InventoryID] = s
	}

	flags, err := p.flags.FetchActiveSKUFlags(ctx, asOf)
	if err != nil {
		return fmt.Errorf("fetch active sku flags: %w", err)
	}
	activeByID, err := ResolveActiveFlags(flags)
	if err != nil {
		// Irrecoverable data error: abort before anything is written.
		log.Error().Err(err).Msg("active flag feed is inconsistent")
		return err
	}

	series := Densify(sales, windowStart, windowEnd)
	itemIDs := make([]int64, 0, len(series))
	for id := range series {
		itemIDs = append(itemIDs, id)
	}
	sort.Slice(itemIDs, func(i, j int) bool { return itemIDs[i] < itemIDs[j] })

	log.Info().
		Int("sales_rows", len(sales)).
		Int("items", len(itemIDs)).
		Int("inventory_rows", len(snapshots)).
		Msg("computing per-item metrics")

	// Per-item computation is pure, so items fan out across a bounded worker
	// group and each worker writes only its own slot.
	rows := make([]domain.RunRateMetric, len(itemIDs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.WorkerCount)
	for i, id := range itemIDs {
		i, id := i, id
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rows[i] = p.computeItem(asOf, id, series[id], onHandByID, activeByID)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("compute metrics: %w", err)
	}

	if err := ValidateMetrics(rows, p.cfg.MaxDaysOnHand); err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			for _, rec := range verr.Invalid {
				log.Error().
					Int64("inventory_id", rec.InventoryID).
					Str("field", rec.Field).
					Str("reason", rec.Reason).
					Msg("invalid metric record")
			}
		}
		return fmt.Errorf("metric validation failed, aborting before write: %w", err)
	}

	if err := p.metrics.ReplaceRunRatePartition(ctx, asOf, rows); err != nil {
		return fmt.Errorf("write run rate partition: %w", err)
	}

	if p.snapshot != nil {
		if err := p.snapshot.WriteRunRateSnapshot(ctx, asOf, rows); err != nil {
			return fmt.Errorf("mirror run rate snapshot: %w", err)
		}
	}

	log.Info().Int("rows", len(rows)).Msg("run rate batch complete")
	return nil
}

// RunWindow runs one independent batch per day in [start, end] inclusive,
// matching the backfill contract of the scheduled job.
func (p *Pipeline) RunWindow(ctx context.Context, start, end time.Time) error {
	start = dateKey(start)
	end = dateKey(end)
	if end.Before(start) {
		return fmt.Errorf("end date %s precedes start date %s",
			end.Format("2006-01-02"), start.Format("2006-01-02"))
	}
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		if err := p.Run(ctx, day); err != nil {
			return err
		}
	}
	return nil
}

func (p *Pipeline) computeItem(
	asOf time.Time,
	itemID int64,
	series []domain.DailySales,
	onHandByID map[int64]domain.InventorySnapshot,
	activeByID map[int64]bool,
) domain.RunRateMetric {
	stats := ComputeSeriesStats(series, p.cfg.EWMAAlpha)

	name := p.cfg.MissingInventoryName
	onHand := 0
	if snap, ok := onHandByID[itemID]; ok {
		name = snap.Name
		onHand = snap.TotalFulfillableQuantity
	} else {
		// Items sold but absent from the inventory extract degrade to zero
		// stock with a sentinel name instead of failing the row. Logged so
		// catalog drift stays visible.
		logger.Log.Warn().
			Int64("inventory_id", itemID).
			Msg("item missing from inventory snapshot, defaulting to zero stock")
	}

	days := DaysOnHand(onHand, stats.RunRate, p.cfg.MaxDaysOnHand)

	return domain.RunRateMetric{
		InventoryID:              itemID,
		Name:                     name,
		RunRate:                  stats.RunRate,
		TotalFulfillableQuantity: onHand,
		EstStockDaysOnHand:       days,
		EstimatedStockoutDate:    StockoutDate(asOf, days),
		RestockPoint:             RestockPoint(stats.RunRate, p.cfg.FinishedGoods),
		ActiveFlag:               activeByID[itemID],
		Skew:                     stats.Skew,
		Kurtosis:                 stats.Kurtosis,
		AsOfDate:                 asOf,
	}
}
