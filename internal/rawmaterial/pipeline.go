package rawmaterial

import (
	"context"
	"fmt"
	"time"

	"github.com/prymal/inventory-metrics/internal/domain"
	"github.com/prymal/inventory-metrics/internal/warehouse"
	"github.com/prymal/inventory-metrics/pkg/logger"
)

// SnapshotSink mirrors a finished status partition to object storage.
type SnapshotSink interface {
	WriteRawMaterialSnapshot(ctx context.Context, asOf time.Time, rows []domain.RawMaterialStatus) error
}

// Pipeline produces the raw-material status snapshot: current stock netted
// against the consumption already committed to open manufacturing orders.
type Pipeline struct {
	stock    warehouse.RawMaterialSource
	orders   warehouse.ManufacturingSource
	statuses warehouse.StatusStore
	snapshot SnapshotSink
}

func NewPipeline(
	stock warehouse.RawMaterialSource,
	orders warehouse.ManufacturingSource,
	statuses warehouse.StatusStore,
	snapshot SnapshotSink,
) *Pipeline {
	return &Pipeline{
		stock:    stock,
		orders:   orders,
		statuses: statuses,
		snapshot: snapshot,
	}
}

// Run executes one netting batch for the given as-of date.
func (p *Pipeline) Run(ctx context.Context, asOf time.Time) error {
	asOf = time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 0, 0, 0, 0, time.UTC)

	log := logger.Component("raw_material_status").With().
		Str("as_of", asOf.Format("2006-01-02")).
		Logger()

	log.Info().Msg("starting raw material status batch")

	onHand, err := p.stock.FetchRawMaterialOnHand(ctx)
	if err != nil {
		return fmt.Errorf("fetch raw material on-hand: %w", err)
	}
	if len(onHand) == 0 {
		log.Info().Msg("no raw material inventory rows, skipping run")
		return nil
	}

	planned, err := p.orders.FetchOpenMOConsumption(ctx)
	if err != nil {
		return fmt.Errorf("fetch open MO consumption: %w", err)
	}
	if len(planned) == 0 {
		log.Info().Msg("no open manufacturing orders, skipping run")
		return nil
	}

	statuses := NetConsumption(asOf, onHand, planned)

	if err := ValidateStatuses(statuses); err != nil {
		log.Error().Err(err).Msg("status validation failed, aborting before write")
		return err
	}

	short := Shortages(statuses)
	log.Info().
		Int("on_hand_rows", len(onHand)).
		Int("planned_rows", len(planned)).
		Int("status_rows", len(statuses)).
		Int("needing_replenishment", len(short)).
		Msg("netting complete")

	if err := p.statuses.ReplaceStatusPartition(ctx, asOf, statuses); err != nil {
		return fmt.Errorf("write raw material status partition: %w", err)
	}

	if p.snapshot != nil {
		if err := p.snapshot.WriteRawMaterialSnapshot(ctx, asOf, statuses); err != nil {
			return fmt.Errorf("mirror raw material snapshot: %w", err)
		}
	}

	log.Info().Int("rows", len(statuses)).Msg("raw material status batch complete")
	return nil
}
