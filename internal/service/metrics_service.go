package service

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/prymal/inventory-metrics/internal/alerts"
	"github.com/prymal/inventory-metrics/internal/cache"
	"github.com/prymal/inventory-metrics/internal/domain"
	"github.com/prymal/inventory-metrics/internal/warehouse"
)

// MetricsService is the read side: latest snapshots out of the warehouse,
// fronted by the snapshot cache, with severity classification applied on the
// way out.
type MetricsService struct {
	metrics    warehouse.MetricStore
	statuses   warehouse.StatusStore
	cache      cache.SnapshotCache
	thresholds alerts.Thresholds
}

func NewMetricsService(
	metrics warehouse.MetricStore,
	statuses warehouse.StatusStore,
	cacheImpl cache.SnapshotCache,
	thresholds alerts.Thresholds,
) *MetricsService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopSnapshotCache()
	}
	return &MetricsService{
		metrics:    metrics,
		statuses:   statuses,
		cache:      cacheImpl,
		thresholds: thresholds,
	}
}

// GetRunRate returns the latest run-rate partition with severity attached,
// most urgent items first.
func (s *MetricsService) GetRunRate(ctx context.Context) ([]domain.ClassifiedMetric, error) {
	rows, err := s.latestRunRate(ctx)
	if err != nil {
		return nil, err
	}
	return alerts.ClassifyMetrics(rows, s.thresholds), nil
}

// GetRawMaterials returns the latest raw-material status partition.
func (s *MetricsService) GetRawMaterials(ctx context.Context) ([]domain.RawMaterialStatus, error) {
	if rows, ok, err := s.cache.GetRawMaterials(ctx); err == nil && ok {
		return rows, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("metrics: cache get raw materials failed")
	}

	rows, err := s.statuses.LatestRawMaterialStatus(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetRawMaterials(ctx, rows); err != nil {
		log.Warn().Err(err).Msg("metrics: cache set raw materials failed")
	}

	return rows, nil
}

// GetAlertPreview builds the alert payloads the alerts job would publish for
// the latest snapshots, without delivering them.
func (s *MetricsService) GetAlertPreview(ctx context.Context) ([]alerts.Payload, error) {
	payloads := make([]alerts.Payload, 0, 2)

	metrics, err := s.GetRunRate(ctx)
	if err != nil {
		return nil, err
	}
	if payload, ok := alerts.BuildFinishedGoodsAlert(metrics); ok {
		payloads = append(payloads, payload)
	}

	statuses, err := s.GetRawMaterials(ctx)
	if err != nil {
		return nil, err
	}
	if payload, ok := alerts.BuildRawMaterialAlert(statuses); ok {
		payloads = append(payloads, payload)
	}

	return payloads, nil
}

func (s *MetricsService) latestRunRate(ctx context.Context) ([]domain.RunRateMetric, error) {
	if rows, ok, err := s.cache.GetRunRate(ctx); err == nil && ok {
		return rows, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("metrics: cache get run rate failed")
	}

	rows, err := s.metrics.LatestRunRateMetrics(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetRunRate(ctx, rows); err != nil {
		log.Warn().Err(err).Msg("metrics: cache set run rate failed")
	}

	return rows, nil
}
