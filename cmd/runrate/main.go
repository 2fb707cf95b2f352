package main

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/prymal/inventory-metrics/internal/alerts"
	"github.com/prymal/inventory-metrics/internal/config"
	"github.com/prymal/inventory-metrics/internal/rawmaterial"
	"github.com/prymal/inventory-metrics/internal/runrate"
	"github.com/prymal/inventory-metrics/internal/storage"
	"github.com/prymal/inventory-metrics/internal/warehouse/postgres"
	"github.com/prymal/inventory-metrics/pkg/logger"
)

const dateLayout = "2006-01-02"

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Warehouse connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func yesterdayUTC() string {
	return time.Now().UTC().AddDate(0, 0, -1).Format(dateLayout)
}

func todayUTC() string {
	return time.Now().UTC().Format(dateLayout)
}

func parseDateFlag(c *cli.Context, name string) (time.Time, error) {
	value := c.String(name)
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --%s %q (want YYYY-MM-DD): %w", name, value, err)
	}
	return t, nil
}

// newSnapshotWriter builds the object-store mirror, or nil when mirroring is
// disabled.
func newSnapshotWriter(cfg *config.Config) (*storage.SnapshotWriter, error) {
	if !cfg.ObjectStore.Enabled {
		return nil, nil
	}
	client, err := storage.NewS3Client(cfg.ObjectStore)
	if err != nil {
		return nil, err
	}
	return storage.NewSnapshotWriter(client), nil
}

func runFinishedGoods(c *cli.Context) error {
	cfg := config.Load()

	start, err := parseDateFlag(c, "start-date")
	if err != nil {
		return err
	}
	end, err := parseDateFlag(c, "end-date")
	if err != nil {
		return err
	}

	db, err := postgres.NewDBFromURL(c.String("db-url"))
	if err != nil {
		return err
	}
	defer db.Close()

	writer, err := newSnapshotWriter(cfg)
	if err != nil {
		return err
	}

	metricRepo := postgres.NewMetricRepository(db)
	pipeline := runrate.NewPipeline(
		cfg.Replenish,
		postgres.NewSalesRepository(db),
		postgres.NewInventoryRepository(db),
		postgres.NewInventoryRepository(db),
		metricRepo,
		snapshotSinkOrNil(writer),
	)

	return pipeline.RunWindow(c.Context, start, end)
}

// snapshotSinkOrNil avoids handing the pipeline a non-nil interface wrapping
// a nil writer.
func snapshotSinkOrNil(w *storage.SnapshotWriter) runrate.SnapshotSink {
	if w == nil {
		return nil
	}
	return w
}

func rawMaterialSinkOrNil(w *storage.SnapshotWriter) rawmaterial.SnapshotSink {
	if w == nil {
		return nil
	}
	return w
}

func materialRunRateSinkOrNil(w *storage.SnapshotWriter) rawmaterial.RunRateSnapshotSink {
	if w == nil {
		return nil
	}
	return w
}

func runRawMaterials(c *cli.Context) error {
	cfg := config.Load()

	db, err := postgres.NewDBFromURL(c.String("db-url"))
	if err != nil {
		return err
	}
	defer db.Close()

	writer, err := newSnapshotWriter(cfg)
	if err != nil {
		return err
	}

	materialRepo := postgres.NewMaterialRepository(db)
	metricRepo := postgres.NewMetricRepository(db)
	asOf := time.Now().UTC()

	pipeline := rawmaterial.NewPipeline(
		materialRepo,
		materialRepo,
		metricRepo,
		rawMaterialSinkOrNil(writer),
	)
	if err := pipeline.Run(c.Context, asOf); err != nil {
		return err
	}

	runRates := rawmaterial.NewRunRatePipeline(
		metricRepo,
		materialRepo,
		metricRepo,
		cfg.Replenish.RawMaterials,
		materialRunRateSinkOrNil(writer),
	)
	return runRates.Run(c.Context, asOf)
}

func runAlerts(c *cli.Context) error {
	cfg := config.Load()

	db, err := postgres.NewDBFromURL(c.String("db-url"))
	if err != nil {
		return err
	}
	defer db.Close()

	var notifier alerts.Notifier
	if c.Bool("dry-run") {
		notifier = alerts.LogNotifier{}
	} else {
		notifier, err = alerts.NewSNSNotifier(cfg.Alerts.Region, cfg.Alerts.TopicARN)
		if err != nil {
			return err
		}
	}

	metricRepo := postgres.NewMetricRepository(db)
	thresholds := alerts.ThresholdsFromConfig(cfg.Alerts)

	metrics, err := metricRepo.LatestRunRateMetrics(c.Context)
	if err != nil {
		return err
	}
	if payload, ok := alerts.BuildFinishedGoodsAlert(alerts.ClassifyMetrics(metrics, thresholds)); ok {
		if err := notifier.Publish(c.Context, payload); err != nil {
			return err
		}
	} else {
		logger.Log.Info().Msg("no finished goods items crossing alert thresholds")
	}

	statuses, err := metricRepo.LatestRawMaterialStatus(c.Context)
	if err != nil {
		return err
	}
	if payload, ok := alerts.BuildRawMaterialAlert(statuses); ok {
		if err := notifier.Publish(c.Context, payload); err != nil {
			return err
		}
	} else {
		logger.Log.Info().Msg("no raw materials needing replenishment")
	}

	return nil
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		logger.Log.Debug().Err(err).Msg("could not load .env file")
	}

	app := &cli.App{
		Name:  "runrate",
		Usage: "Scheduled inventory replenishment metric jobs",
		Commands: []*cli.Command{
			{
				Name:  "finished-goods",
				Usage: "Compute the per-item run rate snapshot for each day in the date window",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.StringFlag{
						Name:  "start-date",
						Usage: "First as-of date (YYYY-MM-DD); one partition is produced per day",
						Value: yesterdayUTC(),
					},
					&cli.StringFlag{
						Name:  "end-date",
						Usage: "Last as-of date (YYYY-MM-DD), inclusive",
						Value: todayUTC(),
					},
				},
				Action: runFinishedGoods,
			},
			{
				Name:  "raw-materials",
				Usage: "Net raw material inventory against open MO consumption and derive material run rates",
				Flags: []cli.Flag{
					newDBURLFlag(),
				},
				Action: runRawMaterials,
			},
			{
				Name:  "alerts",
				Usage: "Classify the latest snapshots and publish alert payloads",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.BoolFlag{
						Name:  "dry-run",
						Usage: "Log alerts instead of publishing them",
					},
				},
				Action: runAlerts,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("job failed")
	}
}
