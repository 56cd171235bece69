package main

import (
	"context"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/asaskevich/EventBus"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/tlemaire/jobmarket/internal/batch"
	"github.com/tlemaire/jobmarket/internal/config"
	"github.com/tlemaire/jobmarket/internal/geo"
	"github.com/tlemaire/jobmarket/internal/logger"
	"github.com/tlemaire/jobmarket/internal/matching"
	"github.com/tlemaire/jobmarket/internal/metrics"
	"github.com/tlemaire/jobmarket/internal/pipeline"
	"github.com/tlemaire/jobmarket/internal/repositories"
	"github.com/tlemaire/jobmarket/internal/services"
	"github.com/tlemaire/jobmarket/internal/sources"
)

func buildETL(cfg *config.Config, store *batch.Store, dbContext *repositories.DbContext,
	bus EventBus.Bus) (*services.ETL, error) {

	geoIndex, err := geo.NewIndex(filepath.Join(cfg.Pipeline.ResourcesDir, "communes.csv"))
	if err != nil {
		return nil, errors.Wrap(err, "can't build geo index")
	}
	log.Infof("geo index loaded, %d communes", geoIndex.Size())

	registry := sources.NewRegistry(
		sources.NewAdzuna(geoIndex),
		sources.NewFranceTravail(geoIndex),
		sources.NewJSearch(geoIndex, filepath.Join(cfg.Pipeline.ResourcesDir, "country_codes.json")),
	)

	transformer, err := pipeline.NewService(registry, store, bus, cfg.Pipeline.ChunkSize, cfg.Pipeline.Workers)
	if err != nil {
		return nil, errors.Wrap(err, "can't create pipeline service")
	}

	offers := repositories.NewOffersRepository(dbContext.DB)
	loader, err := services.NewLoader(offers, dbContext, cfg.Pipeline.Workers)
	if err != nil {
		return nil, errors.Wrap(err, "can't create loader")
	}

	return services.NewETL(transformer, store, loader, bus), nil
}

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Get()

	logger.Setup(cfg.Logger)
	defer logger.Cleanup()

	metrics.StartMetricsServer()

	dbContext, err := repositories.NewDbContext(cfg.DB.ConnectionString)
	if err != nil {
		log.Fatalf("can't create db context: %v", err)
	}
	defer dbContext.Close()

	err = dbContext.Migrate()
	if err != nil {
		log.Fatalf("can't migrate db context: %v", err)
	}

	bus := EventBus.New()
	store := batch.NewStore(cfg.Pipeline.RawDataDir, cfg.Pipeline.ProcessedDataDir)

	etl, err := buildETL(cfg, store, dbContext, bus)
	if err != nil {
		log.Fatalf("can't build ETL: %v", err)
	}

	matcher, err := matching.NewService(store, bus, matching.Weights{
		Title:       cfg.Matching.WeightTitle,
		Location:    cfg.Matching.WeightLocation,
		Description: cfg.Matching.WeightDescription,
	}, cfg.Matching.CandidateLimit, cfg.Matching.ScoreThreshold)
	if err != nil {
		log.Fatalf("can't create matching service: %v", err)
	}

	if err := matcher.Reload(); err != nil {
		if errors.Is(err, batch.ErrNoBatch) {
			log.Warn("no canonical batch yet, the matching engine starts empty")
		} else {
			log.Errorf("initial matching engine build failed: %v", err)
		}
	}

	scheduler, err := services.NewScheduler(etl, cfg.Pipeline.Cron)
	if err != nil {
		log.Fatalf("can't create scheduler: %v", err)
	}
	defer scheduler.Stop()

	<-ctx.Done()

	log.Info("Shutting down services...")
	log.Info("Services stopped.")
}
