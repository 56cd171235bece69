package services

import (
	"context"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/tlemaire/jobmarket/internal/batch"
	"github.com/tlemaire/jobmarket/internal/domain/models"
	"github.com/tlemaire/jobmarket/internal/events"
	"github.com/tlemaire/jobmarket/internal/metrics"
)

type transformer interface {
	Run(ctx context.Context) error
}

type canonicalStore interface {
	LoadCanonical() ([]models.CanonicalOffer, error)
}

// ETL chains the transform stage with the load and reconciliation
// stages, then announces the persisted batch on the bus.
type ETL struct {
	transformer transformer
	store       canonicalStore
	loader      *Loader
	bus         EventBus.Bus
}

func NewETL(transformer transformer, store canonicalStore, loader *Loader, bus EventBus.Bus) *ETL {
	return &ETL{transformer: transformer, store: store, loader: loader, bus: bus}
}

func (e *ETL) RunOnce(ctx context.Context) error {

	stageStart := time.Now()
	if err := e.transformer.Run(ctx); err != nil {
		return errors.Wrap(err, "transform stage")
	}
	metrics.StageDuration.WithLabelValues("transform").Observe(time.Since(stageStart).Seconds())

	offers, err := e.store.LoadCanonical()
	if err != nil {
		if errors.Is(err, batch.ErrNoBatch) {
			log.Warn("no canonical batch to load, skipping the load stage")
			return nil
		}
		return errors.Wrap(err, "load canonical batch")
	}

	stageStart = time.Now()
	report, err := e.loader.Load(ctx, offers)
	if err != nil {
		return errors.Wrap(err, "load stage")
	}
	metrics.StageDuration.WithLabelValues("load").Observe(time.Since(stageStart).Seconds())

	stageStart = time.Now()
	if err := e.loader.Reconcile(ctx, offers); err != nil {
		return errors.Wrap(err, "reconciliation stage")
	}
	metrics.StageDuration.WithLabelValues("reconcile").Observe(time.Since(stageStart).Seconds())

	e.bus.Publish(events.BatchPersistedTopic, events.BatchPersisted{
		Inserted: report.Inserted,
		Skipped:  report.Skipped,
	})
	return nil
}
