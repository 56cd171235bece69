package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/tlemaire/jobmarket/internal/domain/models"
	"github.com/tlemaire/jobmarket/internal/events"
	"github.com/tlemaire/jobmarket/internal/logger"
	"github.com/tlemaire/jobmarket/internal/metrics"
	"github.com/tlemaire/jobmarket/internal/sources"
)

const mergedBatchName = "transformed"

type rawStore interface {
	LoadRaw(sourceDir string) ([]json.RawMessage, error)
	SaveCanonical(offers []models.CanonicalOffer, source string) (string, error)
}

// Service runs the normalization and entity-resolution stage: per source,
// the latest raw batch is extracted in parallel chunks, deduplicated, and
// the sources are then merged into one canonical batch snapshot.
type Service struct {
	registry  *sources.Registry
	store     rawStore
	bus       EventBus.Bus
	chunkSize int
	workers   int
}

func NewService(registry *sources.Registry, store rawStore, bus EventBus.Bus, chunkSize, workers int) (*Service, error) {
	if chunkSize <= 0 {
		return nil, errors.New("chunk size must be greater than zero")
	}
	if workers <= 0 {
		return nil, errors.New("worker count must be greater than zero")
	}
	return &Service{registry: registry, store: store, bus: bus, chunkSize: chunkSize, workers: workers}, nil
}

// Run processes every configured source sequentially; a broken or missing
// batch file skips that source only. The merged result is saved and
// announced on the bus.
func (s *Service) Run(ctx context.Context) error {

	start := time.Now()
	var all []models.CanonicalOffer

	for _, adapter := range s.registry.All() {
		offers, err := s.processSource(ctx, adapter)
		if err != nil {
			log.WithField(logger.ErrorTypeField, logger.ErrorTypeSourceFile).
				Errorf("skipping source %s: %v", adapter.Name(), err)
			continue
		}

		unique := DeduplicateWithinSource(offers)
		log.Infof("intra-source dedup for %s: %d -> %d offers", adapter.Name(), len(offers), len(unique))
		metrics.TransformedOffers.WithLabelValues(adapter.Name()).Add(float64(len(unique)))

		all = append(all, unique...)
	}

	final := MergeAcrossSources(all)
	log.Infof("cross-source merge: %d -> %d offers", len(all), len(final))

	if len(final) == 0 {
		log.Warn("no offers survived the transform stage, nothing to save")
		return nil
	}

	path, err := s.store.SaveCanonical(final, mergedBatchName)
	if err != nil {
		return errors.Wrap(err, "save canonical batch")
	}

	metrics.PipelineRunDuration.Observe(time.Since(start).Seconds())
	s.bus.Publish(events.BatchTransformedTopic, events.BatchTransformed{Path: path, Count: len(final)})
	return nil
}

// processSource extracts the latest raw batch of one source. Records are
// independent, so each chunk maps over a bounded errgroup; a record whose
// extraction fails is dropped with a warning, never fatal.
func (s *Service) processSource(ctx context.Context, adapter sources.Adapter) ([]models.CanonicalOffer, error) {

	raws, err := s.store.LoadRaw(adapter.Dir())
	if err != nil {
		return nil, err
	}

	var offers []models.CanonicalOffer

	for chunkNum, chunk := range lo.Chunk(raws, s.chunkSize) {
		log.Debugf("extracting chunk %d of %s (%d records)", chunkNum+1, adapter.Name(), len(chunk))

		results := make([]*models.CanonicalOffer, len(chunk))
		group, _ := errgroup.WithContext(ctx)
		group.SetLimit(s.workers)

		for i, raw := range chunk {
			i, raw := i, raw
			group.Go(func() error {
				offer, err := adapter.Extract(raw)
				if err != nil {
					log.Warnf("dropping %s record: %v", adapter.Name(), err)
					metrics.DroppedRecords.WithLabelValues(adapter.Name()).Inc()
					return nil
				}
				if offer.Title == "" || (offer.Location == "" && offer.Country == "") {
					log.Warnf("dropping %s record %s: no title or location", adapter.Name(), offer.ExternalID)
					metrics.DroppedRecords.WithLabelValues(adapter.Name()).Inc()
					return nil
				}
				results[i] = offer
				return nil
			})
		}

		if err := group.Wait(); err != nil {
			return nil, err
		}

		for _, offer := range results {
			if offer != nil {
				offers = append(offers, *offer)
			}
		}
	}

	return offers, nil
}
