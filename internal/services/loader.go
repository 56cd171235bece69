package services

import (
	"context"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"

	"github.com/tlemaire/jobmarket/internal/domain/models"
	"github.com/tlemaire/jobmarket/internal/logger"
	"github.com/tlemaire/jobmarket/internal/metrics"
)

// ErrDatabaseUnreachable aborts a load before any offer is touched.
var ErrDatabaseUnreachable = errors.New("database is unreachable")

const ghostAuditLimit = 10

type offerRepository interface {
	Persist(ctx context.Context, offer models.CanonicalOffer) error
	MarkMissingInactive(ctx context.Context, externalIDs []string) (int64, error)
	ActiveGhosts(ctx context.Context, externalIDs []string, limit int) ([]string, error)
}

type pinger interface {
	Ping() error
}

// LoadReport summarizes one load run. SkippedSample keeps at most ten
// external ids of rejected offers for the logs.
type LoadReport struct {
	Inserted      int
	Skipped       int
	SkippedSample []string
}

// Loader writes canonical batches to the database through a bounded
// worker pool. Offers are independent rows, so a failed offer is counted
// and skipped without stopping the batch.
type Loader struct {
	offers   offerRepository
	pinger   pinger
	validate *validator.Validate
	workers  int
}

func NewLoader(offers offerRepository, pinger pinger, workers int) (*Loader, error) {
	if workers <= 0 {
		return nil, errors.New("worker count must be greater than zero")
	}
	return &Loader{
		offers:   offers,
		pinger:   pinger,
		validate: validator.New(),
		workers:  workers,
	}, nil
}

// Load persists a batch. The database is pinged first so that an outage
// fails the whole run instead of producing a thousand identical errors.
func (l *Loader) Load(ctx context.Context, offers []models.CanonicalOffer) (*LoadReport, error) {

	if err := l.pinger.Ping(); err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).Errorf("database ping failed: %v", err)
		return nil, ErrDatabaseUnreachable
	}

	var (
		mu     sync.Mutex
		report LoadReport
	)

	jobs := make(chan models.CanonicalOffer)
	var wg sync.WaitGroup

	for i := 0; i < l.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for offer := range jobs {
				inserted := l.loadOne(ctx, offer)

				mu.Lock()
				if inserted {
					report.Inserted++
				} else {
					report.Skipped++
					if len(report.SkippedSample) < ghostAuditLimit {
						report.SkippedSample = append(report.SkippedSample, offer.ExternalID)
					}
				}
				mu.Unlock()
			}
		}()
	}

	for _, offer := range offers {
		jobs <- offer
	}
	close(jobs)
	wg.Wait()

	metrics.InsertedOffers.Add(float64(report.Inserted))
	metrics.SkippedOffers.Add(float64(report.Skipped))

	log.Infof("load finished: %d inserted, %d skipped", report.Inserted, report.Skipped)
	if report.Skipped > 0 {
		log.Warnf("skipped offers sample: %v", report.SkippedSample)
	}
	return &report, nil
}

func (l *Loader) loadOne(ctx context.Context, offer models.CanonicalOffer) bool {

	if err := l.validate.Struct(offer); err != nil {
		log.Warnf("rejecting offer %s from %s: %v", offer.ExternalID, offer.Source, err)
		return false
	}

	if err := l.offers.Persist(ctx, offer); err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).
			Errorf("failed to persist offer %s from %s: %v", offer.ExternalID, offer.Source, err)
		return false
	}
	return true
}

// Reconcile marks every active offer absent from the batch as inactive,
// then audits that no active ghost survived.
func (l *Loader) Reconcile(ctx context.Context, offers []models.CanonicalOffer) error {

	externalIDs := lo.Uniq(lo.FilterMap(offers, func(offer models.CanonicalOffer, _ int) (string, bool) {
		return offer.ExternalID, offer.ExternalID != ""
	}))

	if _, err := l.offers.MarkMissingInactive(ctx, externalIDs); err != nil {
		return errors.Wrap(err, "mark missing offers inactive")
	}

	ghosts, err := l.offers.ActiveGhosts(ctx, externalIDs, ghostAuditLimit)
	if err != nil {
		return errors.Wrap(err, "audit active ghosts")
	}
	if len(ghosts) > 0 {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).
			Errorf("reconciliation left %d active ghosts, sample: %v", len(ghosts), ghosts)
	}
	return nil
}
