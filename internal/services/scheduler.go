package services

import (
	"context"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

type etlRunner interface {
	RunOnce(ctx context.Context) error
}

// Scheduler triggers an ETL run on a cron expression. Runs never
// overlap: a tick firing while the previous run is still executing is
// skipped.
type Scheduler struct {
	etl  etlRunner
	cron *cron.Cron
}

func NewScheduler(etl etlRunner, expression string) (*Scheduler, error) {

	if expression == "" {
		return nil, errors.New("cron expression must not be empty")
	}

	s := &Scheduler{
		etl: etl,
		cron: cron.New(cron.WithChain(
			cron.SkipIfStillRunning(cron.DiscardLogger),
		)),
	}

	_, err := s.cron.AddFunc(expression, s.runETL)
	if err != nil {
		return nil, err
	}

	s.cron.Start()
	log.Infof("ETL scheduler started, cron expression: %s", expression)
	return s, nil
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
}

func (s *Scheduler) runETL() {
	if err := s.etl.RunOnce(context.Background()); err != nil {
		log.Errorf("Scheduled ETL run failed: %v", err)
	} else {
		log.Info("Scheduled ETL run finished")
	}
}
