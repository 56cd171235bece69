package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

var (
	ErrorsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobmarket_errors_total",
			Help: "Total number of occurred errors.",
		},
		[]string{"type"},
	)
	TransformedOffers = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobmarket_offers_transformed_total",
			Help: "Total number of offers surviving the transform stage, per source.",
		},
		[]string{"source"},
	)
	DroppedRecords = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobmarket_records_dropped_total",
			Help: "Total number of raw records dropped during extraction, per source.",
		},
		[]string{"source"},
	)
	InsertedOffers = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "jobmarket_offers_inserted_total",
			Help: "Total number of offers persisted to the database.",
		},
	)
	SkippedOffers = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "jobmarket_offers_skipped_total",
			Help: "Total number of offers rejected before or during persistence.",
		},
	)
	PipelineRunDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "jobmarket_pipeline_run_duration_seconds",
			Help:    "Duration of each transform pipeline run in seconds.",
			Buckets: []float64{1, 5, 15, 60, 300, 900},
		},
	)
	StageDuration = prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       "jobmarket_etl_stage_duration_seconds",
			Help:       "Duration of each stage in the ETL run.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"stage"},
	)
)

func StartMetricsServer() {

	prometheus.MustRegister(ErrorsCounter)
	prometheus.MustRegister(TransformedOffers)
	prometheus.MustRegister(DroppedRecords)
	prometheus.MustRegister(InsertedOffers)
	prometheus.MustRegister(SkippedOffers)
	prometheus.MustRegister(PipelineRunDuration)
	prometheus.MustRegister(StageDuration)

	http.Handle("/metrics", promhttp.Handler())
	go func() {
		log.Fatal(http.ListenAndServe(":8080", nil))
	}()
}
