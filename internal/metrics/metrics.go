package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// result: correct/incorrect/skipped
	AnswersSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "study_answers_submitted_total",
			Help: "Total number of answers submitted",
		},
		[]string{"result"},
	)

	SessionsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "study_sessions_created_total",
			Help: "Total number of study sessions created",
		},
		[]string{"adaptive"},
	)

	SessionsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "study_sessions_completed_total",
			Help: "Total number of study sessions completed",
		},
		[]string{"passed"},
	)

	// result: hit/miss
	SnapshotLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "study_analytics_snapshot_lookups_total",
			Help: "Analytics snapshot lookups by result",
		},
		[]string{"result"},
	)

	SessionWriteConflicts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "study_session_write_conflicts_total",
			Help: "Session updates rejected because the stored version moved",
		},
	)

	QuestionsImported = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "study_dataset_questions_imported_total",
			Help: "Total number of questions imported from datasets",
		},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "study_http_request_duration_seconds",
			Help:    "Time spent serving HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

func Handler() http.Handler {
	return promhttp.Handler()
}
