package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	VotesCast = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "votes_cast_total",
		Help: "Vote casts applied to the ledger, by target type and outcome",
	}, []string{"target_type", "op"})

	QuestionsCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "questions_created_total",
		Help: "Questions created",
	})

	AnswersCreated = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "answers_created_total",
		Help: "Answers created, by kind (human or ai)",
	}, []string{"kind"})

	AnswersAccepted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "answers_accepted_total",
		Help: "Answer acceptance transitions",
	})

	NotificationEmitFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "notification_emit_failures_total",
		Help: "Notification writes that failed and were dropped",
	})

	AIGenerationDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ai_generation_duration_seconds",
		Help:    "Time spent generating an AI answer",
		Buckets: prometheus.DefBuckets,
	}, []string{"model", "status"})

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request handling time",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})
)

// MustRegister registers every collector with the given registerer.
func MustRegister(registerer prometheus.Registerer) {
	registerer.MustRegister(
		VotesCast,
		QuestionsCreated,
		AnswersCreated,
		AnswersAccepted,
		NotificationEmitFailures,
		AIGenerationDuration,
		HTTPRequestDuration,
	)
}

// ObserveAIGeneration records one AI generation attempt.
func ObserveAIGeneration(model string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	AIGenerationDuration.WithLabelValues(model, status).Observe(time.Since(start).Seconds())
}
