// Package metrics provides Prometheus-based metrics for plan submissions.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder records submission, oracle and website fetch metrics. A nil *Recorder is
// valid and records nothing.
type Recorder struct {
	registry        *prometheus.Registry
	submissions     *prometheus.CounterVec
	oracleRequests  *prometheus.CounterVec
	oracleDuration  *prometheus.HistogramVec
	promptTokens    *prometheus.HistogramVec
	websiteFetches  *prometheus.CounterVec
	qualityScore    prometheus.Histogram
	verdictsByLevel *prometheus.CounterVec
}

// NewRecorder creates a recorder with its own registry, so independent recorders never
// collide on metric names.
func NewRecorder() *Recorder {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Recorder{
		registry: registry,
		submissions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "onboarding_submissions_total",
				Help: "Total number of plan submissions by terminal state",
			},
			[]string{"state"},
		),
		oracleRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "onboarding_oracle_requests_total",
				Help: "Total number of oracle requests by provider, model, status and failure kind",
			},
			[]string{"provider", "model", "status", "error_kind"},
		),
		oracleDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "onboarding_oracle_request_duration_seconds",
				Help:    "Duration of oracle requests in seconds",
				Buckets: []float64{1, 2.5, 5, 10, 20, 30, 45, 60, 90, 120},
			},
			[]string{"provider", "model"},
		),
		promptTokens: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "onboarding_prompt_tokens",
				Help:    "Estimated prompt tokens per oracle request",
				Buckets: prometheus.ExponentialBuckets(256, 2, 8),
			},
			[]string{"provider"},
		),
		websiteFetches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "onboarding_website_fetches_total",
				Help: "Total number of website summary lookups by result",
			},
			[]string{"result"},
		),
		qualityScore: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "onboarding_plan_quality_score",
				Help:    "Quality score of validated plans",
				Buckets: prometheus.LinearBuckets(0, 10, 11),
			},
		),
		verdictsByLevel: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "onboarding_plan_verdicts_total",
				Help: "Total number of validator verdicts by seniority",
			},
			[]string{"verdict", "seniority"},
		),
	}
}

// Website fetch results.
const (
	FetchResultHit     = "cache_hit"
	FetchResultSuccess = "success"
	FetchResultFailure = "failure"
	FetchResultSkipped = "skipped"
)

// ObserveSubmission counts a submission that reached a terminal state.
func (r *Recorder) ObserveSubmission(state string) {
	if r == nil {
		return
	}
	r.submissions.WithLabelValues(state).Inc()
}

// ObserveOracle records a completed oracle request. errorKind is empty on success.
func (r *Recorder) ObserveOracle(provider, model, errorKind string, promptTokens int, duration time.Duration) {
	if r == nil {
		return
	}
	status := "success"
	if errorKind != "" {
		status = "error"
	}
	r.oracleRequests.WithLabelValues(provider, model, status, errorKind).Inc()
	r.oracleDuration.WithLabelValues(provider, model).Observe(duration.Seconds())
	r.promptTokens.WithLabelValues(provider).Observe(float64(promptTokens))
}

// ObserveWebsiteFetch counts a website summary lookup.
func (r *Recorder) ObserveWebsiteFetch(result string) {
	if r == nil {
		return
	}
	r.websiteFetches.WithLabelValues(result).Inc()
}

// ObservePlan records the validator's verdict and quality score.
func (r *Recorder) ObservePlan(verdict, seniority string, score int) {
	if r == nil {
		return
	}
	r.verdictsByLevel.WithLabelValues(verdict, seniority).Inc()
	r.qualityScore.Observe(float64(score))
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the recorder's metrics in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
