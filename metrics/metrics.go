package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BarcodesDecoded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "receiving_barcodes_decoded_total",
			Help: "Total number of barcode decode attempts by parse type and outcome",
		},
		[]string{"parse_type", "outcome"},
	)

	ThresholdValidations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "receiving_threshold_validations_total",
			Help: "Total number of temperature and transit-time validations by outcome",
		},
		[]string{"property", "outcome"},
	)

	ConsequenceRuleFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "receiving_consequence_rule_failures_total",
			Help: "Total number of evaluations that selected no consequence rule",
		},
		[]string{"property", "reason"},
	)

	RegexExecutionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "receiving_regex_execution_duration_seconds",
			Help:    "Time taken to match a barcode against its pattern",
			Buckets: []float64{0.00001, 0.0001, 0.001, 0.01, 0.1, 0.5, 1},
		},
		[]string{"parse_type"},
	)

	RegexTimeouts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "receiving_regex_timeouts_total",
			Help: "Total number of barcode pattern matches aborted by the match timeout",
		},
		[]string{"parse_type", "pattern_hash"},
	)

	PatternCacheEvictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "receiving_pattern_cache_evictions_total",
			Help: "Total number of compiled barcode patterns evicted from the cache",
		},
	)

	LookupCacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "receiving_lookup_cache_requests_total",
			Help: "Total number of reference-data cache lookups by kind and result",
		},
		[]string{"kind", "result"},
	)

	UseCaseDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "receiving_use_case_duration_seconds",
			Help:    "Time taken to execute a receiving use case",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"use_case"},
	)
)

// Outcome labels shared by the counters above
const (
	OutcomeValid        = "valid"
	OutcomeInvalid      = "invalid"
	OutcomePrecondition = "precondition"
	OutcomeError        = "error"
)
