// Package metrics provides Prometheus instrumentation for taskflow components.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds all metric instances for taskflow components.
// A nil *Registry disables instrumentation; every component checks for it.
type Registry struct {
	// Queue Actor Metrics
	QueueEnqueued   *prometheus.CounterVec
	QueueDequeued   *prometheus.CounterVec
	QueueEmptyPolls *prometheus.CounterVec
	QueueDepth      *prometheus.GaugeVec
	QueueWaiters    *prometheus.GaugeVec

	// Worker Pool Metrics
	ItemsProcessed    *prometheus.CounterVec
	ItemsFailed       *prometheus.CounterVec
	TransformDuration *prometheus.HistogramVec
	WorkerPoolSize    *prometheus.GaugeVec
	WorkerPoolActive  *prometheus.GaugeVec

	// Schedule Actor Metrics
	JobsScheduled   *prometheus.CounterVec
	JobsRemoved     *prometheus.CounterVec
	JobsActive      *prometheus.GaugeVec
	JobFirings      *prometheus.CounterVec
	SchedulerErrors *prometheus.CounterVec
}

// NewRegistry creates a new metrics registry with the given Prometheus registerer.
func NewRegistry(reg prometheus.Registerer) *Registry {
	return newRegistry(reg, defaultNamespace, nil)
}

// New builds a Registry from cfg. It returns nil when metrics are disabled.
func New(cfg Config) *Registry {
	if !cfg.Enabled {
		return nil
	}
	reg := cfg.Registry
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	ns := cfg.Namespace
	if ns == "" {
		ns = defaultNamespace
	}
	return newRegistry(reg, ns, cfg.Labels)
}

func newRegistry(reg prometheus.Registerer, ns string, labels prometheus.Labels) *Registry {
	factory := promauto.With(reg)

	return &Registry{
		// Queue Actor Metrics
		QueueEnqueued: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   "queue",
				Name:        "enqueued_total",
				Help:        "Total number of items enqueued",
				ConstLabels: labels,
			},
			[]string{"queue_name"},
		),

		QueueDequeued: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   "queue",
				Name:        "dequeued_total",
				Help:        "Total number of items handed out by dequeue or receive",
				ConstLabels: labels,
			},
			[]string{"queue_name"},
		),

		QueueEmptyPolls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   "queue",
				Name:        "empty_polls_total",
				Help:        "Total number of dequeue requests answered with no item",
				ConstLabels: labels,
			},
			[]string{"queue_name"},
		),

		QueueDepth: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace:   ns,
				Subsystem:   "queue",
				Name:        "depth",
				Help:        "Number of items held by the backing queue",
				ConstLabels: labels,
			},
			[]string{"queue_name"},
		),

		QueueWaiters: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace:   ns,
				Subsystem:   "queue",
				Name:        "parked_receivers",
				Help:        "Number of receivers parked on an empty queue",
				ConstLabels: labels,
			},
			[]string{"queue_name"},
		),

		// Worker Pool Metrics
		ItemsProcessed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   "workerpool",
				Name:        "items_processed_total",
				Help:        "Total number of items transformed successfully",
				ConstLabels: labels,
			},
			[]string{"pool_name"},
		),

		ItemsFailed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   "workerpool",
				Name:        "items_failed_total",
				Help:        "Total number of items whose transform returned an error or panicked",
				ConstLabels: labels,
			},
			[]string{"pool_name"},
		),

		TransformDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace:   ns,
				Subsystem:   "workerpool",
				Name:        "transform_duration_seconds",
				Help:        "Time spent executing transforms",
				Buckets:     prometheus.DefBuckets,
				ConstLabels: labels,
			},
			[]string{"pool_name"},
		),

		WorkerPoolSize: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace:   ns,
				Subsystem:   "workerpool",
				Name:        "size",
				Help:        "Current worker pool size",
				ConstLabels: labels,
			},
			[]string{"pool_name"},
		),

		WorkerPoolActive: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace:   ns,
				Subsystem:   "workerpool",
				Name:        "active_workers",
				Help:        "Number of workers currently running a transform",
				ConstLabels: labels,
			},
			[]string{"pool_name"},
		),

		// Schedule Actor Metrics
		JobsScheduled: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   "scheduler",
				Name:        "jobs_scheduled_total",
				Help:        "Total number of jobs added",
				ConstLabels: labels,
			},
			[]string{"scheduler_name"},
		),

		JobsRemoved: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   "scheduler",
				Name:        "jobs_removed_total",
				Help:        "Total number of jobs removed",
				ConstLabels: labels,
			},
			[]string{"scheduler_name"},
		),

		JobsActive: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace:   ns,
				Subsystem:   "scheduler",
				Name:        "jobs_active",
				Help:        "Number of jobs currently registered",
				ConstLabels: labels,
			},
			[]string{"scheduler_name"},
		),

		JobFirings: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   "scheduler",
				Name:        "job_firings_total",
				Help:        "Total number of job firings",
				ConstLabels: labels,
			},
			[]string{"scheduler_name"},
		),

		SchedulerErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   "scheduler",
				Name:        "errors_total",
				Help:        "Total number of rejected scheduler commands",
				ConstLabels: labels,
			},
			[]string{"scheduler_name", "op"},
		),
	}
}
