package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const defaultNamespace = "packer"

// Prometheus implements Recorder backed by Prometheus collectors.
type Prometheus struct {
	packages       prometheus.Counter
	itemsSeen      prometheus.Histogram
	itemsSelected  prometheus.Histogram
	solveDuration  prometheus.Histogram
	validationErrs *prometheus.CounterVec
	cacheLookups   *prometheus.CounterVec
}

var _ Recorder = (*Prometheus)(nil)

// NewPrometheus creates and registers the packing collectors.
//
// reg defaults to prometheus.DefaultRegisterer and namespace to "packer".
func NewPrometheus(reg prometheus.Registerer, namespace string) (*Prometheus, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = defaultNamespace
	}

	itemBuckets := prometheus.LinearBuckets(0, 1, 16)
	p := &Prometheus{
		packages: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "optimizer",
			Name:      "packages_total",
			Help:      "Total packages optimised.",
		}),
		itemsSeen: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "optimizer",
			Name:      "package_items",
			Help:      "Candidate items per package.",
			Buckets:   itemBuckets,
		}),
		itemsSelected: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "optimizer",
			Name:      "selected_items",
			Help:      "Selected items per package.",
			Buckets:   itemBuckets,
		}),
		solveDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "optimizer",
			Name:      "solve_duration_seconds",
			Help:      "Time spent optimising a single package.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 8), // 10µs .. ~160ms
		}),
		validationErrs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "parser",
			Name:      "validation_failures_total",
			Help:      "Rejected package lines by reason.",
		}, []string{"reason"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Selection cache lookups by result (hit, miss).",
		}, []string{"result"}),
	}

	collectors := []prometheus.Collector{
		p.packages,
		p.itemsSeen,
		p.itemsSelected,
		p.solveDuration,
		p.validationErrs,
		p.cacheLookups,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return p, nil
}

func (p *Prometheus) PackageSolved(items, selected int, elapsed time.Duration) {
	p.packages.Inc()
	p.itemsSeen.Observe(float64(items))
	p.itemsSelected.Observe(float64(selected))
	p.solveDuration.Observe(elapsed.Seconds())
}

func (p *Prometheus) ValidationFailed(reason string) {
	p.validationErrs.WithLabelValues(reason).Inc()
}

func (p *Prometheus) CacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	p.cacheLookups.WithLabelValues(result).Inc()
}
