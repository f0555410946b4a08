package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

type key struct {
	namespace string
	name      string
}

// Prometheus registers metrics in a prometheus.Registerer.
type Prometheus struct {
	registerer prometheus.Registerer
	prefix     string
	entries    map[key]prometheus.Collector
	mu         *sync.Mutex
}

func NewPrometheus(registerer prometheus.Registerer) Prometheus {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return Prometheus{
		registerer: registerer,
		entries:    make(map[key]prometheus.Collector),
		mu:         new(sync.Mutex),
	}
}

func (p Prometheus) WithPrefix(prefix string) Registry {
	if p.prefix != "" {
		p.prefix += "_" + prefix
	} else {
		p.prefix = prefix
	}

	return p
}

func (p Prometheus) Counter(name string, labels Labels) Counter {
	entry := p.collector(name, func() prometheus.Collector {
		opts := prometheus.CounterOpts{Namespace: p.prefix, Name: name}
		if labels == nil {
			return prometheus.NewCounter(opts)
		}

		return prometheus.NewCounterVec(opts, labels.Keys())
	})

	if vec, ok := entry.(*prometheus.CounterVec); ok {
		return vec.With(prometheus.Labels(labels))
	}

	return entry.(prometheus.Counter)
}

func (p Prometheus) Gauge(name string, labels Labels) Gauge {
	entry := p.collector(name, func() prometheus.Collector {
		opts := prometheus.GaugeOpts{Namespace: p.prefix, Name: name}
		if labels == nil {
			return prometheus.NewGauge(opts)
		}

		return prometheus.NewGaugeVec(opts, labels.Keys())
	})

	if vec, ok := entry.(*prometheus.GaugeVec); ok {
		return vec.With(prometheus.Labels(labels))
	}

	return entry.(prometheus.Gauge)
}

func (p Prometheus) collector(name string, create func() prometheus.Collector) prometheus.Collector {
	key := key{p.prefix, name}
	p.mu.Lock()
	defer p.mu.Unlock()
	entry, ok := p.entries[key]
	if !ok {
		entry = create()
		p.registerer.MustRegister(entry)
		p.entries[key] = entry
	}

	return entry
}
