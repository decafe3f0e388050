package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics records pipeline outcomes.
type Metrics interface {
	ObserveUpload(result string, durationSeconds float64)
	IncPromotion(result string)
	IncDerivativeMove(variant, status string)
	IncDeletion(existed bool)
}

type Noop struct{}

func (Noop) ObserveUpload(string, float64)    {}
func (Noop) IncPromotion(string)              {}
func (Noop) IncDerivativeMove(string, string) {}
func (Noop) IncDeletion(bool)                 {}

// Prom implements Metrics backed by Prometheus collectors.
type Prom struct {
	uploads        *prometheus.CounterVec
	uploadDuration prometheus.Histogram
	promotions     *prometheus.CounterVec
	derivMoves     *prometheus.CounterVec
	deletions      *prometheus.CounterVec
	gatherer       prometheus.Gatherer
}

// NewProm registers the collectors on reg. A nil reg uses a fresh registry.
func NewProm(namespace string, reg *prometheus.Registry) *Prom {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	p := &Prom{
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_total",
			Help:      "Processed uploads by result",
		}, []string{"result"}),
		uploadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upload_duration_seconds",
			Help:      "Time spent processing one upload",
			Buckets:   prometheus.DefBuckets,
		}),
		promotions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "promotions_total",
			Help:      "Promotions by result",
		}, []string{"result"}),
		derivMoves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "derivative_moves_total",
			Help:      "Derivative moves during promotion by variant and status",
		}, []string{"variant", "status"}),
		deletions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deletions_total",
			Help:      "Delete calls by whether the asset existed",
		}, []string{"existed"}),
		gatherer: reg,
	}
	reg.MustRegister(p.uploads, p.uploadDuration, p.promotions, p.derivMoves, p.deletions)
	return p
}

func (p *Prom) ObserveUpload(result string, durationSeconds float64) {
	p.uploads.WithLabelValues(result).Inc()
	p.uploadDuration.Observe(durationSeconds)
}

func (p *Prom) IncPromotion(result string) {
	p.promotions.WithLabelValues(result).Inc()
}

func (p *Prom) IncDerivativeMove(variant, status string) {
	p.derivMoves.WithLabelValues(variant, status).Inc()
}

func (p *Prom) IncDeletion(existed bool) {
	label := "false"
	if existed {
		label = "true"
	}
	p.deletions.WithLabelValues(label).Inc()
}

// Handler serves the registry p was registered on.
func (p *Prom) Handler() http.Handler {
	return promhttp.HandlerFor(p.gatherer, promhttp.HandlerOpts{})
}
