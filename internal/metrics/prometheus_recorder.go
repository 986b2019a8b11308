package metrics

import (
	"fmt"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	reg           *prom.Registry
	stageDuration *prom.HistogramVec
	runDuration   prom.Histogram
	ruleChanges   *prom.CounterVec
	fragments     *prom.CounterVec
	treeNodes     prom.Gauge
	runOutcome    *prom.CounterVec
}

// NewPrometheusRecorder constructs the run metrics and registers them with
// reg, or with a fresh registry when reg is nil.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		reg: reg,
		stageDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "edxml",
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual clean stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"}),
		runDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "edxml",
			Name:      "run_duration_seconds",
			Help:      "Total clean run duration",
			Buckets:   prom.DefBuckets,
		}),
		ruleChanges: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "edxml",
			Name:      "rule_changes_total",
			Help:      "Nodes changed by each propagation rule",
		}, []string{"rule"}),
		fragments: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "edxml",
			Name:      "fragments_total",
			Help:      "Fragment files by what happened to them",
		}, []string{"result"}),
		treeNodes: prom.NewGauge(prom.GaugeOpts{
			Namespace: "edxml",
			Name:      "tree_nodes",
			Help:      "Nodes in the assembled course tree of the last run",
		}),
		runOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "edxml",
			Name:      "run_outcomes_total",
			Help:      "Clean runs by final status",
		}, []string{"outcome"}),
	}
	reg.MustRegister(pr.stageDuration, pr.runDuration, pr.ruleChanges, pr.fragments, pr.treeNodes, pr.runOutcome)
	return pr
}

// Registry returns the registry the metrics live in.
func (p *PrometheusRecorder) Registry() *prom.Registry {
	return p.reg
}

// WriteTextfile writes every registered metric to path in the text
// exposition format. The file is replaced atomically.
func (p *PrometheusRecorder) WriteTextfile(path string) error {
	if err := prom.WriteToTextfile(path, p.reg); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveRunDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.runDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) AddRuleChanges(rule string, n int) {
	if p == nil || n < 0 {
		return
	}
	p.ruleChanges.WithLabelValues(rule).Add(float64(n))
}

func (p *PrometheusRecorder) AddFragments(label FragmentLabel, n int) {
	if p == nil || n < 0 {
		return
	}
	p.fragments.WithLabelValues(string(label)).Add(float64(n))
}

func (p *PrometheusRecorder) SetTreeNodes(n int) {
	if p == nil {
		return
	}
	p.treeNodes.Set(float64(n))
}

func (p *PrometheusRecorder) IncRunOutcome(outcome OutcomeLabel) {
	if p == nil {
		return
	}
	p.runOutcome.WithLabelValues(string(outcome)).Inc()
}
