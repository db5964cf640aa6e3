package metrics

import (
	"net/http"

	"aid-portal/internal/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// WorkflowRecorder counts submissions and state changes on its own registry.
type WorkflowRecorder struct {
	registry    *prometheus.Registry
	submissions prometheus.Counter
	transitions *prometheus.CounterVec
	refusals    *prometheus.CounterVec
}

func NewWorkflowRecorder() *WorkflowRecorder {
	r := &WorkflowRecorder{
		registry: prometheus.NewRegistry(),
		submissions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "aid_portal",
			Subsystem: "workflow",
			Name:      "submissions_total",
			Help:      "Total number of submitted applications.",
		}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aid_portal",
			Subsystem: "workflow",
			Name:      "transitions_total",
			Help:      "Applied workflow transitions.",
		}, []string{"from", "to", "action"}),
		refusals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aid_portal",
			Subsystem: "workflow",
			Name:      "refusals_total",
			Help:      "Workflow actions that were not applied.",
		}, []string{"action", "reason"}),
	}
	r.registry.MustRegister(
		r.submissions,
		r.transitions,
		r.refusals,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
	return r
}

func (r *WorkflowRecorder) Submitted() {
	r.submissions.Inc()
}

func (r *WorkflowRecorder) Transitioned(from, to domain.Status, action domain.Action) {
	r.transitions.WithLabelValues(string(from), string(to), string(action)).Inc()
}

func (r *WorkflowRecorder) Refused(action domain.Action, reason string) {
	r.refusals.WithLabelValues(string(action), reason).Inc()
}

func (r *WorkflowRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
