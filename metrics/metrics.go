package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	SkipMissingEmail     = "missing_email"
	SkipConditionalLogic = "conditional_logic"
	SkipUnknownAccount   = "unknown_account"
)

// Recorder counts what the connector does with submissions.
type Recorder interface {
	SubmissionSent()
	SubmissionFailed()
	SubmissionSkipped(reason string)
	AuthAttempt(ok bool)
}

type Noop struct{}

var _ Recorder = Noop{}

func (Noop) SubmissionSent()          {}
func (Noop) SubmissionFailed()        {}
func (Noop) SubmissionSkipped(string) {}
func (Noop) AuthAttempt(bool)         {}

// Prometheus exports the counters under the mailercloud_ namespace.
type Prometheus struct {
	submissions *prometheus.CounterVec
	skipped     *prometheus.CounterVec
	auth        *prometheus.CounterVec
}

var _ Recorder = (*Prometheus)(nil)

// NewPrometheus registers the collectors with reg.
// It panics if they are already registered, like prometheus.MustRegister.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	p := &Prometheus{
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mailercloud",
			Name:      "submissions_total",
			Help:      "Contacts forwarded to Mailercloud, by delivery result.",
		}, []string{"result"}),
		skipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mailercloud",
			Name:      "submissions_skipped_total",
			Help:      "Connections not forwarded for a submission, by reason.",
		}, []string{"reason"}),
		auth: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mailercloud",
			Name:      "auth_attempts_total",
			Help:      "Account authentication attempts, by result.",
		}, []string{"result"}),
	}
	reg.MustRegister(p.submissions, p.skipped, p.auth)
	return p
}

func (p *Prometheus) SubmissionSent() {
	p.submissions.WithLabelValues("sent").Inc()
}

func (p *Prometheus) SubmissionFailed() {
	p.submissions.WithLabelValues("failed").Inc()
}

func (p *Prometheus) SubmissionSkipped(reason string) {
	p.skipped.WithLabelValues(reason).Inc()
}

func (p *Prometheus) AuthAttempt(ok bool) {
	result := "failed"
	if ok {
		result = "ok"
	}
	p.auth.WithLabelValues(result).Inc()
}
