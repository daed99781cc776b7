// Package metrics exposes Prometheus counters for the account lifecycle.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "talentmatch"

// Recorder implements verification.Observer and records registration and
// provisioning outcomes.
type Recorder struct {
	registrations      *prometheus.CounterVec
	codesIssued        *prometheus.CounterVec
	codeValidations    *prometheus.CounterVec
	codeResends        *prometheus.CounterVec
	dispatchFailures   prometheus.Counter
	provisioningFaults prometheus.Counter
}

// NewRecorder registers the counters with reg. Passing nil uses the default
// registerer.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &Recorder{
		registrations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registrations_total",
			Help:      "Registration attempts by result.",
		}, []string{"result"}),
		codesIssued: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "codes_issued_total",
			Help:      "Verification codes issued by reason.",
		}, []string{"reason"}),
		codeValidations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "code_validations_total",
			Help:      "Verification code submissions by result.",
		}, []string{"result"}),
		codeResends: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "code_resends_total",
			Help:      "Verification code resend requests by result.",
		}, []string{"result"}),
		dispatchFailures: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mail_dispatch_failures_total",
			Help:      "Verification mails the provider did not accept.",
		}),
		provisioningFaults: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provisioning_faults_total",
			Help:      "Identities whose profile never appeared within the grace period.",
		}),
	}
}

func (r *Recorder) Registered(result string) { r.registrations.WithLabelValues(result).Inc() }
func (r *Recorder) ProvisioningFault()       { r.provisioningFaults.Inc() }
func (r *Recorder) CodeIssued(reason string) { r.codesIssued.WithLabelValues(reason).Inc() }
func (r *Recorder) Validated(result string)  { r.codeValidations.WithLabelValues(result).Inc() }
func (r *Recorder) Resent(result string)     { r.codeResends.WithLabelValues(result).Inc() }
func (r *Recorder) DispatchFailed()          { r.dispatchFailures.Inc() }
