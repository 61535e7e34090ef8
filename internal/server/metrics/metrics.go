// Package metrics collects Prometheus counters for the account workflows.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collector records workflow outcomes. Services call it directly; it holds
// no state of its own beyond the registered counters.
type Collector struct {
	registrations    prometheus.Counter
	registrationFail *prometheus.CounterVec
	loginSuccess     prometheus.Counter
	loginFail        *prometheus.CounterVec
	confirmations    prometheus.Counter
	adminDecisions   *prometheus.CounterVec
}

// NewCollector creates a Collector and registers its metrics on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		registrations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "siams_registrations_total",
			Help: "Completed registrations.",
		}),
		registrationFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "siams_registration_failures_total",
			Help: "Rejected registration attempts by reason.",
		}, []string{"reason"}),
		loginSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "siams_logins_total",
			Help: "Successful logins.",
		}),
		loginFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "siams_login_failures_total",
			Help: "Failed logins by reason.",
		}, []string{"reason"}),
		confirmations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "siams_email_confirmations_total",
			Help: "Consumed email confirmation tokens.",
		}),
		adminDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "siams_admin_decisions_total",
			Help: "Admin elevation decisions by kind.",
		}, []string{"decision"}),
	}

	reg.MustRegister(
		c.registrations,
		c.registrationFail,
		c.loginSuccess,
		c.loginFail,
		c.confirmations,
		c.adminDecisions,
	)

	return c
}

func (c *Collector) RecordRegistration()                    { c.registrations.Inc() }
func (c *Collector) RecordRegistrationFailure(reason string) { c.registrationFail.WithLabelValues(reason).Inc() }
func (c *Collector) RecordLogin()                           { c.loginSuccess.Inc() }
func (c *Collector) RecordLoginFailure(reason string)       { c.loginFail.WithLabelValues(reason).Inc() }
func (c *Collector) RecordConfirmation()                    { c.confirmations.Inc() }
func (c *Collector) RecordAdminDecision(decision string)    { c.adminDecisions.WithLabelValues(decision).Inc() }
