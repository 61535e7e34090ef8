package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCollector_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordRegistration()
	c.RecordRegistration()
	c.RecordRegistrationFailure("username_taken")
	c.RecordLogin()
	c.RecordLoginFailure("invalid_credentials")
	c.RecordLoginFailure("invalid_credentials")
	c.RecordConfirmation()
	c.RecordAdminDecision("approved")

	assert.Equal(t, float64(2), testutil.ToFloat64(c.registrations))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.registrationFail.WithLabelValues("username_taken")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.loginSuccess))
	assert.Equal(t, float64(2), testutil.ToFloat64(c.loginFail.WithLabelValues("invalid_credentials")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.confirmations))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.adminDecisions.WithLabelValues("approved")))
}

func TestCollector_RegistersOnGivenRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewCollector(reg)

	mfs, err := reg.Gather()
	assert.NoError(t, err)
	// CounterVecs with no observations yet are not gathered; the three plain
	// counters must be.
	assert.GreaterOrEqual(t, len(mfs), 3)
}
