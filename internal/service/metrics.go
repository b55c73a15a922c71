package service

import (
	"coreauth/internal/apperr"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the service counters.
type Metrics struct {
	Registrations  *prometheus.CounterVec
	Logins         *prometheus.CounterVec
	LicensesIssued prometheus.Counter
	AdminRequests  *prometheus.CounterVec
}

// NewMetrics creates the counters and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "coreauth",
			Name:      "registrations_total",
			Help:      "Registration attempts by result.",
		}, []string{"result"}),
		Logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "coreauth",
			Name:      "logins_total",
			Help:      "Login attempts by result.",
		}, []string{"result"}),
		LicensesIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "coreauth",
			Name:      "licenses_issued_total",
			Help:      "Licenses issued by administrators.",
		}),
		AdminRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "coreauth",
			Name:      "admin_requests_total",
			Help:      "Administrative requests by operation and result.",
		}, []string{"operation", "result"}),
	}
	reg.MustRegister(m.Registrations, m.Logins, m.LicensesIssued, m.AdminRequests)
	return m
}

// result turns an operation outcome into a label value.
func result(err error) string {
	if err == nil {
		return "success"
	}
	return apperr.KindOf(err).String()
}

func (m *Metrics) observeRegistration(err error) {
	if m == nil {
		return
	}
	m.Registrations.WithLabelValues(result(err)).Inc()
}

func (m *Metrics) observeLogin(err error) {
	if m == nil {
		return
	}
	m.Logins.WithLabelValues(result(err)).Inc()
}

func (m *Metrics) observeAdmin(operation string, err error) {
	if m == nil {
		return
	}
	m.AdminRequests.WithLabelValues(operation, result(err)).Inc()
	if operation == OpIssueLicense && err == nil {
		m.LicensesIssued.Inc()
	}
}
