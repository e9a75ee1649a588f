package authserver

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the server's Prometheus collectors.
type Metrics struct {
	Logins        *prometheus.CounterVec
	Registrations *prometheus.CounterVec
	MeLookups     *prometheus.CounterVec
}

// NewMetrics registers the collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Logins: f.NewCounterVec(prometheus.CounterOpts{
			Name: "clubbies_authd_logins_total",
			Help: "Login attempts by outcome",
		}, []string{"outcome"}),
		Registrations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "clubbies_authd_registrations_total",
			Help: "Registration attempts by outcome",
		}, []string{"outcome"}),
		MeLookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "clubbies_authd_me_total",
			Help: "Current-user lookups by outcome",
		}, []string{"outcome"}),
	}
}
