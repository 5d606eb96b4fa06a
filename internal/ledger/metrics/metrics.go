// Package metrics provides observability for the ledger core.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks mutation counts and the verification hot path.
type Metrics struct {
	NamespacesRegistered prometheus.Counter
	IdentitiesRegistered prometheus.Counter
	CredentialsRevoked   prometheus.Counter
	VotesCast            prometheus.Counter
	VerifyResults        *prometheus.CounterVec
	VerifyDuration       prometheus.Histogram
}

// New registers all ledger metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		NamespacesRegistered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "trustledger_namespaces_registered_total",
			Help: "Total number of namespaces registered",
		}),
		IdentitiesRegistered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "trustledger_identities_registered_total",
			Help: "Total number of identities registered",
		}),
		CredentialsRevoked: promauto.NewCounter(prometheus.CounterOpts{
			Name: "trustledger_credentials_revoked_total",
			Help: "Total number of credential revocation calls committed",
		}),
		VotesCast: promauto.NewCounter(prometheus.CounterOpts{
			Name: "trustledger_votes_cast_total",
			Help: "Total number of reputation votes applied",
		}),
		VerifyResults: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "trustledger_verify_total",
			Help: "Credential verification probes by outcome",
		}, []string{"result"}),
		VerifyDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "trustledger_verify_duration_seconds",
			Help:    "Duration of credential verification probes",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1},
		}),
	}
}

// ObserveVerify records one verification probe.
// Call with time.Now() at the start of the probe.
func (m *Metrics) ObserveVerify(start time.Time, result string) {
	m.VerifyDuration.Observe(time.Since(start).Seconds())
	m.VerifyResults.WithLabelValues(result).Inc()
}
