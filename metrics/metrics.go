package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

var (
	RemoteCalls = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "calendar_remote_calls_total",
		Help: "Calls made to the calendar provider, by operation and outcome",
	}, []string{"operation", "outcome"})

	MetadataWrites = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "calendar_metadata_writes_total",
		Help: "Event metadata writes, by operation",
	}, []string{"operation"})

	Logins = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "calendar_logins_total",
		Help: "Completed logins, split into new and returning users",
	}, []string{"kind"})

	AdoptedRecords = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "calendar_adopted_records_total",
		Help: "Ownerless records assigned to the legacy owner",
	}, []string{"kind"})

	Exports = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "calendar_exports_total",
		Help: "Metadata snapshots written to storage",
	})
)

// Register adds every collector to the registerer.
func Register(r prometheus.Registerer) {
	r.MustRegister(RemoteCalls, MetadataWrites, Logins, AdoptedRecords, Exports)
}

// ObserveRemote counts one provider call.
func ObserveRemote(operation string, err error) {
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}
	RemoteCalls.WithLabelValues(operation, outcome).Inc()
}
