package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const (
	OpRead       = "read"
	OpSetTier    = "set_tier"
	OpRemoveTier = "remove_tier"

	OutcomeOK          = "ok"
	OutcomeValidation  = "validation_error"
	OutcomeStorage     = "storage_error"
	OutcomeConsistency = "consistency_error"
)

var (
	RegistryOperations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tiers_registry_operations_total",
		Help: "Tier registry operations by outcome",
	}, []string{"operation", "outcome"})

	StorageDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tiers_storage_duration_seconds",
		Help:    "Latency of snapshot loads and saves",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
	}, []string{"op"})
)

// NewRegistry returns a registry with the tier collectors and the Go runtime
// collectors registered.
func NewRegistry() (*prometheus.Registry, error) {
	reg := prometheus.NewRegistry()
	if err := Register(reg); err != nil {
		return nil, err
	}
	if err := reg.Register(collectors.NewGoCollector()); err != nil {
		return nil, err
	}
	return reg, nil
}

// Register registers the tier collectors on reg (or the default registerer if nil).
func Register(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, c := range []prometheus.Collector{RegistryOperations, StorageDuration} {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if !errors.As(err, &are) {
				return err
			}
		}
	}
	return nil
}
