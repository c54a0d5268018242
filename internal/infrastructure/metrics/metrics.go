// Package metrics exposes the ledger's prometheus collectors.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// LedgerOps counts balance movements by op and outcome (applied|rejected).
	LedgerOps = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sacco",
		Subsystem: "ledger",
		Name:      "operations_total",
		Help:      "Balance movements processed by the ledger.",
	}, []string{"op", "outcome"})

	// Webhooks counts mobile money callbacks by outcome.
	Webhooks = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sacco",
		Subsystem: "mobile_money",
		Name:      "webhooks_total",
		Help:      "Mobile money webhook deliveries by outcome.",
	}, []string{"outcome"})

	// Transfers counts transfer confirmations by outcome.
	Transfers = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sacco",
		Subsystem: "transfer",
		Name:      "confirmations_total",
		Help:      "Transfer PIN confirmations by outcome.",
	}, []string{"outcome"})
)

// Register adds every collector to reg, tolerating repeat registration.
func Register(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, c := range []prometheus.Collector{LedgerOps, Webhooks, Transfers} {
		if err := reg.Register(c); err != nil {
			var already prometheus.AlreadyRegisteredError
			if errors.As(err, &already) {
				continue
			}
			return err
		}
	}
	return nil
}
