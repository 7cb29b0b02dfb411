// Package metrics holds Prometheus instruments used across the partitioning
// core.  All collectors are registered with the global registry, so
// importing this package in main.go is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	DomainResolveTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "domain_resolve_total",
			Help: "Cumulative number of hostname resolution attempts.",
		})

	DomainResolveMissTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "domain_resolve_miss_total",
			Help: "Resolutions that matched no binding (main-site fallback).",
		})

	DomainResolveAmbiguousTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "domain_resolve_ambiguous_total",
			Help: "Resolutions where bindings of more than one tenant matched.",
		})

	TenantSwitchTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tenant_switch_total",
			Help: "Cumulative number of session tenant switches.",
		})

	CachedResolutions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "cached_resolutions",
			Help: "Hostname resolutions currently held in the in-process cache.",
		})

	ReplicateNodesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "replicate_nodes_total",
			Help: "Content nodes cloned across tenants.",
		})

	ReplicateFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "replicate_failures_total",
			Help: "Replication runs that aborted mid-walk.",
		})
)

func init() {
	prometheus.MustRegister(
		DomainResolveTotal,
		DomainResolveMissTotal,
		DomainResolveAmbiguousTotal,
		TenantSwitchTotal,
		CachedResolutions,
		ReplicateNodesTotal,
		ReplicateFailuresTotal,
	)
}
