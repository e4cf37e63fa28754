// Package metrics implements the ring engine's MetricsHook on top of
// Prometheus. Erase counts are labeled per sector, which makes the wear
// distribution across the partition directly observable.
package metrics
