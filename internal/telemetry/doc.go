// Package telemetry turns raw monitoring API payloads into display values:
// memory-size parsing, timestamp labels, fleet-wide aggregates and
// chart-ready series.
package telemetry
