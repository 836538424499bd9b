// Package telemetry provides observability instrumentation for
// LodeStore: structured logging with zerolog and operation metrics
// with Prometheus. The storage layer accepts a Logger and a Metrics
// instance at open time; both are optional and nil-safe, so library
// consumers that want no instrumentation pay nothing for it.
package telemetry
