package metrics

// Package metrics defines the sinks that record dispatch runs and batches for
// observability. Implementations such as PromSink and InfluxSink live in
// infra/metrics and register themselves with the factory on import. When more
// than one sink is configured NewMetricsSink combines them in a MultiSink.
