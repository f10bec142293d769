// Package instrumentation provides OpenTelemetry instrumentation for calsetup.
//
// # Metrics
//
//   - google_api_operations_total: Google API operations by service, operation, status
//   - google_api_operation_duration_seconds: Histogram of Google API operation durations
//   - oauth_auth_total: Interactive authorization attempts by result
//   - oauth_token_refresh_total: Token refresh attempts by result
//   - setup_checks_total: Setup routine outcomes by check and failure kind
//
// A setup run is short-lived, so the prometheus exporter is backed by a
// private registry that can be dumped to a node-exporter textfile on
// shutdown (METRICS_TEXTFILE). OTLP and stdout exporters are also available.
//
// # Tracing
//
// Spans are created for Google API calls (google.<service>.<operation>) and
// for the credential lifecycle (oauth.obtain, oauth.refresh, oauth.authorize).
//
// # Configuration
//
//   - INSTRUMENTATION_ENABLED: Enable/disable instrumentation (default: true)
//   - METRICS_EXPORTER: prometheus, otlp, stdout (default: prometheus)
//   - METRICS_TEXTFILE: Path for the prometheus textfile dump (default: none)
//   - TRACING_EXPORTER: otlp, stdout, none (default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint for traces/metrics
//   - OTEL_TRACES_SAMPLER_ARG: Sampling rate (0.0 to 1.0, default: 1.0)
//   - OTEL_SERVICE_NAME: Service name (default: calsetup)
package instrumentation
