// Package instrumentation provides OpenTelemetry metrics, tracing and audit
// logging for the goopy MCP server.
//
// # Metrics
//
//   - http_requests_total, http_request_duration_seconds: streamable HTTP
//     transport requests by method, path and status
//   - google_api_operations_total, google_api_operation_duration_seconds:
//     wrapper operations by service (drive, sheets, slides), operation and status
//   - credential_resolutions_total: resolver outcomes by credential kind and result
//   - mcp_tool_invocations_total, mcp_tool_duration_seconds: tool calls by tool
//     and status
//
// # Tracing
//
// Spans are named tool.<name> for MCP tool calls and
// google.<service>.<operation> for the wrapper call each tool makes.
//
// # Configuration
//
// Environment variables:
//   - INSTRUMENTATION_ENABLED (default true)
//   - METRICS_EXPORTER: prometheus, otlp or stdout (default prometheus)
//   - TRACING_EXPORTER: otlp, stdout or none (default none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT, OTEL_EXPORTER_OTLP_INSECURE
//   - OTEL_TRACES_SAMPLER_ARG (default 0.1)
//   - OTEL_SERVICE_NAME (default goopy)
//   - AUDIT_LOGGING_ENABLED, AUDIT_LOGGING_INCLUDE_CREDENTIALS
//
// # Example Usage
//
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	provider.Metrics().RecordToolInvocation(ctx, "drive_list_folder", instrumentation.StatusSuccess, time.Since(start))
package instrumentation
