package common

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/teemow/goopy/internal/google"
	"github.com/teemow/goopy/internal/google/googletest"
	"github.com/teemow/goopy/internal/instrumentation"
	"github.com/teemow/goopy/internal/server"
)

type instrumentedFixture struct {
	sc       *server.ServerContext
	provider *instrumentation.Provider
	audit    *bytes.Buffer
	spans    *tracetest.SpanRecorder
}

func newInstrumentedFixture(t *testing.T) *instrumentedFixture {
	t.Helper()
	ctx := context.Background()

	provider, err := instrumentation.NewProvider(ctx, instrumentation.Config{
		ServiceName:     "goopy-test",
		Enabled:         true,
		MetricsExporter: instrumentation.ExporterPrometheus,
		TracingExporter: instrumentation.ExporterNone,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = provider.Shutdown(ctx) })

	// Installed after the provider so it wins over the provider's global.
	spans := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(ctx)
	})

	audit := &bytes.Buffer{}
	logger := slog.New(slog.NewJSONHandler(audit, &slog.HandlerOptions{Level: slog.LevelDebug}))

	sc := server.NewServerContext(ctx, server.Options{
		Registry:    google.NewRegistry(googletest.StaticResolver{}),
		Spec:        googletest.Spec,
		Metrics:     provider.Metrics(),
		AuditLogger: instrumentation.NewAuditLogger(logger, instrumentation.AuditLoggingConfig{Enabled: true}),
	})
	t.Cleanup(sc.Shutdown)

	return &instrumentedFixture{sc: sc, provider: provider, audit: audit, spans: spans}
}

func (f *instrumentedFixture) scrape(t *testing.T) string {
	t.Helper()
	rec := httptest.NewRecorder()
	f.provider.PrometheusHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	return rec.Body.String()
}

var listFolder = ToolSpec{
	Name:      "drive_list_folder",
	Service:   instrumentation.ServiceDrive,
	Operation: "list_folder",
	ReadOnly:  true,
}

func TestInstrumentedToolHandler_Success(t *testing.T) {
	f := newInstrumentedFixture(t)

	called := false
	wrapped := InstrumentedToolHandler(f.sc, listFolder, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		called = true
		if _, err := f.sc.Registry().For(googletest.Spec).Client(ctx, google.DriveV3); err != nil {
			return nil, err
		}
		return mcp.NewToolResultText("[]"), nil
	})

	result, err := wrapped(context.Background(), mcp.CallToolRequest{})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, called)
	assert.False(t, result.IsError)

	body := f.scrape(t)
	assert.Contains(t, body, `tool="drive_list_folder"`)
	assert.Contains(t, body, "google_api_operations_total")
	assert.Contains(t, body, `operation="list_folder"`)

	ended := f.spans.Ended()
	require.Len(t, ended, 2)
	names := []string{ended[0].Name(), ended[1].Name()}
	assert.ElementsMatch(t, []string{"tool.drive_list_folder", "google.drive.list_folder"}, names)

	logged := f.audit.String()
	assert.Contains(t, logged, `"msg":"tool_executed"`)
	assert.Contains(t, logged, `"level":"DEBUG"`)
	assert.NotContains(t, logged, googletest.Spec.Path, "credentials path must be redacted")
}

func TestInstrumentedToolHandler_ErrorResult(t *testing.T) {
	f := newInstrumentedFixture(t)

	spec := ToolSpec{Name: "sheets_update_values", Service: instrumentation.ServiceSheets, Operation: "update_values"}
	wrapped := InstrumentedToolHandler(f.sc, spec, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultError("range is required"), nil
	})

	result, err := wrapped(context.Background(), mcp.CallToolRequest{})
	require.NoError(t, err)
	assert.True(t, result.IsError)

	body := f.scrape(t)
	for _, line := range strings.Split(body, "\n") {
		if strings.HasPrefix(line, "mcp_tool_invocations_total") && strings.Contains(line, `tool="sheets_update_values"`) {
			assert.Contains(t, line, `status="error"`)
		}
	}

	logged := f.audit.String()
	assert.Contains(t, logged, `"msg":"tool_failed"`)
	assert.Contains(t, logged, "range is required")
}

func TestInstrumentedToolHandler_GoError(t *testing.T) {
	f := newInstrumentedFixture(t)

	expectedErr := errors.New("transport closed")
	wrapped := InstrumentedToolHandler(f.sc, listFolder, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return nil, expectedErr
	})

	_, err := wrapped(context.Background(), mcp.CallToolRequest{})
	assert.ErrorIs(t, err, expectedErr)
	assert.Contains(t, f.audit.String(), "transport closed")
}

func TestInstrumentedToolHandler_NoInstrumentation(t *testing.T) {
	sc := server.NewServerContext(context.Background(), server.Options{
		Registry: google.NewRegistry(googletest.StaticResolver{}),
		Spec:     googletest.Spec,
	})
	t.Cleanup(sc.Shutdown)

	wrapped := InstrumentedToolHandler(sc, listFolder, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText("ok"), nil
	})

	result, err := wrapped(context.Background(), mcp.CallToolRequest{})
	require.NoError(t, err)
	assert.False(t, result.IsError)
}

func apiOperationLines(body, operation string) []string {
	var lines []string
	for _, line := range strings.Split(body, "\n") {
		if strings.HasPrefix(line, "google_api_operations_total") && strings.Contains(line, `operation="`+operation+`"`) {
			lines = append(lines, line)
		}
	}
	return lines
}

func TestInstrumentedToolHandler_LocalToolSkipsAPIMetric(t *testing.T) {
	f := newInstrumentedFixture(t)

	spec := ToolSpec{Name: "drive_access_link", Service: instrumentation.ServiceDrive, Operation: "access_link", ReadOnly: true, Local: true}
	wrapped := InstrumentedToolHandler(f.sc, spec, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText("https://drive.google.com/file/d/X/view?usp=sharing"), nil
	})

	_, err := wrapped(context.Background(), mcp.CallToolRequest{})
	require.NoError(t, err)

	body := f.scrape(t)
	assert.Contains(t, body, `tool="drive_access_link"`)
	assert.Empty(t, apiOperationLines(body, "access_link"))

	ended := f.spans.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "tool.drive_access_link", ended[0].Name())
}

func TestInstrumentedToolHandler_RejectedInputSkipsAPIMetric(t *testing.T) {
	f := newInstrumentedFixture(t)

	wrapped := InstrumentedToolHandler(f.sc, listFolder, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return ErrorResult("failed to list folder", google.Invalid("folder", "required")), nil
	})

	result, err := wrapped(context.Background(), mcp.CallToolRequest{})
	require.NoError(t, err)
	assert.True(t, result.IsError)

	body := f.scrape(t)
	assert.Contains(t, body, `tool="drive_list_folder"`)
	assert.Empty(t, apiOperationLines(body, "list_folder"))
}
