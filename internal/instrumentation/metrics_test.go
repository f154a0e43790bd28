package instrumentation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
)

func TestNewMetrics(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")

	m, err := NewMetrics(meter, false)
	require.NoError(t, err)
	require.NotNil(t, m)

	// Recording against a noop meter must not panic.
	ctx := context.Background()
	m.RecordHTTPRequest(ctx, "POST", "/mcp", 200, 10*time.Millisecond)
	m.RecordAdsAPIOperation(ctx, OperationSearch, StatusSuccess, 100*time.Millisecond)
	m.RecordSearchPages(ctx, 3)
	m.RecordOAuthAuth(ctx, "file", OAuthResultSuccess)
	m.RecordOAuthTokenRefresh(ctx, OAuthResultFailure)
	m.RecordToolInvocation(ctx, "run_gaql", StatusSuccess, time.Second)
	m.RecordToolInvocationWithAccount(ctx, "run_gaql", StatusError, "work", time.Second)
	m.IncrementActiveSessions(ctx)
	m.DecrementActiveSessions(ctx)
}

func TestMetrics_Uninitialized(t *testing.T) {
	// The zero value is the no-op recorder handed out when
	// instrumentation is disabled.
	m := &Metrics{}

	ctx := context.Background()
	assert.NotPanics(t, func() {
		m.RecordHTTPRequest(ctx, "GET", "/healthz", 200, time.Millisecond)
		m.RecordAdsAPIOperation(ctx, OperationSearch, StatusSuccess, time.Millisecond)
		m.RecordSearchPages(ctx, 1)
		m.RecordOAuthAuth(ctx, "relay", OAuthResultFailure)
		m.RecordOAuthTokenRefresh(ctx, OAuthResultSuccess)
		m.RecordToolInvocation(ctx, "list_accounts", StatusSuccess, time.Millisecond)
		m.IncrementActiveSessions(ctx)
		m.DecrementActiveSessions(ctx)
	})
}

func TestProvider_Disabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Enabled = false

	p, err := NewProvider(context.Background(), cfg)
	require.NoError(t, err)
	assert.False(t, p.Enabled())
	assert.NotNil(t, p.Metrics())
	assert.Nil(t, p.PrometheusHandler())
	assert.NotNil(t, p.Tracer("test"))
	assert.NoError(t, p.Shutdown(context.Background()))
}
