package metrics_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Mehdichaaki/dashbord/internal/metrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func TestMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer provider.Shutdown(context.Background())

	m, err := metrics.New(provider.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordUserRegistration(ctx)
	m.RecordLoginFailed(ctx)
	m.RecordLoginFailed(ctx)
	m.RecordLoginRateLimited(ctx)
	m.Database.RecordQuery(ctx, "select", "users", 3*time.Millisecond, nil)
	m.Database.RecordQuery(ctx, "insert", "users", time.Millisecond, errors.New("boom"))

	got := collect(t, reader)

	registered, ok := got["student_records.users.registered"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	assert.Equal(t, int64(1), registered.DataPoints[0].Value)

	failed, ok := got["student_records.logins.failed"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	assert.Equal(t, int64(2), failed.DataPoints[0].Value)

	queryErrors, ok := got["db.query.errors"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	assert.Equal(t, int64(1), queryErrors.DataPoints[0].Value)

	assert.Contains(t, got, "db.query.duration")
}

func TestNewMock(t *testing.T) {
	m := metrics.NewMock()
	ctx := context.Background()

	assert.NotPanics(t, func() {
		m.RecordUserRegistration(ctx)
		m.RecordUsersListViewed(ctx)
		m.RecordLoginSucceeded(ctx)
		m.RecordLoginFailed(ctx)
		m.RecordLoginRateLimited(ctx)
		m.RecordGradeEntry(ctx)
		m.Database.RecordQuery(ctx, "select", "users", time.Millisecond, nil)
	})

	var nilMetrics *metrics.Metrics
	assert.NotPanics(t, func() { nilMetrics.RecordUserRegistration(ctx) })
}
