package metrics

import (
	"context"

	"go.opentelemetry.io/otel/metric"
)

type Metrics struct {
	Database *DatabaseMetrics

	usersRegistered      metric.Int64Counter
	usersListViewed      metric.Int64Counter
	loginsSucceeded      metric.Int64Counter
	loginsFailed         metric.Int64Counter
	loginsRateLimited    metric.Int64Counter
	gradeEntriesRecorded metric.Int64Counter
}

func New(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.Database, err = NewDatabaseMetrics(meter)
	if err != nil {
		return nil, err
	}

	m.usersRegistered, err = meter.Int64Counter(
		"student_records.users.registered",
		metric.WithDescription("Total number of users registered"),
		metric.WithUnit("{user}"),
	)
	if err != nil {
		return nil, err
	}

	m.usersListViewed, err = meter.Int64Counter(
		"student_records.users.list_viewed",
		metric.WithDescription("Total number of times the users list was viewed"),
		metric.WithUnit("{view}"),
	)
	if err != nil {
		return nil, err
	}

	m.loginsSucceeded, err = meter.Int64Counter(
		"student_records.logins.succeeded",
		metric.WithDescription("Total number of successful logins"),
		metric.WithUnit("{login}"),
	)
	if err != nil {
		return nil, err
	}

	m.loginsFailed, err = meter.Int64Counter(
		"student_records.logins.failed",
		metric.WithDescription("Total number of rejected credentials"),
		metric.WithUnit("{login}"),
	)
	if err != nil {
		return nil, err
	}

	m.loginsRateLimited, err = meter.Int64Counter(
		"student_records.logins.rate_limited",
		metric.WithDescription("Total number of login attempts refused by the rate limiter"),
		metric.WithUnit("{login}"),
	)
	if err != nil {
		return nil, err
	}

	m.gradeEntriesRecorded, err = meter.Int64Counter(
		"student_records.grade_entries.recorded",
		metric.WithDescription("Total number of grade entries created or updated"),
		metric.WithUnit("{entry}"),
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}

func (m *Metrics) RecordUserRegistration(ctx context.Context) {
	if m != nil && m.usersRegistered != nil {
		m.usersRegistered.Add(ctx, 1)
	}
}

func (m *Metrics) RecordUsersListViewed(ctx context.Context) {
	if m != nil && m.usersListViewed != nil {
		m.usersListViewed.Add(ctx, 1)
	}
}

func (m *Metrics) RecordLoginSucceeded(ctx context.Context) {
	if m != nil && m.loginsSucceeded != nil {
		m.loginsSucceeded.Add(ctx, 1)
	}
}

func (m *Metrics) RecordLoginFailed(ctx context.Context) {
	if m != nil && m.loginsFailed != nil {
		m.loginsFailed.Add(ctx, 1)
	}
}

func (m *Metrics) RecordLoginRateLimited(ctx context.Context) {
	if m != nil && m.loginsRateLimited != nil {
		m.loginsRateLimited.Add(ctx, 1)
	}
}

func (m *Metrics) RecordGradeEntry(ctx context.Context) {
	if m != nil && m.gradeEntriesRecorded != nil {
		m.gradeEntriesRecorded.Add(ctx, 1)
	}
}

// NewMock creates a no-op Metrics instance for testing
// The returned Metrics will safely ignore all Record* calls
func NewMock() *Metrics {
	return &Metrics{
		Database: &DatabaseMetrics{},
	}
}
