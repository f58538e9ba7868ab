package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"socialpulse/report-portal-backend/internal/config"
	"socialpulse/report-portal-backend/internal/reports"
	"socialpulse/report-portal-backend/internal/session"
)

// MockGenerator is a mock implementation of the Generator interface
type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Generate(ctx context.Context, req *reports.GenerateRequest) (*reports.GenerateResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reports.GenerateResult), args.Error(1)
}

func weeklyJob() config.RecurringJob {
	project := 3
	return config.RecurringJob{
		Name:                "weekly-engagement",
		Cron:                "0 9 * * 1-5",
		TemplateID:          1,
		Title:               "Weekly engagement",
		ProjectID:           &project,
		SelectedDataSources: []int{4, 5},
	}
}

func TestExecutorSubmitsScheduledRequest(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("Generate", mock.MatchedBy(func(ctx context.Context) bool {
		return session.TokenFromContext(ctx) == "service-token"
	}), mock.MatchedBy(func(req *reports.GenerateRequest) bool {
		return req.TemplateID == 1 &&
			req.Trigger == reports.SubmissionTriggerScheduled &&
			req.Title == "Weekly engagement (2024-06-03)" &&
			*req.ProjectID == 3 &&
			len(req.SelectedDataSources) == 2
	})).Return(&reports.GenerateResult{GeneratedReport: &reports.GeneratedReport{ID: 55}}, nil).Once()

	exec := NewExecutor(gen, "service-token", time.Minute, zap.NewNop())
	exec.now = func() time.Time { return time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC) }

	result, err := exec.Execute(context.Background(), weeklyJob())
	require.NoError(t, err)
	assert.Equal(t, 55, result.ID)

	status, ok := exec.Status("weekly-engagement")
	require.True(t, ok)
	assert.Equal(t, 1, status.Runs)
	assert.Equal(t, 55, status.LastReportID)
	gen.AssertExpectations(t)
}

func TestExecutorRecordsFailures(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).Return(nil, errors.New("upstream down"))

	exec := NewExecutor(gen, "", time.Minute, zap.NewNop())
	_, err := exec.Execute(context.Background(), weeklyJob())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "weekly-engagement")

	status, ok := exec.Status("weekly-engagement")
	require.True(t, ok)
	assert.Equal(t, 1, status.Failures)
	assert.Equal(t, "upstream down", status.LastError)
}

func TestManagerRegistersJobs(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).Return(&reports.GenerateResult{GeneratedReport: &reports.GeneratedReport{ID: 9}}, nil)

	m := NewManager(NewExecutor(gen, "tok", time.Minute, zap.NewNop()), zap.NewNop())
	require.NoError(t, m.AddJob(weeklyJob()))
	assert.ErrorIs(t, m.AddJob(weeklyJob()), ErrDuplicateJob)

	require.NoError(t, m.Start())
	defer m.Stop()
	assert.Error(t, m.Start())

	jobs := m.Jobs()
	require.Len(t, jobs, 1)
	assert.Equal(t, "weekly-engagement", jobs[0].Name)
	assert.False(t, jobs[0].NextRun.IsZero())
	assert.Nil(t, jobs[0].LastRun)

	require.NoError(t, m.RunNow(context.Background(), "weekly-engagement"))
	jobs = m.Jobs()
	require.NotNil(t, jobs[0].LastRun)
	assert.Equal(t, 9, jobs[0].LastRun.LastReportID)

	m.RemoveJob("weekly-engagement")
	assert.Empty(t, m.Jobs())
	assert.Error(t, m.RunNow(context.Background(), "weekly-engagement"))
}

func TestValidateJob(t *testing.T) {
	assert.NoError(t, ValidateJob(weeklyJob()))

	job := weeklyJob()
	job.Cron = "every tuesday"
	assert.Error(t, ValidateJob(job))

	job = weeklyJob()
	job.TemplateID = 0
	assert.Error(t, ValidateJob(job))

	job = weeklyJob()
	job.Name = " "
	assert.Error(t, ValidateJob(job))

	assert.NoError(t, ValidateCronExpression("@daily"))
	assert.Equal(t, "Every weekday at 9:00 AM", DescribeCronExpression("0 9 * * 1-5"))
}
