package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"socialpulse/report-portal-backend/internal/config"
	"socialpulse/report-portal-backend/internal/reports"
	"socialpulse/report-portal-backend/internal/session"
)

// Generator submits report generation requests
type Generator interface {
	Generate(ctx context.Context, req *reports.GenerateRequest) (*reports.GenerateResult, error)
}

// RunStatus is the outcome of the most recent run of a job
type RunStatus struct {
	Runs         int       `json:"runs"`
	Failures     int       `json:"failures"`
	LastRunAt    time.Time `json:"last_run_at"`
	LastReportID int       `json:"last_report_id,omitempty"`
	LastError    string    `json:"last_error,omitempty"`
}

// Executor runs one recurring job as a scheduled submission
type Executor struct {
	generator Generator
	token     string
	timeout   time.Duration
	logger    *zap.Logger
	now       func() time.Time

	mu   sync.RWMutex
	runs map[string]*RunStatus
}

// NewExecutor creates an executor that authenticates with the service token
func NewExecutor(generator Generator, serviceToken string, timeout time.Duration, logger *zap.Logger) *Executor {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &Executor{
		generator: generator,
		token:     serviceToken,
		timeout:   timeout,
		logger:    logger,
		now:       time.Now,
		runs:      make(map[string]*RunStatus),
	}
}

// Execute submits the job once. There is no retry: a failed run is logged
// and the next cron tick tries again.
func (e *Executor) Execute(ctx context.Context, job config.RecurringJob) (*reports.GenerateResult, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	startedAt := e.now()
	ctx = e.sessionContext(ctx, startedAt)

	req := &reports.GenerateRequest{
		TemplateID:          job.TemplateID,
		Title:               Title(job, startedAt),
		ProjectID:           job.ProjectID,
		SelectedDataSources: job.SelectedDataSources,
		BrandFolderIDs:      job.BrandFolderIDs,
		CompetitorFolderIDs: job.CompetitorFolderIDs,
		Trigger:             reports.SubmissionTriggerScheduled,
	}

	e.logger.Info("Executing scheduled report",
		zap.String("job", job.Name),
		zap.Int("template_id", job.TemplateID))

	result, err := e.generator.Generate(ctx, req)
	e.record(job.Name, startedAt, result, err)
	if err != nil {
		e.logger.Error("Failed to execute scheduled report",
			zap.String("job", job.Name),
			zap.Error(err))
		return nil, fmt.Errorf("scheduled job %s: %w", job.Name, err)
	}

	e.logger.Info("Scheduled report submitted",
		zap.String("job", job.Name),
		zap.Int("report_id", result.ID),
		zap.Duration("duration", e.now().Sub(startedAt)))

	return result, nil
}

// Status returns the run status of a job
func (e *Executor) Status(name string) (RunStatus, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	status, ok := e.runs[name]
	if !ok {
		return RunStatus{}, false
	}
	return *status, true
}

func (e *Executor) record(name string, at time.Time, result *reports.GenerateResult, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	status, ok := e.runs[name]
	if !ok {
		status = &RunStatus{}
		e.runs[name] = status
	}
	status.Runs++
	status.LastRunAt = at
	if err != nil {
		status.Failures++
		status.LastError = err.Error()
		return
	}
	status.LastError = ""
	if result != nil && result.GeneratedReport != nil {
		status.LastReportID = result.ID
	}
}

// sessionContext attaches the service session so upstream calls carry the token
func (e *Executor) sessionContext(ctx context.Context, now time.Time) context.Context {
	sess, err := session.FromToken(e.token, now)
	if err != nil {
		e.logger.Warn("Scheduler running without a usable service token", zap.Error(err))
		return ctx
	}
	if sess.UserID == "" {
		sess.UserID = "scheduler"
	}
	return session.NewContext(ctx, sess)
}

// Title is the report title of one run, suffixed with the run date
func Title(job config.RecurringJob, at time.Time) string {
	base := job.Title
	if base == "" {
		base = job.Name
	}
	return fmt.Sprintf("%s (%s)", base, at.UTC().Format("2006-01-02"))
}
