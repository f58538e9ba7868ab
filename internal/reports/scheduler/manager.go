// Package scheduler submits recurring report generation requests on cron
// schedules.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"socialpulse/report-portal-backend/internal/config"
)

var ErrDuplicateJob = errors.New("duplicate job name")

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Manager registers recurring jobs with cron
type Manager struct {
	cron     *cron.Cron
	jobs     map[string]cron.EntryID
	defs     map[string]config.RecurringJob
	executor *Executor
	logger   *zap.Logger
	mu       sync.RWMutex
	running  bool
}

// NewManager creates a new schedule manager
func NewManager(executor *Executor, logger *zap.Logger) *Manager {
	return &Manager{
		cron:     cron.New(cron.WithParser(cronParser), cron.WithLocation(time.UTC)),
		jobs:     make(map[string]cron.EntryID),
		defs:     make(map[string]config.RecurringJob),
		executor: executor,
		logger:   logger,
	}
}

// Start starts the cron scheduler
func (m *Manager) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return fmt.Errorf("schedule manager already running")
	}
	m.running = true

	m.logger.Info("Starting schedule manager", zap.Int("jobs", len(m.jobs)))
	m.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for running jobs
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	m.mu.Unlock()

	m.logger.Info("Stopping schedule manager")

	ctx := m.cron.Stop()
	<-ctx.Done()
}

// AddJob validates and registers a recurring job
func (m *Manager) AddJob(job config.RecurringJob) error {
	if err := ValidateJob(job); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.jobs[job.Name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateJob, job.Name)
	}

	entryID, err := m.cron.AddFunc(job.Cron, func() {
		_, _ = m.executor.Execute(context.Background(), job)
	})
	if err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}

	m.jobs[job.Name] = entryID
	m.defs[job.Name] = job

	m.logger.Info("Added schedule",
		zap.String("job", job.Name),
		zap.String("cron", job.Cron),
		zap.String("description", DescribeCronExpression(job.Cron)))

	return nil
}

// RemoveJob removes a job by name
func (m *Manager) RemoveJob(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if entryID, ok := m.jobs[name]; ok {
		m.cron.Remove(entryID)
		delete(m.jobs, name)
		delete(m.defs, name)

		m.logger.Info("Removed schedule", zap.String("job", name))
	}
}

// RunNow executes a registered job immediately, outside its schedule
func (m *Manager) RunNow(ctx context.Context, name string) error {
	m.mu.RLock()
	job, ok := m.defs[name]
	m.mu.RUnlock()
	if !ok {
		return fmt.Errorf("job not found: %s", name)
	}

	_, err := m.executor.Execute(ctx, job)
	return err
}

// JobStatus represents the status of a scheduled job
type JobStatus struct {
	Name     string     `json:"name"`
	Cron     string     `json:"cron"`
	NextRun  time.Time  `json:"next_run"`
	PrevRun  time.Time  `json:"prev_run"`
	LastRun  *RunStatus `json:"last_run,omitempty"`
	Template int        `json:"template_id"`
}

// Jobs returns the status of every registered job, sorted by name
func (m *Manager) Jobs() []JobStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]JobStatus, 0, len(m.jobs))
	for name, entryID := range m.jobs {
		entry := m.cron.Entry(entryID)
		def := m.defs[name]
		status := JobStatus{
			Name:     name,
			Cron:     def.Cron,
			NextRun:  entry.Next,
			PrevRun:  entry.Prev,
			Template: def.TemplateID,
		}
		if run, ok := m.executor.Status(name); ok {
			status.LastRun = &run
		}
		out = append(out, status)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ValidateJob checks a job definition before registration
func ValidateJob(job config.RecurringJob) error {
	if strings.TrimSpace(job.Name) == "" {
		return fmt.Errorf("job name is required")
	}
	if job.TemplateID <= 0 {
		return fmt.Errorf("job %s: template_id is required", job.Name)
	}
	if err := ValidateCronExpression(job.Cron); err != nil {
		return fmt.Errorf("job %s: invalid cron expression %q: %w", job.Name, job.Cron, err)
	}
	return nil
}

// ValidateCronExpression validates a cron expression
func ValidateCronExpression(expr string) error {
	_, err := cronParser.Parse(expr)
	return err
}

// DescribeCronExpression returns a human-readable description of a cron expression
func DescribeCronExpression(expr string) string {
	switch expr {
	case "0 * * * *", "@hourly":
		return "Every hour"
	case "0 0 * * *", "@daily", "@midnight":
		return "Every day at midnight"
	case "0 0 * * 0", "@weekly":
		return "Every Sunday at midnight"
	case "0 0 1 * *", "@monthly":
		return "First day of every month at midnight"
	case "0 9 * * 1-5":
		return "Every weekday at 9:00 AM"
	default:
		return expr
	}
}
