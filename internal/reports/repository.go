package reports

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/jmoiron/sqlx"
)

// Repository persists the local submission audit log. Reports themselves
// stay owned by the upstream API.
type Repository interface {
	CreateSubmission(ctx context.Context, record *SubmissionRecord) error
	ListSubmissions(ctx context.Context, filters *SubmissionFilters) ([]*SubmissionRecord, int, error)
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// normalizePage clamps page and page size to usable values
func normalizePage(filters *SubmissionFilters) (page, pageSize, offset int) {
	page, pageSize = filters.Page, filters.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	// offset stays within int32 so it fits OFFSET and never wraps
	if lastPage := math.MaxInt32/pageSize + 1; page > lastPage {
		page = lastPage
	}
	return page, pageSize, (page - 1) * pageSize
}

// =====================================================
// PostgreSQL
// =====================================================

// PostgresRepository implements Repository using PostgreSQL
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const submissionsSchema = `
	CREATE TABLE IF NOT EXISTS report_submissions (
		id                 UUID PRIMARY KEY,
		report_id          INTEGER NOT NULL,
		template_id        INTEGER NOT NULL,
		template_name      TEXT NOT NULL,
		template_type      TEXT NOT NULL DEFAULT '',
		title              TEXT NOT NULL,
		project_id         INTEGER,
		configuration      JSONB NOT NULL DEFAULT '{}',
		dropped_source_ids BIGINT[] NOT NULL DEFAULT '{}',
		status             TEXT NOT NULL,
		trigger            TEXT NOT NULL,
		submitted_by       TEXT NOT NULL DEFAULT '',
		submitted_at       TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_report_submissions_submitted_at
		ON report_submissions (submitted_at DESC);
`

// EnsureSchema creates the submissions table when missing
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, submissionsSchema); err != nil {
		return fmt.Errorf("failed to create report_submissions table: %w", err)
	}
	return nil
}

func (r *PostgresRepository) CreateSubmission(ctx context.Context, record *SubmissionRecord) error {
	query := `
		INSERT INTO report_submissions (
			id, report_id, template_id, template_name, template_type, title, project_id,
			configuration, dropped_source_ids, status, trigger, submitted_by, submitted_at
		) VALUES (
			:id, :report_id, :template_id, :template_name, :template_type, :title, :project_id,
			:configuration, :dropped_source_ids, :status, :trigger, :submitted_by, :submitted_at
		)
	`

	if record.Configuration == nil {
		record.Configuration = JSONB{}
	}
	if record.DroppedSourceIDs == nil {
		record.DroppedSourceIDs = []int64{}
	}

	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("failed to create submission: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListSubmissions(ctx context.Context, filters *SubmissionFilters) ([]*SubmissionRecord, int, error) {
	var conditions []string
	var args []interface{}
	argCount := 0

	baseQuery := `
		SELECT id, report_id, template_id, template_name, template_type, title, project_id,
			   configuration, dropped_source_ids, status, trigger, submitted_by, submitted_at
		FROM report_submissions
	`

	countQuery := `SELECT COUNT(*) FROM report_submissions`

	if filters.TemplateID != nil {
		argCount++
		conditions = append(conditions, fmt.Sprintf("template_id = $%d", argCount))
		args = append(args, *filters.TemplateID)
	}

	if filters.ProjectID != nil {
		argCount++
		conditions = append(conditions, fmt.Sprintf("project_id = $%d", argCount))
		args = append(args, *filters.ProjectID)
	}

	if filters.Trigger != nil {
		argCount++
		conditions = append(conditions, fmt.Sprintf("trigger = $%d", argCount))
		args = append(args, string(*filters.Trigger))
	}

	if filters.SubmittedBy != nil && *filters.SubmittedBy != "" {
		argCount++
		conditions = append(conditions, fmt.Sprintf("submitted_by = $%d", argCount))
		args = append(args, *filters.SubmittedBy)
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	var totalCount int
	if err := r.db.GetContext(ctx, &totalCount, countQuery+whereClause, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count submissions: %w", err)
	}

	_, pageSize, offset := normalizePage(filters)

	argCount++
	limitArg := argCount
	argCount++
	offsetArg := argCount

	query := baseQuery + whereClause + fmt.Sprintf(" ORDER BY submitted_at DESC LIMIT $%d OFFSET $%d", limitArg, offsetArg)
	args = append(args, pageSize, offset)

	records := []*SubmissionRecord{}
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list submissions: %w", err)
	}

	return records, totalCount, nil
}

// =====================================================
// In-memory
// =====================================================

// MemoryRepository keeps submissions in process memory. It backs the
// service when no database is configured.
type MemoryRepository struct {
	mu      sync.RWMutex
	records []*SubmissionRecord
}

// NewMemoryRepository creates an empty in-memory repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) CreateSubmission(_ context.Context, record *SubmissionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.records {
		if existing.ID == record.ID {
			return fmt.Errorf("failed to create submission: duplicate id %s", record.ID)
		}
	}

	copied := *record
	r.records = append(r.records, &copied)
	return nil
}

func (r *MemoryRepository) ListSubmissions(_ context.Context, filters *SubmissionFilters) ([]*SubmissionRecord, int, error) {
	r.mu.RLock()
	matched := make([]*SubmissionRecord, 0, len(r.records))
	for _, rec := range r.records {
		if matchesFilters(rec, filters) {
			copied := *rec
			matched = append(matched, &copied)
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].SubmittedAt.After(matched[j].SubmittedAt)
	})

	total := len(matched)
	_, pageSize, offset := normalizePage(filters)
	if offset >= total {
		return []*SubmissionRecord{}, total, nil
	}
	end := offset + pageSize
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func matchesFilters(rec *SubmissionRecord, filters *SubmissionFilters) bool {
	if filters.TemplateID != nil && rec.TemplateID != *filters.TemplateID {
		return false
	}
	if filters.ProjectID != nil && (rec.ProjectID == nil || *rec.ProjectID != *filters.ProjectID) {
		return false
	}
	if filters.Trigger != nil && rec.Trigger != *filters.Trigger {
		return false
	}
	if filters.SubmittedBy != nil && *filters.SubmittedBy != "" && rec.SubmittedBy != *filters.SubmittedBy {
		return false
	}
	return true
}
