package reports

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"socialpulse/report-portal-backend/internal/platform"
	"socialpulse/report-portal-backend/internal/reports/builder"
	"socialpulse/report-portal-backend/internal/reports/render"
)

// =====================================================
// Enums and Constants
// =====================================================

// DownloadFormat is a server-rendered report file format
type DownloadFormat string

const (
	DownloadFormatPDF DownloadFormat = "pdf"
	DownloadFormatCSV DownloadFormat = "csv"
)

// SubmissionTrigger records who initiated a submission
type SubmissionTrigger string

const (
	SubmissionTriggerManual    SubmissionTrigger = "manual"
	SubmissionTriggerScheduled SubmissionTrigger = "scheduled"
)

var (
	ErrTemplateNotFound  = errors.New("report template not found")
	ErrUnsupportedFormat = errors.New("unsupported format")

	ErrDataSourcesUnavailable = errors.New("data sources are unavailable")
)

// =====================================================
// JSON Types for JSONB columns
// =====================================================

// JSONB is a wrapper for JSONB columns
type JSONB map[string]interface{}

// Value implements driver.Valuer
func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan implements sql.Scanner
func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, j)
}

// =====================================================
// Upstream Models
// =====================================================

// ReportTemplate is a server-defined report kind
type ReportTemplate struct {
	ID                int                 `json:"id"`
	Name              string              `json:"name"`
	TemplateType      render.TemplateType `json:"template_type"`
	Description       string              `json:"description"`
	RequiredDataTypes []string            `json:"required_data_types"`
	Features          []string            `json:"features"`
}

// GeneratedReport is one instantiation of a template. Status transitions
// happen server-side only.
type GeneratedReport struct {
	ID              int             `json:"id"`
	Title           string          `json:"title"`
	Template        int             `json:"template"`
	TemplateName    string          `json:"template_name,omitempty"`
	TemplateType    string          `json:"template_type"`
	Status          render.Status   `json:"status"`
	Configuration   json.RawMessage `json:"configuration,omitempty"`
	Results         json.RawMessage `json:"results,omitempty"`
	ErrorMessage    *string         `json:"error_message,omitempty"`
	DataSourceCount int             `json:"data_source_count"`
	ProcessingTime  *float64        `json:"processing_time,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	CompletedAt     *time.Time      `json:"completed_at,omitempty"`
}

// RenderInput returns the fields the dispatcher needs
func (r *GeneratedReport) RenderInput() render.Report {
	in := render.Report{
		ID:           r.ID,
		Title:        r.Title,
		TemplateType: r.TemplateType,
		Status:       r.Status,
		Results:      r.Results,
	}
	if r.ErrorMessage != nil {
		in.ErrorMessage = *r.ErrorMessage
	}
	return in
}

// generateReportRequest is the body of POST generate_report
type generateReportRequest struct {
	TemplateID    int                             `json:"template_id"`
	Title         string                          `json:"title"`
	Configuration builder.GenerationConfiguration `json:"configuration"`
	ProjectID     *int                            `json:"project_id,omitempty"`
}

// Download is a binary report file
type Download struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"-"`
	ArchivedAt  string `json:"archived_at,omitempty"`
}

// =====================================================
// Audit Models
// =====================================================

// SubmissionRecord is the local audit entry of one generate request
type SubmissionRecord struct {
	ID               uuid.UUID         `json:"id" db:"id"`
	ReportID         int               `json:"report_id" db:"report_id"`
	TemplateID       int               `json:"template_id" db:"template_id"`
	TemplateName     string            `json:"template_name" db:"template_name"`
	TemplateType     string            `json:"template_type" db:"template_type"`
	Title            string            `json:"title" db:"title"`
	ProjectID        *int              `json:"project_id,omitempty" db:"project_id"`
	Configuration    JSONB             `json:"configuration" db:"configuration"`
	DroppedSourceIDs pq.Int64Array     `json:"dropped_source_ids" db:"dropped_source_ids"`
	Status           render.Status     `json:"status" db:"status"`
	Trigger          SubmissionTrigger `json:"trigger" db:"trigger"`
	SubmittedBy      string            `json:"submitted_by,omitempty" db:"submitted_by"`
	SubmittedAt      time.Time         `json:"submitted_at" db:"submitted_at"`
}

// SubmissionFilters narrows the audit listing
type SubmissionFilters struct {
	TemplateID  *int               `form:"template_id"`
	ProjectID   *int               `form:"project"`
	Trigger     *SubmissionTrigger `form:"trigger"`
	SubmittedBy *string            `form:"submitted_by"`
	Page        int                `form:"page"`
	PageSize    int                `form:"page_size"`
}

// =====================================================
// Request/Response DTOs
// =====================================================

// GenerateRequest is the generate dialog submission
type GenerateRequest struct {
	TemplateID          int               `json:"template_id" binding:"required"`
	Title               string            `json:"title"`
	ProjectID           *int              `json:"project_id,omitempty"`
	SelectedDataSources []int             `json:"selected_data_sources"`
	BrandFolderIDs      []int             `json:"brand_folder_ids"`
	CompetitorFolderIDs []int             `json:"competitor_folder_ids"`
	Trigger             SubmissionTrigger `json:"-"`
}

// Selection converts the request into builder selection state
func (r *GenerateRequest) Selection() builder.SelectionState {
	return builder.SelectionState{
		Title:               r.Title,
		SelectedDataSources: r.SelectedDataSources,
		BrandFolderIDs:      r.BrandFolderIDs,
		CompetitorFolderIDs: r.CompetitorFolderIDs,
	}
}

// GenerateResult is the created report plus any dropped stale selections
type GenerateResult struct {
	*GeneratedReport
	DroppedSourceIDs []int  `json:"dropped_source_ids,omitempty"`
	Warning          string `json:"warning,omitempty"`
}

// ValidationResponse drives the generate button state
type ValidationResponse struct {
	CanSubmit  bool                      `json:"can_submit"`
	Kind       builder.Kind              `json:"kind"`
	Validation *builder.ValidationResult `json:"validation"`
}

// SourceFoldersResponse groups comparative folders by role
type SourceFoldersResponse struct {
	Brand      []platform.SourceFolder `json:"brand"`
	Competitor []platform.SourceFolder `json:"competitor"`
}

// SubmissionListResponse is a page of audit records
type SubmissionListResponse struct {
	Submissions []*SubmissionRecord `json:"submissions"`
	TotalCount  int                 `json:"total_count"`
	Page        int                 `json:"page"`
	PageSize    int                 `json:"page_size"`
}
