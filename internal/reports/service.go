package reports

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"socialpulse/report-portal-backend/internal/platform"
	"socialpulse/report-portal-backend/internal/reports/builder"
	"socialpulse/report-portal-backend/internal/reports/cache"
	"socialpulse/report-portal-backend/internal/reports/export"
	"socialpulse/report-portal-backend/internal/reports/render"
	"socialpulse/report-portal-backend/internal/reports/sources"
	"socialpulse/report-portal-backend/internal/session"
	"socialpulse/report-portal-backend/pkg/storage"
)

const templatesCacheKey = "templates"

// Service orchestrates report generation and rendering
type Service struct {
	gateway    *platform.Gateway
	aggregator *sources.Aggregator
	client     *Client
	templates  *cache.TTLCache[[]ReportTemplate]
	repo       Repository
	archive    storage.Archive
	logger     *zap.Logger
	now        func() time.Time
}

// NewService creates a new reports service. archive may be nil, in which
// case downloads are not archived.
func NewService(gateway *platform.Gateway, client *Client, repo Repository, archive storage.Archive, templateTTL time.Duration, logger *zap.Logger) *Service {
	return &Service{
		gateway:    gateway,
		aggregator: sources.NewAggregator(gateway, logger),
		client:     client,
		templates:  cache.New[[]ReportTemplate](templateTTL, templateTTL),
		repo:       repo,
		archive:    archive,
		logger:     logger,
		now:        time.Now,
	}
}

// Close stops background work owned by the service
func (s *Service) Close() {
	s.templates.Stop()
}

// TemplateCacheStats reports usage of the template cache
func (s *Service) TemplateCacheStats() cache.Stats {
	return s.templates.Stats()
}

// =====================================================
// Templates and Sources
// =====================================================

// Templates returns the report templates, cached for the configured TTL
func (s *Service) Templates(ctx context.Context) ([]ReportTemplate, error) {
	return s.templates.GetOrSet(templatesCacheKey, func() ([]ReportTemplate, error) {
		return s.client.ListTemplates(ctx)
	})
}

// Template resolves a template by id
func (s *Service) Template(ctx context.Context, id int) (*ReportTemplate, error) {
	templates, err := s.Templates(ctx)
	if err != nil {
		return nil, err
	}
	for i := range templates {
		if templates[i].ID == id {
			return &templates[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %d", ErrTemplateNotFound, id)
}

// DataSources aggregates folders and batch jobs across all platforms
func (s *Service) DataSources(ctx context.Context, projectID *int) (*sources.Aggregation, error) {
	return s.aggregator.Aggregate(ctx, projectID)
}

// SourceFolders returns the comparative folders grouped by role
func (s *Service) SourceFolders(ctx context.Context, projectID *int) (*SourceFoldersResponse, error) {
	folders, err := s.gateway.SourceFolders(ctx, projectID)
	if err != nil {
		return nil, err
	}

	resp := &SourceFoldersResponse{
		Brand:      []platform.SourceFolder{},
		Competitor: []platform.SourceFolder{},
	}
	for _, f := range folders {
		if f.FolderType == platform.FolderTypeCompetitor {
			resp.Competitor = append(resp.Competitor, f)
		} else {
			resp.Brand = append(resp.Brand, f)
		}
	}
	return resp, nil
}

// =====================================================
// Generation
// =====================================================

// Validate reports whether a selection may be submitted for a template
func (s *Service) Validate(ctx context.Context, req *GenerateRequest) (*ValidationResponse, error) {
	tmpl, err := s.Template(ctx, req.TemplateID)
	if err != nil {
		return nil, err
	}

	result := builder.Validate(tmpl.Name, req.Selection())
	return &ValidationResponse{
		CanSubmit:  result.IsValid,
		Kind:       builder.KindFor(tmpl.Name),
		Validation: result,
	}, nil
}

// Generate builds the configuration for a selection and submits it once.
// Invalid selections fail before any upstream call.
func (s *Service) Generate(ctx context.Context, req *GenerateRequest) (*GenerateResult, error) {
	tmpl, err := s.Template(ctx, req.TemplateID)
	if err != nil {
		return nil, err
	}

	sel := req.Selection()
	if result := builder.Validate(tmpl.Name, sel); !result.IsValid {
		return nil, &builder.InvalidSelectionError{Result: result}
	}

	var available []platform.DataSourceDescriptor
	if builder.KindFor(tmpl.Name) == builder.KindStandard {
		agg, err := s.aggregator.Aggregate(ctx, req.ProjectID)
		if err != nil {
			return nil, fmt.Errorf("failed to load data sources: %w", err)
		}
		if agg.Warning != "" {
			s.logger.Warn("No platform answered, generation aborted",
				zap.Int("template_id", tmpl.ID),
				zap.Any("failed_platforms", agg.FailedPlatforms))
			return nil, fmt.Errorf("%w: %s", ErrDataSourcesUnavailable, agg.Warning)
		}
		available = agg.Sources
	}

	built, err := builder.Build(tmpl.Name, sel, available)
	if err != nil {
		return nil, err
	}

	result := &GenerateResult{DroppedSourceIDs: built.DroppedIDs}
	if len(built.DroppedIDs) > 0 {
		s.logger.Warn("Dropped stale data source selections",
			zap.Int("template_id", tmpl.ID),
			zap.Ints("dropped_ids", built.DroppedIDs))
		result.Warning = fmt.Sprintf("%d selected data source(s) are no longer available and were skipped", len(built.DroppedIDs))
	}

	title := strings.TrimSpace(req.Title)
	report, err := s.client.Submit(ctx, tmpl.ID, title, built.Configuration, req.ProjectID)
	if err != nil {
		return nil, err
	}
	result.GeneratedReport = report

	s.recordSubmission(ctx, req, tmpl, built, report)

	return result, nil
}

// recordSubmission writes the audit entry. Failures are logged only; the
// report has already been created upstream.
func (s *Service) recordSubmission(ctx context.Context, req *GenerateRequest, tmpl *ReportTemplate, built *builder.BuildResult, report *GeneratedReport) {
	trigger := req.Trigger
	if trigger == "" {
		trigger = SubmissionTriggerManual
	}

	record := &SubmissionRecord{
		ID:               uuid.New(),
		ReportID:         report.ID,
		TemplateID:       tmpl.ID,
		TemplateName:     tmpl.Name,
		TemplateType:     string(tmpl.TemplateType),
		Title:            report.Title,
		ProjectID:        req.ProjectID,
		Configuration:    configurationJSONB(built.Configuration),
		DroppedSourceIDs: toInt64s(built.DroppedIDs),
		Status:           report.Status,
		Trigger:          trigger,
		SubmittedAt:      s.now().UTC(),
	}
	if record.Title == "" {
		record.Title = strings.TrimSpace(req.Title)
	}
	if sess, ok := session.FromContext(ctx); ok {
		record.SubmittedBy = sess.UserID
	}

	if err := s.repo.CreateSubmission(ctx, record); err != nil {
		s.logger.Error("Failed to record report submission",
			zap.Int("report_id", report.ID),
			zap.Error(err))
	}
}

func configurationJSONB(cfg builder.GenerationConfiguration) JSONB {
	out := JSONB{}
	data, err := json.Marshal(cfg)
	if err != nil {
		return out
	}
	_ = json.Unmarshal(data, &out)
	return out
}

func toInt64s(ids []int) []int64 {
	out := make([]int64, len(ids))
	for i, id := range ids {
		out[i] = int64(id)
	}
	return out
}

// =====================================================
// Generated Reports
// =====================================================

// Generated lists generated reports
func (s *Service) Generated(ctx context.Context, projectID *int) ([]GeneratedReport, error) {
	return s.client.ListGenerated(ctx, projectID)
}

// Report fetches one generated report
func (s *Service) Report(ctx context.Context, id int) (*GeneratedReport, error) {
	return s.client.FetchByID(ctx, id)
}

// View fetches a report once and renders it. There is no polling: a
// pending report renders as a notice.
func (s *Service) View(ctx context.Context, id int) (*render.View, error) {
	report, err := s.client.FetchByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return render.Dispatch(report.RenderInput()), nil
}

// Download fetches the server-rendered file and archives a copy when an
// archive is configured
func (s *Service) Download(ctx context.Context, id int, format string) (*Download, error) {
	var (
		dl  *Download
		err error
	)
	switch DownloadFormat(strings.ToLower(format)) {
	case DownloadFormatPDF:
		dl, err = s.client.DownloadPDF(ctx, id)
	case DownloadFormatCSV:
		dl, err = s.client.DownloadCSV(ctx, id)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, err
	}

	if s.archive != nil {
		key := fmt.Sprintf("reports/%d/%s", id, dl.Filename)
		location, err := s.archive.Put(ctx, key, bytes.NewReader(dl.Data), dl.ContentType)
		if err != nil {
			s.logger.Warn("Failed to archive report download",
				zap.Int("report_id", id),
				zap.String("key", key),
				zap.Error(err))
		} else {
			dl.ArchivedAt = location
		}
	}

	return dl, nil
}

// Export renders a report locally into pdf, xlsx or csv
func (s *Service) Export(ctx context.Context, id int, format string) (*Download, error) {
	f, err := export.ParseFormat(format)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}

	view, err := s.View(ctx, id)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, view, f); err != nil {
		return nil, fmt.Errorf("failed to export report %d: %w", id, err)
	}

	s.logger.Info("Report exported",
		zap.Int("report_id", id),
		zap.String("format", string(f)),
		zap.Int("bytes", buf.Len()))

	return &Download{
		Filename:    f.Filename(id),
		ContentType: f.ContentType(),
		Data:        buf.Bytes(),
	}, nil
}

// =====================================================
// Submission Log
// =====================================================

// Submissions lists the local submission audit log
func (s *Service) Submissions(ctx context.Context, filters *SubmissionFilters) (*SubmissionListResponse, error) {
	records, total, err := s.repo.ListSubmissions(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}

	page, pageSize, _ := normalizePage(filters)
	return &SubmissionListResponse{
		Submissions: records,
		TotalCount:  total,
		Page:        page,
		PageSize:    pageSize,
	}, nil
}
