package reports

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"strings"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"socialpulse/report-portal-backend/internal/reports/builder"
	"socialpulse/report-portal-backend/internal/upstream"
)

// Client talks to the reports API. Every call is issued once: no retry and
// no status polling.
type Client struct {
	http   *resty.Client
	logger *zap.Logger
}

// NewClient creates a new reports API client
func NewClient(http *resty.Client, logger *zap.Logger) *Client {
	return &Client{
		http:   http,
		logger: logger,
	}
}

// ListTemplates fetches the available report templates
func (c *Client) ListTemplates(ctx context.Context) ([]ReportTemplate, error) {
	var templates []ReportTemplate
	if err := c.getList(ctx, "/api/reports/templates/", nil, &templates); err != nil {
		return nil, err
	}
	return templates, nil
}

// ListGenerated fetches generated reports, optionally scoped to a project
func (c *Client) ListGenerated(ctx context.Context, projectID *int) ([]GeneratedReport, error) {
	var reports []GeneratedReport
	if err := c.getList(ctx, "/api/reports/generated/", upstream.ProjectQuery(projectID), &reports); err != nil {
		return nil, err
	}
	return reports, nil
}

// FetchByID fetches a single generated report
func (c *Client) FetchByID(ctx context.Context, id int) (*GeneratedReport, error) {
	body, err := c.get(ctx, fmt.Sprintf("/api/reports/generated/%d/", id), nil)
	if err != nil {
		return nil, err
	}

	var report GeneratedReport
	if err := json.Unmarshal(body, &report); err != nil {
		return nil, fmt.Errorf("failed to decode generated report %d: %w", id, err)
	}
	return &report, nil
}

// Submit requests generation and returns the created report verbatim
func (c *Client) Submit(ctx context.Context, templateID int, title string, configuration builder.GenerationConfiguration, projectID *int) (*GeneratedReport, error) {
	body := generateReportRequest{
		TemplateID:    templateID,
		Title:         title,
		Configuration: configuration,
		ProjectID:     projectID,
	}

	res, err := upstream.Request(ctx, c.http).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post("/api/reports/generated/generate_report/")
	if err != nil {
		return nil, fmt.Errorf("failed to submit report: %w", err)
	}
	if err := upstream.CheckResponse(res); err != nil {
		return nil, err
	}

	var report GeneratedReport
	if err := json.Unmarshal(res.Body(), &report); err != nil {
		return nil, fmt.Errorf("failed to decode generated report: %w", err)
	}

	c.logger.Info("Report generation submitted",
		zap.Int("report_id", report.ID),
		zap.Int("template_id", templateID),
		zap.String("status", string(report.Status)))

	return &report, nil
}

// DownloadPDF fetches the rendered PDF of a report
func (c *Client) DownloadPDF(ctx context.Context, id int) (*Download, error) {
	return c.download(ctx, id, DownloadFormatPDF)
}

// DownloadCSV fetches the CSV data of a report
func (c *Client) DownloadCSV(ctx context.Context, id int) (*Download, error) {
	return c.download(ctx, id, DownloadFormatCSV)
}

func (c *Client) download(ctx context.Context, id int, format DownloadFormat) (*Download, error) {
	res, err := upstream.Request(ctx, c.http).
		SetHeader("Accept", "*/*").
		Get(fmt.Sprintf("/api/reports/generated/%d/download_%s/", id, format))
	if err != nil {
		return nil, fmt.Errorf("failed to download report %d: %w", id, err)
	}
	if err := upstream.CheckResponse(res); err != nil {
		return nil, err
	}

	contentType := res.Header().Get("Content-Type")
	if contentType == "" {
		contentType = defaultContentType(format)
	}

	return &Download{
		Filename:    FilenameFromDisposition(res.Header().Get("Content-Disposition"), DefaultFilename(id, format)),
		ContentType: contentType,
		Data:        res.Body(),
	}, nil
}

func (c *Client) get(ctx context.Context, path string, query map[string]string) ([]byte, error) {
	req := upstream.Request(ctx, c.http)
	if len(query) > 0 {
		req.SetQueryParams(query)
	}

	res, err := req.Get(path)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", path, err)
	}
	if err := upstream.CheckResponse(res); err != nil {
		return nil, err
	}
	return res.Body(), nil
}

// getList fetches a list endpoint into out, a pointer to a slice
func (c *Client) getList(ctx context.Context, path string, query map[string]string, out any) error {
	body, err := c.get(ctx, path, query)
	if err != nil {
		return err
	}
	if err := decodeList(body, out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}

// decodeList decodes a bare JSON array or a paginated
// {"results": [...]} envelope into out
func decodeList(body []byte, out any) error {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var page struct {
			Results json.RawMessage `json:"results"`
		}
		if err := json.Unmarshal(trimmed, &page); err != nil {
			return err
		}
		if len(page.Results) == 0 {
			return fmt.Errorf("list response has no results field")
		}
		trimmed = page.Results
	}
	return json.Unmarshal(trimmed, out)
}

// DefaultFilename is used when the server sends no usable filename
func DefaultFilename(id int, format DownloadFormat) string {
	return fmt.Sprintf("report_%d.%s", id, format)
}

// FilenameFromDisposition extracts the filename parameter of a
// Content-Disposition header, preferring the RFC 5987 filename* form
func FilenameFromDisposition(header, fallback string) string {
	if header == "" {
		return fallback
	}
	var name string
	if _, params, err := mime.ParseMediaType(header); err == nil {
		name = params["filename"]
	} else {
		name = rawFilenameParam(header)
	}
	name = strings.TrimSpace(name)
	if name == "" || strings.ContainsAny(name, `/\`) {
		return fallback
	}
	return name
}

// rawFilenameParam reads a plain filename= parameter that
// mime.ParseMediaType rejects, such as an unquoted name with spaces
func rawFilenameParam(header string) string {
	for _, part := range strings.Split(header, ";") {
		key, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok || !strings.EqualFold(strings.TrimSpace(key), "filename") {
			continue
		}
		return strings.Trim(strings.TrimSpace(value), `"`)
	}
	return ""
}

func defaultContentType(format DownloadFormat) string {
	if format == DownloadFormatPDF {
		return "application/pdf"
	}
	return "text/csv"
}
