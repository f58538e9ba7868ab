package render

import (
	"encoding/json"

	"socialpulse/report-portal-backend/internal/reports/visualization"
)

// TemplateType is the template_type of a generated report
type TemplateType string

const (
	TemplateTypeSentimentAnalysis   TemplateType = "sentiment_analysis"
	TemplateTypeCompetitiveAnalysis TemplateType = "competitive_analysis"
	TemplateTypeEngagementMetrics   TemplateType = "engagement_metrics"
	TemplateTypeContentAnalysis     TemplateType = "content_analysis"
	TemplateTypeTrendAnalysis       TemplateType = "trend_analysis"
	TemplateTypeUserBehavior        TemplateType = "user_behavior"
	TemplateTypeUnknown             TemplateType = "unknown"
)

// KnownTemplateTypes lists every template type with a dedicated renderer
func KnownTemplateTypes() []TemplateType {
	return []TemplateType{
		TemplateTypeSentimentAnalysis,
		TemplateTypeCompetitiveAnalysis,
		TemplateTypeEngagementMetrics,
		TemplateTypeContentAnalysis,
		TemplateTypeTrendAnalysis,
		TemplateTypeUserBehavior,
	}
}

// ParseTemplateType maps a raw template_type onto a known type or unknown
func ParseTemplateType(raw string) TemplateType {
	t := TemplateType(raw)
	if _, ok := registry[t]; ok {
		return t
	}
	return TemplateTypeUnknown
}

// Status is the server-side lifecycle state of a generated report
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Report is the subset of a generated report needed for rendering
type Report struct {
	ID           int             `json:"id"`
	Title        string          `json:"title"`
	TemplateType string          `json:"template_type"`
	Status       Status          `json:"status"`
	Results      json.RawMessage `json:"results,omitempty"`
	ErrorMessage string          `json:"error_message,omitempty"`
}

// SectionKind identifies how a section is displayed
type SectionKind string

const (
	SectionVisualization SectionKind = "visualization"
	SectionMetrics       SectionKind = "metrics"
	SectionTable         SectionKind = "table"
	SectionList          SectionKind = "list"
	SectionNotice        SectionKind = "notice"
)

// Card is a single summary metric
type Card struct {
	Label string  `json:"label"`
	Value string  `json:"value"`
	Raw   float64 `json:"raw"`
}

// Table is a detail table with pre-formatted cells
type Table struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// Notice is shown instead of results when a report is not completed
type Notice struct {
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// Section is one block of a rendered report view
type Section struct {
	Kind          SectionKind            `json:"kind"`
	Key           string                 `json:"key,omitempty"`
	Title         string                 `json:"title,omitempty"`
	Visualization *visualization.Element `json:"visualization,omitempty"`
	Cards         []Card                 `json:"cards,omitempty"`
	Table         *Table                 `json:"table,omitempty"`
	Items         []string               `json:"items,omitempty"`
	Notice        *Notice                `json:"notice,omitempty"`
}

// View is the rendered form of a report
type View struct {
	ReportID     int          `json:"report_id"`
	Title        string       `json:"title"`
	TemplateType TemplateType `json:"template_type"`
	Status       Status       `json:"status"`
	Sections     []Section    `json:"sections"`
}
