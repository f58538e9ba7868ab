// Package export writes rendered report views to downloadable files.
package export

import (
	"fmt"
	"io"
	"strings"

	"socialpulse/report-portal-backend/internal/reports/render"
)

// Format is a local export format
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// ParseFormat validates a requested export format
func ParseFormat(raw string) (Format, error) {
	switch f := Format(strings.ToLower(raw)); f {
	case FormatPDF, FormatXLSX, FormatCSV:
		return f, nil
	case "excel":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("unsupported export format: %s", raw)
	}
}

// ContentType returns the MIME type of a format
func (f Format) ContentType() string {
	switch f {
	case FormatPDF:
		return "application/pdf"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "text/csv"
	}
}

// Filename builds the attachment name for an exported report
func (f Format) Filename(reportID int) string {
	return fmt.Sprintf("report_%d_export.%s", reportID, f)
}

// Write renders a view in the given format
func Write(w io.Writer, view *render.View, format Format) error {
	switch format {
	case FormatPDF:
		g := NewPDFGenerator(DefaultPDFOptions())
		if err := g.GenerateView(view); err != nil {
			return err
		}
		return g.WriteTo(w)
	case FormatXLSX:
		e := NewExcelExporter(DefaultExcelOptions())
		defer e.Close()
		if err := e.WriteView(view); err != nil {
			return err
		}
		return e.WriteTo(w)
	case FormatCSV:
		e := NewCSVExporter(w, DefaultCSVOptions())
		if err := e.WriteView(view); err != nil {
			return err
		}
		return e.Flush()
	default:
		return fmt.Errorf("unsupported export format: %s", format)
	}
}

func sectionTitle(s render.Section) string {
	if s.Title != "" {
		return s.Title
	}
	switch s.Kind {
	case render.SectionNotice:
		return "Status"
	default:
		return string(s.Kind)
	}
}

// visualizationLines describes a chart in plain text
func visualizationLines(s render.Section) []string {
	el := s.Visualization
	if el == nil {
		return nil
	}
	if el.Message != "" {
		return []string{fmt.Sprintf("[%s] %s", el.Kind, el.Message)}
	}

	lines := []string{fmt.Sprintf("%s chart", el.ChartType)}
	for i, label := range el.Labels {
		if i < len(el.Values) {
			lines = append(lines, fmt.Sprintf("%s: %g", label, el.Values[i]))
		}
	}
	for _, ds := range el.Datasets {
		values := make([]string, 0, len(ds.Data))
		for _, v := range ds.Data {
			values = append(values, fmt.Sprintf("%g", v))
		}
		lines = append(lines, fmt.Sprintf("%s: %s", ds.Label, strings.Join(values, ", ")))
	}
	return lines
}
