package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"socialpulse/report-portal-backend/internal/reports/render"
)

// CSVExporter exports report views to CSV. Each section becomes a block of
// rows headed by its title, separated by an empty row.
type CSVExporter struct {
	writer  *csv.Writer
	options CSVOptions
}

// CSVOptions configures CSV export behavior
type CSVOptions struct {
	Delimiter     rune `json:"delimiter"`
	UseCRLF       bool `json:"use_crlf"`
	IncludeHeader bool `json:"include_header"`
}

// DefaultCSVOptions returns default CSV export options
func DefaultCSVOptions() CSVOptions {
	return CSVOptions{
		Delimiter:     ',',
		UseCRLF:       false,
		IncludeHeader: true,
	}
}

// NewCSVExporter creates a new CSV exporter
func NewCSVExporter(w io.Writer, options CSVOptions) *CSVExporter {
	writer := csv.NewWriter(w)
	writer.Comma = options.Delimiter
	writer.UseCRLF = options.UseCRLF

	return &CSVExporter{
		writer:  writer,
		options: options,
	}
}

// WriteView writes every section of a view
func (e *CSVExporter) WriteView(view *render.View) error {
	if e.options.IncludeHeader {
		if err := e.write([]string{view.Title}, []string{"Template", string(view.TemplateType)}, []string{"Status", string(view.Status)}); err != nil {
			return err
		}
	}

	for _, s := range view.Sections {
		if err := e.write([]string{}, []string{sectionTitle(s)}); err != nil {
			return err
		}
		if err := e.writeSection(s); err != nil {
			return err
		}
	}
	return nil
}

func (e *CSVExporter) writeSection(s render.Section) error {
	switch s.Kind {
	case render.SectionMetrics:
		for _, card := range s.Cards {
			if err := e.write([]string{card.Label, card.Value}); err != nil {
				return err
			}
		}
	case render.SectionTable:
		if s.Table == nil {
			return nil
		}
		if err := e.write(s.Table.Columns); err != nil {
			return err
		}
		return e.write(s.Table.Rows...)
	case render.SectionList:
		for _, item := range s.Items {
			if err := e.write([]string{item}); err != nil {
				return err
			}
		}
	case render.SectionVisualization:
		for _, line := range visualizationLines(s) {
			if err := e.write([]string{line}); err != nil {
				return err
			}
		}
	case render.SectionNotice:
		if s.Notice != nil {
			return e.write([]string{s.Notice.Severity, s.Notice.Message})
		}
	}
	return nil
}

func (e *CSVExporter) write(records ...[]string) error {
	for _, record := range records {
		if err := e.writer.Write(record); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	return nil
}

// Flush flushes buffered rows
func (e *CSVExporter) Flush() error {
	e.writer.Flush()
	return e.writer.Error()
}
