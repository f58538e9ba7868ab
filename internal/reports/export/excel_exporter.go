package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"socialpulse/report-portal-backend/internal/reports/render"
)

const maxSheetNameLength = 31

// ExcelExporter exports report views to a workbook: a summary sheet with
// cards, charts, and lists, plus one sheet per table
type ExcelExporter struct {
	file    *excelize.File
	options ExcelOptions
	sheets  map[string]bool
}

// ExcelOptions configures Excel export behavior
type ExcelOptions struct {
	SummarySheet string            `json:"summary_sheet"`
	FreezeHeader bool              `json:"freeze_header"`
	AutoFilter   bool              `json:"auto_filter"`
	TitleStyle   *ExcelStyleConfig `json:"title_style,omitempty"`
	HeaderStyle  *ExcelStyleConfig `json:"header_style,omitempty"`
	DataStyle    *ExcelStyleConfig `json:"data_style,omitempty"`
	ColumnWidth  float64           `json:"column_width"`
}

// ExcelStyleConfig defines style for cells
type ExcelStyleConfig struct {
	FontBold  bool   `json:"font_bold"`
	FontSize  int    `json:"font_size"`
	FontColor string `json:"font_color"`
	FillColor string `json:"fill_color"`
	Alignment string `json:"alignment"` // left, center, right
	Border    bool   `json:"border"`
	WrapText  bool   `json:"wrap_text"`
}

// DefaultExcelOptions returns default Excel export options
func DefaultExcelOptions() ExcelOptions {
	return ExcelOptions{
		SummarySheet: "Summary",
		FreezeHeader: true,
		AutoFilter:   true,
		ColumnWidth:  24,
		TitleStyle: &ExcelStyleConfig{
			FontBold: true,
			FontSize: 14,
		},
		HeaderStyle: &ExcelStyleConfig{
			FontBold:  true,
			FontSize:  11,
			FillColor: "4472C4",
			FontColor: "FFFFFF",
			Alignment: "center",
			Border:    true,
		},
		DataStyle: &ExcelStyleConfig{
			FontSize:  11,
			Alignment: "left",
			Border:    true,
			WrapText:  true,
		},
	}
}

// NewExcelExporter creates a new Excel exporter
func NewExcelExporter(options ExcelOptions) *ExcelExporter {
	file := excelize.NewFile()
	file.SetSheetName("Sheet1", options.SummarySheet)

	return &ExcelExporter{
		file:    file,
		options: options,
		sheets:  map[string]bool{options.SummarySheet: true},
	}
}

// WriteView writes a view into the workbook
func (e *ExcelExporter) WriteView(view *render.View) error {
	titleStyle, err := e.createStyle(e.options.TitleStyle)
	if err != nil {
		return fmt.Errorf("failed to create title style: %w", err)
	}
	headerStyle, err := e.createStyle(e.options.HeaderStyle)
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	dataStyle, err := e.createStyle(e.options.DataStyle)
	if err != nil {
		return fmt.Errorf("failed to create data style: %w", err)
	}

	summary := e.options.SummarySheet
	row := 1
	put := func(values ...string) error {
		for i, v := range values {
			cell, err := excelize.CoordinatesToCellName(i+1, row)
			if err != nil {
				return err
			}
			if err := e.file.SetCellValue(summary, cell, v); err != nil {
				return err
			}
		}
		row++
		return nil
	}

	if err := put(view.Title); err != nil {
		return err
	}
	e.file.SetCellStyle(summary, "A1", "A1", titleStyle)
	if err := put("Template", string(view.TemplateType)); err != nil {
		return err
	}
	if err := put("Status", string(view.Status)); err != nil {
		return err
	}

	for _, s := range view.Sections {
		if s.Kind == render.SectionTable {
			if err := e.addTableSheet(s, headerStyle, dataStyle); err != nil {
				return err
			}
			continue
		}

		row++
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := put(sectionTitle(s)); err != nil {
			return err
		}
		e.file.SetCellStyle(summary, cell, cell, headerStyle)

		switch s.Kind {
		case render.SectionMetrics:
			for _, card := range s.Cards {
				if err := put(card.Label, card.Value); err != nil {
					return err
				}
			}
		case render.SectionList:
			for _, item := range s.Items {
				if err := put(item); err != nil {
					return err
				}
			}
		case render.SectionVisualization:
			for _, line := range visualizationLines(s) {
				if err := put(line); err != nil {
					return err
				}
			}
		case render.SectionNotice:
			if s.Notice != nil {
				if err := put(s.Notice.Severity, s.Notice.Message); err != nil {
					return err
				}
			}
		}
	}

	return e.file.SetColWidth(summary, "A", "B", e.options.ColumnWidth)
}

func (e *ExcelExporter) addTableSheet(s render.Section, headerStyle, dataStyle int) error {
	if s.Table == nil || len(s.Table.Columns) == 0 {
		return nil
	}

	name := e.uniqueSheetName(sectionTitle(s))
	if _, err := e.file.NewSheet(name); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	for i, column := range s.Table.Columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		e.file.SetCellValue(name, cell, column)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(s.Table.Columns))
	e.file.SetCellStyle(name, "A1", lastCol+"1", headerStyle)

	for r, values := range s.Table.Rows {
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			e.file.SetCellValue(name, cell, v)
		}
	}
	if len(s.Table.Rows) > 0 {
		e.file.SetCellStyle(name, "A2", fmt.Sprintf("%s%d", lastCol, len(s.Table.Rows)+1), dataStyle)
	}

	if e.options.FreezeHeader {
		e.file.SetPanes(name, &excelize.Panes{
			Freeze:      true,
			YSplit:      1,
			TopLeftCell: "A2",
			ActivePane:  "bottomLeft",
		})
	}
	if e.options.AutoFilter {
		e.file.AutoFilter(name, fmt.Sprintf("A1:%s%d", lastCol, len(s.Table.Rows)+1), nil)
	}

	return e.file.SetColWidth(name, "A", lastCol, e.options.ColumnWidth)
}

// uniqueSheetName trims a title to a legal, unused sheet name
func (e *ExcelExporter) uniqueSheetName(title string) string {
	base := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '-'
		}
		return r
	}, title)
	if len(base) > maxSheetNameLength {
		base = base[:maxSheetNameLength]
	}

	name := base
	for i := 2; e.sheets[name]; i++ {
		suffix := fmt.Sprintf(" (%d)", i)
		trimmed := base
		if len(trimmed)+len(suffix) > maxSheetNameLength {
			trimmed = trimmed[:maxSheetNameLength-len(suffix)]
		}
		name = trimmed + suffix
	}
	e.sheets[name] = true
	return name
}

// SheetNames returns the sheets in workbook order
func (e *ExcelExporter) SheetNames() []string {
	return e.file.GetSheetList()
}

// WriteTo writes the Excel file to a writer
func (e *ExcelExporter) WriteTo(w io.Writer) error {
	return e.file.Write(w)
}

// Close closes the Excel file
func (e *ExcelExporter) Close() error {
	return e.file.Close()
}

// createStyle creates an Excel style from config
func (e *ExcelExporter) createStyle(config *ExcelStyleConfig) (int, error) {
	if config == nil {
		return 0, nil
	}
	style := &excelize.Style{}

	style.Font = &excelize.Font{
		Bold: config.FontBold,
		Size: float64(config.FontSize),
	}
	if config.FontColor != "" {
		style.Font.Color = config.FontColor
	}

	if config.FillColor != "" {
		style.Fill = excelize.Fill{
			Type:    "pattern",
			Pattern: 1,
			Color:   []string{config.FillColor},
		}
	}

	if config.Alignment != "" || config.WrapText {
		style.Alignment = &excelize.Alignment{
			Horizontal: config.Alignment,
			WrapText:   config.WrapText,
		}
	}

	if config.Border {
		style.Border = []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
		}
	}

	return e.file.NewStyle(style)
}
