package export

import (
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"

	"socialpulse/report-portal-backend/internal/reports/render"
)

// PDFGenerator generates PDF reports
type PDFGenerator struct {
	pdf       *gofpdf.Fpdf
	options   PDFOptions
	translate func(string) string
}

// PDFOptions configures PDF generation
type PDFOptions struct {
	PageSize       string     `json:"page_size"`   // A4, Letter, Legal
	Orientation    string     `json:"orientation"` // portrait, landscape
	DateFormat     string     `json:"date_format"`
	IncludePageNum bool       `json:"include_page_num"`
	IncludeDate    bool       `json:"include_date"`
	HeaderColor    PDFColor   `json:"header_color"`
	AlternateRows  bool       `json:"alternate_rows"`
	AlternateColor PDFColor   `json:"alternate_color"`
	WarningColor   PDFColor   `json:"warning_color"`
	FontFamily     string     `json:"font_family"`
	FontSize       float64    `json:"font_size"`
	HeaderFontSize float64    `json:"header_font_size"`
	TitleFontSize  float64    `json:"title_font_size"`
	Margins        PDFMargins `json:"margins"`
}

// PDFColor represents an RGB color
type PDFColor struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// PDFMargins represents page margins
type PDFMargins struct {
	Left   float64 `json:"left"`
	Right  float64 `json:"right"`
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
}

// DefaultPDFOptions returns default PDF options
func DefaultPDFOptions() PDFOptions {
	return PDFOptions{
		PageSize:       "A4",
		Orientation:    "portrait",
		DateFormat:     "2006-01-02 15:04",
		IncludePageNum: true,
		IncludeDate:    true,
		HeaderColor:    PDFColor{R: 68, G: 114, B: 196},
		AlternateRows:  true,
		AlternateColor: PDFColor{R: 242, G: 242, B: 242},
		WarningColor:   PDFColor{R: 237, G: 108, B: 2},
		FontFamily:     "Arial",
		FontSize:       10,
		HeaderFontSize: 10,
		TitleFontSize:  16,
		Margins: PDFMargins{
			Left:   15,
			Right:  15,
			Top:    20,
			Bottom: 20,
		},
	}
}

// NewPDFGenerator creates a new PDF generator
func NewPDFGenerator(options PDFOptions) *PDFGenerator {
	orientation := "P"
	if options.Orientation == "landscape" {
		orientation = "L"
	}

	pdf := gofpdf.New(orientation, "mm", options.PageSize, "")
	pdf.SetMargins(options.Margins.Left, options.Margins.Top, options.Margins.Right)
	pdf.SetAutoPageBreak(true, options.Margins.Bottom)

	g := &PDFGenerator{
		pdf:       pdf,
		options:   options,
		translate: pdf.UnicodeTranslatorFromDescriptor(""),
	}
	g.setFooter()
	return g
}

// GenerateView lays out every section of a report view
func (g *PDFGenerator) GenerateView(view *render.View) error {
	g.pdf.AddPage()
	g.addTitle(view.Title)
	g.addSubtitle(fmt.Sprintf("%s - %s", view.TemplateType, view.Status))
	if g.options.IncludeDate {
		g.addDate()
	}
	g.pdf.Ln(4)

	for _, s := range view.Sections {
		g.addSectionHeading(sectionTitle(s))

		switch s.Kind {
		case render.SectionMetrics:
			g.addCards(s.Cards)
		case render.SectionTable:
			if s.Table != nil {
				g.addTable(s.Table)
			}
		case render.SectionList:
			g.addList(s.Items)
		case render.SectionVisualization:
			g.addVisualization(s)
		case render.SectionNotice:
			if s.Notice != nil {
				g.addText(s.Notice.Message, s.Notice.Severity == "error")
			}
		}
		g.pdf.Ln(4)
	}

	return g.pdf.Error()
}

func (g *PDFGenerator) addTitle(title string) {
	g.pdf.SetFont(g.options.FontFamily, "B", g.options.TitleFontSize)
	g.pdf.SetTextColor(0, 0, 0)
	g.pdf.CellFormat(0, 10, g.translate(title), "", 1, "C", false, 0, "")
}

func (g *PDFGenerator) addSubtitle(subtitle string) {
	g.pdf.SetFont(g.options.FontFamily, "", g.options.FontSize+2)
	g.pdf.SetTextColor(100, 100, 100)
	g.pdf.CellFormat(0, 8, g.translate(subtitle), "", 1, "C", false, 0, "")
}

func (g *PDFGenerator) addDate() {
	g.pdf.SetFont(g.options.FontFamily, "", g.options.FontSize-1)
	g.pdf.SetTextColor(128, 128, 128)
	dateStr := fmt.Sprintf("Exported: %s", time.Now().Format(g.options.DateFormat))
	g.pdf.CellFormat(0, 6, dateStr, "", 1, "R", false, 0, "")
}

func (g *PDFGenerator) addSectionHeading(title string) {
	g.pdf.SetFont(g.options.FontFamily, "B", g.options.FontSize+2)
	g.pdf.SetTextColor(0, 0, 0)
	g.pdf.CellFormat(0, 8, g.translate(title), "", 1, "L", false, 0, "")
}

// addCards lays summary metrics out side by side
func (g *PDFGenerator) addCards(cards []render.Card) {
	if len(cards) == 0 {
		return
	}
	width := g.contentWidth() / float64(len(cards))

	g.pdf.SetFillColor(g.options.AlternateColor.R, g.options.AlternateColor.G, g.options.AlternateColor.B)
	g.pdf.SetFont(g.options.FontFamily, "", g.options.FontSize-1)
	g.pdf.SetTextColor(100, 100, 100)
	for _, card := range cards {
		g.pdf.CellFormat(width, 6, g.translate(card.Label), "LTR", 0, "C", true, 0, "")
	}
	g.pdf.Ln(-1)

	g.pdf.SetFont(g.options.FontFamily, "B", g.options.FontSize+4)
	g.pdf.SetTextColor(0, 0, 0)
	for _, card := range cards {
		g.pdf.CellFormat(width, 10, g.translate(card.Value), "LBR", 0, "C", true, 0, "")
	}
	g.pdf.Ln(-1)
}

func (g *PDFGenerator) addTable(table *render.Table) {
	if len(table.Columns) == 0 {
		return
	}
	width := g.contentWidth() / float64(len(table.Columns))
	maxChars := int(width / 1.8)

	header := func() {
		g.pdf.SetFont(g.options.FontFamily, "B", g.options.HeaderFontSize)
		g.pdf.SetFillColor(g.options.HeaderColor.R, g.options.HeaderColor.G, g.options.HeaderColor.B)
		g.pdf.SetTextColor(255, 255, 255)
		for _, label := range table.Columns {
			g.pdf.CellFormat(width, 8, g.translate(truncate(label, maxChars)), "1", 0, "C", true, 0, "")
		}
		g.pdf.Ln(-1)
		g.pdf.SetFont(g.options.FontFamily, "", g.options.FontSize)
		g.pdf.SetTextColor(0, 0, 0)
	}
	header()

	_, pageHeight := g.pdf.GetPageSize()
	for i, row := range table.Rows {
		if g.options.AlternateRows && i%2 == 1 {
			g.pdf.SetFillColor(g.options.AlternateColor.R, g.options.AlternateColor.G, g.options.AlternateColor.B)
		} else {
			g.pdf.SetFillColor(255, 255, 255)
		}

		if g.pdf.GetY()+7 > pageHeight-g.options.Margins.Bottom {
			g.pdf.AddPage()
			header()
		}

		for j := range table.Columns {
			val := ""
			if j < len(row) {
				val = truncate(row[j], maxChars)
			}
			g.pdf.CellFormat(width, 7, g.translate(val), "1", 0, "L", true, 0, "")
		}
		g.pdf.Ln(-1)
	}
}

func (g *PDFGenerator) addList(items []string) {
	g.pdf.SetFont(g.options.FontFamily, "", g.options.FontSize)
	g.pdf.SetTextColor(0, 0, 0)
	for _, item := range items {
		g.pdf.MultiCell(0, 6, g.translate("- "+item), "", "L", false)
	}
}

// addVisualization prints chart data, or the alert raised for it
func (g *PDFGenerator) addVisualization(s render.Section) {
	el := s.Visualization
	if el == nil {
		return
	}
	if el.Message != "" {
		g.addText(el.Message, true)
		return
	}

	g.pdf.SetDrawColor(200, 200, 200)
	g.pdf.SetFont(g.options.FontFamily, "", g.options.FontSize-1)
	g.pdf.SetTextColor(80, 80, 80)
	for _, line := range visualizationLines(s) {
		g.pdf.CellFormat(0, 6, g.translate(line), "", 1, "L", false, 0, "")
	}
}

func (g *PDFGenerator) addText(text string, alert bool) {
	g.pdf.SetFont(g.options.FontFamily, "", g.options.FontSize)
	if alert {
		g.pdf.SetTextColor(g.options.WarningColor.R, g.options.WarningColor.G, g.options.WarningColor.B)
	} else {
		g.pdf.SetTextColor(0, 0, 0)
	}
	g.pdf.MultiCell(0, 6, g.translate(text), "", "L", false)
	g.pdf.SetTextColor(0, 0, 0)
}

func (g *PDFGenerator) contentWidth() float64 {
	pageWidth, _ := g.pdf.GetPageSize()
	return pageWidth - g.options.Margins.Left - g.options.Margins.Right
}

func truncate(s string, maxChars int) string {
	runes := []rune(s)
	if maxChars < 4 || len(runes) <= maxChars {
		return s
	}
	return string(runes[:maxChars-3]) + "..."
}

// WriteTo writes the PDF to a writer
func (g *PDFGenerator) WriteTo(w io.Writer) error {
	return g.pdf.Output(w)
}

// setFooter sets up the page footer
func (g *PDFGenerator) setFooter() {
	g.pdf.SetFooterFunc(func() {
		if !g.options.IncludePageNum {
			return
		}
		g.pdf.SetY(-15)
		g.pdf.SetFont(g.options.FontFamily, "", 8)
		g.pdf.SetTextColor(128, 128, 128)
		g.pdf.CellFormat(0, 10, fmt.Sprintf("Page %d", g.pdf.PageNo()), "", 0, "C", false, 0, "")
	})
}
