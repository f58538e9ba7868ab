package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"socialpulse/report-portal-backend/internal/reports/render"
)

func sampleView() *render.View {
	return render.Dispatch(render.Report{
		ID:           5,
		Title:        "Launch engagement",
		TemplateType: "engagement_metrics",
		Status:       render.StatusCompleted,
		Results: json.RawMessage(`{
			"visualizations": {"split": {"type": "pie", "title": "Split", "data": {"labels": ["ig", "fb"], "values": [3, 1]}}},
			"total_engagement": 1200,
			"avg_engagement_rate": 3.1,
			"total_posts": 40,
			"top_performing_posts": [{"content": "Launch day", "platform": "instagram", "likes": 300}],
			"engagement_by_platform": [{"platform": "instagram", "total_engagement": 900}],
			"recommendations": ["Post on weekday evenings"]
		}`),
	})
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("XLSX")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)

	f, err = ParseFormat("excel")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)

	_, err = ParseFormat("docx")
	assert.Error(t, err)

	assert.Equal(t, "report_5_export.pdf", FormatPDF.Filename(5))
	assert.Equal(t, "application/pdf", FormatPDF.ContentType())
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleView(), FormatCSV))

	r := csv.NewReader(&buf)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	require.NoError(t, err)

	assert.Equal(t, []string{"Launch engagement"}, records[0])
	assert.Contains(t, records, []string{"Total Engagement", "1,200"})
	assert.Contains(t, records, []string{"Content", "Platform", "Likes", "Comments", "Shares", "Engagement Rate"})
	assert.Contains(t, records, []string{"Post on weekday evenings"})
	assert.Contains(t, records, []string{"ig: 3"})
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleView(), FormatXLSX))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Summary", "Top Performing Posts", "Engagement by Platform"}, f.GetSheetList())

	title, err := f.GetCellValue("Summary", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Launch engagement", title)

	cell, err := f.GetCellValue("Top Performing Posts", "A2")
	require.NoError(t, err)
	assert.Equal(t, "Launch day", cell)
}

func TestWritePDF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleView(), FormatPDF))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestWriteNoticeOnlyView(t *testing.T) {
	view := render.Dispatch(render.Report{ID: 9, Title: "Pending", TemplateType: "trend_analysis", Status: render.StatusPending})

	for _, f := range []Format{FormatCSV, FormatXLSX, FormatPDF} {
		var buf bytes.Buffer
		assert.NoError(t, Write(&buf, view, f), f)
		assert.NotZero(t, buf.Len(), f)
	}
}

func TestUniqueSheetName(t *testing.T) {
	e := NewExcelExporter(DefaultExcelOptions())
	defer e.Close()

	assert.Equal(t, "Top Posts", e.uniqueSheetName("Top Posts"))
	assert.Equal(t, "Top Posts (2)", e.uniqueSheetName("Top Posts"))
	assert.Equal(t, "a-b", e.uniqueSheetName("a/b"))

	long := e.uniqueSheetName("An extremely long section title that overflows")
	assert.LessOrEqual(t, len(long), maxSheetNameLength)
}
