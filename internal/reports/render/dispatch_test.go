package render

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"socialpulse/report-portal-backend/internal/reports/visualization"
)

func completed(templateType string, results string) Report {
	return Report{
		ID:           1,
		Title:        "Report",
		TemplateType: templateType,
		Status:       StatusCompleted,
		Results:      json.RawMessage(results),
	}
}

func kinds(view *View) []SectionKind {
	out := make([]SectionKind, 0, len(view.Sections))
	for _, s := range view.Sections {
		out = append(out, s.Kind)
	}
	return out
}

func TestEveryKnownTypeIsRegistered(t *testing.T) {
	for _, tt := range KnownTemplateTypes() {
		_, ok := RendererFor(tt)
		assert.True(t, ok, "no renderer for %s", tt)
		assert.Equal(t, tt, ParseTemplateType(string(tt)))
	}
	assert.Len(t, registry, len(KnownTemplateTypes()))
	assert.Equal(t, TemplateTypeUnknown, ParseTemplateType("unknown"))
}

func TestTrendAnalysisEmptyTrendData(t *testing.T) {
	view := Dispatch(completed("trend_analysis", `{"trend_data": []}`))

	require.Len(t, view.Sections, 1)
	metrics := view.Sections[0]
	assert.Equal(t, SectionMetrics, metrics.Kind)
	require.Len(t, metrics.Cards, 3)
	assert.Equal(t, "Growth Rate", metrics.Cards[0].Label)
	assert.Equal(t, "0.0%", metrics.Cards[0].Value)
	assert.Equal(t, "N/A", metrics.Cards[1].Value)
	assert.Equal(t, "N/A", metrics.Cards[2].Value)
}

func TestTrendAnalysisTable(t *testing.T) {
	view := Dispatch(completed("trend_analysis", `{
		"growth_rate": 12.5,
		"trend_direction": "up",
		"peak_period": "2024-03",
		"trend_data": [{"period": "2024-02", "posts": 10, "engagement": 1200}, {"period": "2024-03", "posts": 14, "engagement": 1500, "change": 25}]
	}`))

	assert.Equal(t, []SectionKind{SectionMetrics, SectionTable}, kinds(view))
	assert.Equal(t, "12.5%", view.Sections[0].Cards[0].Value)
	assert.Equal(t, "up", view.Sections[0].Cards[1].Value)

	table := view.Sections[1].Table
	assert.Equal(t, []string{"Period", "Posts", "Engagement", "Change"}, table.Columns)
	assert.Equal(t, []string{"2024-03", "14", "1,500", "25.0%"}, table.Rows[1])
}

func TestUnknownTypeRendersOnlyInsightsAndRecommendations(t *testing.T) {
	view := Dispatch(completed("brand_health", `{
		"visualizations": {"a": {"type": "pie", "data": {"labels": ["x"], "values": [1]}}},
		"total_posts": 10,
		"insights": ["Engagement is up", {"title": "Peak", "description": "Evenings perform best"}],
		"recommendations": ["Post more video"]
	}`))

	assert.Equal(t, TemplateTypeUnknown, view.TemplateType)
	assert.Equal(t, []SectionKind{SectionList, SectionList}, kinds(view))
	assert.Equal(t, []string{"Engagement is up", "Peak: Evenings perform best"}, view.Sections[0].Items)
	assert.Equal(t, "recommendations", view.Sections[1].Key)

	view = Dispatch(completed("brand_health", `{"total_posts": 10}`))
	assert.Empty(t, view.Sections)
}

func TestKnownTypeOrder(t *testing.T) {
	view := Dispatch(completed("engagement_metrics", `{
		"visualizations": {
			"z_line": {"type": "line", "title": "Over time", "data": {"labels": ["mon"], "datasets": [{"label": "likes", "data": [3]}]}},
			"a_pie": {"type": "pie", "title": "Split", "data": {"labels": ["a"]}}
		},
		"total_engagement": 12345,
		"avg_engagement_rate": 4.3,
		"total_posts": 20,
		"top_performing_posts": [{"content": "hi", "platform": "instagram", "likes": 10}],
		"engagement_by_platform": {"instagram": {"total_engagement": 100, "posts": 5}},
		"insights": ["Good"]
	}`))

	assert.Equal(t, []SectionKind{
		SectionVisualization, SectionVisualization, SectionMetrics, SectionTable, SectionTable, SectionList,
	}, kinds(view))

	assert.Equal(t, "a_pie", view.Sections[0].Key)
	assert.Equal(t, visualization.ElementWarning, view.Sections[0].Visualization.Kind)
	assert.Equal(t, visualization.ElementChart, view.Sections[1].Visualization.Kind)

	cards := view.Sections[2].Cards
	assert.Equal(t, "12,345", cards[0].Value)
	assert.Equal(t, "4.3%", cards[1].Value)
	assert.Equal(t, "20", cards[2].Value)

	assert.Equal(t, []string{"instagram", "100", "", "5"}, view.Sections[4].Table.Rows[0])
}

func TestSentimentAndCompetitiveCards(t *testing.T) {
	view := Dispatch(completed("sentiment_analysis", `{"sentiment_distribution": {"positive": 60, "negative": 15}}`))
	require.Len(t, view.Sections, 1)
	values := []string{}
	for _, c := range view.Sections[0].Cards {
		values = append(values, c.Value)
	}
	assert.Equal(t, []string{"60.0%", "0.0%", "15.0%"}, values)

	view = Dispatch(completed("competitive_analysis", `{
		"competitors": [{"name": "Rival", "followers": 1000}, {"name": "Other"}],
		"brand_metrics": {"engagement_rate": 3.5, "share_of_voice": "40"}
	}`))
	require.Equal(t, []SectionKind{SectionMetrics, SectionTable}, kinds(view))
	assert.Equal(t, "2", view.Sections[0].Cards[0].Value)
	assert.Equal(t, "3.5%", view.Sections[0].Cards[1].Value)
	assert.Equal(t, "40.0%", view.Sections[0].Cards[2].Value)
	assert.Len(t, view.Sections[1].Table.Rows, 2)
}

func TestContentAndUserBehavior(t *testing.T) {
	view := Dispatch(completed("content_analysis", `{
		"total_posts": 40,
		"content_types": {"video": 25, "image": 15},
		"top_hashtags": [{"hashtag": "#launch", "count": 9}]
	}`))
	require.Equal(t, []SectionKind{SectionMetrics, SectionTable, SectionTable}, kinds(view))
	assert.Equal(t, "2", view.Sections[0].Cards[1].Value)
	assert.Equal(t, [][]string{{"image", "15", ""}, {"video", "25", ""}}, view.Sections[2].Table.Rows)

	view = Dispatch(completed("user_behavior", `{"active_users": 300, "avg_posts_per_user": 2.5, "peak_activity_hour": 9}`))
	require.Len(t, view.Sections, 1)
	assert.Equal(t, "2.50", view.Sections[0].Cards[1].Value)
	assert.Equal(t, "09:00", view.Sections[0].Cards[2].Value)
}

func TestMalformedResults(t *testing.T) {
	for _, raw := range []string{``, `null`, `[1,2]`, `"text"`, `{broken`} {
		view := Dispatch(completed("user_behavior", raw))
		require.Len(t, view.Sections, 1, raw)
		assert.Equal(t, SectionMetrics, view.Sections[0].Kind)
		assert.Equal(t, "N/A", view.Sections[0].Cards[2].Value)
	}
}

func TestNonCompletedReportsRenderNotice(t *testing.T) {
	for _, status := range []Status{StatusPending, StatusProcessing} {
		view := Dispatch(Report{TemplateType: "trend_analysis", Status: status, Results: json.RawMessage(`{"insights": ["x"]}`)})
		require.Len(t, view.Sections, 1)
		assert.Equal(t, "info", view.Sections[0].Notice.Severity)
		assert.Contains(t, view.Sections[0].Notice.Message, "Check back shortly")
	}

	view := Dispatch(Report{TemplateType: "trend_analysis", Status: StatusFailed, ErrorMessage: "No posts found"})
	require.Len(t, view.Sections, 1)
	assert.Equal(t, "error", view.Sections[0].Notice.Severity)
	assert.Equal(t, "No posts found", view.Sections[0].Notice.Message)
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "0", formatNumber(0))
	assert.Equal(t, "999", formatNumber(999))
	assert.Equal(t, "1,000", formatNumber(1000))
	assert.Equal(t, "-1,234,567", formatNumber(-1234567))
	assert.Equal(t, "3.14", formatNumber(3.14159))
}

func TestHumanize(t *testing.T) {
	assert.Equal(t, "Engagement Trend", humanize("engagement_trend"))
	assert.Equal(t, "Évolution Mensuelle", humanize("évolution_mensuelle"))
	assert.Equal(t, "Über Reach", humanize("über  reach"))
	assert.Equal(t, "", humanize("__"))
}
