package builder

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"socialpulse/report-portal-backend/internal/platform"
)

func sources() []platform.DataSourceDescriptor {
	now := time.Now()
	return []platform.DataSourceDescriptor{
		{ID: 11, Type: platform.SourceTypeFolder, Platform: platform.PlatformInstagram, CreatedAt: now},
		{ID: 12, Type: platform.SourceTypeFolder, Platform: platform.PlatformInstagram, CreatedAt: now},
		{ID: 21, Type: platform.SourceTypeBatchJob, Platform: platform.PlatformFacebook, CreatedAt: now},
		{ID: 31, Type: platform.SourceTypeFolder, Platform: platform.PlatformTikTok, CreatedAt: now},
	}
}

func keys(t *testing.T, cfg GenerationConfiguration) []string {
	t.Helper()
	raw, err := json.Marshal(cfg)
	require.NoError(t, err)

	var decoded map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &decoded))

	out := make([]string, 0, len(decoded))
	for k := range decoded {
		out = append(out, k)
	}
	return out
}

func TestBuildCompetitiveAnalysisKeys(t *testing.T) {
	selections := []SelectionState{
		{Title: "Q1", BrandFolderIDs: []int{1}, CompetitorFolderIDs: []int{2, 3}},
		{Title: "Q1", BrandFolderIDs: []int{1, 1}, CompetitorFolderIDs: []int{4}, SelectedDataSources: []int{11, 21}},
	}

	for _, sel := range selections {
		result, err := Build(TemplateCompetitiveAnalysis, sel, sources())
		require.NoError(t, err)

		assert.Equal(t, KindComparative, result.Kind)
		assert.ElementsMatch(t, []string{"brand_folder_ids", "competitor_folder_ids"}, keys(t, result.Configuration))
	}
}

func TestBuildSentimentAnalysisEmptyCompetitors(t *testing.T) {
	result, err := Build(TemplateSentimentAnalysis, SelectionState{Title: "Mood", BrandFolderIDs: []int{5}}, nil)
	require.NoError(t, err)

	raw, err := json.Marshal(result.Configuration)
	require.NoError(t, err)
	assert.JSONEq(t, `{"brand_folder_ids":[5],"competitor_folder_ids":[]}`, string(raw))
}

func TestBuildEngagementMetricsPartition(t *testing.T) {
	sel := SelectionState{Title: "Engagement", SelectedDataSources: []int{11, 12, 21}}

	result, err := Build("Engagement Metrics", sel, sources())
	require.NoError(t, err)

	cfg, ok := result.Configuration.(StandardConfiguration)
	require.True(t, ok)
	assert.Len(t, cfg.FolderIDs, 2)
	assert.Len(t, cfg.BatchJobIDs, 1)
	assert.Empty(t, result.DroppedIDs)
	assert.ElementsMatch(t, []string{"batch_job_ids", "folder_ids"}, keys(t, cfg))
}

func TestBuildDropsStaleSelection(t *testing.T) {
	sel := SelectionState{Title: "Stale", SelectedDataSources: []int{11, 99, 21, 98}}

	result, err := Build("Content Analysis", sel, sources())
	require.NoError(t, err)

	cfg := result.Configuration.(StandardConfiguration)
	assert.Equal(t, []int{11}, cfg.FolderIDs)
	assert.Equal(t, []int{21}, cfg.BatchJobIDs)
	assert.Equal(t, []int{99, 98}, result.DroppedIDs)
}

func TestBuildRejectsFullyStaleSelection(t *testing.T) {
	_, err := Build("Content Analysis", SelectionState{Title: "Stale", SelectedDataSources: []int{99}}, sources())
	require.ErrorIs(t, err, ErrInvalidSelection)

	var invalid *InvalidSelectionError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "stale", invalid.Result.Errors[0].Code)
}

func TestBuildFirstMatchWinsOnIDCollision(t *testing.T) {
	list := []platform.DataSourceDescriptor{
		{ID: 7, Type: platform.SourceTypeBatchJob, Platform: platform.PlatformLinkedIn},
		{ID: 7, Type: platform.SourceTypeFolder, Platform: platform.PlatformInstagram},
	}

	result, err := Build("Trend Analysis", SelectionState{Title: "T", SelectedDataSources: []int{7}}, list)
	require.NoError(t, err)

	cfg := result.Configuration.(StandardConfiguration)
	assert.Equal(t, []int{7}, cfg.BatchJobIDs)
	assert.Empty(t, cfg.FolderIDs)
}

func TestBuildInvalidSelectionIssuesNothing(t *testing.T) {
	result, err := Build(TemplateCompetitiveAnalysis, SelectionState{Title: "X", BrandFolderIDs: []int{1}}, nil)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrInvalidSelection)
	assert.Contains(t, err.Error(), "competitor folder")
}

func TestCanSubmit(t *testing.T) {
	tests := []struct {
		name     string
		template string
		sel      SelectionState
		expected bool
	}{
		{"standard empty", "Engagement Metrics", SelectionState{Title: "t"}, false},
		{"standard selected", "Engagement Metrics", SelectionState{Title: "t", SelectedDataSources: []int{1}}, true},
		{"standard ignores folders", "User Behavior", SelectionState{Title: "t", BrandFolderIDs: []int{1}}, false},
		{"competitive no brand", TemplateCompetitiveAnalysis, SelectionState{Title: "t", CompetitorFolderIDs: []int{2}}, false},
		{"competitive no competitor", TemplateCompetitiveAnalysis, SelectionState{Title: "t", BrandFolderIDs: []int{1}}, false},
		{"competitive both", TemplateCompetitiveAnalysis, SelectionState{Title: "t", BrandFolderIDs: []int{1}, CompetitorFolderIDs: []int{2}}, true},
		{"sentiment no brand", TemplateSentimentAnalysis, SelectionState{Title: "t", CompetitorFolderIDs: []int{2}}, false},
		{"sentiment brand only", TemplateSentimentAnalysis, SelectionState{Title: "t", BrandFolderIDs: []int{1}}, true},
		{"sentiment ignores data sources", TemplateSentimentAnalysis, SelectionState{Title: "t", SelectedDataSources: []int{1}}, false},
		{"blank title", "Engagement Metrics", SelectionState{Title: "  ", SelectedDataSources: []int{1}}, false},
		{"no template", "", SelectionState{Title: "t", SelectedDataSources: []int{1}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CanSubmit(tt.template, tt.sel))
		})
	}
}

func TestValidateReportsFields(t *testing.T) {
	result := Validate(TemplateCompetitiveAnalysis, SelectionState{BrandFolderIDs: []int{-1}})
	require.False(t, result.IsValid)

	fields := make([]string, 0, len(result.Errors))
	for _, e := range result.Errors {
		fields = append(fields, e.Field)
	}
	assert.ElementsMatch(t, []string{"title", "competitor_folder_ids", "brand_folder_ids[0]"}, fields)
}
