package reports

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"socialpulse/report-portal-backend/internal/reports/render"
)

func newSubmission(reportID, templateID int, trigger SubmissionTrigger, at time.Time) *SubmissionRecord {
	return &SubmissionRecord{
		ID:           uuid.New(),
		ReportID:     reportID,
		TemplateID:   templateID,
		TemplateName: "Engagement Metrics",
		TemplateType: string(render.TemplateTypeEngagementMetrics),
		Title:        "Weekly",
		Status:       render.StatusPending,
		Trigger:      trigger,
		SubmittedAt:  at,
	}
}

func TestMemoryRepositoryListsNewestFirst(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := 1; i <= 3; i++ {
		require.NoError(t, repo.CreateSubmission(ctx, newSubmission(i, 1, SubmissionTriggerManual, base.Add(time.Duration(i)*time.Hour))))
	}

	records, total, err := repo.ListSubmissions(ctx, &SubmissionFilters{})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, records, 3)
	assert.Equal(t, []int{3, 2, 1}, []int{records[0].ReportID, records[1].ReportID, records[2].ReportID})
}

func TestMemoryRepositoryFiltersAndPages(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	project := 9

	for i := 1; i <= 5; i++ {
		rec := newSubmission(i, 1, SubmissionTriggerManual, base.Add(time.Duration(i)*time.Minute))
		if i%2 == 0 {
			rec.Trigger = SubmissionTriggerScheduled
			rec.ProjectID = &project
		}
		require.NoError(t, repo.CreateSubmission(ctx, rec))
	}

	scheduled := SubmissionTriggerScheduled
	records, total, err := repo.ListSubmissions(ctx, &SubmissionFilters{Trigger: &scheduled})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, records, 2)

	records, total, err = repo.ListSubmissions(ctx, &SubmissionFilters{ProjectID: &project, Page: 2, PageSize: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, records, 1)
	assert.Equal(t, 2, records[0].ReportID)

	records, total, err = repo.ListSubmissions(ctx, &SubmissionFilters{Page: 10})
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Empty(t, records)
}

func TestMemoryRepositoryRejectsDuplicateID(t *testing.T) {
	repo := NewMemoryRepository()
	rec := newSubmission(1, 1, SubmissionTriggerManual, time.Now())

	require.NoError(t, repo.CreateSubmission(context.Background(), rec))
	assert.Error(t, repo.CreateSubmission(context.Background(), rec))
}

func TestNormalizePage(t *testing.T) {
	page, size, offset := normalizePage(&SubmissionFilters{})
	assert.Equal(t, 1, page)
	assert.Equal(t, defaultPageSize, size)
	assert.Equal(t, 0, offset)

	page, size, offset = normalizePage(&SubmissionFilters{Page: 3, PageSize: 500})
	assert.Equal(t, 3, page)
	assert.Equal(t, maxPageSize, size)
	assert.Equal(t, 2*maxPageSize, offset)

	page, size, offset = normalizePage(&SubmissionFilters{Page: 1 << 62, PageSize: 100})
	assert.Equal(t, 100, size)
	assert.Equal(t, math.MaxInt32/100+1, page)
	assert.GreaterOrEqual(t, offset, 0)
	assert.LessOrEqual(t, offset, math.MaxInt32)
}

func TestMemoryRepositoryHugePageIsEmpty(t *testing.T) {
	repo := NewMemoryRepository()
	require.NoError(t, repo.CreateSubmission(context.Background(), newSubmission(1, 1, SubmissionTriggerManual, time.Now())))

	records, total, err := repo.ListSubmissions(context.Background(), &SubmissionFilters{Page: 1 << 62, PageSize: 100})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Empty(t, records)
}
