// Package sources builds the candidate data source list for report generation
// by fanning out over every platform backend.
package sources

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"socialpulse/report-portal-backend/internal/platform"
)

// WarningUnavailable is raised when no platform could be reached
const WarningUnavailable = "Unable to load data sources"

// FolderLister lists the folders and batch jobs of one platform
type FolderLister interface {
	Folders(ctx context.Context, p platform.Platform, projectID *int) ([]platform.DataSourceDescriptor, error)
}

// Aggregation is the merged result of one fan-out
type Aggregation struct {
	Sources         []platform.DataSourceDescriptor `json:"sources"`
	FailedPlatforms []platform.Platform             `json:"failed_platforms"`
	Warning         string                          `json:"warning,omitempty"`
}

// Aggregator merges data sources across platforms
type Aggregator struct {
	lister    FolderLister
	platforms []platform.Platform
	logger    *zap.Logger
}

// NewAggregator creates an aggregator over every known platform
func NewAggregator(lister FolderLister, logger *zap.Logger) *Aggregator {
	return &Aggregator{
		lister:    lister,
		platforms: platform.All(),
		logger:    logger,
	}
}

// Aggregate queries every platform concurrently and waits for all of them.
// A failing platform is logged and contributes nothing. Sources come back
// newest first; ties keep platform order. If ctx ends before the join, the
// partial result is discarded and ctx.Err() is returned.
func (a *Aggregator) Aggregate(ctx context.Context, projectID *int) (*Aggregation, error) {
	var wg sync.WaitGroup
	var mu sync.Mutex
	var errs []error

	perPlatform := make([][]platform.DataSourceDescriptor, len(a.platforms))
	failed := make([]bool, len(a.platforms))

	wg.Add(len(a.platforms))
	for i, p := range a.platforms {
		i, p := i, p
		go func() {
			defer wg.Done()
			found, err := a.lister.Folders(ctx, p, projectID)
			if err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", p, err))
				failed[i] = true
				mu.Unlock()
				return
			}
			perPlatform[i] = found
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-done:
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	agg := &Aggregation{
		Sources:         []platform.DataSourceDescriptor{},
		FailedPlatforms: []platform.Platform{},
	}
	for i, p := range a.platforms {
		if failed[i] {
			agg.FailedPlatforms = append(agg.FailedPlatforms, p)
			continue
		}
		agg.Sources = append(agg.Sources, perPlatform[i]...)
	}

	if len(errs) > 0 {
		a.logger.Warn("Some platforms failed to list data sources", zap.Errors("errors", errs))
	}
	if len(agg.FailedPlatforms) == len(a.platforms) {
		agg.Warning = WarningUnavailable
	}

	SortNewestFirst(agg.Sources)
	return agg, nil
}

// SortNewestFirst orders sources by created_at descending, keeping the
// relative order of equal timestamps
func SortNewestFirst(list []platform.DataSourceDescriptor) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
}
