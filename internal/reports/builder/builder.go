// Package builder turns a generate-dialog selection into the configuration
// payload of a report generation request.
package builder

import (
	"socialpulse/report-portal-backend/internal/platform"
)

// BuildResult is the configuration for one submission. DroppedIDs lists
// selected data sources that are no longer in the source list.
type BuildResult struct {
	Kind          Kind                    `json:"kind"`
	Configuration GenerationConfiguration `json:"configuration"`
	DroppedIDs    []int                   `json:"dropped_ids,omitempty"`
}

// Build validates the selection and constructs exactly one configuration
// shape, chosen by template name. Standard selections are partitioned into
// batch jobs and folders by looking each id up in sources; the first match
// wins. Ids missing from sources are dropped and reported, not rejected,
// unless nothing survives.
func Build(templateName string, sel SelectionState, sources []platform.DataSourceDescriptor) (*BuildResult, error) {
	result := Validate(templateName, sel)
	if !result.IsValid {
		return nil, &InvalidSelectionError{Result: result}
	}

	if KindFor(templateName) == KindComparative {
		return &BuildResult{
			Kind: KindComparative,
			Configuration: ComparativeConfiguration{
				BrandFolderIDs:      dedupe(sel.BrandFolderIDs),
				CompetitorFolderIDs: dedupe(sel.CompetitorFolderIDs),
			},
		}, nil
	}

	byID := make(map[int]platform.SourceType, len(sources))
	for _, s := range sources {
		if _, seen := byID[s.ID]; !seen {
			byID[s.ID] = s.Type
		}
	}

	cfg := StandardConfiguration{
		BatchJobIDs: []int{},
		FolderIDs:   []int{},
	}
	var dropped []int
	for _, id := range dedupe(sel.SelectedDataSources) {
		sourceType, ok := byID[id]
		if !ok {
			dropped = append(dropped, id)
			continue
		}
		if sourceType == platform.SourceTypeBatchJob {
			cfg.BatchJobIDs = append(cfg.BatchJobIDs, id)
		} else {
			cfg.FolderIDs = append(cfg.FolderIDs, id)
		}
	}

	if len(cfg.BatchJobIDs)+len(cfg.FolderIDs) == 0 {
		stale := &ValidationResult{}
		stale.addError("selected_data_sources", "stale", "None of the selected data sources are available any more")
		return nil, &InvalidSelectionError{Result: stale}
	}

	return &BuildResult{
		Kind:          KindStandard,
		Configuration: cfg,
		DroppedIDs:    dropped,
	}, nil
}

func dedupe(ids []int) []int {
	seen := make(map[int]bool, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
