package builder

import "encoding/json"

// Template names that take brand/competitor folders instead of data sources
const (
	TemplateCompetitiveAnalysis = "Competitive Analysis"
	TemplateSentimentAnalysis   = "Sentiment Analysis"
)

// Kind is the configuration shape a template expects
type Kind string

const (
	KindStandard    Kind = "standard"
	KindComparative Kind = "comparative"
)

// KindFor selects the configuration shape from the template name
func KindFor(templateName string) Kind {
	switch templateName {
	case TemplateCompetitiveAnalysis, TemplateSentimentAnalysis:
		return KindComparative
	default:
		return KindStandard
	}
}

// GenerationConfiguration is the configuration payload of a generate request.
// It is implemented by StandardConfiguration and ComparativeConfiguration only.
type GenerationConfiguration interface {
	Kind() Kind
	sealed()
}

// StandardConfiguration partitions selected data sources by type
type StandardConfiguration struct {
	BatchJobIDs []int `json:"batch_job_ids"`
	FolderIDs   []int `json:"folder_ids"`
}

func (StandardConfiguration) Kind() Kind { return KindStandard }
func (StandardConfiguration) sealed()    {}

// MarshalJSON always emits both keys, with [] for empty lists
func (c StandardConfiguration) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		BatchJobIDs []int `json:"batch_job_ids"`
		FolderIDs   []int `json:"folder_ids"`
	}{nonNil(c.BatchJobIDs), nonNil(c.FolderIDs)})
}

// ComparativeConfiguration carries brand and competitor source folders
type ComparativeConfiguration struct {
	BrandFolderIDs      []int `json:"brand_folder_ids"`
	CompetitorFolderIDs []int `json:"competitor_folder_ids"`
}

func (ComparativeConfiguration) Kind() Kind { return KindComparative }
func (ComparativeConfiguration) sealed()    {}

// MarshalJSON always emits both keys, with [] for empty lists
func (c ComparativeConfiguration) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		BrandFolderIDs      []int `json:"brand_folder_ids"`
		CompetitorFolderIDs []int `json:"competitor_folder_ids"`
	}{nonNil(c.BrandFolderIDs), nonNil(c.CompetitorFolderIDs)})
}

func nonNil(ids []int) []int {
	if ids == nil {
		return []int{}
	}
	return ids
}

// SelectionState is what the user picked in the generate dialog
type SelectionState struct {
	Title               string `json:"title"`
	SelectedDataSources []int  `json:"selected_data_sources"`
	BrandFolderIDs      []int  `json:"brand_folder_ids"`
	CompetitorFolderIDs []int  `json:"competitor_folder_ids"`
}
