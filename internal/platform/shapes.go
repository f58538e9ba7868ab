package platform

import (
	"encoding/json"
	"fmt"
)

// Each platform backend returns its folder listing in its own shape. The
// normalizers below map every shape onto DataSourceDescriptor.

// ==================== Instagram ====================

// instagram: bare array of folders
//
//	[{"id": 1, "name": "...", "created_at": "...", "post_count": 12}]
type instagramFolder struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	CreatedAt timestamp `json:"created_at"`
	PostCount count     `json:"post_count"`
}

func normalizeInstagram(body []byte) ([]DataSourceDescriptor, error) {
	var folders []instagramFolder
	if err := json.Unmarshal(body, &folders); err != nil {
		return nil, fmt.Errorf("failed to decode instagram folders: %w", err)
	}

	out := make([]DataSourceDescriptor, 0, len(folders))
	for _, f := range folders {
		out = append(out, DataSourceDescriptor{
			ID:        f.ID,
			Name:      f.Name,
			Type:      SourceTypeFolder,
			Platform:  PlatformInstagram,
			CreatedAt: f.CreatedAt.Time(),
			PostCount: int(f.PostCount),
		})
	}
	return out, nil
}

// ==================== Facebook ====================

// facebook: paginated envelope, each entry tagged by source
//
//	{"results": [{"id": 3, "name": "...", "created_at": "...", "posts_count": 4, "source": "batch_job"}]}
type facebookEnvelope struct {
	Results []facebookFolder `json:"results"`
}

type facebookFolder struct {
	ID         int       `json:"id"`
	Name       string    `json:"name"`
	CreatedAt  timestamp `json:"created_at"`
	PostsCount count     `json:"posts_count"`
	Source     string    `json:"source"`
}

func normalizeFacebook(body []byte) ([]DataSourceDescriptor, error) {
	var env facebookEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("failed to decode facebook folders: %w", err)
	}

	out := make([]DataSourceDescriptor, 0, len(env.Results))
	for _, f := range env.Results {
		sourceType := SourceTypeFolder
		if f.Source == string(SourceTypeBatchJob) {
			sourceType = SourceTypeBatchJob
		}
		out = append(out, DataSourceDescriptor{
			ID:        f.ID,
			Name:      f.Name,
			Type:      sourceType,
			Platform:  PlatformFacebook,
			CreatedAt: f.CreatedAt.Time(),
			PostCount: int(f.PostsCount),
		})
	}
	return out, nil
}

// ==================== TikTok ====================

// tiktok: folders and batch jobs in separate lists
//
//	{"folders": [{"id": 5, "name": "...", "created_at": "...", "video_count": 8}],
//	 "batch_jobs": [{"id": 9, "name": "...", "created_at": "...", "total_posts": 40}]}
type tiktokEnvelope struct {
	Folders   []tiktokFolder   `json:"folders"`
	BatchJobs []tiktokBatchJob `json:"batch_jobs"`
}

type tiktokFolder struct {
	ID         int       `json:"id"`
	Name       string    `json:"name"`
	CreatedAt  timestamp `json:"created_at"`
	VideoCount count     `json:"video_count"`
}

type tiktokBatchJob struct {
	ID         int       `json:"id"`
	Name       string    `json:"name"`
	CreatedAt  timestamp `json:"created_at"`
	TotalPosts count     `json:"total_posts"`
}

func normalizeTikTok(body []byte) ([]DataSourceDescriptor, error) {
	var env tiktokEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("failed to decode tiktok folders: %w", err)
	}

	out := make([]DataSourceDescriptor, 0, len(env.Folders)+len(env.BatchJobs))
	for _, f := range env.Folders {
		out = append(out, DataSourceDescriptor{
			ID:        f.ID,
			Name:      f.Name,
			Type:      SourceTypeFolder,
			Platform:  PlatformTikTok,
			CreatedAt: f.CreatedAt.Time(),
			PostCount: int(f.VideoCount),
		})
	}
	for _, j := range env.BatchJobs {
		out = append(out, DataSourceDescriptor{
			ID:        j.ID,
			Name:      j.Name,
			Type:      SourceTypeBatchJob,
			Platform:  PlatformTikTok,
			CreatedAt: j.CreatedAt.Time(),
			PostCount: int(j.TotalPosts),
		})
	}
	return out, nil
}

// ==================== LinkedIn ====================

// linkedin: bare array with a batch flag
//
//	[{"id": 2, "folder_name": "...", "created_at": "...", "post_count": 3, "is_batch": false}]
type linkedinFolder struct {
	ID         int       `json:"id"`
	FolderName string    `json:"folder_name"`
	CreatedAt  timestamp `json:"created_at"`
	PostCount  count     `json:"post_count"`
	IsBatch    bool      `json:"is_batch"`
}

func normalizeLinkedIn(body []byte) ([]DataSourceDescriptor, error) {
	var folders []linkedinFolder
	if err := json.Unmarshal(body, &folders); err != nil {
		return nil, fmt.Errorf("failed to decode linkedin folders: %w", err)
	}

	out := make([]DataSourceDescriptor, 0, len(folders))
	for _, f := range folders {
		sourceType := SourceTypeFolder
		if f.IsBatch {
			sourceType = SourceTypeBatchJob
		}
		out = append(out, DataSourceDescriptor{
			ID:        f.ID,
			Name:      f.FolderName,
			Type:      sourceType,
			Platform:  PlatformLinkedIn,
			CreatedAt: f.CreatedAt.Time(),
			PostCount: int(f.PostCount),
		})
	}
	return out, nil
}

// ==================== Source folders ====================

// sourceFolder is one entry of /api/track-accounts/source-folders/. The
// endpoint answers either with a bare array or a {"results": [...]} page.
type sourceFolder struct {
	ID         int       `json:"id"`
	Name       string    `json:"name"`
	FolderType string    `json:"folder_type"`
	Platform   string    `json:"platform"`
	PostCount  count     `json:"post_count"`
	CreatedAt  timestamp `json:"created_at"`
}

func normalizeSourceFolders(body []byte) ([]SourceFolder, error) {
	var items []sourceFolder
	if err := json.Unmarshal(body, &items); err != nil {
		var env struct {
			Results []sourceFolder `json:"results"`
		}
		if envErr := json.Unmarshal(body, &env); envErr != nil {
			return nil, fmt.Errorf("failed to decode source folders: %w", err)
		}
		items = env.Results
	}

	out := make([]SourceFolder, 0, len(items))
	for _, f := range items {
		folderType := FolderTypeCompany
		if f.FolderType == string(FolderTypeCompetitor) {
			folderType = FolderTypeCompetitor
		}
		out = append(out, SourceFolder{
			ID:         f.ID,
			Name:       f.Name,
			FolderType: folderType,
			Platform:   f.Platform,
			PostCount:  int(f.PostCount),
			CreatedAt:  f.CreatedAt.Time(),
		})
	}
	return out, nil
}

var normalizers = map[Platform]func([]byte) ([]DataSourceDescriptor, error){
	PlatformInstagram: normalizeInstagram,
	PlatformFacebook:  normalizeFacebook,
	PlatformTikTok:    normalizeTikTok,
	PlatformLinkedIn:  normalizeLinkedIn,
}
