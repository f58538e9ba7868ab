package platform

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// Platform identifies one of the social platform backends
type Platform string

const (
	PlatformInstagram Platform = "instagram"
	PlatformFacebook  Platform = "facebook"
	PlatformTikTok    Platform = "tiktok"
	PlatformLinkedIn  Platform = "linkedin"
)

// All lists the platforms in aggregation order
func All() []Platform {
	return []Platform{PlatformInstagram, PlatformFacebook, PlatformTikTok, PlatformLinkedIn}
}

// SourceType is the kind of content container a descriptor points at
type SourceType string

const (
	SourceTypeFolder   SourceType = "folder"
	SourceTypeBatchJob SourceType = "batch_job"
)

// FolderType classifies source folders for comparative templates
type FolderType string

const (
	FolderTypeCompany    FolderType = "company"
	FolderTypeCompetitor FolderType = "competitor"
)

// DataSourceDescriptor is the normalized shape of a platform folder or batch
// job. It only backs report source selection and is never persisted.
type DataSourceDescriptor struct {
	ID        int        `json:"id"`
	Name      string     `json:"name"`
	Type      SourceType `json:"type"`
	Platform  Platform   `json:"platform"`
	CreatedAt time.Time  `json:"created_at"`
	PostCount int        `json:"post_count"`
}

// SourceFolder is a tracked-account folder used by comparative templates
type SourceFolder struct {
	ID         int        `json:"id"`
	Name       string     `json:"name"`
	FolderType FolderType `json:"folder_type"`
	Platform   string     `json:"platform,omitempty"`
	PostCount  int        `json:"post_count"`
	CreatedAt  time.Time  `json:"created_at"`
}

// timestamp accepts the date formats the platform backends emit. Empty,
// null, or unparseable values decode to the zero time instead of failing
// the whole payload.
type timestamp time.Time

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func (t *timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*t = timestamp(time.Time{})
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		*t = timestamp(time.Time{})
		return nil
	}
	raw = strings.TrimSpace(raw)
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			*t = timestamp(parsed)
			return nil
		}
	}
	*t = timestamp(time.Time{})
	return nil
}

func (t timestamp) Time() time.Time {
	return time.Time(t)
}

// count decodes nullable integer counters
type count int

func (c *count) UnmarshalJSON(data []byte) error {
	var n *float64
	if err := json.Unmarshal(data, &n); err != nil || n == nil {
		*c = 0
		return nil
	}
	*c = count(*n)
	return nil
}
