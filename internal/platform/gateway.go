// Package platform reads folder and batch job listings from the per-platform
// backends and normalizes them into report data sources.
package platform

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"socialpulse/report-portal-backend/internal/upstream"
)

// Gateway lists content containers from the platform backends
type Gateway struct {
	client *resty.Client
	logger *zap.Logger
}

// NewGateway creates a new platform gateway
func NewGateway(client *resty.Client, logger *zap.Logger) *Gateway {
	return &Gateway{
		client: client,
		logger: logger,
	}
}

// FoldersPath is the listing endpoint for a platform
func FoldersPath(p Platform) string {
	return fmt.Sprintf("/api/%s-data/folders/", p)
}

// Folders fetches and normalizes one platform's folders and batch jobs
func (g *Gateway) Folders(ctx context.Context, p Platform, projectID *int) ([]DataSourceDescriptor, error) {
	normalize, ok := normalizers[p]
	if !ok {
		return nil, fmt.Errorf("unsupported platform: %s", p)
	}

	res, err := upstream.Request(ctx, g.client).
		SetQueryParams(upstream.ProjectQuery(projectID)).
		Get(FoldersPath(p))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s folders: %w", p, err)
	}
	if err := upstream.CheckResponse(res); err != nil {
		return nil, err
	}

	sources, err := normalize(res.Body())
	if err != nil {
		return nil, err
	}

	g.logger.Debug("Fetched platform folders",
		zap.String("platform", string(p)),
		zap.Int("count", len(sources)))

	return sources, nil
}

// SourceFolders fetches the company and competitor folders of a project
func (g *Gateway) SourceFolders(ctx context.Context, projectID *int) ([]SourceFolder, error) {
	params := upstream.ProjectQuery(projectID)
	params["for_reports"] = "true"

	res, err := upstream.Request(ctx, g.client).
		SetQueryParams(params).
		Get("/api/track-accounts/source-folders/")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch source folders: %w", err)
	}
	if err := upstream.CheckResponse(res); err != nil {
		return nil, err
	}

	return normalizeSourceFolders(res.Body())
}
