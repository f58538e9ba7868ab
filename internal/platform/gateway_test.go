package platform

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"socialpulse/report-portal-backend/internal/session"
	"socialpulse/report-portal-backend/internal/upstream"
)

func newTestGateway(t *testing.T, handler http.HandlerFunc) *Gateway {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewGateway(upstream.NewClient(server.URL, 5*time.Second, "test"), zap.NewNop())
}

func TestGatewayNormalizesEveryShape(t *testing.T) {
	bodies := map[string]string{
		"/api/instagram-data/folders/": `[{"id": 1, "name": "IG launch", "created_at": "2024-03-01T10:00:00Z", "post_count": 12}]`,
		"/api/facebook-data/folders/":  `{"results": [{"id": 3, "name": "FB scrape", "created_at": "2024-03-02T10:00:00.123456Z", "posts_count": 4, "source": "batch_job"}, {"id": 4, "name": "FB folder", "created_at": null, "posts_count": null}]}`,
		"/api/tiktok-data/folders/":    `{"folders": [{"id": 5, "name": "TT", "created_at": "2024-03-03", "video_count": 8}], "batch_jobs": [{"id": 9, "name": "TT job", "created_at": "2024-03-04 08:00:00", "total_posts": 40}]}`,
		"/api/linkedin-data/folders/":  `[{"id": 2, "folder_name": "LI", "created_at": "garbage", "post_count": 3, "is_batch": true}]`,
	}

	g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "7", r.URL.Query().Get("project"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(bodies[r.URL.Path]))
	})

	project := 7
	ctx := context.Background()

	ig, err := g.Folders(ctx, PlatformInstagram, &project)
	require.NoError(t, err)
	require.Len(t, ig, 1)
	assert.Equal(t, DataSourceDescriptor{
		ID: 1, Name: "IG launch", Type: SourceTypeFolder, Platform: PlatformInstagram,
		CreatedAt: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), PostCount: 12,
	}, ig[0])

	fb, err := g.Folders(ctx, PlatformFacebook, &project)
	require.NoError(t, err)
	require.Len(t, fb, 2)
	assert.Equal(t, SourceTypeBatchJob, fb[0].Type)
	assert.Equal(t, SourceTypeFolder, fb[1].Type)
	assert.True(t, fb[1].CreatedAt.IsZero())
	assert.Zero(t, fb[1].PostCount)

	tt, err := g.Folders(ctx, PlatformTikTok, &project)
	require.NoError(t, err)
	require.Len(t, tt, 2)
	assert.Equal(t, 8, tt[0].PostCount)
	assert.Equal(t, SourceTypeBatchJob, tt[1].Type)
	assert.Equal(t, 40, tt[1].PostCount)

	li, err := g.Folders(ctx, PlatformLinkedIn, &project)
	require.NoError(t, err)
	require.Len(t, li, 1)
	assert.Equal(t, "LI", li[0].Name)
	assert.Equal(t, SourceTypeBatchJob, li[0].Type)
	assert.True(t, li[0].CreatedAt.IsZero())
}

func TestGatewayAttachesSessionToken(t *testing.T) {
	g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Token opaque", r.Header.Get("Authorization"))
		assert.Empty(t, r.URL.Query().Get("project"))
		_, _ = w.Write([]byte(`[]`))
	})

	ctx := session.NewContext(context.Background(), &session.Session{Token: "opaque"})
	sources, err := g.Folders(ctx, PlatformInstagram, nil)
	require.NoError(t, err)
	assert.Empty(t, sources)
}

func TestGatewayErrors(t *testing.T) {
	g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/instagram-data/folders/":
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"detail": "Not allowed"}`))
		default:
			_, _ = w.Write([]byte(`{not json`))
		}
	})

	_, err := g.Folders(context.Background(), PlatformInstagram, nil)
	var apiErr *upstream.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Equal(t, "Not allowed", apiErr.Message)

	_, err = g.Folders(context.Background(), PlatformFacebook, nil)
	assert.Error(t, err)

	_, err = g.Folders(context.Background(), Platform("myspace"), nil)
	assert.Error(t, err)
}

func TestGatewaySourceFolders(t *testing.T) {
	g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/track-accounts/source-folders/", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("for_reports"))
		assert.Equal(t, "3", r.URL.Query().Get("project"))
		_, _ = w.Write([]byte(`{"results": [
			{"id": 1, "name": "Our brand", "folder_type": "company", "platform": "instagram", "post_count": 10},
			{"id": 2, "name": "Rival", "folder_type": "competitor", "post_count": 5},
			{"id": 3, "name": "Untyped"}
		]}`))
	})

	project := 3
	folders, err := g.SourceFolders(context.Background(), &project)
	require.NoError(t, err)
	require.Len(t, folders, 3)
	assert.Equal(t, FolderTypeCompany, folders[0].FolderType)
	assert.Equal(t, FolderTypeCompetitor, folders[1].FolderType)
	assert.Equal(t, FolderTypeCompany, folders[2].FolderType)
}
