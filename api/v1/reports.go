package v1

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"socialpulse/report-portal-backend/internal/config"
	"socialpulse/report-portal-backend/internal/platform"
	"socialpulse/report-portal-backend/internal/reports"
	"socialpulse/report-portal-backend/internal/session"
	"socialpulse/report-portal-backend/internal/upstream"
	"socialpulse/report-portal-backend/pkg/storage"
)

// ReportsAPI holds the reports API dependencies
type ReportsAPI struct {
	Handler    *reports.Handler
	Service    *reports.Service
	Repository reports.Repository
	Sessions   *session.Manager

	db *sqlx.DB
}

// SetupReportsAPI sets up the reports API with all dependencies. The
// submission log falls back to memory when no database is configured.
func SetupReportsAPI(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*ReportsAPI, error) {
	api := &ReportsAPI{}

	// Create repository
	if cfg.Database.Enabled() {
		db, err := connectDatabase(ctx, &cfg.Database, logger)
		if err != nil {
			return nil, err
		}
		repo := reports.NewPostgresRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, err
		}
		api.db = db
		api.Repository = repo
	} else {
		logger.Warn("No database configured, submission log is kept in memory")
		api.Repository = reports.NewMemoryRepository()
	}

	// Create download archive
	archive, err := storage.New(ctx, storage.Options{
		Sink:            cfg.Downloads.Sink,
		LocalDir:        cfg.Downloads.LocalDir,
		Bucket:          cfg.Downloads.S3Bucket,
		Region:          cfg.Downloads.S3Region,
		Prefix:          cfg.Downloads.S3Prefix,
		Endpoint:        cfg.Downloads.S3Endpoint,
		AccessKeyID:     cfg.Downloads.S3AccessKeyID,
		SecretAccessKey: cfg.Downloads.S3SecretAccessKey,
	})
	if err != nil {
		api.Close()
		return nil, fmt.Errorf("failed to set up download archive: %w", err)
	}

	// Create service
	httpClient := upstream.NewClient(cfg.Gateway.BaseURL, cfg.Gateway.Timeout, cfg.Gateway.UserAgent)
	api.Service = reports.NewService(
		platform.NewGateway(httpClient, logger),
		reports.NewClient(httpClient, logger),
		api.Repository,
		archive,
		cfg.Cache.TemplateTTL,
		logger,
	)

	// Create handlers
	api.Handler = reports.NewHandler(api.Service, logger)
	api.Sessions = session.NewManager(cfg.Server.SessionIdleTTL, logger)

	return api, nil
}

// RegisterReportsRoutes registers the session and reports routes on the
// router group. Report routes require a session.
func RegisterReportsRoutes(router *gin.RouterGroup, api *ReportsAPI, logger *zap.Logger) {
	router.Use(session.Middleware(api.Sessions))
	session.NewHandler(api.Sessions, logger).RegisterRoutes(router)

	protected := router.Group("")
	protected.Use(session.RequireSession())
	api.Handler.RegisterRoutes(protected)
}

// Health reports the live session count and template cache usage
func (a *ReportsAPI) Health() gin.H {
	return gin.H{
		"sessions":       a.Sessions.Count(),
		"template_cache": a.Service.TemplateCacheStats(),
		"database":       a.db != nil,
	}
}

// Close releases the database and background workers
func (a *ReportsAPI) Close() {
	if a.Sessions != nil {
		a.Sessions.Stop()
	}
	if a.Service != nil {
		a.Service.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
}

func connectDatabase(ctx context.Context, cfg *config.DatabaseConfig, logger *zap.Logger) (*sqlx.DB, error) {
	logger.Info("Connecting to database",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("db_name", cfg.DBName))

	db, err := sqlx.ConnectContext(ctx, "postgres", cfg.GetDatabaseURL())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.MaxLifetime)

	return db, nil
}
