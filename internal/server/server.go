// Package server assembles the HTTP server.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"

	"testhub/internal/api"
	"testhub/internal/config"
	"testhub/internal/redmine"
	"testhub/internal/sheets"
	"testhub/internal/store"
)

// Server is the HTTP server plus its wired dependencies.
type Server struct {
	router  *gin.Engine
	store   *store.Store
	redmine *redmine.Importer
	logger  *slog.Logger
}

// NewServer builds the server from configuration: it opens the store and
// wires the Sheets client and Redmine importer when they are configured.
func NewServer(cfg *config.AppConfig, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if !cfg.Server.DevMode {
		gin.SetMode(gin.ReleaseMode)
	}

	dataDir, err := config.EnsureDataDir(cfg)
	if err != nil {
		dataDir = cfg.Data.DataDir
	}

	sqliteStore, err := store.New(filepath.Join(dataDir, "testhub.db"))
	if err != nil {
		return nil, err
	}

	sheetsClient := buildSheetsClient(cfg, logger)

	var redmineImporter *redmine.Importer
	if cfg.Redmine.BaseURL != "" && sheetsClient != nil {
		redmineClient := redmine.NewClient(cfg.Redmine.BaseURL, cfg.Redmine.APIKey)
		redmineImporter = redmine.NewImporter(sqliteStore, redmineClient, sheetsClient, logger)
	}

	handler := api.NewHandler(sqliteStore, sheetsClient, redmineImporter, logger)

	s := &Server{
		router:  gin.Default(),
		store:   sqliteStore,
		redmine: redmineImporter,
		logger:  logger,
	}
	s.setupRoutes(handler)
	return s, nil
}

// buildSheetsClient creates the quota-aware Sheets client, or nil when
// no credential file is configured or usable.
func buildSheetsClient(cfg *config.AppConfig, logger *slog.Logger) sheets.Client {
	if cfg.Google.CredentialsFile == "" {
		return nil
	}
	google, err := sheets.NewGoogleClient(context.Background(), cfg.Google.CredentialsFile,
		sheets.WithLogger(logger))
	if err != nil {
		logger.Warn("google sheets disabled", "error", err)
		return nil
	}
	return sheets.NewRetryClient(google,
		sheets.WithCooldown(time.Duration(cfg.Import.QuotaCooldownSeconds)*time.Second),
		sheets.WithMaxRetries(uint64(cfg.Import.MaxRetries)),
		sheets.WithRetryLogger(logger))
}

func (s *Server) setupRoutes(handler *api.Handler) {
	// CORS
	s.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	group := s.router.Group("/api")
	{
		handler.RegisterRoutes(group)
	}
}

// Run starts the server.
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

// Close releases the server's resources.
func (s *Server) Close() error {
	return s.store.Close()
}

// GetStore exposes the store, used by the scheduler and tests.
func (s *Server) GetStore() *store.Store {
	return s.store
}

// RedmineImporter exposes the Redmine importer, or nil when not
// configured.
func (s *Server) RedmineImporter() *redmine.Importer {
	return s.redmine
}
