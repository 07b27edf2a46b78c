// Package api exposes the import pipeline over HTTP.
package api

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"testhub/internal/importer"
	"testhub/internal/redmine"
	"testhub/internal/sheets"
	"testhub/internal/store"
)

// Handler holds the API dependencies.
type Handler struct {
	store     *store.Store
	sheets    sheets.Client
	testCases *importer.TestCaseImporter
	bugs      *importer.BugImporter
	redmine   *redmine.Importer
	logger    *slog.Logger
}

// NewHandler wires the API handler. sheetsClient may be nil when no
// Google credential is configured; redmineImporter may be nil when no
// Redmine instance is configured. The corresponding endpoints then
// answer 503.
func NewHandler(st *store.Store, sheetsClient sheets.Client, redmineImporter *redmine.Importer, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{
		store:   st,
		sheets:  sheetsClient,
		redmine: redmineImporter,
		logger:  logger,
	}
	if sheetsClient != nil {
		h.testCases = importer.NewTestCaseImporter(st, sheetsClient, logger)
		h.bugs = importer.NewBugImporter(st, sheetsClient, logger)
	}
	return h
}

// RegisterRoutes registers the API routes.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/status", h.GetStatus)

	router.GET("/projects", h.ListProjects)
	router.POST("/projects", h.CreateProject)
	router.GET("/projects/:id/tasks", h.ListTasks)
	router.GET("/projects/:id/import-runs", h.ListImportRuns)

	router.GET("/tasks/:id", h.GetTask)
	router.GET("/tasks/:id/test-cases", h.ListTestCases)
	router.GET("/tasks/:id/bugs", h.ListBugs)

	router.GET("/tasks/:id/export", h.ExportTestCases)

	router.POST("/tasks/:id/import/test-cases", h.ImportTestCases)
	router.POST("/tasks/:id/import/bugs", h.ImportBugs)
	router.POST("/tasks/:id/import/workbook", h.ImportWorkbook)

	router.GET("/projects/:id/redmine/candidates", h.ListRedmineCandidates)
	router.POST("/projects/:id/redmine/import", h.ImportRedmineIssue)
	router.POST("/projects/:id/redmine/import-all", h.ImportAllRedmineIssues)
}
