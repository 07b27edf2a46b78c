package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"testhub/internal/importer"
	"testhub/internal/model"
	"testhub/internal/sheets"
)

type importRequest struct {
	URL          string `json:"url" binding:"required"`
	SheetFilter  string `json:"sheetFilter"`
	AllSheets    bool   `json:"allSheets"`
	WipeExisting bool   `json:"wipeExisting"`
}

func (r *importRequest) source() (model.ImportSource, error) {
	id := sheets.ExtractSpreadsheetID(r.URL)
	if id == "" {
		return model.ImportSource{}, errors.New("no spreadsheet id in url")
	}
	return model.ImportSource{
		SpreadsheetID: id,
		GID:           sheets.ExtractGID(r.URL),
		SheetFilter:   r.SheetFilter,
		AllSheets:     r.AllSheets,
		WipeExisting:  r.WipeExisting,
	}, nil
}

// ImportTestCases runs a test-case import from a Google Sheets URL into
// a task.
func (h *Handler) ImportTestCases(c *gin.Context) {
	if h.testCases == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "google sheets is not configured"})
		return
	}
	h.runSheetImport(c, func(task *model.Task, src model.ImportSource) (*model.ImportResult, error) {
		return h.testCases.Import(c.Request.Context(), task, src)
	})
}

// ImportBugs runs a bug import from a Google Sheets URL into a task.
func (h *Handler) ImportBugs(c *gin.Context) {
	if h.bugs == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "google sheets is not configured"})
		return
	}
	h.runSheetImport(c, func(task *model.Task, src model.ImportSource) (*model.ImportResult, error) {
		return h.bugs.Import(c.Request.Context(), task, src)
	})
}

func (h *Handler) runSheetImport(c *gin.Context, run func(*model.Task, model.ImportSource) (*model.ImportResult, error)) {
	taskID, ok := h.pathID(c)
	if !ok {
		return
	}
	task, err := h.store.GetTask(taskID)
	if err != nil {
		h.serverError(c, err)
		return
	}
	if task == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}

	var req importRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	src, err := req.source()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := run(task, src)
	if err != nil {
		h.importError(c, res, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// ImportWorkbook imports an uploaded xlsx workbook into a task. The
// form fields mirror importRequest minus the URL.
func (h *Handler) ImportWorkbook(c *gin.Context) {
	taskID, ok := h.pathID(c)
	if !ok {
		return
	}
	task, err := h.store.GetTask(taskID)
	if err != nil {
		h.serverError(c, err)
		return
	}
	if task == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file upload"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		h.serverError(c, err)
		return
	}
	defer file.Close()

	workbook, err := sheets.ReadWorkbook(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer workbook.Close()

	src := model.ImportSource{
		SpreadsheetID: fileHeader.Filename,
		SheetFilter:   c.PostForm("sheetFilter"),
		AllSheets:     c.PostForm("allSheets") == "true",
		WipeExisting:  c.PostForm("wipeExisting") == "true",
	}

	imp := importer.NewTestCaseImporter(h.store, workbook, h.logger)
	res, err := imp.Import(c.Request.Context(), task, src)
	if err != nil {
		h.importError(c, res, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// ListRedmineCandidates lists the project's Redmine testing issues.
func (h *Handler) ListRedmineCandidates(c *gin.Context) {
	project, ok := h.redmineProject(c)
	if !ok {
		return
	}
	candidates, err := h.redmine.ListCandidates(c.Request.Context(), project)
	if err != nil {
		h.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"candidates": candidates})
}

type redmineImportRequest struct {
	IssueIDs []int `json:"issueIds" binding:"required"`
}

// ImportRedmineIssue imports the given Redmine issues into the project.
func (h *Handler) ImportRedmineIssue(c *gin.Context) {
	project, ok := h.redmineProject(c)
	if !ok {
		return
	}
	var req redmineImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, err := h.redmine.ImportByIDs(c.Request.Context(), project, req.IssueIDs)
	if err != nil {
		h.importError(c, res, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// ImportAllRedmineIssues imports every testing issue of the project.
func (h *Handler) ImportAllRedmineIssues(c *gin.Context) {
	project, ok := h.redmineProject(c)
	if !ok {
		return
	}
	res, err := h.redmine.ImportAll(c.Request.Context(), project, nil)
	if err != nil {
		h.importError(c, res, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) redmineProject(c *gin.Context) (*model.Project, bool) {
	if h.redmine == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "redmine is not configured"})
		return nil, false
	}
	projectID, ok := h.pathID(c)
	if !ok {
		return nil, false
	}
	project, err := h.store.GetProject(projectID)
	if err != nil {
		h.serverError(c, err)
		return nil, false
	}
	if project == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
		return nil, false
	}
	return project, true
}

// importError maps a failed run to a response carrying the partial
// counters alongside the fatal error.
func (h *Handler) importError(c *gin.Context, res *model.ImportResult, err error) {
	status := http.StatusBadGateway
	if errors.Is(err, sheets.ErrQuotaExceeded) {
		status = http.StatusTooManyRequests
	}
	h.logger.Error("import failed", "path", c.FullPath(), "error", err)
	c.JSON(status, gin.H{"error": err.Error(), "result": res})
}
