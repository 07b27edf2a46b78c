package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"testhub/internal/model"
)

// GetStatus reports liveness and configured integrations.
func (h *Handler) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":            "ok",
		"sheetsConfigured":  h.sheets != nil,
		"redmineConfigured": h.redmine != nil,
	})
}

// ListProjects returns every project.
func (h *Handler) ListProjects(c *gin.Context) {
	projects, err := h.store.ListProjects()
	if err != nil {
		h.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": projects})
}

type createProjectRequest struct {
	Name               string `json:"name" binding:"required"`
	RedmineProjectID   string `json:"redmineProjectId"`
	DailyImportEnabled bool   `json:"dailyImportEnabled"`
}

// CreateProject creates a project.
func (h *Handler) CreateProject(c *gin.Context) {
	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	project := &model.Project{
		Name:               req.Name,
		RedmineProjectID:   req.RedmineProjectID,
		DailyImportEnabled: req.DailyImportEnabled,
	}
	if err := h.store.CreateProject(project); err != nil {
		h.serverError(c, err)
		return
	}
	c.JSON(http.StatusCreated, project)
}

// ListTasks returns the top-level tasks of a project.
func (h *Handler) ListTasks(c *gin.Context) {
	projectID, ok := h.pathID(c)
	if !ok {
		return
	}
	tasks, err := h.store.ListTasks(projectID)
	if err != nil {
		h.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

// GetTask returns one task with its subtasks.
func (h *Handler) GetTask(c *gin.Context) {
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
	subtasks, err := h.store.ListSubtasks(taskID)
	if err != nil {
		h.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": task, "subtasks": subtasks})
}

// ListTestCases returns the test cases of a task with steps and device
// results.
func (h *Handler) ListTestCases(c *gin.Context) {
	taskID, ok := h.pathID(c)
	if !ok {
		return
	}
	cases, err := h.store.ListTestCases(taskID)
	if err != nil {
		h.serverError(c, err)
		return
	}

	type caseDetail struct {
		*model.TestCase
		Contents []*model.TestStepContent `json:"contents"`
		Results  []*model.TestResult      `json:"results"`
	}
	details := make([]caseDetail, 0, len(cases))
	for _, tc := range cases {
		contents, err := h.store.ListStepContents(tc.ID)
		if err != nil {
			h.serverError(c, err)
			return
		}
		results, err := h.store.ListTestResults(tc.ID)
		if err != nil {
			h.serverError(c, err)
			return
		}
		details = append(details, caseDetail{TestCase: tc, Contents: contents, Results: results})
	}
	c.JSON(http.StatusOK, gin.H{"testCases": details})
}

// ListBugs returns the bugs of a task.
func (h *Handler) ListBugs(c *gin.Context) {
	taskID, ok := h.pathID(c)
	if !ok {
		return
	}
	bugs, err := h.store.ListBugs(taskID)
	if err != nil {
		h.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bugs": bugs})
}

// ListImportRuns returns the recent import runs of a project.
func (h *Handler) ListImportRuns(c *gin.Context) {
	projectID, ok := h.pathID(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	runs, err := h.store.ListImportRuns(projectID, limit)
	if err != nil {
		h.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

func (h *Handler) pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func (h *Handler) serverError(c *gin.Context, err error) {
	h.logger.Error("request failed", "path", c.FullPath(), "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
