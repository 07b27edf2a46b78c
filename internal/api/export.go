package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"testhub/internal/exporter"
)

// ExportTestCases streams the task's test cases as an xlsx download.
func (h *Handler) ExportTestCases(c *gin.Context) {
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

	f, err := exporter.NewExporter(h.store).Export(task)
	if err != nil {
		h.serverError(c, err)
		return
	}
	defer f.Close()

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "test-cases.xlsx"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := f.Write(c.Writer); err != nil {
		h.logger.Error("export write failed", "taskId", taskID, "error", err)
	}
}
