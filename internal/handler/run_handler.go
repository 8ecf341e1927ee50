package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"clinex/internal/port"
	"clinex/internal/task"
)

// RunHandler exposes stored extraction runs and their judgments, read-only.
type RunHandler struct {
	runRepo      port.RunRepository
	judgmentRepo port.JudgmentRepository
}

// NewRunHandler creates a new RunHandler.
func NewRunHandler(runRepo port.RunRepository, judgmentRepo port.JudgmentRepository) *RunHandler {
	return &RunHandler{runRepo: runRepo, judgmentRepo: judgmentRepo}
}

// List handles GET /api/v1/runs
func (h *RunHandler) List(c *gin.Context) {
	offset, limit := parsePagination(c)
	runs, total, err := h.runRepo.List(c.Request.Context(), offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondPaginated(c, runs, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/runs/:id
func (h *RunHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "run id must be a valid UUID")
		return
	}
	run, err := h.runRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, run)
}

// ListJudgments handles GET /api/v1/runs/:id/judgments
func (h *RunHandler) ListJudgments(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "run id must be a valid UUID")
		return
	}
	if _, err := h.runRepo.GetByID(c.Request.Context(), id); err != nil {
		HandleError(c, err)
		return
	}
	judgments, err := h.judgmentRepo.ListByRun(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, judgments)
}

// ListTasks handles GET /api/v1/tasks
func (h *RunHandler) ListTasks(c *gin.Context) {
	type taskInfo struct {
		Name  string   `json:"name"`
		Items []string `json:"items"`
	}
	var out []taskInfo
	for _, name := range task.Names() {
		t, err := task.Get(name)
		if err != nil {
			continue
		}
		out = append(out, taskInfo{Name: t.Name, Items: t.ItemNames()})
	}
	RespondOK(c, out)
}

func parsePagination(c *gin.Context) (offset, limit int) {
	offset, limit = 0, 20
	if s := c.Query("offset"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v >= 0 {
			offset = v
		}
	}
	if s := c.Query("limit"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 && v <= 100 {
			limit = v
		}
	}
	return offset, limit
}
