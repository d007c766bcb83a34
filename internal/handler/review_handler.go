package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/leetcurve/backend/internal/domain"
	"github.com/leetcurve/backend/internal/service"
)

// ReviewHandler exposes the review schedule over REST
type ReviewHandler struct {
	reviewService *service.ReviewService
	refresher     *service.Refresher
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(reviewService *service.ReviewService, refresher *service.Refresher) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
		refresher:     refresher,
	}
}

// RegisterRoutes mounts the REST routes on group
func (h *ReviewHandler) RegisterRoutes(group *gin.RouterGroup) {
	group.POST("/submissions", h.IngestSubmission)
	group.GET("/queue", h.GetReviewQueue)
	group.GET("/badge", h.GetBadge)

	problems := group.Group("/problems")
	{
		problems.GET("", h.GetAllProblems)
		problems.POST("", h.AddProblem)
		problems.GET("/:slug", h.GetProblem)
		problems.PATCH("/:slug/note", h.UpdateNote)
		problems.POST("/:slug/reset", h.ResetProblem)
		problems.DELETE("/:slug", h.DeleteProblem)
	}

	group.GET("/mastered", h.GetMasteredProblems)
	group.GET("/recent", h.GetRecentActivity)
	group.GET("/activity", h.GetActivityLog)
	group.GET("/stats", h.GetStats)
	group.GET("/stages", h.GetStagesInfo)

	group.GET("/settings", h.GetSettings)
	group.PUT("/settings", h.SaveSettings)

	group.GET("/export", h.ExportData)
	group.POST("/import", h.ImportData)
	group.DELETE("/data", h.ClearAllData)
}

// IngestSubmission applies an accepted submission
// POST /api/submissions
func (h *ReviewHandler) IngestSubmission(c *gin.Context) {
	var event domain.SubmissionEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		respondError(c, domain.InvalidInput("invalid request body: %v", err))
		return
	}

	result, err := h.reviewService.IngestAcceptedSubmission(c.Request.Context(), &event)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, domain.Result{Success: true, Message: result.Message, Data: result})
}

// GetReviewQueue returns the due queue, highest priority first
// GET /api/queue
func (h *ReviewHandler) GetReviewQueue(c *gin.Context) {
	queue, err := h.reviewService.GetReviewQueue(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, queue)
}

// GetBadge returns the queue counts as of the last change or rescore
// GET /api/badge
func (h *ReviewHandler) GetBadge(c *gin.Context) {
	respondData(c, http.StatusOK, h.refresher.Latest())
}

// GetAllProblems returns every tracked problem keyed by slug
// GET /api/problems
func (h *ReviewHandler) GetAllProblems(c *gin.Context) {
	problems, err := h.reviewService.GetAllProblems(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, problems)
}

// AddProblem tracks a problem entered by hand
// POST /api/problems
func (h *ReviewHandler) AddProblem(c *gin.Context) {
	var req domain.AddProblemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, domain.InvalidInput("invalid request body: %v", err))
		return
	}

	problem, err := h.reviewService.AddProblem(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusCreated, problem)
}

// GetProblem returns a single problem
// GET /api/problems/:slug
func (h *ReviewHandler) GetProblem(c *gin.Context) {
	problem, err := h.reviewService.GetProblem(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, problem)
}

// UpdateNote edits note and code
// PATCH /api/problems/:slug/note
func (h *ReviewHandler) UpdateNote(c *gin.Context) {
	var req domain.UpdateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, domain.InvalidInput("invalid request body: %v", err))
		return
	}
	req.Slug = c.Param("slug")

	if err := h.reviewService.UpdateNote(c.Request.Context(), &req); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, "Note saved")
}

// ResetProblem restarts a problem from the first stage
// POST /api/problems/:slug/reset
func (h *ReviewHandler) ResetProblem(c *gin.Context) {
	problem, err := h.reviewService.ResetProblem(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, problem)
}

// DeleteProblem stops tracking a problem
// DELETE /api/problems/:slug
func (h *ReviewHandler) DeleteProblem(c *gin.Context) {
	if err := h.reviewService.DeleteProblem(c.Request.Context(), c.Param("slug")); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, "Problem deleted")
}

// GetMasteredProblems lists mastered problems
// GET /api/mastered
func (h *ReviewHandler) GetMasteredProblems(c *gin.Context) {
	problems, err := h.reviewService.GetMasteredProblems(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, problems)
}

// GetRecentActivity lists problems touched in the last week
// GET /api/recent
func (h *ReviewHandler) GetRecentActivity(c *gin.Context) {
	problems, err := h.reviewService.GetRecentActivity(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, problems)
}

// GET /api/activity
func (h *ReviewHandler) GetActivityLog(c *gin.Context) {
	log, err := h.reviewService.GetActivityLog(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, log)
}

// GET /api/stats
func (h *ReviewHandler) GetStats(c *gin.Context) {
	stats, err := h.reviewService.GetStats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, stats)
}

// GET /api/stages
func (h *ReviewHandler) GetStagesInfo(c *gin.Context) {
	respondData(c, http.StatusOK, h.reviewService.GetStagesInfo())
}

// GET /api/settings
func (h *ReviewHandler) GetSettings(c *gin.Context) {
	settings, err := h.reviewService.GetSettings(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, settings)
}

// SaveSettings replaces the tag weights
// PUT /api/settings
func (h *ReviewHandler) SaveSettings(c *gin.Context) {
	var settings domain.Settings
	if err := c.ShouldBindJSON(&settings); err != nil {
		respondError(c, domain.InvalidInput("invalid request body: %v", err))
		return
	}

	summary, err := h.reviewService.SaveSettings(c.Request.Context(), &settings)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, summary)
}

// ExportData returns the full snapshot document
// GET /api/export
func (h *ReviewHandler) ExportData(c *gin.Context) {
	snapshot, err := h.reviewService.ExportData(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, snapshot)
}

// ImportData replaces all state with a snapshot document
// POST /api/import
func (h *ReviewHandler) ImportData(c *gin.Context) {
	var snapshot domain.Snapshot
	if err := c.ShouldBindJSON(&snapshot); err != nil {
		respondError(c, domain.NewDomainError(domain.ErrInvalidSnapshot, "invalid snapshot: "+err.Error()))
		return
	}

	if _, err := h.reviewService.ImportData(c.Request.Context(), &snapshot); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, "Data imported")
}

// ClearAllData wipes every problem, setting and activity entry
// DELETE /api/data
func (h *ReviewHandler) ClearAllData(c *gin.Context) {
	if err := h.reviewService.ClearAllData(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, "All data cleared")
}
