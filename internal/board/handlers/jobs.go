package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/openhire/hireboard/internal/board/auth"
	"github.com/openhire/hireboard/internal/board/db"
	"github.com/openhire/hireboard/internal/board/models"
)

type jobRequest struct {
	Title               string     `json:"title" binding:"required"`
	Description         string     `json:"description"`
	Location            string     `json:"location"`
	JobType             string     `json:"job_type"`
	ExperienceLevel     string     `json:"experience_level"`
	SalaryMin           int        `json:"salary_min"`
	SalaryMax           int        `json:"salary_max"`
	SalaryCurrency      string     `json:"salary_currency"`
	Requirements        []string   `json:"requirements"`
	Benefits            []string   `json:"benefits"`
	Tags                []string   `json:"tags"`
	ApplicationDeadline *time.Time `json:"application_deadline"`
}

type jobUpdateRequest struct {
	Title               *string           `json:"title"`
	Description         *string           `json:"description"`
	Location            *string           `json:"location"`
	JobType             *string           `json:"job_type"`
	ExperienceLevel     *string           `json:"experience_level"`
	SalaryMin           *int              `json:"salary_min"`
	SalaryMax           *int              `json:"salary_max"`
	SalaryCurrency      *string           `json:"salary_currency"`
	Requirements        []string          `json:"requirements"`
	Benefits            []string          `json:"benefits"`
	Tags                []string          `json:"tags"`
	Status              *models.JobStatus `json:"status"`
	ApplicationDeadline *time.Time        `json:"application_deadline"`
}

// ListJobs serves the public job listing with filters and pagination.
func (h *Handler) ListJobs(c *gin.Context) {
	filter := db.JobFilter{
		Status:   models.JobStatus(c.Query("status")),
		Location: c.Query("location"),
		JobType:  c.Query("job_type"),
	}
	if companyID, err := uuid.Parse(c.Query("company_id")); err == nil {
		filter.CompanyID = companyID
	}
	if limit, ok := intQuery(c, "limit"); ok {
		filter.Limit = limit
	}
	if offset, ok := intQuery(c, "offset"); ok {
		filter.Offset = offset
	}

	jobs, err := h.jobs.ListJobs(c.Request.Context(), filter)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "jobs": jobs})
}

func (h *Handler) GetJob(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid job ID"})
		return
	}
	job, err := h.jobs.GetJob(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "job": job})
}

// CheckJobLimit reports whether the principal's company may post a new
// job. A disallowed verdict is a 200 with a tagged reason.
func (h *Handler) CheckJobLimit(c *gin.Context) {
	limit, err := h.jobs.CheckJobLimit(c.Request.Context(), auth.UserID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "limit": limit})
}

func (h *Handler) CreateJob(c *gin.Context) {
	var req jobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid request: " + err.Error()})
		return
	}

	job := &models.Job{
		Title:               req.Title,
		Description:         req.Description,
		Location:            req.Location,
		JobType:             req.JobType,
		ExperienceLevel:     req.ExperienceLevel,
		SalaryMin:           req.SalaryMin,
		SalaryMax:           req.SalaryMax,
		SalaryCurrency:      req.SalaryCurrency,
		Requirements:        req.Requirements,
		Benefits:            req.Benefits,
		Tags:                req.Tags,
		ApplicationDeadline: req.ApplicationDeadline,
	}
	created, err := h.jobs.CreateJob(c.Request.Context(), auth.UserID(c), job)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "job": created})
}

func (h *Handler) UpdateJob(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid job ID"})
		return
	}
	var req jobUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid request: " + err.Error()})
		return
	}

	update := &models.JobUpdate{
		ID:                  id,
		Title:               req.Title,
		Description:         req.Description,
		Location:            req.Location,
		JobType:             req.JobType,
		ExperienceLevel:     req.ExperienceLevel,
		SalaryMin:           req.SalaryMin,
		SalaryMax:           req.SalaryMax,
		SalaryCurrency:      req.SalaryCurrency,
		Requirements:        req.Requirements,
		Benefits:            req.Benefits,
		Tags:                req.Tags,
		Status:              req.Status,
		ApplicationDeadline: req.ApplicationDeadline,
	}
	updated, err := h.jobs.UpdateJob(c.Request.Context(), auth.UserID(c), update)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "job": updated})
}

func (h *Handler) DeleteJob(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid job ID"})
		return
	}
	if err := h.jobs.DeleteJob(c.Request.Context(), auth.UserID(c), id); err != nil {
		h.respondError(c, err)
		return
	}
	// The listing page is where the frontend lands after a delete.
	c.JSON(http.StatusOK, gin.H{"success": true, "redirect": "/jobs"})
}

func intQuery(c *gin.Context, key string) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}
