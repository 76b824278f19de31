package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/openhire/hireboard/internal/board/auth"
	"github.com/openhire/hireboard/internal/board/controller"
	"github.com/openhire/hireboard/internal/board/models"
)

// maxResumeSize caps resume uploads at 5 MiB, loosely re-checking what
// the frontend already enforces.
const maxResumeSize = 5 << 20

// Apply handles the multipart application form: a cover letter field
// plus a resume file.
func (h *Handler) Apply(c *gin.Context) {
	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid job ID"})
		return
	}

	fileHeader, err := c.FormFile("resume")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "resume file required"})
		return
	}
	if fileHeader.Size > maxResumeSize {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "resume too large"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "failed to read resume"})
		return
	}
	defer file.Close()

	result, err := h.applications.Apply(c.Request.Context(), auth.UserID(c), &controller.ApplyInput{
		JobID:             jobID,
		CoverLetter:       c.PostForm("cover_letter"),
		ResumeFilename:    fileHeader.Filename,
		ResumeContentType: fileHeader.Header.Get("Content-Type"),
		Resume:            file,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	if result.AlreadyApplied {
		c.JSON(http.StatusOK, gin.H{"success": false, "already_applied": true})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "application": result.Application})
}

func (h *Handler) ListJobApplications(c *gin.Context) {
	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid job ID"})
		return
	}
	apps, err := h.applications.ListForJob(c.Request.Context(), auth.UserID(c), jobID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "applications": apps})
}

func (h *Handler) ListMyApplications(c *gin.Context) {
	apps, err := h.applications.ListMine(c.Request.Context(), auth.UserID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "applications": apps})
}

func (h *Handler) GetApplication(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid application ID"})
		return
	}
	app, err := h.applications.Get(c.Request.Context(), auth.UserID(c), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "application": app})
}

func (h *Handler) UpdateApplicationStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid application ID"})
		return
	}
	var req struct {
		Status models.ApplicationStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid request: " + err.Error()})
		return
	}
	if err := h.applications.UpdateStatus(c.Request.Context(), auth.UserID(c), id, req.Status); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
