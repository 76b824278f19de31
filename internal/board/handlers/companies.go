package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/openhire/hireboard/internal/board/auth"
	"github.com/openhire/hireboard/internal/board/models"
)

const maxLogoSize = 2 << 20

type companyRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Website     string `json:"website"`
	Industry    string `json:"industry"`
}

type companyUpdateRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Website     *string `json:"website"`
	Industry    *string `json:"industry"`
}

func (h *Handler) GetCompany(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid company ID"})
		return
	}
	company, err := h.companies.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "company": company})
}

func (h *Handler) RegisterCompany(c *gin.Context) {
	var req companyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid request: " + err.Error()})
		return
	}
	company := &models.Company{
		Name:        req.Name,
		Description: req.Description,
		Website:     req.Website,
		Industry:    req.Industry,
	}
	created, err := h.companies.Register(c.Request.Context(), auth.UserID(c), company)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "company": created})
}

func (h *Handler) UpdateCompany(c *gin.Context) {
	var req companyUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid request: " + err.Error()})
		return
	}
	update := &models.CompanyUpdate{
		Name:        req.Name,
		Description: req.Description,
		Website:     req.Website,
		Industry:    req.Industry,
	}
	updated, err := h.companies.Update(c.Request.Context(), auth.UserID(c), update)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "company": updated})
}

func (h *Handler) UploadLogo(c *gin.Context) {
	fileHeader, err := c.FormFile("logo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "logo file required"})
		return
	}
	if fileHeader.Size > maxLogoSize {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "logo too large"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "failed to read logo"})
		return
	}
	defer file.Close()

	url, err := h.companies.UploadLogo(c.Request.Context(), auth.UserID(c), fileHeader.Header.Get("Content-Type"), file)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "logo_url": url})
}

func (h *Handler) AddMember(c *gin.Context) {
	var req struct {
		Email string      `json:"email" binding:"required,email"`
		Role  models.Role `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid request: " + err.Error()})
		return
	}
	member, err := h.companies.AddMember(c.Request.Context(), auth.UserID(c), req.Email, req.Role)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "member": member})
}

func (h *Handler) PurchaseSubscription(c *gin.Context) {
	var req struct {
		PlanType string `json:"plan_type" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid request: " + err.Error()})
		return
	}
	sub, err := h.companies.PurchaseSubscription(c.Request.Context(), auth.UserID(c), req.PlanType)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "subscription": sub})
}

func (h *Handler) GetDashboard(c *gin.Context) {
	dashboard, err := h.companies.GetDashboard(c.Request.Context(), auth.UserID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "dashboard": dashboard})
}
