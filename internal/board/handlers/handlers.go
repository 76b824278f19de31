package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/openhire/hireboard/internal/board/controller"
	e "github.com/openhire/hireboard/internal/board/errors"
	"go.uber.org/zap"
)

// Handler holds the controller services the routes dispatch to.
type Handler struct {
	jobs          *controller.JobService
	applications  *controller.ApplicationService
	companies     *controller.CompanyService
	profiles      *controller.ProfileService
	notifications *controller.NotificationService
	logger        *zap.Logger
}

func NewHandler(
	jobs *controller.JobService,
	applications *controller.ApplicationService,
	companies *controller.CompanyService,
	profiles *controller.ProfileService,
	notifications *controller.NotificationService,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		jobs:          jobs,
		applications:  applications,
		companies:     companies,
		profiles:      profiles,
		notifications: notifications,
		logger:        logger.Named("http_handler"),
	}
}

// respondError maps tagged service errors onto HTTP responses. Soft
// business conflicts (quota, expired subscription) come back as 200
// with a failure flag so the frontend branches instead of erroring.
func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, e.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
	case errors.Is(err, e.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "not found"})
	case errors.Is(err, e.ErrNoProfile):
		c.JSON(http.StatusForbidden, gin.H{"success": false, "reason": controller.ReasonNoProfile})
	case errors.Is(err, e.ErrNoMembership):
		c.JSON(http.StatusForbidden, gin.H{"success": false, "reason": controller.ReasonNoCompany})
	case errors.Is(err, e.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "insufficient role"})
	case errors.Is(err, e.ErrDuplicateName):
		c.JSON(http.StatusConflict, gin.H{"success": false, "message": "name already taken"})
	case errors.Is(err, e.ErrNoSubscription):
		c.JSON(http.StatusOK, gin.H{"success": false, "reason": controller.ReasonNoSubscription})
	case errors.Is(err, e.ErrSubscriptionExpired):
		c.JSON(http.StatusOK, gin.H{"success": false, "reason": controller.ReasonSubscriptionExpired})
	case errors.Is(err, e.ErrLimitReached):
		c.JSON(http.StatusOK, gin.H{"success": false, "reason": controller.ReasonLimitReached})
	default:
		h.logger.Error("Internal server error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "internal server error"})
	}
}
