package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	apierrors "github.com/verdanthq/verdant/internal/errors"
	"github.com/verdanthq/verdant/internal/moderation"
	"github.com/verdanthq/verdant/internal/util"
)

// CreateReport files a report against a piece of content or a user
// POST /api/v1/reports
func (h *Handlers) CreateReport(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var input moderation.CreateReportInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := h.moderation.CreateReport(c.Request.Context(), userID, input)
	if err != nil {
		var apiErr *apierrors.APIError
		if errors.As(err, &apiErr) {
			util.RespondWithAPIError(c, apiErr)
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create report"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"report": report})
}
