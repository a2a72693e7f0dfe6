package handlers

import (
	"net/http"

	"taskdesk/internal/models"

	"github.com/gin-gonic/gin"
)

// GetAllUsers returns the user directory
// GET /api/users
func (h *Handler) GetAllUsers(c *gin.Context) {
	var users []models.UserRecord
	if err := h.db.Order("id asc").Find(&users).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to fetch users")
		return
	}

	// Map to safe response payload
	resp := make([]models.User, 0, len(users))
	for _, u := range users {
		resp = append(resp, u.ToUser())
	}

	c.JSON(http.StatusOK, resp)
}
