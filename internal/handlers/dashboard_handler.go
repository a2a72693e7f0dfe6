package handlers

import (
	"net/http"
	"strconv"

	"taskdesk/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const recentTaskLimit = 5

// GetDashboardStats handles GET /api/dashboard/stats
// Optional "assignee" narrows every figure to one user's tasks.
func (h *Handler) GetDashboardStats(c *gin.Context) {
	var assignee int64
	if a := c.Query("assignee"); a != "" {
		id, err := strconv.ParseInt(a, 10, 64)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid assignee")
			return
		}
		assignee = id
	}
	scoped := func(db *gorm.DB) *gorm.DB {
		if assignee != 0 {
			return db.Where("assigned_to_id = ?", assignee)
		}
		return db
	}

	type row struct {
		Bucket string
		Count  int64
	}

	// Initialize with zeros
	stats := models.DashboardStats{
		TasksByStatus:   make(map[string]int64, models.StatusCount),
		TasksByPriority: make(map[string]int64, models.PriorityCount),
	}
	for _, s := range models.AllStatuses {
		stats.TasksByStatus[string(s)] = 0
	}
	for _, p := range models.AllPriorities {
		stats.TasksByPriority[string(p)] = 0
	}

	var byStatus []row
	if err := h.db.Model(&models.TaskRecord{}).Scopes(scoped).Select("status as bucket, COUNT(*) as count").Group("status").Scan(&byStatus).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to compute stats")
		return
	}
	for _, r := range byStatus {
		stats.TasksByStatus[r.Bucket] = r.Count
		stats.TotalTasks += r.Count
	}

	var byPriority []row
	if err := h.db.Model(&models.TaskRecord{}).Scopes(scoped).Select("priority as bucket, COUNT(*) as count").Group("priority").Scan(&byPriority).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to compute stats")
		return
	}
	for _, r := range byPriority {
		stats.TasksByPriority[r.Bucket] = r.Count
	}

	var recent []models.TaskRecord
	if err := h.taskQuery().Scopes(scoped).Order("created_at desc, id desc").Limit(recentTaskLimit).Find(&recent).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to compute stats")
		return
	}
	stats.RecentTasks = toTasks(recent)

	c.JSON(http.StatusOK, stats)
}
