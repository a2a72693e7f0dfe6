package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"taskdesk/internal/middleware"
	"taskdesk/internal/models"
	"taskdesk/internal/realtime"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// taskQuery preloads everything a task response needs.
func (h *Handler) taskQuery() *gorm.DB {
	return h.db.Model(&models.TaskRecord{}).
		Preload("CreatedBy").
		Preload("AssignedTo").
		Preload("Files", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") })
}

func (h *Handler) loadTask(id int64) (models.TaskRecord, error) {
	var rec models.TaskRecord
	err := h.taskQuery().Where("tasks.id = ?", id).First(&rec).Error
	return rec, err
}

func toTasks(recs []models.TaskRecord) []models.Task {
	out := make([]models.Task, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.ToTask())
	}
	return out
}

// parseCriteria reads the optional list filters. Empty parameters are ignored.
func parseCriteria(c *gin.Context) (models.FilterCriteria, error) {
	var f models.FilterCriteria
	f.SearchTerm = strings.TrimSpace(c.Query("search"))
	if s := c.Query("status"); s != "" {
		st, err := models.ParseStatus(s)
		if err != nil {
			return f, err
		}
		f.Status = st
	}
	if p := c.Query("priority"); p != "" {
		pr, err := models.ParsePriority(p)
		if err != nil {
			return f, err
		}
		f.Priority = pr
	}
	if a := c.Query("assignee"); a != "" {
		id, err := strconv.ParseInt(a, 10, 64)
		if err != nil {
			return f, errors.New("invalid assignee")
		}
		f.Assignee = id
	}
	return f, nil
}

/*
*
GetTasks handles GET /api/tasks
Returns all tasks (team-wide). Optional query params search, status,
priority and assignee narrow the result; all given filters must match.
*/
func (h *Handler) GetTasks(c *gin.Context) {
	criteria, err := parseCriteria(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	query := h.taskQuery()
	if criteria.SearchTerm != "" {
		query = query.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(criteria.SearchTerm)+"%")
	}
	if criteria.Status != "" {
		query = query.Where("status = ?", criteria.Status)
	}
	if criteria.Priority != "" {
		query = query.Where("priority = ?", criteria.Priority)
	}
	if criteria.Assignee != 0 {
		query = query.Where("assigned_to_id = ?", criteria.Assignee)
	}

	var recs []models.TaskRecord
	if err := query.Order("created_at desc, id desc").Find(&recs).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to fetch tasks")
		return
	}

	c.JSON(http.StatusOK, toTasks(recs))
}

// GetMyTasks handles GET /api/tasks/my-tasks
// Returns tasks assigned to or created by the authenticated user
func (h *Handler) GetMyTasks(c *gin.Context) {
	userID := middleware.UserID(c)

	var recs []models.TaskRecord
	err := h.taskQuery().
		Where("assigned_to_id = ? OR created_by_id = ?", userID, userID).
		Order("created_at desc, id desc").
		Find(&recs).Error
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to fetch tasks")
		return
	}

	c.JSON(http.StatusOK, toTasks(recs))
}

// GetTaskByID handles GET /api/tasks/:id
func (h *Handler) GetTaskByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	rec, err := h.loadTask(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "Task not found")
		} else {
			respondError(c, http.StatusInternalServerError, "Failed to fetch task")
		}
		return
	}

	c.JSON(http.StatusOK, rec.ToTask())
}

// bindDraft decodes and validates a task body, and checks the assignee exists.
func (h *Handler) bindDraft(c *gin.Context) (models.TaskDraft, bool) {
	var draft models.TaskDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return draft, false
	}
	if err := draft.Validate(); err != nil {
		respondValidation(c, err)
		return draft, false
	}
	if draft.AssignedToID != nil {
		var n int64
		if err := h.db.Model(&models.UserRecord{}).Where("id = ?", *draft.AssignedToID).Count(&n).Error; err != nil {
			respondError(c, http.StatusInternalServerError, "Failed to validate assignee")
			return draft, false
		}
		if n == 0 {
			respondError(c, http.StatusNotFound, "Assigned user not found")
			return draft, false
		}
	}
	return draft, true
}

/*
*
CreateTask handles POST /api/tasks
Creates a new task owned by the authenticated user
*/
func (h *Handler) CreateTask(c *gin.Context) {
	userID := middleware.UserID(c)

	draft, ok := h.bindDraft(c)
	if !ok {
		return
	}

	rec := models.TaskRecord{CreatedByID: userID}
	rec.ApplyDraft(draft)
	if err := h.db.Omit(clause.Associations).Create(&rec).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to create task")
		return
	}

	created, err := h.loadTask(rec.ID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to fetch task")
		return
	}

	h.log.WithFields(logrus.Fields{"task_id": rec.ID, "user_id": userID}).Info("task created")
	h.publish(realtime.Event{Type: realtime.EventTaskCreated, TaskID: rec.ID, UserID: userID})

	c.JSON(http.StatusCreated, created.ToTask())
}

// UpdateTask handles PUT /api/tasks/:id
// Only the creator or the assignee may update a task
func (h *Handler) UpdateTask(c *gin.Context) {
	userID := middleware.UserID(c)
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var existing models.TaskRecord
	if err := h.db.First(&existing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "Task not found")
		} else {
			respondError(c, http.StatusInternalServerError, "Failed to fetch task")
		}
		return
	}

	isAssignee := existing.AssignedToID != nil && *existing.AssignedToID == userID
	if existing.CreatedByID != userID && !isAssignee {
		h.log.WithFields(logrus.Fields{"task_id": id, "user_id": userID}).Warn("unauthorized update attempt")
		respondError(c, http.StatusForbidden, "Unauthorized to update this task")
		return
	}

	draft, ok := h.bindDraft(c)
	if !ok {
		return
	}

	existing.ApplyDraft(draft)
	if err := h.db.Omit(clause.Associations).Save(&existing).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to update task")
		return
	}

	updated, err := h.loadTask(id)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to fetch task")
		return
	}

	h.publish(realtime.Event{Type: realtime.EventTaskUpdated, TaskID: id, UserID: userID})
	c.JSON(http.StatusOK, updated.ToTask())
}

// DeleteTask handles DELETE /api/tasks/:id
// Only the creator may delete a task; its attachments go with it
func (h *Handler) DeleteTask(c *gin.Context) {
	userID := middleware.UserID(c)
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var task models.TaskRecord
	if err := h.db.First(&task, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "Task not found")
		} else {
			respondError(c, http.StatusInternalServerError, "Failed to fetch task")
		}
		return
	}

	if task.CreatedByID != userID {
		h.log.WithFields(logrus.Fields{"task_id": id, "user_id": userID}).Warn("unauthorized delete attempt")
		respondError(c, http.StatusForbidden, "Unauthorized to delete this task")
		return
	}

	var files []models.AttachmentRecord
	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", id).Find(&files).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id = ?", id).Delete(&models.AttachmentRecord{}).Error; err != nil {
			return err
		}
		return tx.Delete(&task).Error
	})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to delete task")
		return
	}

	for _, f := range files {
		if err := h.disk.Remove(f.FilePath); err != nil {
			h.log.WithError(err).WithField("file_id", f.ID).Warn("stored file left behind")
		}
	}

	h.publish(realtime.Event{Type: realtime.EventTaskDeleted, TaskID: id, UserID: userID})
	c.Status(http.StatusNoContent)
}
