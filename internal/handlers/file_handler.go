package handlers

import (
	"errors"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"

	"taskdesk/internal/middleware"
	"taskdesk/internal/models"
	"taskdesk/internal/realtime"
	"taskdesk/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

/*
*
UploadFile handles POST /api/files/upload
Expects a multipart form with a "file" part and a "taskId" field.
Stores the blob under a generated name and returns the attachment.
*/
func (h *Handler) UploadFile(c *gin.Context) {
	userID := middleware.UserID(c)

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+1<<20)

	if err := c.Request.ParseMultipartForm(32 << 20); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respondError(c, http.StatusRequestEntityTooLarge, "File size exceeds maximum allowed size")
			return
		}
		respondError(c, http.StatusBadRequest, "Multipart form expected")
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		respondError(c, http.StatusBadRequest, "File is required")
		return
	}
	taskID, err := strconv.ParseInt(c.PostForm("taskId"), 10, 64)
	if err != nil || taskID <= 0 {
		respondError(c, http.StatusBadRequest, "taskId is required")
		return
	}
	if header.Size == 0 {
		respondError(c, http.StatusBadRequest, "File is empty")
		return
	}
	if header.Size > h.maxUploadBytes {
		respondError(c, http.StatusRequestEntityTooLarge, "File size exceeds maximum allowed size")
		return
	}

	var n int64
	if err := h.db.Model(&models.TaskRecord{}).Where("id = ?", taskID).Count(&n).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to fetch task")
		return
	}
	if n == 0 {
		respondError(c, http.StatusNotFound, "Task not found")
		return
	}

	src, err := header.Open()
	if err != nil {
		respondError(c, http.StatusBadRequest, "Failed to read file")
		return
	}
	defer src.Close()

	original := filepath.Base(header.Filename)
	stored, err := h.disk.Save(original, src)
	if err != nil {
		h.log.WithError(err).Error("failed to store upload")
		respondError(c, http.StatusInternalServerError, "Failed to store file")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	rec := models.AttachmentRecord{
		TaskID:           taskID,
		FileName:         stored.Name,
		OriginalFileName: original,
		FilePath:         stored.Path,
		FileSize:         stored.Size,
		ContentType:      contentType,
	}
	if err := h.db.Create(&rec).Error; err != nil {
		_ = h.disk.Remove(stored.Path)
		respondError(c, http.StatusInternalServerError, "Failed to save file metadata")
		return
	}

	middleware.ObserveUpload(stored.Size)
	h.log.WithFields(logrus.Fields{"task_id": taskID, "file_id": rec.ID, "size": stored.Size}).Info("file uploaded")
	h.publish(realtime.Event{Type: realtime.EventFileUploaded, TaskID: taskID, FileID: rec.ID, UserID: userID})

	c.JSON(http.StatusOK, rec.ToAttachment())
}

func (h *Handler) loadAttachment(c *gin.Context) (models.AttachmentRecord, bool) {
	var rec models.AttachmentRecord
	id, ok := parseID(c, "id")
	if !ok {
		return rec, false
	}
	if err := h.db.First(&rec, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "File not found")
		} else {
			respondError(c, http.StatusInternalServerError, "Failed to fetch file")
		}
		return rec, false
	}
	return rec, true
}

// DownloadFile handles GET /api/files/:id
// Streams the blob with the original file name in Content-Disposition
func (h *Handler) DownloadFile(c *gin.Context) {
	rec, ok := h.loadAttachment(c)
	if !ok {
		return
	}

	f, err := h.disk.Open(rec.FilePath)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondError(c, http.StatusNotFound, "File not found on disk")
		} else {
			respondError(c, http.StatusInternalServerError, "Failed to read file")
		}
		return
	}
	defer f.Close()

	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": rec.OriginalFileName})
	c.DataFromReader(http.StatusOK, rec.FileSize, rec.ContentType, f, map[string]string{
		"Content-Disposition": disposition,
	})
}

// DeleteFile handles DELETE /api/files/:id
func (h *Handler) DeleteFile(c *gin.Context) {
	userID := middleware.UserID(c)
	rec, ok := h.loadAttachment(c)
	if !ok {
		return
	}

	if err := h.db.Delete(&rec).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to delete file")
		return
	}
	if err := h.disk.Remove(rec.FilePath); err != nil {
		h.log.WithError(err).WithField("file_id", rec.ID).Warn("stored file left behind")
	}

	h.publish(realtime.Event{Type: realtime.EventFileDeleted, TaskID: rec.TaskID, FileID: rec.ID, UserID: userID})
	c.Status(http.StatusNoContent)
}
