package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"taskdesk/internal/models"
	"taskdesk/internal/realtime"
	"taskdesk/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Handler serves the task API. One Handler is shared by all routes.
type Handler struct {
	db             *gorm.DB
	hub            *realtime.Hub
	disk           *storage.Disk
	log            logrus.FieldLogger
	maxUploadBytes int64
}

// Options configures a Handler.
type Options struct {
	DB             *gorm.DB
	Hub            *realtime.Hub
	Disk           *storage.Disk
	Log            logrus.FieldLogger
	MaxUploadBytes int64
}

// New builds a Handler. A nil Hub gets a private hub; a zero upload limit means 10 MiB.
func New(opts Options) *Handler {
	h := &Handler{
		db:             opts.DB,
		hub:            opts.Hub,
		disk:           opts.Disk,
		log:            opts.Log,
		maxUploadBytes: opts.MaxUploadBytes,
	}
	if h.hub == nil {
		h.hub = realtime.NewHub()
	}
	if h.log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		h.log = l
	}
	if h.maxUploadBytes <= 0 {
		h.maxUploadBytes = 10 << 20
	}
	return h
}

// Hub returns the event hub used for task notifications.
func (h *Handler) Hub() *realtime.Hub { return h.hub }

func respondError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error":  message,
		"status": status,
	})
}

func respondValidation(c *gin.Context, err error) {
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":  "Validation failed",
			"errors": verr.Fields,
			"status": http.StatusBadRequest,
		})
		return
	}
	respondError(c, http.StatusBadRequest, err.Error())
}

func parseID(c *gin.Context, param string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, http.StatusBadRequest, "Invalid "+param)
		return 0, false
	}
	return id, true
}

func (h *Handler) publish(evt realtime.Event) {
	h.hub.Publish(evt)
}
