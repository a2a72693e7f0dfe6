package handlers

import (
	"errors"
	"net/http"
	"strings"

	"taskdesk/internal/auth"
	"taskdesk/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Register handles POST /api/auth/register
func (h *Handler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var existing int64
	if err := h.db.Model(&models.UserRecord{}).Where("email = ?", email).Count(&existing).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to check email")
		return
	}
	if existing > 0 {
		h.log.WithField("email", email).Warn("registration failed: email already exists")
		respondError(c, http.StatusBadRequest, "Email already exists")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to hash password")
		return
	}

	user := models.UserRecord{
		Email:     email,
		Password:  hash,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Role:      models.RoleMember,
	}
	if err := h.db.Create(&user).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to create user")
		return
	}

	token, err := auth.GenerateToken(user.ID, user.Email)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	h.log.WithField("user_id", user.ID).Info("user registered")
	c.JSON(http.StatusCreated, models.AuthResponse{Token: token, Account: user.ToAccount()})
}

// Login handles POST /api/auth/login
func (h *Handler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request. Email and password are required.")
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var user models.UserRecord
	err := h.db.Where("email = ?", email).First(&user).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		respondError(c, http.StatusInternalServerError, "Failed to fetch user")
		return
	}
	if err != nil || !auth.CheckPassword(user.Password, req.Password) {
		h.log.WithField("email", email).Warn("login failed: invalid credentials")
		respondError(c, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	token, err := auth.GenerateToken(user.ID, user.Email)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	c.JSON(http.StatusOK, models.AuthResponse{Token: token, Account: user.ToAccount()})
}
