package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/cipherWizard31/pulse-care/internal/hash"
	authmw "github.com/cipherWizard31/pulse-care/internal/middleware/auth"
	"github.com/cipherWizard31/pulse-care/internal/models"
	"github.com/cipherWizard31/pulse-care/internal/mykafka"
	"github.com/cipherWizard31/pulse-care/internal/tokens"
)

type SuperAdminHandler struct {
	DB        *gorm.DB
	JWTSecret []byte
	TokenTTL  time.Duration
	Producer  *mykafka.Producer
}

func (h *SuperAdminHandler) publish(c echo.Context, key string, event map[string]interface{}) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "hospital_events", key, event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}

func (h *SuperAdminHandler) Register(c echo.Context) error {
	var req struct {
		Name     string `json:"name"`
		Phone    string `json:"phone"`
		Address  string `json:"address"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, "invalid request body")
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return errorResponse(c, http.StatusBadRequest, "name, email and password are required")
	}

	var existing models.SuperAdmin
	err := h.DB.Where("email = ?", req.Email).First(&existing).Error
	if err == nil {
		return errorResponse(c, http.StatusConflict, "a super admin with this email already exists")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return serverError(c, err)
	}

	passwordHash, err := hash.HashPassword(req.Password)
	if err != nil {
		return serverError(c, err)
	}

	admin := models.SuperAdmin{
		Name:         req.Name,
		Phone:        req.Phone,
		Address:      req.Address,
		Email:        req.Email,
		PasswordHash: passwordHash,
	}
	if err := h.DB.Create(&admin).Error; err != nil {
		return serverError(c, err)
	}

	h.publish(c, fmt.Sprint(admin.ID), map[string]interface{}{
		"type":           "super_admin_registered",
		"super_admin_id": admin.ID,
	})

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "super admin registered successfully",
		"user":    admin,
	})
}

func (h *SuperAdminHandler) Login(c echo.Context) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, "invalid request body")
	}

	var admin models.SuperAdmin
	if err := h.DB.Where("email = ?", req.Email).First(&admin).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorResponse(c, http.StatusUnauthorized, "invalid email or password")
		}
		return serverError(c, err)
	}
	if !hash.CheckPassword(admin.PasswordHash, req.Password) {
		return errorResponse(c, http.StatusUnauthorized, "invalid email or password")
	}

	token, err := tokens.Issue(admin.ID, tokens.RoleSuperAdmin, admin.Email, h.JWTSecret, h.TokenTTL)
	if err != nil {
		return serverError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "login successful",
		"token":   token,
	})
}

func (h *SuperAdminHandler) GetProfile(c echo.Context) error {
	id, ok := authmw.UserID(c)
	if !ok {
		return errorResponse(c, http.StatusUnauthorized, "missing identity")
	}

	var admin models.SuperAdmin
	if err := h.DB.First(&admin, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorResponse(c, http.StatusNotFound, "super admin not found")
		}
		return serverError(c, err)
	}
	return c.JSON(http.StatusOK, admin)
}

func (h *SuperAdminHandler) UpdateProfile(c echo.Context) error {
	id, ok := authmw.UserID(c)
	if !ok {
		return errorResponse(c, http.StatusUnauthorized, "missing identity")
	}

	var req struct {
		Name    string `json:"name"`
		Phone   string `json:"phone"`
		Address string `json:"address"`
		Email   string `json:"email"`
	}
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, "invalid request body")
	}
	if req.Name == "" || req.Email == "" {
		return errorResponse(c, http.StatusBadRequest, "name and email are required")
	}

	var taken models.SuperAdmin
	err := h.DB.Where("email = ? AND id <> ?", req.Email, id).First(&taken).Error
	if err == nil {
		return errorResponse(c, http.StatusConflict, "a super admin with this email already exists")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return serverError(c, err)
	}

	result := h.DB.Model(&models.SuperAdmin{}).Where("id = ?", id).Updates(map[string]interface{}{
		"name":    req.Name,
		"phone":   req.Phone,
		"address": req.Address,
		"email":   req.Email,
	})
	if result.Error != nil {
		return serverError(c, result.Error)
	}
	if result.RowsAffected == 0 {
		return errorResponse(c, http.StatusNotFound, "super admin not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "profile updated successfully"})
}
