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

type HospitalHandler struct {
	DB        *gorm.DB
	JWTSecret []byte
	TokenTTL  time.Duration
	Producer  *mykafka.Producer
}

func (h *HospitalHandler) publish(c echo.Context, key string, event map[string]interface{}) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "hospital_events", key, event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}

func (h *HospitalHandler) Register(c echo.Context) error {
	var req struct {
		Name         string `json:"name"`
		Phone        string `json:"phone"`
		Address      string `json:"address"`
		DocumentLink string `json:"document_link"`
		Email        string `json:"email"`
		Password     string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, "invalid request body")
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return errorResponse(c, http.StatusBadRequest, "name, email and password are required")
	}

	var existing models.Hospital
	err := h.DB.Where("email = ?", req.Email).First(&existing).Error
	if err == nil {
		return errorResponse(c, http.StatusConflict, "a hospital with this email already exists")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return serverError(c, err)
	}

	passwordHash, err := hash.HashPassword(req.Password)
	if err != nil {
		return serverError(c, err)
	}

	hospital := models.Hospital{
		Name:         req.Name,
		Phone:        req.Phone,
		Address:      req.Address,
		DocumentLink: req.DocumentLink,
		Email:        req.Email,
		PasswordHash: passwordHash,
		IsVerified:   false,
	}
	if err := h.DB.Create(&hospital).Error; err != nil {
		return serverError(c, err)
	}

	h.publish(c, fmt.Sprint(hospital.ID), map[string]interface{}{
		"type":        "hospital_registered",
		"hospital_id": hospital.ID,
		"name":        hospital.Name,
	})

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "hospital registered successfully",
		"user":    hospital,
	})
}

func (h *HospitalHandler) Login(c echo.Context) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, "invalid request body")
	}

	var hospital models.Hospital
	if err := h.DB.Where("email = ?", req.Email).First(&hospital).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorResponse(c, http.StatusUnauthorized, "invalid email or password")
		}
		return serverError(c, err)
	}
	if !hash.CheckPassword(hospital.PasswordHash, req.Password) {
		return errorResponse(c, http.StatusUnauthorized, "invalid email or password")
	}

	token, err := tokens.Issue(hospital.ID, tokens.RoleHospital, hospital.Email, h.JWTSecret, h.TokenTTL)
	if err != nil {
		return serverError(c, err)
	}

	h.publish(c, fmt.Sprint(hospital.ID), map[string]interface{}{
		"type":        "hospital_logged_in",
		"hospital_id": hospital.ID,
	})

	return c.JSON(http.StatusOK, echo.Map{
		"message": "login successful",
		"token":   token,
	})
}

func (h *HospitalHandler) GetProfile(c echo.Context) error {
	id, ok := authmw.UserID(c)
	if !ok {
		return errorResponse(c, http.StatusUnauthorized, "missing identity")
	}

	var hospital models.Hospital
	if err := h.DB.First(&hospital, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorResponse(c, http.StatusNotFound, "hospital not found")
		}
		return serverError(c, err)
	}
	return c.JSON(http.StatusOK, hospital)
}

func (h *HospitalHandler) UpdateProfile(c echo.Context) error {
	id, ok := authmw.UserID(c)
	if !ok {
		return errorResponse(c, http.StatusUnauthorized, "missing identity")
	}

	var req struct {
		Name         string `json:"name"`
		Phone        string `json:"phone"`
		Address      string `json:"address"`
		DocumentLink string `json:"document_link"`
		Email        string `json:"email"`
	}
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, "invalid request body")
	}
	if req.Name == "" || req.Email == "" {
		return errorResponse(c, http.StatusBadRequest, "name and email are required")
	}

	var taken models.Hospital
	err := h.DB.Where("email = ? AND id <> ?", req.Email, id).First(&taken).Error
	if err == nil {
		return errorResponse(c, http.StatusConflict, "a hospital with this email already exists")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return serverError(c, err)
	}

	result := h.DB.Model(&models.Hospital{}).Where("id = ?", id).Updates(map[string]interface{}{
		"name":          req.Name,
		"phone":         req.Phone,
		"address":       req.Address,
		"document_link": req.DocumentLink,
		"email":         req.Email,
	})
	if result.Error != nil {
		return serverError(c, result.Error)
	}
	if result.RowsAffected == 0 {
		return errorResponse(c, http.StatusNotFound, "hospital not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "profile updated successfully"})
}

func (h *HospitalHandler) DeleteProfile(c echo.Context) error {
	id, ok := authmw.UserID(c)
	if !ok {
		return errorResponse(c, http.StatusUnauthorized, "missing identity")
	}

	result := h.DB.Delete(&models.Hospital{}, id)
	if result.Error != nil {
		return serverError(c, result.Error)
	}
	if result.RowsAffected == 0 {
		return errorResponse(c, http.StatusNotFound, "hospital not found")
	}

	h.publish(c, fmt.Sprint(id), map[string]interface{}{
		"type":        "hospital_deleted",
		"hospital_id": id,
	})

	return c.JSON(http.StatusOK, echo.Map{"message": "hospital profile deleted successfully"})
}
