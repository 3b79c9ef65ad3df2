package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/cipherWizard31/pulse-care/internal/models"
	"github.com/cipherWizard31/pulse-care/internal/mykafka"
)

// VerificationHandler owns the hospital approval workflow. The only
// transition is unverified -> verified, triggered by a super admin.
type VerificationHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
}

func (h *VerificationHandler) ListUnverified(c echo.Context) error {
	var hospitals []models.Hospital
	if err := h.DB.Where("is_verified = ?", false).Find(&hospitals).Error; err != nil {
		return serverError(c, err)
	}
	return c.JSON(http.StatusOK, hospitals)
}

func (h *VerificationHandler) ListApproved(c echo.Context) error {
	var hospitals []models.Hospital
	if err := h.DB.Where("is_verified = ?", true).Find(&hospitals).Error; err != nil {
		return serverError(c, err)
	}
	return c.JSON(http.StatusOK, hospitals)
}

func (h *VerificationHandler) Approve(c echo.Context) error {
	var req struct {
		ID uint `json:"id"`
	}
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, "invalid request body")
	}
	if req.ID == 0 {
		return errorResponse(c, http.StatusBadRequest, "hospital id is required")
	}

	result := h.DB.Model(&models.Hospital{}).
		Where("id = ? AND is_verified = ?", req.ID, false).
		Update("is_verified", true)
	if result.Error != nil {
		return serverError(c, result.Error)
	}
	if result.RowsAffected == 0 {
		return errorResponse(c, http.StatusNotFound, "hospital not found or already accepted")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "hospital_events", fmt.Sprint(req.ID), map[string]interface{}{
		"type":        "hospital_approved",
		"hospital_id": req.ID,
	}); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "hospital registration accepted successfully"})
}
