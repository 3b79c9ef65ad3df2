package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/cipherWizard31/pulse-care/internal/crypto"
	authmw "github.com/cipherWizard31/pulse-care/internal/middleware/auth"
	"github.com/cipherWizard31/pulse-care/internal/models"
	"github.com/cipherWizard31/pulse-care/internal/mykafka"
	"github.com/cipherWizard31/pulse-care/internal/service/search"
	"github.com/cipherWizard31/pulse-care/internal/util"
)

// PatientHandler encrypts national_id on patient create and
// diagnosis/treatment on record create/update, and decrypts them on
// every read-back. Names, dates and links stay plaintext.
type PatientHandler struct {
	DB       *gorm.DB
	Cipher   *crypto.Cipher
	Producer *mykafka.Producer
	ES       *elasticsearch.Client
	Index    string
}

type patientSummary struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	DOB       string `json:"dob"`
}

type recordView struct {
	ID         string `json:"id"`
	PatientID  string `json:"patient_id"`
	HospitalID uint   `json:"hospital_id"`
	Diagnosis  string `json:"diagnosis"`
	Treatment  string `json:"treatment"`
	RecordDate string `json:"record_date"`
	FileLink   string `json:"file_link"`
}

type patientDetail struct {
	patientSummary
	NationalID     string       `json:"national_id"`
	MedicalHistory []recordView `json:"medical_history"`
}

func (h *PatientHandler) publish(c echo.Context, key string, event map[string]interface{}) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "patient_events", key, event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

func (h *PatientHandler) ListPatients(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	name := c.QueryParam("name")
	filtered := func() *gorm.DB {
		q := h.DB.Model(&models.Patient{})
		if name != "" {
			pattern := "%" + name + "%"
			q = q.Where("first_name LIKE ? OR last_name LIKE ?", pattern, pattern)
		}
		return q
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return serverError(c, err)
	}

	var items []patientSummary
	if err := filtered().Order("first_name ASC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return serverError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data": items,
		"meta": map[string]any{
			"page":     page,
			"size":     limit,
			"total":    total,
			"has_prev": page > 1,
			"has_next": int64(offset+limit) < total,
		},
	})
}

// SearchPatients serves the fuzzy name search from the Elasticsearch
// index; only plaintext attributes live there.
func (h *PatientHandler) SearchPatients(c echo.Context) error {
	q := c.QueryParam("q")
	if q == "" {
		return errorResponse(c, http.StatusBadRequest, "query parameter q is required")
	}
	if h.ES == nil {
		return errorResponse(c, http.StatusServiceUnavailable, "search is not available")
	}

	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	from, limit := util.Calculate(page, size)

	total, patients, err := search.Search(c.Request().Context(), h.ES, h.Index, q, from, limit)
	if err != nil {
		return serverError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"total": total, "patients": patients})
}

func (h *PatientHandler) GetPatient(c echo.Context) error {
	id := c.Param("id")

	var patient models.Patient
	if err := h.DB.First(&patient, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorResponse(c, http.StatusNotFound, "patient not found")
		}
		return serverError(c, err)
	}

	nationalID, err := h.Cipher.Decrypt(patient.NationalID)
	if err != nil {
		return serverError(c, err)
	}

	var records []models.MedicalRecord
	if err := h.DB.Where("patient_id = ?", id).Order("record_date DESC").Find(&records).Error; err != nil {
		return serverError(c, err)
	}

	history := make([]recordView, len(records))
	for i, r := range records {
		diagnosis, err := h.Cipher.Decrypt(r.Diagnosis)
		if err != nil {
			return serverError(c, err)
		}
		treatment, err := h.Cipher.Decrypt(r.Treatment)
		if err != nil {
			return serverError(c, err)
		}
		history[i] = recordView{
			ID:         r.ID,
			PatientID:  r.PatientID,
			HospitalID: r.HospitalID,
			Diagnosis:  diagnosis,
			Treatment:  treatment,
			RecordDate: r.RecordDate,
			FileLink:   r.FileLink,
		}
	}

	return c.JSON(http.StatusOK, patientDetail{
		patientSummary: patientSummary{
			ID:        patient.ID,
			FirstName: patient.FirstName,
			LastName:  patient.LastName,
			DOB:       patient.DOB,
		},
		NationalID:     nationalID,
		MedicalHistory: history,
	})
}

func (h *PatientHandler) CreatePatient(c echo.Context) error {
	var req struct {
		FirstName  string `json:"first_name"`
		LastName   string `json:"last_name"`
		DOB        string `json:"dob"`
		NationalID string `json:"national_id"`
	}
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, "invalid request body")
	}
	if req.FirstName == "" || req.LastName == "" || req.DOB == "" || req.NationalID == "" {
		return errorResponse(c, http.StatusBadRequest, "please fill required fields")
	}

	encryptedID, err := h.Cipher.Encrypt(req.NationalID)
	if err != nil {
		return serverError(c, err)
	}

	// Encryption is deterministic, so equal plaintext yields equal
	// ciphertext and the lookup catches duplicates before the insert.
	var existing models.Patient
	err = h.DB.Where("national_id = ?", encryptedID).First(&existing).Error
	if err == nil {
		return errorResponse(c, http.StatusConflict, "a patient with this national ID already exists")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return serverError(c, err)
	}

	patient := models.Patient{
		ID:         uuid.NewString(),
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		DOB:        req.DOB,
		NationalID: encryptedID,
	}
	if err := h.DB.Create(&patient).Error; err != nil {
		return serverError(c, err)
	}

	if err := search.IndexPatient(c.Request().Context(), h.ES, h.Index, patient); err != nil {
		c.Logger().Errorf("ES index error: %v", err)
	}
	h.publish(c, patient.ID, map[string]interface{}{
		"type":       "patient_created",
		"patient_id": patient.ID,
	})

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "patient created successfully",
		"id":      patient.ID,
	})
}

func (h *PatientHandler) DeletePatient(c echo.Context) error {
	id := c.Param("id")

	// Record cleanup and patient delete are two statements, so they run
	// in one transaction.
	var affected int64
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("patient_id = ?", id).Delete(&models.MedicalRecord{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Patient{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		affected = result.RowsAffected
		return nil
	})
	if err != nil {
		return serverError(c, err)
	}
	if affected == 0 {
		return errorResponse(c, http.StatusNotFound, "patient not found")
	}

	if err := search.DeletePatient(c.Request().Context(), h.ES, h.Index, id); err != nil {
		c.Logger().Errorf("ES delete error: %v", err)
	}
	h.publish(c, id, map[string]interface{}{
		"type":       "patient_deleted",
		"patient_id": id,
	})

	return c.JSON(http.StatusOK, echo.Map{"message": "patient deleted successfully"})
}

func (h *PatientHandler) CreateRecord(c echo.Context) error {
	patientID := c.Param("id")
	hospitalID, ok := authmw.UserID(c)
	if !ok {
		return errorResponse(c, http.StatusUnauthorized, "missing identity")
	}

	var req struct {
		Diagnosis  string `json:"diagnosis"`
		Treatment  string `json:"treatment"`
		RecordDate string `json:"record_date"`
		FileLink   string `json:"file_link"`
	}
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, "invalid request body")
	}
	if req.Diagnosis == "" || req.Treatment == "" || req.RecordDate == "" {
		return errorResponse(c, http.StatusBadRequest, "diagnosis, treatment and record date are required")
	}

	var patient models.Patient
	if err := h.DB.First(&patient, "id = ?", patientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorResponse(c, http.StatusNotFound, "the specified patient does not exist")
		}
		return serverError(c, err)
	}

	diagnosis, err := h.Cipher.Encrypt(req.Diagnosis)
	if err != nil {
		return serverError(c, err)
	}
	treatment, err := h.Cipher.Encrypt(req.Treatment)
	if err != nil {
		return serverError(c, err)
	}

	record := models.MedicalRecord{
		ID:         uuid.NewString(),
		PatientID:  patientID,
		HospitalID: hospitalID,
		Diagnosis:  diagnosis,
		Treatment:  treatment,
		RecordDate: req.RecordDate,
		FileLink:   req.FileLink,
	}
	if err := h.DB.Create(&record).Error; err != nil {
		return serverError(c, err)
	}

	h.publish(c, patientID, map[string]interface{}{
		"type":        "record_created",
		"record_id":   record.ID,
		"patient_id":  patientID,
		"hospital_id": hospitalID,
	})

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "medical record added successfully",
		"id":      record.ID,
	})
}

func (h *PatientHandler) UpdateRecord(c echo.Context) error {
	patientID := c.Param("id")
	recordID := c.Param("recordId")

	var req struct {
		Diagnosis  string  `json:"diagnosis"`
		Treatment  string  `json:"treatment"`
		RecordDate string  `json:"record_date"`
		FileLink   *string `json:"file_link"`
	}
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, "invalid request body")
	}

	fields := map[string]interface{}{}
	if req.Diagnosis != "" {
		diagnosis, err := h.Cipher.Encrypt(req.Diagnosis)
		if err != nil {
			return serverError(c, err)
		}
		fields["diagnosis"] = diagnosis
	}
	if req.Treatment != "" {
		treatment, err := h.Cipher.Encrypt(req.Treatment)
		if err != nil {
			return serverError(c, err)
		}
		fields["treatment"] = treatment
	}
	if req.RecordDate != "" {
		fields["record_date"] = req.RecordDate
	}
	if req.FileLink != nil {
		fields["file_link"] = *req.FileLink
	}
	if len(fields) == 0 {
		return errorResponse(c, http.StatusBadRequest, "no fields are given to update")
	}

	result := h.DB.Model(&models.MedicalRecord{}).
		Where("id = ? AND patient_id = ?", recordID, patientID).
		Updates(fields)
	if result.Error != nil {
		return serverError(c, result.Error)
	}
	if result.RowsAffected == 0 {
		return errorResponse(c, http.StatusNotFound, "medical record not found or does not belong to this patient")
	}

	h.publish(c, patientID, map[string]interface{}{
		"type":       "record_updated",
		"record_id":  recordID,
		"patient_id": patientID,
	})

	return c.JSON(http.StatusOK, echo.Map{"message": "medical record updated successfully"})
}

func (h *PatientHandler) DeleteRecord(c echo.Context) error {
	patientID := c.Param("id")
	recordID := c.Param("recordId")

	result := h.DB.Where("id = ? AND patient_id = ?", recordID, patientID).Delete(&models.MedicalRecord{})
	if result.Error != nil {
		return serverError(c, result.Error)
	}
	if result.RowsAffected == 0 {
		return errorResponse(c, http.StatusNotFound, "medical record not found or does not belong to this patient")
	}

	h.publish(c, patientID, map[string]interface{}{
		"type":       "record_deleted",
		"record_id":  recordID,
		"patient_id": patientID,
	})

	return c.JSON(http.StatusOK, echo.Map{"message": "medical record deleted successfully"})
}
