package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/cipherWizard31/pulse-care/internal/crypto"
	"github.com/cipherWizard31/pulse-care/internal/handlers"
	"github.com/cipherWizard31/pulse-care/internal/models"
)

var testSecret = []byte("router-test-secret")

const (
	testKeyHex = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"
	testIVHex  = "0f0e0d0c0b0a09080706050403020100"
)

func newTestServer(t *testing.T) (*echo.Echo, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Hospital{}, &models.SuperAdmin{}, &models.Patient{}, &models.MedicalRecord{}))

	cipher, err := crypto.New(testKeyHex, testIVHex)
	require.NoError(t, err)

	e := echo.New()
	Register(e, &Deps{
		DB:        db,
		JWTSecret: testSecret,
		HospitalHandler: &handlers.HospitalHandler{
			DB: db, JWTSecret: testSecret, TokenTTL: time.Hour,
		},
		SuperAdminHandler: &handlers.SuperAdminHandler{
			DB: db, JWTSecret: testSecret, TokenTTL: time.Hour,
		},
		VerificationHandler: &handlers.VerificationHandler{DB: db},
		PatientHandler: &handlers.PatientHandler{
			DB: db, Cipher: cipher, Index: "patient",
		},
	})
	return e, db
}

func do(t *testing.T, e *echo.Echo, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func registerAndLogin(t *testing.T, e *echo.Echo, base string, extra map[string]string) string {
	t.Helper()

	payload := map[string]string{
		"name":     "Principal",
		"email":    base + "@example.com",
		"password": "password",
	}
	for k, v := range extra {
		payload[k] = v
	}
	rec := do(t, e, http.MethodPost, "/api/"+base+"s", "", payload)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, e, http.MethodPost, "/api/"+base+"s/login", "", map[string]string{
		"email":    base + "@example.com",
		"password": "password",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestProtectedRouteWithoutToken(t *testing.T) {
	e, db := newTestServer(t)

	rec := do(t, e, http.MethodGet, "/api/hospitals/profile", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// The guard rejected before any handler ran, so nothing was read
	// or written.
	var count int64
	require.NoError(t, db.Model(&models.Hospital{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestHospitalTokenOnSuperAdminRoute(t *testing.T) {
	e, _ := newTestServer(t)

	token := registerAndLogin(t, e, "hospital", nil)

	rec := do(t, e, http.MethodGet, "/api/hospitals/unverified", token, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	var body struct {
		Expected string `json:"expected"`
		Actual   string `json:"actual"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "super_admin", body.Expected)
	require.Equal(t, "hospital", body.Actual)
}

func TestSuperAdminTokenOnHospitalRoute(t *testing.T) {
	e, _ := newTestServer(t)

	token := registerAndLogin(t, e, "super-admin", nil)

	rec := do(t, e, http.MethodGet, "/api/hospitals/profile", token, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestVerificationFlowThroughRouter(t *testing.T) {
	e, db := newTestServer(t)

	hospitalToken := registerAndLogin(t, e, "hospital", nil)
	adminToken := registerAndLogin(t, e, "super-admin", nil)

	rec := do(t, e, http.MethodGet, "/api/hospitals/unverified", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var unverified []models.Hospital
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &unverified))
	require.Len(t, unverified, 1)

	rec = do(t, e, http.MethodPost, "/api/hospitals/approve", adminToken, map[string]uint{"id": unverified[0].ID})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, e, http.MethodGet, "/api/hospitals/approved", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var approved []models.Hospital
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &approved))
	require.Len(t, approved, 1)
	require.True(t, approved[0].IsVerified)

	var stored models.Hospital
	require.NoError(t, db.First(&stored, unverified[0].ID).Error)
	require.True(t, stored.IsVerified)

	// The hospital can still manage its own profile.
	rec = do(t, e, http.MethodGet, "/api/hospitals/profile", hospitalToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestPatientFlowThroughRouter(t *testing.T) {
	e, _ := newTestServer(t)

	token := registerAndLogin(t, e, "hospital", nil)

	rec := do(t, e, http.MethodPost, "/api/patients", token, map[string]string{
		"first_name":  "Abebe",
		"last_name":   "Kebede",
		"dob":         "1990-04-12",
		"national_id": "123-45-6789",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = do(t, e, http.MethodPost, "/api/patients/"+created.ID+"/records", token, map[string]string{
		"diagnosis":   "Flu",
		"treatment":   "Rest",
		"record_date": "2026-08-01",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, e, http.MethodGet, "/api/patients/"+created.ID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var detail struct {
		NationalID     string `json:"national_id"`
		MedicalHistory []struct {
			Diagnosis string `json:"diagnosis"`
			Treatment string `json:"treatment"`
		} `json:"medical_history"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))
	require.Equal(t, "123-45-6789", detail.NationalID)
	require.Len(t, detail.MedicalHistory, 1)
	require.Equal(t, "Flu", detail.MedicalHistory[0].Diagnosis)
	require.Equal(t, "Rest", detail.MedicalHistory[0].Treatment)

	rec = do(t, e, http.MethodGet, "/api/patients", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
