package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/cipherWizard31/pulse-care/internal/crypto"
	authmw "github.com/cipherWizard31/pulse-care/internal/middleware/auth"
	"github.com/cipherWizard31/pulse-care/internal/models"
	"github.com/cipherWizard31/pulse-care/internal/tokens"
)

var (
	testJWTSecret = []byte("test-jwt-secret")
	testTTL       = time.Hour
)

const (
	testKeyHex = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"
	testIVHex  = "0f0e0d0c0b0a09080706050403020100"
)

func initTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}
	if err := db.AutoMigrate(&models.Hospital{}, &models.SuperAdmin{}, &models.Patient{}, &models.MedicalRecord{}); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}
	return db
}

func testCipher(t *testing.T) *crypto.Cipher {
	t.Helper()
	c, err := crypto.New(testKeyHex, testIVHex)
	require.NoError(t, err)
	return c
}

func doJSONRequest(t *testing.T, e *echo.Echo, method, path string, body interface{}) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return rec, c
}

// asIdentity seeds the request context the way RequireAuth does.
func asIdentity(c echo.Context, id uint, role string) {
	c.Set(authmw.CtxUserID, id)
	c.Set(authmw.CtxRole, role)
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func parseToken(t *testing.T, raw string) *tokens.Claims {
	t.Helper()
	claims, err := tokens.Parse(raw, testJWTSecret)
	require.NoError(t, err)
	return claims
}
