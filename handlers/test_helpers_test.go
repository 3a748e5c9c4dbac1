package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"lawsuit_tracker_go/container"
	"lawsuit_tracker_go/logger"
	"lawsuit_tracker_go/models"
	"lawsuit_tracker_go/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	// Use unique shared memory name to isolate tests
	dbName := "mem_" + uuid.New().String()
	testDB, err := gorm.Open(sqlite.Open("file:"+dbName+"?mode=memory&cache=shared&_foreign_keys=on"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, testDB.AutoMigrate(&models.Lawyer{}, &models.Lawsuit{}))
	return testDB
}

func setupServer(t *testing.T) (*echo.Echo, *gorm.DB) {
	conn := setupTestDB(t)
	log := logger.Discard()

	app := container.NewApp(conn, log, services.DefaultAssignmentPolicy())
	h, err := New(app, conn, log)
	require.NoError(t, err)

	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler(log, false)
	h.Register(e)
	return e, conn
}

func doRequest(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Status     string          `json:"status"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
	Pagination map[string]any  `json:"pagination"`
	ErrorCode  string          `json:"error_code"`
	Rule       string          `json:"rule"`
	Context    map[string]any  `json:"context"`
	Errors     []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	} `json:"errors"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func decodeData[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &v))
	return v
}

func createLawyer(t *testing.T, e *echo.Echo, name, email, specialization string) models.Lawyer {
	t.Helper()
	body := `{"name":"` + name + `","email":"` + email + `","phone":"3001234567","specialization":"` + specialization + `"}`
	rec := doRequest(e, http.MethodPost, "/api/lawyers", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeData[models.Lawyer](t, rec)
}

func createLawsuit(t *testing.T, e *echo.Echo, caseNumber, caseType string) models.Lawsuit {
	t.Helper()
	body := `{"case_number":"` + caseNumber + `","plaintiff":"Carlos Rodriguez","defendant":"Inmobiliaria Norte","case_type":"` + caseType + `"}`
	rec := doRequest(e, http.MethodPost, "/api/lawsuits", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeData[models.Lawsuit](t, rec)
}
