package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"study-service/internal/apperr"
	"study-service/internal/dataset"
	"study-service/internal/logger"
	"study-service/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubImporter struct{}

func (stubImporter) ImportExam(ctx context.Context, providerID, examID string) (*dataset.ImportResult, error) {
	return &dataset.ImportResult{ProviderID: providerID, ExamID: examID, Objects: 1, Imported: 12, Topics: 2}, nil
}

func newTestRouter() *gin.Engine {
	log := logger.Nop()
	r := gin.New()
	r.Use(Metrics())
	RegisterRoutes(r, &Handlers{
		Sessions:  NewSessionHandler(nil, log),
		Analytics: NewAnalyticsHandler(nil, log),
		Goals:     NewGoalHandler(service.NewGoalService(nil, nil, log), log),
		Catalog:   NewCatalogHandler(nil, log),
		Questions: NewQuestionHandler(nil, log),
		Datasets:  NewDatasetHandler(service.NewDatasetService(stubImporter{}, nil, log), log),
	}, "study-service")
	return r
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestHealth(t *testing.T) {
	w := httptest.NewRecorder()
	newTestRouter().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["status"])
}

func TestProtectedRoutesRequireUser(t *testing.T) {
	router := newTestRouter()
	for _, path := range []string{"/sessions", "/analytics/overview", "/goals"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
		assert.Equal(t, "MISSING_USER_ID", decode(t, w)["code"])
	}
}

func TestImportDataset(t *testing.T) {
	router := newTestRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/datasets/import", strings.NewReader(`{"provider_id":"aws","exam_id":"saa-c03"}`))
	req.Header.Set("X-User-ID", "admin")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, 12.0, body["imported"])
	assert.Equal(t, "saa-c03", body["exam_id"])

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/datasets/import", strings.NewReader(`{"provider_id":"aws"}`))
	req.Header.Set("X-User-ID", "admin")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateGoalValidationError(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/goals", strings.NewReader(`{"title":"","type":"accuracy","target_value":80}`))
	req.Header.Set("X-User-ID", "user-1")
	newTestRouter().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_FAILED", decode(t, w)["code"])
}

func TestTrendsRejectsBadDate(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/analytics/trends?from=yesterday", nil)
	req.Header.Set("X-User-ID", "user-1")
	newTestRouter().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPoolInfoRequiresProvider(t *testing.T) {
	w := httptest.NewRecorder()
	newTestRouter().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/exams/saa-c03/pool", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_FAILED", decode(t, w)["code"])
}

func TestRespondError(t *testing.T) {
	cases := []struct {
		err       error
		status    int
		code      string
		retryable bool
	}{
		{apperr.NotFound("session s1 not found"), http.StatusNotFound, "NOT_FOUND", false},
		{apperr.InvalidState("session already completed"), http.StatusConflict, "INVALID_STATE", false},
		{apperr.Conflict("session s1 was modified concurrently"), http.StatusConflict, "CONFLICT", true},
		{apperr.Validation("answer must not be empty"), http.StatusBadRequest, "VALIDATION_FAILED", false},
		{errors.New("mongo: connection reset"), http.StatusInternalServerError, "INTERNAL_ERROR", false},
	}

	for _, tc := range cases {
		r := gin.New()
		r.GET("/", func(c *gin.Context) { respondError(c, logger.Nop(), tc.err) })

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, tc.status, w.Code, tc.code)
		body := decode(t, w)
		assert.Equal(t, tc.code, body["code"])
		_, hasRetry := body["retryable"]
		assert.Equal(t, tc.retryable, hasRetry, tc.code)
		if tc.status == http.StatusInternalServerError {
			assert.Equal(t, "Internal server error", body["error"])
		}
	}
}
