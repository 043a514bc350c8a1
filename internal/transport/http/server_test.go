package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendscope/internal/config"
	"spendscope/internal/mapping"
)

func testServer(t *testing.T) (*Server, mapping.PresetStore) {
	t.Helper()
	cfg := *config.Default()
	cfg.Server.RateLimit.Enabled = false
	presets := mapping.NewMemoryStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServer(cfg, presets, "1.2.3-test", logger), presets
}

func uploadRequest(t *testing.T, filename, content string, fields map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = io.Copy(part, strings.NewReader(content))
	require.NoError(t, err)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

const sampleCSV = `Vendor,Date,Amount,Category,Contract
Acme Corp,2024-04-01,"$1,200.50",IT,C-100
Beta Ltd,2024-05-10,$500.00,Facilities,
Grand Total,,1700.50,,
`

func TestAnalyzeCSV(t *testing.T) {
	srv, _ := testServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, uploadRequest(t, "spend.csv", sampleCSV, nil))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp AnalysisResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.RunID)
	assert.Equal(t, 2, resp.Snapshot.TransactionCount)
	assert.InDelta(t, 1700.50, resp.Snapshot.TotalSpend, 0.001)
	assert.Equal(t, 1, resp.NoiseRows)
	assert.Equal(t, 0, resp.Header.Recommended)
	assert.Equal(t, "Vendor", resp.Mapping[string(mapping.FieldSupplier)])
	assert.Len(t, resp.Snapshot.Suppliers, 2)
}

func TestAnalyzeOptionsOverride(t *testing.T) {
	srv, _ := testServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, uploadRequest(t, "spend.csv", sampleCSV, map[string]string{
		"currency":                "eur",
		"fiscal_year_start_month": "0",
	}))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp AnalysisResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "EUR", resp.Snapshot.Currency.ReportingCurrency)
	// Calendar-year fiscal config: April 2024 lands in FY2024.
	require.NotEmpty(t, resp.Snapshot.Months)
}

func TestAnalyzeMissingFile(t *testing.T) {
	srv, _ := testServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("sheet", "Data"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "problem+json")
}

func TestAnalyzeUnsupportedFormat(t *testing.T) {
	srv, _ := testServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, uploadRequest(t, "spend.pdf", "not a spreadsheet", nil))

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestAnalyzeCorruptWorkbook(t *testing.T) {
	srv, _ := testServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, uploadRequest(t, "spend.xlsx", "this is not a zip archive", nil))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/problem+json")
	assert.Contains(t, rec.Body.String(), "/errors/analysis-failed")
}

func TestAnalyzeInvalidOption(t *testing.T) {
	srv, _ := testServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, uploadRequest(t, "spend.csv", sampleCSV, map[string]string{
		"fiscal_year_start_month": "12",
	}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "fiscal_year_start_month")
}

func TestAnalyzeWithPreset(t *testing.T) {
	srv, presets := testServer(t)
	require.NoError(t, presets.Save("erp", mapping.Resolve(map[string]string{
		string(mapping.FieldSupplier):   "Vendor",
		string(mapping.FieldAmount):     "Amount",
		string(mapping.FieldDate):       "Date",
		string(mapping.FieldCategoryL1): "Category",
	})))

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, uploadRequest(t, "spend.csv", sampleCSV, map[string]string{
		"preset": "erp",
	}))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp AnalysisResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	// The preset leaves the contract column unmapped, so every row's
	// resolved contract reference is empty and counts as maverick.
	assert.Equal(t, 2, resp.Snapshot.TransactionCount)
	for _, s := range resp.Snapshot.Suppliers {
		assert.InDelta(t, 1.0, s.MaverickRate, 0.001)
	}
}

func TestAnalyzeUnknownPreset(t *testing.T) {
	srv, _ := testServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, uploadRequest(t, "spend.csv", sampleCSV, map[string]string{
		"preset": "nope",
	}))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPresetLifecycle(t *testing.T) {
	srv, _ := testServer(t)
	handler := srv.Handler()

	body := `{"mapping":{"supplier":"Vendor","amount":"Amount"}}`
	req := httptest.NewRequest(http.MethodPut, "/api/v1/presets/erp", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/presets/erp", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var got struct {
		Name    string            `json:"name"`
		Mapping map[string]string `json:"mapping"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "erp", got.Name)
	assert.Equal(t, "Vendor", got.Mapping["supplier"])

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/presets", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "erp")

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/presets/erp", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/presets/erp", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPresetSaveEmptyMapping(t *testing.T) {
	srv, _ := testServer(t)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/presets/erp", strings.NewReader(`{"mapping":{}}`))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthAndVersion(t *testing.T) {
	srv, _ := testServer(t)
	handler := srv.Handler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"healthy"`)
	assert.Contains(t, rec.Body.String(), "1.2.3-test")

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/version", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "1.2.3-test")
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := testServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "spendscope_")
}

func TestNotFoundIsProblemJSON(t *testing.T) {
	srv, _ := testServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/nothing-here", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "problem+json")
}

func TestSecurityHeadersApplied(t *testing.T) {
	srv, _ := testServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}
