package web_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/tcgmatch/internal/catalog"
	"github.com/JonMunkholm/tcgmatch/internal/config"
	"github.com/JonMunkholm/tcgmatch/internal/core"
	"github.com/JonMunkholm/tcgmatch/internal/metrics"
	"github.com/JonMunkholm/tcgmatch/internal/storage/storagetest"
	"github.com/JonMunkholm/tcgmatch/internal/web"
)

const collection = "Name,Set code,Collector number,Quantity,Purchase price\n" +
	"\"Bristly Bill, Spine Sower\",OTJ,157,1,1.00\n" +
	"\"Bristly Bill, Spine Sower\",OTJ,157,3,2.00\n" +
	"Mystery,ZZZ,1,1,\n"

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{RequestTimeout: 10 * time.Second},
		Convert: config.ConvertConfig{
			MaxInputSize:  1 << 16,
			MaxConcurrent: 2,
			MaxWaitTime:   time.Second,
			Timeout:       10 * time.Second,
			ResultTTL:     time.Hour,
			ErrorSample:   5,
		},
		Rate:     config.RateLimitConfig{Enabled: false, RequestsPerMinute: 100, ConvertLimit: 10},
		Security: config.SecurityConfig{EnableCSP: true},
	}
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("dial tcp: connection refused") }

func newServer(t *testing.T, cfg *config.Config, opts ...web.Option) (*web.Server, *metrics.Metrics) {
	t.Helper()
	db := storagetest.New(t, catalog.DefaultMaxParams)
	db.AddGroup(catalog.Group{ID: 10, Name: "Outlaws of Thunder Junction", Abbreviation: "OTJ"})
	db.AddProduct(catalog.Product{ID: 100, GroupID: 10, Name: "Bristly Bill, Spine Sower", CollectorNumber: "157", RarityID: 4})
	db.AddVariant(catalog.Variant{SKUID: 1000, ProductID: 100, LanguageID: 1, PrintingID: 1, ConditionID: 1, MarketCents: storagetest.Cents(150)})

	m := metrics.New()
	gw := catalog.NewGateway(db, catalog.WithObserver(m.ObserveBatch))
	svc := core.NewService(gw, cfg.Convert, core.WithRecorder(m))

	opts = append([]web.Option{web.WithMetrics(m), web.WithHealthCheck(gw)}, opts...)
	srv := web.NewServer(svc, cfg, opts...)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv, m
}

func do(t *testing.T, srv *web.Server, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func convert(t *testing.T, srv *web.Server, query, body string) web.ConversionResponse {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/convert"+query, strings.NewReader(body))
	req.Header.Set("Content-Type", "text/csv")
	rec := do(t, srv, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp web.ConversionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestConvert_RawBody(t *testing.T) {
	srv, _ := newServer(t, testConfig())

	resp := convert(t, srv, "", collection)

	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, core.LayoutFull, resp.Layout)
	assert.Equal(t, 3, resp.Summary.InputRows)
	assert.Equal(t, 1, resp.Summary.MatchedRows)
	assert.Equal(t, 1, resp.Summary.AggregatedRows)
	assert.Equal(t, 1, resp.Summary.ErrorCount)
	assert.Equal(t, "/api/convert/"+resp.ID+"/output", resp.Links.Output)
	assert.Equal(t, "/api/convert/"+resp.ID+"/failures", resp.Links.Failures)
}

func TestConvert_Downloads(t *testing.T) {
	srv, _ := newServer(t, testConfig())
	resp := convert(t, srv, "?layout=quick", collection)

	rec := do(t, srv, httptest.NewRequest(http.MethodGet, resp.Links.Output, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="tcgplayer_upload.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "TCGplayer Id,Add to Quantity,TCG Marketplace Price\n1000,4,1.75\n", rec.Body.String())

	rec = do(t, srv, httptest.NewRequest(http.MethodGet, resp.Links.Failures, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "failed_rows_")
	assert.Contains(t, rec.Body.String(), "Mystery,ZZZ,1,1")

	rec = do(t, srv, httptest.NewRequest(http.MethodGet, resp.Links.Self, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"matchedRows":1`)
}

func TestConvert_WithoutFailures(t *testing.T) {
	srv, _ := newServer(t, testConfig())
	resp := convert(t, srv, "?failures=false", collection)
	assert.Empty(t, resp.Links.Failures)

	rec := do(t, srv, httptest.NewRequest(http.MethodGet, "/api/convert/"+resp.ID+"/failures", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "CNV005")
}

func TestConvert_Multipart(t *testing.T) {
	srv, _ := newServer(t, testConfig())

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "collection.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(collection))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/convert?layout=sku", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := do(t, srv, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp web.ConversionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	out := do(t, srv, httptest.NewRequest(http.MethodGet, resp.Links.Output, nil))
	assert.Equal(t, "SKU,Quantity\n1000,4\n", out.Body.String())
}

func TestConvert_Errors(t *testing.T) {
	tests := []struct {
		name        string
		query       string
		contentType string
		body        string
		wantStatus  int
		wantCode    string
	}{
		{"missing column", "", "text/csv", "Name,Quantity\nBolt,1\n", http.StatusBadRequest, "VAL004"},
		{"empty body", "", "text/csv", "", http.StatusBadRequest, "FILE005"},
		{"unknown layout", "?layout=xml", "text/csv", collection, http.StatusBadRequest, "VAL001"},
		{"bad failures flag", "?failures=maybe", "text/csv", collection, http.StatusBadRequest, "VAL002"},
		{"too large", "", "text/csv", strings.Repeat("x", 1<<16+10), http.StatusRequestEntityTooLarge, "FILE001"},
		{"multipart without file", "", "multipart/form-data; boundary=xyz", "--xyz--\r\n", http.StatusBadRequest, "FILE004"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newServer(t, testConfig())

			req := httptest.NewRequest(http.MethodPost, "/api/convert"+tt.query, strings.NewReader(tt.body))
			req.Header.Set("Content-Type", tt.contentType)
			rec := do(t, srv, req)

			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			var body web.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCode, body.Code)
			assert.NotEmpty(t, body.Message)
		})
	}
}

func TestConversion_NotFound(t *testing.T) {
	srv, _ := newServer(t, testConfig())

	for _, path := range []string{"/api/convert/nope", "/api/convert/nope/output", "/api/convert/nope/failures"} {
		rec := do(t, srv, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
		assert.Contains(t, rec.Body.String(), "CNV002", path)
	}
}

func TestHealth(t *testing.T) {
	srv, _ := newServer(t, testConfig())
	rec := do(t, srv, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	srv, _ = newServer(t, testConfig(), web.WithHealthCheck(failingPinger{}))
	rec = do(t, srv, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "CAT001")
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newServer(t, testConfig())
	convert(t, srv, "", collection)

	rec := do(t, srv, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `tcgmatch_conversions_total{outcome="success"} 1`)
	assert.Contains(t, body, `tcgmatch_catalog_batches_total{fetch="groups",status="ok"} 1`)
	assert.Contains(t, body, `route="/api/convert"`)
}

func TestAPIKeyRequired(t *testing.T) {
	cfg := testConfig()
	cfg.Security.RequireAPIKey = true
	cfg.Security.APIKeys = []string{"secret"}
	srv, _ := newServer(t, cfg)

	rec := do(t, srv, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	req.Header.Set("X-API-Key", "secret")
	rec = do(t, srv, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"maxConcurrent":2`)

	// health stays open without a key
	rec = do(t, srv, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestConvertRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Rate = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 100, ConvertLimit: 1}
	srv, _ := newServer(t, cfg)

	convert(t, srv, "", collection)

	req := httptest.NewRequest(http.MethodPost, "/api/convert", strings.NewReader(collection))
	rec := do(t, srv, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "RATE001")

	// reads are limited separately
	rec = do(t, srv, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSecurityHeadersApplied(t *testing.T) {
	srv, _ := newServer(t, testConfig())
	rec := do(t, srv, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rec.Header().Get("Content-Security-Policy"))
}
