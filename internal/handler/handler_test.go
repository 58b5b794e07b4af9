package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/drbn68/ai-medical-imaging-agent/internal/domain"
	"github.com/drbn68/ai-medical-imaging-agent/pkg/utils"
)

type fakeService struct {
	report *domain.Report
	err    error
	calls  int
}

func (f *fakeService) Analyze(_ context.Context, _ domain.Credentials, _ domain.UploadedImage) (*domain.Report, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.report, nil
}

func newTestRouter(svc *fakeService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := NewHandler(svc, utils.NewImageIngestor(1<<20, zap.NewNop()), zap.NewNop())
	router.POST("/api/analyze", h.AnalyzeImage)
	router.GET("/health", h.HealthCheck)
	return router
}

func multipartUpload(t *testing.T, filename, apiKey string, payload []byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	fw, err := w.CreateFormFile("image", filename)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write(payload); err != nil {
		t.Fatal(err)
	}
	if apiKey != "" {
		if err := w.WriteField("api_key", apiKey); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return &body, w.FormDataContentType()
}

func TestAnalyzeHappyPath(t *testing.T) {
	svc := &fakeService{report: &domain.Report{ID: "abc", Text: "### Findings\nNormal study."}}
	router := newTestRouter(svc)

	body, contentType := multipartUpload(t, "scan.png", "sk-test", []byte("imagebytes"))
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Report domain.Report `json:"report"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Report.Text != svc.report.Text {
		t.Errorf("report text = %q, want %q", resp.Report.Text, svc.report.Text)
	}
}

func TestAnalyzeRejectsBadExtensionBeforeService(t *testing.T) {
	svc := &fakeService{}
	router := newTestRouter(svc)

	body, contentType := multipartUpload(t, "scan.gif", "sk-test", []byte("imagebytes"))
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if svc.calls != 0 {
		t.Errorf("service was called %d times for a rejected upload", svc.calls)
	}
}

func TestAnalyzeRequiresAPIKey(t *testing.T) {
	svc := &fakeService{}
	router := newTestRouter(svc)

	body, contentType := multipartUpload(t, "scan.png", "", []byte("imagebytes"))
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	if svc.calls != 0 {
		t.Errorf("service was called %d times without a credential", svc.calls)
	}
}

func TestAnalyzeAcceptsKeyFromHeader(t *testing.T) {
	svc := &fakeService{report: &domain.Report{ID: "abc", Text: "ok"}}
	router := newTestRouter(svc)

	body, contentType := multipartUpload(t, "scan.jpg", "", []byte("imagebytes"))
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-API-Key", "sk-header")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}
}

func TestAnalyzeMapsCompletionErrorToBadGateway(t *testing.T) {
	svc := &fakeService{err: &domain.CompletionError{Err: context.DeadlineExceeded}}
	router := newTestRouter(svc)

	body, contentType := multipartUpload(t, "scan.png", "sk-test", []byte("imagebytes"))
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "completion failed") {
		t.Errorf("body = %q, want completion failure message", rec.Body.String())
	}
}

func TestHealthCheck(t *testing.T) {
	router := newTestRouter(&fakeService{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}
