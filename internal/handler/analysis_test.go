package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"maisoku/internal/domain"
	"maisoku/internal/domain/models"
	"maisoku/internal/domain/services"
	"maisoku/internal/httputil"
)

type fakeAnalysisService struct {
	cameraResult *models.AnalysisResult
	cameraErr    error
	areaResult   *models.AnalysisResult
	areaErr      error
	lastCamera   *services.CameraAnalysisRequest
	lastArea     *services.AreaAnalysisRequest
}

func (f *fakeAnalysisService) AnalyzeCamera(ctx context.Context, req *services.CameraAnalysisRequest) (*models.AnalysisResult, error) {
	f.lastCamera = req
	return f.cameraResult, f.cameraErr
}

func (f *fakeAnalysisService) AnalyzeArea(ctx context.Context, req *services.AreaAnalysisRequest) (*models.AnalysisResult, error) {
	f.lastArea = req
	return f.areaResult, f.areaErr
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func multipartImage(t *testing.T, image []byte, saveHistory string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("image", "flyer.jpg")
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write(image); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if saveHistory != "" {
		if err := mw.WriteField("save_history", saveHistory); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &body, mw.FormDataContentType()
}

func TestAnalyzeCameraHandler(t *testing.T) {
	svc := &fakeAnalysisService{
		cameraResult: &models.AnalysisResult{
			Variant:        models.AnalysisCamera,
			Analysis:       "解析結果",
			IsPersonalized: true,
		},
	}
	h := NewAnalysisHandler(svc, testLogger())

	body, contentType := multipartImage(t, []byte{0xff, 0xd8, 0xff}, "true")
	req := httptest.NewRequest(http.MethodPost, "/api/analysis/camera", body)
	req.Header.Set("Content-Type", contentType)
	req = httputil.WithUserID(req, "user-1")
	rec := httptest.NewRecorder()

	h.AnalyzeCamera(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}
	if svc.lastCamera == nil {
		t.Fatal("service was not called")
	}
	if svc.lastCamera.UserID != "user-1" {
		t.Errorf("UserID = %q, want %q", svc.lastCamera.UserID, "user-1")
	}
	if !svc.lastCamera.SaveHistory {
		t.Error("SaveHistory flag was not forwarded")
	}

	var result models.AnalysisResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !result.IsPersonalized {
		t.Error("response must carry the service's IsPersonalized flag")
	}
}

func multipartImageWithPreferences(t *testing.T, image []byte, preferences string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("image", "flyer.jpg")
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write(image); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := mw.WriteField("preferences", preferences); err != nil {
		t.Fatalf("write field: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &body, mw.FormDataContentType()
}

func TestAnalyzeCameraHandlerForwardsPreferences(t *testing.T) {
	svc := &fakeAnalysisService{cameraResult: &models.AnalysisResult{Variant: models.AnalysisCamera}}
	h := NewAnalysisHandler(svc, testLogger())

	body, contentType := multipartImageWithPreferences(t, []byte{0xff, 0xd8, 0xff},
		`{"station_access":true,"budget_priority":"quality"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/analysis/camera", body)
	req.Header.Set("Content-Type", contentType)
	req = httputil.WithUserID(req, "user-1")
	rec := httptest.NewRecorder()

	h.AnalyzeCamera(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}
	if svc.lastCamera == nil || svc.lastCamera.Preferences == nil {
		t.Fatal("preferences field was not forwarded to the service")
	}
	got := svc.lastCamera.Preferences
	if !got.StationAccess || got.BudgetPriority != models.BudgetQuality {
		t.Errorf("forwarded preferences = %+v, want station_access and quality budget set", got)
	}
}

func TestAnalyzeCameraHandlerRejectsMalformedPreferences(t *testing.T) {
	svc := &fakeAnalysisService{}
	h := NewAnalysisHandler(svc, testLogger())

	body, contentType := multipartImageWithPreferences(t, []byte{0xff, 0xd8, 0xff}, `{not json`)
	req := httptest.NewRequest(http.MethodPost, "/api/analysis/camera", body)
	req.Header.Set("Content-Type", contentType)
	req = httputil.WithUserID(req, "user-1")
	rec := httptest.NewRecorder()

	h.AnalyzeCamera(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if svc.lastCamera != nil {
		t.Error("service must not run with a malformed preferences field")
	}
}

func TestAnalyzeCameraHandlerMissingImage(t *testing.T) {
	svc := &fakeAnalysisService{}
	h := NewAnalysisHandler(svc, testLogger())

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/analysis/camera", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()

	h.AnalyzeCamera(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if svc.lastCamera != nil {
		t.Error("service must not run without an image")
	}
}

func TestAnalyzeCameraHandlerOversizedUpload(t *testing.T) {
	svc := &fakeAnalysisService{}
	h := NewAnalysisHandler(svc, testLogger())

	body, contentType := multipartImage(t, make([]byte, 6<<20), "")
	req := httptest.NewRequest(http.MethodPost, "/api/analysis/camera", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	h.AnalyzeCamera(rec, req)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", rec.Code)
	}
	if svc.lastCamera != nil {
		t.Error("service must not run for an oversized upload")
	}
}

func TestAnalyzeAreaHandler(t *testing.T) {
	tests := []struct {
		name       string
		userID     string
		body       string
		svc        *fakeAnalysisService
		wantStatus int
	}{
		{
			name:       "anonymous request succeeds",
			userID:     "",
			body:       `{"address":"東京都千代田区"}`,
			svc:        &fakeAnalysisService{areaResult: &models.AnalysisResult{Variant: models.AnalysisArea}},
			wantStatus: http.StatusOK,
		},
		{
			name:       "authenticated request forwards user",
			userID:     "user-1",
			body:       `{"address":"東京都千代田区"}`,
			svc:        &fakeAnalysisService{areaResult: &models.AnalysisResult{Variant: models.AnalysisArea, IsPersonalized: true}},
			wantStatus: http.StatusOK,
		},
		{
			name:       "malformed body rejected",
			userID:     "",
			body:       `{`,
			svc:        &fakeAnalysisService{},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "validation failure maps to 400",
			userID:     "",
			body:       `{"address":""}`,
			svc:        &fakeAnalysisService{areaErr: &domain.ValidationError{Message: "address cannot be empty"}},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "processing failure maps to 422",
			userID:     "",
			body:       `{"address":"東京都"}`,
			svc:        &fakeAnalysisService{areaErr: &domain.ProcessingError{Message: "解析できませんでした"}},
			wantStatus: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAnalysisHandler(tt.svc, testLogger())

			req := httptest.NewRequest(http.MethodPost, "/api/analysis/area", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			if tt.userID != "" {
				req = httputil.WithUserID(req, tt.userID)
			}
			rec := httptest.NewRecorder()

			h.AnalyzeArea(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d; body: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantStatus == http.StatusOK && tt.svc.lastArea != nil && tt.svc.lastArea.UserID != tt.userID {
				t.Errorf("forwarded UserID = %q, want %q", tt.svc.lastArea.UserID, tt.userID)
			}
		})
	}
}

func TestAnalyzeAreaHandlerForwardsPreferences(t *testing.T) {
	svc := &fakeAnalysisService{areaResult: &models.AnalysisResult{Variant: models.AnalysisArea}}
	h := NewAnalysisHandler(svc, testLogger())

	body := `{"address":"東京都千代田区","preferences":{"shopping":true,"lifestyle_type":"family"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/analysis/area", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = httputil.WithUserID(req, "user-1")
	rec := httptest.NewRecorder()

	h.AnalyzeArea(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}
	if svc.lastArea == nil || svc.lastArea.Preferences == nil {
		t.Fatal("preferences were not forwarded to the service")
	}
	got := svc.lastArea.Preferences
	if !got.Shopping || got.LifestyleType != models.LifestyleFamily {
		t.Errorf("forwarded preferences = %+v, want shopping and family lifestyle set", got)
	}
}
