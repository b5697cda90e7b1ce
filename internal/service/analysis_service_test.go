package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"maisoku/internal/domain"
	"maisoku/internal/domain/models"
	"maisoku/internal/domain/services"
)

func newAnalysisService(t *testing.T, provider *fakeProvider, prefsRepo *fakePreferenceRepo, history services.HistoryService) services.AnalysisService {
	t.Helper()
	return NewAnalysisService(provider, mustBuilder(t), prefsRepo, history, nil, nil, nil, testLogger())
}

func newTestHistoryService(repo *fakeHistoryRepo, images *fakeImageStore) services.HistoryService {
	return NewHistoryService(repo, images, fakeTxManager{}, testLogger())
}

// tinyJPEG is not decodable, but the analysis service forwards image bytes
// without decoding them.
var tinyJPEG = []byte{0xff, 0xd8, 0xff, 0xd9}

func TestAnalyzeCameraPersonalizationDecision(t *testing.T) {
	tests := []struct {
		name             string
		storedPrefs      *models.UserPreference
		wantPersonalized bool
	}{
		{
			name:             "no stored preferences runs basic",
			storedPrefs:      nil,
			wantPersonalized: false,
		},
		{
			name:             "empty stored preferences runs basic",
			storedPrefs:      &models.UserPreference{UserID: "user-1"},
			wantPersonalized: false,
		},
		{
			name:             "non-empty preferences runs personalized",
			storedPrefs:      &models.UserPreference{UserID: "user-1", StationAccess: true},
			wantPersonalized: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &fakeProvider{text: "解析結果"}
			prefsRepo := newFakePreferenceRepo()
			if tt.storedPrefs != nil {
				prefsRepo.stored["user-1"] = tt.storedPrefs
			}
			svc := newAnalysisService(t, provider, prefsRepo, newTestHistoryService(newFakeHistoryRepo(), newFakeImageStore()))

			result, err := svc.AnalyzeCamera(context.Background(), &services.CameraAnalysisRequest{
				UserID: "user-1",
				Image:  tinyJPEG,
			})
			if err != nil {
				t.Fatalf("AnalyzeCamera() error = %v", err)
			}

			if result.IsPersonalized != tt.wantPersonalized {
				t.Errorf("IsPersonalized = %v, want %v", result.IsPersonalized, tt.wantPersonalized)
			}
			if provider.imageCalls != 1 {
				t.Errorf("provider image calls = %d, want 1", provider.imageCalls)
			}
			// The prompt must reflect the tier that was decided.
			hasFragment := strings.Contains(provider.lastPrompt, "駅近")
			if hasFragment != tt.wantPersonalized {
				t.Errorf("prompt personalization = %v, want %v:\n%s", hasFragment, tt.wantPersonalized, provider.lastPrompt)
			}
		})
	}
}

func TestAnalyzeCameraRequiresUser(t *testing.T) {
	svc := newAnalysisService(t, &fakeProvider{text: "x"}, newFakePreferenceRepo(), newTestHistoryService(newFakeHistoryRepo(), newFakeImageStore()))

	_, err := svc.AnalyzeCamera(context.Background(), &services.CameraAnalysisRequest{
		UserID: "",
		Image:  tinyJPEG,
	})
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("AnalyzeCamera() error = %v, want ErrUnauthorized", err)
	}
}

func TestAnalyzeCameraRejectsBadImage(t *testing.T) {
	svc := newAnalysisService(t, &fakeProvider{text: "x"}, newFakePreferenceRepo(), newTestHistoryService(newFakeHistoryRepo(), newFakeImageStore()))

	t.Run("empty image", func(t *testing.T) {
		_, err := svc.AnalyzeCamera(context.Background(), &services.CameraAnalysisRequest{UserID: "user-1"})
		if !errors.Is(err, domain.ErrValidation) {
			t.Errorf("error = %v, want ErrValidation", err)
		}
	})

	t.Run("oversized image", func(t *testing.T) {
		_, err := svc.AnalyzeCamera(context.Background(), &services.CameraAnalysisRequest{
			UserID: "user-1",
			Image:  make([]byte, 6<<20),
		})
		if !errors.Is(err, domain.ErrValidation) {
			t.Errorf("error = %v, want ErrValidation", err)
		}
	})
}

func TestAnalyzeCameraSavesHistoryWhenRequested(t *testing.T) {
	historyRepo := newFakeHistoryRepo()
	images := newFakeImageStore()
	prefsRepo := newFakePreferenceRepo()
	prefsRepo.stored["user-1"] = &models.UserPreference{UserID: "user-1", Parks: true}

	svc := newAnalysisService(t, &fakeProvider{text: "## 良い物件\n詳細"}, prefsRepo, newTestHistoryService(historyRepo, images))

	result, err := svc.AnalyzeCamera(context.Background(), &services.CameraAnalysisRequest{
		UserID:      "user-1",
		Image:       tinyJPEG,
		SaveHistory: true,
	})
	if err != nil {
		t.Fatalf("AnalyzeCamera() error = %v", err)
	}
	if !result.IsPersonalized {
		t.Error("expected personalized result")
	}

	entries, err := historyRepo.List(context.Background(), "user-1", 10)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("saved entries = %d, want 1", len(entries))
	}
	entry := entries[0]
	if entry.Summary != "## 良い物件" {
		t.Errorf("Summary = %q, want first line", entry.Summary)
	}
	if entry.PreferenceSnapshot == nil || !entry.PreferenceSnapshot.Parks {
		t.Error("personalized entry must carry the preference snapshot")
	}
	if images.objectCount() != 1 {
		t.Errorf("stored images = %d, want 1", images.objectCount())
	}
}

func TestAnalyzeCameraHistoryFailureKeepsResult(t *testing.T) {
	historyRepo := newFakeHistoryRepo()
	historyRepo.createErr = errBoom
	svc := newAnalysisService(t, &fakeProvider{text: "解析結果"}, newFakePreferenceRepo(), newTestHistoryService(historyRepo, newFakeImageStore()))

	result, err := svc.AnalyzeCamera(context.Background(), &services.CameraAnalysisRequest{
		UserID:      "user-1",
		Image:       tinyJPEG,
		SaveHistory: true,
	})
	if err != nil {
		t.Fatalf("AnalyzeCamera() error = %v, analysis must survive a history failure", err)
	}
	if result.Analysis != "解析結果" {
		t.Errorf("Analysis = %q", result.Analysis)
	}
}

func TestAnalyzeAreaStagedAuth(t *testing.T) {
	tests := []struct {
		name             string
		userID           string
		storedPrefs      *models.UserPreference
		wantPersonalized bool
	}{
		{
			name:             "anonymous is always basic",
			userID:           "",
			wantPersonalized: false,
		},
		{
			name:             "signed in without preferences is basic",
			userID:           "user-1",
			wantPersonalized: false,
		},
		{
			name:             "signed in with preferences is personalized",
			userID:           "user-1",
			storedPrefs:      &models.UserPreference{UserID: "user-1", Shopping: true},
			wantPersonalized: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &fakeProvider{text: "エリア解析"}
			prefsRepo := newFakePreferenceRepo()
			if tt.storedPrefs != nil {
				prefsRepo.stored[tt.userID] = tt.storedPrefs
			}
			svc := newAnalysisService(t, provider, prefsRepo, newTestHistoryService(newFakeHistoryRepo(), newFakeImageStore()))

			result, err := svc.AnalyzeArea(context.Background(), &services.AreaAnalysisRequest{
				UserID:  tt.userID,
				Address: "東京都千代田区丸の内1-1",
			})
			if err != nil {
				t.Fatalf("AnalyzeArea() error = %v", err)
			}
			if result.IsPersonalized != tt.wantPersonalized {
				t.Errorf("IsPersonalized = %v, want %v", result.IsPersonalized, tt.wantPersonalized)
			}
			if !strings.Contains(provider.lastPrompt, "東京都千代田区丸の内1-1") {
				t.Errorf("prompt missing the address:\n%s", provider.lastPrompt)
			}
		})
	}
}

func TestAnalyzeAreaValidation(t *testing.T) {
	svc := newAnalysisService(t, &fakeProvider{text: "x"}, newFakePreferenceRepo(), newTestHistoryService(newFakeHistoryRepo(), newFakeImageStore()))

	tests := []struct {
		name    string
		address string
	}{
		{name: "empty address", address: ""},
		{name: "blank address", address: "   "},
		{name: "overlong address", address: strings.Repeat("a", 300)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.AnalyzeArea(context.Background(), &services.AreaAnalysisRequest{Address: tt.address})
			if !errors.Is(err, domain.ErrValidation) {
				t.Errorf("error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestAnalyzeProviderFailurePropagates(t *testing.T) {
	provider := &fakeProvider{err: &domain.ProcessingError{Message: "解析できませんでした", Detail: "SAFETY"}}
	svc := newAnalysisService(t, provider, newFakePreferenceRepo(), newTestHistoryService(newFakeHistoryRepo(), newFakeImageStore()))

	_, err := svc.AnalyzeArea(context.Background(), &services.AreaAnalysisRequest{Address: "住所"})
	if !errors.Is(err, domain.ErrProcessing) {
		t.Errorf("error = %v, want ErrProcessing", err)
	}
}
