package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"maisoku/internal/domain/models"
)

type fakeAuthProvider struct {
	user       *User
	signInErr  error
	signOutErr error
	signedOut  bool
	token      string
}

func (f *fakeAuthProvider) SignIn(ctx context.Context) (*User, error) {
	if f.signInErr != nil {
		return nil, f.signInErr
	}
	return f.user, nil
}

func (f *fakeAuthProvider) SignOut(ctx context.Context) error {
	f.signedOut = true
	return f.signOutErr
}

func (f *fakeAuthProvider) IDToken(ctx context.Context) (string, error) {
	return f.token, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestGateStages(t *testing.T) {
	provider := &fakeAuthProvider{user: &User{ID: "user-1"}}
	gate := NewGate(provider, nil, testLogger())

	if got := gate.State(); got != StateSignedOut {
		t.Fatalf("initial State() = %q, want %q", got, StateSignedOut)
	}
	if gate.CanPersonalize() {
		t.Error("signed out session must not personalize")
	}

	if _, err := gate.SignIn(context.Background()); err != nil {
		t.Fatalf("SignIn() error = %v", err)
	}
	if got := gate.State(); got != StateBasic {
		t.Errorf("State() after sign-in = %q, want %q", got, StateBasic)
	}
	if got := gate.AnalysisType(); got != models.AnalysisBasic {
		t.Errorf("AnalysisType() = %q, want %q", got, models.AnalysisBasic)
	}

	// An empty stored set keeps the session at the basic stage.
	gate.PreferencesLoaded(&models.UserPreference{UserID: "user-1"})
	if got := gate.State(); got != StateBasic {
		t.Errorf("State() with empty preferences = %q, want %q", got, StateBasic)
	}

	gate.PreferencesLoaded(&models.UserPreference{UserID: "user-1", StationAccess: true})
	if got := gate.State(); got != StatePersonalized {
		t.Errorf("State() with preferences = %q, want %q", got, StatePersonalized)
	}
	if !gate.CanPersonalize() {
		t.Error("CanPersonalize() = false with a non-empty preference set")
	}
	if got := gate.AnalysisType(); got != models.AnalysisPersonalized {
		t.Errorf("AnalysisType() = %q, want %q", got, models.AnalysisPersonalized)
	}
}

func TestGateFeatureAvailability(t *testing.T) {
	provider := &fakeAuthProvider{user: &User{ID: "user-1"}}
	gate := NewGate(provider, nil, testLogger())

	tests := []struct {
		feature  Feature
		signedIn bool
		want     bool
	}{
		{FeatureAreaAnalysis, false, true},
		{FeatureCameraAnalysis, false, false},
		{FeatureHistory, false, false},
		{FeaturePreferences, false, false},
		{FeatureAreaAnalysis, true, true},
		{FeatureCameraAnalysis, true, true},
		{FeatureHistory, true, true},
		{FeaturePreferences, true, true},
	}

	for _, tt := range tests {
		if tt.signedIn && !gate.SignedIn() {
			if _, err := gate.SignIn(context.Background()); err != nil {
				t.Fatalf("SignIn() error = %v", err)
			}
		}
		if got := gate.Available(tt.feature); got != tt.want {
			t.Errorf("Available(%q) signedIn=%v = %v, want %v", tt.feature, tt.signedIn, got, tt.want)
		}
	}
}

func TestSignOutGuardsDirtyPreferences(t *testing.T) {
	t.Run("no confirmation callback blocks sign-out", func(t *testing.T) {
		provider := &fakeAuthProvider{user: &User{ID: "user-1"}}
		gate := NewGate(provider, nil, testLogger())
		mustSignIn(t, gate)
		gate.PreferencesEdited()

		if err := gate.SignOut(context.Background()); !errors.Is(err, ErrUnsavedPreferences) {
			t.Fatalf("SignOut() error = %v, want ErrUnsavedPreferences", err)
		}
		if !gate.SignedIn() {
			t.Error("declined sign-out must leave the session signed in")
		}
		if provider.signedOut {
			t.Error("provider.SignOut must not run when the guard blocks")
		}
	})

	t.Run("declined confirmation blocks sign-out", func(t *testing.T) {
		provider := &fakeAuthProvider{user: &User{ID: "user-1"}}
		gate := NewGate(provider, func() bool { return false }, testLogger())
		mustSignIn(t, gate)
		gate.PreferencesEdited()

		if err := gate.SignOut(context.Background()); !errors.Is(err, ErrUnsavedPreferences) {
			t.Fatalf("SignOut() error = %v, want ErrUnsavedPreferences", err)
		}
		if !gate.SignedIn() {
			t.Error("declined sign-out must leave the session signed in")
		}
	})

	t.Run("accepted confirmation proceeds", func(t *testing.T) {
		provider := &fakeAuthProvider{user: &User{ID: "user-1"}}
		gate := NewGate(provider, func() bool { return true }, testLogger())
		mustSignIn(t, gate)
		gate.PreferencesEdited()

		if err := gate.SignOut(context.Background()); err != nil {
			t.Fatalf("SignOut() error = %v", err)
		}
		if gate.SignedIn() {
			t.Error("accepted sign-out must clear the session")
		}
		if !provider.signedOut {
			t.Error("provider.SignOut must run after confirmation")
		}
	})

	t.Run("saved edits need no confirmation", func(t *testing.T) {
		provider := &fakeAuthProvider{user: &User{ID: "user-1"}}
		gate := NewGate(provider, nil, testLogger())
		mustSignIn(t, gate)
		gate.PreferencesEdited()
		gate.PreferencesSaved(&models.UserPreference{UserID: "user-1", Parks: true})

		if err := gate.SignOut(context.Background()); err != nil {
			t.Fatalf("SignOut() error = %v", err)
		}
	})
}

func TestGateIDToken(t *testing.T) {
	provider := &fakeAuthProvider{user: &User{ID: "user-1"}, token: "id-token"}
	gate := NewGate(provider, nil, testLogger())

	token, err := gate.IDToken(context.Background())
	if err != nil {
		t.Fatalf("IDToken() error = %v", err)
	}
	if token != "" {
		t.Errorf("signed out IDToken() = %q, want empty", token)
	}

	mustSignIn(t, gate)
	token, err = gate.IDToken(context.Background())
	if err != nil {
		t.Fatalf("IDToken() error = %v", err)
	}
	if token != "id-token" {
		t.Errorf("IDToken() = %q, want %q", token, "id-token")
	}
}

func mustSignIn(t *testing.T, gate *Gate) {
	t.Helper()
	if _, err := gate.SignIn(context.Background()); err != nil {
		t.Fatalf("SignIn() error = %v", err)
	}
}
