// Package session holds the staged-authentication state machine. The app
// works signed out at a reduced tier; signing in and saving preferences each
// unlock more, and the gate answers "what can this session do right now".
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"maisoku/internal/domain/models"
)

// State is the session's authentication stage.
type State string

const (
	// StateSignedOut allows area analysis at the basic tier only.
	StateSignedOut State = "signed_out"
	// StateBasic is signed in with no (or an empty) preference set.
	StateBasic State = "basic"
	// StatePersonalized is signed in with a non-empty preference set.
	StatePersonalized State = "personalized"
)

// Feature is an app capability whose availability depends on the stage.
type Feature string

const (
	FeatureAreaAnalysis   Feature = "area_analysis"
	FeatureCameraAnalysis Feature = "camera_analysis"
	FeatureHistory        Feature = "history"
	FeaturePreferences    Feature = "preferences"
)

// User is the signed-in identity as reported by the auth backend.
type User struct {
	ID          string
	DisplayName string
	Email       string
}

// AuthSessionProvider abstracts the auth backend. No SDK globals: the gate
// is handed an implementation and never reaches outside it.
type AuthSessionProvider interface {
	// SignIn runs the interactive sign-in flow and returns the user.
	SignIn(ctx context.Context) (*User, error)

	// SignOut clears the backend session.
	SignOut(ctx context.Context) error

	// IDToken returns a fresh ID token for the current user, or "" when
	// signed out.
	IDToken(ctx context.Context) (string, error)
}

// ErrUnsavedPreferences is returned by SignOut when preference edits would be
// lost and the confirmation callback declined (or none was provided).
var ErrUnsavedPreferences = errors.New("unsaved preference edits")

// Gate tracks the session stage. Auth changes and preference events may
// arrive from different goroutines; all state is mutex-guarded.
type Gate struct {
	provider AuthSessionProvider
	logger   *slog.Logger

	// confirmDiscard is asked before sign-out proceeds with dirty edits.
	confirmDiscard func() bool

	mu    sync.Mutex
	user  *User
	prefs *models.UserPreference
	dirty bool
}

// NewGate creates a session gate in the signed-out state. confirmDiscard may
// be nil, in which case sign-out with dirty edits always fails.
func NewGate(provider AuthSessionProvider, confirmDiscard func() bool, logger *slog.Logger) *Gate {
	return &Gate{
		provider:       provider,
		confirmDiscard: confirmDiscard,
		logger:         logger,
	}
}

// SignIn runs the provider's sign-in flow and adopts the resulting user.
// Stored preferences are not known yet; the caller loads them and reports
// via PreferencesLoaded.
func (g *Gate) SignIn(ctx context.Context) (*User, error) {
	user, err := g.provider.SignIn(ctx)
	if err != nil {
		return nil, err
	}

	g.mu.Lock()
	g.user = user
	g.prefs = nil
	g.dirty = false
	g.mu.Unlock()

	g.logger.Info("signed in", "user_id", user.ID)
	return user, nil
}

// SignOut clears the session. With unsaved preference edits the confirmation
// callback decides; a decline leaves the session untouched.
func (g *Gate) SignOut(ctx context.Context) error {
	g.mu.Lock()
	if g.dirty {
		confirm := g.confirmDiscard
		g.mu.Unlock()
		if confirm == nil || !confirm() {
			return ErrUnsavedPreferences
		}
		g.mu.Lock()
	}
	g.user = nil
	g.prefs = nil
	g.dirty = false
	g.mu.Unlock()

	if err := g.provider.SignOut(ctx); err != nil {
		return err
	}

	g.logger.Info("signed out")
	return nil
}

// PreferencesLoaded records the preference set fetched after sign-in.
func (g *Gate) PreferencesLoaded(prefs *models.UserPreference) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prefs = prefs
	g.dirty = false
}

// PreferencesEdited marks the in-progress preference edits unsaved.
func (g *Gate) PreferencesEdited() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.dirty = true
}

// PreferencesSaved records the set the server acknowledged and clears the
// dirty flag.
func (g *Gate) PreferencesSaved(prefs *models.UserPreference) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prefs = prefs
	g.dirty = false
}

// State derives the current stage. There is no terminal state; the gate
// moves between stages for the life of the app.
func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	switch {
	case g.user == nil:
		return StateSignedOut
	case g.prefs.IsEmpty():
		return StateBasic
	default:
		return StatePersonalized
	}
}

// CanPersonalize reports whether analyses run at the personalized tier.
func (g *Gate) CanPersonalize() bool {
	return g.State() == StatePersonalized
}

// AnalysisType is the tier label for the current stage.
func (g *Gate) AnalysisType() models.AnalysisType {
	if g.CanPersonalize() {
		return models.AnalysisPersonalized
	}
	return models.AnalysisBasic
}

// SignedIn reports whether a user is attached to the session.
func (g *Gate) SignedIn() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.user != nil
}

// CurrentUser returns the signed-in user, or nil.
func (g *Gate) CurrentUser() *User {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.user
}

// Preferences returns the last known preference set, or nil when none was
// loaded yet.
func (g *Gate) Preferences() *models.UserPreference {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.prefs
}

// HasUnsavedEdits reports whether preference edits are pending.
func (g *Gate) HasUnsavedEdits() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.dirty
}

// Available reports whether a feature is usable at the current stage. Area
// analysis always is; everything with per-user state needs sign-in.
func (g *Gate) Available(f Feature) bool {
	switch f {
	case FeatureAreaAnalysis:
		return true
	case FeatureCameraAnalysis, FeatureHistory, FeaturePreferences:
		return g.SignedIn()
	default:
		return false
	}
}

// IDToken implements the API client's TokenSource. Signed out it returns ""
// so requests go out anonymously.
func (g *Gate) IDToken(ctx context.Context) (string, error) {
	if !g.SignedIn() {
		return "", nil
	}
	return g.provider.IDToken(ctx)
}
