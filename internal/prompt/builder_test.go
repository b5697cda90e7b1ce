package prompt

import (
	"strings"
	"testing"

	"maisoku/internal/domain/models"
)

func TestCameraPromptVariants(t *testing.T) {
	b, err := NewBuilder()
	if err != nil {
		t.Fatalf("NewBuilder() error = %v", err)
	}

	basic, err := b.Camera(nil)
	if err != nil {
		t.Fatalf("Camera(nil) error = %v", err)
	}
	if basic == "" {
		t.Fatal("basic camera prompt is empty")
	}

	prefs := &models.UserPreference{StationAccess: true, LifestyleType: models.LifestyleFamily}
	personalized, err := b.Camera(prefs)
	if err != nil {
		t.Fatalf("Camera(prefs) error = %v", err)
	}

	if personalized == basic {
		t.Error("personalized prompt must differ from the basic one")
	}
	if !strings.Contains(personalized, "駅近") {
		t.Errorf("personalized prompt missing the preference fragment:\n%s", personalized)
	}
	if strings.Contains(basic, "駅近") {
		t.Errorf("basic prompt must not carry preference content:\n%s", basic)
	}
	// Both variants share the flyer instructions.
	if !strings.HasPrefix(personalized, strings.Split(basic, "\n")[0]) {
		t.Error("camera variants must share the base instruction")
	}
}

func TestAreaPromptContainsAddress(t *testing.T) {
	b, err := NewBuilder()
	if err != nil {
		t.Fatalf("NewBuilder() error = %v", err)
	}

	const address = "東京都渋谷区神南1丁目"

	basic, err := b.Area(address, nil)
	if err != nil {
		t.Fatalf("Area() error = %v", err)
	}
	if !strings.Contains(basic, address) {
		t.Errorf("basic area prompt missing the address:\n%s", basic)
	}

	prefs := &models.UserPreference{Shopping: true}
	personalized, err := b.Area(address, prefs)
	if err != nil {
		t.Fatalf("Area() error = %v", err)
	}
	if !strings.Contains(personalized, address) {
		t.Errorf("personalized area prompt missing the address:\n%s", personalized)
	}
	if !strings.Contains(personalized, "買い物") {
		t.Errorf("personalized area prompt missing the preference fragment:\n%s", personalized)
	}
}

func TestEmptyPreferencesRenderBasicVariant(t *testing.T) {
	b, err := NewBuilder()
	if err != nil {
		t.Fatalf("NewBuilder() error = %v", err)
	}

	fromNil, err := b.Area("住所", nil)
	if err != nil {
		t.Fatalf("Area(nil) error = %v", err)
	}
	fromEmpty, err := b.Area("住所", &models.UserPreference{UserID: "user-1"})
	if err != nil {
		t.Fatalf("Area(empty) error = %v", err)
	}

	if fromNil != fromEmpty {
		t.Error("nil and empty preference sets must render the same prompt")
	}
}
