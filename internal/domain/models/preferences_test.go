package models

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestUserPreferenceIsEmpty(t *testing.T) {
	tests := []struct {
		name  string
		prefs *UserPreference
		want  bool
	}{
		{
			name:  "nil preference set",
			prefs: nil,
			want:  true,
		},
		{
			name:  "zero value",
			prefs: &UserPreference{UserID: "user-1"},
			want:  true,
		},
		{
			name:  "single flag set",
			prefs: &UserPreference{UserID: "user-1", StationAccess: true},
			want:  false,
		},
		{
			name:  "only lifestyle set",
			prefs: &UserPreference{UserID: "user-1", LifestyleType: LifestyleFamily},
			want:  false,
		},
		{
			name:  "only budget set",
			prefs: &UserPreference{UserID: "user-1", BudgetPriority: BudgetQuality},
			want:  false,
		},
		{
			name: "all flags set",
			prefs: &UserPreference{
				UserID:        "user-1",
				StationAccess: true, MultiLine: true, CarAccess: true,
				Medical: true, Shopping: true, Education: true, Parks: true,
				LifestyleType:  LifestyleSingle,
				BudgetPriority: BudgetEconomy,
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.prefs.IsEmpty(); got != tt.want {
				t.Errorf("IsEmpty() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUserPreferenceJSONRoundTrip(t *testing.T) {
	original := &UserPreference{
		UserID:         "user-1",
		StationAccess:  true,
		Medical:        true,
		Parks:          true,
		LifestyleType:  LifestyleCouple,
		BudgetPriority: BudgetBalance,
	}

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var decoded UserPreference
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if !original.Equal(&decoded) {
		t.Errorf("round trip changed preference set: got %+v, want %+v", decoded, *original)
	}
}

func TestUserPreferenceEqual(t *testing.T) {
	base := &UserPreference{UserID: "a", StationAccess: true, LifestyleType: LifestyleSingle}

	tests := []struct {
		name string
		a, b *UserPreference
		want bool
	}{
		{
			name: "both nil",
			a:    nil, b: nil,
			want: true,
		},
		{
			name: "nil vs empty",
			a:    nil, b: &UserPreference{},
			want: true,
		},
		{
			name: "nil vs non-empty",
			a:    nil, b: base,
			want: false,
		},
		{
			name: "same fields different user",
			a:    base,
			b:    &UserPreference{UserID: "b", StationAccess: true, LifestyleType: LifestyleSingle},
			want: true,
		},
		{
			name: "flag differs",
			a:    base,
			b:    &UserPreference{UserID: "a", LifestyleType: LifestyleSingle},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.want {
				t.Errorf("Equal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPromptFragment(t *testing.T) {
	empty := &UserPreference{}
	if got := empty.PromptFragment(); got != "" {
		t.Errorf("empty set PromptFragment() = %q, want empty", got)
	}

	prefs := &UserPreference{
		StationAccess:  true,
		Education:      true,
		LifestyleType:  LifestyleFamily,
		BudgetPriority: BudgetQuality,
	}
	fragment := prefs.PromptFragment()

	for _, want := range []string{"駅近", "教育施設", "ファミリー", "品質重視"} {
		if !strings.Contains(fragment, want) {
			t.Errorf("PromptFragment() missing %q:\n%s", want, fragment)
		}
	}
	if strings.Contains(fragment, "医療機関") {
		t.Errorf("PromptFragment() contains label for unset flag:\n%s", fragment)
	}
}

func TestLifestyleAndBudgetValid(t *testing.T) {
	if !LifestyleUnset.Valid() || !LifestyleSenior.Valid() {
		t.Error("known lifestyle values should be valid")
	}
	if LifestyleType("mansion").Valid() {
		t.Error("unknown lifestyle value should be invalid")
	}
	if !BudgetUnset.Valid() || !BudgetEconomy.Valid() {
		t.Error("known budget values should be valid")
	}
	if BudgetPriority("luxury").Valid() {
		t.Error("unknown budget value should be invalid")
	}
}
