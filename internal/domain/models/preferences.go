package models

import (
	"strings"
	"time"
)

// LifestyleType describes the household profile the user analyzes for.
// The zero value means unset.
type LifestyleType string

const (
	LifestyleUnset  LifestyleType = ""
	LifestyleSingle LifestyleType = "single"
	LifestyleCouple LifestyleType = "couple"
	LifestyleFamily LifestyleType = "family"
	LifestyleSenior LifestyleType = "senior"
)

// Valid reports whether the lifestyle type is one of the known values.
func (l LifestyleType) Valid() bool {
	switch l {
	case LifestyleUnset, LifestyleSingle, LifestyleCouple, LifestyleFamily, LifestyleSenior:
		return true
	}
	return false
}

// BudgetPriority describes how the user weighs cost against quality.
// The zero value means unset.
type BudgetPriority string

const (
	BudgetUnset   BudgetPriority = ""
	BudgetEconomy BudgetPriority = "economy"
	BudgetBalance BudgetPriority = "balance"
	BudgetQuality BudgetPriority = "quality"
)

// Valid reports whether the budget priority is one of the known values.
func (b BudgetPriority) Valid() bool {
	switch b {
	case BudgetUnset, BudgetEconomy, BudgetBalance, BudgetQuality:
		return true
	}
	return false
}

// UserPreference is the full set of housing priorities for one user.
// Absence vs. false is deliberate: every flag is an explicit bool, not an
// open map, so an empty preference set is unambiguous. The record is created
// on first save and overwritten whole on each save - never partially merged.
type UserPreference struct {
	UserID string `json:"user_id" db:"user_id"`

	// Priority flags
	StationAccess bool `json:"station_access" db:"station_access"`
	MultiLine     bool `json:"multi_line" db:"multi_line"`
	CarAccess     bool `json:"car_access" db:"car_access"`
	Medical       bool `json:"medical" db:"medical"`
	Shopping      bool `json:"shopping" db:"shopping"`
	Education     bool `json:"education" db:"education"`
	Parks         bool `json:"parks" db:"parks"`

	LifestyleType  LifestyleType  `json:"lifestyle_type" db:"lifestyle_type"`
	BudgetPriority BudgetPriority `json:"budget_priority" db:"budget_priority"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// IsEmpty reports whether no priority is set at all. An empty preference set
// never produces a personalized analysis.
func (p *UserPreference) IsEmpty() bool {
	if p == nil {
		return true
	}
	return !p.StationAccess && !p.MultiLine && !p.CarAccess &&
		!p.Medical && !p.Shopping && !p.Education && !p.Parks &&
		p.LifestyleType == LifestyleUnset && p.BudgetPriority == BudgetUnset
}

// Equal compares two preference sets field-for-field, ignoring timestamps.
func (p *UserPreference) Equal(o *UserPreference) bool {
	if p == nil || o == nil {
		return p.IsEmpty() && o.IsEmpty()
	}
	return p.StationAccess == o.StationAccess &&
		p.MultiLine == o.MultiLine &&
		p.CarAccess == o.CarAccess &&
		p.Medical == o.Medical &&
		p.Shopping == o.Shopping &&
		p.Education == o.Education &&
		p.Parks == o.Parks &&
		p.LifestyleType == o.LifestyleType &&
		p.BudgetPriority == o.BudgetPriority
}

// lifestyleLabels and budgetLabels are the Japanese labels interpolated into
// analysis prompts.
var lifestyleLabels = map[LifestyleType]string{
	LifestyleSingle: "一人暮らし",
	LifestyleCouple: "二人暮らし",
	LifestyleFamily: "ファミリー",
	LifestyleSenior: "シニア",
}

var budgetLabels = map[BudgetPriority]string{
	BudgetEconomy: "費用重視",
	BudgetBalance: "バランス重視",
	BudgetQuality: "品質重視",
}

// PromptFragment renders the preference set as the bullet list the analysis
// prompt builder embeds into personalized prompts. Returns "" for an empty set.
func (p *UserPreference) PromptFragment() string {
	if p.IsEmpty() {
		return ""
	}

	var items []string
	add := func(on bool, label string) {
		if on {
			items = append(items, "- "+label)
		}
	}
	add(p.StationAccess, "駅近・駅までのアクセスを重視")
	add(p.MultiLine, "複数路線の利用しやすさを重視")
	add(p.CarAccess, "車でのアクセス・駐車場を重視")
	add(p.Medical, "医療機関の充実を重視")
	add(p.Shopping, "買い物施設の充実を重視")
	add(p.Education, "教育施設の充実を重視")
	add(p.Parks, "公園・緑地の多さを重視")

	if label, ok := lifestyleLabels[p.LifestyleType]; ok {
		items = append(items, "- ライフスタイル: "+label)
	}
	if label, ok := budgetLabels[p.BudgetPriority]; ok {
		items = append(items, "- 予算感覚: "+label)
	}

	return strings.Join(items, "\n")
}
