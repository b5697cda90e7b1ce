package models

import "time"

// AnalysisVariant distinguishes the two analysis endpoints.
type AnalysisVariant string

const (
	AnalysisCamera AnalysisVariant = "camera"
	AnalysisArea   AnalysisVariant = "area"
)

// AnalysisType tells whether preference weighting was applied. The server
// sets this flag on every response and clients must adopt it - a client's
// local guess is provisional until the response confirms it.
type AnalysisType string

const (
	AnalysisBasic        AnalysisType = "basic"
	AnalysisPersonalized AnalysisType = "personalized"
)

// StationAccess describes one nearby station in the structured area data.
type StationAccess struct {
	Name          string `json:"name"`
	WalkingMin    int    `json:"walking_minutes"`
	DistanceMeter int    `json:"distance_meters"`
}

// FacilityDensity counts nearby facilities by category within the analysis
// radius.
type FacilityDensity struct {
	Supermarkets int `json:"supermarkets"`
	Convenience  int `json:"convenience_stores"`
	Hospitals    int `json:"hospitals"`
	Schools      int `json:"schools"`
	Parks        int `json:"parks"`
}

// AnalysisResult is the outcome of one camera or area analysis. Area results
// are volatile display data and never persisted; camera results may be saved
// as history.
type AnalysisResult struct {
	Variant               AnalysisVariant `json:"variant"`
	Analysis              string          `json:"analysis"` // markdown
	IsPersonalized        bool            `json:"is_personalized"`
	ProcessingTimeSeconds float64         `json:"processing_time"`
	Timestamp             time.Time       `json:"timestamp"`

	// Structured sub-data, area analyses only.
	TrafficAccess   []StationAccess  `json:"traffic_access,omitempty"`
	FacilityDensity *FacilityDensity `json:"facility_density,omitempty"`
}

// Type derives the analysis type label from the personalization flag.
func (r *AnalysisResult) Type() AnalysisType {
	if r.IsPersonalized {
		return AnalysisPersonalized
	}
	return AnalysisBasic
}
