package services

import (
	"context"

	"maisoku/internal/domain/models"
)

// AnalysisProvider defines the interface the generative backend must
// implement. This abstraction keeps the analysis service agnostic to the
// model vendor and lets tests drive the full pipeline with a fake.
type AnalysisProvider interface {
	// AnalyzeImage generates an analysis of a property flyer photo.
	// The image is a JPEG; the prompt carries the analysis instructions.
	AnalyzeImage(ctx context.Context, image []byte, prompt string) (string, error)

	// AnalyzeText generates an analysis from a text-only prompt.
	AnalyzeText(ctx context.Context, prompt string) (string, error)

	// Name returns the provider name (e.g., "gemini")
	Name() string
}

// AnalysisService runs camera and area analyses. Personalization is decided
// here: a request analyzes personalized iff it carries an authenticated user
// AND a non-empty preference set - the response flag is authoritative for
// clients.
type AnalysisService interface {
	AnalyzeCamera(ctx context.Context, req *CameraAnalysisRequest) (*models.AnalysisResult, error)
	AnalyzeArea(ctx context.Context, req *AreaAnalysisRequest) (*models.AnalysisResult, error)
}

// CameraAnalysisRequest carries one flyer photo for analysis.
// UserID is always set: the camera endpoint requires authentication.
type CameraAnalysisRequest struct {
	UserID      string
	Image       []byte
	Preferences *models.UserPreference
	// SaveHistory controls whether the result is persisted after analysis.
	SaveHistory bool
}

// AreaAnalysisRequest carries one resolved address for analysis.
// UserID is empty for unauthenticated callers (staged authentication).
type AreaAnalysisRequest struct {
	UserID      string
	Address     string
	Preferences *models.UserPreference
}
