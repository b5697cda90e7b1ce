// Package gemini implements the AnalysisProvider interface on Vertex AI.
package gemini

import (
	"context"
	"fmt"
	"log/slog"

	"google.golang.org/genai"

	"maisoku/internal/domain"
	"maisoku/internal/domain/services"
)

// Provider calls Gemini through the Vertex AI backend.
type Provider struct {
	client *genai.Client
	model  string
	config *genai.GenerateContentConfig
	logger *slog.Logger
}

// NewProvider creates a Gemini provider. Credentials come from the
// environment (Application Default Credentials on Cloud Run).
func NewProvider(ctx context.Context, project, location, model string, logger *slog.Logger) (services.AnalysisProvider, error) {
	if project == "" {
		return nil, fmt.Errorf("google cloud project cannot be empty")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  project,
		Location: location,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	logger.Info("gemini provider initialized",
		"project", project,
		"location", location,
		"model", model,
	)

	return &Provider{
		client: client,
		model:  model,
		config: generationConfig(),
		logger: logger,
	}, nil
}

// generationConfig returns the fixed generation and safety settings used for
// every analysis call.
func generationConfig() *genai.GenerateContentConfig {
	blockMedium := func(category genai.HarmCategory) *genai.SafetySetting {
		return &genai.SafetySetting{
			Category:  category,
			Threshold: genai.HarmBlockThresholdBlockMediumAndAbove,
		}
	}

	return &genai.GenerateContentConfig{
		MaxOutputTokens: 2048,
		Temperature:     genai.Ptr[float32](0.7),
		TopP:            genai.Ptr[float32](0.8),
		SafetySettings: []*genai.SafetySetting{
			blockMedium(genai.HarmCategoryHateSpeech),
			blockMedium(genai.HarmCategoryDangerousContent),
			blockMedium(genai.HarmCategorySexuallyExplicit),
			blockMedium(genai.HarmCategoryHarassment),
		},
	}
}

// AnalyzeImage generates an analysis of a property flyer photo.
func (p *Provider) AnalyzeImage(ctx context.Context, image []byte, prompt string) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(image, "image/jpeg"),
			genai.NewPartFromText(prompt),
		}, genai.RoleUser),
	}

	return p.generate(ctx, contents)
}

// AnalyzeText generates an analysis from a text-only prompt.
func (p *Provider) AnalyzeText(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}

	return p.generate(ctx, contents)
}

// Name returns the provider name
func (p *Provider) Name() string {
	return "gemini"
}

func (p *Provider) generate(ctx context.Context, contents []*genai.Content) (string, error) {
	resp, err := p.client.Models.GenerateContent(ctx, p.model, contents, p.config)
	if err != nil {
		p.logger.Error("gemini generation failed", "error", err)
		return "", &domain.ProcessingError{
			Message: "分析を完了できませんでした。しばらくしてからお試しください。",
			Detail:  err.Error(),
		}
	}

	if len(resp.Candidates) == 0 {
		return "", &domain.ProcessingError{
			Message: "分析を完了できませんでした。別の内容でお試しください。",
			Detail:  "no candidates in response",
		}
	}

	// Anything other than a natural stop (safety block, token cap) means the
	// analysis text is unusable.
	if reason := resp.Candidates[0].FinishReason; reason != genai.FinishReasonStop {
		p.logger.Warn("generation stopped early", "finish_reason", reason)
		return "", &domain.ProcessingError{
			Message: "この内容の分析を完了できませんでした。別の画像や住所でお試しください。",
			Detail:  fmt.Sprintf("finish reason: %s", reason),
		}
	}

	text := resp.Text()
	if text == "" {
		return "", &domain.ProcessingError{
			Message: "分析結果を取得できませんでした。",
			Detail:  "empty response text",
		}
	}

	return text, nil
}
