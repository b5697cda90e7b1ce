// Package client is the app-side HTTP client for the analysis API. It mirrors
// the server's route surface and translates problem+json responses into the
// typed error taxonomy the orchestration layers match on with errors.As.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"maisoku/internal/domain/models"
)

// TokenSource supplies the caller's Firebase ID token. A nil TokenSource or
// an empty token means the request goes out anonymously.
type TokenSource interface {
	IDToken(ctx context.Context) (string, error)
}

// Client calls the analysis API.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	logger  *slog.Logger
}

// New creates an API client. tokens may be nil for a signed-out client.
func New(baseURL string, tokens TokenSource, logger *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 120 * time.Second},
		tokens:  tokens,
		logger:  logger,
	}
}

// AnalyzeCameraImage uploads a compressed flyer photo for analysis. A
// non-empty preference set rides along as an explicit override; otherwise the
// server falls back to the stored set. The server decides the personalization
// tier either way; the IsPersonalized flag on the result is adopted as-is.
func (c *Client) AnalyzeCameraImage(ctx context.Context, image []byte, prefs *models.UserPreference, saveHistory bool) (*models.AnalysisResult, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	part, err := mw.CreateFormFile("image", "capture.jpg")
	if err != nil {
		return nil, fmt.Errorf("create multipart: %w", err)
	}
	if _, err := part.Write(image); err != nil {
		return nil, fmt.Errorf("write multipart: %w", err)
	}
	if err := mw.WriteField("save_history", strconv.FormatBool(saveHistory)); err != nil {
		return nil, fmt.Errorf("write multipart: %w", err)
	}
	if !prefs.IsEmpty() {
		encoded, err := json.Marshal(prefs)
		if err != nil {
			return nil, fmt.Errorf("encode preferences: %w", err)
		}
		if err := mw.WriteField("preferences", string(encoded)); err != nil {
			return nil, fmt.Errorf("write multipart: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/analysis/camera", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var result models.AnalysisResult
	if err := c.do(req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// AnalyzeArea requests a surrounding-area analysis for an address. Works
// anonymously; a bearer token upgrades the request to the personalized tier
// when the server has preferences for the user, and a non-empty prefs
// argument overrides the stored set for this one analysis.
func (c *Client) AnalyzeArea(ctx context.Context, address string, prefs *models.UserPreference) (*models.AnalysisResult, error) {
	body := struct {
		Address     string                 `json:"address"`
		Preferences *models.UserPreference `json:"preferences,omitempty"`
	}{Address: address}
	if !prefs.IsEmpty() {
		body.Preferences = prefs
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/analysis/area", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var result models.AnalysisResult
	if err := c.do(req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Suggest returns autocomplete candidates for a partial address.
func (c *Client) Suggest(ctx context.Context, partial string) ([]models.Suggestion, error) {
	u := c.baseURL + "/api/address/suggest?input=" + url.QueryEscape(partial)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Suggestions []models.Suggestion `json:"suggestions"`
	}
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}
	return resp.Suggestions, nil
}

// Resolve geocodes a free-text address through the server.
func (c *Client) Resolve(ctx context.Context, address string) (*models.AddressResolution, error) {
	payload, err := json.Marshal(map[string]string{"address": address})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/address/resolve", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var resolution models.AddressResolution
	if err := c.do(req, &resolution); err != nil {
		return nil, err
	}
	return &resolution, nil
}

// ReverseGeocode resolves device coordinates to an address.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lng float64) (*models.AddressResolution, error) {
	u := fmt.Sprintf("%s/api/address/reverse?lat=%s&lng=%s",
		c.baseURL,
		url.QueryEscape(strconv.FormatFloat(lat, 'f', -1, 64)),
		url.QueryEscape(strconv.FormatFloat(lng, 'f', -1, 64)),
	)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	var resolution models.AddressResolution
	if err := c.do(req, &resolution); err != nil {
		return nil, err
	}
	return &resolution, nil
}

// ListHistory retrieves the signed-in user's analysis history.
func (c *Client) ListHistory(ctx context.Context, limit int) ([]models.HistoryEntry, error) {
	u := c.baseURL + "/api/users/me/history"
	if limit > 0 {
		u += "?limit=" + strconv.Itoa(limit)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Entries []models.HistoryEntry `json:"entries"`
	}
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}
	return resp.Entries, nil
}

// DeleteHistory removes one history entry. Deleting an already-deleted entry
// succeeds.
func (c *Client) DeleteHistory(ctx context.Context, id string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/api/users/me/history/"+url.PathEscape(id), nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

// GetPreferences retrieves the signed-in user's preference set.
func (c *Client) GetPreferences(ctx context.Context) (*models.UserPreference, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/users/me/preferences", nil)
	if err != nil {
		return nil, err
	}

	var prefs models.UserPreference
	if err := c.do(req, &prefs); err != nil {
		return nil, err
	}
	return &prefs, nil
}

// SavePreferences overwrites the signed-in user's preference set.
func (c *Client) SavePreferences(ctx context.Context, prefs *models.UserPreference) (*models.UserPreference, error) {
	payload, err := json.Marshal(prefs)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+"/api/users/me/preferences", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var saved models.UserPreference
	if err := c.do(req, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

// do executes the request, attaching the bearer token when available, and
// decodes the response into out (which may be nil for no-body responses).
func (c *Client) do(req *http.Request, out interface{}) error {
	if c.tokens != nil {
		token, err := c.tokens.IDToken(req.Context())
		if err != nil {
			return &AuthError{Detail: fmt.Sprintf("token refresh failed: %v", err)}
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil || resp.StatusCode == http.StatusNoContent {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &UnknownError{Status: resp.StatusCode, Detail: fmt.Sprintf("malformed response body: %v", err)}
		}
		return nil
	}

	return c.errorFromResponse(resp)
}

// errorFromResponse maps a non-2xx response onto the typed error taxonomy.
func (c *Client) errorFromResponse(resp *http.Response) error {
	detail := problemDetail(resp.Body)

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return &AuthError{Detail: detail}
	case resp.StatusCode == http.StatusUnprocessableEntity:
		return &ProcessingError{Detail: detail}
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusRequestEntityTooLarge:
		return &ValidationError{Status: resp.StatusCode, Detail: detail}
	case resp.StatusCode >= 500:
		// Server-side failures are retryable from the client's perspective.
		return &NetworkError{Err: fmt.Errorf("server error (%d): %s", resp.StatusCode, detail)}
	default:
		return &UnknownError{Status: resp.StatusCode, Detail: detail}
	}
}

// problemDetail extracts the detail field from an RFC 7807 body.
func problemDetail(body io.Reader) string {
	var problem struct {
		Title  string `json:"title"`
		Detail string `json:"detail"`
	}
	raw, err := io.ReadAll(io.LimitReader(body, 64<<10))
	if err != nil {
		return "unreadable response body"
	}
	if err := json.Unmarshal(raw, &problem); err != nil || (problem.Detail == "" && problem.Title == "") {
		return string(raw)
	}
	if problem.Detail == "" {
		return problem.Title
	}
	return problem.Detail
}
