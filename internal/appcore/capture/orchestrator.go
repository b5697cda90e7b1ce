// Package capture drives the photo-analysis flow as an explicit state
// machine: idle → capturing → validating → compressing → analyzing →
// results or error, with Reset returning to idle from anywhere.
package capture

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"maisoku/internal/config"
	"maisoku/internal/domain/models"
)

// State is the orchestrator's position in the capture flow.
type State string

const (
	StateIdle        State = "idle"
	StateCapturing   State = "capturing"
	StateValidating  State = "validating"
	StateCompressing State = "compressing"
	StateAnalyzing   State = "analyzing"
	StateResults     State = "results"
	StateError       State = "error"
)

// Source is where the image came from.
type Source string

const (
	SourceCamera  Source = "camera"
	SourceGallery Source = "gallery"
)

// allowedExtensions are the image formats accepted from the picker.
var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".heic": true,
	".heif": true,
	".webp": true,
}

// Analyzer is the slice of the API client the orchestrator needs.
type Analyzer interface {
	AnalyzeCameraImage(ctx context.Context, image []byte, prefs *models.UserPreference, saveHistory bool) (*models.AnalysisResult, error)
}

// Session answers whether the user may run a camera analysis at all, and
// carries the preference set that rides along with the upload.
type Session interface {
	SignedIn() bool
	Preferences() *models.UserPreference
}

// FlowError is what the UI shows when a step fails: a sanitized message and
// the state the flow returned to. The raw cause goes to the debug log only.
type FlowError struct {
	Message string
	// LoginRequired distinguishes "sign in first" from input problems.
	LoginRequired bool
}

func (e *FlowError) Error() string { return e.Message }

// Orchestrator runs one capture flow at a time. A second Analyze cannot
// start while one is in flight, and a Reset makes any in-flight response
// stale: responses carry the sequence number of the request that started
// them, and only the latest sequence may deliver results.
type Orchestrator struct {
	analyzer Analyzer
	session  Session
	logger   *slog.Logger

	mu              sync.Mutex
	state           State
	source          Source
	cameraAvailable bool
	seq             uint64
	result          *models.AnalysisResult
	lastErr         *FlowError
}

// NewOrchestrator creates an idle orchestrator with the camera assumed
// available until reported otherwise.
func NewOrchestrator(analyzer Analyzer, session Session, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		analyzer:        analyzer,
		session:         session,
		logger:          logger,
		state:           StateIdle,
		cameraAvailable: true,
	}
}

// State returns the current flow state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Result returns the latest delivered analysis, or nil.
func (o *Orchestrator) Result() *models.AnalysisResult {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.result
}

// LastError returns the error that put the flow into the error state, or nil.
func (o *Orchestrator) LastError() *FlowError {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastErr
}

// CameraUnavailable records a camera init failure. The capture path is
// disabled; the gallery path keeps working.
func (o *Orchestrator) CameraUnavailable(cause error) {
	o.mu.Lock()
	o.cameraAvailable = false
	o.mu.Unlock()
	o.logger.Warn("camera unavailable, gallery only", "error", cause)
}

// CameraAvailable reports whether the camera source is usable.
func (o *Orchestrator) CameraAvailable() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.cameraAvailable
}

// Start moves idle → capturing for the given source.
func (o *Orchestrator) Start(source Source) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state != StateIdle {
		return fmt.Errorf("cannot start capture from state %q", o.state)
	}
	if source == SourceCamera && !o.cameraAvailable {
		return fmt.Errorf("camera is unavailable")
	}

	o.state = StateCapturing
	o.source = source
	o.lastErr = nil
	return nil
}

// Analyze validates, compresses and uploads a captured image, blocking until
// the flow lands in results or error. filename is used for the extension
// check only.
func (o *Orchestrator) Analyze(ctx context.Context, filename string, data []byte, saveHistory bool) (*models.AnalysisResult, error) {
	seq, err := o.beginValidation()
	if err != nil {
		return nil, err
	}

	if err := validateImage(filename, data); err != nil {
		return nil, o.fail(seq, err, err.Message)
	}
	if !o.session.SignedIn() {
		// Rejected before any network traffic happens.
		flowErr := &FlowError{Message: "写真解析にはログインが必要です", LoginRequired: true}
		return nil, o.fail(seq, flowErr, flowErr.Message)
	}

	if !o.advance(seq, StateCompressing) {
		return nil, staleFlowError()
	}
	compressed, err := Compress(data)
	if err != nil {
		flowErr := &FlowError{Message: "画像の処理に失敗しました。別の画像でお試しください。"}
		return nil, o.fail(seq, flowErr, err.Error())
	}
	o.logger.Debug("image compressed",
		"passes", compressed.Passes,
		"quality", compressed.Quality,
		"bytes", len(compressed.Data),
	)

	if !o.advance(seq, StateAnalyzing) {
		return nil, staleFlowError()
	}
	result, err := o.analyzer.AnalyzeCameraImage(ctx, compressed.Data, o.session.Preferences(), saveHistory)
	if err != nil {
		flowErr := &FlowError{Message: "解析に失敗しました。通信環境をご確認のうえ再度お試しください。"}
		return nil, o.fail(seq, flowErr, err.Error())
	}

	return result, o.deliver(seq, result)
}

// Reset returns to idle from any state. Whatever was in flight becomes
// stale and can no longer deliver results.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.seq++
	o.state = StateIdle
	o.result = nil
	o.lastErr = nil
}

// beginValidation moves capturing → validating and claims a sequence number
// for this flow.
func (o *Orchestrator) beginValidation() (uint64, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state != StateCapturing {
		return 0, fmt.Errorf("cannot analyze from state %q", o.state)
	}
	o.seq++
	o.state = StateValidating
	return o.seq, nil
}

// advance moves to the next state if this flow is still the current one.
func (o *Orchestrator) advance(seq uint64, next State) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if seq != o.seq {
		return false
	}
	o.state = next
	return true
}

// deliver publishes the result unless the flow went stale underneath us.
func (o *Orchestrator) deliver(seq uint64, result *models.AnalysisResult) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if seq != o.seq {
		o.logger.Debug("discarding stale analysis response", "seq", seq, "current", o.seq)
		return staleFlowError()
	}
	o.state = StateResults
	o.result = result
	return nil
}

// fail records the sanitized error and moves to the error state. detail is
// the raw cause and only goes to the debug log.
func (o *Orchestrator) fail(seq uint64, flowErr *FlowError, detail string) error {
	o.logger.Debug("capture flow failed", "seq", seq, "detail", detail)

	o.mu.Lock()
	defer o.mu.Unlock()
	if seq != o.seq {
		return staleFlowError()
	}
	o.state = StateError
	o.lastErr = flowErr
	return flowErr
}

func staleFlowError() error {
	return &FlowError{Message: "解析がキャンセルされました"}
}

// validateImage checks the captured file before anything expensive runs.
func validateImage(filename string, data []byte) *FlowError {
	if len(data) == 0 {
		return &FlowError{Message: "画像を読み込めませんでした。もう一度お試しください。"}
	}
	if len(data) > config.MaxUploadBytes {
		return &FlowError{Message: "画像サイズが大きすぎます（上限5MB）。別の画像をお選びください。"}
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExtensions[ext] {
		return &FlowError{Message: "対応していない画像形式です。JPEG・PNG・HEIC・WebPをご利用ください。"}
	}
	return nil
}
