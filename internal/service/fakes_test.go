package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/uuid"

	"maisoku/internal/domain"
	"maisoku/internal/domain/models"
	"maisoku/internal/domain/repositories"
	"maisoku/internal/prompt"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakePreferenceRepo is an in-memory PreferenceRepository.
type fakePreferenceRepo struct {
	mu     sync.Mutex
	stored map[string]*models.UserPreference
	getErr error
}

func newFakePreferenceRepo() *fakePreferenceRepo {
	return &fakePreferenceRepo{stored: make(map[string]*models.UserPreference)}
}

func (f *fakePreferenceRepo) GetByUserID(ctx context.Context, userID string) (*models.UserPreference, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	prefs, ok := f.stored[userID]
	if !ok {
		return nil, nil
	}
	copied := *prefs
	return &copied, nil
}

func (f *fakePreferenceRepo) Upsert(ctx context.Context, prefs *models.UserPreference) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *prefs
	f.stored[prefs.UserID] = &copied
	return nil
}

// fakeHistoryRepo is an in-memory HistoryRepository.
type fakeHistoryRepo struct {
	mu        sync.Mutex
	entries   map[uuid.UUID]*models.HistoryEntry
	createErr error
}

func newFakeHistoryRepo() *fakeHistoryRepo {
	return &fakeHistoryRepo{entries: make(map[uuid.UUID]*models.HistoryEntry)}
}

func (f *fakeHistoryRepo) Create(ctx context.Context, entry *models.HistoryEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	entry.ID = uuid.New()
	copied := *entry
	f.entries[entry.ID] = &copied
	return nil
}

func (f *fakeHistoryRepo) List(ctx context.Context, userID string, limit int) ([]models.HistoryEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.HistoryEntry
	for _, e := range f.entries {
		if e.UserID == userID && len(out) < limit {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (f *fakeHistoryRepo) GetByID(ctx context.Context, userID string, id uuid.UUID) (*models.HistoryEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry, ok := f.entries[id]
	if !ok || entry.UserID != userID {
		return nil, &domain.NotFoundError{Message: "history entry not found"}
	}
	copied := *entry
	return &copied, nil
}

func (f *fakeHistoryRepo) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry, ok := f.entries[id]
	if ok && entry.UserID == userID {
		delete(f.entries, id)
	}
	return nil
}

// fakeImageStore records uploads and deletions.
type fakeImageStore struct {
	mu        sync.Mutex
	objects   map[string][]byte
	deleted   []string
	deleteErr error
}

func newFakeImageStore() *fakeImageStore {
	return &fakeImageStore{objects: make(map[string][]byte)}
}

func (f *fakeImageStore) Upload(ctx context.Context, key string, image []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = image
	return nil
}

func (f *fakeImageStore) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.objects, key)
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeImageStore) PublicURL(key string) string {
	return "https://images.example.com/" + key
}

func (f *fakeImageStore) objectCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.objects)
}

// fakeTxManager runs the function without a real transaction.
type fakeTxManager struct{}

func (fakeTxManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	return fn(ctx)
}

// fakeProvider returns canned analysis text and records prompts.
type fakeProvider struct {
	mu         sync.Mutex
	text       string
	err        error
	imageCalls int
	textCalls  int
	lastPrompt string
	lastImage  []byte
}

func (f *fakeProvider) AnalyzeImage(ctx context.Context, image []byte, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.imageCalls++
	f.lastPrompt = prompt
	f.lastImage = image
	return f.text, f.err
}

func (f *fakeProvider) AnalyzeText(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.textCalls++
	f.lastPrompt = prompt
	return f.text, f.err
}

func (f *fakeProvider) Name() string { return "fake" }

// mustBuilder loads the real embedded prompt templates.
func mustBuilder(t *testing.T) *prompt.Builder {
	t.Helper()
	b, err := prompt.NewBuilder()
	if err != nil {
		t.Fatalf("load prompt templates: %v", err)
	}
	return b
}

var errBoom = fmt.Errorf("boom")
