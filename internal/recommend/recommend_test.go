package recommend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/rs/zerolog"

	"github.com/pabu-app/focusd/internal/storage"
)

type memRecommendationStore struct {
	mu      sync.Mutex
	entries map[string]storage.RecommendationCacheEntry
	deletes int
}

func newMemStore() *memRecommendationStore {
	return &memRecommendationStore{entries: map[string]storage.RecommendationCacheEntry{}}
}

func (m *memRecommendationStore) Get(ctx context.Context, projectID string) (*storage.RecommendationCacheEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[projectID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &entry, nil
}

func (m *memRecommendationStore) Put(ctx context.Context, projectID string, entry storage.RecommendationCacheEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[projectID] = entry
	return nil
}

func (m *memRecommendationStore) Delete(ctx context.Context, projectID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[projectID]; !ok {
		return storage.ErrNotFound
	}
	delete(m.entries, projectID)
	m.deletes++
	return nil
}

type fakeChat struct {
	content string
	err     error
	calls   int
}

func (f *fakeChat) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.calls++
	if f.err != nil {
		return openai.ChatCompletionResponse{}, f.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: f.content}},
		},
	}, nil
}

func validRecommendationsJSON(n int) string {
	recs := make([]storage.Recommendation, n)
	for i := range recs {
		recs[i] = storage.Recommendation{
			Title:  fmt.Sprintf("Resource %d", i+1),
			Domain: "example.com",
			URL:    fmt.Sprintf("https://example.com/%d", i+1),
		}
	}
	data, _ := json.Marshal(recs)
	return string(data)
}

func testRecProject() storage.Project {
	return storage.Project{
		ID:               "proj-1",
		Title:            "Ocean Explorers",
		ShortDescription: "Learn about ocean life",
	}
}

func TestParseRecommendationsPlain(t *testing.T) {
	recs, err := parseRecommendations(validRecommendationsJSON(12))
	if err != nil {
		t.Fatalf("parseRecommendations: %v", err)
	}
	if len(recs) != 12 {
		t.Errorf("len = %d, want 12", len(recs))
	}
}

func TestParseRecommendationsFenced(t *testing.T) {
	content := "```json\n" + validRecommendationsJSON(10) + "\n```"
	recs, err := parseRecommendations(content)
	if err != nil {
		t.Fatalf("parseRecommendations: %v", err)
	}
	if len(recs) != 10 {
		t.Errorf("len = %d, want 10", len(recs))
	}
}

func TestParseRecommendationsWithProse(t *testing.T) {
	content := "Here are your resources:\n" + validRecommendationsJSON(10) + "\nHope that helps!"
	recs, err := parseRecommendations(content)
	if err != nil {
		t.Fatalf("parseRecommendations: %v", err)
	}
	if len(recs) != 10 {
		t.Errorf("len = %d, want 10", len(recs))
	}
}

func TestParseRecommendationsGarbage(t *testing.T) {
	if _, err := parseRecommendations("I could not find anything."); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestFinderGenerateRejectsShortLists(t *testing.T) {
	chat := &fakeChat{content: validRecommendationsJSON(5)}
	f := newFinder(chat, FinderConfig{MinResults: 10})

	if _, err := f.Generate(context.Background(), testRecProject()); err == nil {
		t.Fatal("expected error for short list")
	}
}

func TestFinderGenerateRejectsIncompleteEntries(t *testing.T) {
	recs := make([]storage.Recommendation, 12)
	for i := range recs {
		recs[i] = storage.Recommendation{Title: "t", Domain: "d", URL: "https://d/x"}
	}
	recs[7].URL = ""
	data, _ := json.Marshal(recs)

	chat := &fakeChat{content: string(data)}
	f := newFinder(chat, FinderConfig{})

	if _, err := f.Generate(context.Background(), testRecProject()); err == nil {
		t.Fatal("expected error for missing fields")
	}
}

func TestFinderGeneratePromptIncludesProject(t *testing.T) {
	var captured openai.ChatCompletionRequest
	chat := &capturingChat{content: validRecommendationsJSON(20), captured: &captured}
	f := newFinder(chat, FinderConfig{Model: "test-model"})

	if _, err := f.Generate(context.Background(), testRecProject()); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if captured.Model != "test-model" {
		t.Errorf("model = %q", captured.Model)
	}
	if len(captured.Messages) != 2 {
		t.Fatalf("messages = %d, want 2", len(captured.Messages))
	}
	if !strings.Contains(captured.Messages[1].Content, "PROJECT: Ocean Explorers") {
		t.Errorf("prompt missing project title: %q", captured.Messages[1].Content)
	}
	if !strings.Contains(captured.Messages[1].Content, "SHORT DESCRIPTION: Learn about ocean life") {
		t.Errorf("prompt missing short description")
	}
}

type capturingChat struct {
	content  string
	captured *openai.ChatCompletionRequest
}

func (c *capturingChat) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	*c.captured = req
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: c.content}},
		},
	}, nil
}

func TestCacheRoundTrip(t *testing.T) {
	store := newMemStore()
	cache := NewCache(store, time.Hour, zerolog.Nop())

	recs := []storage.Recommendation{{Title: "A", Domain: "a.com", URL: "https://a.com"}}
	cache.Put(context.Background(), "p1", recs)

	got, ok := cache.Get(context.Background(), "p1")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if len(got) != 1 || got[0].Title != "A" {
		t.Errorf("got %+v", got)
	}

	if _, ok := cache.Get(context.Background(), "p2"); ok {
		t.Error("expected miss for unknown project")
	}
}

func TestCacheExpiry(t *testing.T) {
	store := newMemStore()
	cache := NewCache(store, 24*time.Hour, zerolog.Nop())

	current := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return current }

	cache.Put(context.Background(), "p1", []storage.Recommendation{{Title: "A", Domain: "a.com", URL: "https://a.com"}})

	// Just under the TTL: still served.
	current = current.Add(24*time.Hour - time.Second)
	if _, ok := cache.Get(context.Background(), "p1"); !ok {
		t.Fatal("expected hit just under TTL")
	}

	// At the TTL: never served, dropped from the store.
	current = current.Add(2 * time.Second)
	if _, ok := cache.Get(context.Background(), "p1"); ok {
		t.Fatal("expected miss past TTL")
	}
	if _, err := store.Get(context.Background(), "p1"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected expired entry deleted, got %v", err)
	}
}

func TestCacheServesPersistedEntries(t *testing.T) {
	store := newMemStore()
	store.entries["p1"] = storage.RecommendationCacheEntry{
		Recommendations: []storage.Recommendation{{Title: "A", Domain: "a.com", URL: "https://a.com"}},
		Timestamp:       time.Now(),
	}

	// A fresh cache has an empty LRU and must fall through to the store.
	cache := NewCache(store, 24*time.Hour, zerolog.Nop())
	got, ok := cache.Get(context.Background(), "p1")
	if !ok || len(got) != 1 {
		t.Fatalf("expected persisted entry served, got %v %v", got, ok)
	}
}

func TestServiceUsesCacheFirst(t *testing.T) {
	store := newMemStore()
	cache := NewCache(store, 24*time.Hour, zerolog.Nop())
	chat := &fakeChat{content: validRecommendationsJSON(20)}
	svc := NewService(cache, newFinder(chat, FinderConfig{}), zerolog.Nop())

	first := svc.ForProject(context.Background(), testRecProject(), false)
	if len(first) != 20 {
		t.Fatalf("len = %d, want 20", len(first))
	}
	if chat.calls != 1 {
		t.Fatalf("calls = %d, want 1", chat.calls)
	}

	second := svc.ForProject(context.Background(), testRecProject(), false)
	if chat.calls != 1 {
		t.Errorf("expected cached result, finder called %d times", chat.calls)
	}
	if len(second) != 20 {
		t.Errorf("len = %d, want 20", len(second))
	}
}

func TestServiceForceRegenerates(t *testing.T) {
	store := newMemStore()
	cache := NewCache(store, 24*time.Hour, zerolog.Nop())
	chat := &fakeChat{content: validRecommendationsJSON(20)}
	svc := NewService(cache, newFinder(chat, FinderConfig{}), zerolog.Nop())

	svc.ForProject(context.Background(), testRecProject(), false)
	svc.ForProject(context.Background(), testRecProject(), true)

	if chat.calls != 2 {
		t.Errorf("calls = %d, want 2", chat.calls)
	}
}

func TestServiceFallsBackOnFinderError(t *testing.T) {
	store := newMemStore()
	cache := NewCache(store, 24*time.Hour, zerolog.Nop())
	chat := &fakeChat{err: errors.New("boom")}
	svc := NewService(cache, newFinder(chat, FinderConfig{}), zerolog.Nop())

	got := svc.ForProject(context.Background(), testRecProject(), false)
	if len(got) != 20 {
		t.Fatalf("expected 20 fallback resources, got %d", len(got))
	}

	// The fallback result is cached; the broken finder is not retried.
	svc.ForProject(context.Background(), testRecProject(), false)
	if chat.calls != 1 {
		t.Errorf("calls = %d, want 1", chat.calls)
	}
}

func TestServiceWithoutFinder(t *testing.T) {
	store := newMemStore()
	cache := NewCache(store, 24*time.Hour, zerolog.Nop())
	svc := NewService(cache, nil, zerolog.Nop())

	got := svc.ForProject(context.Background(), testRecProject(), false)
	if len(got) != 20 {
		t.Fatalf("expected 20 fallback resources, got %d", len(got))
	}
}

func TestFallbackRecommendationsThemed(t *testing.T) {
	space := FallbackRecommendations("Space Adventures")
	if len(space) != 20 {
		t.Fatalf("len = %d, want 20", len(space))
	}
	found := false
	for _, r := range space {
		if r.Domain == "nasa.gov" {
			found = true
		}
		if r.Title == "" || r.Domain == "" || r.URL == "" {
			t.Errorf("incomplete entry %+v", r)
		}
	}
	if !found {
		t.Error("expected space-themed resources")
	}

	generic := FallbackRecommendations("Knitting")
	if len(generic) != 20 {
		t.Fatalf("len = %d, want 20", len(generic))
	}
}
