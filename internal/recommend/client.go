// Package recommend produces per-project lists of educational web resources.
// An LLM-backed finder generates them, a 24 hour cache keeps them, and a
// curated static list covers outages. Consumers always receive a usable list.
package recommend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/pabu-app/focusd/internal/storage"
)

const finderSystemPrompt = "You are a helpful educational resource finder that provides real, working URLs to educational content. Always respond with valid JSON only."

const finderPromptTemplate = `You are an educational resource finder. Given a project name, type, and detailed descriptions, find 20 highly relevant, educational, and reputable online resources that would help someone learn about this specific topic.

PROJECT: %s
TYPE: %s
SHORT DESCRIPTION: %s
LONG DESCRIPTION: %s

Requirements:
- Find actual, real websites with working URLs
- Prioritize educational, official, or well-known learning platforms
- Include diverse resource types (documentation, tutorials, interactive tools, courses, videos, articles, tools)
- Ensure resources are appropriate for learning and skill development
- Focus on the specific project goals and descriptions provided
- Provide a good mix of beginner, intermediate, and advanced resources
- Include both free and premium resources when relevant

Respond with ONLY valid JSON in this exact format (exactly 20 resources):
[
  {
    "title": "Resource Title 1",
    "domain": "example.com",
    "url": "https://example.com/path"
  }
]`

// ChatClient captures the subset of the go-openai client the finder uses.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// FinderConfig configures the LLM-backed resource finder.
type FinderConfig struct {
	APIKey     string
	BaseURL    string
	Model      string
	MinResults int
}

// Finder generates resource recommendations through a chat completion API.
type Finder struct {
	chat       ChatClient
	model      string
	minResults int
}

// NewFinder builds a finder against the configured completion endpoint.
// Returns nil when no API key is configured; callers treat a nil finder as
// permanently unavailable.
func NewFinder(cfg FinderConfig) *Finder {
	if cfg.APIKey == "" {
		return nil
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return newFinder(openai.NewClientWithConfig(clientCfg), cfg)
}

func newFinder(chat ChatClient, cfg FinderConfig) *Finder {
	model := cfg.Model
	if model == "" {
		model = "google/gemini-2.5-pro"
	}
	minResults := cfg.MinResults
	if minResults <= 0 {
		minResults = 10
	}
	return &Finder{chat: chat, model: model, minResults: minResults}
}

// Generate asks the model for resources matching the project. The response
// must be a JSON array with at least the configured minimum of complete
// entries; anything less is an error and the caller falls back.
func (f *Finder) Generate(ctx context.Context, project storage.Project) ([]storage.Recommendation, error) {
	prompt := fmt.Sprintf(finderPromptTemplate,
		project.Title,
		orDefault(projectType(project), "General"),
		orDefault(project.ShortDescription, "Not specified"),
		orDefault(project.LongDescription, "Not specified"))

	resp, err := f.chat.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       f.model,
		Temperature: 0.3,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: finderSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("requesting recommendations: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("completion returned no choices")
	}

	recs, err := parseRecommendations(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}
	if len(recs) < f.minResults {
		return nil, fmt.Errorf("expected at least %d recommendations, got %d", f.minResults, len(recs))
	}
	for _, rec := range recs {
		if rec.Title == "" || rec.Domain == "" || rec.URL == "" {
			return nil, errors.New("recommendation missing required fields")
		}
	}
	return recs, nil
}

var fencedJSONPattern = regexp.MustCompile("(?s)```(?:json)?\\s*(\\[.*\\])\\s*```")

// parseRecommendations extracts a JSON array from model output that may be
// wrapped in markdown fences or surrounded by prose.
func parseRecommendations(content string) ([]storage.Recommendation, error) {
	jsonStr := strings.TrimSpace(content)

	if m := fencedJSONPattern.FindStringSubmatch(jsonStr); m != nil {
		jsonStr = m[1]
	}
	start := strings.Index(jsonStr, "[")
	end := strings.LastIndex(jsonStr, "]")
	if start != -1 && end > start {
		jsonStr = jsonStr[start : end+1]
	}

	var recs []storage.Recommendation
	if err := json.Unmarshal([]byte(jsonStr), &recs); err != nil {
		return nil, fmt.Errorf("parsing recommendations JSON: %w", err)
	}
	return recs, nil
}

// projectType is a placeholder until projects carry an explicit category.
func projectType(storage.Project) string { return "" }

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
