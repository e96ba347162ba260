// Package assistant answers in-session chat questions through the Anthropic
// Messages API, constrained to the project the user is focusing on.
package assistant

import (
	"context"
	"fmt"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rs/zerolog"

	"github.com/pabu-app/focusd/internal/storage"
)

const systemPromptTemplate = `You are Claude, an AI assistant integrated into Pabu, a focus and productivity app.

CURRENT FOCUS SESSION:
Project: "%s"
Description: %s

CRITICAL INSTRUCTIONS:
- You MUST stay focused on "%s" project topics
- ONLY answer questions directly related to this project or its learning objectives
- If asked about unrelated topics, respond: "I'm here to help you stay focused on your %s project. How can I assist you with that?"
- Provide specific, actionable guidance that helps achieve the project goals
- Keep responses concise and project-focused
- When helpful, provide relevant links to resources, tutorials, or documentation that support the project goals
- When providing lists, format each item on a separate line for better readability`

const (
	errorReplyPrefix = "Sorry, there was an error connecting to the AI assistant: "
	emptyReply       = "Sorry, I couldn't generate a response."
)

// MessagesClient captures the subset of the Anthropic SDK used by the
// assistant. Satisfied by *sdk.MessageService.
type MessagesClient interface {
	New(ctx context.Context, body sdk.MessageNewParams, opts ...option.RequestOption) (*sdk.Message, error)
}

// Config holds assistant settings.
type Config struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float64
}

// Assistant produces project-focused chat replies.
type Assistant struct {
	msg         MessagesClient
	model       string
	maxTokens   int64
	temperature float64
	logger      zerolog.Logger
}

// New builds an assistant from configuration. Returns nil when no API key is
// configured; callers treat a nil assistant as unavailable.
func New(cfg Config, logger zerolog.Logger) *Assistant {
	if cfg.APIKey == "" {
		return nil
	}
	client := sdk.NewClient(option.WithAPIKey(cfg.APIKey))
	return NewWithClient(&client.Messages, cfg, logger)
}

// NewWithClient builds an assistant over an existing messages client.
func NewWithClient(msg MessagesClient, cfg Config, logger zerolog.Logger) *Assistant {
	model := cfg.Model
	if model == "" {
		model = "claude-3-5-sonnet-20241022"
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1000
	}
	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = 0.7
	}
	return &Assistant{
		msg:         msg,
		model:       model,
		maxTokens:   int64(maxTokens),
		temperature: temperature,
		logger:      logger.With().Str("component", "assistant").Logger(),
	}
}

// Reply answers the user's question in the context of the project. Prior user
// messages carry the conversation; assistant turns are not replayed. Failures
// surface as apologetic reply text, never as an error.
func (a *Assistant) Reply(ctx context.Context, project storage.Project, priorUserMessages []string, input string) string {
	system := fmt.Sprintf(systemPromptTemplate,
		project.Title, project.ShortDescription, project.Title, project.Title)

	messages := make([]sdk.MessageParam, 0, len(priorUserMessages)+1)
	for _, m := range priorUserMessages {
		messages = append(messages, sdk.NewUserMessage(sdk.NewTextBlock(m)))
	}
	messages = append(messages, sdk.NewUserMessage(sdk.NewTextBlock(input)))

	resp, err := a.msg.New(ctx, sdk.MessageNewParams{
		Model:       sdk.Model(a.model),
		MaxTokens:   a.maxTokens,
		Temperature: sdk.Float(a.temperature),
		System:      []sdk.TextBlockParam{{Text: system}},
		Messages:    messages,
	})
	if err != nil {
		a.logger.Warn().Err(err).Str("project", project.Title).Msg("Chat completion failed")
		return errorReplyPrefix + err.Error()
	}

	if len(resp.Content) == 0 || resp.Content[0].Type != "text" || resp.Content[0].Text == "" {
		return emptyReply
	}
	return resp.Content[0].Text
}
