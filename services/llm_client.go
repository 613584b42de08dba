package services

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"stackedwins/config"
)

// ChatMessage is one turn sent to the completion service.
type ChatMessage struct {
	Role    string
	Content string
}

const (
	RoleSystem    = openai.ChatMessageRoleSystem
	RoleUser      = openai.ChatMessageRoleUser
	RoleAssistant = openai.ChatMessageRoleAssistant
)

type CompletionRequest struct {
	Messages    []ChatMessage
	Temperature float32
	MaxTokens   int
	// JSONObject asks the service for a single JSON object response.
	JSONObject bool
}

// Completer is the generative completion collaborator used for plan
// generation and coaching.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

var errEmptyCompletion = errors.New("completion returned no choices")

type openAICompleter struct {
	client *openai.Client
	model  string
}

// NewOpenAICompleter talks to any OpenAI-compatible chat completions API.
func NewOpenAICompleter(cfg config.LLMConfig) Completer {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &openAICompleter{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
	}
}

func (c *openAICompleter) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}
	creq := openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	if req.JSONObject {
		creq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := c.client.CreateChatCompletion(ctx, creq)
	if err != nil {
		return "", fmt.Errorf("chat completion (model %s): %w", c.model, err)
	}
	if len(resp.Choices) == 0 {
		return "", errEmptyCompletion
	}
	return resp.Choices[0].Message.Content, nil
}
