package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIProvider wraps an OpenAI-compatible API client (OpenAI, Ollama, vLLM, LM Studio).
type OpenAIProvider struct {
	api   *openai.Client
	model string
	// Local servers usually understand only json_object, so json_schema is
	// used against api.openai.com alone unless overridden.
	strictSchema bool
}

// NewOpenAIProvider creates a provider. An empty baseURL means api.openai.com.
func NewOpenAIProvider(baseURL, apiKey, modelName string) *OpenAIProvider {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &OpenAIProvider{
		api:          openai.NewClientWithConfig(config),
		model:        modelName,
		strictSchema: baseURL == "",
	}
}

// WithStrictSchema forces json_schema (true) or json_object (false) output.
func (p *OpenAIProvider) WithStrictSchema(strict bool) *OpenAIProvider {
	p.strictSchema = strict
	return p
}

func (p *OpenAIProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	chatMsgs := make([]openai.ChatCompletionMessage, 0, len(req.Messages)+1)
	if req.System != "" {
		chatMsgs = append(chatMsgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: req.System})
	}
	for _, m := range req.Messages {
		role := openai.ChatMessageRoleUser
		if m.Role == RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		chatMsgs = append(chatMsgs, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}

	format, err := p.responseFormat(req.Schema)
	if err != nil {
		return nil, err
	}

	resp, err := p.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:          p.model,
		Messages:       chatMsgs,
		ResponseFormat: format,
		MaxTokens:      req.MaxTokens,
		Temperature:    float32(req.Temperature),
	})
	if err != nil {
		return nil, p.wrapError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, &ErrInvalidResponse{Err: errors.New("LLM returned no choices")}
	}

	choice := resp.Choices[0]
	stop := StopEnd
	if choice.FinishReason == openai.FinishReasonLength {
		stop = StopMaxTokens
	}
	return &Response{
		Content: json.RawMessage(choice.Message.Content),
		Usage: Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
		},
		Model:      resp.Model,
		StopReason: stop,
	}, nil
}

func (p *OpenAIProvider) responseFormat(schema *Schema) (*openai.ChatCompletionResponseFormat, error) {
	if schema == nil {
		return nil, nil
	}
	if !p.strictSchema {
		return &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject}, nil
	}
	def, err := json.Marshal(schema.Definition)
	if err != nil {
		return nil, fmt.Errorf("marshal schema %q: %w", schema.Name, err)
	}
	return &openai.ChatCompletionResponseFormat{
		Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
		JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
			Name:        schema.Name,
			Description: schema.Description,
			Schema:      json.RawMessage(def),
			Strict:      true,
		},
	}, nil
}

func (p *OpenAIProvider) ModelID() string {
	return p.model
}

// Ping lists models to check that the endpoint is up and the key is accepted.
func (p *OpenAIProvider) Ping(ctx context.Context) error {
	if _, err := p.api.ListModels(ctx); err != nil {
		return p.wrapError(err)
	}
	return nil
}

func (p *OpenAIProvider) wrapError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return classifyStatus("openai", apiErr.HTTPStatusCode, err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return classifyStatus("openai", reqErr.HTTPStatusCode, err)
	}
	return &ErrProviderUnavailable{Provider: "openai", Err: err}
}
