package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

var openaiModels = map[string]string{
	"gpt-4o":      "gpt-4o",
	"gpt-4o-mini": "gpt-4o-mini",
}

const defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

// OpenAIProvider drafts lessons through a required function call. It also
// serves OpenRouter and other OpenAI-compatible APIs via BaseURL.
type OpenAIProvider struct {
	client *openai.Client
	model  string
}

// NewOpenAIProvider creates a provider for the OpenAI API.
func NewOpenAIProvider(cfg ProviderConfig) (*OpenAIProvider, error) {
	cfg.Model = resolveModel(cfg.Model, openaiModels)
	return newChatProvider("openai", cfg)
}

// NewOpenRouterProvider creates a provider for OpenRouter. Model IDs pass
// through unchanged.
func NewOpenRouterProvider(cfg ProviderConfig) (*OpenAIProvider, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultOpenRouterBaseURL
	}
	return newChatProvider("openrouter", cfg)
}

func newChatProvider(name string, cfg ProviderConfig) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s API key is required", name)
	}
	conf := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		conf.BaseURL = cfg.BaseURL
	}
	return &OpenAIProvider{client: openai.NewClientWithConfig(conf), model: cfg.Model}, nil
}

func (p *OpenAIProvider) Model() string { return p.model }

var submitLessonFunc = openai.Tool{
	Type: openai.ToolTypeFunction,
	Function: &openai.FunctionDefinition{
		Name:        lessonTool,
		Description: lessonToolDescription,
		Parameters:  lessonSchema(),
	},
}

func (p *OpenAIProvider) Draft(ctx context.Context, req Request) (*Draft, error) {
	chat := openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: brief(req)},
		},
		MaxCompletionTokens: req.MaxTokens,
		Temperature:         float32(req.Temperature),
		Tools:               []openai.Tool{submitLessonFunc},
		ToolChoice: openai.ToolChoice{
			Type:     openai.ToolTypeFunction,
			Function: openai.ToolFunction{Name: lessonTool},
		},
	}

	resp, err := p.client.CreateChatCompletion(ctx, chat)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return nil, fromStatus(apiErr.HTTPStatusCode, err)
		}
		var reqErr *openai.RequestError
		if errors.As(err, &reqErr) {
			return nil, fromStatus(reqErr.HTTPStatusCode, err)
		}
		return nil, &Error{Kind: Unavailable, Err: err}
	}
	if len(resp.Choices) == 0 {
		return nil, &Error{Kind: BadReply, Err: errors.New("no choices in response")}
	}

	choice := resp.Choices[0]
	r := reply{
		model: resp.Model,
		usage: Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
		},
		truncated: choice.FinishReason == openai.FinishReasonLength,
	}
	for _, call := range choice.Message.ToolCalls {
		if call.Function.Name == lessonTool {
			r.body = json.RawMessage(call.Function.Arguments)
			return r.decode()
		}
	}
	if r.truncated {
		return r.decode()
	}
	return nil, &Error{Kind: BadReply, Err: fmt.Errorf("model did not call %s", lessonTool)}
}
