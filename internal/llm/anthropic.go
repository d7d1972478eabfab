package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

var anthropicModels = map[string]string{
	"claude-sonnet": "claude-sonnet-4-20250514",
	"claude-haiku":  "claude-haiku-4-5-20251001",
}

// AnthropicProvider drafts lessons through a forced tool call: the model
// must call submit_lesson, whose input schema is the lesson shape.
type AnthropicProvider struct {
	client anthropic.Client
	model  string
	tool   anthropic.ToolUnionParam
}

// NewAnthropicProvider creates a provider for cfg.
func NewAnthropicProvider(cfg ProviderConfig) (*AnthropicProvider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("anthropic API key is required")
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	tool := anthropic.ToolUnionParamOfTool(anthropic.ToolInputSchemaParam{
		Properties: lessonProperties,
		Required:   lessonRequired,
	}, lessonTool)
	tool.OfTool.Description = anthropic.String(lessonToolDescription)

	return &AnthropicProvider{
		client: anthropic.NewClient(opts...),
		model:  resolveModel(cfg.Model, anthropicModels),
		tool:   tool,
	}, nil
}

func (p *AnthropicProvider) Model() string { return p.model }

func (p *AnthropicProvider) Draft(ctx context.Context, req Request) (*Draft, error) {
	params := anthropic.MessageNewParams{
		Model:      anthropic.Model(p.model),
		MaxTokens:  int64(req.MaxTokens),
		System:     []anthropic.TextBlockParam{{Text: systemPrompt}},
		Messages:   []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(brief(req)))},
		Tools:      []anthropic.ToolUnionParam{p.tool},
		ToolChoice: anthropic.ToolChoiceParamOfTool(lessonTool),
	}
	if req.Temperature > 0 {
		params.Temperature = anthropic.Float(req.Temperature)
	}

	msg, err := p.client.Messages.New(ctx, params)
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return nil, fromStatus(apiErr.StatusCode, err)
		}
		return nil, &Error{Kind: Unavailable, Err: err}
	}

	r := reply{
		model: string(msg.Model),
		usage: Usage{
			InputTokens:  int(msg.Usage.InputTokens),
			OutputTokens: int(msg.Usage.OutputTokens),
		},
		truncated: msg.StopReason == anthropic.StopReasonMaxTokens,
	}
	for _, block := range msg.Content {
		if block.Type == "tool_use" && block.Name == lessonTool {
			r.body = block.Input
			return r.decode()
		}
	}
	if r.truncated {
		return r.decode()
	}
	return nil, &Error{Kind: BadReply, Err: fmt.Errorf("model did not call %s", lessonTool)}
}

// resolveModel maps a friendly model name to a vendor model ID. Unknown
// names pass through so full model IDs work too.
func resolveModel(name string, models map[string]string) string {
	if id, ok := models[name]; ok {
		return id
	}
	return name
}
