package llm

import (
	"context"
	"encoding/json"
	"errors"

	"google.golang.org/genai"
)

var geminiModels = map[string]string{
	"gemini-flash": "gemini-2.0-flash",
	"gemini-pro":   "gemini-2.0-pro",
}

// GeminiProvider drafts lessons with Gemini's JSON response mode,
// constrained by geminiLessonSchema.
type GeminiProvider struct {
	client *genai.Client
	model  string
}

// NewGeminiProvider creates a provider for the Gemini API.
func NewGeminiProvider(ctx context.Context, cfg ProviderConfig) (*GeminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini API key is required")
	}
	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions.BaseURL = cfg.BaseURL
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, err
	}
	return &GeminiProvider{client: client, model: resolveModel(cfg.Model, geminiModels)}, nil
}

func (p *GeminiProvider) Model() string { return p.model }

// geminiLessonSchema mirrors lessonSchema in Gemini's schema dialect.
func geminiLessonSchema() *genai.Schema {
	text := func(desc string) *genai.Schema {
		return &genai.Schema{Type: genai.TypeString, Description: desc}
	}
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"name": {
				Type:        genai.TypeString,
				Description: "Short lesson title (1-4 words)",
				MinLength:   genai.Ptr[int64](1),
			},
			"tasks": {
				Type:     genai.TypeArray,
				MinItems: genai.Ptr[int64](1),
				MaxItems: genai.Ptr[int64](MaxTasks),
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"question": text("The problem as the student sees it"),
						"answer":   text("The exact expected answer text"),
					},
					Required:         []string{"question", "answer"},
					PropertyOrdering: []string{"question", "answer"},
				},
			},
		},
		Required:         lessonRequired,
		PropertyOrdering: []string{"name", "tasks"},
	}
}

func (p *GeminiProvider) Draft(ctx context.Context, req Request) (*Draft, error) {
	conf := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: systemPrompt}}},
		MaxOutputTokens:   int32(req.MaxTokens),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    geminiLessonSchema(),
	}
	if req.Temperature > 0 {
		conf.Temperature = genai.Ptr(float32(req.Temperature))
	}

	result, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(brief(req)), conf)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return nil, fromStatus(apiErr.Code, err)
		}
		return nil, &Error{Kind: Unavailable, Err: err}
	}

	r := reply{body: json.RawMessage(result.Text()), model: p.model}
	if result.ModelVersion != "" {
		r.model = result.ModelVersion
	}
	if md := result.UsageMetadata; md != nil {
		r.usage = Usage{
			InputTokens:  int(md.PromptTokenCount),
			OutputTokens: int(md.CandidatesTokenCount),
		}
	}
	if len(result.Candidates) > 0 {
		r.truncated = result.Candidates[0].FinishReason == genai.FinishReasonMaxTokens
	}
	return r.decode()
}
