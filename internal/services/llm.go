package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/huangang/feedbacklens/internal/config"
	"github.com/huangang/feedbacklens/pkg/logger"
	"github.com/ollama/ollama/api"
	"github.com/sashabaranov/go-openai"
	"google.golang.org/genai"
)

const groqBaseURL = "https://api.groq.com/openai/v1"

// GenerateOptions are per-call sampling parameters.
type GenerateOptions struct {
	Temperature float64
	MaxTokens   int
}

// Completion is the text returned by a model plus the token counts it reported.
type Completion struct {
	Content          string
	PromptTokens     int
	CompletionTokens int
}

// TextGenerator produces a completion for a single user prompt.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (*Completion, error)
	Provider() string
	Model() string
}

// LLMClient talks to the configured provider. Groq, OpenAI and any other
// OpenAI-compatible endpoint share one code path.
type LLMClient struct {
	provider string
	baseURL  string
	apiKey   string
	model    string
}

func NewLLMClient(cfg *config.LLMConfig) (*LLMClient, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if provider == "" {
		provider = "groq"
	}

	c := &LLMClient{
		provider: provider,
		baseURL:  cfg.BaseURL,
		apiKey:   cfg.APIKey,
		model:    cfg.Model,
	}

	switch provider {
	case "groq":
		if c.baseURL == "" {
			c.baseURL = groqBaseURL
		}
		if c.model == "" {
			c.model = "llama-3.3-70b-versatile"
		}
	case "openai":
		if c.model == "" {
			c.model = "gpt-4o-mini"
		}
	case "azure":
		if c.baseURL == "" || c.model == "" {
			return nil, fmt.Errorf("azure provider requires base_url and model (deployment name)")
		}
	case "anthropic":
		if c.model == "" {
			c.model = "claude-sonnet-4-20250514"
		}
	case "ollama":
		if c.baseURL == "" {
			c.baseURL = "http://localhost:11434"
		}
		if c.model == "" {
			c.model = "llama3"
		}
	case "gemini":
		if c.model == "" {
			c.model = "gemini-2.5-flash"
		}
	default:
		return nil, fmt.Errorf("unsupported LLM provider %q", cfg.Provider)
	}

	return c, nil
}

func (c *LLMClient) Provider() string { return c.provider }
func (c *LLMClient) Model() string    { return c.model }

func (c *LLMClient) Generate(ctx context.Context, prompt string, opts GenerateOptions) (*Completion, error) {
	logger.Debug().Str("provider", c.provider).Str("model", c.model).Int("max_tokens", opts.MaxTokens).Msg("[AI] generate")

	switch c.provider {
	case "anthropic":
		return c.callAnthropic(ctx, prompt, opts)
	case "ollama":
		return c.callOllama(ctx, prompt, opts)
	case "gemini":
		return c.callGemini(ctx, prompt, opts)
	case "azure":
		return c.callOpenAI(ctx, openai.DefaultAzureConfig(c.apiKey, c.baseURL), prompt, opts)
	default:
		clientConfig := openai.DefaultConfig(c.apiKey)
		if c.baseURL != "" {
			clientConfig.BaseURL = c.baseURL
		}
		return c.callOpenAI(ctx, clientConfig, prompt, opts)
	}
}

func (c *LLMClient) callOpenAI(ctx context.Context, clientConfig openai.ClientConfig, prompt string, opts GenerateOptions) (*Completion, error) {
	client := openai.NewClientWithConfig(clientConfig)

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: float32(opts.Temperature),
		MaxTokens:   opts.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("%s API error: %w", c.provider, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from %s", c.provider)
	}

	return &Completion{
		Content:          resp.Choices[0].Message.Content,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
	}, nil
}

func (c *LLMClient) callAnthropic(ctx context.Context, prompt string, opts GenerateOptions) (*Completion, error) {
	reqOpts := []option.RequestOption{option.WithAPIKey(c.apiKey)}
	if c.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(c.baseURL))
	}
	client := anthropic.NewClient(reqOpts...)

	maxTokens := int64(opts.MaxTokens)
	if maxTokens == 0 {
		maxTokens = 1024
	}

	resp, err := client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
		Temperature: anthropic.Float(opts.Temperature),
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic API error: %w", err)
	}

	var content strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			content.WriteString(block.Text)
		}
	}

	return &Completion{
		Content:          content.String(),
		PromptTokens:     int(resp.Usage.InputTokens),
		CompletionTokens: int(resp.Usage.OutputTokens),
	}, nil
}

func (c *LLMClient) callOllama(ctx context.Context, prompt string, opts GenerateOptions) (*Completion, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid Ollama base URL: %w", err)
	}
	client := api.NewClient(u, http.DefaultClient)

	var (
		content strings.Builder
		result  Completion
	)
	err = client.Chat(ctx, &api.ChatRequest{
		Model: c.model,
		Messages: []api.Message{
			{Role: "user", Content: prompt},
		},
		Options: map[string]interface{}{
			"temperature": opts.Temperature,
			"num_predict": opts.MaxTokens,
		},
	}, func(resp api.ChatResponse) error {
		content.WriteString(resp.Message.Content)
		if resp.Done {
			result.PromptTokens = resp.PromptEvalCount
			result.CompletionTokens = resp.EvalCount
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ollama API error: %w", err)
	}

	result.Content = content.String()
	return &result, nil
}

func (c *LLMClient) callGemini(ctx context.Context, prompt string, opts GenerateOptions) (*Completion, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  c.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini client error: %w", err)
	}

	resp, err := client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(opts.Temperature)),
		MaxOutputTokens: int32(opts.MaxTokens),
	})
	if err != nil {
		return nil, fmt.Errorf("gemini API error: %w", err)
	}

	result := &Completion{Content: resp.Text()}
	if resp.UsageMetadata != nil {
		result.PromptTokens = int(resp.UsageMetadata.PromptTokenCount)
		result.CompletionTokens = int(resp.UsageMetadata.CandidatesTokenCount)
	}
	return result, nil
}
