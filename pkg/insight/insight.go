package insight

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/ethanbaker/soundscript/pkg/utils"
	"github.com/rs/zerolog"
)

// Supported values of INSIGHT_BACKEND
const (
	BackendGemini = "gemini"
	BackendOpenAI = "openai"
)

// ErrEmptyResponse is returned when a generation call yields no text
var ErrEmptyResponse = errors.New("empty response from model")

// Generator produces text for a single prompt
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Insights is the derived summary and keyword string of a transcript
type Insights struct {
	Summary  string `json:"summary"`
	Keywords string `json:"keywords"` // Space separated
}

// Client runs the description, summary and keyword prompts in sequence
type Client struct {
	generator Generator
	prompts   atomic.Pointer[Prompts]
	logger    zerolog.Logger
}

// NewClient creates a client around a generator. A nil prompts value uses
// the defaults
func NewClient(generator Generator, prompts *Prompts) *Client {
	if prompts == nil {
		prompts = DefaultPrompts()
	}

	c := &Client{
		generator: generator,
		logger:    utils.Component("insight"),
	}
	c.prompts.Store(prompts)

	return c
}

// New builds the client selected by INSIGHT_BACKEND, loading prompt overrides
// from INSIGHT_PROMPTS_PATH when set
func New(ctx context.Context, cfg *utils.Config) (*Client, error) {
	generator, err := newGenerator(ctx, cfg)
	if err != nil {
		return nil, err
	}

	prompts := DefaultPrompts()
	if path := cfg.Get("INSIGHT_PROMPTS_PATH"); path != "" {
		if prompts, err = LoadPrompts(path); err != nil {
			return nil, err
		}
	}

	return NewClient(generator, prompts), nil
}

func newGenerator(ctx context.Context, cfg *utils.Config) (Generator, error) {
	backend := strings.ToLower(cfg.GetWithDefault("INSIGHT_BACKEND", BackendGemini))

	switch backend {
	case BackendGemini:
		apiKey := cfg.GetFirst("GEMINI_API_KEY", "API_KEY_GEMINI")
		if apiKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY not set in config or environment")
		}
		return NewGeminiGenerator(ctx, apiKey, cfg.GetWithDefault("INSIGHT_MODEL", DefaultGeminiModel))

	case BackendOpenAI:
		apiKey, err := cfg.Require("OPENAI_API_KEY")
		if err != nil {
			return nil, err
		}
		return NewOpenAIGenerator(apiKey, cfg.GetWithDefault("INSIGHT_MODEL", DefaultOpenAIModel)), nil

	default:
		return nil, fmt.Errorf("unsupported INSIGHT_BACKEND %q", backend)
	}
}

// Prompts returns the templates currently in use
func (c *Client) Prompts() *Prompts {
	return c.prompts.Load()
}

// SetPrompts swaps the templates used by later calls
func (c *Client) SetPrompts(prompts *Prompts) {
	c.prompts.Store(prompts)
}

// Generate derives the summary and keywords of a transcript. The description
// feeds the summary prompt and the summary feeds the keyword prompt
func (c *Client) Generate(ctx context.Context, transcript string) (*Insights, error) {
	prompts := c.Prompts()

	description, err := c.step(ctx, "description", prompts.Description, transcript)
	if err != nil {
		return nil, err
	}

	summary, err := c.step(ctx, "summary", prompts.Summary, description)
	if err != nil {
		return nil, err
	}

	keywords, err := c.step(ctx, "keywords", prompts.Keywords, summary)
	if err != nil {
		return nil, err
	}

	keywords = NormalizeKeywords(keywords)
	if keywords == "" {
		return nil, fmt.Errorf("failed to generate keywords: %w", ErrEmptyResponse)
	}

	return &Insights{Summary: summary, Keywords: keywords}, nil
}

func (c *Client) step(ctx context.Context, name, template, input string) (string, error) {
	text, err := c.generator.Generate(ctx, render(template, input))
	if err != nil {
		return "", fmt.Errorf("failed to generate %s: %w", name, err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("failed to generate %s: %w", name, ErrEmptyResponse)
	}

	c.logger.Debug().Str("step", name).Int("length", len(text)).Msg("[INSIGHT]: step complete")
	return text, nil
}

// NormalizeKeywords turns a comma separated list into space separated terms
func NormalizeKeywords(raw string) string {
	var terms []string
	for _, term := range strings.Split(raw, ",") {
		if term = strings.TrimSpace(term); term != "" {
			terms = append(terms, term)
		}
	}
	return strings.Join(terms, " ")
}
