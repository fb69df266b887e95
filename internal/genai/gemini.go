// Package genai produces assistant replies through the Gemini model.
package genai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	llmsdk "github.com/hoangvvo/llm-sdk/sdk-go"
	"github.com/hoangvvo/llm-sdk/sdk-go/google"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultModel   = "gemini-2.0-flash"
	DefaultTimeout = 15 * time.Second

	temperature     = 0.7
	maxOutputTokens = 300

	persona = `You are a helpful climate and weather assistant called ClimateChat.
You provide information about weather, climate patterns, and environmental topics.
You keep your responses concise, informative, and helpful.
You always use natural, conversational language.
You never mention that you're an AI or language model.
You never apologize for limitations.

User query: `
)

// Replies used when the provider cannot give a usable answer.
const (
	TroubleReply = "I'm having trouble processing your request right now. Please try again in a moment."
	EmptyReply   = "I don't have specific information about that topic."
)

var tracer = otel.Tracer("github.com/i474232898/climate-chat/internal/genai")

var errNoAPIKey = errors.New("genai: api key is not configured")

// Client wraps a Gemini language model. Generate never fails; see its doc.
type Client struct {
	apiKey  string
	baseURL string
	model   string
	timeout time.Duration

	lm *google.GoogleModel
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL points the client at another Gemini-compatible host. The API
// version segment is added by the model.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	}
}

// WithModel selects the Gemini model id. Blank values keep DefaultModel.
func WithModel(model string) Option {
	return func(c *Client) {
		if m := strings.TrimSpace(model); m != "" {
			c.model = m
		}
	}
}

// WithTimeout bounds a single Generate call. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// NewClient creates a Client. An empty apiKey is allowed and makes
// Available report false.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  strings.TrimSpace(apiKey),
		model:   DefaultModel,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.lm = google.NewGoogleModel(c.model, google.GoogleModelOptions{
		APIKey:  c.apiKey,
		BaseURL: c.baseURL,
	})
	return c
}

// Available reports whether a credential is configured.
func (c *Client) Available() bool {
	return c != nil && c.apiKey != ""
}

// Generate sends prompt, prefixed with the assistant persona, and returns the
// first text part of the answer. It never returns an error: every failure
// becomes TroubleReply, and an empty answer becomes EmptyReply.
func (c *Client) Generate(ctx context.Context, prompt string) (reply string) {
	ctx, span := tracer.Start(ctx, "genai.generate", spanOptions(c)...)
	defer span.End()
	defer func() {
		if r := recover(); r != nil {
			slog.Error("generative request panicked", "panic", r)
			reply = TroubleReply
		}
	}()

	text, err := c.generate(ctx, prompt)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		slog.Warn("generative request failed", "err", err)
		return TroubleReply
	}
	if strings.TrimSpace(text) == "" {
		return EmptyReply
	}
	return text
}

func spanOptions(c *Client) []trace.SpanStartOption {
	opts := []trace.SpanStartOption{trace.WithSpanKind(trace.SpanKindClient)}
	if c == nil {
		return opts
	}
	return append(opts, trace.WithAttributes(
		attribute.String("genai.model", c.model),
		attribute.Float64("genai.temperature", temperature),
		attribute.Int("genai.max_output_tokens", maxOutputTokens),
	))
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	if !c.Available() {
		return "", errNoAPIKey
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	temp := float64(temperature)
	maxTokens := int64(maxOutputTokens)
	res, err := c.lm.Generate(ctx, &llmsdk.LanguageModelInput{
		Messages: []llmsdk.Message{
			llmsdk.NewUserMessage(llmsdk.Part{TextPart: &llmsdk.TextPart{Text: persona + prompt}}),
		},
		Temperature: &temp,
		MaxTokens:   &maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("genai: generate: %w", err)
	}
	return firstText(res), nil
}

// firstText returns the first text part, skipping reasoning output.
func firstText(res *llmsdk.ModelResponse) string {
	if res == nil {
		return ""
	}
	for _, p := range res.Content {
		if p.TextPart != nil {
			return p.TextPart.Text
		}
	}
	return ""
}
