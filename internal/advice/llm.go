package advice

import (
	"context"
	"fmt"
	"strings"

	anyllmlib "github.com/mozilla-ai/any-llm-go"
	"github.com/mozilla-ai/any-llm-go/providers/anthropic"
	"github.com/mozilla-ai/any-llm-go/providers/gemini"
	"github.com/mozilla-ai/any-llm-go/providers/groq"
	"github.com/mozilla-ai/any-llm-go/providers/mistral"
	"github.com/mozilla-ai/any-llm-go/providers/ollama"
	anyllmoai "github.com/mozilla-ai/any-llm-go/providers/openai"

	"github.com/mkhalidi/rattil/internal/align"
)

const systemPrompt = `أنت معلم تحفيظ قرآن. ستصلك نتيجة جلسة تسميع: نسبة الدقة، نسبة الإتمام، وأعداد الأخطاء حسب النوع (كلمة خاطئة، كلمة ناقصة، كلمة زائدة). اكتب اقتراحات قصيرة وعملية لتحسين الحفظ والتلاوة، كل اقتراح في سطر مستقل يبدأ بشرطة، دون أي مقدمات أو خواتيم.`

// LLMOption is a functional option for configuring an [LLM] advisor.
type LLMOption func(*LLM)

// WithMaxSuggestions caps the number of suggestions returned.
// Default: [DefaultMaxSuggestions].
func WithMaxSuggestions(max int) LLMOption {
	return func(l *LLM) {
		l.max = max
	}
}

// WithTemperature sets the sampling temperature. Default: 0.7.
func WithTemperature(t float64) LLMOption {
	return func(l *LLM) {
		l.temperature = t
	}
}

// LLM is an [Advisor] backed by a text-generation model through
// github.com/mozilla-ai/any-llm-go. It is safe for concurrent use.
type LLM struct {
	backend     anyllmlib.Provider
	model       string
	max         int
	temperature float64
}

// Compile-time interface check.
var _ Advisor = (*LLM)(nil)

// NewLLM creates an [LLM] advisor. providerName selects the backend
// ("openai", "anthropic", "gemini", "ollama", "mistral", "groq"); model is
// the provider-specific model name. backendOpts are passed through to the
// backend constructor (API key, base URL).
func NewLLM(providerName, model string, backendOpts []anyllmlib.Option, opts ...LLMOption) (*LLM, error) {
	if model == "" {
		return nil, fmt.Errorf("advice: model must not be empty")
	}
	backend, err := newBackend(providerName, backendOpts...)
	if err != nil {
		return nil, fmt.Errorf("advice: create %q backend: %w", providerName, err)
	}

	l := &LLM{
		backend:     backend,
		model:       model,
		max:         DefaultMaxSuggestions,
		temperature: 0.7,
	}
	for _, o := range opts {
		o(l)
	}
	return l, nil
}

// newBackend constructs the any-llm-go provider for the given name.
func newBackend(providerName string, opts ...anyllmlib.Option) (anyllmlib.Provider, error) {
	switch strings.ToLower(providerName) {
	case "openai":
		return anyllmoai.New(opts...)
	case "anthropic":
		return anthropic.New(opts...)
	case "gemini":
		return gemini.New(opts...)
	case "ollama":
		return ollama.New(opts...)
	case "mistral":
		return mistral.New(opts...)
	case "groq":
		return groq.New(opts...)
	default:
		return nil, fmt.Errorf("unsupported provider %q; supported: openai, anthropic, gemini, ollama, mistral, groq", providerName)
	}
}

// Suggest asks the model for improvement suggestions derived from the
// report. The model sees only aggregate numbers, never the raw transcript.
func (l *LLM) Suggest(ctx context.Context, report align.Report) ([]string, error) {
	counts := report.ErrorCounts()
	userPrompt := fmt.Sprintf(
		"الدقة: %.1f%%\nالإتمام: %.1f%%\nكلمات خاطئة: %d\nكلمات ناقصة: %d\nكلمات زائدة: %d",
		report.Accuracy, report.Completion,
		counts[align.KindIncorrect], counts[align.KindMissing], counts[align.KindExtra],
	)

	temperature := l.temperature
	params := anyllmlib.CompletionParams{
		Model: l.model,
		Messages: []anyllmlib.Message{
			{Role: anyllmlib.RoleSystem, Content: systemPrompt},
			{Role: anyllmlib.RoleUser, Content: userPrompt},
		},
		Temperature: &temperature,
	}

	resp, err := l.backend.Completion(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("advice: completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("advice: empty choices in response")
	}

	suggestions := parseSuggestions(resp.Choices[0].Message.ContentString())
	if len(suggestions) == 0 {
		return nil, fmt.Errorf("advice: response contained no suggestions")
	}
	return capSuggestions(suggestions, l.max), nil
}

// parseSuggestions splits a model response into one suggestion per
// non-empty line, stripping common list markers.
func parseSuggestions(content string) []string {
	var suggestions []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-•*0123456789.)( \t")
		if line != "" {
			suggestions = append(suggestions, line)
		}
	}
	return suggestions
}
