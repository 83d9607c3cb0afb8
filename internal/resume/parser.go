package resume

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/googleai"

	apperrors "jiffyapply/internal/errors"
	"jiffyapply/internal/model"
)

// LLM providers.
const (
	ProviderAnthropic = "anthropic"
	ProviderGoogleAI  = "googleai"
)

const (
	defaultAnthropicModel = "claude-3-5-sonnet-20241022"
	defaultGoogleAIModel  = "gemini-2.5-flash"
	maxReplyTokens        = 1024
)

const parsePrompt = `Parse this resume and extract key information. Return ONLY a JSON object (no markdown, no explanation) with this exact structure:
{
  "skills": ["skill1", "skill2"],
  "experience": [{"title": "Job Title", "company": "Company Name", "duration": "2020-2023"}],
  "education": [{"degree": "Degree", "school": "School Name", "year": "2020"}],
  "keywords": ["keyword1", "keyword2"]
}

Resume text:
%s`

// Result is a structured parse and how it was recovered from the reply.
type Result struct {
	Parsed       model.ParsedResume
	UsedFallback bool
}

// Parser produces a structured summary from resume text.
type Parser interface {
	Parse(ctx context.Context, text string) (Result, error)
}

// NewModel builds the language model client for provider. An empty API key
// yields a nil model, which makes every parse fail with an upstream error.
func NewModel(ctx context.Context, provider, apiKey, modelName string) (llms.Model, error) {
	if apiKey == "" {
		return nil, nil
	}

	switch provider {
	case "", ProviderAnthropic:
		if modelName == "" {
			modelName = defaultAnthropicModel
		}
		return anthropic.New(anthropic.WithToken(apiKey), anthropic.WithModel(modelName))
	case ProviderGoogleAI:
		if modelName == "" {
			modelName = defaultGoogleAIModel
		}
		return googleai.New(ctx, googleai.WithAPIKey(apiKey), googleai.WithDefaultModel(modelName))
	default:
		return nil, fmt.Errorf("unknown llm provider %q", provider)
	}
}

// LLMParser asks a language model for the structured summary.
type LLMParser struct {
	model llms.Model
}

// NewLLMParser creates a parser over m. m may be nil.
func NewLLMParser(m llms.Model) *LLMParser {
	return &LLMParser{model: m}
}

// Parse sends text to the model and decodes its reply with DecodeReply.
func (p *LLMParser) Parse(ctx context.Context, text string) (Result, error) {
	if p.model == nil {
		return Result{}, apperrors.New(apperrors.ErrUpstream, "resume parser is not configured")
	}

	reply, err := llms.GenerateFromSinglePrompt(ctx, p.model, fmt.Sprintf(parsePrompt, text),
		llms.WithMaxTokens(maxReplyTokens))
	if err != nil {
		return Result{}, apperrors.New(apperrors.ErrUpstream, fmt.Sprintf("resume parser failed: %v", err))
	}
	return DecodeReply(reply)
}

// DecodeReply decodes a model reply into a ParsedResume. A reply that is not
// pure JSON is retried with the outermost-braces fallback: the substring from
// the first '{' to the last '}'.
func DecodeReply(reply string) (Result, error) {
	var parsed model.ParsedResume
	if err := json.Unmarshal([]byte(strings.TrimSpace(reply)), &parsed); err == nil {
		return Result{Parsed: normalize(parsed)}, nil
	}

	candidate, ok := outermostBraces(reply)
	if !ok {
		return Result{}, apperrors.New(apperrors.ErrParse, "could not parse resume data")
	}
	parsed = model.ParsedResume{}
	if err := json.Unmarshal([]byte(candidate), &parsed); err != nil {
		return Result{}, apperrors.New(apperrors.ErrParse, "could not parse resume data")
	}
	return Result{Parsed: normalize(parsed), UsedFallback: true}, nil
}

func outermostBraces(s string) (string, bool) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}

func normalize(p model.ParsedResume) model.ParsedResume {
	if p.Skills == nil {
		p.Skills = []string{}
	}
	if p.Experience == nil {
		p.Experience = []model.Experience{}
	}
	if p.Education == nil {
		p.Education = []model.Education{}
	}
	if p.Keywords == nil {
		p.Keywords = []string{}
	}
	return p
}
