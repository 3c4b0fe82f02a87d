package extract

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/lease-cli/internal/model"
	"github.com/sells-group/lease-cli/internal/resilience"
	"github.com/sells-group/lease-cli/pkg/anthropic"
)

const systemPrompt = `You are a commercial lease abstraction engine. You read
lease clause text and answer with structured JSON only. Never include prose,
markdown, or explanations outside the JSON object.`

// AnthropicStrategy answers domain instructions through the Anthropic API.
type AnthropicStrategy struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	retry     resilience.RetryConfig
}

// NewAnthropicStrategy builds a strategy with the given client and model.
// maxRetries caps total attempts per domain call.
func NewAnthropicStrategy(client anthropic.Client, modelID string, maxTokens int64, maxRetries int) *AnthropicStrategy {
	retry := resilience.DefaultRetryConfig()
	if maxRetries > 0 {
		retry.MaxAttempts = maxRetries
	}
	return &AnthropicStrategy{
		client:    client,
		model:     modelID,
		maxTokens: maxTokens,
		retry:     retry,
	}
}

// domainAnswer is the per-field shape the model is instructed to return.
type domainAnswer struct {
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
}

// Extract sends one domain instruction and parses the JSON answer into
// extracted fields. Extraction uses temperature 0 so repeat runs over the
// same document stay stable.
func (s *AnthropicStrategy) Extract(ctx context.Context, domain Domain, instruction string) ([]model.ExtractedField, error) {
	temperature := 0.0

	resp, err := resilience.DoVal(ctx, s.retry, func(ctx context.Context) (*anthropic.MessageResponse, error) {
		return s.client.CreateMessage(ctx, anthropic.MessageRequest{
			Model:       s.model,
			MaxTokens:   s.maxTokens,
			System:      anthropic.BuildCachedSystemBlocks(systemPrompt),
			Messages:    []anthropic.Message{{Role: "user", Content: instruction}},
			Temperature: &temperature,
		})
	})
	if err != nil {
		return nil, eris.Wrapf(err, "extract: anthropic call for domain %s", domain)
	}

	resp.Usage.LogCost(s.model, "extract:"+string(domain))

	answers, err := parseAnswers(resp.Text())
	if err != nil {
		return nil, eris.Wrapf(err, "extract: parse answer for domain %s", domain)
	}

	fields := make([]model.ExtractedField, 0, len(answers))
	for name, ans := range answers {
		if strings.TrimSpace(ans.Value) == "" {
			continue
		}
		fields = append(fields, model.ExtractedField{
			FieldName:  name,
			ValueText:  strings.TrimSpace(ans.Value),
			Confidence: ans.Confidence,
			Origin:     model.OriginDomain,
		})
	}

	zap.L().Debug("extract: domain answered",
		zap.String("domain", string(domain)),
		zap.Int("fields", len(fields)),
	)
	return fields, nil
}

// parseAnswers extracts the JSON object from a model response, tolerating
// code fences and surrounding prose.
func parseAnswers(text string) (map[string]domainAnswer, error) {
	cleaned := cleanJSON(text)
	if cleaned == "" {
		return nil, eris.New("extract: response contains no JSON object")
	}

	var answers map[string]domainAnswer
	if err := json.Unmarshal([]byte(cleaned), &answers); err != nil {
		return nil, eris.Wrap(err, "extract: unmarshal answer")
	}
	return answers, nil
}

// cleanJSON strips markdown code fences and trims to the outermost JSON
// object boundaries.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return ""
	}
	return text[start : end+1]
}
