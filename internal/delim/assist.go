package delim

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// Assist asks a model for a splitting regex when local inference gives up.
// Entirely optional: a nil/keyless Assist is a no-op.
type Assist struct {
	apiKey  string
	baseURL string
	model   string
	timeout time.Duration
}

func NewAssist(apiKey, baseURL, model string, timeout time.Duration) *Assist {
	return &Assist{apiKey: apiKey, baseURL: baseURL, model: model, timeout: timeout}
}

type assistResponse struct {
	Pattern    string  `json:"pattern"`
	Confidence float64 `json:"confidence"`
}

// SuggestPattern returns a regex Spec with named capture groups describing
// the sample lines, or an error if the assist is disabled or the reply does
// not compile.
func (a *Assist) SuggestPattern(ctx context.Context, lines []string) (Spec, error) {
	if a == nil || a.apiKey == "" {
		return Spec{}, errors.New("openai assist disabled")
	}
	ctx2, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	cfg := openai.DefaultConfig(a.apiKey)
	if a.baseURL != "" {
		cfg.BaseURL = a.baseURL
	}
	cli := openai.NewClientWithConfig(cfg)
	resp, err := cli.CreateChatCompletion(ctx2, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: "You derive field-splitting regular expressions for tabular text and return ONLY strict JSON. No prose, no code fences."},
			{Role: openai.ChatMessageRoleUser, Content: buildPrompt(lines)},
		},
		Temperature:    0.2,
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	})
	if err != nil {
		return Spec{}, err
	}
	if len(resp.Choices) == 0 {
		return Spec{}, errors.New("empty choices")
	}
	var out assistResponse
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &out); err != nil {
		return Spec{}, err
	}
	p, err := regexp.Compile(out.Pattern)
	if err != nil {
		return Spec{}, err
	}
	s := Regex(p)
	if len(s.groupNames()) == 0 {
		return Spec{}, errors.New("suggested pattern has no named groups")
	}
	return s, nil
}

func buildPrompt(lines []string) string {
	max := 20
	if len(lines) < max {
		max = len(lines)
	}
	var b strings.Builder
	b.WriteString("Analyze the lines below and return ONLY strict JSON matching this contract: ")
	b.WriteString(`{"pattern": "<Go RE2 regex with a named capture group per column>", "confidence": <0..1>}.` + "\n")
	b.WriteString("Lines:\n")
	for i := 0; i < max; i++ {
		b.WriteString(lines[i])
		b.WriteByte('\n')
	}
	return b.String()
}
