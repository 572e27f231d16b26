package prompt

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aleister1102/sitecheck/internal/common"
	"github.com/aleister1102/sitecheck/internal/config"
	"github.com/aleister1102/sitecheck/internal/models"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rs/zerolog"
)

// systemInstruction shapes the external tier's output: plain language, short,
// stack-agnostic, and machine-extractable.
const systemInstruction = `You are a web QA assistant. For each numbered website defect you receive, write a plain-language remediation hint of 2 to 4 sentences. Do not assume any particular framework, CMS, or programming language. Respond with a JSON array of strings only, one hint per defect, in the same order as the input.`

// HintSource generates one hint per defect, in order.
type HintSource interface {
	GenerateHints(ctx context.Context, defects []models.Defect) ([]string, error)
}

// LLMClient is the external hint tier backed by the Anthropic Messages API.
type LLMClient struct {
	client anthropic.Client
	config config.PromptConfig
	logger zerolog.Logger
}

// NewLLMClient builds the external tier. The caller decides whether a key is
// available; an LLMClient is only constructed when it is.
func NewLLMClient(cfg config.PromptConfig, logger zerolog.Logger) *LLMClient {
	return &LLMClient{
		client: anthropic.NewClient(option.WithAPIKey(cfg.APIKey)),
		config: cfg,
		logger: logger.With().Str("component", "LLMClient").Logger(),
	}
}

// GenerateHints sends one defect batch as a single chat turn and returns one
// hint per defect. An answer whose extracted array length disagrees with the
// batch is an error; the caller falls back to templates for the batch.
func (c *LLMClient) GenerateHints(ctx context.Context, defects []models.Defect) ([]string, error) {
	if len(defects) == 0 {
		return nil, nil
	}

	requestCtx, cancel := context.WithTimeout(ctx, c.config.RequestTimeout())
	defer cancel()

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.config.Model),
		MaxTokens: int64(c.config.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(batchContent(defects))),
		},
		System: []anthropic.TextBlockParam{
			{Text: systemInstruction},
		},
	}
	if c.config.Temperature > 0 {
		params.Temperature = anthropic.Float(c.config.Temperature)
	}

	response, err := c.client.Messages.New(requestCtx, params)
	if err != nil {
		return nil, common.WrapError(err, "hint generation request failed")
	}

	hints, err := ExtractJSONArray(messageText(response))
	if err != nil {
		return nil, err
	}
	if len(hints) != len(defects) {
		return nil, common.NewError("hint count mismatch: got %d hints for %d defects", len(hints), len(defects))
	}
	return hints, nil
}

// messageText concatenates the text blocks of a response. The SDK delivers
// content as a flattened union whose Type field is a plain string; anything
// other than "text" (tool use, thinking) is skipped.
func messageText(message *anthropic.Message) string {
	var text strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	return text.String()
}

// batchContent renders the numbered defect batch for the user turn.
func batchContent(defects []models.Defect) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Defects found on a website (%d total):\n", len(defects)))
	for i, defect := range defects {
		sb.WriteString(fmt.Sprintf("%d. [%s/%s] %s\n   Details: %s\n   Page: %s\n",
			i+1, defect.Type, defect.Severity, defect.Title, defect.Details, defect.Page))
	}
	return sb.String()
}

// ExtractJSONArray finds the first top-level JSON array of strings in text,
// tolerating surrounding prose and code fences.
func ExtractJSONArray(text string) ([]string, error) {
	for start := 0; start < len(text); start++ {
		if text[start] != '[' {
			continue
		}
		decoder := json.NewDecoder(strings.NewReader(text[start:]))
		var hints []string
		if err := decoder.Decode(&hints); err == nil {
			return hints, nil
		}
	}
	return nil, common.NewError("no JSON array of strings found in response")
}
