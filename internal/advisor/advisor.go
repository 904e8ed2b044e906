// Package advisor turns a rendered analysis digest into narrative advice
// using Gemini. The model sees the same text a human reads, so advice always
// refers to numbers that actually appear in the report.
package advisor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/dvloznov/budget-insight/internal/config"
)

// Advice is the structured output the model is instructed to return.
type Advice struct {
	Headline string   `json:"headline"`
	Insights []string `json:"insights"`
	Actions  []string `json:"actions"`
}

// GeminiAdvisor generates advice through the Gemini API.
type GeminiAdvisor struct {
	cfg config.AdvisorConfig
}

// NewGeminiAdvisor creates an advisor using the given configuration.
func NewGeminiAdvisor(cfg config.AdvisorConfig) *GeminiAdvisor {
	return &GeminiAdvisor{cfg: cfg}
}

// Advise sends the rendered report to Gemini and returns the parsed advice.
// It expects the model to return a STRICT JSON object.
func (a *GeminiAdvisor) Advise(ctx context.Context, reportText string) (*Advice, error) {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
	defer cancel()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      a.cfg.APIKey,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("Advise: create genai client: %w", err)
	}

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: buildAdvicePrompt(reportText)},
			},
		},
	}

	genCfg := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(a.cfg.MaxOutputTokens),
	}

	resp, err := client.Models.GenerateContent(ctx, a.cfg.Model, contents, genCfg)
	if err != nil {
		return nil, fmt.Errorf("Advise: generate content: %w", err)
	}

	rawText := resp.Text()
	if rawText == "" {
		return nil, fmt.Errorf("Advise: empty response from model")
	}

	advice, err := parseAdvice(rawText)
	if err != nil {
		return nil, fmt.Errorf("Advise: %w", err)
	}

	return advice, nil
}

// parseAdvice cleans up Markdown fences / extra text if the model ignored
// instructions, then unmarshals the remaining JSON object.
func parseAdvice(raw string) (*Advice, error) {
	clean := cleanModelJSON(raw)

	var advice Advice
	if err := json.Unmarshal([]byte(clean), &advice); err != nil {
		return nil, fmt.Errorf("unmarshal JSON: %w\nraw response: %s", err, raw)
	}

	if advice.Headline == "" && len(advice.Insights) == 0 && len(advice.Actions) == 0 {
		return nil, fmt.Errorf("model returned an empty advice object")
	}

	return &advice, nil
}

func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	// Handle ```json ... ``` or ``` ... ``` wrappers.
	if strings.HasPrefix(s, "```") {
		// Drop the first line (``` or ```json).
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			// Single-line weirdness; just return as-is.
			return s
		}
		s = strings.TrimSpace(s)
	}

	// Remove trailing ``` if present.
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}

	s = strings.TrimSpace(s)

	// Extra safety: if there's still junk around the JSON object,
	// try to keep only from the first '{' to the last '}'.
	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end != -1 && end > start {
			s = s[start : end+1]
			s = strings.TrimSpace(s)
		}
	}

	return s
}
