// Package explain turns impact records into a natural-language assessment
// via an OpenAI-compatible chat completion endpoint. It is an adapter for an
// external collaborator: the core pipeline never depends on it.
package explain

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"ripple/internal/config"
	riperr "ripple/internal/errors"
	"ripple/internal/impact"
)

const (
	systemPrompt = "You are a code analysis assistant that responds ONLY with valid JSON. " +
		"Never use markdown code blocks or any text outside the JSON object."
	maxContextChars = 1000
)

// Assessment is the structured explanation returned by the model.
type Assessment struct {
	ImpactLevel     string         `json:"impact_level"`
	Summary         string         `json:"summary"`
	ChangedFile     string         `json:"changed_file"`
	AffectedItems   []AssessedItem `json:"affected_items"`
	Recommendations []string       `json:"recommendations"`
	Error           string         `json:"error,omitempty"`
	RawResponse     string         `json:"raw_response,omitempty"`
}

// AssessedItem is the model's judgement for one impact record.
type AssessedItem struct {
	File         string `json:"file"`
	Symbol       string `json:"symbol"`
	SymbolKind   string `json:"symbol_type"`
	LineNumber   int    `json:"line_number"`
	DependsOn    string `json:"depends_on"`
	ImpactReason string `json:"impact_reason"`
	Breaking     bool   `json:"breaking"`
}

// Analyzer calls the explanation model.
type Analyzer struct {
	client *openai.Client
	model  string
}

// NewAnalyzer builds an Analyzer from config. The API key is read from the
// configured environment variable.
func NewAnalyzer(cfg config.ExplainConfig) *Analyzer {
	clientCfg := openai.DefaultConfig(os.Getenv(cfg.APIKeyEnv))
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &Analyzer{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
	}
}

// AnalyzeImpact asks the model to reason about the impact records. An empty
// record list short-circuits to a "none" assessment without an API call.
// Transport failures are returned as errors; an unparseable model response
// degrades to a structured fallback assessment.
func (a *Analyzer) AnalyzeImpact(ctx context.Context, filename string, records []impact.Record, changes, codeContext string) (*Assessment, error) {
	if len(records) == 0 {
		return &Assessment{
			ImpactLevel:     "none",
			Summary:         fmt.Sprintf("No downstream dependencies found for %s. This change is isolated.", filename),
			ChangedFile:     filename,
			AffectedItems:   []AssessedItem{},
			Recommendations: []string{},
		}, nil
	}

	prompt, err := renderPrompt(filename, records, changes, codeContext)
	if err != nil {
		return nil, err
	}

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.1,
		MaxTokens:   2000,
	})
	if err != nil {
		return nil, riperr.New(riperr.ExplainFailed, "explanation request failed", err)
	}
	if len(resp.Choices) == 0 {
		return nil, riperr.New(riperr.ExplainFailed, "explanation request returned no choices", nil)
	}

	text := stripFences(strings.TrimSpace(resp.Choices[0].Message.Content))

	var result Assessment
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		return fallbackAssessment(filename, records, err, text), nil
	}

	enrichLines(&result, records)
	return &result, nil
}

// renderPrompt builds the user prompt from the graph's impact records.
func renderPrompt(filename string, records []impact.Record, changes, codeContext string) (string, error) {
	summary, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal impact records: %w", err)
	}

	if changes == "" {
		changes = "No specific description provided. Assume generic logic changes."
	}
	if codeContext == "" {
		codeContext = "No code snippet provided."
	} else if len(codeContext) > maxContextChars {
		codeContext = codeContext[:maxContextChars]
	}

	var b strings.Builder
	b.WriteString("You are a Senior Software Architect performing a Code Impact Analysis.\n\n")
	fmt.Fprintf(&b, "TASK: Analyze if the code changes in '%s' will impact the downstream dependencies listed below.\n\n", filename)
	b.WriteString("SPECIFIC FOCUS:\n")
	b.WriteString("- Look for API contract violations (e.g., RENAMING an endpoint URL, changing request/response schema).\n")
	b.WriteString("- If a backend function is renamed or modified, check if any frontend calls (axios/fetch) are linking to it.\n")
	b.WriteString("- If a frontend call is broken, flag it as HIGH IMPACT.\n\n")
	fmt.Fprintf(&b, "CHANGE DESCRIPTION:\n%s\n\n", changes)
	fmt.Fprintf(&b, "CODE CONTEXT:\n%s\n\n", codeContext)
	fmt.Fprintf(&b, "AFFECTED DEPENDENCIES (from Knowledge Graph):\n%s\n\n", summary)
	b.WriteString("INSTRUCTIONS:\n")
	b.WriteString(`1. Determine the impact level: "high" (breaking changes, especially API contracts), "medium" (potential issues), "low" (minor impact), or "none" (no impact).` + "\n")
	b.WriteString("2. For each affected item, analyze if it will actually break or just needs attention.\n")
	b.WriteString("3. Provide specific reasoning.\n")
	b.WriteString("4. Give actionable recommendations.\n\n")
	b.WriteString("CRITICAL: You MUST respond with ONLY valid JSON in this exact format (no markdown, no code blocks, no extra text):\n\n")
	fmt.Fprintf(&b, `{
  "impact_level": "high|medium|low|none",
  "summary": "Brief 1-2 sentence summary of the overall impact",
  "changed_file": %q,
  "affected_items": [
    {
      "file": "path/to/file.py",
      "symbol": "function_or_class_name",
      "symbol_type": "function|class",
      "line_number": 42,
      "depends_on": "changed_symbol_name",
      "impact_reason": "Specific reason why this is affected",
      "breaking": true
    }
  ],
  "recommendations": [
    "Specific action item 1",
    "Specific action item 2"
  ]
}

Respond with ONLY the JSON object, nothing else.`, filename)
	return b.String(), nil
}

// stripFences removes a markdown code fence if the model ignored the
// no-markdown instruction.
func stripFences(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	parts := strings.Split(text, "```")
	if len(parts) < 2 {
		return text
	}
	inner := parts[1]
	inner = strings.TrimPrefix(inner, "json")
	return strings.TrimSpace(inner)
}

// enrichLines overwrites model-reported positions with the graph's actual
// line numbers where a record matches.
func enrichLines(result *Assessment, records []impact.Record) {
	for i := range result.AffectedItems {
		item := &result.AffectedItems[i]
		for _, r := range records {
			if item.File == r.File && item.Symbol == r.Symbol {
				item.LineNumber = r.LineNumber
				item.SymbolKind = r.SymbolKind
				break
			}
		}
	}
}

// fallbackAssessment reports every record as needing manual review when the
// model response cannot be parsed.
func fallbackAssessment(filename string, records []impact.Record, parseErr error, raw string) *Assessment {
	items := make([]AssessedItem, 0, len(records))
	for _, r := range records {
		items = append(items, AssessedItem{
			File:         r.File,
			Symbol:       r.Symbol,
			SymbolKind:   r.SymbolKind,
			LineNumber:   r.LineNumber,
			DependsOn:    r.DependsOn,
			ImpactReason: "Unable to analyze - LLM response parsing failed",
		})
	}
	if len(raw) > 500 {
		raw = raw[:500]
	}
	return &Assessment{
		ImpactLevel:     "unknown",
		Summary:         fmt.Sprintf("Error parsing LLM response: %v", parseErr),
		ChangedFile:     filename,
		AffectedItems:   items,
		Recommendations: []string{"Manual review required due to analysis error"},
		Error:           fmt.Sprintf("JSON parsing failed: %v", parseErr),
		RawResponse:     raw,
	}
}
