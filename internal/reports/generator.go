// Package reports composes narrative flavor reports from stored
// measurements, model predictions, and the flavor-chemistry reference
// table, using an external text-generation API.
package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai"

	"liquor-analytics/internal/flavor"
	"liquor-analytics/pkg/logging"
)

const maxTokens = 2048

// Input carries everything the prompt is built from
type Input struct {
	LotNumber       string
	ProductName     string
	Chemical        map[string]float64
	Scores          map[string]float64
	ScoresPredicted bool
	TastingNotes    string
	Compounds       []flavor.Compound
}

// ComparisonInput carries the per-LOT data for a comparative report.
// Lots holds one Input per LOT, the focus LOT included.
type ComparisonInput struct {
	FocusLot string
	Lots     []Input
}

// Report is a generated narrative flavor report
type Report struct {
	LotNumber   string    `json:"lot_number"`
	Text        string    `json:"text"`
	Model       string    `json:"model"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Generator calls the chat completion API to produce flavor reports
type Generator struct {
	client *openai.Client
	model  string
	logger *logging.StructuredLogger
}

// NewGenerator creates a report generator with the given API key and model
func NewGenerator(apiKey, model string, logger *logging.StructuredLogger) *Generator {
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &Generator{
		client: openai.NewClient(apiKey),
		model:  model,
		logger: logger,
	}
}

// FlavorReport generates a sommelier-style narrative for one LOT.
// A failed generation is surfaced immediately, never retried.
func (g *Generator) FlavorReport(ctx context.Context, in Input) (*Report, error) {
	startTime := time.Now()

	req := openai.ChatCompletionRequest{
		Model:     g.model,
		MaxTokens: maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildFlavorPrompt(in)},
		},
	}

	resp, err := g.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("chat completion returned no choices")
	}

	g.logger.Info(ctx, "[REPORT_GENERATED] Flavor report generated", logging.Fields{
		"lot_number":  in.LotNumber,
		"model":       g.model,
		"duration_ms": time.Since(startTime).Milliseconds(),
	})

	return &Report{
		LotNumber:   in.LotNumber,
		Text:        resp.Choices[0].Message.Content,
		Model:       g.model,
		GeneratedAt: time.Now().UTC(),
	}, nil
}

// ComparisonReport generates a comparative analysis across several LOTs
// centered on the focus LOT. Like FlavorReport, failures surface
// immediately and are never retried.
func (g *Generator) ComparisonReport(ctx context.Context, in ComparisonInput) (*Report, error) {
	startTime := time.Now()

	req := openai.ChatCompletionRequest{
		Model:     g.model,
		MaxTokens: maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildComparisonPrompt(in)},
		},
	}

	resp, err := g.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("chat completion returned no choices")
	}

	g.logger.Info(ctx, "[REPORT_GENERATED] Comparison report generated", logging.Fields{
		"focus_lot":   in.FocusLot,
		"lots":        len(in.Lots),
		"model":       g.model,
		"duration_ms": time.Since(startTime).Milliseconds(),
	})

	return &Report{
		LotNumber:   in.FocusLot,
		Text:        resp.Choices[0].Message.Content,
		Model:       g.model,
		GeneratedAt: time.Now().UTC(),
	}, nil
}
