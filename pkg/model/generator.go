// Package model talks to the external text-generation backend.
package model

import (
	"context"
)

// Token budgets used by the two endpoints.
const (
	// AnalysisTokens bounds the analysis call and the translation call
	// issued from within an analysis.
	AnalysisTokens = 900
	// TranslateTokens bounds the standalone translate endpoint.
	TranslateTokens = 1400
)

// Format is the output shape requested from the backend.
type Format int

const (
	// FormatText asks for free text.
	FormatText Format = iota
	// FormatJSONObject asks for a single JSON object.
	FormatJSONObject
)

// String returns the wire name of the format.
func (f Format) String() string {
	if f == FormatJSONObject {
		return "json_object"
	}
	return "text"
}

// Request is a single prompt sent to the backend.
type Request struct {
	Prompt          string
	Format          Format
	MaxOutputTokens int
}

// Generator defines the interface for text-generation backends.
// This abstraction allows switching between the hosted OpenAI backend and a
// local Ollama instance without changing the service layer.
type Generator interface {
	// Generate issues exactly one call to the backend and returns the raw
	// generated text. There is no retry; any failure is final.
	Generate(ctx context.Context, req Request) (string, error)

	// Configured reports configuration problems (such as a missing
	// credential) without touching the network.
	Configured() error

	// CheckHealth verifies that the backend is reachable.
	CheckHealth(ctx context.Context) error

	// Name identifies the backend in logs and metrics.
	Name() string
}
