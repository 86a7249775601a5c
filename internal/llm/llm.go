// Package llm defines the hosted language model used to answer questions.
package llm

import (
	"context"
	"fmt"
)

// Generator produces a completion for a prompt. Decoding parameters are
// fixed when the generator is constructed.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Params are the decoding parameters sent with every request.
type Params struct {
	ModelID     string
	MaxGenLen   int
	Temperature float64
	TopP        float64
}

// DefaultParams mirror the settings the assistant has always shipped with.
func DefaultParams() Params {
	return Params{
		ModelID:     "meta.llama2-70b-chat-v1",
		MaxGenLen:   512,
		Temperature: 0.5,
		TopP:        0.9,
	}
}

// Validate rejects parameter combinations the providers refuse.
func (p Params) Validate() error {
	switch {
	case p.ModelID == "":
		return fmt.Errorf("model id is required")
	case p.MaxGenLen <= 0:
		return fmt.Errorf("max_gen_len must be positive, got %d", p.MaxGenLen)
	case p.Temperature < 0:
		return fmt.Errorf("temperature must not be negative, got %v", p.Temperature)
	case p.TopP <= 0 || p.TopP > 1:
		return fmt.Errorf("top_p must be in (0, 1], got %v", p.TopP)
	}
	return nil
}
