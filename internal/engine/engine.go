// Package engine answers questions from retrieved segments and chat history.
package engine

import (
	"context"
	"fmt"
	"strings"

	"pdfchat/internal/domain"
	"pdfchat/internal/llm"
)

// DefaultTopK is the number of segments retrieved per question.
const DefaultTopK = 1

// SimilaritySearch returns the segments most similar to query, best first.
type SimilaritySearch interface {
	Search(ctx context.Context, query string, k int) ([]domain.SearchResult, error)
}

// ConversationHistory is the model-facing memory of earlier turns.
type ConversationHistory interface {
	Append(turns ...domain.Turn)
	Turns() []domain.Turn
}

// Engine binds a retriever, a history and a model into one question/answer unit.
type Engine struct {
	search  SimilaritySearch
	history ConversationHistory
	gen     llm.Generator
	topK    int
}

// Option configures an Engine.
type Option func(*Engine)

// WithTopK sets how many segments inform each answer.
func WithTopK(k int) Option {
	return func(e *Engine) {
		if k > 0 {
			e.topK = k
		}
	}
}

// New wires an engine. The history is shared with the caller, not copied.
func New(search SimilaritySearch, history ConversationHistory, gen llm.Generator, opts ...Option) *Engine {
	e := &Engine{search: search, history: history, gen: gen, topK: DefaultTopK}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Ask retrieves context for question, calls the model and records the exchange.
// On error the history is left as it was, so the question can be retried.
func (e *Engine) Ask(ctx context.Context, question string) (string, error) {
	results, err := e.search.Search(ctx, question, e.topK)
	if err != nil {
		return "", fmt.Errorf("retrieve context: %w", err)
	}
	prompt := BuildPrompt(results, e.history.Turns(), question)
	out, err := e.gen.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("generate answer: %w", err)
	}
	answer := strings.TrimSpace(out)
	e.history.Append(
		domain.Turn{Role: domain.RoleUser, Content: question},
		domain.Turn{Role: domain.RoleAssistant, Content: answer},
	)
	return answer, nil
}

const instruction = "Use the following pieces of context to answer the question at the end. " +
	"If you don't know the answer, just say that you don't know, don't try to make up an answer."

// BuildPrompt lays out context, history and the new question for the model.
func BuildPrompt(results []domain.SearchResult, history []domain.Turn, question string) string {
	var b strings.Builder
	b.WriteString(instruction)
	b.WriteString("\n\n")
	for _, r := range results {
		b.WriteString(r.Segment.Text)
		b.WriteString("\n\n")
	}
	if len(history) > 0 {
		b.WriteString("Chat history:\n")
		for _, t := range history {
			if t.Role == domain.RoleUser {
				b.WriteString("Human: ")
			} else {
				b.WriteString("Assistant: ")
			}
			b.WriteString(t.Content)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	b.WriteString("Question: ")
	b.WriteString(question)
	b.WriteString("\nHelpful Answer:")
	return b.String()
}
