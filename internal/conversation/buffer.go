// Package conversation keeps the chat history handed to the model as context.
package conversation

import (
	"sync"

	"pdfchat/internal/domain"
)

// Buffer is an append-only, in-memory conversation history.
type Buffer struct {
	mu    sync.Mutex
	turns []domain.Turn
}

// NewBuffer returns an empty history.
func NewBuffer() *Buffer { return &Buffer{} }

// Append adds turns to the end of the history.
func (b *Buffer) Append(turns ...domain.Turn) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.turns = append(b.turns, turns...)
}

// Turns returns a copy of the history in order.
func (b *Buffer) Turns() []domain.Turn {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]domain.Turn, len(b.turns))
	copy(out, b.turns)
	return out
}
