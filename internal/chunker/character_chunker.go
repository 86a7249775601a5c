package chunker

import (
	"fmt"
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"

	"pdfchat/internal/domain"
)

const (
	// DefaultChunkSize is the target number of characters per segment.
	DefaultChunkSize = 1000
	// DefaultChunkOverlap is the number of characters shared by neighbouring segments.
	DefaultChunkOverlap = 200
	// DefaultSeparator splits text into lines before merging.
	DefaultSeparator = "\n"
)

// CharacterChunker splits text on a separator and merges the pieces into
// overlapping segments bounded by a character count. A piece is never split,
// so a single line longer than the chunk size becomes its own oversized segment.
type CharacterChunker struct {
	separator string
	size      int
	overlap   int
	logger    *slog.Logger
}

// Option configures the chunker.
type Option func(*CharacterChunker)

// WithSeparator sets the piece separator.
func WithSeparator(sep string) Option {
	return func(c *CharacterChunker) { c.separator = sep }
}

// WithChunkSize sets the target segment size in characters.
func WithChunkSize(size int) Option {
	return func(c *CharacterChunker) {
		if size > 0 {
			c.size = size
		}
	}
}

// WithOverlap sets the overlap between segments in characters.
func WithOverlap(overlap int) Option {
	return func(c *CharacterChunker) {
		if overlap >= 0 {
			c.overlap = overlap
		}
	}
}

// WithLogger sets the logger used for oversized segment warnings.
func WithLogger(l *slog.Logger) Option {
	return func(c *CharacterChunker) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewCharacterChunker creates a chunker with 1000/200 defaults.
func NewCharacterChunker(opts ...Option) (*CharacterChunker, error) {
	c := &CharacterChunker{
		separator: DefaultSeparator,
		size:      DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.overlap >= c.size {
		return nil, fmt.Errorf("chunk overlap %d must be smaller than chunk size %d", c.overlap, c.size)
	}
	return c, nil
}

// Split returns the ordered segments of text.
func (c *CharacterChunker) Split(text string) []domain.Segment {
	var pieces []string
	for _, p := range strings.Split(text, c.separator) {
		if p != "" {
			pieces = append(pieces, p)
		}
	}
	return c.merge(pieces)
}

func (c *CharacterChunker) merge(pieces []string) []domain.Segment {
	sepLen := utf8.RuneCountInString(c.separator)
	sepIf := func(cond bool) int {
		if cond {
			return sepLen
		}
		return 0
	}

	var (
		segments []domain.Segment
		window   []string
		total    int
		carried  int
	)
	emit := func() {
		joined := strings.Join(window, c.separator)
		text := strings.TrimSpace(joined)
		if text == "" {
			return
		}
		lead := utf8.RuneCountInString(joined) - utf8.RuneCountInString(strings.TrimLeftFunc(joined, unicode.IsSpace))
		overlap := max(carried-lead, 0)
		segments = append(segments, domain.Segment{Index: len(segments), Text: text, Overlap: overlap})
	}

	for _, piece := range pieces {
		n := utf8.RuneCountInString(piece)
		if total+n+sepIf(len(window) > 0) > c.size {
			if total > c.size {
				c.logger.Warn("segment exceeds chunk size",
					slog.Int("size", total),
					slog.Int("chunk_size", c.size))
			}
			if len(window) > 0 {
				emit()
				// Keep a tail of the window as overlap for the next segment.
				for total > c.overlap || (total+n+sepIf(len(window) > 0) > c.size && total > 0) {
					total -= utf8.RuneCountInString(window[0]) + sepIf(len(window) > 1)
					window = window[1:]
				}
				carried = total
			}
		}
		window = append(window, piece)
		total += n + sepIf(len(window) > 1)
	}
	if len(window) > 0 {
		emit()
	}
	return segments
}
