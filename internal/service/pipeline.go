// Package service composes extraction, chunking, indexing and summarizing
// into one processing run.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"pdfchat/internal/domain"
	"pdfchat/internal/extractor"
	"pdfchat/internal/index"
)

// ErrNoText is returned when none of the uploads yielded any text.
var ErrNoText = errors.New("no text extracted")

// Pipeline stages.
const (
	StageExtract = "extract"
	StageChunk   = "chunk"
	StageIndex   = "index"
)

// StageError tags a failure with the stage that produced it.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("%s: %v", e.Stage, e.Err) }

func (e *StageError) Unwrap() error { return e.Err }

// TextExtractor turns uploads into text.
type TextExtractor interface {
	Extract(uploads []extractor.Upload, progress extractor.Progress) extractor.Result
}

// SegmentIndexer embeds segments into a searchable collection.
type SegmentIndexer interface {
	Build(ctx context.Context, segments []domain.Segment) (*index.Handle, error)
}

// Outcome is everything a processing run produced.
type Outcome struct {
	Handle     *index.Handle
	Documents  []domain.Document
	Segments   []domain.Segment
	FileErrors []extractor.FileError
	Summary    string
}

// Pipeline runs one processing cycle over a batch of uploads.
type Pipeline struct {
	extractor    TextExtractor
	chunker      domain.Chunker
	indexer      SegmentIndexer
	summarizer   domain.Summarizer
	maxSentences int
	logger       *slog.Logger
}

// NewPipeline wires a pipeline. summarizer may be nil.
func NewPipeline(ext TextExtractor, chunker domain.Chunker, indexer SegmentIndexer, summarizer domain.Summarizer, maxSentences int, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		extractor:    ext,
		chunker:      chunker,
		indexer:      indexer,
		summarizer:   summarizer,
		maxSentences: maxSentences,
		logger:       logger,
	}
}

// Run extracts, chunks and indexes uploads. FileErrors are populated even
// when Run fails.
func (p *Pipeline) Run(ctx context.Context, uploads []extractor.Upload, progress extractor.Progress) (Outcome, error) {
	var out Outcome

	res := p.extractor.Extract(uploads, progress)
	out.Documents = res.Documents
	out.FileErrors = res.Errors
	if strings.TrimSpace(res.Text) == "" {
		return out, &StageError{Stage: StageExtract, Err: ErrNoText}
	}
	if err := ctx.Err(); err != nil {
		return out, &StageError{Stage: StageExtract, Err: err}
	}

	out.Segments = p.chunker.Split(res.Text)
	if len(out.Segments) == 0 {
		return out, &StageError{Stage: StageChunk, Err: index.ErrNoSegments}
	}
	p.logger.Info("Split text into segments",
		slog.Int("documents", len(res.Documents)),
		slog.Int("segments", len(out.Segments)))

	handle, err := p.indexer.Build(ctx, out.Segments)
	if err != nil {
		p.logger.Error("Indexing failed", slog.String("error", err.Error()))
		return out, &StageError{Stage: StageIndex, Err: err}
	}
	out.Handle = handle

	if p.summarizer != nil {
		summary, err := p.summarizer.Summarize(res.Text, p.maxSentences)
		if err != nil {
			p.logger.Warn("Summary failed", slog.String("error", err.Error()))
		} else {
			out.Summary = summary
		}
	}
	return out, nil
}
