// Package session holds the state of one user's chat over processed PDFs.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"pdfchat/internal/domain"
	"pdfchat/internal/engine"
	"pdfchat/internal/extractor"
	"pdfchat/internal/index"
	"pdfchat/internal/service"
)

// DefaultMaxFiles caps how many uploads one processing cycle accepts.
const DefaultMaxFiles = 5

// User-facing messages.
const (
	MsgNoUploads = "Please upload at least one PDF file."
	MsgNoText    = "No text extracted from the uploaded PDFs."
	MsgNotReady  = "Please upload and process documents before chatting."
)

// Level is the severity of a Notice.
type Level int

const (
	Info Level = iota
	Success
	Warning
	Error
)

func (l Level) String() string {
	switch l {
	case Success:
		return "success"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "info"
	}
}

// Notice is a message for the user produced by an action.
type Notice struct {
	Level Level
	Text  string
}

// Processor runs one extraction-to-index cycle.
type Processor interface {
	Run(ctx context.Context, uploads []extractor.Upload, progress extractor.Progress) (service.Outcome, error)
}

// EngineFactory builds an answer engine over a freshly built handle.
type EngineFactory func(ctx context.Context, h *index.Handle) (*engine.Engine, error)

// Session is driven by a single goroutine; it does no locking of its own.
type Session struct {
	processor  Processor
	newEngine  EngineFactory
	maxFiles   int
	logger     *slog.Logger
	handle     *index.Handle
	engine     *engine.Engine
	transcript []domain.Turn
}

// New creates an empty session. maxFiles <= 0 means DefaultMaxFiles.
func New(processor Processor, newEngine EngineFactory, maxFiles int, logger *slog.Logger) *Session {
	if maxFiles <= 0 {
		maxFiles = DefaultMaxFiles
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{processor: processor, newEngine: newEngine, maxFiles: maxFiles, logger: logger}
}

// Process indexes uploads and, on success, replaces the active engine and
// starts a fresh transcript. On failure the previous engine stays active.
func (s *Session) Process(ctx context.Context, uploads []extractor.Upload, progress extractor.Progress) []Notice {
	if len(uploads) == 0 {
		return []Notice{{Level: Warning, Text: MsgNoUploads}}
	}
	var notices []Notice
	if len(uploads) > s.maxFiles {
		notices = append(notices, Notice{
			Level: Warning,
			Text:  fmt.Sprintf("You can upload up to %d files. Only the first %d will be processed.", s.maxFiles, s.maxFiles),
		})
		uploads = uploads[:s.maxFiles]
	}

	out, err := s.processor.Run(ctx, uploads, progress)
	for _, fe := range out.FileErrors {
		notices = append(notices, Notice{Level: Error, Text: fe.Error()})
	}
	if err != nil {
		if errors.Is(err, service.ErrNoText) {
			return append(notices, Notice{Level: Warning, Text: MsgNoText})
		}
		s.logger.Error("Processing failed", slog.String("error", err.Error()))
		return append(notices, Notice{Level: Error, Text: fmt.Sprintf("Processing failed: %v", err)})
	}

	eng, err := s.newEngine(ctx, out.Handle)
	if err != nil {
		s.logger.Error("Failed to create answer engine", slog.String("error", err.Error()))
		return append(notices, Notice{Level: Error, Text: fmt.Sprintf("Could not start the chat engine: %v", err)})
	}

	s.handle = out.Handle
	s.engine = eng
	s.transcript = nil
	s.logger.Info("Session ready",
		slog.Int("documents", len(out.Documents)),
		slog.Int("segments", len(out.Segments)))

	notices = append(notices, Notice{
		Level: Success,
		Text:  fmt.Sprintf("Processed %d document(s) into %d segments. Ask away!", len(out.Documents), len(out.Segments)),
	})
	if out.Summary != "" {
		notices = append(notices, Notice{Level: Info, Text: "Summary: " + out.Summary})
	}
	return notices
}

// Ask answers input with the active engine. Blank input is ignored.
func (s *Session) Ask(ctx context.Context, input string) []Notice {
	q := strings.TrimSpace(input)
	if q == "" {
		return nil
	}
	if s.engine == nil {
		return []Notice{{Level: Warning, Text: MsgNotReady}}
	}
	answer, err := s.engine.Ask(ctx, q)
	if err != nil {
		s.logger.Error("Answer failed", slog.String("error", err.Error()))
		return []Notice{{Level: Error, Text: fmt.Sprintf("Could not answer: %v", err)}}
	}
	s.transcript = append(s.transcript,
		domain.Turn{Role: domain.RoleUser, Content: q},
		domain.Turn{Role: domain.RoleAssistant, Content: answer},
	)
	return nil
}

// Reset drops the active engine, handle and transcript.
func (s *Session) Reset() {
	s.handle = nil
	s.engine = nil
	s.transcript = nil
}

// Ready reports whether questions can be answered.
func (s *Session) Ready() bool { return s.engine != nil }

// Handle returns the active collection handle, or nil.
func (s *Session) Handle() *index.Handle { return s.handle }

// Transcript returns a copy of the displayed conversation.
func (s *Session) Transcript() []domain.Turn {
	out := make([]domain.Turn, len(s.transcript))
	copy(out, s.transcript)
	return out
}
