// Package extractor pulls plain text out of uploaded PDF files page by page.
package extractor

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ledongthuc/pdf"

	"pdfchat/internal/domain"
)

// ProgressEvery is the page interval between PagesProcessed events.
const ProgressEvery = 10

// ErrNotPDF is reported for uploads without a PDF header.
var ErrNotPDF = errors.New("not a PDF file")

// Upload is one file handed to the extractor.
type Upload struct {
	Name string
	Data []byte
}

// FileError reports an upload that could not be read. The file contributes
// no text.
type FileError struct {
	File string
	Err  error
}

func (e FileError) Error() string { return fmt.Sprintf("error reading %s: %v", e.File, e.Err) }

func (e FileError) Unwrap() error { return e.Err }

// Result is the outcome of one extraction run.
type Result struct {
	// Text is the concatenated text of all readable files, in upload order.
	Text      string
	Documents []domain.Document
	Errors    []FileError
}

// pageSource is the part of a parsed PDF the extractor reads.
type pageSource interface {
	NumPage() int
	PageText(i int) (string, error)
}

type openFunc func(data []byte) (pageSource, error)

// Extractor reads uploads in order and reports progress as it goes.
type Extractor struct {
	open   openFunc
	logger *slog.Logger
}

// New returns an extractor backed by github.com/ledongthuc/pdf.
func New(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{open: openPDF, logger: logger}
}

// Extract returns the text of every readable upload. A file that cannot be
// parsed is recorded in Result.Errors and skipped; it never stops the run.
func (e *Extractor) Extract(uploads []Upload, progress Progress) Result {
	if progress == nil {
		progress = func(Event) {}
	}
	var (
		res  Result
		text strings.Builder
	)
	for _, up := range uploads {
		doc, err := e.extractFile(up, progress)
		if err != nil {
			fe := FileError{File: up.Name, Err: err}
			e.logger.Error("Failed to extract text from PDF",
				slog.String("file", up.Name),
				slog.String("error", err.Error()))
			res.Errors = append(res.Errors, fe)
			progress(Event{Kind: FileFailed, File: up.Name, Err: err})
			continue
		}
		for _, p := range doc.Pages {
			text.WriteString(p)
		}
		res.Documents = append(res.Documents, doc)
		progress(Event{Kind: FileDone, File: up.Name, Pages: len(doc.Pages)})
	}
	res.Text = text.String()
	return res
}

func (e *Extractor) extractFile(up Upload, progress Progress) (doc domain.Document, err error) {
	// The parser panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed PDF: %v", r)
		}
	}()

	head := up.Data[:min(len(up.Data), 1024)]
	if !bytes.Contains(head, []byte("%PDF-")) {
		return domain.Document{}, ErrNotPDF
	}
	src, err := e.open(up.Data)
	if err != nil {
		return domain.Document{}, err
	}

	total := src.NumPage()
	progress(Event{Kind: FileStarted, File: up.Name, Pages: total})
	e.logger.Debug("Starting PDF text extraction",
		slog.String("file", up.Name),
		slog.Int("total_pages", total))

	doc = domain.Document{Name: up.Name, Pages: make([]string, 0, total)}
	for i := 1; i <= total; i++ {
		pageText, err := src.PageText(i)
		if err != nil {
			return domain.Document{}, fmt.Errorf("page %d: %w", i, err)
		}
		doc.Pages = append(doc.Pages, pageText)
		if i%ProgressEvery == 0 {
			progress(Event{Kind: PagesProcessed, File: up.Name, Page: i, Pages: total})
		}
	}
	e.logger.Info("Extracted text from PDF",
		slog.String("file", up.Name),
		slog.Int("total_pages", total))
	return doc, nil
}

type pdfSource struct {
	r *pdf.Reader
}

func openPDF(data []byte) (pageSource, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF reader: %w", err)
	}
	return pdfSource{r: r}, nil
}

func (s pdfSource) NumPage() int { return s.r.NumPage() }

func (s pdfSource) PageText(i int) (string, error) {
	page := s.r.Page(i)
	if page.V.IsNull() {
		return "", nil
	}
	return page.GetPlainText(nil)
}
