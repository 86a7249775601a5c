package extractor

import "fmt"

// EventKind identifies a progress notification.
type EventKind int

const (
	FileStarted EventKind = iota
	PagesProcessed
	FileDone
	FileFailed
)

// Event is a progress notification emitted during extraction.
type Event struct {
	Kind  EventKind
	File  string
	Page  int
	Pages int
	Err   error
}

// Progress receives extraction events in order.
type Progress func(Event)

func (e Event) String() string {
	switch e.Kind {
	case FileStarted:
		return fmt.Sprintf("Processing %s with %d pages.", e.File, e.Pages)
	case PagesProcessed:
		return fmt.Sprintf("Processed %d pages of %s.", e.Page, e.File)
	case FileDone:
		return fmt.Sprintf("Finished %s.", e.File)
	case FileFailed:
		return fmt.Sprintf("Error reading %s: %v", e.File, e.Err)
	}
	return ""
}
