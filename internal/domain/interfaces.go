package domain

// Document represents a single uploaded PDF and the text of each of its pages.
type Document struct {
	Name  string
	Pages []string
}

// Segment is a bounded slice of the concatenated document text used for indexing.
// Overlap is the number of leading characters repeated from the previous segment.
type Segment struct {
	Index   int
	Text    string
	Overlap int
}

// SearchResult represents a matching segment with a relevance score.
type SearchResult struct {
	Segment Segment
	Score   float64
}

// Role identifies the author of a chat turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message of a conversation.
type Turn struct {
	Role    Role
	Content string
}

// Chunker splits raw text into segments suitable for retrieval indexing.
type Chunker interface {
	Split(text string) []Segment
}

// Summarizer produces a brief summary of the provided text.
type Summarizer interface {
	Summarize(text string, maxSentences int) (string, error)
}
