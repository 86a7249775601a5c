package tui

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdfchat/internal/domain"
	"pdfchat/internal/extractor"
	"pdfchat/internal/session"
)

type fakeSession struct {
	ready      bool
	processed  [][]extractor.Upload
	asked      []string
	transcript []domain.Turn
	resets     int
	notices    []session.Notice
}

func (f *fakeSession) Process(_ context.Context, uploads []extractor.Upload, progress extractor.Progress) []session.Notice {
	f.processed = append(f.processed, uploads)
	for _, u := range uploads {
		progress(extractor.Event{Kind: extractor.FileStarted, File: u.Name, Pages: 12})
		progress(extractor.Event{Kind: extractor.FileDone, File: u.Name, Pages: 12})
	}
	f.ready = true
	if f.notices != nil {
		return f.notices
	}
	return []session.Notice{{Level: session.Success, Text: "done"}}
}

func (f *fakeSession) Ask(_ context.Context, input string) []session.Notice {
	f.asked = append(f.asked, input)
	f.transcript = append(f.transcript,
		domain.Turn{Role: domain.RoleUser, Content: input},
		domain.Turn{Role: domain.RoleAssistant, Content: "reply to " + input})
	return nil
}

func (f *fakeSession) Reset() {
	f.resets++
	f.ready = false
	f.transcript = nil
}

func (f *fakeSession) Ready() bool { return f.ready }

func (f *fakeSession) Transcript() []domain.Turn {
	return append([]domain.Turn(nil), f.transcript...)
}

func newModel(f *fakeSession, staged ...extractor.Upload) Model {
	m := New(context.Background(), f, staged)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 30})
	return next.(Model)
}

func enter(t *testing.T, m Model, line string) (Model, tea.Cmd) {
	t.Helper()
	m.input.SetValue(line)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return next.(Model), cmd
}

// drain runs cmd and feeds every resulting message back into the model
// until nothing is left. Spinner ticks are dropped.
func drain(m Model, cmd tea.Cmd) Model {
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case nil, spinner.TickMsg:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		default:
			next, more := m.Update(msg)
			m = next.(Model)
			queue = append(queue, more)
		}
	}
	return m
}

func TestQuestionBeforeProcessing(t *testing.T) {
	f := &fakeSession{}
	m, cmd := enter(t, newModel(f), "What is this?")
	assert.Nil(t, cmd)
	assert.Empty(t, f.asked)
	require.NotEmpty(t, m.log)
	assert.Equal(t, session.MsgNotReady, m.log[len(m.log)-1].Text)
}

func TestProcessStreamsProgressAndClearsStaged(t *testing.T) {
	f := &fakeSession{}
	m := newModel(f, extractor.Upload{Name: "a.pdf"}, extractor.Upload{Name: "b.pdf"})

	m, cmd := enter(t, m, "/process")
	assert.True(t, m.busy)
	m = drain(m, cmd)

	assert.False(t, m.busy)
	assert.True(t, m.ready)
	assert.Empty(t, m.staged)
	require.Len(t, f.processed, 1)
	assert.Len(t, f.processed[0], 2)

	require.Len(t, m.log, 1)
	assert.Equal(t, "done", m.log[0].Text)
	assert.Equal(t, m.idleStatus(), m.status)
}

func TestProgressShownInStatus(t *testing.T) {
	m := newModel(&fakeSession{}, extractor.Upload{Name: "b.pdf"})
	m.busy = true
	next, _ := m.Update(progressMsg{Kind: extractor.FileStarted, File: "b.pdf", Pages: 12})
	m = next.(Model)
	assert.Contains(t, m.View(), "Processing b.pdf with 12 pages.")
	assert.Empty(t, m.log)
}

func TestProcessKeepsEveryNoticeOfTheCycle(t *testing.T) {
	notices := []session.Notice{
		{Level: session.Warning, Text: "Only the first 5 of 7 files are used."},
		{Level: session.Error, Text: "c.pdf: corrupt"},
		{Level: session.Error, Text: "d.pdf: corrupt"},
		{Level: session.Error, Text: "e.pdf: corrupt"},
		{Level: session.Success, Text: "Ready to chat."},
		{Level: session.Info, Text: "Summary: short."},
	}
	f := &fakeSession{notices: notices}
	var staged []extractor.Upload
	for _, name := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		staged = append(staged, extractor.Upload{Name: name + ".pdf"})
	}
	m := newModel(f, staged...)
	m, _ = enter(t, m, "/help")

	m, cmd := enter(t, m, "/process")
	m = drain(m, cmd)

	assert.Equal(t, notices, m.log)
	view := m.View()
	for _, n := range notices {
		assert.Contains(t, view, n.Text)
	}
	assert.NotContains(t, view, "stage PDFs")
}

func TestAskAppendsTranscript(t *testing.T) {
	f := &fakeSession{ready: true}
	m := newModel(f)

	m, cmd := enter(t, m, "  first?  ")
	assert.True(t, m.busy)
	assert.Equal(t, "first?", m.pending)
	m = drain(m, cmd)

	assert.False(t, m.busy)
	assert.Empty(t, m.pending)
	assert.Equal(t, []string{"first?"}, f.asked)
	assert.Len(t, m.transcript, 2)
	assert.Contains(t, m.View(), "reply to first?")
}

func TestEnterIgnoredWhileBusy(t *testing.T) {
	f := &fakeSession{ready: true}
	m := newModel(f)
	m.busy = true

	m, cmd := enter(t, m, "second?")
	assert.Nil(t, cmd)
	assert.Empty(t, f.asked)
	assert.Equal(t, "second?", m.input.Value())
}

func TestEmptyInputNotSubmitted(t *testing.T) {
	f := &fakeSession{ready: true}
	_, cmd := enter(t, newModel(f), "   ")
	assert.Nil(t, cmd)
	assert.Empty(t, f.asked)
}

func TestAddAndClear(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "report.pdf"), []byte("%PDF-1.4"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	m, _ := enter(t, newModel(&fakeSession{}), "/add "+filepath.Join(dir, "*"))
	require.Len(t, m.staged, 1)
	assert.Equal(t, "report.pdf", m.staged[0].Name)
	assert.Contains(t, m.View(), "Staged: report.pdf")

	m, _ = enter(t, m, "/clear")
	assert.Empty(t, m.staged)
}

func TestResetAndQuit(t *testing.T) {
	f := &fakeSession{ready: true, transcript: []domain.Turn{{Role: domain.RoleUser, Content: "hi"}}}
	m := newModel(f)

	m, _ = enter(t, m, "/reset")
	assert.Equal(t, 1, f.resets)
	assert.False(t, m.ready)
	assert.Empty(t, m.transcript)

	_, cmd := enter(t, m, "/quit")
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
