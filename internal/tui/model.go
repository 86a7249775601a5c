package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"pdfchat/internal/domain"
	"pdfchat/internal/extractor"
	"pdfchat/internal/session"
)

const helpText = "/add <files|globs>  stage PDFs   /clear  unstage all   /process  index staged PDFs\n" +
	"/reset  forget documents and chat   /help  this text   /quit  exit\n" +
	"Anything else is a question about the processed documents."

// SessionPort is the TUI-facing subset of the chat session.
type SessionPort interface {
	Process(ctx context.Context, uploads []extractor.Upload, progress extractor.Progress) []session.Notice
	Ask(ctx context.Context, input string) []session.Notice
	Reset()
	Ready() bool
	Transcript() []domain.Turn
}

type progressMsg extractor.Event

type processDoneMsg struct {
	notices    []session.Notice
	transcript []domain.Turn
	ready      bool
}

type answerMsg struct {
	notices    []session.Notice
	transcript []domain.Turn
}

// Model is the Bubble Tea model for the chat application.
type Model struct {
	ctx        context.Context
	session    SessionPort
	input      textinput.Model
	viewport   viewport.Model
	spinner    spinner.Model
	staged     []extractor.Upload
	events     <-chan tea.Msg
	transcript []domain.Turn
	pending    string
	log        []session.Notice
	status     string
	busy       bool
	ready      bool
	sized      bool
	width      int
	height     int
}

// New creates a new TUI model instance with uploads already staged.
func New(ctx context.Context, s SessionPort, staged []extractor.Upload) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a question, or /help"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	m := Model{ctx: ctx, session: s, input: ti, viewport: vp, spinner: sp, staged: staged, ready: s.Ready()}
	m.status = m.idleStatus()
	return m
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key, window and background events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.sized = true
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progressMsg:
		m.status = extractor.Event(msg).String()
		return m, listen(m.events)

	case processDoneMsg:
		m.busy = false
		m.events = nil
		m.ready = msg.ready
		m.transcript = msg.transcript
		m.addNotices(msg.notices...)
		for _, n := range msg.notices {
			if n.Level == session.Success {
				m.staged = nil
			}
		}
		m.status = m.idleStatus()
		m.refresh()
		return m, nil

	case answerMsg:
		m.busy = false
		m.pending = ""
		m.transcript = msg.transcript
		m.addNotices(msg.notices...)
		m.status = m.idleStatus()
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			if m.busy {
				return m, nil
			}
			line := strings.TrimSpace(m.input.Value())
			if line == "" {
				return m, nil
			}
			m.input.Reset()
			// The log holds the notices of the latest action only.
			m.log = nil
			m.layout()
			return m.submit(line)
		case "pgup", "pgdown":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submit(line string) (tea.Model, tea.Cmd) {
	if !strings.HasPrefix(line, "/") {
		return m.ask(line)
	}
	fields := strings.Fields(line)
	switch fields[0] {
	case "/quit", "/exit":
		return m, tea.Quit
	case "/help":
		m.addNotices(session.Notice{Level: session.Info, Text: helpText})
	case "/add":
		m.stage(fields[1:])
	case "/clear":
		m.staged = nil
		m.addNotices(session.Notice{Level: session.Info, Text: "Cleared staged files."})
	case "/reset":
		m.session.Reset()
		m.ready = false
		m.transcript = nil
		m.refresh()
		m.addNotices(session.Notice{Level: session.Info, Text: "Session reset."})
	case "/process":
		return m.process()
	default:
		m.addNotices(session.Notice{Level: session.Warning, Text: fmt.Sprintf("Unknown command %s. Type /help.", fields[0])})
	}
	m.status = m.idleStatus()
	return m, nil
}

func (m *Model) stage(patterns []string) {
	if len(patterns) == 0 {
		m.addNotices(session.Notice{Level: session.Warning, Text: "Usage: /add <files|globs>"})
		return
	}
	uploads, skipped, err := extractor.ReadFiles(patterns...)
	if err != nil {
		m.addNotices(session.Notice{Level: session.Error, Text: err.Error()})
		return
	}
	for _, s := range skipped {
		m.addNotices(session.Notice{Level: session.Warning, Text: fmt.Sprintf("Skipped %s: not a .pdf file.", s)})
	}
	m.staged = append(m.staged, uploads...)
	if len(uploads) > 0 {
		m.addNotices(session.Notice{Level: session.Info, Text: fmt.Sprintf("Staged %d file(s).", len(uploads))})
	}
}

func (m Model) process() (tea.Model, tea.Cmd) {
	m.busy = true
	m.status = "Processing..."
	ctx, sess, uploads := m.ctx, m.session, m.staged
	events := make(chan tea.Msg, 32)
	m.events = events
	start := func() tea.Msg {
		go func() {
			defer close(events)
			notices := sess.Process(ctx, uploads, func(e extractor.Event) {
				events <- progressMsg(e)
			})
			events <- processDoneMsg{notices: notices, transcript: sess.Transcript(), ready: sess.Ready()}
		}()
		return listen(events)()
	}
	return m, tea.Batch(m.spinner.Tick, start)
}

// listen delivers the next background event; progress handling re-arms it.
func listen(events <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-events
		if !ok {
			return nil
		}
		return msg
	}
}

func (m Model) ask(question string) (tea.Model, tea.Cmd) {
	if !m.ready {
		m.addNotices(session.Notice{Level: session.Warning, Text: session.MsgNotReady})
		return m, nil
	}
	m.busy = true
	m.pending = question
	m.status = "Thinking..."
	m.refresh()
	ctx, sess := m.ctx, m.session
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		notices := sess.Ask(ctx, question)
		return answerMsg{notices: notices, transcript: sess.Transcript()}
	})
}

func (m *Model) addNotices(ns ...session.Notice) {
	m.log = append(m.log, ns...)
	m.layout()
}

// layout gives the transcript whatever height the other rows leave over.
func (m *Model) layout() {
	if !m.sized {
		return
	}
	_, th := transcriptBoxStyle.GetFrameSize()
	_, ih := inputBoxStyle.GetFrameSize()
	reserved := 2 + lipgloss.Height(m.renderLog()) + 1 + ih + 1 // header, staged, log, input, status
	m.viewport.Width = max(20, m.width)
	m.viewport.Height = max(3, m.height-reserved-th)
}

func (m Model) idleStatus() string {
	if m.ready {
		return "Ready. Ask a question about your documents."
	}
	return "No documents processed. /add some PDFs, then /process."
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}

// View renders the TUI layout.
func (m Model) View() string {
	if !m.sized {
		return "Loading..."
	}
	header := headerStyle.Render("Chat with your PDFs")
	staged := mutedStyle.Render("Staged: " + m.stagedNames())
	status := statusStyle.Render(m.status)
	if m.busy {
		status = m.spinner.View() + " " + status
	}
	return strings.Join([]string{
		header,
		staged,
		transcriptBoxStyle.Render(m.viewport.View()),
		m.renderLog(),
		inputBoxStyle.Render(m.input.View()),
		status,
	}, "\n")
}

func (m Model) renderLog() string {
	lines := make([]string, len(m.log))
	for i, n := range m.log {
		lines[i] = noticeStyle(n.Level).Width(m.width).Render(n.Text)
	}
	return strings.Join(lines, "\n")
}

func (m Model) stagedNames() string {
	if len(m.staged) == 0 {
		return "none"
	}
	names := make([]string, len(m.staged))
	for i, u := range m.staged {
		names[i] = u.Name
	}
	return strings.Join(names, ", ")
}

func (m Model) renderTranscript() string {
	if len(m.transcript) == 0 && m.pending == "" {
		return mutedStyle.Render("No messages yet.")
	}
	var b strings.Builder
	for _, t := range m.transcript {
		if t.Role == domain.RoleUser {
			b.WriteString(userStyle.Render("You: "))
		} else {
			b.WriteString(assistantStyle.Render("Assistant: "))
		}
		b.WriteString(t.Content)
		b.WriteString("\n\n")
	}
	if m.pending != "" {
		b.WriteString(userStyle.Render("You: "))
		b.WriteString(m.pending)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

var (
	transcriptBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputBoxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	headerStyle        = lipgloss.NewStyle().Bold(true)
	mutedStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	userStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	assistantStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
)

func noticeStyle(l session.Level) lipgloss.Style {
	switch l {
	case session.Success:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	case session.Warning:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	case session.Error:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	default:
		return mutedStyle
	}
}
