package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"corpusqa/internal/service"
	"corpusqa/internal/textutil"
)

// Answerer is the TUI-facing subset of the pipeline.
type Answerer interface {
	Answer(ctx context.Context, question string, mode service.Mode) service.Answer
	Fragments() []string
	IndexName() string
}

type exchange struct {
	question string
	answer   service.Answer
}

type answerMsg exchange

// Model is the Bubble Tea model for the TUI application.
type Model struct {
	ctx      context.Context
	pipeline Answerer
	input    textinput.Model
	viewport viewport.Model
	modes    []service.Mode
	mode     int
	history  []exchange
	cursor   int
	summary  string
	status   string
	busy     bool
	ready    bool
}

// New creates a new TUI model instance.
func New(ctx context.Context, pipeline Answerer, summary string, mode service.Mode) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ketik pertanyaan lalu tekan Enter"
	ti.Focus()
	ti.CharLimit = 0
	m := Model{
		ctx:      ctx,
		pipeline: pipeline,
		input:    ti,
		viewport: viewport.New(0, 0),
		modes:    service.Modes(),
		summary:  summary,
		status:   "Ready. Tab switches mode.",
	}
	for i, md := range m.modes {
		if md == mode {
			m.mode = i
		}
	}
	return m
}

func (m Model) Mode() service.Mode { return m.modes[m.mode] }

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		// account for frames around result and query boxes
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 3 + 1 + qh + 1 // header, summary, mode; status; spacer
		vh := msg.Height - reserved
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		m.viewport.SetContent(m.renderCurrent())
		return m, nil
	case answerMsg:
		m.busy = false
		m.history = append(m.history, exchange(msg))
		m.cursor = len(m.history) - 1
		if msg.answer.Failed() {
			m.status = "Error (" + string(msg.answer.Err.Kind) + ")"
		} else {
			m.status = fmt.Sprintf("Answered %q", msg.question)
		}
		m.viewport.SetContent(m.renderCurrent())
		m.viewport.GotoTop()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "tab":
			m.mode = (m.mode + 1) % len(m.modes)
			return m, nil
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q == "" || m.busy {
				return m, nil
			}
			m.busy = true
			m.status = "Thinking..."
			m.input.SetValue("")
			return m, m.ask(q, m.Mode())
		case "up":
			if len(m.history) > 0 {
				m.cursor = (m.cursor - 1 + len(m.history)) % len(m.history)
				m.viewport.SetContent(m.renderCurrent())
				return m, nil
			}
		case "down":
			if len(m.history) > 0 {
				m.cursor = (m.cursor + 1) % len(m.history)
				m.viewport.SetContent(m.renderCurrent())
				return m, nil
			}
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

func (m Model) ask(question string, mode service.Mode) tea.Cmd {
	ctx, p := m.ctx, m.pipeline
	return func() tea.Msg {
		return answerMsg{question: question, answer: p.Answer(ctx, question, mode)}
	}
}

// View renders the TUI layout and current answer.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("Corpus QA") +
		lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(" ["+m.pipeline.IndexName()+"]")
	summary := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(m.summary)
	mode := modeStyle.Render("Mode: " + m.Mode().Label())
	input := queryBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	results := resultBoxStyle.Render(m.viewport.View())
	return header + "\n" + summary + "\n" + mode + "\n" + results + "\n" + input + "\n" + status
}

func (m Model) renderCurrent() string {
	if len(m.history) == 0 {
		return "No answers yet."
	}
	ex := m.history[m.cursor]
	var b strings.Builder
	fmt.Fprintf(&b, "Answer %d/%d  [%s]\n", m.cursor+1, len(m.history), ex.answer.Mode.Label())
	fmt.Fprintf(&b, "Q: %s\n\n", ex.question)
	if ex.answer.Failed() {
		b.WriteString(errorStyle.Render(ex.answer.String()))
	} else {
		b.WriteString(ex.answer.String())
	}
	if len(ex.answer.FragmentIDs) > 0 {
		b.WriteString("\n\n")
		b.WriteString(contextTitleStyle.Render("Context"))
		fragments := m.pipeline.Fragments()
		for rank, id := range ex.answer.FragmentIDs {
			if id < 0 || id >= len(fragments) {
				continue
			}
			fmt.Fprintf(&b, "\n\n#%d (fragment %d)\n%s", rank+1, id, highlightBestSentence(fragments[id], ex.question))
		}
	}
	return b.String()
}

var (
	resultBoxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	highlightStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	modeStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	errorStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	contextTitleStyle = lipgloss.NewStyle().Underline(true)
)

// highlightBestSentence marks the sentence sharing the most tokens with query.
func highlightBestSentence(text, query string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}
	sentences := textutil.Sentences(text)
	if len(sentences) == 0 {
		sentences = []string{strings.TrimSpace(text)}
	}
	qTokens := toTokenSet(query)
	if len(qTokens) == 0 {
		return strings.Join(sentences, " ")
	}
	bestIdx := 0
	bestScore := -1
	for i, s := range sentences {
		score := tokenOverlapScore(qTokens, s)
		if score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}
	for i := range sentences {
		sent := strings.TrimSpace(sentences[i])
		if i == bestIdx {
			sentences[i] = highlightStyle.Render(sent)
		} else {
			sentences[i] = sent
		}
	}
	return strings.Join(sentences, " ")
}

func toTokenSet(s string) map[string]struct{} {
	tokens := textutil.ContentTokens(s)
	m := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		m[t] = struct{}{}
	}
	return m
}

func tokenOverlapScore(queryTokens map[string]struct{}, sentence string) int {
	score := 0
	seen := make(map[string]struct{})
	for _, t := range textutil.Tokens(sentence) {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		if _, ok := queryTokens[t]; ok {
			score++
		}
	}
	return score
}
