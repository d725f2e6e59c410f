package tui

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"researcher/internal/domain"
	"researcher/internal/report"
	"researcher/internal/service"
)

// ResearchPort is the TUI-facing subset of the research service.
type ResearchPort interface {
	Ask(ctx context.Context, question string, topK int) (service.Answer, error)
}

// Options configures a session.
type Options struct {
	TopK       int
	ExportPath string
	Summary    string
}

type pane int

const (
	reportPane pane = iota
	hitsPane
)

type answerMsg struct {
	answer service.Answer
	err    error
}

type exportedMsg struct {
	path string
	err  error
}

// Model is the Bubble Tea model for the research console.
type Model struct {
	service  ResearchPort
	opts     Options
	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	renderer *glamour.TermRenderer
	answer   *service.Answer
	pane     pane
	cursor   int
	status   string
	busy     bool
	ready    bool
}

// New creates a new TUI model instance.
func New(svc ResearchPort, opts Options) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a research question and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	if opts.TopK <= 0 {
		opts.TopK = 5
	}
	return Model{
		service:  svc,
		opts:     opts,
		input:    ti,
		viewport: viewport.New(0, 0),
		spinner:  sp,
		status:   "Ready. tab: report/hits  ctrl+e: export  ctrl+c: quit",
	}
}

// Run starts the console on the alternate screen and blocks until exit.
func Run(svc ResearchPort, opts Options) error {
	_, err := tea.NewProgram(New(svc, opts), tea.WithAltScreen()).Run()
	return err
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

func askCmd(svc ResearchPort, question string, topK int) tea.Cmd {
	return func() tea.Msg {
		ans, err := svc.Ask(context.Background(), question, topK)
		return answerMsg{answer: ans, err: err}
	}
}

func exportCmd(path string, rec report.Record) tea.Cmd {
	return func() tea.Msg {
		return exportedMsg{path: path, err: report.Export(path, rec)}
	}
}

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 2 + 1 + qh + 1 // header+summary, status, spacer
		vh := max(3, msg.Height-reserved)
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		if r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(max(20, msg.Width-4))); err == nil {
			m.renderer = r
		}
		m.viewport.SetContent(m.renderContent())
		return m, nil
	case answerMsg:
		m.busy = false
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
			return m, nil
		}
		ans := msg.answer
		m.answer = &ans
		m.cursor = 0
		m.status = answerStatus(ans)
		m.viewport.SetContent(m.renderContent())
		m.viewport.GotoTop()
		return m, nil
	case exportedMsg:
		if msg.err != nil {
			m.status = "Export failed: " + msg.err.Error()
		} else {
			m.status = "Exported report to " + msg.path
		}
		return m, nil
	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q == "" || m.busy {
				return m, nil
			}
			m.busy = true
			m.status = fmt.Sprintf("Researching %q", q)
			m.input.SetValue("")
			return m, tea.Batch(askCmd(m.service, q, m.opts.TopK), m.spinner.Tick)
		case "tab":
			if m.pane == reportPane {
				m.pane = hitsPane
			} else {
				m.pane = reportPane
			}
			m.viewport.SetContent(m.renderContent())
			m.viewport.GotoTop()
			return m, nil
		case "ctrl+e":
			if m.answer == nil {
				m.status = "Nothing to export yet."
				return m, nil
			}
			return m, exportCmd(m.opts.ExportPath, m.answer.Record())
		case "down", "up":
			if m.pane == hitsPane && m.answer != nil && len(m.answer.Hits) > 0 {
				n := len(m.answer.Hits)
				if msg.String() == "down" {
					m.cursor = (m.cursor + 1) % n
				} else {
					m.cursor = (m.cursor - 1 + n) % n
				}
				m.viewport.SetContent(m.renderContent())
				return m, nil
			}
		case "pgdown", "pgup":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the TUI layout and current result.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := titleStyle.Render("Research Agent")
	summary := dimStyle.Render(m.opts.Summary)
	input := queryBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	if m.busy {
		status = m.spinner.View() + " " + status
	}
	results := resultBoxStyle.Render(m.viewport.View())
	return header + "\n" + summary + "\n" + results + "\n" + input + "\n" + status
}

func (m Model) renderContent() string {
	if m.answer == nil {
		return "No research yet."
	}
	if m.pane == hitsPane {
		return renderHit(m.answer.Hits, m.cursor, m.answer.Question)
	}
	md := m.answer.Report
	if m.renderer != nil {
		if out, err := m.renderer.Render(md); err == nil {
			return out
		}
	}
	return md
}

func answerStatus(ans service.Answer) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d hits", len(ans.Hits))
	if ans.UsedModel {
		b.WriteString(", report by model")
	} else {
		b.WriteString(", offline report")
	}
	for _, w := range ans.Warnings {
		b.WriteString("; ")
		b.WriteString(w.Error())
	}
	return b.String()
}

func renderHit(hits []domain.Hit, cursor int, question string) string {
	if len(hits) == 0 {
		return "No hits for this question."
	}
	h := hits[cursor]
	title := fmt.Sprintf("Hit %d/%d  %s", cursor+1, len(hits), h.Source)
	if h.Score != nil {
		title += fmt.Sprintf("  distance=%.3f", *h.Score)
	}
	return title + "\n\n" + highlightBestSentence(h.Text, question)
}

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	unicodeWordRe  = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)
	sentenceRe     = regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`)
)

func highlightBestSentence(text, query string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}
	sentences := sentenceRe.FindAllString(text, -1)
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
	tokens := unicodeWordRe.FindAllString(strings.ToLower(s), -1)
	m := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		m[t] = struct{}{}
	}
	return m
}

func tokenOverlapScore(queryTokens map[string]struct{}, sentence string) int {
	score := 0
	tokens := unicodeWordRe.FindAllString(strings.ToLower(sentence), -1)
	seen := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
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
