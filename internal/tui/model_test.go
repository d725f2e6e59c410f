package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"researcher/internal/domain"
	"researcher/internal/service"
)

type fakePort struct {
	answer service.Answer
	err    error
	asked  []string
}

func (f *fakePort) Ask(_ context.Context, q string, _ int) (service.Answer, error) {
	f.asked = append(f.asked, q)
	return f.answer, f.err
}

func sized(m Model) Model {
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 30})
	return next.(Model)
}

func TestEnterRunsAskAsync(t *testing.T) {
	port := &fakePort{answer: service.Answer{Question: "why", Report: "## Executive summary"}}
	m := sized(New(port, Options{TopK: 3}))
	m.input.SetValue("  why  ")
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	if !m.busy || cmd == nil {
		t.Fatalf("expected a pending ask")
	}
	if len(port.asked) != 0 {
		t.Fatalf("ask should not run inside Update")
	}
	next, _ = m.Update(answerMsg{answer: port.answer})
	m = next.(Model)
	if m.busy || m.answer == nil {
		t.Fatalf("answer not applied: busy=%v", m.busy)
	}
	if !strings.Contains(m.status, "offline report") {
		t.Fatalf("unexpected status %q", m.status)
	}
}

func TestAnswerErrorShowsStatus(t *testing.T) {
	m := sized(New(&fakePort{}, Options{}))
	next, _ := m.Update(answerMsg{err: errors.New("please enter a question")})
	m = next.(Model)
	if !strings.HasPrefix(m.status, "Error: please enter") {
		t.Fatalf("unexpected status %q", m.status)
	}
}

func TestTabShowsHits(t *testing.T) {
	d := 0.25
	ans := service.Answer{
		Question: "sky color",
		Hits: []domain.Hit{
			{Text: "Grass is green. The sky color is blue.", Source: "a.txt", Score: &d},
			{Text: "Rayleigh scattering.", Source: "Wikipedia"},
		},
	}
	m := sized(New(&fakePort{}, Options{}))
	next, _ := m.Update(answerMsg{answer: ans})
	m = next.(Model)
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(Model)
	if m.pane != hitsPane {
		t.Fatalf("tab did not switch panes")
	}
	out := m.renderContent()
	if !strings.Contains(out, "Hit 1/2  a.txt  distance=0.250") {
		t.Fatalf("unexpected hit view:\n%s", out)
	}
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = next.(Model)
	if out := m.renderContent(); !strings.Contains(out, "Hit 2/2  Wikipedia") || strings.Contains(out, "distance") {
		t.Fatalf("unexpected second hit view:\n%s", out)
	}
}

func TestExportWithoutAnswer(t *testing.T) {
	m := sized(New(&fakePort{}, Options{ExportPath: "report.json"}))
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlE})
	m = next.(Model)
	if cmd != nil || m.status != "Nothing to export yet." {
		t.Fatalf("unexpected export handling: %q", m.status)
	}
}

func TestHighlightBestSentence(t *testing.T) {
	out := highlightBestSentence("Cats sleep a lot. Dogs bark at night.", "why do dogs bark")
	if !strings.Contains(out, "Dogs bark at night.") || !strings.Contains(out, "Cats sleep a lot.") {
		t.Fatalf("sentences lost: %q", out)
	}
	if got := highlightBestSentence("   ", "q"); got != "   " {
		t.Fatalf("blank text should pass through, got %q", got)
	}
}

func TestTokenOverlapScoreCountsDistinctWords(t *testing.T) {
	q := toTokenSet("blue sky")
	if got := tokenOverlapScore(q, "Blue blue sky, the sky!"); got != 2 {
		t.Fatalf("expected 2, got %d", got)
	}
}
