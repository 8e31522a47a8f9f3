package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"corpusqa/internal/service"
)

type fakeAnswerer struct {
	modes []service.Mode
}

func (f *fakeAnswerer) Answer(_ context.Context, q string, mode service.Mode) service.Answer {
	f.modes = append(f.modes, mode)
	return service.Answer{Mode: mode, Text: "Jakarta", FragmentIDs: []int{1}}
}

func (f *fakeAnswerer) Fragments() []string {
	return []string{"Vnelia menjual parfum.", "Transaksi TRX001. Pelanggan berada di Jakarta."}
}

func (f *fakeAnswerer) IndexName() string { return "hnsw" }

func TestTabCyclesModes(t *testing.T) {
	m := New(context.Background(), &fakeAnswerer{}, "", service.ModeRAG)
	assert.Equal(t, service.ModeRAG, m.Mode())

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(Model)
	assert.Equal(t, service.ModeAllDocs, m.Mode())

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	next, _ = next.(Model).Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, service.ModeRAG, next.(Model).Mode())
}

func TestEnterAsksInCurrentMode(t *testing.T) {
	fake := &fakeAnswerer{}
	m := New(context.Background(), fake, "ringkasan", service.ModeBase)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 30})
	m = next.(Model)
	m.input.SetValue("Dimana TRX001?")

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	require.NotNil(t, cmd)
	assert.True(t, m.busy)
	assert.Empty(t, m.input.Value())

	next, _ = m.Update(cmd())
	m = next.(Model)
	assert.False(t, m.busy)
	assert.Equal(t, []service.Mode{service.ModeBase}, fake.modes)
	require.Len(t, m.history, 1)
	view := m.renderCurrent()
	assert.Contains(t, view, "Jakarta")
	assert.Contains(t, view, "fragment 1")
	assert.True(t, strings.Contains(m.View(), "Corpus QA"))
	assert.Contains(t, m.View(), "[hnsw]")
}

func TestEnterIgnoresBlankQuestion(t *testing.T) {
	m := New(context.Background(), &fakeAnswerer{}, "", service.ModeRAG)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
}

func TestFailedAnswerStatus(t *testing.T) {
	m := New(context.Background(), &fakeAnswerer{}, "", service.ModeRAG)
	next, _ := m.Update(answerMsg{question: "q", answer: service.Answer{
		Mode: service.ModeRAG,
		Err:  &service.AnswerError{Kind: service.KindCompletion, Message: "Error in LLM API call: timeout"},
	}})
	m = next.(Model)
	assert.Equal(t, "Error (completion)", m.status)
	assert.Contains(t, m.renderCurrent(), "Error in LLM API call: timeout")
}

func TestHighlightKeepsUnterminatedAndDecimalText(t *testing.T) {
	out := highlightBestSentence("Vnelia VOC dikemas dalam botol kaca. Distribusi dilakukan melalui 40 kota di Jawa dan", "distribusi")
	assert.Contains(t, out, "Vnelia VOC dikemas dalam botol kaca.")
	assert.Contains(t, out, "Distribusi dilakukan melalui 40 kota di Jawa dan")

	out = highlightBestSentence("Harga per unit 75.000 rupiah untuk VOC 50ml", "harga")
	assert.Contains(t, out, "Harga per unit 75.000 rupiah untuk VOC 50ml")
}
