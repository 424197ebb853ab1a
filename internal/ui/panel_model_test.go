package ui

import (
	"context"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/huimingz/commitpanel/internal/message"
	"github.com/huimingz/commitpanel/internal/panel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHandler struct {
	mu     sync.Mutex
	events []panel.Event
}

func (h *recordingHandler) Handle(_ context.Context, e panel.Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, e)
	return nil
}

func (h *recordingHandler) received() []panel.Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]panel.Event(nil), h.events...)
}

// collect runs cmd and flattens batches; only use it on commands that do not sleep
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func newTestModel(t *testing.T) (*PanelModel, *recordingHandler) {
	t.Helper()
	h := &recordingHandler{}
	m := NewPanelModel(context.Background(), []message.CommitType{message.Feature, message.Fix})
	m.SetHandler(h)
	return m, h
}

func key(t tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: t}
}

func typeText(m *PanelModel, s string) {
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func TestPanelModel_GenerateFlow(t *testing.T) {
	m, h := newTestModel(t)

	typeText(m, "T-9")
	m.Update(key(tea.KeyTab))
	m.Update(key(tea.KeyRight))
	assert.Equal(t, message.Fix, m.CommitType())

	_, cmd := m.Update(key(tea.KeyCtrlG))
	assert.True(t, m.busy)
	assert.Contains(t, m.View(), "Generating commit message...")

	var handled bool
	for _, msg := range collect(cmd) {
		if done, ok := msg.(handledMsg); ok {
			handled = true
			m.Update(done)
		}
	}
	require.True(t, handled)
	assert.False(t, m.busy)

	events := h.received()
	require.Len(t, events, 1)
	assert.Equal(t, panel.GenerateEvent{CommitType: "fix", TicketID: "T-9"}, events[0])

	m.Update(EventMsg{Event: panel.CommitResultEvent{Message: "T-9:FIX: Add missing null check", DurationSeconds: 1.5}})
	assert.Equal(t, "T-9:FIX: Add missing null check", m.editor.Value())
	assert.Equal(t, focusEditor, m.focus)
	assert.Contains(t, m.View(), "Commit message generated in 1.50 seconds")
}

func TestPanelModel_CommitSendsEditorText(t *testing.T) {
	m, h := newTestModel(t)
	m.Update(EventMsg{Event: panel.CommitResultEvent{Message: "T-1:FEATURE: Add cache"}})
	typeText(m, " layer")

	_, cmd := m.Update(key(tea.KeyCtrlS))
	collect(cmd)

	events := h.received()
	require.Len(t, events, 1)
	assert.Equal(t, panel.CommitEvent{Message: "T-1:FEATURE: Add cache layer"}, events[0])
}

func TestPanelModel_IgnoresDispatchWhileBusy(t *testing.T) {
	m, h := newTestModel(t)

	_, first := m.Update(key(tea.KeyCtrlG))
	require.NotNil(t, first)
	m.Update(key(tea.KeyCtrlG))
	m.Update(key(tea.KeyCtrlS))

	collect(first)
	assert.Len(t, h.received(), 1)
	require.NotNil(t, m.banner)
	assert.Equal(t, panel.LevelWarning, m.banner.level)
}

func TestPanelModel_Banner(t *testing.T) {
	m, _ := newTestModel(t)

	m.Update(EventMsg{Event: panel.InfoEvent{Text: "No staged changes found.", Level: panel.LevelError}})
	assert.Contains(t, m.View(), "No staged changes found.")
	first := m.banner.id

	m.Update(EventMsg{Event: panel.InfoEvent{Text: "Commit completed successfully!", Level: panel.LevelSuccess}})

	// an expired timer for an older banner leaves the newer one alone
	m.Update(clearBannerMsg{id: first})
	assert.Contains(t, m.View(), "Commit completed successfully!")

	m.Update(clearBannerMsg{id: m.banner.id})
	assert.Nil(t, m.banner)
}

func TestPanelModel_CommitTypeWraps(t *testing.T) {
	m, _ := newTestModel(t)
	m.Update(key(tea.KeyTab))

	m.Update(key(tea.KeyLeft))
	assert.Equal(t, message.Fix, m.CommitType())
	m.Update(key(tea.KeyRight))
	assert.Equal(t, message.Feature, m.CommitType())

	// arrows do not change the type while another field has focus
	m.Update(key(tea.KeyShiftTab))
	m.Update(key(tea.KeyRight))
	assert.Equal(t, message.Feature, m.CommitType())
}

func TestPanelModel_Quit(t *testing.T) {
	m, _ := newTestModel(t)

	_, cmd := m.Update(key(tea.KeyEsc))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
	assert.Empty(t, m.View())
}

func TestNewPanelModel_DefaultsCommitType(t *testing.T) {
	m := NewPanelModel(context.Background(), nil)
	assert.Equal(t, message.Feature, m.CommitType())
}
