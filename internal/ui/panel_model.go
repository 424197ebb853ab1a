package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/huimingz/commitpanel/internal/message"
	"github.com/huimingz/commitpanel/internal/panel"
)

// BannerTimeout is how long a notice stays on screen
const BannerTimeout = 10 * time.Second

// Handler receives inbound panel events; *panel.Controller implements it
type Handler interface {
	Handle(ctx context.Context, e panel.Event) error
}

// EventMsg delivers a controller event into the bubbletea loop
type EventMsg struct {
	Event panel.Event
}

// handledMsg reports that a Handle call returned
type handledMsg struct {
	err error
}

type clearBannerMsg struct {
	id int
}

type focusArea int

const (
	focusTicket focusArea = iota
	focusType
	focusEditor
	focusCount
)

type banner struct {
	id    int
	text  string
	level panel.Level
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Width(8)
	activeStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	frameStyle   = lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("63")).Padding(1, 2)
	bannerStyles = map[panel.Level]lipgloss.Style{
		panel.LevelInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
		panel.LevelSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		panel.LevelWarning: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		panel.LevelError:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	}
)

// PanelModel is the full-screen commit panel
type PanelModel struct {
	ctx     context.Context
	handler Handler

	commitTypes []message.CommitType
	typeIndex   int

	ticket  textinput.Model
	editor  textarea.Model
	spinner spinner.Model
	focus   focusArea

	busy      bool
	busyLabel string
	started   time.Time

	duration  float64
	hasResult bool

	banner    *banner
	bannerSeq int
	quitting  bool
}

// NewPanelModel creates the panel; SetHandler must be called before the program runs
func NewPanelModel(ctx context.Context, commitTypes []message.CommitType) *PanelModel {
	if len(commitTypes) == 0 {
		commitTypes = []message.CommitType{message.DefaultCommitType()}
	}

	ti := textinput.New()
	ti.Placeholder = "e.g. JIRA-123"
	ti.CharLimit = 64
	ti.Width = 32
	ti.Prompt = ""
	ti.Focus()

	ta := textarea.New()
	ta.Placeholder = "Generated commit message appears here"
	ta.ShowLineNumbers = false
	ta.SetHeight(3)
	ta.SetWidth(60)

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return &PanelModel{
		ctx:         ctx,
		commitTypes: commitTypes,
		ticket:      ti,
		editor:      ta,
		spinner:     sp,
	}
}

// SetHandler sets the controller receiving generate and commit requests
func (m *PanelModel) SetHandler(h Handler) {
	m.handler = h
}

// ProgramSurface forwards controller events to a running program
func ProgramSurface(p *tea.Program) panel.Surface {
	return panel.SurfaceFunc(func(e panel.Event) {
		p.Send(EventMsg{Event: e})
	})
}

// CommitType returns the selected commit type
func (m *PanelModel) CommitType() message.CommitType {
	return m.commitTypes[m.typeIndex]
}

// Init implements tea.Model
func (m *PanelModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model
func (m *PanelModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case EventMsg:
		return m, m.handleEvent(msg.Event)

	case handledMsg:
		m.busy = false
		m.busyLabel = ""
		return m, nil

	case clearBannerMsg:
		if m.banner != nil && m.banner.id == msg.id {
			m.banner = nil
		}
		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		if msg.Width > 20 {
			m.editor.SetWidth(msg.Width - 12)
		}
		return m, nil
	}

	return m, m.updateFocused(msg)
}

func (m *PanelModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.quitting = true
		return m, tea.Quit

	case tea.KeyTab:
		return m, m.setFocus((m.focus + 1) % focusCount)

	case tea.KeyShiftTab:
		return m, m.setFocus((m.focus + focusCount - 1) % focusCount)

	case tea.KeyCtrlG:
		return m, m.dispatch("Generating commit message...", panel.GenerateEvent{
			CommitType: m.CommitType().String(),
			TicketID:   m.ticket.Value(),
		})

	case tea.KeyCtrlS:
		return m, m.dispatch("Committing...", panel.CommitEvent{Message: m.editor.Value()})
	}

	if m.focus == focusType {
		switch msg.Type {
		case tea.KeyLeft:
			m.typeIndex = (m.typeIndex + len(m.commitTypes) - 1) % len(m.commitTypes)
		case tea.KeyRight:
			m.typeIndex = (m.typeIndex + 1) % len(m.commitTypes)
		}
		return m, nil
	}

	return m, m.updateFocused(msg)
}

func (m *PanelModel) updateFocused(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch m.focus {
	case focusTicket:
		m.ticket, cmd = m.ticket.Update(msg)
	case focusEditor:
		m.editor, cmd = m.editor.Update(msg)
	}
	return cmd
}

func (m *PanelModel) setFocus(f focusArea) tea.Cmd {
	m.focus = f
	m.ticket.Blur()
	m.editor.Blur()
	switch f {
	case focusTicket:
		return m.ticket.Focus()
	case focusEditor:
		return m.editor.Focus()
	}
	return nil
}

// dispatch runs the handler off the update loop; the UI stays responsive meanwhile
func (m *PanelModel) dispatch(label string, e panel.Event) tea.Cmd {
	if m.handler == nil {
		return nil
	}
	if m.busy {
		return m.showBanner("Please wait for the current request to finish.", panel.LevelWarning)
	}

	m.busy = true
	m.busyLabel = label
	m.started = time.Now()

	ctx, h := m.ctx, m.handler
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		return handledMsg{err: h.Handle(ctx, e)}
	})
}

func (m *PanelModel) handleEvent(e panel.Event) tea.Cmd {
	switch ev := e.(type) {
	case panel.CommitResultEvent:
		m.editor.SetValue(ev.Message)
		m.duration = ev.DurationSeconds
		m.hasResult = true
		return m.setFocus(focusEditor)
	case panel.InfoEvent:
		return m.showBanner(ev.Text, ev.Level)
	}
	return nil
}

func (m *PanelModel) showBanner(text string, level panel.Level) tea.Cmd {
	m.bannerSeq++
	id := m.bannerSeq
	m.banner = &banner{id: id, text: text, level: level}
	return tea.Tick(BannerTimeout, func(time.Time) tea.Msg {
		return clearBannerMsg{id: id}
	})
}

// View implements tea.Model
func (m *PanelModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Commit Panel"))
	b.WriteString("\n\n")

	b.WriteString(m.label("Ticket", focusTicket))
	b.WriteString(m.ticket.View())
	b.WriteString("\n")

	b.WriteString(m.label("Type", focusType))
	typeText := fmt.Sprintf("‹ %s ›", m.CommitType().DisplayName())
	if m.focus == focusType {
		typeText = activeStyle.Render(typeText)
	}
	b.WriteString(typeText)
	b.WriteString("\n\n")

	b.WriteString(m.editor.View())
	b.WriteString("\n")

	switch {
	case m.busy:
		elapsed := time.Since(m.started).Round(100 * time.Millisecond)
		b.WriteString(fmt.Sprintf("%s %s %s", m.spinner.View(), m.busyLabel, dimStyle.Render(elapsed.String())))
	case m.hasResult:
		b.WriteString(dimStyle.Render(fmt.Sprintf("Commit message generated in %.2f seconds", m.duration)))
	}
	b.WriteString("\n")

	if m.banner != nil {
		b.WriteString(bannerStyles[m.banner.level].Render(m.banner.text))
	}
	b.WriteString("\n\n")

	b.WriteString(dimStyle.Render("tab focus • ←/→ type • ctrl+g generate • ctrl+s commit • esc quit"))

	return frameStyle.Render(b.String())
}

func (m *PanelModel) label(text string, f focusArea) string {
	if m.focus == f {
		return labelStyle.Foreground(lipgloss.Color("212")).Render(text)
	}
	return labelStyle.Render(text)
}
