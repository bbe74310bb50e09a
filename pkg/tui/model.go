package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/aretw0/capsule/pkg/core"
)

// RefreshInterval is how often the list is re-evaluated so capsules unlock
// on screen without any user action.
const RefreshInterval = time.Minute

// UnreadableDateNotice is shown when a capsule was saved with a date that is
// not YYYY-MM-DD; such a capsule never unlocks.
const UnreadableDateNotice = "Unlock date %q is not YYYY-MM-DD; this capsule will stay locked."

type focus int

const (
	focusMessage focus = iota
	focusDate
	focusList
)

// tickMsg re-renders the list against the current time.
type tickMsg time.Time

// ReloadMsg tells the model that the collection was reloaded from storage.
type ReloadMsg struct {
	Event core.Event
}

// Options configures the model.
type Options struct {
	// Now replaces time.Now, for tests.
	Now func() time.Time
	// DateLayout renders unlock and creation dates. Defaults to core.DefaultDateLayout.
	DateLayout string
	// Location of rendered creation dates. Defaults to time.Local.
	Location *time.Location
	Styles   *Styles
}

// Model is the bubbletea model of the capsule screen.
type Model struct {
	ctx     context.Context
	svc     *core.Service
	now     func() time.Time
	layout  string
	loc     *time.Location
	styles  Styles
	message textarea.Model
	date    textinput.Model
	focus   focus
	cursor  int
	alert   string
	notice  string
	width   int
}

// New creates the model over svc.
func New(ctx context.Context, svc *core.Service, opts Options) Model {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.DateLayout == "" {
		opts.DateLayout = core.DefaultDateLayout
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	styles := DefaultStyles()
	if opts.Styles != nil {
		styles = *opts.Styles
	}

	ta := textarea.New()
	ta.Placeholder = "Write a message to your future self"
	ta.ShowLineNumbers = false
	ta.SetWidth(60)
	ta.SetHeight(3)
	ta.CharLimit = 2000
	ta.Focus()

	ti := textinput.New()
	ti.Placeholder = "YYYY-MM-DD"
	ti.Prompt = "Unlock date: "
	ti.CharLimit = 25
	ti.Width = 25

	return Model{
		ctx:     ctx,
		svc:     svc,
		now:     opts.Now,
		layout:  opts.DateLayout,
		loc:     opts.Location,
		styles:  styles,
		message: ta,
		date:    ti,
		focus:   focusMessage,
	}
}

func tick() tea.Cmd {
	return tea.Tick(RefreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, tick())
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		if msg.Width > 8 {
			m.message.SetWidth(min(msg.Width-4, 80))
		}
		return m, nil

	case tickMsg:
		// Nothing is cached; returning re-renders against the current time.
		return m, tick()

	case ReloadMsg:
		m.clampCursor()
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.alert != "" {
			return m.updateAlert(msg)
		}
		return m.updateKey(msg)
	}

	return m.updateInputs(msg)
}

// updateAlert swallows every key until the alert is acknowledged.
func (m Model) updateAlert(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc", " ":
		m.alert = ""
	}
	return m, nil
}

func (m Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab":
		return m.setFocus((m.focus + 1) % 3), nil
	case "shift+tab":
		return m.setFocus((m.focus + 2) % 3), nil
	case "ctrl+s":
		return m.add(), nil
	}

	switch m.focus {
	case focusDate:
		if msg.String() == "enter" {
			return m.add(), nil
		}
		if msg.String() == "esc" {
			return m.setFocus(focusList), nil
		}
	case focusMessage:
		if msg.String() == "esc" {
			return m.setFocus(focusList), nil
		}
	case focusList:
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < m.svc.Len()-1 {
				m.cursor++
			}
		case "d", "delete", "backspace":
			m = m.deleteSelected()
		case "q", "esc":
			return m, tea.Quit
		}
		return m, nil
	}

	return m.updateInputs(msg)
}

func (m Model) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.focus {
	case focusMessage:
		m.message, cmd = m.message.Update(msg)
	case focusDate:
		m.date, cmd = m.date.Update(msg)
	}
	return m, cmd
}

func (m Model) setFocus(f focus) Model {
	m.focus = f
	m.message.Blur()
	m.date.Blur()
	switch f {
	case focusMessage:
		m.message.Focus()
	case focusDate:
		m.date.Focus()
	}
	return m
}

// add submits the pending input. Validation failures raise the blocking alert.
func (m Model) add() Model {
	c, err := m.svc.Add(m.ctx, m.message.Value(), m.date.Value())
	if errors.Is(err, core.ErrValidation) {
		m.alert = core.ValidationAlert
		return m
	}
	if err != nil {
		m.alert = err.Error()
		return m
	}

	m.message.Reset()
	m.date.Reset()
	m.refreshNotice()
	if m.notice == "" {
		if _, err := core.ParseUnlockDate(c.UnlockDate); err != nil {
			m.notice = fmt.Sprintf(UnreadableDateNotice, c.UnlockDate)
		}
	}
	return m
}

// deleteSelected removes the capsule under the cursor if it is unlocked.
func (m Model) deleteSelected() Model {
	views := m.svc.Views(m.now())
	if m.cursor < 0 || m.cursor >= len(views) || !views[m.cursor].Deletable {
		return m
	}
	if err := m.svc.DeleteByID(m.ctx, views[m.cursor].ID); err != nil {
		m.notice = err.Error()
		return m
	}
	m.clampCursor()
	m.refreshNotice()
	return m
}

func (m *Model) refreshNotice() {
	if err := m.svc.LastPersistError(); err != nil {
		m.notice = fmt.Sprintf("Changes are kept for this session only: %v", err)
		return
	}
	m.notice = ""
}

func (m *Model) clampCursor() {
	n := m.svc.Len()
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.styles.Title.Render(core.TitleText))
	b.WriteString("\n")

	if m.alert != "" {
		b.WriteString(m.styles.Alert.Render(m.alert + "\n\n" + m.styles.Muted.Render("Press Enter to continue")))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(m.message.View())
	b.WriteString("\n")
	b.WriteString(m.date.View())
	b.WriteString("\n")
	b.WriteString(m.styles.Button.Render("[ Add Capsule ]") + m.styles.Muted.Render("  ctrl+s"))
	b.WriteString("\n")

	if m.notice != "" {
		b.WriteString(m.styles.Notice.Render(m.notice))
		b.WriteString("\n")
	}

	b.WriteString(m.styles.Heading.Render(core.ListHeadingText))
	b.WriteString("\n")

	views := m.svc.Views(m.now())
	if len(views) == 0 {
		b.WriteString(m.styles.Empty.Render(core.EmptyStateText))
		b.WriteString("\n")
	}
	for _, v := range views {
		b.WriteString(m.renderCapsule(v))
		b.WriteString("\n")
	}

	b.WriteString(m.styles.Help.Render("tab: switch field • ↑/↓: select • d: delete unlocked • q: quit"))
	return b.String()
}

func (m Model) renderCapsule(v core.View) string {
	var lines []string
	if v.State == core.Unlocked {
		lines = append(lines, m.styles.Unlocked.Render(v.Message))
	} else {
		lines = append(lines, m.styles.Locked.Render(core.LockedPlaceholder))
	}
	lines = append(lines,
		m.styles.Label.Render("Unlock: ")+core.FormatUnlockDate(v, m.layout),
		m.styles.Label.Render("Created: ")+core.FormatCreatedAt(v, m.layout, m.loc),
	)
	if v.Deletable {
		lines = append(lines, m.styles.Button.Render("[d] Delete"))
	}

	card := m.styles.Card
	if m.focus == focusList && v.Index == m.cursor {
		card = card.BorderForeground(accent)
		return m.styles.Selected.Render("> ") + card.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
	}
	return "  " + card.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
