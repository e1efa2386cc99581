// Package tui provides the interactive arbitration panel.
//
// The panel polls the pending-decision queue every 500ms and presents
// one conflict at a time. Ingestion keeps running while the reviewer
// decides; the queue absorbs new conflicts in the background.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"qbank/internal/adapters/driving/tui/styles"
	"qbank/internal/core/domain"
	"qbank/internal/core/ports/driving"
)

// pollInterval is how often the panel checks the queue for work.
const pollInterval = 500 * time.Millisecond

// tickMsg triggers a queue poll.
type tickMsg time.Time

// keyMap defines the keybindings for the arbitration panel.
type keyMap struct {
	Adopt   key.Binding
	Replace key.Binding
	Both    key.Binding
	Discard key.Binding
	Quit    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Adopt: key.NewBinding(
			key.WithKeys("1", "a"),
			key.WithHelp("1", "adopt existing"),
		),
		Replace: key.NewBinding(
			key.WithKeys("2", "r"),
			key.WithHelp("2", "replace"),
		),
		Both: key.NewBinding(
			key.WithKeys("3", "b"),
			key.WithHelp("3", "keep both"),
		),
		Discard: key.NewBinding(
			key.WithKeys("4", "d"),
			key.WithHelp("4", "discard"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k keyMap) helpLine() string {
	bindings := []key.Binding{k.Adopt, k.Replace, k.Both, k.Discard, k.Quit}
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		parts = append(parts, b.Help().Key+" "+b.Help().Desc)
	}
	return strings.Join(parts, " · ")
}

// ReviewModel is the bubbletea model for the arbitration panel.
type ReviewModel struct {
	arbiter   driving.Arbiter
	librarian driving.Librarian
	styles    *styles.Styles
	keys      keyMap

	current  *domain.PendingDecision
	existing domain.Question
	status   string
	resolved int
	width    int
	quitting bool
}

// NewReview creates the arbitration panel model.
func NewReview(arbiter driving.Arbiter, librarian driving.Librarian) *ReviewModel {
	return &ReviewModel{
		arbiter:   arbiter,
		librarian: librarian,
		styles:    styles.DefaultStyles(),
		keys:      defaultKeyMap(),
		width:     80,
	}
}

// Init starts the poll loop.
func (m *ReviewModel) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(pollInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles messages for the panel.
func (m *ReviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tickMsg:
		if m.current == nil {
			m.pollNext()
		}
		return m, tick()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

// pollNext takes the oldest decision off the queue and loads the
// matched question for display.
func (m *ReviewModel) pollNext() {
	d, ok := m.arbiter.Poll()
	if !ok {
		return
	}

	existing, err := m.librarian.Get(context.Background(), d.MatchID)
	if err != nil || existing.Superseded {
		// Stale before it was even shown; drop it silently.
		m.status = m.styles.Warning.Render(fmt.Sprintf("Skipped stale decision %s", shortID(d.ID)))
		return
	}

	m.current = &d
	m.existing = existing
}

func (m *ReviewModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		m.quitting = true
		return m, tea.Quit
	}

	if m.current == nil {
		return m, nil
	}

	var resolution domain.Resolution
	switch {
	case key.Matches(msg, m.keys.Adopt):
		resolution = domain.ResolutionAdoptExisting
	case key.Matches(msg, m.keys.Replace):
		resolution = domain.ResolutionReplace
	case key.Matches(msg, m.keys.Both):
		resolution = domain.ResolutionKeepBoth
	case key.Matches(msg, m.keys.Discard):
		resolution = domain.ResolutionDiscard
	default:
		return m, nil
	}

	m.resolve(resolution)
	return m, nil
}

func (m *ReviewModel) resolve(r domain.Resolution) {
	d := *m.current
	m.current = nil

	result, err := m.arbiter.Resolve(context.Background(), d, r)
	switch {
	case errors.Is(err, domain.ErrStaleDecision):
		m.status = m.styles.Warning.Render(fmt.Sprintf("Decision %s went stale, candidate dropped", shortID(d.ID)))
	case err != nil:
		m.status = m.styles.Error.Render(fmt.Sprintf("Resolve failed: %v", err))
	case r == domain.ResolutionDiscard:
		m.resolved++
		m.status = m.styles.Muted.Render("Candidate discarded")
	default:
		m.resolved++
		m.status = m.styles.Success.Render(fmt.Sprintf("%s (question %d)", r.Description(), result.ID))
	}
}

// View renders the panel.
func (m *ReviewModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Arbitration"))
	b.WriteString("\n\n")

	if m.current == nil {
		b.WriteString(m.styles.Muted.Render(fmt.Sprintf(
			"Waiting for conflicts... %d pending, %d resolved this session", len(m.arbiter.Pending()), m.resolved)))
		b.WriteString("\n")
	} else {
		b.WriteString(m.renderConflict())
	}

	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(m.status)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.styles.Help.Render(m.keys.helpLine()))
	b.WriteString("\n")
	return b.String()
}

func (m *ReviewModel) renderConflict() string {
	d := m.current

	var b strings.Builder
	b.WriteString(m.styles.Warning.Render(fmt.Sprintf("Similar question found (score %.2f)", d.Score)))
	b.WriteString("\n\n")

	b.WriteString(m.styles.Subtitle.Render(fmt.Sprintf("Existing #%d", m.existing.ID)))
	b.WriteString("\n")
	b.WriteString(m.styles.Panel.Width(m.width - 4).Render(renderQuestion(m.existing.Text, m.existing.Options, m.styles)))
	b.WriteString("\n\n")

	b.WriteString(m.styles.Subtitle.Render("Candidate"))
	if d.Candidate.Source != "" {
		b.WriteString(m.styles.Muted.Render("  " + d.Candidate.Source))
	}
	b.WriteString("\n")
	b.WriteString(m.styles.Panel.Width(m.width - 4).Render(renderQuestion(d.Candidate.Text, d.Candidate.Options, m.styles)))
	b.WriteString("\n")
	return b.String()
}

func renderQuestion(text string, options map[string]string, s *styles.Styles) string {
	var b strings.Builder
	b.WriteString(s.Normal.Render(text))
	b.WriteString("\n")
	for _, label := range sortedLabels(options) {
		b.WriteString(s.Muted.Render(fmt.Sprintf("%s. %s", label, options[label])))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func sortedLabels(options map[string]string) []string {
	q := domain.Question{Options: options}
	return q.OptionLabels()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
