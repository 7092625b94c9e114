package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"vaultsearch/internal/config"
	"vaultsearch/internal/search"
	"vaultsearch/internal/vault"
)

const (
	fieldQuery = iota
	fieldTitleFilter
	fieldStartDate
	fieldEndDate
	fieldCount
)

var toggleLabels = [...]string{
	"Regex",
	"Case sensitive",
	"Search titles",
	"Search messages",
	"Only with code",
}

const (
	toggleRegex = iota
	toggleCase
	toggleTitles
	toggleMessages
	toggleOnlyCode
)

type formModel struct {
	inputs    [fieldCount]textinput.Model
	toggles   [len(toggleLabels)]bool
	focus     int // 0..fieldCount-1 are inputs, then toggles
	spinner   spinner.Model
	searching bool
	submitted bool
	errMsg    string
}

// searchParams carries the raw form values into the background search.
type searchParams struct {
	Query         string
	TitleFilter   string
	StartDate     string
	EndDate       string
	Regex         bool
	CaseSensitive bool
	SearchTitles  bool
	SearchMsgs    bool
	OnlyWithCode  bool
}

// searchDoneMsg is sent when a background search completes.
type searchDoneMsg struct {
	hits []search.Hit
	err  error
}

func newFormModel() formModel {
	m := formModel{}

	placeholders := [fieldCount]string{
		"Search query...",
		"Filter by conversation title (optional)",
		"Start date YYYY-MM-DD (optional)",
		"End date YYYY-MM-DD (optional)",
	}
	for i := range m.inputs {
		ti := textinput.New()
		ti.Placeholder = placeholders[i]
		ti.CharLimit = 512
		m.inputs[i] = ti
	}

	m.toggles[toggleTitles] = true
	m.toggles[toggleMessages] = true

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = selectedStyle
	m.spinner = sp

	return m
}

func (m *formModel) focusFirst() tea.Cmd {
	m.focus = fieldQuery
	for i := range m.inputs {
		m.inputs[i].Blur()
	}
	return m.inputs[fieldQuery].Focus()
}

func (m formModel) anyFocused() bool {
	for i := range m.inputs {
		if m.inputs[i].Focused() {
			return true
		}
	}
	return false
}

// params snapshots the form into plain values.
func (m formModel) params() searchParams {
	return searchParams{
		Query:         strings.TrimSpace(m.inputs[fieldQuery].Value()),
		TitleFilter:   strings.TrimSpace(m.inputs[fieldTitleFilter].Value()),
		StartDate:     strings.TrimSpace(m.inputs[fieldStartDate].Value()),
		EndDate:       strings.TrimSpace(m.inputs[fieldEndDate].Value()),
		Regex:         m.toggles[toggleRegex],
		CaseSensitive: m.toggles[toggleCase],
		SearchTitles:  m.toggles[toggleTitles],
		SearchMsgs:    m.toggles[toggleMessages],
		OnlyWithCode:  m.toggles[toggleOnlyCode],
	}
}

// runSearch compiles the query and scans the corpus off the UI goroutine.
func runSearch(conversations []vault.Conversation, p searchParams, defaults config.Config) tea.Cmd {
	return func() tea.Msg {
		query, err := search.Compile(p.Query, p.Regex, p.CaseSensitive)
		if err != nil {
			return searchDoneMsg{err: err}
		}

		opts := search.Options{
			Query:          query,
			SearchTitles:   p.SearchTitles,
			SearchMessages: p.SearchMsgs,
			OnlyWithCode:   p.OnlyWithCode,
			Start:          search.ParseDate(p.StartDate),
			End:            search.ParseDate(p.EndDate),
			SnippetLen:     defaults.SnippetLength,
		}
		if p.TitleFilter != "" {
			tf, err := search.Compile(p.TitleFilter, false, false)
			if err != nil {
				return searchDoneMsg{err: err}
			}
			opts.TitleFilter = tf
		}

		hits := search.Search(conversations, opts)
		search.SortHits(hits)
		return searchDoneMsg{hits: hits}
	}
}

func (m formModel) Update(msg tea.Msg) (formModel, tea.Cmd) {
	switch msg := msg.(type) {
	case searchDoneMsg:
		m.searching = false
		if msg.err != nil {
			m.errMsg = msg.err.Error()
		} else {
			m.errMsg = ""
		}
		return m, nil

	case spinner.TickMsg:
		if !m.searching {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.searching {
			return m, nil
		}
		switch msg.String() {
		case "tab", "down":
			return m.moveFocus(1)
		case "shift+tab", "up":
			return m.moveFocus(-1)
		case " ":
			if m.focus >= fieldCount {
				m.toggles[m.focus-fieldCount] = !m.toggles[m.focus-fieldCount]
				return m, nil
			}
		case "enter":
			m.submitted = true
			return m, nil
		}
	}

	if m.focus < fieldCount {
		var cmd tea.Cmd
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m formModel) moveFocus(delta int) (formModel, tea.Cmd) {
	total := fieldCount + len(toggleLabels)
	m.focus = (m.focus + delta + total) % total

	var cmd tea.Cmd
	for i := range m.inputs {
		if i == m.focus {
			cmd = m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
	return m, cmd
}

func (m formModel) View(width int) string {
	s := "\n"
	s += titleStyle.Render("  ◆ Search") + "\n\n"

	labels := [fieldCount]string{"Query", "Title filter", "Start date", "End date"}
	for i := range m.inputs {
		s += labelStyle.Render(fmt.Sprintf("  %-13s", labels[i])) + m.inputs[i].View() + "\n"
	}
	s += "\n"

	for i, label := range toggleLabels {
		mark := "[ ]"
		if m.toggles[i] {
			mark = "[x]"
		}
		line := fmt.Sprintf("  %s %s", mark, label)
		if m.focus == fieldCount+i {
			s += selectedStyle.Render(line) + "\n"
		} else {
			s += listItemStyle.Render(line) + "\n"
		}
	}
	s += "\n"

	switch {
	case m.searching:
		s += fmt.Sprintf("  %s Scanning conversations...\n", m.spinner.View())
	case m.errMsg != "":
		s += errorStyle.Render("  ✗ "+m.errMsg) + "\n"
	default:
		s += dimStyle.Render("  Enter search · tab next field · space toggle") + "\n"
	}

	s += "\n" + helpStyle.Render("  ctrl+c quit") + "\n"
	return s
}
