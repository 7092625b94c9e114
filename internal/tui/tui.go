// Package tui is the interactive front end: pick an export, fill in a
// search form, browse hits with a rendered preview, and export or extract
// from the result set. Loading and searching run as background commands so
// the interface stays responsive on large exports.
package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"vaultsearch/internal/config"
	"vaultsearch/internal/vault"
)

// ViewState represents which screen is active.
type ViewState int

const (
	ViewPicker ViewState = iota
	ViewForm
	ViewResults
)

// Config holds configuration passed from the CLI layer.
type Config struct {
	// Input optionally preselects the export path; the picker loads it
	// immediately on startup.
	Input string
	// Defaults come from the config file.
	Defaults config.Config
}

// Model is the top-level Bubble Tea model.
type Model struct {
	state  ViewState
	config Config
	width  int
	height int

	conversations []vault.Conversation

	picker  pickerModel
	form    formModel
	results resultsModel
}

// New creates a new TUI model with the given config.
func New(cfg Config) Model {
	return Model{
		state:  ViewPicker,
		config: cfg,
		picker: newPickerModel(cfg.Input),
		form:   newFormModel(),
	}
}

func (m Model) Init() tea.Cmd {
	if m.config.Input != "" {
		return tea.Batch(loadVault(m.config.Input), m.picker.spinner.Tick)
	}
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.results.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

	case loadDoneMsg:
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)
		if msg.err == nil {
			m.conversations = msg.conversations
			m.state = ViewForm
			return m, m.form.focusFirst()
		}
		return m, cmd

	case searchDoneMsg:
		var cmd tea.Cmd
		m.form, cmd = m.form.Update(msg)
		if msg.err == nil {
			m.results = newResultsModel(msg.hits, m.config.Defaults)
			m.results.resize(m.width, m.height)
			m.state = ViewResults
			return m, m.results.renderPreview()
		}
		return m, cmd
	}

	var cmd tea.Cmd
	switch m.state {
	case ViewPicker:
		m.picker, cmd = m.picker.Update(msg)

	case ViewForm:
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.String() == "q" && !m.form.anyFocused() {
			return m, tea.Quit
		}
		m.form, cmd = m.form.Update(msg)
		if m.form.submitted {
			m.form.submitted = false
			m.form.searching = true
			return m, tea.Batch(
				m.form.spinner.Tick,
				runSearch(m.conversations, m.form.params(), m.config.Defaults),
			)
		}

	case ViewResults:
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			switch keyMsg.String() {
			case "q":
				return m, tea.Quit
			case "/", "esc":
				m.state = ViewForm
				return m, m.form.focusFirst()
			}
		}
		m.results, cmd = m.results.Update(msg)
	}

	return m, cmd
}

func (m Model) View() string {
	switch m.state {
	case ViewPicker:
		return m.picker.View(m.width)
	case ViewForm:
		return m.form.View(m.width)
	case ViewResults:
		return m.results.View()
	}
	return ""
}

// Run starts the TUI program.
func Run(cfg Config) error {
	p := tea.NewProgram(New(cfg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
