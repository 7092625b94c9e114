package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"vaultsearch/internal/vault"
)

type pickerModel struct {
	input   textinput.Model
	spinner spinner.Model
	loading bool
	err     error
}

// loadDoneMsg is sent when loading the export completes.
type loadDoneMsg struct {
	conversations []vault.Conversation
	err           error
}

// loadVault reads the export in the background so the UI keeps ticking.
func loadVault(path string) tea.Cmd {
	return func() tea.Msg {
		conversations, err := vault.Load(path)
		return loadDoneMsg{conversations: conversations, err: err}
	}
}

func newPickerModel(initial string) pickerModel {
	ti := textinput.New()
	ti.Placeholder = "Path to export ZIP, folder, or conversations.json"
	ti.CharLimit = 512
	ti.SetValue(initial)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = selectedStyle

	m := pickerModel{input: ti, spinner: sp}
	if initial != "" {
		// The top-level Init starts the load immediately.
		m.loading = true
	} else {
		m.input.Focus()
	}
	return m
}

func (m pickerModel) Update(msg tea.Msg) (pickerModel, tea.Cmd) {
	switch msg := msg.(type) {
	case loadDoneMsg:
		m.loading = false
		m.err = msg.err
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.Type == tea.KeyEnter && !m.loading {
			path := strings.TrimSpace(m.input.Value())
			if path == "" {
				return m, nil
			}
			m.loading = true
			m.err = nil
			return m, tea.Batch(loadVault(path), m.spinner.Tick)
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m pickerModel) View(width int) string {
	s := "\n"
	s += titleStyle.Render("  ◆ Vault Search") + "\n"
	s += subtitleStyle.Render("  Recover and search a ChatGPT data export") + "\n\n"

	s += labelStyle.Render("  Export path:") + "\n"
	s += "  " + m.input.View() + "\n\n"

	switch {
	case m.loading:
		s += fmt.Sprintf("  %s Loading export...\n", m.spinner.View())
	case m.err != nil:
		s += errorStyle.Render("  ✗ "+m.err.Error()) + "\n"
	default:
		s += dimStyle.Render("  Press Enter to load") + "\n"
	}

	s += "\n" + helpStyle.Render("  ctrl+c quit") + "\n"
	return s
}
