package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"vaultsearch/internal/codefiles"
	"vaultsearch/internal/config"
	"vaultsearch/internal/report"
	"vaultsearch/internal/search"
)

const listWidth = 44

type resultsModel struct {
	hits     []search.Hit
	cursor   int
	preview  viewport.Model
	renderer *glamour.TermRenderer
	defaults config.Config
	status   string
	width    int
	height   int
}

// previewMsg carries the rendered Markdown for the selected hit.
type previewMsg struct {
	index   int
	content string
}

// exportDoneMsg is sent when writing the result file completes.
type exportDoneMsg struct {
	path string
	err  error
}

// extractDoneMsg is sent when code extraction completes.
type extractDoneMsg struct {
	count int
	dir   string
	err   error
}

func newResultsModel(hits []search.Hit, defaults config.Config) resultsModel {
	return resultsModel{
		hits:     hits,
		defaults: defaults,
		status:   fmt.Sprintf("Found %d match(es)", len(hits)),
	}
}

func (m *resultsModel) resize(width, height int) {
	m.width = width
	m.height = height

	previewWidth := width - listWidth - 3
	if previewWidth < 20 {
		previewWidth = 20
	}
	previewHeight := height - 4
	if previewHeight < 5 {
		previewHeight = 5
	}
	m.preview = viewport.New(previewWidth, previewHeight)

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(previewWidth-2),
	)
	if err == nil {
		m.renderer = r
	}
}

// renderPreview renders the selected hit's Markdown in the background;
// glamour rendering of a large message is too slow for the update loop.
func (m resultsModel) renderPreview() tea.Cmd {
	if len(m.hits) == 0 {
		return nil
	}
	idx := m.cursor
	hit := m.hits[idx]
	renderer := m.renderer
	return func() tea.Msg {
		md := report.RenderHit(hit)
		if renderer == nil {
			return previewMsg{index: idx, content: md}
		}
		out, err := renderer.Render(md)
		if err != nil {
			return previewMsg{index: idx, content: md}
		}
		return previewMsg{index: idx, content: out}
	}
}

func exportHits(hits []search.Hit, defaults config.Config) tea.Cmd {
	return func() tea.Msg {
		format, err := report.ParseFormat(defaults.ExportFormat)
		if err != nil {
			return exportDoneMsg{err: err}
		}
		path := "results." + string(format)
		if err := report.WriteFile(hits, path, format); err != nil {
			return exportDoneMsg{err: err}
		}
		return exportDoneMsg{path: path}
	}
}

func extractCode(hits []search.Hit, dir string) tea.Cmd {
	return func() tea.Msg {
		count, err := codefiles.Extract(hits, dir)
		return extractDoneMsg{count: count, dir: dir, err: err}
	}
}

func (m resultsModel) Update(msg tea.Msg) (resultsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case previewMsg:
		if msg.index == m.cursor {
			m.preview.SetContent(msg.content)
			m.preview.GotoTop()
		}
		return m, nil

	case exportDoneMsg:
		if msg.err != nil {
			m.status = "Export failed: " + msg.err.Error()
		} else {
			m.status = "Exported results to " + msg.path
		}
		return m, nil

	case extractDoneMsg:
		if msg.err != nil {
			m.status = "Extraction failed: " + msg.err.Error()
		} else {
			m.status = fmt.Sprintf("Extracted %d code block file(s) into %s", msg.count, msg.dir)
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				return m, m.renderPreview()
			}
		case "down", "j":
			if m.cursor < len(m.hits)-1 {
				m.cursor++
				return m, m.renderPreview()
			}
		case "pgup", "pgdown", "ctrl+u", "ctrl+d":
			var cmd tea.Cmd
			m.preview, cmd = m.preview.Update(msg)
			return m, cmd
		case "e":
			if len(m.hits) > 0 {
				m.status = "Exporting..."
				return m, exportHits(m.hits, m.defaults)
			}
		case "x":
			if len(m.hits) > 0 {
				m.status = "Extracting code blocks..."
				return m, extractCode(m.hits, m.defaults.CodeDir)
			}
		}
	}
	return m, nil
}

func (m resultsModel) View() string {
	if len(m.hits) == 0 {
		s := "\n" + titleStyle.Render("  ◆ Results") + "\n\n"
		s += dimStyle.Render("  No matches.") + "\n\n"
		s += helpStyle.Render("  / new search · q quit") + "\n"
		return s
	}

	listHeight := m.height - 4
	if listHeight < 5 {
		listHeight = 5
	}

	// Keep the cursor visible inside the window.
	top := 0
	if m.cursor >= listHeight {
		top = m.cursor - listHeight + 1
	}

	var list strings.Builder
	for i := top; i < len(m.hits) && i < top+listHeight; i++ {
		h := m.hits[i]
		when := h.MessageTime
		if when == "" {
			when = h.ConversationCreateTime
		}
		if when == "" {
			when = "unknown-time"
		}
		title := h.ConversationTitle
		if title == "" {
			title = "Untitled"
		}
		line := truncate(fmt.Sprintf("%s  %s", title, when), listWidth-4)
		if i == m.cursor {
			list.WriteString(selectedStyle.Render("› "+line) + "\n")
		} else {
			list.WriteString(listItemStyle.Render("  "+line) + "\n")
		}
	}

	left := lipgloss.NewStyle().Width(listWidth).Render(list.String())
	body := lipgloss.JoinHorizontal(lipgloss.Top, left, " ", m.preview.View())

	bar := statusBarStyle.Width(m.width).Render(m.status)
	help := helpStyle.Render("  j/k select · e export · x extract code · / new search · q quit")

	return body + "\n" + bar + "\n" + help
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if max <= 1 || len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
