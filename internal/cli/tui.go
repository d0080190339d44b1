package cli

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/bountyhub/bountyhub/pkg/integrations/github"
)

// List styles
var (
	listDimStyle = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// RepoListModel - Interactive repository selection
// =============================================================================

// RepoSelection holds the result of the repo selection.
type RepoSelection struct {
	Repo *github.Repo
}

// RepoListModel is the bubbletea model for picking one of the user's
// admin repositories, e.g. to install the bounty webhook on it.
type RepoListModel struct {
	Repos    []github.Repo
	Watched  map[string]bool // full name -> already carries the webhook
	Cursor   int
	Selected *RepoSelection
	Height   int
	Offset   int
}

// NewRepoListModel creates a new repo list model. watched may be nil
// when the webhook status is unknown.
func NewRepoListModel(repos []github.Repo, watched map[string]bool) RepoListModel {
	return RepoListModel{
		Repos:   repos,
		Watched: watched,
		Cursor:  0,
		Height:  15,
		Offset:  0,
	}
}

func (m RepoListModel) Init() tea.Cmd {
	return nil
}

func (m RepoListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Repos)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			repo := m.Repos[m.Cursor]
			m.Selected = &RepoSelection{Repo: &repo}
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m RepoListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Repository"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Repos) {
		end = len(m.Repos)
	}

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		r := m.Repos[i]

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		visibility := "public"
		if r.Private {
			visibility = "private"
		}

		watched := ""
		if m.Watched[r.FullName] {
			watched = "✓"
		}

		updated := formatRelativeTime(r.UpdatedAt)
		rows = append(rows, []string{cursor, r.FullName, visibility, watched, updated})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Repository", "Visibility", "Watched", "Updated").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}

			actualIdx := m.Offset + row
			if actualIdx >= len(m.Repos) {
				return lipgloss.NewStyle()
			}
			isCurrent := actualIdx == m.Cursor

			base := lipgloss.NewStyle()
			if col == 2 || col == 4 {
				base = base.Foreground(colorDim)
			}
			if col == 3 {
				base = base.Foreground(colorGreen)
			}
			if isCurrent {
				if col == 1 {
					return base.Foreground(colorCyan).Bold(true)
				}
				return base.Bold(true)
			}
			if col == 1 {
				return base.Foreground(colorWhite)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Repos))))

	return b.String()
}

// =============================================================================
// Helpers
// =============================================================================

func formatRelativeTime(s string) string {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return s
	}

	now := time.Now()
	diff := now.Sub(t)

	switch {
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}
