package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/kanshi/internal/tui/styles"
)

// View renders the UI
func (m Model) View() string {
	if !m.Ready {
		return "Loading..."
	}

	switch m.State {
	case StateHelp:
		return m.renderHelp()
	case StateConfirmRemove:
		return m.renderRemoveConfirmation()
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")

	switch m.State {
	case StateChecking:
		b.WriteString(m.renderChecking())
	case StateFailed:
		b.WriteString(RenderError(m.Err, m.Width))
		b.WriteString("\n")
		b.WriteString(styles.DimStyle.Render("r to retry, q to quit"))
	case StateReview:
		b.WriteString(styles.SubtitleStyle.Render(m.summary()))
		b.WriteString("\n")
		b.WriteString(m.renderRows())
	}

	body := b.String()
	footer := m.renderFooter()
	gap := m.Height - lipgloss.Height(body) - lipgloss.Height(footer)
	if gap > 0 {
		body += strings.Repeat("\n", gap)
	}
	return body + footer
}

func (m Model) renderHeader() string {
	title := styles.TitleStyle.Render("kanshi")
	route := styles.BadgeStyle.Render(m.From) + styles.DimStyle.Render(" → ") + styles.BadgeStyle.Render(m.To)
	return title + "  " + route
}

func (m Model) renderChecking() string {
	p := m.Checked
	percent := 0.0
	if p.Total > 0 {
		percent = float64(p.Finished) / float64(p.Total)
	}
	line := fmt.Sprintf("%s Checking entries %d/%d", RenderSpinner(m.SpinnerFrame), p.Finished, p.Total)
	return line + "\n" + m.Progress.ViewAs(percent)
}

func (m Model) renderRows() string {
	if len(m.Rows) == 0 {
		return styles.DimStyle.Render("  Every entry already points at " + m.To)
	}

	visible := m.visibleRows()
	end := min(len(m.Rows), m.Offset+visible)

	var lines []string
	for i := m.Offset; i < end; i++ {
		lines = append(lines, RenderRow(m.Rows[i], i == m.Cursor, m.Width))
	}
	return strings.Join(lines, "\n")
}

// RenderRow renders one review row
func RenderRow(r Row, selected bool, width int) string {
	var mark string
	var color lipgloss.Color
	switch r.Kind {
	case RowMapped:
		mark, color = styles.MappedChar, styles.Green
	case RowAmbiguous:
		mark, color = styles.AmbiguousChar, styles.Accent
	default:
		mark, color = styles.UnmappedChar, styles.Red
	}

	list := styles.Pad(r.ListType.String(), 12)
	title := styles.Truncate(r.Entry.GetTitle(), max(10, width/3))
	dim := styles.DimGray

	parts := []styles.RowPart{
		{Text: mark + " ", Foreground: &color},
		{Text: list + " ", Foreground: &dim},
		{Text: styles.Pad(title, max(10, width/3)) + " "},
		{Text: describeTarget(r), Foreground: &color},
	}
	return styles.RenderListRow(parts, selected, width)
}

func describeTarget(r Row) string {
	switch r.Kind {
	case RowMapped:
		return "→ " + r.Candidates[0].String()
	case RowAmbiguous:
		if r.Choice < 0 {
			return fmt.Sprintf("skip (%d candidates, ←/→ to choose)", len(r.Candidates))
		}
		return fmt.Sprintf("→ %s (%d/%d)", r.Candidates[r.Choice], r.Choice+1, len(r.Candidates))
	default:
		return "no mapping"
	}
}

func (m Model) renderFooter() string {
	var status string
	if m.StatusMsg != "" {
		if m.StatusIsErr {
			status = styles.ErrorStyle.Render(m.StatusMsg)
		} else {
			status = styles.SuccessStyle.Render(m.StatusMsg)
		}
	}
	if d, ok := m.History.(undoDescriber); ok && status == "" {
		if desc := d.UndoDescription(); desc != "" {
			status = styles.DimStyle.Render("u: undo " + desc)
		}
	}
	return status + "\n" + m.Help.View(Keys)
}

// undoDescriber is implemented by histories that can label their next undo
type undoDescriber interface {
	UndoDescription() string
}

// renderHelp renders the help screen
func (m Model) renderHelp() string {
	help := `
REVIEW                          LISTS
  j/k        Up/down              m/Enter  Migrate chosen entries
  h/l        Previous/next         x        Remove entries without mapping
             candidate             u        Undo
  Space      Cycle candidate       Ctrl+r   Redo
  g/G        Top/bottom            r        Check again
                                   o        Open page in browser

  Ambiguous entries are skipped until a candidate is chosen.

  Press ? or Esc to close
`

	return lipgloss.Place(m.Width, m.Height,
		lipgloss.Center, lipgloss.Center,
		styles.ModalStyle.Render(help))
}

// renderRemoveConfirmation renders the removal confirmation modal
func (m Model) renderRemoveConfirmation() string {
	n := 0
	for _, entries := range unmappedOf(m.Rows) {
		n += len(entries)
	}
	modal := fmt.Sprintf(`
       Remove %d entries?

  These entries have no mapping on
  %s. Undo with u.

        [Y] Yes      [N] No
`, n, m.To)

	return lipgloss.Place(m.Width, m.Height,
		lipgloss.Center, lipgloss.Center,
		styles.ModalStyle.Render(modal))
}

// wordWrap wraps text to the specified width
func wordWrap(text string, width int) string {
	if width <= 0 {
		return text
	}

	var result strings.Builder
	words := strings.Fields(text)
	lineLen := 0

	for i, word := range words {
		wordLen := len(word)

		if lineLen+wordLen+1 > width && lineLen > 0 {
			result.WriteString("\n")
			lineLen = 0
		}

		if i > 0 && lineLen > 0 {
			result.WriteString(" ")
			lineLen++
		}

		result.WriteString(word)
		lineLen += wordLen
	}

	return result.String()
}

// RenderSpinner renders a loading spinner
func RenderSpinner(frame int) string {
	frames := styles.SpinnerFrames
	return styles.SpinnerStyle.Render(frames[frame%len(frames)])
}

// RenderError renders an error message
func RenderError(err error, width int) string {
	if err == nil {
		return ""
	}
	msg := wordWrap(err.Error(), width-4)
	return styles.ErrorStyle.Render("Error: " + msg)
}
