package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/blackwell-systems/minerva/internal/catalog"
	"github.com/blackwell-systems/minerva/internal/provider"
)

func (m BrowserModel) View() string {
	if m.quitting {
		return ""
	}

	outerStyle := lipgloss.NewStyle().Padding(2, 4)
	masterStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorTeal).
		Padding(0)

	innerWidth := 60
	if m.width > 0 && m.height > 0 {
		innerWidth = max(m.width-4*2-2, 60)
		innerHeight := max(m.height-2*2-2, 10)
		masterStyle = masterStyle.Width(innerWidth).Height(innerHeight)
	}

	var main string
	switch m.mode {
	case modeLookup, modeResults:
		main = m.renderLookup()
	case modeAddForm:
		main = m.form.view()
	default:
		main = m.renderLibrary()
	}

	divider := lipgloss.NewStyle().
		Foreground(ColorTeal).
		Render(strings.Repeat("─", innerWidth))

	content := lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		main,
		divider,
		m.renderStatus(),
		m.renderFooter(),
	)
	return outerStyle.Render(masterStyle.Render(content))
}

func (m BrowserModel) renderHeader() string {
	title := StyleHeader.Render("minerva")
	scope := StyleFlag.Render(m.books.Scope().String())
	count := StyleHelp.Render(fmt.Sprintf("%d of %d", m.books.ViewLen(), m.books.Len()))

	line := title + "  " + scope + "  " + count
	switch {
	case m.mode == modeFilter:
		line += "  " + m.filter.View()
	case m.books.Filter() != "":
		line += "  " + StyleHighlight.Render("/"+m.books.Filter())
	}
	return lipgloss.NewStyle().Padding(0, 1).Render(line)
}

func (m BrowserModel) renderLibrary() string {
	var listView string
	if len(m.rows.Items()) == 0 {
		listView = StyleHelp.Render("  No books. Press a to look one up or n to add one by hand.")
	} else {
		listView = m.rows.View()
	}
	if !m.showDetails() {
		return listView
	}
	listStyle := lipgloss.NewStyle().
		BorderRight(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ColorTeal)
	return lipgloss.JoinHorizontal(lipgloss.Top, listStyle.Render(listView), m.renderDetailsPane())
}

func (m BrowserModel) detailsWidth() int {
	return max((m.width-2)*4/10, 30)
}

func (m BrowserModel) renderDetailsPane() string {
	b, ok := m.selected()
	if !ok {
		return ""
	}
	width := m.detailsWidth()
	const labelWidth = 10
	maxText := max(width-2-labelWidth, 10)

	var s strings.Builder
	if path, ok := m.covers[b.ISBN]; ok && b.ISBN != "" {
		if img := RenderCover(path, m.protocol, width/2); img != "" {
			s.WriteString(img)
			s.WriteString("\n\n")
		}
	}

	s.WriteString(StyleHeader.Render("Book Details"))
	s.WriteString("\n\n")
	writeDetail(&s, "Title: ", b.Title, maxText)
	writeDetail(&s, "Author: ", b.Author, maxText)
	if b.ISBN != "" {
		writeDetail(&s, "ISBN: ", b.ISBN, maxText)
	}
	if b.Location != "" {
		writeDetail(&s, "Location: ", b.Location, maxText)
	}
	s.WriteString(StyleHighlight.Render("Flags: "))
	s.WriteString(flagPills(b))
	s.WriteString("\n")

	return lipgloss.NewStyle().Width(width).Padding(0, 1).Render(s.String())
}

func writeDetail(s *strings.Builder, label, value string, width int) {
	s.WriteString(StyleHighlight.Render(label))
	s.WriteString(padOrTruncate(value, min(width, lipgloss.Width(value))))
	s.WriteString("\n\n")
}

func flagPills(b catalog.Book) string {
	pill := lipgloss.NewStyle().
		Background(ColorTealDim).Foreground(ColorTealLight).
		Padding(0, 1)
	var parts []string
	if b.Own {
		parts = append(parts, pill.Render("own"))
	}
	if b.Want {
		parts = append(parts, pill.Render("want"))
	}
	if b.Read {
		parts = append(parts, pill.Render("read"))
	}
	if len(parts) == 0 {
		return StyleHelp.Render("none")
	}
	return strings.Join(parts, " ")
}

func (m BrowserModel) renderLookup() string {
	var s strings.Builder
	s.WriteString(StyleHeader.Render("Look up a book"))
	s.WriteString("\n\n")

	for i, f := range lookupFields {
		label := " " + string(f) + " "
		if i == m.field {
			s.WriteString(lipgloss.NewStyle().Background(ColorOrange).Foreground(lipgloss.Color("#ffffff")).Render(label))
		} else {
			s.WriteString(StyleHelp.Render(label))
		}
		s.WriteString(" ")
	}
	s.WriteString("\n\n")
	s.WriteString(m.query.View())
	s.WriteString("\n\n")

	if m.busy {
		s.WriteString(StyleHelp.Render(m.pending))
		s.WriteString("\n")
	}
	if m.mode != modeResults {
		return lipgloss.NewStyle().Padding(0, 1).Render(s.String())
	}

	fmt.Fprintf(&s, "%s\n\n", StyleHelp.Render(fmt.Sprintf("%d found, showing %d", m.result.NumFound, len(m.result.Entries))))
	for i, e := range m.result.Entries {
		s.WriteString(renderEntryRow(e, i == m.cursor, m.width-20))
		s.WriteString("\n")
	}

	results := lipgloss.NewStyle().Padding(0, 1).Render(s.String())
	e, ok := m.selectedEntry()
	if !ok {
		return results
	}
	if path, ok := m.covers[e.ISBN()]; ok {
		if img := RenderCover(path, m.protocol, 20); img != "" {
			return lipgloss.JoinHorizontal(lipgloss.Top, results, "  "+img)
		}
	}
	return results
}

func renderEntryRow(e provider.Entry, isCursor bool, width int) string {
	width = max(width, 30)
	titleW := width * 55 / 100
	authorW := width - titleW - 16
	line := padOrTruncate(e.Title, titleW) + " " + padOrTruncate(e.Author, max(authorW, 8)) + " " + padOrTruncate(e.ISBN(), 13)
	if isCursor {
		return lipgloss.NewStyle().Foreground(ColorOrange).Render("›") + " " + StyleHighlight.Render(line)
	}
	return "  " + StyleNormal.Render(line)
}

// renderStatus shows errors, confirmations, or the highlighted book.
func (m BrowserModel) renderStatus() string {
	style := lipgloss.NewStyle().Padding(0, 1)
	switch {
	case m.errMsg != "":
		return style.Render(StyleError.Render(m.errMsg))
	case m.mode == modeConfirmDelete:
		b, _ := m.selected()
		return style.Render(StyleHighlight.Render(fmt.Sprintf("Delete %q? ", b.Title)) + StyleHelp.Render("y/N"))
	case m.mode == modeEditLocation:
		return style.Render(StyleHighlight.Render("Location ") + m.location.View())
	case m.mode == modeAddForm:
		if m.form.err != nil {
			return style.Render(StyleError.Render(m.form.err.Error()))
		}
	}
	if m.status != "" && m.mode == modeBrowse {
		return style.Render(StyleOwned.Render(m.status) + "  " + StyleHelp.Render(selectionText(m)))
	}
	return style.Render(StyleHelp.Render(selectionText(m)))
}

// selectionText is the status line for the highlighted book:
// "<title>" by <author>.
func selectionText(m BrowserModel) string {
	b, ok := m.selected()
	if !ok {
		return ""
	}
	return fmt.Sprintf("%q by %s", b.Title, b.Author)
}

func (m BrowserModel) renderFooter() string {
	switch m.mode {
	case modeLookup:
		return RenderFooterBar([]ShortcutEntry{
			{Key: "tab", Label: "tab field"},
			{Key: "", Label: "enter search"},
			{Key: "", Label: "esc back"},
		}, m.activeCmd)
	case modeResults:
		return RenderFooterBar([]ShortcutEntry{
			{Key: "", Label: "↑/↓ navigate"},
			{Key: "", Label: "enter add"},
			{Key: "c", Label: "c cover"},
			{Key: "", Label: "esc back"},
		}, m.activeCmd)
	case modeAddForm:
		return RenderFooterBar([]ShortcutEntry{
			{Key: "tab", Label: "tab/↑↓ navigate"},
			{Key: "", Label: "enter next/submit"},
			{Key: "", Label: "esc cancel"},
		}, m.activeCmd)
	case modeFilter, modeEditLocation:
		return RenderFooterBar([]ShortcutEntry{
			{Key: "", Label: "enter done"},
			{Key: "", Label: "esc cancel"},
		}, m.activeCmd)
	}
	return RenderFooterBar([]ShortcutEntry{
		{Key: "", Label: "↑/↓ navigate"},
		{Key: "/", Label: "/ filter"},
		{Key: "tab", Label: "tab scope"},
		{Key: "o", Label: "o own"},
		{Key: "w", Label: "w want"},
		{Key: "r", Label: "r read"},
		{Key: "", Label: "l location"},
		{Key: "c", Label: "c cover"},
		{Key: "", Label: "d delete"},
		{Key: "", Label: "a look up"},
		{Key: "", Label: "n new"},
		{Key: "", Label: "q quit"},
	}, m.activeCmd)
}
