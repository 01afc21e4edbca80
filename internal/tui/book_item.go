package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/blackwell-systems/minerva/internal/catalog"
)

// BookItem is one row of the browser list.
type BookItem struct {
	Book catalog.Book
}

// FilterValue returns the text the row is matched on. The browser filters
// through the book list, so this is only used by the list's status bar.
func (b BookItem) FilterValue() string {
	return strings.Join([]string{b.Book.ISBN, b.Book.Title, b.Book.Author, b.Book.Location}, " ")
}

// flagMarks renders the own/want/read columns as fixed-width markers.
func flagMarks(b catalog.Book) string {
	mark := func(set bool, c string) string {
		if set {
			return c
		}
		return "·"
	}
	return mark(b.Own, "O") + mark(b.Want, "W") + mark(b.Read, "R")
}

// Column width constraints
const (
	minTitleWidth    = 12
	maxTitleWidth    = 48
	minAuthorWidth   = 8
	maxAuthorWidth   = 26
	isbnWidth        = 13
	flagsWidth       = 3
	minLocationWidth = 6
	maxLocationWidth = 20
	columnGap        = 1
)

// computeColumnWidths distributes available width proportionally across
// the variable columns. ISBN and flags are fixed.
func computeColumnWidths(totalWidth int) (titleW, authorW, locationW int) {
	prefix := 2
	gaps := columnGap * 4
	usable := totalWidth - prefix - gaps - isbnWidth - flagsWidth
	if usable < minTitleWidth+minAuthorWidth+minLocationWidth {
		return minTitleWidth, minAuthorWidth, minLocationWidth
	}
	titleW = min(usable*50/100, maxTitleWidth)
	remaining := usable - titleW
	authorW = min(remaining*60/100, maxAuthorWidth)
	locationW = min(remaining-authorW, maxLocationWidth)

	titleW = max(titleW, minTitleWidth)
	authorW = max(authorW, minAuthorWidth)
	locationW = max(locationW, minLocationWidth)
	return
}

// padOrTruncate pads s to exactly width cells, truncating with "…" if
// necessary. Widths are display cells, so wide runes align correctly.
func padOrTruncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	n := ansi.StringWidth(s)
	if n > width {
		s = ansi.Truncate(s, width, "…")
		n = ansi.StringWidth(s)
	}
	if n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

// bookDelegate renders books with fixed-width columns.
type bookDelegate struct{}

func (d bookDelegate) Height() int                             { return 1 }
func (d bookDelegate) Spacing() int                            { return 0 }
func (d bookDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d bookDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	bookItem, ok := item.(BookItem)
	if !ok {
		return
	}
	_, _ = fmt.Fprint(w, renderBookRow(bookItem.Book, m.Width(), index == m.Index()))
}

func renderBookRow(b catalog.Book, listWidth int, isCursor bool) string {
	if listWidth <= 0 {
		listWidth = 80
	}
	titleW, authorW, locationW := computeColumnWidths(listWidth)
	gap := strings.Repeat(" ", columnGap)

	prefix := "  "
	if isCursor {
		prefix = lipgloss.NewStyle().Foreground(ColorOrange).Render("›") + " "
	}

	titleCol := padOrTruncate(b.Title, titleW)
	authorCol := padOrTruncate(b.Author, authorW)
	isbnCol := padOrTruncate(b.ISBN, isbnWidth)
	flagsCol := flagMarks(b)
	locationCol := padOrTruncate(b.Location, locationW)

	var titleStyled, authorStyled, isbnStyled, flagsStyled, locationStyled string
	if isCursor {
		titleStyled = StyleHighlight.Render(titleCol)
		authorStyled = lipgloss.NewStyle().Foreground(ColorOrange).Faint(true).Render(authorCol)
		isbnStyled = lipgloss.NewStyle().Foreground(ColorOrange).Faint(true).Render(isbnCol)
		flagsStyled = lipgloss.NewStyle().Foreground(ColorTealLight).Render(flagsCol)
		locationStyled = lipgloss.NewStyle().Foreground(ColorTealLight).Render(locationCol)
	} else {
		titleStyled = StyleNormal.Render(titleCol)
		authorStyled = StyleHelp.Render(authorCol)
		isbnStyled = StyleHelp.Render(isbnCol)
		if b.Own {
			flagsStyled = StyleOwned.Render(flagsCol)
		} else {
			flagsStyled = StyleFlag.Render(flagsCol)
		}
		locationStyled = StyleFlag.Render(locationCol)
	}

	return prefix + titleStyled + gap + authorStyled + gap + isbnStyled + gap + flagsStyled + gap + locationStyled
}
