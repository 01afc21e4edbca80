package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/blackwell-systems/minerva/internal/catalog"
	"github.com/blackwell-systems/minerva/internal/isbn"
)

const (
	formFieldTitle = iota
	formFieldAuthor
	formFieldISBN
	formFieldLocation
)

var formLabels = []string{"Title", "Author", "ISBN", "Location"}

// addForm collects a book typed in by hand.
type addForm struct {
	inputs  []textinput.Model
	focused int
	err     error
}

func newAddForm() addForm {
	f := addForm{inputs: make([]textinput.Model, len(formLabels))}

	const fieldWidth = 42
	placeholders := []string{"Book title", "Author name", "optional", "optional"}
	limits := []int{250, 250, 17, 250}
	for i := range f.inputs {
		in := textinput.New()
		in.Placeholder = placeholders[i]
		in.CharLimit = limits[i]
		in.Width = fieldWidth
		in.Prompt = "│ "
		f.inputs[i] = in
	}
	return f
}

func (f *addForm) focus() tea.Cmd {
	cmds := make([]tea.Cmd, len(f.inputs))
	for i := range f.inputs {
		if i == f.focused {
			cmds[i] = f.inputs[i].Focus()
		} else {
			f.inputs[i].Blur()
		}
	}
	return tea.Batch(cmds...)
}

// book builds the record from the inputs. Values are trimmed and a given
// ISBN must be valid; title and author are checked by catalog.Validate.
func (f addForm) book() (catalog.Book, error) {
	b := catalog.Book{
		Title:    strings.TrimSpace(f.inputs[formFieldTitle].Value()),
		Author:   strings.TrimSpace(f.inputs[formFieldAuthor].Value()),
		Location: strings.TrimSpace(f.inputs[formFieldLocation].Value()),
		Own:      true,
	}
	if raw := strings.TrimSpace(f.inputs[formFieldISBN].Value()); raw != "" {
		id, err := isbn.To13(raw)
		if err != nil {
			return b, fmt.Errorf("%q is not a valid ISBN", raw)
		}
		b.ISBN = id
	}
	return b, catalog.Validate(b)
}

func (m BrowserModel) updateAddForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := &m.form
	switch msg.String() {
	case "esc":
		m.mode = modeBrowse
		return m, nil

	case "tab", "shift+tab", "up", "down":
		if msg.String() == "up" || msg.String() == "shift+tab" {
			f.focused--
		} else {
			f.focused++
		}
		if f.focused < 0 {
			f.focused = len(f.inputs) - 1
		} else if f.focused >= len(f.inputs) {
			f.focused = 0
		}
		m.activeCmd = "tab"
		return m, tea.Batch(f.focus(), HighlightCmd())

	case "enter":
		if f.focused < len(f.inputs)-1 {
			f.focused++
			return m, f.focus()
		}
		b, err := f.book()
		if err != nil {
			f.err = err
			return m, nil
		}
		if err := m.addBook(b); err != nil {
			f.err = err
			return m, nil
		}
		m.mode = modeBrowse
		return m, nil
	}

	var cmd tea.Cmd
	f.inputs[f.focused], cmd = f.inputs[f.focused].Update(msg)
	return m, cmd
}

func (f addForm) view() string {
	formLabel := lipgloss.NewStyle().
		Foreground(ColorGray).
		Width(12).
		Align(lipgloss.Right).
		PaddingRight(1)
	formLabelActive := formLabel.
		Foreground(ColorYellow).
		Bold(true)

	var b strings.Builder
	b.WriteString(StyleHeader.Render("Add Book"))
	b.WriteString("\n\n")

	if f.err != nil {
		b.WriteString(StyleError.Render(fmt.Sprintf("Error: %v", f.err)))
		b.WriteString("\n\n")
	}

	for i, label := range formLabels {
		if i == f.focused {
			b.WriteString(formLabelActive.Render("› " + label))
		} else {
			b.WriteString(formLabel.Render(label))
		}
		b.WriteString(f.inputs[i].View())
		b.WriteString("\n\n")
	}
	return b.String()
}
