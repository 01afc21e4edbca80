package tui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/blackwell-systems/minerva/internal/booklist"
	"github.com/blackwell-systems/minerva/internal/cache"
	"github.com/blackwell-systems/minerva/internal/catalog"
	"github.com/blackwell-systems/minerva/internal/provider"
)

// Deps are the collaborators the browser drives.
type Deps struct {
	Store    catalog.Store
	Provider provider.Provider
	Covers   *cache.Manager // nil disables cover previews
}

type mode int

const (
	modeBrowse mode = iota
	modeFilter
	modeLookup
	modeResults
	modeAddForm
	modeEditLocation
	modeConfirmDelete
)

// lookupFields is the order tab cycles through in the lookup prompt.
var lookupFields = []provider.Field{provider.FieldISBN, provider.FieldTitle, provider.FieldAuthor}

// BrowserModel is the library browser. It translates key presses into
// booklist operations, persists the affected records through the store,
// and re-renders from the list's filtered view.
type BrowserModel struct {
	deps  Deps
	books *booklist.List
	rows  list.Model
	mode  mode

	filter   textinput.Model
	query    textinput.Model
	location textinput.Model
	form     addForm

	field   int // index into lookupFields
	result  provider.Result
	cursor  int // selected result
	covers  map[string]string
	busy    bool
	pending string // description of the running lookup

	status string
	errMsg string

	protocol  TerminalImageProtocol
	width     int
	height    int
	activeCmd string
	quitting  bool
}

// NewBrowserModel builds a browser over books.
func NewBrowserModel(deps Deps, books *booklist.List) BrowserModel {
	l := list.New(nil, bookDelegate{}, 0, 0)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.KeyMap.Quit.SetEnabled(false)
	l.Styles.PaginationStyle = StyleHelp

	filter := textinput.New()
	filter.Prompt = "/ "
	filter.Placeholder = "isbn, title, author or location"
	filter.CharLimit = 120

	query := textinput.New()
	query.Prompt = "│ "
	query.CharLimit = 200
	query.Width = 42

	location := textinput.New()
	location.Prompt = "│ "
	location.Placeholder = "Shelf, room, lent to…"
	location.CharLimit = 250
	location.Width = 42

	m := BrowserModel{
		deps:     deps,
		books:    books,
		rows:     l,
		filter:   filter,
		query:    query,
		location: location,
		covers:   make(map[string]string),
		protocol: DetectImageProtocol(),
	}
	m.syncRows()
	return m
}

func (m BrowserModel) Init() tea.Cmd {
	return nil
}

// lookupDoneMsg carries the outcome of a provider call run off the
// update loop.
type lookupDoneMsg struct {
	result provider.Result
	err    error
}

// coverDoneMsg reports a finished cover download.
type coverDoneMsg struct {
	isbn string
	path string
	err  error
}

func (m BrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ClearActiveCmdMsg:
		m.activeCmd = ""
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeRows()
		return m, nil

	case lookupDoneMsg:
		m.busy = false
		m.pending = ""
		if msg.err != nil {
			m.errMsg = describeLookupError(msg.err)
			return m, nil
		}
		m.errMsg = ""
		m.result = msg.result
		m.cursor = 0
		m.mode = modeResults
		return m, nil

	case coverDoneMsg:
		if msg.err != nil {
			m.errMsg = "cover: " + msg.err.Error()
			return m, nil
		}
		m.covers[msg.isbn] = msg.path
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
		switch m.mode {
		case modeFilter:
			return m.updateFilter(msg)
		case modeLookup:
			return m.updateLookup(msg)
		case modeResults:
			return m.updateResults(msg)
		case modeAddForm:
			return m.updateAddForm(msg)
		case modeEditLocation:
			return m.updateLocation(msg)
		case modeConfirmDelete:
			return m.updateConfirmDelete(msg)
		}
		return m.updateBrowse(msg)
	}

	var cmd tea.Cmd
	m.rows, cmd = m.rows.Update(msg)
	return m, cmd
}

func (m BrowserModel) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.errMsg = ""
	switch {
	case key.Matches(msg, keys.quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, keys.filter):
		m.mode = modeFilter
		m.filter.SetValue(m.books.Filter())
		m.filter.CursorEnd()
		return m, m.filter.Focus()

	case key.Matches(msg, keys.back):
		if m.books.Filter() != "" {
			m.books.SetFilter("")
			m.syncRows()
		}
		return m, nil

	case key.Matches(msg, keys.scope):
		m.books.SetScope(m.books.Scope().Next())
		m.syncRows()
		m.activeCmd = "tab"
		return m, HighlightCmd()

	case key.Matches(msg, keys.toggleOwn):
		return m.toggle(booklist.FlagOwn, "o")
	case key.Matches(msg, keys.toggleWant):
		return m.toggle(booklist.FlagWant, "w")
	case key.Matches(msg, keys.toggleRead):
		return m.toggle(booklist.FlagRead, "r")

	case key.Matches(msg, keys.locate):
		b, err := m.books.At(m.rows.Index())
		if err != nil {
			return m, nil
		}
		m.mode = modeEditLocation
		m.location.SetValue(b.Location)
		m.location.CursorEnd()
		return m, m.location.Focus()

	case key.Matches(msg, keys.remove):
		if _, err := m.books.At(m.rows.Index()); err != nil {
			return m, nil
		}
		m.mode = modeConfirmDelete
		return m, nil

	case key.Matches(msg, keys.lookup):
		m.mode = modeLookup
		m.query.SetValue("")
		m.query.Placeholder = placeholderFor(lookupFields[m.field])
		return m, m.query.Focus()

	case key.Matches(msg, keys.cover):
		b, ok := m.selected()
		if !ok || b.ISBN == "" || m.deps.Covers == nil {
			return m, nil
		}
		e := provider.Entry{ISBNs: []string{b.ISBN}, Title: b.Title, Author: b.Author}
		m.activeCmd = "c"
		return m, tea.Batch(coverCmd(m.deps.Provider, m.deps.Covers, e), HighlightCmd())

	case key.Matches(msg, keys.manual):
		m.mode = modeAddForm
		m.form = newAddForm()
		return m, m.form.focus()
	}

	var cmd tea.Cmd
	m.rows, cmd = m.rows.Update(msg)
	return m, cmd
}

func (m BrowserModel) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.filter.SetValue("")
		m.books.SetFilter("")
		fallthrough
	case "enter":
		m.filter.Blur()
		m.mode = modeBrowse
		m.syncRows()
		return m, nil
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	if m.filter.Value() != m.books.Filter() {
		m.books.SetFilter(m.filter.Value())
		m.syncRows()
		m.rows.Select(0)
	}
	return m, cmd
}

// toggle flips a flag on the highlighted book and persists it.
func (m BrowserModel) toggle(f booklist.Flag, keyName string) (tea.Model, tea.Cmd) {
	b, err := m.books.ToggleFlag(m.rows.Index(), f)
	if err != nil {
		return m, nil
	}
	if err := m.persist(b); err != nil {
		m.errMsg = err.Error()
	}
	m.syncRows()
	m.activeCmd = keyName
	return m, HighlightCmd()
}

func (m BrowserModel) updateLocation(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.location.Blur()
		m.mode = modeBrowse
		return m, nil
	case "enter":
		m.location.Blur()
		m.mode = modeBrowse
		b, err := m.books.EditField(m.rows.Index(), booklist.FieldLocation, m.location.Value())
		if err != nil {
			m.errMsg = err.Error()
			return m, nil
		}
		if err := m.persist(b); err != nil {
			m.errMsg = err.Error()
		}
		m.syncRows()
		return m, nil
	}
	var cmd tea.Cmd
	m.location, cmd = m.location.Update(msg)
	return m, cmd
}

func (m BrowserModel) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.mode = modeBrowse
	switch msg.String() {
	case "y", "Y":
		b, err := m.books.RemoveAt(m.rows.Index())
		if err != nil {
			m.errMsg = err.Error()
			return m, nil
		}
		m.deps.Store.Delete(b)
		if err := m.deps.Store.Commit(); err != nil {
			m.errMsg = fmt.Sprintf("deleting %q: %v", b.Title, err)
		} else {
			m.status = fmt.Sprintf("Deleted %q", b.Title)
		}
		m.syncRows()
	}
	return m, nil
}

// persist stages and commits the current state of b.
func (m BrowserModel) persist(b *catalog.Book) error {
	m.deps.Store.Update(b)
	if err := m.deps.Store.Commit(); err != nil {
		return fmt.Errorf("saving %q: %w", b.Title, err)
	}
	return nil
}

// addBook stores b unless it is already catalogued, then appends it to
// the list.
func (m *BrowserModel) addBook(b catalog.Book) error {
	var dup *catalog.Book
	var err error
	if b.ISBN != "" {
		dup, err = m.deps.Store.Exists(b.ISBN)
	} else {
		dup, err = m.deps.Store.ExistsByAuthorTitle(b.Author, b.Title)
	}
	if err != nil {
		return err
	}
	if dup != nil {
		return fmt.Errorf("%q is already in your library", dup.Title)
	}
	if err := catalog.Validate(b); err != nil {
		return err
	}

	rec := &b
	m.deps.Store.Add(rec)
	if err := m.deps.Store.Commit(); err != nil {
		return fmt.Errorf("adding %q: %w", b.Title, err)
	}
	m.books.Append(rec)
	m.syncRows()
	m.selectBook(rec)
	m.status = fmt.Sprintf("Added %q", rec.Title)
	return nil
}

// selectBook moves the cursor onto rec if it is visible.
func (m *BrowserModel) selectBook(rec *catalog.Book) {
	for i, b := range m.books.View() {
		if b.ISBN == rec.ISBN && b.Title == rec.Title && b.Author == rec.Author {
			m.rows.Select(i)
			return
		}
	}
}

// syncRows reloads the list widget from the filtered view.
func (m *BrowserModel) syncRows() {
	view := m.books.View()
	items := make([]list.Item, len(view))
	for i, b := range view {
		items[i] = BookItem{Book: b}
	}
	idx := m.rows.Index()
	m.rows.SetItems(items)
	if idx >= len(items) {
		idx = len(items) - 1
	}
	if idx >= 0 {
		m.rows.Select(idx)
	}
}

func (m *BrowserModel) resizeRows() {
	// outer padding, border, divider, footer, status and header lines
	w := m.width - 4*2 - 2
	if m.showDetails() {
		w = w * 6 / 10
	}
	h := m.height - 2*2 - 2 - 5
	m.rows.SetSize(max(w, 20), max(h, 3))
}

func (m BrowserModel) showDetails() bool {
	return m.width >= 100
}

// selected returns the highlighted book, if any.
func (m BrowserModel) selected() (catalog.Book, bool) {
	item, ok := m.rows.SelectedItem().(BookItem)
	if !ok {
		return catalog.Book{}, false
	}
	return item.Book, true
}

func describeLookupError(err error) string {
	switch {
	case errors.Is(err, provider.ErrInvalidIdentifier):
		return "That is not a valid ISBN."
	case errors.Is(err, provider.ErrNoResults):
		return "No books found."
	case errors.Is(err, provider.ErrTransport):
		return "Could not reach the lookup service: " + err.Error()
	}
	return err.Error()
}

func placeholderFor(f provider.Field) string {
	switch f {
	case provider.FieldISBN:
		return "ISBN-10 or ISBN-13"
	case provider.FieldAuthor:
		return "Author name"
	}
	return "Book title"
}

// RunBrowser launches the interactive library browser.
func RunBrowser(deps Deps, books *booklist.List) error {
	if deps.Store == nil || deps.Provider == nil {
		return fmt.Errorf("browser needs a store and a provider")
	}
	p := tea.NewProgram(NewBrowserModel(deps, books), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}
	return nil
}
