package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/blackwell-systems/minerva/internal/provider"
)

func (m BrowserModel) updateLookup(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	switch msg.String() {
	case "esc":
		m.query.Blur()
		m.errMsg = ""
		m.mode = modeBrowse
		return m, nil

	case "tab":
		m.field = (m.field + 1) % len(lookupFields)
		m.query.Placeholder = placeholderFor(lookupFields[m.field])
		m.activeCmd = "tab"
		return m, HighlightCmd()

	case "enter":
		text := strings.TrimSpace(m.query.Value())
		if text == "" {
			return m, nil
		}
		m.busy = true
		m.errMsg = ""
		m.pending = fmt.Sprintf("Searching by %s for %q…", lookupFields[m.field], text)
		return m, lookupCmd(m.deps.Provider, lookupFields[m.field], text)
	}

	var cmd tea.Cmd
	m.query, cmd = m.query.Update(msg)
	return m, cmd
}

// lookupCmd runs one provider call off the update loop. It only reads the
// provider; the result is applied in Update.
func lookupCmd(p provider.Provider, field provider.Field, text string) tea.Cmd {
	return func() tea.Msg {
		if field == provider.FieldISBN {
			e, err := p.LookupByISBN(text)
			if err != nil {
				return lookupDoneMsg{err: err}
			}
			return lookupDoneMsg{result: provider.Result{NumFound: 1, Entries: []provider.Entry{e}}}
		}
		res, err := p.LookupByQuery(text, field)
		return lookupDoneMsg{result: res, err: err}
	}
}

func (m BrowserModel) updateResults(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	n := len(m.result.Entries)
	switch {
	case msg.String() == "esc":
		m.mode = modeLookup
		m.errMsg = ""
		return m, m.query.Focus()

	case msg.String() == "up" || msg.String() == "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case msg.String() == "down" || msg.String() == "j":
		if m.cursor < n-1 {
			m.cursor++
		}

	case msg.String() == "c":
		e, ok := m.selectedEntry()
		if !ok || m.deps.Covers == nil {
			return m, nil
		}
		m.activeCmd = "c"
		return m, tea.Batch(coverCmd(m.deps.Provider, m.deps.Covers, e), HighlightCmd())

	case msg.String() == "enter":
		e, ok := m.selectedEntry()
		if !ok {
			return m, nil
		}
		if err := m.addBook(e.ToBook(e.PreferredISBN())); err != nil {
			m.errMsg = err.Error()
			return m, nil
		}
		m.query.Blur()
		m.errMsg = ""
		m.mode = modeBrowse
	}
	return m, nil
}

func (m BrowserModel) selectedEntry() (provider.Entry, bool) {
	if m.cursor < 0 || m.cursor >= len(m.result.Entries) {
		return provider.Entry{}, false
	}
	return m.result.Entries[m.cursor], true
}

// coverCmd downloads the medium cover of e into the cache.
func coverCmd(p provider.Provider, covers coverFetcher, e provider.Entry) tea.Cmd {
	id := e.ISBN()
	url := p.CoverURL(e, provider.CoverMedium)
	return func() tea.Msg {
		path, err := covers.FetchCover(url, id, string(provider.CoverMedium))
		return coverDoneMsg{isbn: id, path: path, err: err}
	}
}

type coverFetcher interface {
	FetchCover(url, isbn, size string) (string, error)
}
