// Package booklist keeps the in-memory catalogue and a filtered view over
// it. Positions handed to mutating methods are view positions and are
// translated to the underlying record before anything is changed.
package booklist

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/blackwell-systems/minerva/internal/catalog"
)

var (
	ErrOutOfRange   = errors.New("position out of range")
	ErrUnknownFlag  = errors.New("unknown flag")
	ErrUnknownField = errors.New("unknown field")
	ErrEmptyValue   = errors.New("value must not be empty")
)

// Flag names one of a book's boolean flags.
type Flag string

const (
	FlagOwn  Flag = "own"
	FlagWant Flag = "want"
	FlagRead Flag = "read"
)

// ParseFlag maps user input to a Flag.
func ParseFlag(s string) (Flag, error) {
	switch f := Flag(strings.ToLower(strings.TrimSpace(s))); f {
	case FlagOwn, FlagWant, FlagRead:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q (expected own, want or read)", ErrUnknownFlag, s)
}

// Field names an editable text field of a book.
type Field string

const (
	FieldTitle    Field = "title"
	FieldAuthor   Field = "author"
	FieldLocation Field = "location"
)

// Scope restricts the view to books with a given flag set.
type Scope int

const (
	ScopeAll Scope = iota
	ScopeOwned
	ScopeRead
	ScopeWanted
)

var scopeNames = [...]string{"All", "Books I own", "Books I've read", "Books I want"}

func (s Scope) String() string {
	if s < 0 || int(s) >= len(scopeNames) {
		return "Scope(" + fmt.Sprint(int(s)) + ")"
	}
	return scopeNames[s]
}

// Next returns the scope after s, wrapping around.
func (s Scope) Next() Scope {
	return (s + 1) % Scope(len(scopeNames))
}

func (s Scope) filter(term string) catalog.Filter {
	return catalog.Filter{
		Search: term,
		Own:    s == ScopeOwned,
		Read:   s == ScopeRead,
		Want:   s == ScopeWanted,
	}
}

// List is the authoritative book sequence plus a lazily derived view.
// It is safe for concurrent use.
type List struct {
	mu    sync.RWMutex
	books []*catalog.Book
	term  string
	scope Scope
	view  []int // indices into books
	stale bool
}

// New returns a list holding books in the given order.
func New(books []catalog.Book) *List {
	l := &List{books: make([]*catalog.Book, 0, len(books))}
	for i := range books {
		b := books[i]
		l.books = append(l.books, &b)
	}
	l.refresh()
	return l
}

// Append adds b at the end. The view is recomputed on next access.
func (l *List) Append(b *catalog.Book) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.books = append(l.books, b)
	l.stale = true
}

// SetFilter replaces the search term and recomputes the view.
func (l *List) SetFilter(term string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.term = term
	l.refresh()
}

// SetScope replaces the scope and recomputes the view.
func (l *List) SetScope(s Scope) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.scope = s
	l.refresh()
}

// Filter returns the current search term.
func (l *List) Filter() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.term
}

// Scope returns the current scope.
func (l *List) Scope() Scope {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.scope
}

// View returns copies of the books in the filtered view, in
// authoritative order.
func (l *List) View() []catalog.Book {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ensure()
	out := make([]catalog.Book, len(l.view))
	for i, idx := range l.view {
		out[i] = *l.books[idx]
	}
	return out
}

// All returns copies of every book in authoritative order.
func (l *List) All() []catalog.Book {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]catalog.Book, len(l.books))
	for i, b := range l.books {
		out[i] = *b
	}
	return out
}

// Len returns the number of books in the authoritative sequence.
func (l *List) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.books)
}

// ViewLen returns the number of books in the filtered view.
func (l *List) ViewLen() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ensure()
	return len(l.view)
}

// At returns the book at view position pos.
func (l *List) At(pos int) (*catalog.Book, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	idx, err := l.resolve(pos)
	if err != nil {
		return nil, err
	}
	return l.books[idx], nil
}

// ToggleFlag flips flag f of the book at view position pos and returns it
// so the caller can persist the change.
func (l *List) ToggleFlag(pos int, f Flag) (*catalog.Book, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	idx, err := l.resolve(pos)
	if err != nil {
		return nil, err
	}
	b := l.books[idx]
	switch f {
	case FlagOwn:
		b.Own = !b.Own
	case FlagWant:
		b.Want = !b.Want
	case FlagRead:
		b.Read = !b.Read
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFlag, f)
	}
	l.stale = true
	return b, nil
}

// EditField sets field f of the book at view position pos. Title and
// author may not be blank; an empty location clears it.
func (l *List) EditField(pos int, f Field, value string) (*catalog.Book, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	idx, err := l.resolve(pos)
	if err != nil {
		return nil, err
	}
	value = strings.TrimSpace(value)
	b := l.books[idx]
	switch f {
	case FieldTitle, FieldAuthor:
		if value == "" {
			return nil, fmt.Errorf("%s: %w", f, ErrEmptyValue)
		}
		if f == FieldTitle {
			b.Title = value
		} else {
			b.Author = value
		}
	case FieldLocation:
		b.Location = value
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, f)
	}
	l.stale = true
	return b, nil
}

// RemoveAt deletes the book at view position pos and returns it.
func (l *List) RemoveAt(pos int) (*catalog.Book, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	idx, err := l.resolve(pos)
	if err != nil {
		return nil, err
	}
	b := l.books[idx]
	l.books = append(l.books[:idx], l.books[idx+1:]...)
	l.refresh()
	return b, nil
}

// resolve translates view position pos into an index of l.books: the
// pos-th book, in authoritative order, that satisfies the current filter.
// Every mutating method goes through here. Caller holds l.mu.
func (l *List) resolve(pos int) (int, error) {
	l.ensure()
	if pos < 0 || pos >= len(l.view) {
		return 0, fmt.Errorf("%w: %d (view has %d)", ErrOutOfRange, pos, len(l.view))
	}
	return l.view[pos], nil
}

func (l *List) ensure() {
	if l.stale {
		l.refresh()
	}
}

func (l *List) refresh() {
	f := l.scope.filter(l.term)
	l.view = l.view[:0]
	for i, b := range l.books {
		if f.Match(*b) {
			l.view = append(l.view, i)
		}
	}
	l.stale = false
}
