package catalog

import (
	"strings"

	"golang.org/x/text/cases"
)

// Filter applies all non-empty criteria and returns matching books.
type Filter struct {
	Search string // matches ISBN, title, author, or location
	Own    bool   // only books I own
	Want   bool   // only books I want
	Read   bool   // only books I've read
}

// Apply returns the subset of books matching the filter, in input order.
func (f Filter) Apply(books []Book) []Book {
	var out []Book
	for _, b := range books {
		if f.Match(b) {
			out = append(out, b)
		}
	}
	return out
}

// Match reports whether b satisfies every set criterion.
func (f Filter) Match(b Book) bool {
	if f.Own && !b.Own {
		return false
	}
	if f.Want && !b.Want {
		return false
	}
	if f.Read && !b.Read {
		return false
	}
	return Matches(b, f.Search)
}

// IsZero reports whether the filter lets every book through.
func (f Filter) IsZero() bool {
	return f.Search == "" && !f.Own && !f.Want && !f.Read
}

// Matches reports whether term occurs in the book's ISBN, title, author or
// location, ignoring case. An empty term matches every book.
func Matches(b Book, term string) bool {
	if term == "" {
		return true
	}
	q := fold(term)
	for _, field := range []string{b.ISBN, b.Title, b.Author, b.Location} {
		if strings.Contains(fold(field), q) {
			return true
		}
	}
	return false
}

// fold returns the case-folded form of s. A Caser is stateful, so one is
// created per call.
func fold(s string) string {
	return cases.Fold().String(s)
}

// ByISBN returns the first book with the given ISBN, or nil.
func ByISBN(books []Book, isbn string) *Book {
	if isbn == "" {
		return nil
	}
	for i := range books {
		if books[i].ISBN == isbn {
			return &books[i]
		}
	}
	return nil
}

// ByAuthorTitle returns the first book whose author and title both match
// exactly, or nil.
func ByAuthorTitle(books []Book, author, title string) *Book {
	for i := range books {
		if books[i].Author == author && books[i].Title == title {
			return &books[i]
		}
	}
	return nil
}
