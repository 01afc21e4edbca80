package provider

import (
	"fmt"

	"github.com/blackwell-systems/minerva/internal/catalog"
	"github.com/blackwell-systems/minerva/internal/isbn"
)

// Entry is a candidate match returned by a provider. It is never persisted
// directly; ToBook converts it once the user picks an identifier.
type Entry struct {
	ISBNs  []string `json:"isbns,omitempty"`
	Title  string   `json:"title"`
	Author string   `json:"author"`
	Covers []string `json:"covers,omitempty"`
}

// ISBN returns the first candidate identifier, or "".
func (e Entry) ISBN() string {
	if len(e.ISBNs) == 0 {
		return ""
	}
	return e.ISBNs[0]
}

// PreferredISBN picks the identifier stored for an accepted entry: the
// first candidate that converts to ISBN-13, else the first candidate.
func (e Entry) PreferredISBN() string {
	for _, id := range e.ISBNs {
		if id13, err := isbn.To13(id); err == nil {
			return id13
		}
	}
	return e.ISBN()
}

// ToBook converts the entry into a catalogue record for the given
// identifier. New books are marked as owned.
func (e Entry) ToBook(isbn string) catalog.Book {
	return catalog.Book{
		ISBN:   isbn,
		Title:  e.Title,
		Author: e.Author,
		Own:    true,
	}
}

func (e Entry) String() string {
	return fmt.Sprintf("%s - %s", e.Author, e.Title)
}

// Result is one page of a query lookup.
type Result struct {
	Start    int     `json:"start"`
	NumFound int     `json:"num_found"`
	Page     int     `json:"page"`
	Entries  []Entry `json:"entries"`
}
