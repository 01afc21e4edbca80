// Package provider looks up bibliographic records from a remote catalogue
// service and normalizes them into Entry values.
package provider

import (
	"fmt"
	"strings"
)

// Field selects what a query lookup searches by.
type Field string

const (
	FieldISBN   Field = "isbn"
	FieldTitle  Field = "title"
	FieldAuthor Field = "author"
)

// ParseField maps user input to a Field.
func ParseField(s string) (Field, error) {
	switch Field(strings.ToLower(strings.TrimSpace(s))) {
	case FieldISBN:
		return FieldISBN, nil
	case FieldTitle:
		return FieldTitle, nil
	case FieldAuthor:
		return FieldAuthor, nil
	}
	return "", fmt.Errorf("%w: %q (expected isbn, title or author)", ErrUnsupportedField, s)
}

// CoverSize is the size code of a cover image.
type CoverSize string

const (
	CoverSmall  CoverSize = "S"
	CoverMedium CoverSize = "M"
	CoverLarge  CoverSize = "L"
)

// Normalize returns s if it is a known size and CoverMedium otherwise.
func (s CoverSize) Normalize() CoverSize {
	switch CoverSize(strings.ToUpper(string(s))) {
	case CoverSmall:
		return CoverSmall
	case CoverLarge:
		return CoverLarge
	default:
		return CoverMedium
	}
}

// Provider is a remote catalogue service. Every call is a single blocking
// round trip.
type Provider interface {
	// LookupByISBN fetches the record for one identifier.
	LookupByISBN(identifier string) (Entry, error)

	// LookupByQuery runs a free-text search on the first page of results.
	LookupByQuery(text string, field Field) (Result, error)

	// CoverURL builds the cover image location for e without any I/O.
	CoverURL(e Entry, size CoverSize) string
}
