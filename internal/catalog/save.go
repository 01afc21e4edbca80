package catalog

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Marshal encodes a book list to YAML bytes.
func Marshal(books []Book) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(books); err != nil {
		return nil, fmt.Errorf("encoding catalogue: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding catalogue: %w", err)
	}
	return buf.Bytes(), nil
}

// Save writes the book list to a file on disk.
func Save(path string, books []Book) error {
	data, err := Marshal(books)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// Merge appends the books in incoming that are not already present in
// books, using ISBN or, when the ISBN is empty, the author/title pair.
// It returns the merged list and the number of books added.
func Merge(books, incoming []Book) ([]Book, int) {
	added := 0
	for _, b := range incoming {
		if b.ISBN != "" && ByISBN(books, b.ISBN) != nil {
			continue
		}
		if b.ISBN == "" && ByAuthorTitle(books, b.Author, b.Title) != nil {
			continue
		}
		books = append(books, b)
		added++
	}
	return books, added
}
