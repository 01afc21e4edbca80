package catalog

import "time"

// Book is one record in the library catalogue.
type Book struct {
	ID        uint      `gorm:"primaryKey" yaml:"-"`
	ISBN      string    `gorm:"size:32;uniqueIndex:idx_books_isbn,where:isbn <> ''" yaml:"isbn,omitempty" validate:"max=32"`
	Title     string    `gorm:"size:250;not null;index:idx_books_author_title,priority:2" yaml:"title" validate:"required,max=250"`
	Author    string    `gorm:"size:250;not null;index:idx_books_author_title,priority:1" yaml:"author" validate:"required,max=250"`
	Own       bool      `gorm:"not null" yaml:"own"`
	Want      bool      `gorm:"not null" yaml:"want"`
	Read      bool      `gorm:"not null" yaml:"read"`
	Location  string    `gorm:"size:250" yaml:"location,omitempty" validate:"max=250"`
	CreatedAt time.Time `yaml:"-"`
	UpdatedAt time.Time `yaml:"-"`
}

// TableName pins the table name used by the SQLite store.
func (Book) TableName() string { return "books" }

// Store is the persistence contract the rest of the application depends on.
// Add, Update and Delete stage changes; Commit applies them.
type Store interface {
	// Exists returns the book with the given ISBN, or nil if there is none.
	Exists(isbn string) (*Book, error)
	// ExistsByAuthorTitle returns the book matching both author and title
	// exactly, or nil if there is none.
	ExistsByAuthorTitle(author, title string) (*Book, error)
	All() ([]Book, error)
	Add(b *Book)
	Update(b *Book)
	Delete(b *Book)
	Commit() error
}
