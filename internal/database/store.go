// Package database persists the catalogue in SQLite through gorm. It
// implements catalog.Store: Add, Update and Delete stage changes that
// Commit applies in a single transaction.
package database

import (
	"errors"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/blackwell-systems/minerva/internal/catalog"
	"github.com/blackwell-systems/minerva/internal/util"
)

type opKind int

const (
	opAdd opKind = iota
	opUpdate
	opDelete
)

func (k opKind) String() string {
	switch k {
	case opAdd:
		return "add"
	case opUpdate:
		return "update"
	default:
		return "delete"
	}
}

type op struct {
	kind opKind
	book *catalog.Book
}

// Store is a gorm-backed catalog.Store.
type Store struct {
	db      *gorm.DB
	log     *zap.Logger
	path    string
	pending []op
}

var _ catalog.Store = (*Store)(nil)

// Open opens (creating if needed) the SQLite database at path and migrates
// the schema. A nil logger disables logging.
func Open(path string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if path != ":memory:" {
		if err := util.EnsureDir(filepath.Dir(path)); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	level := logger.Silent
	if log.Core().Enabled(zapcore.DebugLevel) {
		level = logger.Info
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", path, err)
	}
	if err := db.AutoMigrate(&catalog.Book{}); err != nil {
		return nil, fmt.Errorf("migrating database: %w", err)
	}

	log.Debug("database opened", zap.String("path", path))
	return &Store{db: db, log: log, path: path}, nil
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// All returns every book in insertion order.
func (s *Store) All() ([]catalog.Book, error) {
	var books []catalog.Book
	if err := s.db.Order("id ASC").Find(&books).Error; err != nil {
		return nil, fmt.Errorf("listing books: %w", err)
	}
	return books, nil
}

// Exists returns the book with the given ISBN, or nil. Staged changes are
// taken into account.
func (s *Store) Exists(isbn string) (*catalog.Book, error) {
	if isbn == "" {
		return nil, nil
	}
	if b, found := s.pendingMatch(func(b *catalog.Book) bool { return b.ISBN == isbn }); found {
		return b, nil
	}
	return s.first("isbn = ?", isbn)
}

// ExistsByAuthorTitle returns the book whose author and title both match
// exactly, or nil.
func (s *Store) ExistsByAuthorTitle(author, title string) (*catalog.Book, error) {
	match := func(b *catalog.Book) bool { return b.Author == author && b.Title == title }
	if b, found := s.pendingMatch(match); found {
		return b, nil
	}
	return s.first("author = ? AND title = ?", author, title)
}

// Add stages b for insertion. Its ID is set by Commit.
func (s *Store) Add(b *catalog.Book) { s.stage(opAdd, b) }

// Update stages the current state of b for saving.
func (s *Store) Update(b *catalog.Book) { s.stage(opUpdate, b) }

// Delete stages b for removal.
func (s *Store) Delete(b *catalog.Book) { s.stage(opDelete, b) }

// Pending returns the number of staged changes.
func (s *Store) Pending() int { return len(s.pending) }

// Commit applies all staged changes in one transaction. Staged changes are
// discarded whether or not the commit succeeds.
func (s *Store) Commit() error {
	if len(s.pending) == 0 {
		return nil
	}
	ops := s.pending
	s.pending = nil

	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, o := range ops {
			if err := apply(tx, o); err != nil {
				return fmt.Errorf("%s %q: %w", o.kind, o.book.Title, err)
			}
		}
		return nil
	})
	if err != nil {
		s.log.Warn("commit rolled back", zap.Int("changes", len(ops)), zap.Error(err))
		return fmt.Errorf("committing changes: %w", err)
	}
	s.log.Debug("committed", zap.Int("changes", len(ops)))
	return nil
}

func (s *Store) stage(kind opKind, b *catalog.Book) {
	if b == nil {
		return
	}
	s.pending = append(s.pending, op{kind: kind, book: b})
	s.log.Debug("staged", zap.Stringer("op", kind), zap.String("isbn", b.ISBN), zap.String("title", b.Title))
}

// pendingMatch scans staged changes newest first. found is true when a
// staged change decides the answer, in which case b is nil for a delete.
func (s *Store) pendingMatch(match func(*catalog.Book) bool) (b *catalog.Book, found bool) {
	for i := len(s.pending) - 1; i >= 0; i-- {
		o := s.pending[i]
		if !match(o.book) {
			continue
		}
		if o.kind == opDelete {
			return nil, true
		}
		return o.book, true
	}
	return nil, false
}

func (s *Store) first(query string, args ...any) (*catalog.Book, error) {
	var b catalog.Book
	err := s.db.Where(query, args...).First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying books: %w", err)
	}
	return &b, nil
}

func apply(tx *gorm.DB, o op) error {
	switch o.kind {
	case opAdd:
		return tx.Create(o.book).Error
	case opUpdate:
		if o.book.ID == 0 {
			id, err := lookupID(tx, o.book)
			if err != nil {
				return err
			}
			o.book.ID = id
		}
		return tx.Save(o.book).Error
	case opDelete:
		if o.book.ID != 0 {
			return tx.Delete(&catalog.Book{}, o.book.ID).Error
		}
		if o.book.ISBN != "" {
			return tx.Where("isbn = ?", o.book.ISBN).Delete(&catalog.Book{}).Error
		}
		return tx.Where("author = ? AND title = ?", o.book.Author, o.book.Title).Delete(&catalog.Book{}).Error
	}
	return fmt.Errorf("unknown operation %d", o.kind)
}

// lookupID finds the stored row for a book that was built without one.
func lookupID(tx *gorm.DB, b *catalog.Book) (uint, error) {
	var row catalog.Book
	q := tx.Select("id")
	if b.ISBN != "" {
		q = q.Where("isbn = ?", b.ISBN)
	} else {
		q = q.Where("author = ? AND title = ?", b.Author, b.Title)
	}
	if err := q.First(&row).Error; err != nil {
		return 0, fmt.Errorf("finding stored book: %w", err)
	}
	return row.ID, nil
}
