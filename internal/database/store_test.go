package database_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/blackwell-systems/minerva/internal/catalog"
	"github.com/blackwell-systems/minerva/internal/database"
)

func setupTestDB(t *testing.T) *database.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "library.db")
	store, err := database.Open(path, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func seed(t *testing.T, s *database.Store, books ...catalog.Book) []*catalog.Book {
	t.Helper()
	out := make([]*catalog.Book, len(books))
	for i := range books {
		b := books[i]
		out[i] = &b
		s.Add(out[i])
	}
	require.NoError(t, s.Commit())
	return out
}

func TestStore_AddCommitAll(t *testing.T) {
	s := setupTestDB(t)
	added := seed(t, s,
		catalog.Book{ISBN: "9780140328721", Title: "Fantastic Mr Fox", Author: "Roald Dahl", Own: true},
		catalog.Book{Title: "Notes", Author: "Anon", Location: "Desk"},
	)
	assert.NotZero(t, added[0].ID)
	assert.NotZero(t, added[1].ID)

	books, err := s.All()
	require.NoError(t, err)
	require.Len(t, books, 2)
	assert.Equal(t, "Fantastic Mr Fox", books[0].Title)
	assert.True(t, books[0].Own)
	assert.False(t, books[0].Want)
	assert.Equal(t, "Desk", books[1].Location)
	assert.Zero(t, s.Pending())
}

func TestStore_StagedUntilCommit(t *testing.T) {
	s := setupTestDB(t)
	s.Add(&catalog.Book{ISBN: "9780140328721", Title: "T", Author: "A"})

	books, err := s.All()
	require.NoError(t, err)
	assert.Empty(t, books)

	// Staged adds are visible to existence checks.
	b, err := s.Exists("9780140328721")
	require.NoError(t, err)
	require.NotNil(t, b)
	assert.Equal(t, "T", b.Title)

	require.NoError(t, s.Commit())
	books, err = s.All()
	require.NoError(t, err)
	assert.Len(t, books, 1)
}

func TestStore_Exists(t *testing.T) {
	s := setupTestDB(t)
	seed(t, s, catalog.Book{ISBN: "9780140328721", Title: "Fantastic Mr Fox", Author: "Roald Dahl"})

	b, err := s.Exists("9780140328721")
	require.NoError(t, err)
	require.NotNil(t, b)
	assert.Equal(t, "Roald Dahl", b.Author)

	b, err = s.Exists("9780134685991")
	require.NoError(t, err)
	assert.Nil(t, b)

	b, err = s.Exists("")
	require.NoError(t, err)
	assert.Nil(t, b)
}

func TestStore_ExistsByAuthorTitle_RequiresBoth(t *testing.T) {
	s := setupTestDB(t)
	seed(t, s, catalog.Book{Title: "Fantastic Mr Fox", Author: "Roald Dahl"})

	b, err := s.ExistsByAuthorTitle("Roald Dahl", "Fantastic Mr Fox")
	require.NoError(t, err)
	assert.NotNil(t, b)

	b, err = s.ExistsByAuthorTitle("Roald Dahl", "Matilda")
	require.NoError(t, err)
	assert.Nil(t, b)

	b, err = s.ExistsByAuthorTitle("Someone Else", "Fantastic Mr Fox")
	require.NoError(t, err)
	assert.Nil(t, b)
}

func TestStore_Update(t *testing.T) {
	s := setupTestDB(t)
	added := seed(t, s, catalog.Book{ISBN: "9780140328721", Title: "T", Author: "A", Own: true})

	b := added[0]
	b.Own = false
	b.Read = true
	b.Location = "Shelf A"
	s.Update(b)
	require.NoError(t, s.Commit())

	got, err := s.Exists("9780140328721")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.False(t, got.Own)
	assert.True(t, got.Read)
	assert.Equal(t, "Shelf A", got.Location)
}

func TestStore_UpdateWithoutID(t *testing.T) {
	s := setupTestDB(t)
	seed(t, s, catalog.Book{ISBN: "9780140328721", Title: "T", Author: "A"})

	s.Update(&catalog.Book{ISBN: "9780140328721", Title: "T", Author: "A", Want: true})
	require.NoError(t, s.Commit())

	books, err := s.All()
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.True(t, books[0].Want)
}

func TestStore_Delete(t *testing.T) {
	s := setupTestDB(t)
	added := seed(t, s,
		catalog.Book{ISBN: "9780140328721", Title: "One", Author: "A"},
		catalog.Book{Title: "Two", Author: "B"},
		catalog.Book{ISBN: "9780134685991", Title: "Three", Author: "C"},
	)

	s.Delete(added[0])
	s.Delete(&catalog.Book{Title: "Two", Author: "B"})
	b, err := s.Exists("9780140328721")
	require.NoError(t, err)
	assert.Nil(t, b, "staged delete hides the book")
	require.NoError(t, s.Commit())

	books, err := s.All()
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "Three", books[0].Title)
}

func TestStore_CommitRollsBack(t *testing.T) {
	s := setupTestDB(t)
	seed(t, s, catalog.Book{ISBN: "9780140328721", Title: "T", Author: "A"})

	s.Add(&catalog.Book{ISBN: "9780134685991", Title: "New", Author: "B"})
	s.Add(&catalog.Book{ISBN: "9780140328721", Title: "Dup", Author: "C"})
	require.Error(t, s.Commit())
	assert.Zero(t, s.Pending())

	books, err := s.All()
	require.NoError(t, err)
	assert.Len(t, books, 1, "first add of the failed batch must be rolled back")
}

func TestStore_EmptyISBNNotUnique(t *testing.T) {
	s := setupTestDB(t)
	seed(t, s,
		catalog.Book{Title: "One", Author: "A"},
		catalog.Book{Title: "Two", Author: "B"},
	)
	books, err := s.All()
	require.NoError(t, err)
	assert.Len(t, books, 2)
}
