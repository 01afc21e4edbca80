package app

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/blackwell-systems/minerva/internal/booklist"
	"github.com/blackwell-systems/minerva/internal/catalog"
	"github.com/blackwell-systems/minerva/internal/database"
	"github.com/blackwell-systems/minerva/internal/provider"
)

// pngHeader is enough for content sniffing to report image/png.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

// openLibraryStub answers the three Open Library endpoints the app uses.
func openLibraryStub() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/books", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("bibkeys") == "ISBN:9780140328721" {
			_, _ = w.Write([]byte(`{"ISBN:9780140328721": {"title": "Fantastic Mr Fox", "authors": [{"name": "Roald Dahl"}]}}`))
			return
		}
		_, _ = w.Write([]byte(`{}`))
	})
	mux.HandleFunc("/search.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"start": 0, "num_found": 2, "docs": [
			{"title": "Fantastic Mr Fox", "author_name": ["Roald Dahl"], "isbn": ["0140328726"]},
			{"title": "Matilda", "author_name": ["Roald Dahl"], "isbn": ["9780142410370", "0142410373"]}
		]}`))
	})
	mux.HandleFunc("/b/ISBN/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(pngHeader)
	})
	return mux
}

type testEnv struct {
	t      *testing.T
	dir    string
	config string
	stdin  string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	srv := httptest.NewServer(openLibraryStub())
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	rc := fmt.Sprintf("db_path=%s\nlookup_base_url=%s\ncover_base_url=%s\ncache_dir=%s\nhttp_timeout=5s\n",
		filepath.Join(dir, "data", "library.db"), srv.URL, srv.URL, filepath.Join(dir, "cache"))
	config := filepath.Join(dir, ".libraryrc")
	require.NoError(t, os.WriteFile(config, []byte(rc), 0600))

	return &testEnv{t: t, dir: dir, config: config}
}

// run executes one minerva invocation and returns what it wrote to the
// command's output.
func (e *testEnv) run(args ...string) (string, error) {
	e.t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(e.stdin))
	cmd.SetArgs(append([]string{"--config", e.config, "--no-color", "--no-interactive"}, args...))
	err := cmd.Execute()
	closeStore()
	return out.String(), err
}

func (e *testEnv) mustRun(args ...string) string {
	e.t.Helper()
	out, err := e.run(args...)
	require.NoError(e.t, err, "minerva %s", strings.Join(args, " "))
	return out
}

// books opens the database directly and returns its contents.
func (e *testEnv) books() []catalog.Book {
	e.t.Helper()
	s, err := database.Open(filepath.Join(e.dir, "data", "library.db"), zaptest.NewLogger(e.t))
	require.NoError(e.t, err)
	defer func() { _ = s.Close() }()
	all, err := s.All()
	require.NoError(e.t, err)
	return all
}

func TestAdd_StoresISBN13(t *testing.T) {
	env := newTestEnv(t)

	env.mustRun("add", "--title", " Fantastic Mr Fox ", "--author", "Roald Dahl",
		"--isbn", "0-14-032872-6", "--location", "Shelf 1")

	books := env.books()
	require.Len(t, books, 1)
	assert.Equal(t, "9780140328721", books[0].ISBN)
	assert.Equal(t, "Fantastic Mr Fox", books[0].Title)
	assert.Equal(t, "Shelf 1", books[0].Location)
	assert.True(t, books[0].Own)
	assert.False(t, books[0].Want)
}

func TestAdd_Duplicates(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun("add", "--title", "Fantastic Mr Fox", "--author", "Roald Dahl", "--isbn", "9780140328721")
	env.mustRun("add", "--title", "Matilda", "--author", "Roald Dahl")

	_, err := env.run("add", "--title", "Other title", "--author", "Someone", "--isbn", "0140328726")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errDuplicate))
	assert.Contains(t, err.Error(), `"Fantastic Mr Fox" is already in your library`)

	_, err = env.run("add", "--title", "Matilda", "--author", "Roald Dahl")
	assert.ErrorIs(t, err, errDuplicate)

	// Same title by another author is a different book.
	env.mustRun("add", "--title", "Matilda", "--author", "Someone Else")
	assert.Len(t, env.books(), 3)
}

func TestAdd_Validation(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run("add", "--title", "Matilda", "--author", "   ")
	var verr *catalog.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "please enter an author", verr.Error())

	_, err = env.run("add", "--title", "Matilda", "--author", "Roald Dahl", "--isbn", "123")
	assert.Error(t, err)

	assert.Empty(t, env.books())
}

func TestList_ScopesAndTerm(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun("add", "--title", "Fantastic Mr Fox", "--author", "Roald Dahl", "--read")
	env.mustRun("add", "--title", "Dune", "--author", "Frank Herbert", "--want", "--own=false")
	env.mustRun("add", "--title", "Matilda", "--author", "Roald Dahl", "--location", "Kitchen")

	titles := func(args ...string) []string {
		out := env.mustRun(append([]string{"list", "--json"}, args...)...)
		var got []bookJSON
		require.NoError(t, json.Unmarshal([]byte(out), &got), out)
		var ts []string
		for _, b := range got {
			ts = append(ts, b.Title)
		}
		return ts
	}

	assert.Equal(t, []string{"Fantastic Mr Fox", "Dune", "Matilda"}, titles())
	assert.Equal(t, []string{"Fantastic Mr Fox", "Matilda"}, titles("--owned"))
	assert.Equal(t, []string{"Fantastic Mr Fox"}, titles("--read"))
	assert.Equal(t, []string{"Dune"}, titles("--wanted"))
	assert.Equal(t, []string{"Fantastic Mr Fox", "Matilda"}, titles("DAHL"))
	assert.Equal(t, []string{"Matilda"}, titles("kitchen", "--owned"))
	assert.Nil(t, titles("nothing matches"))

	_, err := env.run("list", "--owned", "--read")
	assert.Error(t, err)
}

func TestList_HeadingAndRowsShareOutput(t *testing.T) {
	env := newTestEnv(t)
	assert.Contains(t, env.mustRun("add", "--title", "Matilda", "--author", "Roald Dahl"), `Added "Matilda" by Roald Dahl`)

	out := env.mustRun("list")
	assert.Contains(t, out, "(1 of 1 books)")
	assert.Contains(t, out, "Matilda")
	assert.Less(t, strings.Index(out, "(1 of 1 books)"), strings.Index(out, "Matilda"))

	out = env.mustRun("lookup", "dahl", "--by", "author")
	assert.Contains(t, out, "2 found for \"dahl\" by author")
}

func TestList_Empty(t *testing.T) {
	env := newTestEnv(t)
	assert.Contains(t, env.mustRun("list"), "No books found.")
	assert.Equal(t, "[]\n", env.mustRun("list", "--json"))
}

func TestLookup_ByISBNJSON(t *testing.T) {
	env := newTestEnv(t)

	out := env.mustRun("lookup", "0140328726", "--json")
	var res provider.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res), out)
	require.Len(t, res.Entries, 1)
	assert.Equal(t, "Fantastic Mr Fox", res.Entries[0].Title)
	assert.Equal(t, "Roald Dahl", res.Entries[0].Author)
	assert.Equal(t, []string{"9780140328721"}, res.Entries[0].ISBNs)
}

func TestLookup_ErrorsKeepKind(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run("lookup", "9780000000002")
	assert.ErrorIs(t, err, provider.ErrNoResults)

	_, err = env.run("lookup", "not-an-isbn", "--by", "isbn")
	assert.ErrorIs(t, err, provider.ErrInvalidIdentifier)

	_, err = env.run("lookup", "dahl", "--by", "publisher")
	assert.ErrorIs(t, err, provider.ErrUnsupportedField)
}

func TestLookup_AddResult(t *testing.T) {
	env := newTestEnv(t)

	out := env.mustRun("lookup", "dahl", "--by", "author")
	assert.Contains(t, out, "9780140328721")
	assert.Contains(t, out, "Matilda")

	env.mustRun("lookup", "fox", "--by", "title", "--add", "1")
	env.mustRun("lookup", "dahl", "--by", "author", "--add", "2", "--isbn", "0142410373")

	books := env.books()
	require.Len(t, books, 2)
	assert.Equal(t, "9780140328721", books[0].ISBN)
	assert.Equal(t, "9780142410370", books[1].ISBN)
	assert.True(t, books[1].Own)

	// The ISBN lookup resolves to the book already added.
	_, err := env.run("lookup", "9780140328721", "--add", "1")
	assert.ErrorIs(t, err, errDuplicate)

	_, err = env.run("lookup", "dahl", "--by", "author", "--add", "3")
	assert.Error(t, err)
	assert.Len(t, env.books(), 2)
}

func TestToggleAndLocate(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun("add", "--title", "Fantastic Mr Fox", "--author", "Roald Dahl", "--isbn", "9780140328721")

	env.mustRun("toggle", "0140328726", "read")
	env.mustRun("toggle", "9780140328721", "OWN")
	env.mustRun("locate", "978-0-14-032872-1", "  Study, shelf 3 ")

	b := env.books()[0]
	assert.True(t, b.Read)
	assert.False(t, b.Own)
	assert.Equal(t, "Study, shelf 3", b.Location)

	env.mustRun("locate", "9780140328721", "")
	assert.Empty(t, env.books()[0].Location)

	_, err := env.run("toggle", "9780140328721", "borrowed")
	assert.ErrorIs(t, err, booklist.ErrUnknownFlag)

	_, err = env.run("toggle", "9780142410370", "read")
	assert.ErrorContains(t, err, "no book with ISBN")
}

func TestDelete_Confirmation(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun("add", "--title", "Fantastic Mr Fox", "--author", "Roald Dahl", "--isbn", "9780140328721")
	env.mustRun("add", "--title", "Matilda", "--author", "Roald Dahl", "--isbn", "0142410373")

	env.stdin = "n\n"
	out := env.mustRun("delete", "9780140328721")
	assert.Contains(t, out, "Delete \"Fantastic Mr Fox\"?")
	assert.Len(t, env.books(), 2)

	env.stdin = "y\n"
	env.mustRun("delete", "9780140328721")
	require.Len(t, env.books(), 1)

	env.stdin = ""
	env.mustRun("delete", "0142410373", "--yes")
	assert.Empty(t, env.books())
}

func TestExportImport(t *testing.T) {
	src := newTestEnv(t)
	src.mustRun("add", "--title", "Fantastic Mr Fox", "--author", "Roald Dahl", "--isbn", "9780140328721", "--read")
	src.mustRun("add", "--title", "Dune", "--author", "Frank Herbert", "--want", "--own=false")

	yml := src.mustRun("export")
	assert.Contains(t, yml, "title: Fantastic Mr Fox")

	file := filepath.Join(src.dir, "books.yml")
	src.mustRun("export", file, "--html")
	_, err := os.Stat(filepath.Join(src.dir, "cache", "index.html"))
	assert.NoError(t, err)

	dst := newTestEnv(t)
	dst.mustRun("add", "--title", "Dune", "--author", "Frank Herbert")
	dst.mustRun("import", file)

	books := dst.books()
	require.Len(t, books, 2)
	assert.Equal(t, "Dune", books[0].Title)
	assert.True(t, books[0].Own, "existing record is kept as it was")
	assert.Equal(t, "9780140328721", books[1].ISBN)
	assert.True(t, books[1].Read)

	_, err = os.Stat(filepath.Join(dst.dir, "data", "library.db.bak"))
	assert.NoError(t, err)

	dst.mustRun("import", file, "--no-backup")
	assert.Len(t, dst.books(), 2)

	_, err = dst.run("import", filepath.Join(dst.dir, "missing.yml"))
	assert.Error(t, err)
}

func TestImport_SkipsInvalidRecords(t *testing.T) {
	env := newTestEnv(t)
	file := filepath.Join(env.dir, "in.yml")
	require.NoError(t, os.WriteFile(file, []byte(`- title: Matilda
  author: Roald Dahl
  isbn: "0142410373"
- title: ""
  author: Nobody
- title: Matilda
  author: Roald Dahl
  isbn: "9780142410370"
- title: "   "
  author: Somebody
- title: The BFG
  author: "\t"
- title: "  Dune  "
  author: " Frank Herbert"
  location: " Hall "
`), 0600))

	env.mustRun("import", file)
	books := env.books()
	require.Len(t, books, 2)
	assert.Equal(t, "9780142410370", books[0].ISBN)
	assert.Equal(t, "Dune", books[1].Title)
	assert.Equal(t, "Frank Herbert", books[1].Author)
	assert.Equal(t, "Hall", books[1].Location)
}

func TestCover_DownloadsIntoCache(t *testing.T) {
	env := newTestEnv(t)

	out := env.mustRun("cover", "0140328726", "--size", "l")
	path := strings.TrimSpace(out)
	assert.Equal(t, filepath.Join(env.dir, "cache", "covers", "9780140328721-L.jpg"), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, pngHeader, data)

	info := env.mustRun("cache", "info")
	assert.Contains(t, info, "1")

	env.mustRun("cache", "clear")
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	_, err = env.run("cover", "123")
	assert.Error(t, err)
}

func TestInit_WritesConfigAndDatabase(t *testing.T) {
	dir := t.TempDir()
	config := filepath.Join(dir, "rc")
	dbPath := filepath.Join(dir, "db", "books.db")

	run := func(args ...string) error {
		cmd := newRootCmd()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetArgs(append([]string{"--config", config, "--no-color"}, args...))
		err := cmd.Execute()
		closeStore()
		return err
	}

	require.NoError(t, run("init", "--db-path", dbPath, "--cache-dir", filepath.Join(dir, "cache")))
	data, err := os.ReadFile(config)
	require.NoError(t, err)
	assert.Contains(t, string(data), "db_path")
	assert.Contains(t, string(data), dbPath)
	_, err = os.Stat(dbPath)
	assert.NoError(t, err)

	assert.ErrorContains(t, run("init"), "already exists")
	assert.NoError(t, run("init", "--force", "--db-path", dbPath))
}

func TestLookupField(t *testing.T) {
	cases := []struct {
		by, query string
		want      provider.Field
	}{
		{"", "0140328726", provider.FieldISBN},
		{"", "978-0-14-032872-1", provider.FieldISBN},
		{"", "fantastic mr fox", provider.FieldTitle},
		{"", "0140328727", provider.FieldTitle},
		{"author", "0140328726", provider.FieldAuthor},
	}
	for _, c := range cases {
		got, err := lookupField(c.by, c.query)
		if err != nil || got != c.want {
			t.Errorf("lookupField(%q, %q) = %q, %v; want %q", c.by, c.query, got, err, c.want)
		}
	}
}

func TestHumanBytes(t *testing.T) {
	cases := map[int64]string{0: "0 B", 1023: "1023 B", 1024: "1.0 KiB", 1536: "1.5 KiB", 5 << 20: "5.0 MiB"}
	for n, want := range cases {
		if got := humanBytes(n); got != want {
			t.Errorf("humanBytes(%d) = %q, want %q", n, got, want)
		}
	}
}

func TestVersion(t *testing.T) {
	env := newTestEnv(t)
	SetVersion("1.2.3")
	t.Cleanup(func() { appVersion = "dev" })
	assert.Equal(t, "minerva 1.2.3\n", env.mustRun("version"))
}
