package cache_test

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/blackwell-systems/minerva/internal/cache"
	"github.com/blackwell-systems/minerva/internal/catalog"
)

// jpegBytes is enough of a JPEG header for content sniffing.
var jpegBytes = append([]byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}, bytes.Repeat([]byte{0}, 64)...)

func TestCoverPath_Layout(t *testing.T) {
	m := cache.New("/base", nil)
	got := m.CoverPath("9780140328721", "m")
	want := filepath.Join("/base", "covers", "9780140328721-M.jpg")
	if got != want {
		t.Errorf("CoverPath() = %q, want %q", got, want)
	}
	if p := m.CoverPath("../etc/passwd", "S"); filepath.Dir(p) != filepath.Join("/base", "covers") {
		t.Errorf("CoverPath escaped covers dir: %q", p)
	}
}

func TestHasCover_False(t *testing.T) {
	m := cache.New("/no/such/base", nil)
	if m.HasCover("1", "M") {
		t.Error("HasCover() should be false for missing file")
	}
}

func TestStore_WritesImage(t *testing.T) {
	m := cache.New(t.TempDir(), nil)
	path, err := m.Store("1", "M", bytes.NewReader(jpegBytes))
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	if !m.HasCover("1", "M") {
		t.Error("HasCover() false after successful Store")
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp file left behind")
	}
}

func TestStore_RejectsNonImage(t *testing.T) {
	m := cache.New(t.TempDir(), nil)
	_, err := m.Store("1", "M", strings.NewReader("<html>not found</html>"))
	if !errors.Is(err, cache.ErrNotImage) {
		t.Fatalf("Store error = %v, want ErrNotImage", err)
	}
	if m.HasCover("1", "M") {
		t.Error("non-image stored as cover")
	}
}

func TestFetchCover(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if strings.Contains(r.URL.Path, "missing") {
			http.NotFound(w, r)
			return
		}
		if r.URL.Query().Get("default") != "false" {
			// Stand-in for the host's 1x1 placeholder.
			_, _ = w.Write([]byte("GIF89a\x01\x00\x01\x00\x80\x00\x00"))
			return
		}
		_, _ = w.Write(jpegBytes)
	}))
	defer srv.Close()

	m := cache.New(t.TempDir(), srv.Client())
	path, err := m.FetchCover(srv.URL+"/b/ISBN/1-M.jpg", "1", "M")
	if err != nil {
		t.Fatalf("FetchCover: %v", err)
	}
	if path != m.CoverPath("1", "M") {
		t.Errorf("path = %q", path)
	}
	if data, err := os.ReadFile(path); err != nil || !bytes.Equal(data, jpegBytes) {
		t.Errorf("cached cover = %d bytes, %v; want the full-size image", len(data), err)
	}

	// Cached covers are not downloaded again.
	if _, err := m.FetchCover(srv.URL+"/b/ISBN/1-M.jpg", "1", "M"); err != nil {
		t.Fatalf("FetchCover (cached): %v", err)
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("server calls = %d, want 1", n)
	}

	if _, err := m.FetchCover(srv.URL+"/missing", "2", "M"); !errors.Is(err, cache.ErrNoCover) {
		t.Errorf("missing cover error = %v, want ErrNoCover", err)
	}
	if _, err := m.FetchCover("", "3", "M"); !errors.Is(err, cache.ErrNoCover) {
		t.Errorf("empty url error = %v, want ErrNoCover", err)
	}
}

func TestInfoAndClear(t *testing.T) {
	m := cache.New(t.TempDir(), nil)
	info, err := m.Info()
	if err != nil {
		t.Fatalf("Info on empty cache: %v", err)
	}
	if info.Covers != 0 {
		t.Errorf("Covers = %d, want 0", info.Covers)
	}

	for _, id := range []string{"1", "2"} {
		if _, err := m.Store(id, "S", bytes.NewReader(jpegBytes)); err != nil {
			t.Fatal(err)
		}
	}
	info, err = m.Info()
	if err != nil {
		t.Fatal(err)
	}
	if info.Covers != 2 || info.Bytes != int64(2*len(jpegBytes)) {
		t.Errorf("Info = %+v", info)
	}

	if err := m.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if m.HasCover("1", "S") {
		t.Error("cover survived Clear")
	}
	if err := m.RemoveCover("1", "S"); err != nil {
		t.Errorf("RemoveCover on missing file: %v", err)
	}
}

func TestGenerateHTMLIndex(t *testing.T) {
	m := cache.New(t.TempDir(), nil)
	if _, err := m.Store("9780140328721", cache.IndexSize, bytes.NewReader(jpegBytes)); err != nil {
		t.Fatal(err)
	}
	books := []catalog.Book{
		{ISBN: "9780140328721", Title: "Fantastic Mr Fox", Author: "Roald Dahl", Own: true, Location: "Shelf A"},
		{Title: "<script>", Author: "Anon"},
	}
	path, err := m.GenerateHTMLIndex(books)
	if err != nil {
		t.Fatalf("GenerateHTMLIndex: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	for _, want := range []string{
		"Fantastic Mr Fox",
		`src="covers/9780140328721-M.jpg"`,
		"&lt;script&gt;",
		"Shelf A",
		"2 books",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("index.html missing %q", want)
		}
	}
}
