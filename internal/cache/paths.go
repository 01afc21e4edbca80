package cache

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Manager handles the local cover image cache.
type Manager struct {
	baseDir string
	http    *http.Client
}

// New creates a cache Manager rooted at baseDir. A nil httpClient uses
// http.DefaultClient.
func New(baseDir string, httpClient *http.Client) *Manager {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Manager{baseDir: baseDir, http: httpClient}
}

// Dir returns the cache root.
func (m *Manager) Dir() string { return m.baseDir }

// CoverPath returns where the cover for isbn at the given size is stored.
// Layout: <baseDir>/covers/<isbn>-<size>.jpg
func (m *Manager) CoverPath(isbn, size string) string {
	return filepath.Join(m.coversDir(), sanitize(isbn)+"-"+strings.ToUpper(size)+".jpg")
}

// HasCover reports whether the cover is cached.
func (m *Manager) HasCover(isbn, size string) bool {
	fi, err := os.Stat(m.CoverPath(isbn, size))
	return err == nil && fi.Size() > 0
}

// RemoveCover deletes a cached cover if it exists.
func (m *Manager) RemoveCover(isbn, size string) error {
	err := os.Remove(m.CoverPath(isbn, size))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (m *Manager) coversDir() string {
	return filepath.Join(m.baseDir, "covers")
}

// sanitize keeps identifiers from escaping the covers directory.
func sanitize(id string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', '.', ':':
			return '_'
		}
		return r
	}, id)
}
