package cache

import (
	"fmt"
	"io"
	"os"

	"github.com/blackwell-systems/minerva/internal/util"
)

// Store writes r to the cover path for isbn and size, going through a
// temp file so a partial download never replaces a good cover. Returns
// the final file path.
func (m *Manager) Store(isbn, size string, r io.Reader) (string, error) {
	if err := util.EnsureDir(m.coversDir()); err != nil {
		return "", fmt.Errorf("create cache dir: %w", err)
	}

	destPath := m.CoverPath(isbn, size)
	tmpPath := destPath + ".tmp"

	f, err := os.Create(tmpPath)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("writing to cache: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("closing temp file: %w", err)
	}

	if err := VerifyImage(tmpPath); err != nil {
		_ = os.Remove(tmpPath)
		return "", err
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		_ = os.Remove(tmpPath)
		return "", err
	}
	return destPath, nil
}
