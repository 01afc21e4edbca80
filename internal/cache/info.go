package cache

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Info summarizes the cover cache.
type Info struct {
	Covers int
	Bytes  int64
}

// Info walks the covers directory. A missing directory is an empty cache.
func (m *Manager) Info() (Info, error) {
	var info Info
	err := filepath.WalkDir(m.coversDir(), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return filepath.SkipDir
			}
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".jpg") {
			return nil
		}
		fi, err := d.Info()
		if err != nil {
			return err
		}
		info.Covers++
		info.Bytes += fi.Size()
		return nil
	})
	return info, err
}

// Clear removes every cached cover.
func (m *Manager) Clear() error {
	return os.RemoveAll(m.coversDir())
}
