package cache

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

// ErrNoCover is returned when the cover host has no image for a book.
var ErrNoCover = errors.New("no cover available")

// FetchCover downloads the cover at coverURL into the cache unless it is
// already there. Returns the local path.
//
// The request asks the host not to substitute its blank placeholder image,
// so a missing cover comes back as 404 and maps to ErrNoCover.
func (m *Manager) FetchCover(coverURL, isbn, size string) (string, error) {
	if m.HasCover(isbn, size) {
		return m.CoverPath(isbn, size), nil
	}
	if coverURL == "" {
		return "", ErrNoCover
	}

	u, err := url.Parse(coverURL)
	if err != nil {
		return "", fmt.Errorf("parsing cover URL: %w", err)
	}
	q := u.Query()
	q.Set("default", "false")
	u.RawQuery = q.Encode()

	req, err := http.NewRequest(http.MethodGet, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	resp, err := m.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("downloading cover: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w (HTTP %d)", ErrNoCover, resp.StatusCode)
	}
	path, err := m.Store(isbn, size, resp.Body)
	if err != nil {
		if errors.Is(err, ErrNotImage) {
			return "", fmt.Errorf("%w: %w", ErrNoCover, err)
		}
		return "", err
	}
	return path, nil
}
