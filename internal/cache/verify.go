package cache

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

// ErrNotImage is returned when downloaded cover data is not an image.
var ErrNotImage = errors.New("not an image")

// VerifyImage sniffs the first bytes of the file at path and rejects
// anything that is not an image.
func VerifyImage(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening cover: %w", err)
	}
	defer func() { _ = f.Close() }()

	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return fmt.Errorf("reading cover: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: empty file", ErrNotImage)
	}
	if ct := http.DetectContentType(head[:n]); !strings.HasPrefix(ct, "image/") {
		return fmt.Errorf("%w: %s", ErrNotImage, ct)
	}
	return nil
}
