package cache

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"

	"github.com/blackwell-systems/minerva/internal/catalog"
)

// IndexSize is the cover size linked from the HTML index.
const IndexSize = "M"

// GenerateHTMLIndex writes index.html into the cache directory listing
// books, with covers for those already cached. Returns the file path.
func (m *Manager) GenerateHTMLIndex(books []catalog.Book) (string, error) {
	if err := os.MkdirAll(m.baseDir, 0750); err != nil {
		return "", fmt.Errorf("create cache dir: %w", err)
	}
	indexPath := filepath.Join(m.baseDir, "index.html")

	var s strings.Builder
	s.WriteString(indexHeader)
	fmt.Fprintf(&s, "    <p class=\"subtitle\">%d books</p>\n    <div class=\"library\">\n", len(books))
	for _, b := range books {
		m.renderBookCard(&s, b)
	}
	s.WriteString(indexFooter)

	if err := os.WriteFile(indexPath, []byte(s.String()), 0644); err != nil {
		return "", fmt.Errorf("writing index.html: %w", err)
	}
	return indexPath, nil
}

func (m *Manager) renderBookCard(s *strings.Builder, b catalog.Book) {
	fmt.Fprintf(s, "      <div class=\"book-card\" data-isbn=\"%s\">\n", html.EscapeString(b.ISBN))
	if b.ISBN != "" && m.HasCover(b.ISBN, IndexSize) {
		rel, err := filepath.Rel(m.baseDir, m.CoverPath(b.ISBN, IndexSize))
		if err == nil {
			fmt.Fprintf(s, "        <img src=\"%s\" alt=\"Cover\">\n", html.EscapeString(filepath.ToSlash(rel)))
		}
	} else {
		s.WriteString("        <div class=\"no-cover\">📚</div>\n")
	}
	fmt.Fprintf(s, "        <div class=\"book-title\">%s</div>\n", html.EscapeString(b.Title))
	fmt.Fprintf(s, "        <div class=\"book-author\">%s</div>\n", html.EscapeString(b.Author))
	if b.ISBN != "" {
		fmt.Fprintf(s, "        <div class=\"book-isbn\">%s</div>\n", html.EscapeString(b.ISBN))
	}

	var flags []string
	if b.Own {
		flags = append(flags, "own")
	}
	if b.Want {
		flags = append(flags, "want")
	}
	if b.Read {
		flags = append(flags, "read")
	}
	if b.Location != "" {
		flags = append(flags, "📍 "+b.Location)
	}
	if len(flags) > 0 {
		s.WriteString("        <div class=\"book-tags\">")
		for _, f := range flags {
			fmt.Fprintf(s, "<span class=\"tag\">%s</span>", html.EscapeString(f))
		}
		s.WriteString("</div>\n")
	}
	s.WriteString("      </div>\n")
}

const indexHeader = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>minerva Library</title>
    <style>
        body {
            font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
            background: #1a1a1a;
            color: #e0e0e0;
            line-height: 1.6;
            padding: 20px;
        }
        h1 { color: #fb6820; }
        .subtitle { color: #888; font-size: 0.9rem; }
        .library {
            display: grid;
            grid-template-columns: repeat(auto-fill, minmax(180px, 1fr));
            gap: 20px;
        }
        .book-card {
            background: #1c2829;
            border: 1px solid #1e3a3c;
            border-radius: 8px;
            padding: 12px;
        }
        .book-card img { width: 100%; border-radius: 4px; }
        .no-cover { font-size: 4rem; text-align: center; }
        .book-title { font-weight: 600; }
        .book-author, .book-isbn { color: #888; font-size: 0.85rem; }
        .tag {
            display: inline-block;
            background: #0d3536;
            color: #2ecfd4;
            border-radius: 4px;
            padding: 0 6px;
            margin: 4px 4px 0 0;
            font-size: 0.8rem;
        }
    </style>
</head>
<body>
    <h1>minerva</h1>
`

const indexFooter = `    </div>
</body>
</html>
`
