package provider

import (
	"encoding/json"
	"strings"
)

const unknownAuthor = "Unknown"

// NormalizeEntry converts one decoded search hit into an Entry.
//
// The author comes from author_name, then the first element of authors,
// and falls back to "Unknown". isbn and cover are optional; values of an
// unexpected shape are dropped. Only a missing title is an error.
func NormalizeEntry(raw map[string]any) (Entry, error) {
	title := strings.TrimSpace(stringValue(raw["title"]))
	if title == "" {
		return Entry{}, ErrMissingTitle
	}
	return Entry{
		ISBNs:  stringList(raw["isbn"]),
		Title:  title,
		Author: resolveAuthor(raw),
		Covers: coverList(raw["cover"]),
	}, nil
}

func resolveAuthor(raw map[string]any) string {
	for _, name := range stringList(raw["author_name"]) {
		if name = strings.TrimSpace(name); name != "" {
			return name
		}
	}
	if authors, ok := raw["authors"].([]any); ok && len(authors) > 0 {
		if obj, ok := authors[0].(map[string]any); ok {
			if name := strings.TrimSpace(stringValue(obj["name"])); name != "" {
				return name
			}
		}
	}
	return unknownAuthor
}

// stringValue returns v as a string when it is one, or "".
func stringValue(v any) string {
	s, _ := v.(string)
	return s
}

// stringList accepts a list of strings or a single string. Non-string
// and empty elements are skipped.
func stringList(v any) []string {
	switch t := v.(type) {
	case string:
		if t == "" {
			return nil
		}
		return []string{t}
	case []any:
		var out []string
		for _, item := range t {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	case []string:
		var out []string
		for _, s := range t {
			if s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// coverList accepts an object of size to URL (ordered small, medium,
// large), a list of strings, or a single string.
func coverList(v any) []string {
	if m, ok := v.(map[string]any); ok {
		var out []string
		for _, key := range []string{"small", "medium", "large"} {
			if s := stringValue(m[key]); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return stringList(v)
}

// intValue reads a JSON number decoded with UseNumber, or a float64.
func intValue(v any) int {
	switch n := v.(type) {
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0
		}
		return int(i)
	case float64:
		return int(n)
	case int:
		return n
	}
	return 0
}
