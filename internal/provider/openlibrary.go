package provider

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/blackwell-systems/minerva/internal/isbn"
)

const (
	DefaultBaseURL      = "https://openlibrary.org"
	DefaultCoverBaseURL = "https://covers.openlibrary.org"
	defaultUserAgent    = "minerva (https://github.com/blackwell-systems/minerva)"
)

// OpenLibrary is a Provider backed by the Open Library API.
type OpenLibrary struct {
	http      *http.Client
	baseURL   string
	coverURL  string
	userAgent string
}

// Option configures an OpenLibrary client.
type Option func(*OpenLibrary)

// WithBaseURL points lookups at another Open Library instance.
func WithBaseURL(u string) Option {
	return func(o *OpenLibrary) {
		if u != "" {
			o.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithCoverBaseURL sets the host used by CoverURL.
func WithCoverBaseURL(u string) Option {
	return func(o *OpenLibrary) {
		if u != "" {
			o.coverURL = strings.TrimRight(u, "/")
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(o *OpenLibrary) {
		if ua != "" {
			o.userAgent = ua
		}
	}
}

// NewOpenLibrary creates a client. A nil httpClient uses
// http.DefaultClient; its Timeout is the only deadline applied.
func NewOpenLibrary(httpClient *http.Client, opts ...Option) *OpenLibrary {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	o := &OpenLibrary{
		http:      httpClient,
		baseURL:   DefaultBaseURL,
		coverURL:  DefaultCoverBaseURL,
		userAgent: defaultUserAgent,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// LookupByISBN normalizes identifier to ISBN-13 and fetches its record.
// The returned entry's ISBNs is always exactly the normalized identifier.
func (o *OpenLibrary) LookupByISBN(identifier string) (Entry, error) {
	isbn13, err := isbn.To13(identifier)
	if err != nil {
		return Entry{}, fmt.Errorf("%w: %q", ErrInvalidIdentifier, identifier)
	}

	payload, err := o.getJSON("/api/books?bibkeys=ISBN:" + isbn13 + "&jscmd=data&format=json")
	if err != nil {
		return Entry{}, fmt.Errorf("looking up ISBN %s: %w", isbn13, err)
	}

	record, ok := payload["ISBN:"+isbn13].(map[string]any)
	if !ok {
		return Entry{}, fmt.Errorf("looking up ISBN %s: %w", isbn13, ErrNoResults)
	}
	entry, err := NormalizeEntry(record)
	if err != nil {
		return Entry{}, fmt.Errorf("looking up ISBN %s: %w", isbn13, errors.Join(ErrNoResults, err))
	}
	entry.ISBNs = []string{isbn13}
	return entry, nil
}

// LookupByQuery searches by title or author. Only the first page of
// results is fetched.
func (o *OpenLibrary) LookupByQuery(text string, field Field) (Result, error) {
	if field != FieldTitle && field != FieldAuthor {
		return Result{}, fmt.Errorf("%w: %q", ErrUnsupportedField, field)
	}

	payload, err := o.getJSON("/search.json?" + string(field) + "=" + url.QueryEscape(text))
	if err != nil {
		return Result{}, fmt.Errorf("searching %s %q: %w", field, text, err)
	}

	docs, _ := payload["docs"].([]any)
	res := Result{
		Start:    intValue(payload["start"]),
		NumFound: intValue(payload["num_found"]),
		Page:     0,
	}
	for _, d := range docs {
		raw, ok := d.(map[string]any)
		if !ok {
			continue
		}
		entry, err := NormalizeEntry(raw)
		if err != nil {
			continue
		}
		res.Entries = append(res.Entries, entry)
	}
	if len(res.Entries) == 0 {
		return Result{}, fmt.Errorf("searching %s %q: %w", field, text, ErrNoResults)
	}
	return res, nil
}

// CoverURL returns <cover-base>/b/ISBN/<first isbn>-<size>.jpg, or "" when
// the entry has no identifier.
func (o *OpenLibrary) CoverURL(e Entry, size CoverSize) string {
	id := e.ISBN()
	if id == "" {
		return ""
	}
	return fmt.Sprintf("%s/b/ISBN/%s-%s.jpg", o.coverURL, id, size.Normalize())
}

// getJSON performs one GET and decodes the body into a generic object.
// Anything the server says that is not a populated object is ErrNoResults;
// failing to talk to it at all is ErrTransport.
func (o *OpenLibrary) getJSON(path string) (map[string]any, error) {
	req, err := http.NewRequest(http.MethodGet, o.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", o.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := o.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %w", ErrTransport, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w (HTTP %d)", ErrNoResults, resp.StatusCode)
	}

	var payload map[string]any
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&payload); err != nil || len(payload) == 0 {
		return nil, ErrNoResults
	}
	return payload, nil
}
