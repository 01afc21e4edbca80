package app

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/blackwell-systems/minerva/internal/catalog"
	"github.com/blackwell-systems/minerva/internal/isbn"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// bookJSON is the --json shape of a catalogue record.
type bookJSON struct {
	ISBN     string `json:"isbn,omitempty"`
	Title    string `json:"title"`
	Author   string `json:"author"`
	Own      bool   `json:"own"`
	Want     bool   `json:"want"`
	Read     bool   `json:"read"`
	Location string `json:"location,omitempty"`
}

func toJSON(b catalog.Book) bookJSON {
	return bookJSON{
		ISBN:     b.ISBN,
		Title:    b.Title,
		Author:   b.Author,
		Own:      b.Own,
		Want:     b.Want,
		Read:     b.Read,
		Location: b.Location,
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// findBook resolves a user-supplied identifier against the store. The
// identifier is tried as typed and in ISBN-13 form.
func findBook(s catalog.Store, id string) (*catalog.Book, error) {
	candidates := []string{strings.TrimSpace(id), isbn.Clean(id)}
	if id13, err := isbn.To13(id); err == nil {
		candidates = append(candidates, id13)
	}
	for _, c := range candidates {
		if c == "" {
			continue
		}
		b, err := s.Exists(c)
		if err != nil {
			return nil, err
		}
		if b != nil {
			return b, nil
		}
	}
	return nil, fmt.Errorf("no book with ISBN %q in your library", id)
}

// flagLabels lists the set flags of b, e.g. "own, read".
func flagLabels(b catalog.Book) string {
	var out []string
	if b.Own {
		out = append(out, "own")
	}
	if b.Want {
		out = append(out, "want")
	}
	if b.Read {
		out = append(out, "read")
	}
	if len(out) == 0 {
		return "-"
	}
	return strings.Join(out, ", ")
}

func printBookLine(w io.Writer, b catalog.Book) {
	loc := ""
	if b.Location != "" {
		loc = " " + color.CyanString("@"+b.Location)
	}
	fmt.Fprintf(w, "  %-13s  %s %s%s %s\n",
		color.WhiteString(b.ISBN),
		b.Title,
		color.HiBlackString("by "+b.Author),
		loc,
		color.GreenString("["+flagLabels(b)+"]"),
	)
}

func printField(w io.Writer, label, value string) {
	fmt.Fprintf(w, "  %-10s %s\n", color.CyanString(label+":"), value)
}

func printBook(w io.Writer, b catalog.Book) {
	printField(w, "title", b.Title)
	printField(w, "author", b.Author)
	if b.ISBN != "" {
		printField(w, "isbn", b.ISBN)
	}
	printField(w, "flags", flagLabels(b))
	if b.Location != "" {
		printField(w, "location", b.Location)
	}
}

// confirm asks a y/N question on the command's input.
func confirm(cmd *cobra.Command, prompt string) bool {
	fmt.Fprintf(cmd.OutOrStdout(), "%s (y/N): ", prompt)
	answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}
