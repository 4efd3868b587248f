// Package extract recovers tracked changes and paragraph texts from a parsed
// WordprocessingML tree.
package extract

import (
	"fmt"
	"strings"

	"github.com/FocuswithJustin/redline/core/docx"
	"github.com/FocuswithJustin/redline/core/markup"
)

// Kind is the kind of a tracked change.
type Kind int

const (
	// Insertion is text wrapped in a w:ins marker.
	Insertion Kind = iota
	// Deletion is text wrapped in a w:del marker.
	Deletion
)

func (k Kind) String() string {
	switch k {
	case Insertion:
		return "ins"
	case Deletion:
		return "del"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Change is one tracked edit. Text is trimmed and never empty.
type Change struct {
	Kind Kind
	Text string
}

// Order selects how changes of different kinds are sequenced.
type Order int

const (
	// OrderByKind yields every insertion in document order, then every
	// deletion in document order.
	OrderByKind Order = iota
	// OrderByPosition yields changes in document order regardless of kind.
	OrderByPosition
)

// ParseOrder maps "kind" or "position" to an Order.
func ParseOrder(s string) (Order, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "kind":
		return OrderByKind, nil
	case "position":
		return OrderByPosition, nil
	}
	return OrderByKind, fmt.Errorf("unknown change order %q", s)
}

func (o Order) String() string {
	if o == OrderByPosition {
		return "position"
	}
	return "kind"
}

var markers = []struct {
	name markup.Name
	kind Kind
}{
	{docx.Ins, Insertion},
	{docx.Del, Deletion},
}

// Changes returns the tracked changes of doc. Markers whose text is only
// whitespace are skipped.
func Changes(doc *markup.Document, order Order) []Change {
	root := doc.Root()
	if root == nil {
		return nil
	}

	var changes []Change
	if order == OrderByPosition {
		for _, n := range markup.Leaves(root, docx.Ins, docx.Del) {
			kind := Insertion
			if n.Is(docx.Del) {
				kind = Deletion
			}
			changes = appendChange(changes, kind, n)
		}
		return changes
	}

	for _, m := range markers {
		for _, n := range markup.FindAll(root, m.name) {
			changes = appendChange(changes, m.kind, n)
		}
	}
	return changes
}

func appendChange(changes []Change, kind Kind, marker *markup.Node) []Change {
	text := strings.TrimSpace(docx.TextOf(marker))
	if text == "" {
		return changes
	}
	return append(changes, Change{Kind: kind, Text: text})
}

// Paragraphs returns the trimmed, non-empty text of every paragraph in doc,
// in document order. A paragraph contributes at most one entry.
func Paragraphs(doc *markup.Document) []string {
	var out []string
	for _, p := range doc.FindAll(docx.P) {
		if text := strings.TrimSpace(docx.TextOf(p)); text != "" {
			out = append(out, text)
		}
	}
	return out
}
