// Package docx holds the WordprocessingML vocabulary redline works with and
// loads the main content part of a .docx archive into a markup tree.
package docx

import (
	"strings"

	"github.com/FocuswithJustin/redline/core/errors"
	"github.com/FocuswithJustin/redline/core/markup"
)

// ContentPart is the archive path of the main document part.
const ContentPart = "word/document.xml"

// NS is the WordprocessingML main namespace, conventionally bound to "w".
const NS = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

// Prefix is the prefix used for elements redline creates.
const Prefix = "w"

func w(local string) markup.Name { return markup.Name{Space: NS, Local: local} }

// Element and attribute names.
var (
	Body    = w("body")
	P       = w("p")
	R       = w("r")
	RPr     = w("rPr")
	T       = w("t")
	DelText = w("delText")
	Ins     = w("ins")
	Del     = w("del")
	Color   = w("color")
	Strike  = w("strike")
	U       = w("u")
	Val     = w("val")
)

// TextLeaves are the elements whose character data forms document text.
// Deleted runs carry their text in w:delText instead of w:t.
var TextLeaves = []markup.Name{T, DelText}

// PartSource is the part lookup Load needs from an archive.
type PartSource interface {
	Part(name string) ([]byte, bool)
	Path() string
}

// Load parses the named content part of a. A missing part is reported as an
// unreadable archive; a malformed part as malformed markup.
func Load(a PartSource, part string) (*markup.Document, error) {
	data, ok := a.Part(part)
	if !ok {
		return nil, errors.NewArchive(a.Path(), "missing content part "+part, errors.NewNotFound("part", part))
	}
	doc, err := markup.Parse(data)
	if err != nil {
		var pe *errors.ParseError
		if errors.As(err, &pe) {
			pe.Path = part
		}
		return nil, err
	}
	return doc, nil
}

// BodyOf returns the document's body container, or nil.
func BodyOf(doc *markup.Document) *markup.Node {
	root := doc.Root()
	if root == nil {
		return nil
	}
	if root.Is(Body) {
		return root
	}
	if b := root.Child(Body); b != nil {
		return b
	}
	if all := markup.FindAll(root, Body); len(all) > 0 {
		return all[0]
	}
	return nil
}

// TextOf returns the concatenated text of n's text leaves.
func TextOf(n *markup.Node) string {
	return markup.TextOf(n, TextLeaves...)
}

// StrikeState is the tri-state reading of a run's w:strike marker.
type StrikeState int

const (
	// StrikeAbsent means the run has no w:strike element.
	StrikeAbsent StrikeState = iota
	// StrikeOff means w:strike is present with w:val="false".
	StrikeOff
	// StrikeOn means w:strike is present with any other value, or none.
	StrikeOn
)

func (s StrikeState) String() string {
	switch s {
	case StrikeAbsent:
		return "absent"
	case StrikeOff:
		return "false"
	default:
		return "on"
	}
}

// RunFormatting is the subset of a run's properties used by run filtering.
type RunFormatting struct {
	Color    string // w:color/@w:val as written, empty when absent
	HasColor bool
	Strike   StrikeState
}

// ColorIs reports whether the run colour equals hex, ignoring case.
func (f RunFormatting) ColorIs(hex string) bool {
	return f.HasColor && strings.EqualFold(f.Color, hex)
}

// FormattingOf reads the formatting of run from its w:rPr.
func FormattingOf(run *markup.Node) RunFormatting {
	var f RunFormatting
	rpr := run.Child(RPr)
	if rpr == nil {
		return f
	}
	if c := rpr.Child(Color); c != nil {
		f.Color, f.HasColor = c.Attr(Val)
	}
	if s := rpr.Child(Strike); s != nil {
		f.Strike = StrikeOn
		if v, ok := s.Attr(Val); ok && v == "false" {
			f.Strike = StrikeOff
		}
	}
	return f
}

// NewElement returns a detached element in the WordprocessingML namespace.
func NewElement(local string) *markup.Node {
	return markup.NewElement(Prefix, NS, local)
}
