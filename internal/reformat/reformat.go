// Package reformat translates a document's text, drops struck-through runs
// of a given colour and appends one formatted closing paragraph.
package reformat

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/FocuswithJustin/redline/core/docx"
	"github.com/FocuswithJustin/redline/core/errors"
	"github.com/FocuswithJustin/redline/core/markup"
	"github.com/FocuswithJustin/redline/internal/logging"
	"github.com/FocuswithJustin/redline/internal/translate"
)

// Default formatting constants.
const (
	DefaultRemovalColor      = "0000FF"
	DefaultNewParagraphColor = "0000FF"
)

var xmlSpace = markup.Name{Space: markup.XMLNamespace, Local: "space"}

// Options control one reformat run.
type Options struct {
	TargetLocale      string
	RemovalColor      string // Runs in this colour that are struck through are removed
	NewParagraphColor string
	AppendText        string // Text of the appended paragraph, translated first
	// Workers is the number of concurrent translation calls. Results are
	// still applied in document order. Zero or one means sequential.
	Workers int
}

func (o Options) withDefaults() Options {
	if o.RemovalColor == "" {
		o.RemovalColor = DefaultRemovalColor
	}
	if o.NewParagraphColor == "" {
		o.NewParagraphColor = DefaultNewParagraphColor
	}
	return o
}

// Report summarizes one run.
type Report struct {
	Translated       int // Text leaves replaced by a translation
	Failed           int // Text leaves kept because translation failed
	RemovedRuns      int
	AppendTranslated bool // Whether the appended text was translated
}

// Run applies the four reformat steps to doc in place: translate every
// non-blank text leaf, remove matching runs, translate the append text and
// append it as a new last paragraph of the body. Translation failures are
// absorbed and counted; only a document without a body is an error.
func Run(ctx context.Context, doc *markup.Document, tr translate.Translator, opts Options) (Report, error) {
	opts = opts.withDefaults()
	var report Report

	body := docx.BodyOf(doc)
	if body == nil {
		return report, errors.NewParse("XML", docx.ContentPart, "document has no body", nil)
	}

	report.Translated, report.Failed = translateLeaves(ctx, doc, tr, opts)
	report.RemovedRuns = RemoveRuns(doc, opts.RemovalColor)

	text := opts.AppendText
	if strings.TrimSpace(text) != "" {
		if translated, err := tr.Translate(ctx, text, opts.TargetLocale); err != nil {
			logging.TranslationFailed(ctx, -1, err, "text", "append")
		} else {
			text = translated
			report.AppendTranslated = true
		}
	}
	AppendParagraph(body, text, opts.NewParagraphColor)

	return report, nil
}

type outcome struct {
	text string
	err  error
}

func translateLeaves(ctx context.Context, doc *markup.Document, tr translate.Translator, opts Options) (translated, failed int) {
	var leaves []*markup.Node
	for _, leaf := range markup.Leaves(doc.Root(), docx.TextLeaves...) {
		if strings.TrimSpace(leaf.Text()) != "" {
			leaves = append(leaves, leaf)
		}
	}

	apply := func(i int, r outcome) {
		if r.err != nil {
			failed++
			logging.TranslationFailed(ctx, i, r.err)
			return
		}
		leaves[i].SetText(r.text)
		translated++
	}

	if opts.Workers <= 1 {
		for i, leaf := range leaves {
			out, err := tr.Translate(ctx, leaf.Text(), opts.TargetLocale)
			apply(i, outcome{out, err})
		}
		return translated, failed
	}

	sources := make([]string, len(leaves))
	for i, leaf := range leaves {
		sources[i] = leaf.Text()
	}
	results := make([]outcome, len(leaves))
	var g errgroup.Group
	g.SetLimit(opts.Workers)
	for i, src := range sources {
		g.Go(func() error {
			out, err := tr.Translate(ctx, src, opts.TargetLocale)
			results[i] = outcome{out, err}
			return nil
		})
	}
	_ = g.Wait()

	for i, r := range results {
		apply(i, r)
	}
	return translated, failed
}

// RemoveRuns removes every run whose colour equals color (ignoring case) and
// whose strike marker is on. A strike marker with w:val="false" or no strike
// marker at all keeps the run. It returns the number of runs removed.
func RemoveRuns(doc *markup.Document, color string) int {
	var doomed []*markup.Node
	for _, run := range doc.FindAll(docx.R) {
		f := docx.FormattingOf(run)
		if f.ColorIs(color) && f.Strike == docx.StrikeOn {
			doomed = append(doomed, run)
		}
	}
	for _, run := range doomed {
		run.Remove()
	}
	return len(doomed)
}

// AppendParagraph adds w:p/w:r holding text, coloured and single-underlined,
// as the last child of body.
func AppendParagraph(body *markup.Node, text, color string) *markup.Node {
	p := docx.NewElement("p")
	r := p.AppendChild(docx.NewElement("r"))

	rpr := r.AppendChild(docx.NewElement("rPr"))
	rpr.AppendChild(docx.NewElement("color")).SetAttr(docx.Prefix, docx.Val, color)
	rpr.AppendChild(docx.NewElement("u")).SetAttr(docx.Prefix, docx.Val, "single")

	t := r.AppendChild(docx.NewElement("t"))
	t.SetAttr("xml", xmlSpace, "preserve")
	t.SetText(text)

	return body.AppendChild(p)
}
