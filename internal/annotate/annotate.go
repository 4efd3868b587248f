// Package annotate writes tracked-change markers into a target document.
//
// For each paragraph and each matched change, the annotation suffix is
// inserted right after the first occurrence of the matched text. The suffix
// goes into the text leaf that holds the occurrence's last character, so the
// run keeps its formatting and the rest of the paragraph is untouched.
// Applying twice appends the suffixes twice.
package annotate

import (
	"strings"

	"github.com/FocuswithJustin/redline/core/docx"
	"github.com/FocuswithJustin/redline/core/markup"
	"github.com/FocuswithJustin/redline/internal/extract"
	"github.com/FocuswithJustin/redline/internal/fuzzy"
)

var xmlSpace = markup.Name{Space: markup.XMLNamespace, Local: "space"}

// Suffix returns the literal marker appended after a matched occurrence.
func Suffix(kind extract.Kind, text string) string {
	if kind == extract.Deletion {
		return "（刪除內容: " + text + "）"
	}
	return "（新增內容: " + text + "）"
}

// Stats summarizes one Apply call.
type Stats struct {
	Paragraphs  int // Paragraphs that received at least one suffix
	Annotations int // Suffixes inserted in total
}

// Apply annotates doc in place. matches maps a change's text to the
// paragraph text it matched; changes without an entry are skipped.
func Apply(doc *markup.Document, changes []extract.Change, matches map[string]fuzzy.Match) Stats {
	var stats Stats
	for _, p := range doc.FindAll(docx.P) {
		leaves := markup.Leaves(p, docx.TextLeaves...)
		if len(leaves) == 0 {
			continue
		}

		touched := false
		for _, c := range changes {
			m, ok := matches[c.Text]
			if !ok || m.Text == "" {
				continue
			}
			if insertAfter(leaves, m.Text, Suffix(c.Kind, c.Text)) {
				stats.Annotations++
				touched = true
			}
		}
		if touched {
			stats.Paragraphs++
		}
	}
	return stats
}

// insertAfter places suffix right after the first occurrence of needle in
// the concatenated text of leaves.
func insertAfter(leaves []*markup.Node, needle, suffix string) bool {
	texts := make([]string, len(leaves))
	for i, leaf := range leaves {
		texts[i] = leaf.Text()
	}

	at := strings.Index(strings.Join(texts, ""), needle)
	if at < 0 {
		return false
	}
	end := at + len(needle)

	// Find the leaf holding byte end-1, the last byte of the occurrence.
	offset := 0
	for i, text := range texts {
		if end <= offset+len(text) {
			cut := end - offset
			leaves[i].SetText(text[:cut] + suffix + text[cut:])
			leaves[i].SetAttr("xml", xmlSpace, "preserve")
			return true
		}
		offset += len(text)
	}
	return false
}
