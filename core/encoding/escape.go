// Package encoding provides the XML escaping used when markup trees are
// written back into a container part.
package encoding

import "strings"

var textReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	"\r", "&#xD;",
)

var attrReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	"\"", "&quot;",
	"\t", "&#x9;",
	"\n", "&#xA;",
	"\r", "&#xD;",
)

// EscapeXMLText escapes character data. Quotes are left alone and carriage
// returns are written as references so parsers do not normalise them away.
func EscapeXMLText(s string) string {
	return textReplacer.Replace(s)
}

// EscapeXMLAttr escapes text for a double-quoted attribute value.
// Whitespace control characters are written as references so attribute
// value normalisation on re-parse yields the same string.
func EscapeXMLAttr(s string) string {
	return attrReplacer.Replace(s)
}

// EscapeComment makes s safe inside <!-- -->. A comment may not contain "--".
func EscapeComment(s string) string {
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "- -")
	}
	if strings.HasSuffix(s, "-") {
		s += " "
	}
	return s
}

// EscapeCDATA splits any "]]>" so the content survives inside a CDATA section.
func EscapeCDATA(s string) string {
	return strings.ReplaceAll(s, "]]>", "]]]]><![CDATA[>")
}
