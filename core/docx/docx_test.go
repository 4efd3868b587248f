package docx

import (
	"errors"
	"testing"

	rlerrors "github.com/FocuswithJustin/redline/core/errors"
	"github.com/FocuswithJustin/redline/core/markup"
	"github.com/FocuswithJustin/redline/internal/archive"
	"github.com/FocuswithJustin/redline/internal/testutil"
)

func mustLoad(t *testing.T, body string) *markup.Document {
	t.Helper()
	a, err := archive.Read(testutil.BuildDOCX(t, body))
	if err != nil {
		t.Fatalf("archive.Read failed: %v", err)
	}
	doc, err := Load(a, ContentPart)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return doc
}

func TestLoad(t *testing.T) {
	doc := mustLoad(t, testutil.Paragraph("Hello", " world"))
	body := BodyOf(doc)
	if body == nil {
		t.Fatal("BodyOf returned nil")
	}
	if got := TextOf(body); got != "Hello world" {
		t.Errorf("TextOf(body) = %q", got)
	}
}

func TestLoadMissingPart(t *testing.T) {
	a, err := archive.Read(testutil.BuildArchive(t, testutil.Deflated("other.xml", "<a/>")))
	if err != nil {
		t.Fatalf("archive.Read failed: %v", err)
	}
	_, err = Load(a, ContentPart)
	if !errors.Is(err, rlerrors.ErrArchiveUnreadable) {
		t.Errorf("error %v should match ErrArchiveUnreadable", err)
	}
	if !errors.Is(err, rlerrors.ErrNotFound) {
		t.Errorf("error %v should carry ErrNotFound", err)
	}
}

func TestLoadMalformedPart(t *testing.T) {
	a, err := archive.Read(testutil.BuildArchive(t, testutil.Deflated(ContentPart, "<w:document><w:body>")))
	if err != nil {
		t.Fatalf("archive.Read failed: %v", err)
	}
	_, err = Load(a, ContentPart)
	if !errors.Is(err, rlerrors.ErrMalformedMarkup) {
		t.Fatalf("error %v should match ErrMalformedMarkup", err)
	}
	var pe *rlerrors.ParseError
	if !errors.As(err, &pe) || pe.Path != ContentPart {
		t.Errorf("ParseError path = %+v, want %s", pe, ContentPart)
	}
}

func TestTextOfIncludesDeletedText(t *testing.T) {
	doc := mustLoad(t, `<w:p><w:r><w:t>kept </w:t></w:r><w:del><w:r><w:delText>gone</w:delText></w:r></w:del></w:p>`)
	p := doc.FindAll(P)[0]
	if got := TextOf(p); got != "kept gone" {
		t.Errorf("TextOf = %q, want %q", got, "kept gone")
	}
}

func TestFormattingOf(t *testing.T) {
	tests := []struct {
		name      string
		rpr       string
		wantColor string
		hasColor  bool
		strike    StrikeState
	}{
		{"no properties", ``, "", false, StrikeAbsent},
		{"colour only", `<w:rPr><w:color w:val="0000ff"/></w:rPr>`, "0000ff", true, StrikeAbsent},
		{"strike without value", `<w:rPr><w:strike/></w:rPr>`, "", false, StrikeOn},
		{"strike true", `<w:rPr><w:color w:val="0000FF"/><w:strike w:val="true"/></w:rPr>`, "0000FF", true, StrikeOn},
		{"strike false", `<w:rPr><w:strike w:val="false"/></w:rPr>`, "", false, StrikeOff},
		{"strike zero", `<w:rPr><w:strike w:val="0"/></w:rPr>`, "", false, StrikeOn},
		{"strike FALSE", `<w:rPr><w:strike w:val="FALSE"/></w:rPr>`, "", false, StrikeOn},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := mustLoad(t, `<w:p><w:r>`+tt.rpr+`<w:t>x</w:t></w:r></w:p>`)
			f := FormattingOf(doc.FindAll(R)[0])
			if f.Color != tt.wantColor || f.HasColor != tt.hasColor {
				t.Errorf("colour = %q/%v, want %q/%v", f.Color, f.HasColor, tt.wantColor, tt.hasColor)
			}
			if f.Strike != tt.strike {
				t.Errorf("strike = %v, want %v", f.Strike, tt.strike)
			}
		})
	}
}

func TestColorIs(t *testing.T) {
	f := RunFormatting{Color: "0000ff", HasColor: true}
	if !f.ColorIs("0000FF") {
		t.Error("colour comparison should ignore case")
	}
	if f.ColorIs("FF0000") {
		t.Error("different colour should not match")
	}
	if (RunFormatting{}).ColorIs("") {
		t.Error("absent colour should never match")
	}
}

func TestStrikeStateString(t *testing.T) {
	if StrikeAbsent.String() != "absent" || StrikeOff.String() != "false" || StrikeOn.String() != "on" {
		t.Error("unexpected StrikeState names")
	}
}

func TestNewElement(t *testing.T) {
	p := NewElement("p")
	if !p.Is(P) {
		t.Errorf("NewElement(p) name = %v", p.Name())
	}
}
