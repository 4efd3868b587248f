// Package testutil builds in-memory .docx fixtures for package tests.
package testutil

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// Entry is one part of a fixture archive.
type Entry struct {
	Name   string
	Data   string
	Method uint16 // zip.Store (the zero value) or zip.Deflate
}

// Stored marks an entry to be written without compression.
func Stored(name, data string) Entry {
	return Entry{Name: name, Data: data, Method: zip.Store}
}

// Deflated marks an entry to be written deflated.
func Deflated(name, data string) Entry {
	return Entry{Name: name, Data: data, Method: zip.Deflate}
}

// Document wraps body content in a w:document/w:body envelope declaring the
// WordprocessingML namespace.
func Document(body string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n" +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main" ` +
		`xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">` +
		`<w:body>` + body + `</w:body></w:document>`
}

// BuildArchive writes entries into a zip in the given order.
func BuildArchive(t testing.TB, entries ...Entry) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	modified := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	for _, e := range entries {
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     e.Name,
			Method:   e.Method,
			Modified: modified,
		})
		if err != nil {
			t.Fatalf("create zip entry %s: %v", e.Name, err)
		}
		if _, err := w.Write([]byte(e.Data)); err != nil {
			t.Fatalf("write %s: %v", e.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

// BuildDOCX returns a minimal .docx whose document part holds body, plus the
// content-types, relationships and styles parts Word expects.
func BuildDOCX(t testing.TB, body string) []byte {
	t.Helper()
	return BuildArchive(t,
		Deflated("[Content_Types].xml", contentTypes),
		Deflated("_rels/.rels", rootRels),
		Deflated("word/document.xml", Document(body)),
		Deflated("word/styles.xml", styles),
		Stored("docProps/thumbnail.bin", "\x00\x01\x02binary\xff"),
	)
}

// WriteDOCX writes a fixture to dir/name and returns its path.
func WriteDOCX(t testing.TB, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, BuildDOCX(t, body), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

// Paragraph returns a w:p with one plain run per text argument.
func Paragraph(texts ...string) string {
	s := "<w:p>"
	for _, text := range texts {
		s += Run(text)
	}
	return s + "</w:p>"
}

// Run returns a plain w:r holding text.
func Run(text string) string {
	return `<w:r><w:t xml:space="preserve">` + text + `</w:t></w:r>`
}

const contentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"><Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/><Default Extension="xml" ContentType="application/xml"/><Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/></Types>`

const rootRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/></Relationships>`

const styles = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:docDefaults/></w:styles>`
