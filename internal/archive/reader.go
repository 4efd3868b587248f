// Package archive reads zip-packaged documents into an ordered set of parts
// and writes them back with selected parts replaced.
//
// Untouched parts are copied with their original headers and compressed
// bytes, so a repackage without replacements reproduces every part exactly.
package archive

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/FocuswithJustin/redline/core/errors"
)

// Part is one named entry of an archive.
type Part struct {
	Name string
	Data []byte

	header zip.FileHeader
	raw    []byte // compressed bytes exactly as stored
}

// IsDir reports whether the entry is a directory marker.
func (p Part) IsDir() bool {
	return p.header.FileInfo().IsDir()
}

// Method returns the entry's compression method.
func (p Part) Method() uint16 {
	return p.header.Method
}

// Archive is an opened container. Parts keep their stored order.
type Archive struct {
	path    string
	comment string
	parts   []Part
	index   map[string]int
}

// Open reads the archive at path. Any failure to read the file or decode it
// as a zip archive is reported as errors.ErrArchiveUnreadable.
func Open(path string) (*Archive, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewArchive(path, "read file", err)
	}
	a, err := read(path, data)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Read decodes an in-memory archive.
func Read(data []byte) (*Archive, error) {
	return read("", data)
}

func read(path string, data []byte) (*Archive, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, errors.NewArchive(path, "not a zip archive", err)
	}

	a := &Archive{
		path:    path,
		comment: zr.Comment,
		parts:   make([]Part, 0, len(zr.File)),
		index:   make(map[string]int, len(zr.File)),
	}
	for _, f := range zr.File {
		if _, dup := a.index[f.Name]; dup {
			return nil, errors.NewArchive(path, "duplicate entry "+f.Name, nil)
		}
		part, err := readPart(f)
		if err != nil {
			return nil, errors.NewArchive(path, fmt.Sprintf("read entry %s", f.Name), err)
		}
		a.index[f.Name] = len(a.parts)
		a.parts = append(a.parts, part)
	}
	return a, nil
}

func readPart(f *zip.File) (Part, error) {
	if strings.HasSuffix(f.Name, "/") {
		return Part{Name: f.Name, header: f.FileHeader}, nil
	}

	rc, err := f.Open()
	if err != nil {
		return Part{}, err
	}
	content, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		return Part{}, err
	}

	rawReader, err := f.OpenRaw()
	if err != nil {
		return Part{}, err
	}
	raw, err := io.ReadAll(rawReader)
	if err != nil {
		return Part{}, err
	}

	return Part{
		Name:   f.Name,
		Data:   content,
		header: f.FileHeader,
		raw:    raw,
	}, nil
}

// Path returns the file the archive was opened from, or "" for in-memory archives.
func (a *Archive) Path() string {
	return a.path
}

// Parts returns the parts in stored order. Callers must not modify Data.
func (a *Archive) Parts() []Part {
	return a.parts
}

// Names returns the part names in stored order.
func (a *Archive) Names() []string {
	names := make([]string, len(a.parts))
	for i, p := range a.parts {
		names[i] = p.Name
	}
	return names
}

// Part returns the uncompressed content of the named part.
func (a *Archive) Part(name string) ([]byte, bool) {
	i, ok := a.index[name]
	if !ok {
		return nil, false
	}
	return a.parts[i].Data, true
}

// Has reports whether the archive contains the named part.
func (a *Archive) Has(name string) bool {
	_, ok := a.index[name]
	return ok
}

// Len returns the number of parts.
func (a *Archive) Len() int {
	return len(a.parts)
}
