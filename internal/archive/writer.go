package archive

import (
	"archive/zip"
	"bytes"
	"sort"
	"strings"

	"github.com/FocuswithJustin/redline/core/errors"
)

// Repackage writes the archive back to bytes. Parts named in replacements
// are written with the replacement content; every other part is copied raw
// with its original header. Relative order is preserved. A replacement for
// a part the archive does not contain is rejected.
func (a *Archive) Repackage(replacements map[string][]byte) ([]byte, error) {
	var unknown []string
	for name := range replacements {
		if !a.Has(name) {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, errors.NewValidation("replacements", "unknown parts: "+strings.Join(unknown, ", "))
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	if a.comment != "" {
		if err := zw.SetComment(a.comment); err != nil {
			return nil, errors.Wrap(err, "set comment")
		}
	}

	for _, p := range a.parts {
		var err error
		if data, ok := replacements[p.Name]; ok {
			err = writeReplaced(zw, p, data)
		} else {
			err = writeRaw(zw, p)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "write entry %s", p.Name)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, errors.Wrap(err, "close archive")
	}
	return buf.Bytes(), nil
}

func writeRaw(zw *zip.Writer, p Part) error {
	fh := p.header
	w, err := zw.CreateRaw(&fh)
	if err != nil {
		return err
	}
	if len(p.raw) == 0 {
		return nil
	}
	_, err = w.Write(p.raw)
	return err
}

// writeReplaced keeps the entry's name, timestamps, comment and attributes
// and lets the writer recompute sizes and checksum. Stored entries stay
// stored; everything else is deflated.
func writeReplaced(zw *zip.Writer, p Part, data []byte) error {
	method := zip.Deflate
	if p.header.Method == zip.Store {
		method = zip.Store
	}
	fh := &zip.FileHeader{
		Name:           p.header.Name,
		Comment:        p.header.Comment,
		Method:         method,
		Modified:       p.header.Modified,
		ExternalAttrs:  p.header.ExternalAttrs,
		CreatorVersion: p.header.CreatorVersion,
		NonUTF8:        p.header.NonUTF8,
	}
	w, err := zw.CreateHeader(fh)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
