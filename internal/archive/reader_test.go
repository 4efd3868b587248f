package archive

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	rlerrors "github.com/FocuswithJustin/redline/core/errors"
	"github.com/FocuswithJustin/redline/internal/testutil"
)

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		setup   func(t *testing.T) string
		wantErr bool
	}{
		{
			name: "docx archive",
			setup: func(t *testing.T) string {
				return testutil.WriteDOCX(t, dir, "ok.docx", testutil.Paragraph("Hello"))
			},
		},
		{
			name: "not a zip",
			setup: func(t *testing.T) string {
				path := filepath.Join(dir, "text.docx")
				os.WriteFile(path, []byte("not a zip"), 0644)
				return path
			},
			wantErr: true,
		},
		{
			name: "truncated zip",
			setup: func(t *testing.T) string {
				data := testutil.BuildDOCX(t, testutil.Paragraph("Hello"))
				path := filepath.Join(dir, "short.docx")
				os.WriteFile(path, data[:len(data)/2], 0644)
				return path
			},
			wantErr: true,
		},
		{
			name: "nonexistent file",
			setup: func(t *testing.T) string {
				return filepath.Join(dir, "missing.docx")
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := tt.setup(t)
			a, err := Open(path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Open() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, rlerrors.ErrArchiveUnreadable) {
					t.Errorf("error %v should match ErrArchiveUnreadable", err)
				}
				return
			}
			if a.Path() != path {
				t.Errorf("Path() = %q, want %q", a.Path(), path)
			}
		})
	}
}

func TestReadPartsInOrder(t *testing.T) {
	data := testutil.BuildArchive(t,
		testutil.Deflated("b.xml", "<b/>"),
		testutil.Stored("a.bin", "raw"),
		testutil.Deflated("dir/", ""),
		testutil.Deflated("dir/c.txt", "ccc"),
	)

	a, err := Read(data)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	want := []string{"b.xml", "a.bin", "dir/", "dir/c.txt"}
	got := a.Names()
	if len(got) != len(want) {
		t.Fatalf("Names() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Names()[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	if content, ok := a.Part("dir/c.txt"); !ok || string(content) != "ccc" {
		t.Errorf("Part(dir/c.txt) = %q, %v", content, ok)
	}
	if _, ok := a.Part("missing"); ok {
		t.Error("Part(missing) should report false")
	}
	if !a.Parts()[2].IsDir() {
		t.Error("dir/ should be a directory entry")
	}
	if a.Parts()[1].Method() != 0 {
		t.Errorf("a.bin method = %d, want stored", a.Parts()[1].Method())
	}
	if a.Len() != 4 {
		t.Errorf("Len() = %d, want 4", a.Len())
	}
}

func TestReadEmptyInput(t *testing.T) {
	_, err := Read(nil)
	if !errors.Is(err, rlerrors.ErrArchiveUnreadable) {
		t.Errorf("Read(nil) error = %v, want ErrArchiveUnreadable", err)
	}
}
