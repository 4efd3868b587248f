package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/FocuswithJustin/redline/internal/testutil"
)

// Test helper functions

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(append([]string{"--env-file", ""}, args...), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func createConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "redline.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

const trackedBody = `<w:p><w:ins w:id="1"><w:r><w:t>Portfolio allocation is 40%</w:t></w:r></w:ins></w:p>`

func TestVersionCmd(t *testing.T) {
	code, out, _ := runCLI(t, "version")
	if code != 0 || !strings.Contains(out, "redline version "+version) {
		t.Errorf("version: code=%d out=%q", code, out)
	}
}

func TestAnnotateCmd(t *testing.T) {
	dir := t.TempDir()
	source := testutil.WriteDOCX(t, dir, "en.docx", trackedBody)
	target := testutil.WriteDOCX(t, dir, "zh.docx", testutil.Paragraph("Portfolio allocation is 40%."))
	output := filepath.Join(dir, "out.docx")

	code, out, errOut := runCLI(t, "annotate", "--source", source, "--target", target, "-o", output)
	if code != 0 {
		t.Fatalf("annotate exit %d: %s", code, errOut)
	}
	if !strings.Contains(out, "Annotations: 1 in 1 paragraphs") {
		t.Errorf("unexpected output:\n%s", out)
	}
	if _, err := os.Stat(output); err != nil {
		t.Errorf("output not written: %v", err)
	}
}

func TestAnnotateCmdFromConfig(t *testing.T) {
	dir := t.TempDir()
	source := testutil.WriteDOCX(t, dir, "en.docx", trackedBody)
	target := testutil.WriteDOCX(t, dir, "zh.docx", testutil.Paragraph("Portfolio allocation is 40%."))
	output := filepath.Join(dir, "out.docx")
	cfg := createConfig(t, dir, "annotate:\n  source: "+source+"\n  target: "+target+"\n  output: "+output+"\n")

	code, out, errOut := runCLI(t, "--config", cfg, "annotate", "--threshold", "100", "--scorer", "ratio")
	if code != 0 {
		t.Fatalf("annotate exit %d: %s", code, errOut)
	}
	if !strings.Contains(out, "Matched:     0") {
		t.Errorf("flags should override the config threshold:\n%s", out)
	}
}

func TestAnnotateCmdMissingPaths(t *testing.T) {
	code, _, errOut := runCLI(t, "annotate")
	if code != 1 || !strings.Contains(errOut, "annotate.source") {
		t.Errorf("code=%d stderr=%q", code, errOut)
	}
}

func TestAnnotateCmdStructuralFailure(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.docx")
	if err := os.WriteFile(bad, []byte("not a zip"), 0644); err != nil {
		t.Fatal(err)
	}
	target := testutil.WriteDOCX(t, dir, "zh.docx", testutil.Paragraph("x"))
	output := filepath.Join(dir, "out.docx")

	code, _, errOut := runCLI(t, "annotate", "--source", bad, "--target", target, "-o", output)
	if code != 1 || !strings.Contains(errOut, "annotate: open source") {
		t.Errorf("code=%d stderr=%q", code, errOut)
	}
	if _, err := os.Stat(output); !os.IsNotExist(err) {
		t.Error("output should not exist")
	}
}

func TestReformatCmd(t *testing.T) {
	dir := t.TempDir()
	input := testutil.WriteDOCX(t, dir, "in.docx", testutil.Paragraph("hello"))
	output := filepath.Join(dir, "out.docx")

	code, out, errOut := runCLI(t, "reformat", "--input", input, "-o", output, "--append", "Reviewed", "--provider", "identity")
	if code != 0 {
		t.Fatalf("reformat exit %d: %s", code, errOut)
	}
	if !strings.Contains(out, "Translated:   1") {
		t.Errorf("unexpected output:\n%s", out)
	}

	code, out, _ = runCLI(t, "diff", input, output)
	if code != 0 || !strings.Contains(out, "modified word/document.xml") || !strings.Contains(out, "1 parts differ") {
		t.Errorf("diff: code=%d out=%q", code, out)
	}
}

func TestReformatCmdGeminiWithoutKey(t *testing.T) {
	dir := t.TempDir()
	input := testutil.WriteDOCX(t, dir, "in.docx", testutil.Paragraph("hello"))
	cfg := createConfig(t, dir, "translator:\n  provider: gemini\n  api_key_env: REDLINE_TEST_UNSET_KEY\n")

	code, _, errOut := runCLI(t, "--config", cfg, "reformat", "--input", input, "-o", filepath.Join(dir, "out.docx"))
	if code != 1 || !strings.Contains(errOut, "API key") {
		t.Errorf("code=%d stderr=%q", code, errOut)
	}
}

func TestInspectCmd(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteDOCX(t, dir, "doc.docx", trackedBody+testutil.Paragraph("second"))

	code, out, errOut := runCLI(t, "inspect", path, "--xpath", "//w:ins")
	if code != 0 {
		t.Fatalf("inspect exit %d: %s", code, errOut)
	}
	for _, want := range []string{
		"(5 parts)",
		"word/document.xml",
		"store",
		"Paragraphs: 2",
		"Insertions: 1",
		"Deletions:  0",
		"XPath //w:ins: 1 nodes",
		`"Portfolio allocation is 40%"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestDiffCmdIdentical(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteDOCX(t, dir, "doc.docx", testutil.Paragraph("same"))
	code, out, _ := runCLI(t, "diff", path, path)
	if code != 0 || !strings.Contains(out, "No differences") {
		t.Errorf("code=%d out=%q", code, out)
	}
}

func TestUnknownCommand(t *testing.T) {
	code, _, _ := runCLI(t, "frobnicate")
	if code != 2 {
		t.Errorf("exit = %d, want 2", code)
	}
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	if err := loadEnv(filepath.Join(dir, "missing.env")); err != nil {
		t.Errorf("missing env file should be ignored: %v", err)
	}

	path := filepath.Join(dir, "test.env")
	if err := os.WriteFile(path, []byte("REDLINE_TEST_KEY=abc\n"), 0644); err != nil {
		t.Fatalf("failed to write env file: %v", err)
	}
	t.Setenv("REDLINE_TEST_KEY", "")
	os.Unsetenv("REDLINE_TEST_KEY")
	if err := loadEnv(path); err != nil {
		t.Fatalf("loadEnv failed: %v", err)
	}
	if got := os.Getenv("REDLINE_TEST_KEY"); got != "abc" {
		t.Errorf("REDLINE_TEST_KEY = %q, want abc", got)
	}

	err := loadEnv(dir)
	if err == nil {
		t.Fatal("loading a directory should fail")
	}
	if !strings.HasPrefix(err.Error(), "load "+dir+": ") {
		t.Errorf("error = %q, want load context", err)
	}
}
