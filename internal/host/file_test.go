package host

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/hyperjump/quill/internal/models"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func TestFileHost_MarkdownPersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "story.md")
	writeFile(t, path, "# Chapter One\n\nAnna sailed west.\n")

	h, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	ps, _ := h.ReadParagraphs(ctx)
	if len(ps) != 2 || ps[0].Style != models.StyleHeading1 {
		t.Fatalf("paragraphs = %+v", ps)
	}

	if _, err := h.FindAndReplace(ctx, "west", "east", models.FindReplaceOptions{}); err != nil {
		t.Fatal(err)
	}
	if _, err := h.InsertAfterHeading(ctx, "Chapter One", "It was early."); err != nil {
		t.Fatal(err)
	}
	want := "# Chapter One\n\nIt was early.\n\nAnna sailed east.\n"
	if got := readFile(t, path); got != want {
		t.Errorf("file = %q, want %q", got, want)
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %v", entries)
	}
}

func TestFileHost_TextFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	writeFile(t, path, "one\n\ntwo\n")
	h, err := OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := h.InsertAtStart(context.Background(), "zero"); err != nil {
		t.Fatal(err)
	}
	if got := readFile(t, path); got != "zero\n\none\n\ntwo\n" {
		t.Errorf("file = %q", got)
	}
}

func TestFileHost_Reload(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "doc.md")
	writeFile(t, path, "Body.\n")
	h, err := OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := h.FormatParagraphs(ctx, models.ParagraphCriteria{}, models.ParagraphFormatting{Alignment: "Center"}); err != nil {
		t.Fatal(err)
	}

	changed, err := h.Reload(ctx)
	if err != nil || changed {
		t.Errorf("Reload of unchanged file = %v, %v", changed, err)
	}
	if f, _ := h.Format(0); f.Alignment != "Center" {
		t.Error("formatting lost on no-op reload")
	}

	writeFile(t, path, "# New\n\nEdited elsewhere.\n")
	changed, err = h.Reload(ctx)
	if err != nil || !changed {
		t.Fatalf("Reload = %v, %v", changed, err)
	}
	ps, _ := h.ReadParagraphs(ctx)
	if len(ps) != 2 || ps[1].Text != "Edited elsewhere." {
		t.Errorf("paragraphs = %+v", ps)
	}
}

func TestOpenFile_Errors(t *testing.T) {
	dir := t.TempDir()
	if _, err := OpenFile(filepath.Join(dir, "missing.md")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file error = %v", err)
	}
	if _, err := OpenFile(filepath.Join(dir, "report.docx")); !errors.Is(err, ErrReadOnly) {
		t.Errorf("docx error = %v, want ErrReadOnly", err)
	}
}
