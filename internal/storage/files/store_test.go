package files

import (
	"archive/zip"
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	domainErrors "github.com/polkiloo/orderdesk/internal/domain/errors"
)

func newTestStore(t *testing.T, maxSize int64) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "uploads"), filepath.Join(t.TempDir(), "delivered"), maxSize)
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	return store
}

func TestEnsureFolderIdempotent(t *testing.T) {
	store := newTestStore(t, 1024)

	first, err := store.EnsureFolder("100-0101-abcd", 100, NamespaceSubmitted)
	if err != nil {
		t.Fatalf("ensure folder: %v", err)
	}
	second, err := store.EnsureFolder("100-0101-abcd", 100, NamespaceSubmitted)
	if err != nil {
		t.Fatalf("ensure folder twice: %v", err)
	}
	if first.Path != second.Path {
		t.Fatalf("expected stable folder path, got %q and %q", first.Path, second.Path)
	}
	if !strings.Contains(first.Path, filepath.Join("100", "100-0101-abcd")) {
		t.Fatalf("unexpected folder layout %q", first.Path)
	}
}

func TestAddFileCollisionSuffix(t *testing.T) {
	store := newTestStore(t, 1024)
	folder, err := store.EnsureFolder("o1", 7, NamespaceSubmitted)
	if err != nil {
		t.Fatalf("ensure folder: %v", err)
	}

	names := make([]string, 0, 3)
	for i := 0; i < 3; i++ {
		stored, err := store.AddFile(folder, strings.NewReader("content"), "task.pdf")
		if err != nil {
			t.Fatalf("add file %d: %v", i, err)
		}
		names = append(names, stored.Name)
	}

	if names[0] != "task.pdf" || names[1] != "task_1.pdf" || names[2] != "task_2.pdf" {
		t.Fatalf("unexpected collision names %v", names)
	}
}

func TestAddFileSizeBoundary(t *testing.T) {
	const maxSize = 64
	store := newTestStore(t, maxSize)
	folder, err := store.EnsureFolder("o1", 7, NamespaceSubmitted)
	if err != nil {
		t.Fatalf("ensure folder: %v", err)
	}

	if _, err := store.AddFile(folder, bytes.NewReader(make([]byte, maxSize)), "exact.bin"); err != nil {
		t.Fatalf("file of exactly max size should be accepted: %v", err)
	}

	_, err = store.AddFile(folder, bytes.NewReader(make([]byte, maxSize+1)), "over.bin")
	if !errors.Is(err, domainErrors.ErrFileTooLarge) {
		t.Fatalf("expected ErrFileTooLarge, got %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(folder.Path, "over.bin")); !errors.Is(statErr, os.ErrNotExist) {
		t.Fatalf("expected no partial file on disk, stat returned %v", statErr)
	}
}

func TestAddFileEmptyWrite(t *testing.T) {
	store := newTestStore(t, 64)
	folder, err := store.EnsureFolder("o1", 7, NamespaceSubmitted)
	if err != nil {
		t.Fatalf("ensure folder: %v", err)
	}

	_, err = store.AddFile(folder, strings.NewReader(""), "empty.txt")
	if !errors.Is(err, domainErrors.ErrEmptyWrite) {
		t.Fatalf("expected ErrEmptyWrite, got %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(folder.Path, "empty.txt")); !errors.Is(statErr, os.ErrNotExist) {
		t.Fatalf("expected empty file to be removed, stat returned %v", statErr)
	}
}

func TestAddFileSanitizesName(t *testing.T) {
	store := newTestStore(t, 1024)
	folder, err := store.EnsureFolder("o1", 7, NamespaceSubmitted)
	if err != nil {
		t.Fatalf("ensure folder: %v", err)
	}

	stored, err := store.AddFile(folder, strings.NewReader("x"), "../../escape.txt")
	if err != nil {
		t.Fatalf("add file: %v", err)
	}
	if stored.Name != "escape.txt" {
		t.Fatalf("expected sanitized name escape.txt, got %q", stored.Name)
	}
	if filepath.Dir(stored.Path) != folder.Path {
		t.Fatalf("file escaped folder: %q", stored.Path)
	}
}

func TestListFiles(t *testing.T) {
	store := newTestStore(t, 1024)
	folder, err := store.EnsureFolder("o1", 7, NamespaceDelivered)
	if err != nil {
		t.Fatalf("ensure folder: %v", err)
	}

	missing := store.Folder("absent", 7, NamespaceDelivered)
	if listed, err := store.ListFiles(missing); err != nil || listed != nil {
		t.Fatalf("expected empty listing for absent folder, got %v, %v", listed, err)
	}

	for _, name := range []string{"a.txt", "b.txt"} {
		if _, err := store.AddFile(folder, strings.NewReader(name), name); err != nil {
			t.Fatalf("add %s: %v", name, err)
		}
	}

	listed, err := store.ListFiles(folder)
	if err != nil {
		t.Fatalf("list files: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("expected 2 files, got %d", len(listed))
	}
}

func TestArchiveZipRoundTrip(t *testing.T) {
	store := newTestStore(t, 1024)
	folder, err := store.EnsureFolder("o1", 7, NamespaceDelivered)
	if err != nil {
		t.Fatalf("ensure folder: %v", err)
	}

	expected := map[string]string{
		"report.txt": "final report",
		"data.csv":   "a,b,c",
	}
	for name, content := range expected {
		if _, err := store.AddFile(folder, strings.NewReader(content), name); err != nil {
			t.Fatalf("add %s: %v", name, err)
		}
	}

	stored, err := store.ListFiles(folder)
	if err != nil {
		t.Fatalf("list files: %v", err)
	}

	archive, err := ArchiveZip(stored)
	if err != nil {
		t.Fatalf("archive: %v", err)
	}

	reader, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}

	extracted := make(map[string]string, len(reader.File))
	for _, entry := range reader.File {
		rc, err := entry.Open()
		if err != nil {
			t.Fatalf("open entry %s: %v", entry.Name, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("read entry %s: %v", entry.Name, err)
		}
		extracted[entry.Name] = string(content)
	}

	if len(extracted) != len(expected) {
		t.Fatalf("expected %d entries, got %d", len(expected), len(extracted))
	}
	for name, content := range expected {
		if extracted[name] != content {
			t.Fatalf("entry %s: expected %q, got %q", name, content, extracted[name])
		}
	}
}

func TestMoveReKeysFolder(t *testing.T) {
	store := newTestStore(t, 1024)
	folder, err := store.EnsureFolder("draft-1", 7, NamespaceSubmitted)
	if err != nil {
		t.Fatalf("ensure folder: %v", err)
	}
	if _, err := store.AddFile(folder, strings.NewReader("x"), "task.pdf"); err != nil {
		t.Fatalf("add file: %v", err)
	}

	moved, err := store.Move(folder, "7-3008-ab12", 7)
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if moved.OrderID != "7-3008-ab12" {
		t.Fatalf("unexpected moved order id %q", moved.OrderID)
	}
	if _, err := os.Stat(filepath.Join(moved.Path, "task.pdf")); err != nil {
		t.Fatalf("expected file under new key, stat returned %v", err)
	}
	if _, err := os.Stat(folder.Path); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected old folder gone, stat returned %v", err)
	}
}

func TestMoveAbsentFolder(t *testing.T) {
	store := newTestStore(t, 1024)
	folder := store.Folder("never-created", 7, NamespaceSubmitted)

	moved, err := store.Move(folder, "o2", 7)
	if err != nil {
		t.Fatalf("move of absent folder should not fail: %v", err)
	}
	if moved.OrderID != "o2" {
		t.Fatalf("unexpected order id %q", moved.OrderID)
	}
}

func TestPurgeIdempotent(t *testing.T) {
	store := newTestStore(t, 1024)
	folder, err := store.EnsureFolder("o1", 7, NamespaceSubmitted)
	if err != nil {
		t.Fatalf("ensure folder: %v", err)
	}
	if _, err := store.AddFile(folder, strings.NewReader("x"), "a.txt"); err != nil {
		t.Fatalf("add file: %v", err)
	}

	if err := store.Purge(folder); err != nil {
		t.Fatalf("purge: %v", err)
	}
	if _, err := os.Stat(folder.Path); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected folder removed, stat returned %v", err)
	}
	if err := store.Purge(folder); err != nil {
		t.Fatalf("purge of absent folder should not fail: %v", err)
	}
}
