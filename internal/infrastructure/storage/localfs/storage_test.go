package localfs

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/hrcore/talent-match/internal/core/domain"
)

func TestSaveAndOpenRoundTrip(t *testing.T) {
	storage, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if err := storage.Save(context.Background(), "abc_cv.pdf", strings.NewReader("pdf bytes")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	reader, err := storage.Open(context.Background(), "abc_cv.pdf")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "pdf bytes" {
		t.Fatalf("unexpected content %q", data)
	}
}

func TestOpenMissingKey(t *testing.T) {
	storage, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	_, err = storage.Open(context.Background(), "missing.pdf")
	if !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRejectsTraversalKeys(t *testing.T) {
	storage, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	for _, key := range []string{"../escape.pdf", "a/b.pdf", ".hidden", ""} {
		if err := storage.Save(context.Background(), key, strings.NewReader("x")); !domain.IsKind(err, domain.ErrInvalidInput) {
			t.Fatalf("key %q: expected ErrInvalidInput, got %v", key, err)
		}
	}
}
