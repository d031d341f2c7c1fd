package storefs

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goliatone/go-docgen/docgen"
	"github.com/google/go-cmp/cmp"
)

func put(t *testing.T, store *Store, key, body string) docgen.ArtifactRef {
	t.Helper()
	ref, err := store.Put(context.Background(), key, bytes.NewBufferString(body), docgen.ArtifactMeta{})
	if err != nil {
		t.Fatalf("put %s: %v", key, err)
	}
	return ref
}

func TestStore_PutOpenDelete(t *testing.T) {
	root := t.TempDir()
	store := NewStore(root)
	store.Now = func() time.Time { return time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC) }

	ref, err := store.Put(context.Background(), "minit/MINIT_MESYUARAT_3_2025.docx", bytes.NewBufferString("hello"), docgen.ArtifactMeta{
		ContentType: docgen.FormatDOCX.ContentType(),
	})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if ref.Meta.Size != 5 || ref.Meta.Filename != "MINIT_MESYUARAT_3_2025.docx" {
		t.Fatalf("unexpected meta %+v", ref.Meta)
	}
	if !ref.Meta.CreatedAt.Equal(store.Now()) {
		t.Fatalf("expected created at from clock, got %v", ref.Meta.CreatedAt)
	}

	reader, meta, err := store.Open(context.Background(), ref.Key)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	data, err := io.ReadAll(reader)
	_ = reader.Close()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "hello" {
		t.Fatalf("expected payload, got %q", string(data))
	}
	if meta.ContentType != docgen.FormatDOCX.ContentType() {
		t.Fatalf("expected content type from sidecar, got %q", meta.ContentType)
	}

	if err := store.Delete(context.Background(), ref.Key); err != nil {
		t.Fatalf("delete: %v", err)
	}
	_, _, err = store.Open(context.Background(), ref.Key)
	if docgen.KindFromError(err) != docgen.KindNotFound {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestStore_KeepsExistingFiles(t *testing.T) {
	store := NewStore(t.TempDir())
	first := put(t, store, "OPR_HARI_SUKAN.pdf", "one")
	second := put(t, store, "OPR_HARI_SUKAN.pdf", "two")
	third := put(t, store, "OPR_HARI_SUKAN.pdf", "three")

	got := []string{first.Key, second.Key, third.Key}
	want := []string{"OPR_HARI_SUKAN.pdf", "OPR_HARI_SUKAN (1).pdf", "OPR_HARI_SUKAN (2).pdf"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("keys mismatch:\n%s", diff)
	}

	store.Overwrite = true
	if ref := put(t, store, "OPR_HARI_SUKAN.pdf", "four"); ref.Key != "OPR_HARI_SUKAN.pdf" {
		t.Fatalf("overwrite keeps the key, got %q", ref.Key)
	}
	p, _ := store.Path("OPR_HARI_SUKAN.pdf")
	if data, _ := os.ReadFile(p); string(data) != "four" {
		t.Fatalf("expected overwritten payload, got %q", data)
	}
}

func TestStore_List(t *testing.T) {
	store := NewStore(t.TempDir())
	put(t, store, "b.pdf", "bb")
	put(t, store, "a/x.docx", "x")

	refs, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var keys []string
	for _, ref := range refs {
		keys = append(keys, ref.Key)
	}
	if diff := cmp.Diff([]string{"a/x.docx", "b.pdf"}, keys); diff != "" {
		t.Fatalf("keys mismatch (sidecars must be hidden):\n%s", diff)
	}
	if refs[1].Meta.Size != 2 {
		t.Fatalf("expected size from sidecar, got %d", refs[1].Meta.Size)
	}

	empty := NewStore(filepath.Join(t.TempDir(), "missing"))
	if refs, err := empty.List(context.Background()); err != nil || len(refs) != 0 {
		t.Fatalf("missing root lists nothing, got %v %v", refs, err)
	}
}

func TestStore_RejectsEscapingKeys(t *testing.T) {
	store := NewStore(t.TempDir())
	for _, key := range []string{"", "/", "."} {
		_, err := store.Put(context.Background(), key, bytes.NewBufferString("x"), docgen.ArtifactMeta{})
		if docgen.KindFromError(err) != docgen.KindValidation {
			t.Fatalf("key %q: expected validation error, got %v", key, err)
		}
	}
	p, err := store.Path("../../etc/passwd")
	if err != nil {
		t.Fatalf("path: %v", err)
	}
	root, _ := filepath.Abs(store.Root)
	if filepath.Dir(filepath.Dir(p)) != root {
		t.Fatalf("dot segments must stay under root, got %s", p)
	}
}

func TestStore_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewStore(t.TempDir()).Put(ctx, "x.pdf", bytes.NewBufferString("x"), docgen.ArtifactMeta{})
	if docgen.KindFromError(err) != docgen.KindCanceled {
		t.Fatalf("expected canceled, got %v", err)
	}
}
