package docgen

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestMemoryStore_DedupesLikeDownloads(t *testing.T) {
	store := NewMemoryStore()
	store.Now = func() time.Time { return fixedNow }
	ctx := context.Background()

	for _, body := range []string{"one", "two", "three"} {
		if _, err := store.Put(ctx, "OPR_HARI_SUKAN.pdf", strings.NewReader(body), ArtifactMeta{}); err != nil {
			t.Fatalf("put: %v", err)
		}
	}
	want := []string{"OPR_HARI_SUKAN (1).pdf", "OPR_HARI_SUKAN (2).pdf", "OPR_HARI_SUKAN.pdf"}
	if diff := cmp.Diff(want, store.Keys()); diff != "" {
		t.Fatalf("keys mismatch:\n%s", diff)
	}

	rc, meta, err := store.Open(ctx, "OPR_HARI_SUKAN (2).pdf")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer rc.Close()
	body, _ := io.ReadAll(rc)
	if string(body) != "three" || meta.Size != 5 || meta.ContentType != "application/pdf" || !meta.CreatedAt.Equal(fixedNow) {
		t.Fatalf("unexpected artifact %q %+v", body, meta)
	}
}

func TestMemoryStore_OverwriteListDelete(t *testing.T) {
	store := NewMemoryStore()
	store.Overwrite = true
	ctx := context.Background()

	store.Put(ctx, "a.docx", strings.NewReader("1"), ArtifactMeta{})
	store.Put(ctx, "a.docx", strings.NewReader("22"), ArtifactMeta{})
	refs, err := store.List(ctx)
	if err != nil || len(refs) != 1 || refs[0].Meta.Size != 2 {
		t.Fatalf("expected single overwritten artifact, got %+v %v", refs, err)
	}

	if err := store.Delete(ctx, "a.docx"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, _, err := store.Open(ctx, "a.docx"); KindFromError(err) != KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := store.Put(ctx, "", strings.NewReader(""), ArtifactMeta{}); KindFromError(err) != KindValidation {
		t.Fatalf("expected validation error for empty key, got %v", err)
	}
}
