package settingsbun

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/goliatone/go-docgen/docgen"
)

func newTestKV(t *testing.T) *KV {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	kv, err := OpenSQLite(context.Background(), dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		_ = kv.Close()
	})
	return kv
}

func TestKV_GetSet(t *testing.T) {
	ctx := context.Background()
	kv := newTestKV(t)
	times := []time.Time{
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
	}
	calls := 0
	kv.Now = func() time.Time {
		now := times[calls]
		calls++
		return now
	}

	if _, ok, err := kv.Get(ctx, "profiles"); err != nil || ok {
		t.Fatalf("expected missing key, got ok=%v err=%v", ok, err)
	}
	if err := kv.Set(ctx, "profiles", []byte(`{"a":1}`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := kv.Set(ctx, "profiles", []byte(`{"a":2}`)); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	value, ok, err := kv.Get(ctx, "profiles")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if string(value) != `{"a":2}` {
		t.Fatalf("expected replaced value, got %s", value)
	}
	updated, err := kv.UpdatedAt(ctx, "profiles")
	if err != nil {
		t.Fatalf("updated at: %v", err)
	}
	if !updated.Equal(times[1]) {
		t.Fatalf("expected %v, got %v", times[1], updated)
	}

	if err := kv.Delete(ctx, "profiles"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := kv.Delete(ctx, "profiles"); docgen.KindFromError(err) != docgen.KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestKV_Validation(t *testing.T) {
	kv := newTestKV(t)
	if err := kv.Set(context.Background(), "", nil); docgen.KindFromError(err) != docgen.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	var empty *KV
	if _, _, err := empty.Get(context.Background(), "x"); docgen.KindFromError(err) != docgen.KindInternal {
		t.Fatalf("expected internal error, got %v", err)
	}
}

func TestKV_BacksSettingsStore(t *testing.T) {
	ctx := context.Background()
	kv := newTestKV(t)

	store := docgen.NewSettingsStore(kv)
	store.Debounce = time.Hour
	if err := store.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	created, err := store.CreateProfile("Kelab Sains", docgen.ProfileSociety)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.Close(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}

	reloaded := docgen.NewSettingsStore(kv)
	if err := reloaded.Load(ctx); err != nil {
		t.Fatalf("reload: %v", err)
	}
	current, err := reloaded.Current()
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if current.ID != created.ID || current.Name != "Kelab Sains" {
		t.Fatalf("expected persisted current profile, got %+v", current)
	}
	if len(reloaded.Profiles()) != 2 {
		t.Fatalf("expected default plus created profile, got %d", len(reloaded.Profiles()))
	}
}
