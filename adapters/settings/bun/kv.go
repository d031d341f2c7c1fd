// Package settingsbun persists the settings profiles in a SQL table through
// bun. KV satisfies docgen.KVStore.
package settingsbun

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goliatone/go-docgen/docgen"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// KV is a key/value table.
type KV struct {
	DB  *bun.DB
	Now func() time.Time
}

// NewKV creates a KV over db.
func NewKV(db *bun.DB) *KV {
	return &KV{DB: db, Now: time.Now}
}

// OpenSQLite opens a SQLite database at dsn and ensures the table exists.
// Use "file::memory:?cache=shared" for a throwaway store.
func OpenSQLite(ctx context.Context, dsn string) (*KV, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, docgen.NewError(docgen.KindInternal, "open settings database", err)
	}
	kv := NewKV(bun.NewDB(sqldb, sqlitedialect.New()))
	if err := kv.EnsureSchema(ctx); err != nil {
		_ = kv.Close()
		return nil, err
	}
	return kv, nil
}

// EnsureSchema creates the table when missing.
func (k *KV) EnsureSchema(ctx context.Context) error {
	if k == nil || k.DB == nil {
		return docgen.NewError(docgen.KindInternal, "settings database not configured", nil)
	}
	if _, err := k.DB.NewCreateTable().Model((*entryModel)(nil)).IfNotExists().Exec(ctx); err != nil {
		return docgen.NewError(docgen.KindInternal, "create settings table", err)
	}
	return nil
}

// Get returns the value stored under key.
func (k *KV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if k == nil || k.DB == nil {
		return nil, false, docgen.NewError(docgen.KindInternal, "settings database not configured", nil)
	}
	if key == "" {
		return nil, false, docgen.NewError(docgen.KindValidation, "settings key is required", nil)
	}

	model := new(entryModel)
	err := k.DB.NewSelect().Model(model).Where("name = ?", key).Limit(1).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return model.Value, true, nil
}

// Set inserts or replaces the value under key.
func (k *KV) Set(ctx context.Context, key string, value []byte) error {
	if k == nil || k.DB == nil {
		return docgen.NewError(docgen.KindInternal, "settings database not configured", nil)
	}
	if key == "" {
		return docgen.NewError(docgen.KindValidation, "settings key is required", nil)
	}

	model := &entryModel{Key: key, Value: value, UpdatedAt: k.now()}
	_, err := k.DB.NewInsert().Model(model).
		On("CONFLICT (name) DO UPDATE").
		Set("value = EXCLUDED.value").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

// Delete removes key.
func (k *KV) Delete(ctx context.Context, key string) error {
	if k == nil || k.DB == nil {
		return docgen.NewError(docgen.KindInternal, "settings database not configured", nil)
	}
	res, err := k.DB.NewDelete().Model((*entryModel)(nil)).Where("name = ?", key).Exec(ctx)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return docgen.NewError(docgen.KindNotFound, fmt.Sprintf("settings key %q not found", key), nil)
	}
	return nil
}

// UpdatedAt reports when key was last written.
func (k *KV) UpdatedAt(ctx context.Context, key string) (time.Time, error) {
	if k == nil || k.DB == nil {
		return time.Time{}, docgen.NewError(docgen.KindInternal, "settings database not configured", nil)
	}
	model := new(entryModel)
	err := k.DB.NewSelect().Model(model).Column("updated_at").Where("name = ?", key).Limit(1).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, docgen.NewError(docgen.KindNotFound, fmt.Sprintf("settings key %q not found", key), nil)
		}
		return time.Time{}, err
	}
	return model.UpdatedAt, nil
}

// Close closes the database.
func (k *KV) Close() error {
	if k == nil || k.DB == nil {
		return nil
	}
	return k.DB.Close()
}

type entryModel struct {
	bun.BaseModel `bun:"table:docgen_settings,alias:docgen_settings"`

	Key       string    `bun:"name,pk"`
	Value     []byte    `bun:"value"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

func (k *KV) now() time.Time {
	if k.Now != nil {
		return k.Now()
	}
	return time.Now()
}
