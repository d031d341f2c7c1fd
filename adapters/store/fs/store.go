package storefs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/goliatone/go-docgen/docgen"
)

const metaSuffix = ".meta.json"

// maxDuplicates bounds the "name (n).ext" probe.
const maxDuplicates = 999

// Store saves artifacts under Root, the way a browser saves downloads. An
// existing file is kept and the new one gets a "name (1).ext" suffix unless
// Overwrite is set.
type Store struct {
	Root      string
	Overwrite bool
	Now       func() time.Time
}

// NewStore creates a filesystem-backed artifact store.
func NewStore(root string) *Store {
	return &Store{Root: root, Now: time.Now}
}

// Put stores an artifact on disk and returns the key it was saved under.
func (s *Store) Put(ctx context.Context, key string, r io.Reader, meta docgen.ArtifactMeta) (docgen.ArtifactRef, error) {
	if err := s.check(key); err != nil {
		return docgen.ArtifactRef{}, err
	}
	if err := ctx.Err(); err != nil {
		return docgen.ArtifactRef{}, err
	}

	pathOnDisk, err := s.resolvePath(key)
	if err != nil {
		return docgen.ArtifactRef{}, err
	}

	dir := filepath.Dir(pathOnDisk)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return docgen.ArtifactRef{}, err
	}

	staged, size, err := stage(dir, r)
	if err != nil {
		return docgen.ArtifactRef{}, err
	}
	if !s.Overwrite {
		pathOnDisk, key, err = s.freePath(pathOnDisk, key)
	}
	if err == nil {
		err = os.Rename(staged, pathOnDisk)
	}
	if err != nil {
		_ = os.Remove(staged)
		return docgen.ArtifactRef{}, err
	}

	meta.Size = size
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = s.now()
	}
	if meta.Filename == "" {
		meta.Filename = filepath.Base(pathOnDisk)
	}
	if meta.ContentType == "" {
		meta.ContentType = mime.TypeByExtension(filepath.Ext(pathOnDisk))
	}

	if err := s.writeMeta(pathOnDisk, meta); err != nil {
		return docgen.ArtifactRef{}, err
	}

	return docgen.ArtifactRef{Key: key, Meta: meta}, nil
}

// Open reads an artifact from disk.
func (s *Store) Open(ctx context.Context, key string) (io.ReadCloser, docgen.ArtifactMeta, error) {
	_ = ctx
	if err := s.check(key); err != nil {
		return nil, docgen.ArtifactMeta{}, err
	}

	pathOnDisk, err := s.resolvePath(key)
	if err != nil {
		return nil, docgen.ArtifactMeta{}, err
	}

	file, err := os.Open(pathOnDisk)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, docgen.ArtifactMeta{}, docgen.NewError(docgen.KindNotFound, fmt.Sprintf("artifact %q not found", key), err)
		}
		return nil, docgen.ArtifactMeta{}, err
	}

	meta := s.readMeta(pathOnDisk)
	if meta.ContentType == "" {
		meta.ContentType = mime.TypeByExtension(filepath.Ext(pathOnDisk))
	}
	if meta.Size == 0 {
		if info, err := file.Stat(); err == nil {
			meta.Size = info.Size()
			if meta.CreatedAt.IsZero() {
				meta.CreatedAt = info.ModTime()
			}
		}
	}

	return file, meta, nil
}

// Delete removes an artifact from disk.
func (s *Store) Delete(ctx context.Context, key string) error {
	_ = ctx
	if err := s.check(key); err != nil {
		return err
	}

	pathOnDisk, err := s.resolvePath(key)
	if err != nil {
		return err
	}
	_ = os.Remove(pathOnDisk)
	_ = os.Remove(pathOnDisk + metaSuffix)
	return nil
}

// List returns every stored artifact ordered by key.
func (s *Store) List(ctx context.Context) ([]docgen.ArtifactRef, error) {
	if s == nil {
		return nil, docgen.NewError(docgen.KindInternal, "store is nil", nil)
	}
	root, err := filepath.Abs(s.Root)
	if err != nil {
		return nil, err
	}
	var refs []docgen.ArtifactRef
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && p == root {
				return fs.SkipDir
			}
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() || strings.HasPrefix(name, ".") || strings.HasSuffix(name, metaSuffix) {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		meta := s.readMeta(p)
		if info, err := d.Info(); err == nil && meta.Size == 0 {
			meta.Size = info.Size()
		}
		refs = append(refs, docgen.ArtifactRef{Key: filepath.ToSlash(rel), Meta: meta})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Key < refs[j].Key })
	return refs, nil
}

// Path returns where key lives on disk.
func (s *Store) Path(key string) (string, error) {
	if err := s.check(key); err != nil {
		return "", err
	}
	return s.resolvePath(key)
}

func (s *Store) check(key string) error {
	if s == nil {
		return docgen.NewError(docgen.KindInternal, "store is nil", nil)
	}
	if s.Root == "" {
		return docgen.NewError(docgen.KindValidation, "store root is required", nil)
	}
	if key == "" {
		return docgen.NewError(docgen.KindValidation, "artifact key is required", nil)
	}
	return nil
}

// freePath finds the first unused "name (n).ext" next to pathOnDisk.
func (s *Store) freePath(pathOnDisk, key string) (string, string, error) {
	if _, err := os.Stat(pathOnDisk); os.IsNotExist(err) {
		return pathOnDisk, key, nil
	}
	ext := path.Ext(key)
	base := strings.TrimSuffix(key, ext)
	for n := 1; n <= maxDuplicates; n++ {
		candidate := fmt.Sprintf("%s (%d)%s", base, n, ext)
		p, err := s.resolvePath(candidate)
		if err != nil {
			return "", "", err
		}
		if _, err := os.Stat(p); os.IsNotExist(err) {
			return p, candidate, nil
		}
	}
	return "", "", docgen.NewError(docgen.KindInternal, fmt.Sprintf("no free name for %q", key), nil)
}

func (s *Store) resolvePath(key string) (string, error) {
	clean := path.Clean("/" + key)
	rel := strings.TrimPrefix(clean, "/")
	if rel == "" || rel == "." {
		return "", docgen.NewError(docgen.KindValidation, "invalid artifact key", nil)
	}

	root, err := filepath.Abs(s.Root)
	if err != nil {
		return "", err
	}
	target := filepath.Join(root, filepath.FromSlash(rel))
	if !strings.HasPrefix(target, root+string(os.PathSeparator)) && target != root {
		return "", docgen.NewError(docgen.KindValidation, "artifact key escapes root", nil)
	}
	return target, nil
}

func (s *Store) writeMeta(pathOnDisk string, meta docgen.ArtifactMeta) error {
	payload, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	staged, _, err := stage(filepath.Dir(pathOnDisk), bytes.NewReader(payload))
	if err != nil {
		return err
	}
	if err := os.Rename(staged, pathOnDisk+metaSuffix); err != nil {
		_ = os.Remove(staged)
		return err
	}
	return nil
}

// stage copies r into a synced dot file in dir. The caller renames it into
// place or removes it.
func stage(dir string, r io.Reader) (string, int64, error) {
	tmp, err := os.CreateTemp(dir, ".docgen-*")
	if err != nil {
		return "", 0, err
	}
	size, err := io.Copy(tmp, r)
	if err == nil {
		err = tmp.Sync()
	}
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(tmp.Name())
		return "", 0, err
	}
	return tmp.Name(), size, nil
}

func (s *Store) readMeta(pathOnDisk string) docgen.ArtifactMeta {
	data, err := os.ReadFile(pathOnDisk + metaSuffix)
	if err != nil {
		return docgen.ArtifactMeta{}
	}
	var meta docgen.ArtifactMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return docgen.ArtifactMeta{}
	}
	return meta
}

func (s *Store) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}
