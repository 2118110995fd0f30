// Package jsonfile keeps diagnosis history in a single JSON document on disk.
//
// The file holds a JSON array of entries in append order. Every Append
// rewrites the whole array. A missing, unreadable or corrupt file reads as an
// empty history, and a file holding a single object is treated as a
// one-element list.
package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/jonny/edudiag/internal/domain/model"
	"github.com/jonny/edudiag/internal/domain/port/outbound"
)

const DefaultPath = "data/responses.json"

// HistoryRepo implements outbound.HistoryRepository over a JSON file.
type HistoryRepo struct {
	mu   sync.Mutex
	path string
}

func NewHistoryRepo(path string) *HistoryRepo {
	if path == "" {
		path = DefaultPath
	}
	return &HistoryRepo{path: path}
}

func (r *HistoryRepo) Path() string { return r.path }

// Append adds e to the end of the file.
func (r *HistoryRepo) Append(ctx context.Context, e model.HistoryEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := r.load()
	entries = append(entries, e)

	data, err := json.MarshalIndent(entries, "", "    ")
	if err != nil {
		return fmt.Errorf("encoding history: %w", err)
	}
	if err := r.write(data); err != nil {
		return fmt.Errorf("writing history: %w", err)
	}
	return nil
}

// List returns a filtered page of entries, newest first.
func (r *HistoryRepo) List(ctx context.Context, filter outbound.HistoryFilter, page outbound.PageRequest) (outbound.PageResult[model.HistoryEntry], error) {
	if err := ctx.Err(); err != nil {
		return outbound.PageResult[model.HistoryEntry]{}, err
	}
	page = page.Normalize()

	r.mu.Lock()
	entries := r.load()
	r.mu.Unlock()

	matched := make([]model.HistoryEntry, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		if filter.Matches(entries[i]) {
			matched = append(matched, entries[i])
		}
	}

	items := []model.HistoryEntry{}
	if off := page.Offset(); off < len(matched) {
		end := min(off+page.Size, len(matched))
		items = append(items, matched[off:end]...)
	}

	return outbound.PageResult[model.HistoryEntry]{
		Items:      items,
		TotalCount: int64(len(matched)),
		Page:       page.Page,
		Size:       page.Size,
	}, nil
}

// Ping verifies that the history directory is usable.
func (r *HistoryRepo) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir := filepath.Dir(r.path)
	info, err := os.Stat(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("stat history dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("history dir %s is not a directory", dir)
	}
	return nil
}

func (r *HistoryRepo) load() []model.HistoryEntry {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}

	if data[0] == '{' {
		var single model.HistoryEntry
		if err := json.Unmarshal(data, &single); err != nil {
			return nil
		}
		return []model.HistoryEntry{single}
	}

	var entries []model.HistoryEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil
	}
	return entries
}

// write replaces the file through a temporary sibling and rename.
func (r *HistoryRepo) write(data []byte) error {
	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".responses-*.json")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), r.path)
}
