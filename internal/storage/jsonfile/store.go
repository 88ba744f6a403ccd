// Package jsonfile persists collections as pretty-printed JSON arrays, merging
// each save into whatever a previous run left on disk.
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

	"go.uber.org/zap"

	"github.com/JakeFAU/bbw-directory/internal/directory"
)

// MergePolicy combines the stored collection with newly collected items and
// reports how many items were added.
type MergePolicy[T any] func(existing, incoming []T) (merged []T, added int)

// Concatenate appends every incoming item, keeping duplicates.
func Concatenate[T any]() MergePolicy[T] {
	return func(existing, incoming []T) ([]T, int) {
		merged := make([]T, 0, len(existing)+len(incoming))
		merged = append(merged, existing...)
		merged = append(merged, incoming...)
		return merged, len(incoming)
	}
}

// UnionByEquality appends incoming items that are not already present.
func UnionByEquality[T comparable]() MergePolicy[T] {
	return func(existing, incoming []T) ([]T, int) {
		seen := make(map[T]struct{}, len(existing)+len(incoming))
		merged := make([]T, 0, len(existing)+len(incoming))
		for _, item := range existing {
			seen[item] = struct{}{}
			merged = append(merged, item)
		}
		added := 0
		for _, item := range incoming {
			if _, ok := seen[item]; ok {
				continue
			}
			seen[item] = struct{}{}
			merged = append(merged, item)
			added++
		}
		return merged, added
	}
}

// Store loads and saves one JSON array file.
type Store[T any] struct {
	path   string
	merge  MergePolicy[T]
	logger *zap.Logger
	// alwaysWrite rewrites the file even when the merge added nothing.
	alwaysWrite bool
}

// New returns a Store for path. Saves that add nothing leave the file untouched.
func New[T any](path string, merge MergePolicy[T], logger *zap.Logger) *Store[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store[T]{
		path:   path,
		merge:  merge,
		logger: logger.With(zap.String("path", path)),
	}
}

// NewAddressStore persists addresses, skipping ones already stored.
func NewAddressStore(path string, logger *zap.Logger) *Store[directory.Address] {
	return New(path, UnionByEquality[directory.Address](), logger)
}

// NewRecordStore persists records append-only; a record saved twice is stored twice.
func NewRecordStore(path string, logger *zap.Logger) *Store[directory.Record] {
	s := New(path, Concatenate[directory.Record](), logger)
	s.alwaysWrite = true
	return s
}

// Path returns the backing file path.
func (s *Store[T]) Path() string {
	return s.path
}

// Load reads the stored collection. A missing or empty file yields an empty
// collection, as does malformed content, which is logged and discarded.
func (s *Store[T]) Load(ctx context.Context) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context canceled: %w", err)
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Info("file does not exist yet; starting empty")
			return []T{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return []T{}, nil
	}
	if trimmed[0] != '[' {
		s.logger.Warn("file does not hold a JSON array; using empty collection")
		return []T{}, nil
	}
	items := []T{}
	if err := json.Unmarshal(trimmed, &items); err != nil {
		s.logger.Warn("failed to parse JSON file; using empty collection", zap.Error(err))
		return []T{}, nil
	}
	return items, nil
}

// Save merges items into the stored collection and rewrites the file. It
// returns the number of items added.
func (s *Store[T]) Save(ctx context.Context, items []T) (int, error) {
	existing, err := s.Load(ctx)
	if err != nil {
		return 0, err
	}

	merged, added := s.merge(existing, items)
	if added == 0 && !s.alwaysWrite {
		s.logger.Info("no new items to add")
		return 0, nil
	}

	if err := s.write(ctx, merged); err != nil {
		return 0, err
	}
	s.logger.Info("saved collection", zap.Int("added", added), zap.Int("total", len(merged)))
	return added, nil
}

func (s *Store[T]) write(ctx context.Context, items []T) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context canceled: %w", err)
	}
	if items == nil {
		items = []T{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(items); err != nil {
		return fmt.Errorf("marshal collection: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("creating dir for %s: %w", s.path, err)
		}
	}
	if err := os.WriteFile(s.path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	return nil
}
