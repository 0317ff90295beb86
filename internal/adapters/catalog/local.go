// Package catalog loads the per-season item catalog.
package catalog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mvidal/destino/internal/domain/model"
)

// LocalSource reads season catalogs from JSON files on disk, one file per
// season named <season>.json.
type LocalSource struct {
	dir     string
	idField string
}

// LocalOption applies a configuration option to the LocalSource.
type LocalOption func(*LocalSource)

// WithLocalIDField overrides the catalog column used as the item identifier.
func WithLocalIDField(field string) LocalOption {
	return func(s *LocalSource) {
		if field != "" {
			s.idField = field
		}
	}
}

// NewLocalSource creates a file-backed catalog source rooted at dir.
func NewLocalSource(dir string, opts ...LocalOption) *LocalSource {
	s := &LocalSource{dir: dir, idField: DefaultIDField}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Items implements Source.
func (s *LocalSource) Items(ctx context.Context, season string) ([]model.Item, error) {
	path := filepath.Join(s.dir, season+".json")
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return parseItems(data, s.idField)
}
