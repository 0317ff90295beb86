// Package catalog loads the per-season item catalog.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mvidal/destino/internal/domain/model"
)

// DefaultIDField is the catalog column holding the item identifier.
const DefaultIDField = "Vacante"

// Sentinel kinds for catalog errors.
var (
	ErrNotFound = errors.New("season catalog not found")
	ErrDecode   = errors.New("malformed catalog payload")
)

// Source loads the item catalog for a season.
type Source interface {
	// Items returns the season's catalog. Returns ErrNotFound when the
	// season has no catalog behind it.
	Items(ctx context.Context, season string) ([]model.Item, error)
}

// parseItems decodes a raw catalog payload. Each entry is an arbitrary
// record; the identifier lives under idField and may be numeric or a
// string, so it goes through the shared normalizer. Entries without an
// identifier are dropped rather than failing the whole catalog.
func parseItems(data []byte, idField string) ([]model.Item, error) {
	var raw []map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	items := make([]model.Item, 0, len(raw))
	for _, rec := range raw {
		id := model.NormalizeID(rec[idField])
		if id == "" {
			continue
		}
		items = append(items, model.Item{
			ID:        id,
			Localidad: stringField(rec, "Localidad"),
			Centro:    stringField(rec, "Centro de destino"),
		})
	}
	return items, nil
}

func stringField(rec map[string]any, key string) string {
	if v, ok := rec[key].(string); ok {
		return v
	}
	return ""
}
