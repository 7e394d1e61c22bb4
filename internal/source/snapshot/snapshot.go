// Package snapshot reads and writes the catalog snapshot kept in object
// storage. A snapshot written by one deployment seeds another.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/timmy/promptbay/internal/source"
	"github.com/timmy/promptbay/internal/source/manifest"
	"github.com/timmy/promptbay/internal/storage"
)

const (
	// Key is the object key of the catalog snapshot.
	Key = "catalog/snapshot.json"

	// SourceID identifies snapshot imports in logs and metrics.
	SourceID = "snapshot"
)

// ErrNotFound is returned when the bucket holds no snapshot.
var ErrNotFound = errors.New("catalog snapshot not found")

// Snapshot is the exported form of the active catalog.
type Snapshot struct {
	GeneratedAt time.Time           `json:"generated_at"`
	Total       int                 `json:"total"`
	Prompts     []source.PromptItem `json:"prompts"`
}

// New builds a snapshot of items stamped with the current time.
func New(items []source.PromptItem) *Snapshot {
	return &Snapshot{
		GeneratedAt: time.Now().UTC(),
		Total:       len(items),
		Prompts:     items,
	}
}

// Write uploads snap under Key and returns the encoded size.
func Write(ctx context.Context, store storage.ObjectStorage, snap *Snapshot) (int64, error) {
	size, err := storage.PutJSON(ctx, store, Key, snap)
	if err != nil {
		return 0, fmt.Errorf("failed to write snapshot: %w", err)
	}
	return size, nil
}

// Read downloads and decodes the snapshot stored under Key.
func Read(ctx context.Context, store storage.ObjectStorage) (*Snapshot, error) {
	ok, err := store.Exists(ctx, Key)
	if err != nil {
		return nil, fmt.Errorf("failed to check snapshot: %w", err)
	}
	if !ok {
		return nil, ErrNotFound
	}

	var snap Snapshot
	if err := storage.GetJSON(ctx, store, Key, &snap); err != nil {
		// deleted between the check and the download
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	return &snap, nil
}

// NewSource reads the stored snapshot and serves its prompts as a catalog
// source.
func NewSource(ctx context.Context, store storage.ObjectStorage) (*manifest.Adapter, error) {
	snap, err := Read(ctx, store)
	if err != nil {
		return nil, err
	}
	name := fmt.Sprintf("Snapshot (%s)", snap.GeneratedAt.Format(time.RFC3339))
	return manifest.NewItemsAdapter(SourceID, name, snap.Prompts), nil
}
