package manifest

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/timmy/promptbay/internal/source"
)

// maxLineSize bounds a single manifest line; prompt bodies can be long.
const maxLineSize = 1 << 20

// Adapter implements source.Source over a JSON Lines manifest, one prompt per line.
type Adapter struct {
	sourceID    string
	displayName string
	open        func() (io.ReadCloser, error)

	mu      sync.Mutex
	items   []source.PromptItem
	skipped int
	loaded  bool
}

// NewAdapter creates an adapter reading the manifest file at path.
func NewAdapter(path string) *Adapter {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return &Adapter{
		sourceID:    "manifest:" + name,
		displayName: fmt.Sprintf("Manifest (%s)", path),
		open: func() (io.ReadCloser, error) {
			f, err := os.Open(path)
			if err != nil {
				return nil, fmt.Errorf("failed to open manifest: %w", err)
			}
			return f, nil
		},
	}
}

// NewBytesAdapter creates an adapter over an in-memory manifest.
func NewBytesAdapter(sourceID, displayName string, data []byte) *Adapter {
	return &Adapter{
		sourceID:    sourceID,
		displayName: displayName,
		open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

// NewItemsAdapter creates an adapter over items that are already decoded.
// Items without an id or title are dropped and counted as skipped.
func NewItemsAdapter(sourceID, displayName string, items []source.PromptItem) *Adapter {
	a := &Adapter{
		sourceID:    sourceID,
		displayName: displayName,
		items:       make([]source.PromptItem, 0, len(items)),
		loaded:      true,
	}
	for _, item := range items {
		if !complete(&item) {
			a.skipped++
			continue
		}
		a.items = append(a.items, item)
	}
	return a
}

func complete(item *source.PromptItem) bool {
	return strings.TrimSpace(item.ID) != "" && strings.TrimSpace(item.Title) != ""
}

// GetSourceID returns the unique identifier for this source.
func (a *Adapter) GetSourceID() string {
	return a.sourceID
}

// GetDisplayName returns a human-readable name for this source.
func (a *Adapter) GetDisplayName() string {
	return a.displayName
}

// FetchBatch returns items in manifest order; the cursor is the next index.
func (a *Adapter) FetchBatch(ctx context.Context, cursor string, limit int) ([]source.PromptItem, string, error) {
	if err := a.ensureLoaded(); err != nil {
		return nil, "", err
	}
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}

	startIndex := 0
	if cursor != "" {
		var err error
		startIndex, err = strconv.Atoi(cursor)
		if err != nil || startIndex < 0 {
			return nil, "", fmt.Errorf("invalid cursor: %q", cursor)
		}
	}

	if startIndex >= len(a.items) {
		return []source.PromptItem{}, "", nil
	}
	if limit <= 0 {
		limit = len(a.items)
	}

	endIndex := startIndex + limit
	if endIndex > len(a.items) {
		endIndex = len(a.items)
	}

	nextCursor := ""
	if endIndex < len(a.items) {
		nextCursor = strconv.Itoa(endIndex)
	}

	return a.items[startIndex:endIndex], nextCursor, nil
}

// GetTotalCount returns the number of valid items in the manifest.
func (a *Adapter) GetTotalCount() (int, error) {
	if err := a.ensureLoaded(); err != nil {
		return 0, err
	}
	return len(a.items), nil
}

// Skipped returns how many lines were dropped as malformed or incomplete.
func (a *Adapter) Skipped() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.skipped
}

func (a *Adapter) ensureLoaded() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.loaded {
		return nil
	}
	if err := a.loadItems(); err != nil {
		return fmt.Errorf("failed to load manifest items: %w", err)
	}
	a.loaded = true
	return nil
}

func (a *Adapter) loadItems() error {
	rc, err := a.open()
	if err != nil {
		return err
	}
	defer rc.Close()

	a.items = []source.PromptItem{}
	a.skipped = 0

	scanner := bufio.NewScanner(rc)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		var item source.PromptItem
		if err := json.Unmarshal([]byte(line), &item); err != nil {
			a.skipped++
			continue
		}
		if !complete(&item) {
			a.skipped++
			continue
		}

		a.items = append(a.items, item)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading manifest: %w", err)
	}

	return nil
}
