package source

import "context"

// Contributor is the credited author of a PromptItem.
type Contributor struct {
	Name    string `json:"name"`
	Profile string `json:"profile"`
}

// PromptItem represents a prompt record as delivered by a catalog source.
type PromptItem struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Text        string      `json:"text"`
	Tool        string      `json:"tool"`
	Upvotes     int         `json:"upvotes"`
	Contributor Contributor `json:"contributor"`
	Tags        []string    `json:"tags"`
	Categories  []string    `json:"categories"`
	Featured    bool        `json:"featured,omitempty"`
}

// Source defines the interface for catalog data sources.
type Source interface {
	// GetSourceID returns the unique identifier for this source.
	GetSourceID() string

	// GetDisplayName returns a human-readable name for this source.
	GetDisplayName() string

	// FetchBatch fetches up to limit items starting at cursor ("" for the
	// first page). nextCursor is "" once the source is exhausted.
	FetchBatch(ctx context.Context, cursor string, limit int) (items []PromptItem, nextCursor string, err error)
}
