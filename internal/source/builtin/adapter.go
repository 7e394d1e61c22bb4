// Package builtin ships the launch catalog inside the binary.
package builtin

import (
	_ "embed"

	"github.com/timmy/promptbay/internal/source/manifest"
)

// SourceID identifies the embedded launch catalog.
const SourceID = "builtin"

//go:embed seed.jsonl
var seed []byte

// NewAdapter returns a source over the embedded launch catalog.
func NewAdapter() *manifest.Adapter {
	return manifest.NewBytesAdapter(SourceID, "Built-in catalog", seed)
}
