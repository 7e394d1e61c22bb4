package service

import (
	"sort"
	"strings"

	"github.com/timmy/promptbay/internal/domain"
)

// Sort keys accepted by ListQuery.
const (
	SortNewest  = "newest"
	SortOldest  = "oldest"
	SortUpvotes = "upvotes"
	SortPopular = "popular"
)

// ListQuery selects and orders a slice of the catalog.
type ListQuery struct {
	Search   string
	Tool     string
	Category string
	Sort     string
	Limit    int
}

// NormalizedSort returns the effective sort key: empty means newest and
// popular is folded into upvotes.
func (q ListQuery) NormalizedSort() string {
	key := strings.ToLower(strings.TrimSpace(q.Sort))
	switch key {
	case "":
		return SortNewest
	case SortPopular:
		return SortUpvotes
	default:
		return key
	}
}

// ApplyQuery filters by search, tool and category, sorts, then truncates.
// The input slice is not modified.
func ApplyQuery(prompts []domain.Prompt, q ListQuery) []domain.Prompt {
	search := strings.ToLower(q.Search)
	tool := strings.TrimSpace(q.Tool)
	category := strings.TrimSpace(q.Category)

	out := make([]domain.Prompt, 0, len(prompts))
	for i := range prompts {
		p := &prompts[i]
		if search != "" && !matchesSearch(p, search) {
			continue
		}
		if !domain.IsAllTools(tool) && !strings.EqualFold(p.Tool, tool) {
			continue
		}
		if !domain.IsAllCategories(category) && !p.HasCategory(category) {
			continue
		}
		out = append(out, *p)
	}

	switch q.NormalizedSort() {
	case SortNewest:
		sort.SliceStable(out, func(i, j int) bool { return idLess(&out[j], &out[i]) })
	case SortOldest:
		sort.SliceStable(out, func(i, j int) bool { return idLess(&out[i], &out[j]) })
	case SortUpvotes:
		sort.SliceStable(out, func(i, j int) bool {
			if out[i].Upvotes != out[j].Upvotes {
				return out[i].Upvotes > out[j].Upvotes
			}
			return idLess(&out[j], &out[i])
		})
	}

	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out
}

// matchesSearch reports whether the lower-cased needle occurs in the title
// or in any tag.
func matchesSearch(p *domain.Prompt, needle string) bool {
	if strings.Contains(strings.ToLower(p.Title), needle) {
		return true
	}
	for _, tag := range p.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}

// idLess orders numeric ids numerically. Non-numeric ids rank above every
// numeric id and compare lexicographically among themselves.
func idLess(a, b *domain.Prompt) bool {
	an, aok := a.NumericID()
	bn, bok := b.NumericID()
	switch {
	case aok && bok:
		return an < bn
	case aok:
		return true
	case bok:
		return false
	default:
		return a.ID < b.ID
	}
}
