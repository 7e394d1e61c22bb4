package domain

import "strings"

// CategoryAll is the pseudo-category that disables category filtering.
const CategoryAll = "all"

// Category is a topical tag used for browsing and filtering.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// categories is the single enumeration shared by the browser, the listing
// and the prompt badges. Ids are lower-case; lookups ignore case.
var categories = []Category{
	{ID: CategoryAll, Name: "All Categories"},
	{ID: "creative", Name: "Creative Writing"},
	{ID: "ai-image", Name: "AI Image"},
	{ID: "chatgpt", Name: "ChatGPT"},
	{ID: "vibe code", Name: "Vibe Code"},
	{ID: "business", Name: "Business"},
	{ID: "programming", Name: "Programming"},
	{ID: "web design", Name: "Web Design"},
	{ID: "excel sheet", Name: "Excel Sheet"},
	{ID: "ui/ux", Name: "UI/UX"},
	{ID: "seo", Name: "SEO"},
	{ID: "mentor", Name: "Mentor"},
	{ID: "github", Name: "GitHub"},
	{ID: "v0", Name: "v0"},
	{ID: "education", Name: "Education"},
	{ID: "personal-growth", Name: "Personal Growth"},
	{ID: "content-creation", Name: "Content Creation"},
}

// Categories returns a copy of the shared category enumeration, "all" first.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// LookupCategory finds a category by id, ignoring case and surrounding space.
func LookupCategory(id string) (Category, bool) {
	id = strings.TrimSpace(id)
	for _, c := range categories {
		if strings.EqualFold(c.ID, id) {
			return c, true
		}
	}
	return Category{}, false
}

// CategoryName returns the display name for id, or id itself when unknown.
func CategoryName(id string) string {
	if c, ok := LookupCategory(id); ok {
		return c.Name
	}
	return id
}

// IsAllCategories reports whether id means "no category filter".
func IsAllCategories(id string) bool {
	id = strings.TrimSpace(id)
	return id == "" || strings.EqualFold(id, CategoryAll)
}
