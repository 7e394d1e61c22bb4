package domain

import (
	"reflect"
	"testing"
)

func TestLookupCategory_IgnoresCase(t *testing.T) {
	tests := []struct {
		id       string
		wantName string
		wantOK   bool
	}{
		{"programming", "Programming", true},
		{"V0", "v0", true},
		{"Web Design", "Web Design", true},
		{" seo ", "SEO", true},
		{"vibe code", "Vibe Code", true},
		{"astrology", "", false},
	}
	for _, tc := range tests {
		t.Run(tc.id, func(t *testing.T) {
			c, ok := LookupCategory(tc.id)
			if ok != tc.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tc.wantOK)
			}
			if c.Name != tc.wantName {
				t.Errorf("name = %q, want %q", c.Name, tc.wantName)
			}
		})
	}
}

func TestCategoryName_FallsBackToID(t *testing.T) {
	if got := CategoryName("Excel Sheet"); got != "Excel Sheet" {
		t.Errorf("got %q", got)
	}
	if got := CategoryName("unknown-thing"); got != "unknown-thing" {
		t.Errorf("got %q", got)
	}
}

func TestCategories_UniqueIDsAllFirst(t *testing.T) {
	cats := Categories()
	if cats[0].ID != CategoryAll {
		t.Fatalf("first category = %q, want all", cats[0].ID)
	}
	seen := map[string]bool{}
	for _, c := range cats {
		if seen[c.ID] {
			t.Errorf("duplicate category id %q", c.ID)
		}
		seen[c.ID] = true
	}

	// callers must not be able to mutate the shared list
	cats[1].Name = "changed"
	if Categories()[1].Name == "changed" {
		t.Error("Categories returned the shared backing array")
	}
}

func TestIsAllCategoriesAndTools(t *testing.T) {
	for _, v := range []string{"", "all", "ALL", " all "} {
		if !IsAllCategories(v) || !IsAllTools(v) {
			t.Errorf("%q should mean all", v)
		}
	}
	if IsAllCategories("seo") || IsAllTools("claude") {
		t.Error("specific values must not mean all")
	}
}

func TestDisplayTool(t *testing.T) {
	tests := []struct {
		tool, custom, want string
	}{
		{"Claude", "", "Claude"},
		{"Claude", "Gemini", "Claude"},
		{"Other", "Gemini", "Gemini"},
		{"Other", "  ", "Other"},
	}
	for _, tc := range tests {
		if got := DisplayTool(tc.tool, tc.custom); got != tc.want {
			t.Errorf("DisplayTool(%q, %q) = %q, want %q", tc.tool, tc.custom, got, tc.want)
		}
	}
}

func TestSplitTags(t *testing.T) {
	got := SplitTags(" writing, creative,, business ,")
	want := []string{"writing", "creative", "business"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SplitTags = %v, want %v", got, want)
	}
	if got := SplitTags(""); len(got) != 0 {
		t.Errorf("empty input gave %v", got)
	}
}

func TestPrompt_NumericIDAndHasCategory(t *testing.T) {
	p := Prompt{ID: "10", Categories: StringArray{"programming", "V0"}}
	n, ok := p.NumericID()
	if !ok || n != 10 {
		t.Errorf("NumericID = %d, %v", n, ok)
	}
	if !p.HasCategory("v0") || !p.HasCategory("PROGRAMMING") {
		t.Error("HasCategory should ignore case")
	}
	if p.HasCategory("seo") {
		t.Error("unexpected category match")
	}

	p.ID = "abc"
	if _, ok := p.NumericID(); ok {
		t.Error("non-numeric id parsed")
	}
}

func TestStringArray_ScanValue(t *testing.T) {
	var a StringArray
	if err := a.Scan([]byte(`["a","b"]`)); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(a, StringArray{"a", "b"}) {
		t.Errorf("scan = %v", a)
	}
	if err := a.Scan(nil); err != nil || len(a) != 0 {
		t.Errorf("scan nil = %v, %v", a, err)
	}
	if err := a.Scan(42); err == nil {
		t.Error("expected error for int value")
	}
	v, err := StringArray(nil).Value()
	if err != nil || v != "[]" {
		t.Errorf("nil Value = %v, %v", v, err)
	}
}
