package rules

import (
	"testing"

	"github.com/1broseidon/tagtile/internal/config"
	"github.com/1broseidon/tagtile/internal/tags"
	"github.com/1broseidon/tagtile/internal/tree"
)

func boolPtr(b bool) *bool { return &b }

func testRegistry(t *testing.T) *tags.Registry {
	t.Helper()
	reg := tags.NewRegistry()
	if err := reg.Init("default"); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"web", "media"} {
		if _, err := reg.Add(name); err != nil {
			t.Fatal(err)
		}
	}
	return reg
}

func TestMatchIsCaseInsensitiveFirstWins(t *testing.T) {
	m := NewMatcher([]config.Rule{
		{Class: "Firefox", Tags: []string{"web"}},
		{Class: "firefox", Tags: []string{"media"}},
	})
	r, ok := m.Match("FIREFOX")
	if !ok || r.Tags[0] != "web" {
		t.Fatalf("Match = %+v, %v", r, ok)
	}
	if _, ok := m.Match("kitty"); ok {
		t.Fatal("kitty should not match")
	}
	if _, ok := m.Match(""); ok {
		t.Fatal("empty class should never match")
	}
}

func TestApply(t *testing.T) {
	reg := testRegistry(t)
	m := NewMatcher([]config.Rule{
		{Class: "firefox", Tags: []string{"web"}},
		{Class: "mpv", Tags: []string{"media", "default"}, Floating: boolPtr(true)},
		{Class: "ghosty", Tags: []string{"gone"}, Floating: boolPtr(true)},
	})

	tests := []struct {
		class        string
		wantMatch    bool
		wantErr      bool
		wantTags     tags.Mask
		wantFloating bool
	}{
		{"Firefox", true, false, 2, false},
		{"mpv", true, false, 5, true},
		{"ghosty", true, true, 0, true},
		{"xterm", false, false, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.class, func(t *testing.T) {
			c := &tree.Client{Class: tt.class}
			matched, err := m.Apply(reg, c)
			if matched != tt.wantMatch || (err != nil) != tt.wantErr {
				t.Fatalf("Apply = %v, %v", matched, err)
			}
			if c.Tags != tt.wantTags || c.Floating != tt.wantFloating {
				t.Fatalf("client = %+v", c)
			}
		})
	}
}

func TestUpdateReplacesRules(t *testing.T) {
	m := NewMatcher([]config.Rule{{Class: "firefox", Tags: []string{"web"}}})
	m.Update(nil)
	if _, ok := m.Match("firefox"); ok {
		t.Fatal("rules should be cleared")
	}
}
