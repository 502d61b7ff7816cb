package tags

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"pgregory.net/rapid"
)

func TestInit_AddsSingleDefaultTag(t *testing.T) {
	r := NewRegistry()
	if err := r.Init(""); err != nil {
		t.Fatalf("Init() error: %v", err)
	}
	if r.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", r.Len())
	}
	tag, ok := r.GetByIndex(0)
	if !ok || tag.Name != DefaultName || tag.Mask != 1 {
		t.Fatalf("GetByIndex(0) = %+v, %v; want default/1", tag, ok)
	}
}

func TestAdd_AssignsPositionalMasks(t *testing.T) {
	r := NewRegistry()
	for i, name := range []string{"a", "b", "c", "d"} {
		tag, err := r.Add(name)
		if err != nil {
			t.Fatalf("Add(%q) error: %v", name, err)
		}
		if tag.Mask != Mask(1)<<uint(i) {
			t.Fatalf("Add(%q) mask = %d, want %d", name, tag.Mask, 1<<i)
		}
	}
}

func TestAdd_RejectsPastCapacity(t *testing.T) {
	r := NewRegistry()
	for i := 0; i < Capacity; i++ {
		if _, err := r.Add(fmt.Sprintf("t%d", i)); err != nil {
			t.Fatalf("Add #%d error: %v", i, err)
		}
	}
	before := r.List()
	if _, err := r.Add("overflow"); !errors.Is(err, ErrCapacity) {
		t.Fatalf("Add past capacity error = %v, want ErrCapacity", err)
	}
	if r.Len() != Capacity {
		t.Fatalf("Len() = %d, want %d", r.Len(), Capacity)
	}
	if r.List() != before {
		t.Fatal("registry changed after rejected add")
	}
}

func TestAdd_InvalidAndDuplicateNames(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Add("web"); err != nil {
		t.Fatalf("Add(web) error: %v", err)
	}

	tests := []struct {
		name string
		want error
	}{
		{"", ErrInvalidName},
		{"   ", ErrInvalidName},
		{"two words", ErrInvalidName},
		{"web", ErrExists},
	}
	for _, tt := range tests {
		if _, err := r.Add(tt.name); !errors.Is(err, tt.want) {
			t.Errorf("Add(%q) error = %v, want %v", tt.name, err, tt.want)
		}
	}
}

func TestAdd_TruncatesLongNamesOnRuneBoundary(t *testing.T) {
	r := NewRegistry()
	long := strings.Repeat("é", 20) // 40 bytes
	tag, err := r.Add(long)
	if err != nil {
		t.Fatalf("Add error: %v", err)
	}
	if len(tag.Name) > MaxNameLen {
		t.Fatalf("name length = %d, want <= %d", len(tag.Name), MaxNameLen)
	}
	if tag.Name != strings.Repeat("é", 15) {
		t.Fatalf("name = %q, want 15 runes", tag.Name)
	}
}

func TestRemoveAt_CompactsWithoutReassigningMasks(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"a", "b", "c"} {
		if _, err := r.Add(name); err != nil {
			t.Fatal(err)
		}
	}
	removed, err := r.RemoveAt(0)
	if err != nil {
		t.Fatalf("RemoveAt(0) error: %v", err)
	}
	if removed.Name != "a" {
		t.Fatalf("removed %q, want a", removed.Name)
	}

	if got, want := r.List(), "b 2\nc 4\n"; got != want {
		t.Fatalf("List() = %q, want %q", got, want)
	}
	tag, ok := r.GetByIndex(0)
	if !ok || tag.Name != "b" || tag.Mask != 2 {
		t.Fatalf("GetByIndex(0) = %+v, want b/2", tag)
	}

	// The freed bit is reused; no live masks collide.
	d, err := r.Add("d")
	if err != nil {
		t.Fatal(err)
	}
	if d.Mask != 1 {
		t.Fatalf("Add(d) mask = %d, want 1", d.Mask)
	}
}

func TestRemoveAt_OutOfRange(t *testing.T) {
	r := NewRegistry()
	if _, err := r.RemoveAt(0); !errors.Is(err, ErrNotFound) {
		t.Fatalf("RemoveAt on empty = %v, want ErrNotFound", err)
	}
	if _, err := r.RemoveAt(-1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("RemoveAt(-1) = %v, want ErrNotFound", err)
	}
}

func TestLookup(t *testing.T) {
	r := NewRegistry()
	_ = r.Init("default")
	_, _ = r.Add("web")

	if tag, ok := r.Get("web"); !ok || tag.Mask != 2 {
		t.Fatalf("Get(web) = %+v, %v", tag, ok)
	}
	if _, ok := r.Get("mail"); ok {
		t.Fatal("Get(mail) found a tag")
	}
	if _, ok := r.GetByIndex(2); ok {
		t.Fatal("GetByIndex(2) found a tag")
	}
}

func TestMaskOfAndSuggest(t *testing.T) {
	r := NewRegistry()
	_ = r.Init("default")
	_, _ = r.Add("web")
	_, _ = r.Add("mail")

	m, err := r.MaskOf("web", "mail")
	if err != nil {
		t.Fatalf("MaskOf error: %v", err)
	}
	if m != 6 {
		t.Fatalf("MaskOf = %d, want 6", m)
	}

	_, err = r.MaskOf("wbe")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("MaskOf(wbe) error = %v, want ErrNotFound", err)
	}
	if !strings.Contains(err.Error(), `did you mean "web"`) {
		t.Fatalf("missing suggestion in %q", err.Error())
	}
	if s := r.Suggest("zzzzzz"); s != "" {
		t.Fatalf("Suggest(zzzzzz) = %q, want empty", s)
	}
}

func TestParseMask(t *testing.T) {
	tests := []struct {
		in   string
		want Mask
		err  bool
	}{
		{"3", 3, false},
		{"0b11", 3, false},
		{"0x10", 16, false},
		{"", 0, true},
		{"-1", 0, true},
		{"4294967296", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseMask(tt.in)
		if (err != nil) != tt.err {
			t.Errorf("ParseMask(%q) error = %v, want error %v", tt.in, err, tt.err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseMask(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestMaskForEach(t *testing.T) {
	var slots []int
	Mask(0b1010_0001).ForEach(func(slot int) { slots = append(slots, slot) })
	if fmt.Sprint(slots) != "[0 5 7]" {
		t.Fatalf("ForEach slots = %v", slots)
	}
}

// Random add/remove sequences never produce colliding masks or exceed
// capacity.
func TestRegistry_MasksStayUnique(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		r := NewRegistry()
		steps := rapid.IntRange(1, 120).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			if r.Len() > 0 && rapid.Bool().Draw(t, "remove") {
				idx := rapid.IntRange(0, r.Len()-1).Draw(t, "idx")
				if _, err := r.RemoveAt(idx); err != nil {
					t.Fatalf("RemoveAt(%d): %v", idx, err)
				}
			} else {
				full := r.Len() == Capacity
				_, err := r.Add(fmt.Sprintf("t%d", i))
				if full != errors.Is(err, ErrCapacity) {
					t.Fatalf("Add with full=%v: %v", full, err)
				}
				if err != nil && !errors.Is(err, ErrCapacity) {
					t.Fatalf("Add: %v", err)
				}
			}

			if r.Len() > Capacity {
				t.Fatalf("Len() = %d exceeds capacity", r.Len())
			}
			var seen Mask
			for _, tag := range r.Tags() {
				if !tag.Mask.IsSingle() {
					t.Fatalf("tag %q mask %b is not a single bit", tag.Name, tag.Mask)
				}
				if seen.Intersects(tag.Mask) {
					t.Fatalf("tag %q mask %b collides", tag.Name, tag.Mask)
				}
				seen |= tag.Mask
			}
		}
	})
}
