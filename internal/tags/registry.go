package tags

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// MaxNameLen bounds a tag name in bytes. Longer names are truncated on a
// rune boundary.
const MaxNameLen = 31

// DefaultName is the tag created by Init when no other name is configured.
const DefaultName = "default"

var (
	ErrCapacity    = errors.New("tag registry is full")
	ErrNotFound    = errors.New("tag not found")
	ErrExists      = errors.New("tag already exists")
	ErrInvalidName = errors.New("invalid tag name")
)

// Tag is a named label owning exactly one mask bit.
type Tag struct {
	Name string
	Mask Mask
}

// Registry is the ordered set of live tags. Insertion order is index order
// and display order.
//
// Removing a tag compacts the index sequence but leaves the surviving tags'
// masks alone: masks are what windows and desktops store, so index and mask
// stop being congruent after a removal.
type Registry struct {
	tags []Tag
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{tags: make([]Tag, 0, Capacity)}
}

// Init empties the registry and adds a single tag named name (DefaultName
// when empty) so that tagging has a tag space to work in.
func (r *Registry) Init(name string) error {
	r.tags = r.tags[:0]
	if strings.TrimSpace(name) == "" {
		name = DefaultName
	}
	_, err := r.Add(name)
	return err
}

// Add appends a tag holding the lowest mask bit no live tag holds. With no
// prior removals that bit is 1<<index.
func (r *Registry) Add(name string) (Tag, error) {
	name, err := normalizeName(name)
	if err != nil {
		return Tag{}, err
	}
	if len(r.tags) >= Capacity {
		return Tag{}, ErrCapacity
	}
	if _, ok := r.Index(name); ok {
		return Tag{}, fmt.Errorf("%w: %q", ErrExists, name)
	}
	mask, err := r.nextMask()
	if err != nil {
		return Tag{}, err
	}
	t := Tag{Name: name, Mask: mask}
	r.tags = append(r.tags, t)
	return t, nil
}

func (r *Registry) nextMask() (Mask, error) {
	used := r.Used()
	for slot := 0; slot < Capacity; slot++ {
		bit, err := Bit(slot)
		if err != nil {
			return 0, err
		}
		if !used.Intersects(bit) {
			return bit, nil
		}
	}
	return 0, ErrCapacity
}

// RemoveAt drops the tag at index i and closes the gap. It does not touch
// any window or desktop mask; callers strip the bit first.
func (r *Registry) RemoveAt(i int) (Tag, error) {
	if i < 0 || i >= len(r.tags) {
		return Tag{}, fmt.Errorf("%w: index %d", ErrNotFound, i)
	}
	t := r.tags[i]
	copy(r.tags[i:], r.tags[i+1:])
	r.tags[len(r.tags)-1] = Tag{}
	r.tags = r.tags[:len(r.tags)-1]
	return t, nil
}

// Index returns the position of the tag named name.
func (r *Registry) Index(name string) (int, bool) {
	for i, t := range r.tags {
		if t.Name == name {
			return i, true
		}
	}
	return -1, false
}

// Get looks a tag up by name.
func (r *Registry) Get(name string) (Tag, bool) {
	i, ok := r.Index(name)
	if !ok {
		return Tag{}, false
	}
	return r.tags[i], true
}

// GetByIndex looks a tag up by its position.
func (r *Registry) GetByIndex(i int) (Tag, bool) {
	if i < 0 || i >= len(r.tags) {
		return Tag{}, false
	}
	return r.tags[i], true
}

// Len returns the number of live tags.
func (r *Registry) Len() int { return len(r.tags) }

// Tags returns a copy of the live tags in index order.
func (r *Registry) Tags() []Tag {
	out := make([]Tag, len(r.tags))
	copy(out, r.tags)
	return out
}

// Names returns the live tag names in index order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.tags))
	for i, t := range r.tags {
		out[i] = t.Name
	}
	return out
}

// Used returns the union of every live tag's mask.
func (r *Registry) Used() Mask {
	var m Mask
	for _, t := range r.tags {
		m |= t.Mask
	}
	return m
}

// MaskOf resolves names to the union of their masks.
func (r *Registry) MaskOf(names ...string) (Mask, error) {
	var m Mask
	for _, name := range names {
		t, ok := r.Get(name)
		if !ok {
			return 0, r.NotFoundError(name)
		}
		m |= t.Mask
	}
	return m, nil
}

// NotFoundError builds an ErrNotFound for name, with a suggestion when a
// live tag name is close enough.
func (r *Registry) NotFoundError(name string) error {
	if s := r.Suggest(name); s != "" {
		return fmt.Errorf("%w: %q (did you mean %q?)", ErrNotFound, name, s)
	}
	return fmt.Errorf("%w: %q", ErrNotFound, name)
}

// Suggest returns the live tag name closest to name within an edit
// distance of 2, or "" when none is that close.
func (r *Registry) Suggest(name string) string {
	best := ""
	bestDist := 3
	for _, t := range r.tags {
		d := levenshtein.ComputeDistance(name, t.Name)
		if d < bestDist {
			best, bestDist = t.Name, d
		}
	}
	return best
}

// WriteList writes one "<name> <mask>" line per tag in index order.
func (r *Registry) WriteList(w io.Writer) error {
	for _, t := range r.tags {
		if _, err := fmt.Fprintf(w, "%s %s\n", t.Name, t.Mask); err != nil {
			return err
		}
	}
	return nil
}

// List is WriteList into a string.
func (r *Registry) List() string {
	var sb strings.Builder
	_ = r.WriteList(&sb)
	return sb.String()
}

func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidName)
	}
	if strings.ContainsAny(name, " \t\r\n") {
		return "", fmt.Errorf("%w: %q contains whitespace", ErrInvalidName, name)
	}
	if len(name) > MaxNameLen {
		cut := MaxNameLen
		for cut > 0 && !utf8.RuneStart(name[cut]) {
			cut--
		}
		name = name[:cut]
	}
	return name, nil
}
