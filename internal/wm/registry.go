package wm

import (
	"fmt"
	"slices"

	"github.com/1broseidon/tagtile/internal/tags"
	"github.com/1broseidon/tagtile/internal/tree"
)

// InitTags resets the registry to a single tag named name.
func (e *Engine) InitTags(name string) error {
	return e.reg.Init(name)
}

// AddTag registers a new tag.
func (e *Engine) AddTag(name string) (tags.Tag, error) {
	t, err := e.reg.Add(name)
	if err != nil {
		return tags.Tag{}, err
	}
	e.logger.Info("tag added", "name", t.Name, "mask", uint32(t.Mask))
	e.refreshStatus()
	return t, nil
}

// Tag looks a tag up by name.
func (e *Engine) Tag(name string) (tags.Tag, bool) { return e.reg.Get(name) }

// TagByIndex looks a tag up by position.
func (e *Engine) TagByIndex(i int) (tags.Tag, bool) { return e.reg.GetByIndex(i) }

// ListTags renders the registry as "<name> <mask>" lines.
func (e *Engine) ListTags() string { return e.reg.List() }

// RemoveTag removes the tag named name. See RemoveTagByIndex.
func (e *Engine) RemoveTag(name string) error {
	i, ok := e.reg.Index(name)
	if !ok {
		return e.reg.NotFoundError(name)
	}
	return e.RemoveTagByIndex(i)
}

// RemoveTagByIndex strips the tag's bit from every desktop and then every
// window on every monitor, through the retaggers so visibility follows,
// and only then drops the tag from the registry.
func (e *Engine) RemoveTagByIndex(i int) error {
	t, ok := e.reg.GetByIndex(i)
	if !ok {
		return fmt.Errorf("%w: index %d", tags.ErrNotFound, i)
	}

	for _, m := range e.state.Monitors {
		for _, d := range m.Desktops {
			e.TagDesktop(m, d, d.Tags.Without(t.Mask))
			for _, n := range slices.Collect(tree.Leaves(d.Root)) {
				e.TagNode(m, d, n, d, n.Client.Tags.Without(t.Mask))
			}
		}
	}

	if _, err := e.reg.RemoveAt(i); err != nil {
		return err
	}
	e.logger.Info("tag removed", "name", t.Name, "mask", uint32(t.Mask))
	e.refreshStatus()
	return nil
}

func (e *Engine) refreshStatus() {
	if e.state.Focused != nil {
		e.status.Refresh()
	}
}
