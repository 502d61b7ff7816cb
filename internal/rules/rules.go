// Package rules picks the initial tags and floating state of new windows
// from their WM_CLASS.
package rules

import (
	"strings"
	"sync"

	"github.com/1broseidon/tagtile/internal/config"
	"github.com/1broseidon/tagtile/internal/tags"
	"github.com/1broseidon/tagtile/internal/tree"
)

// Matcher holds the configured rules. It is safe for concurrent use so
// that a reload can swap rules while windows are being managed.
type Matcher struct {
	mu    sync.RWMutex
	rules []config.Rule
}

// NewMatcher creates a matcher over rules.
func NewMatcher(rules []config.Rule) *Matcher {
	m := &Matcher{}
	m.Update(rules)
	return m
}

// Update replaces the rule list.
func (m *Matcher) Update(rules []config.Rule) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rules = append([]config.Rule(nil), rules...)
}

// Match returns the first rule whose class equals class, ignoring case.
func (m *Matcher) Match(class string) (config.Rule, bool) {
	if class == "" {
		return config.Rule{}, false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.rules {
		if strings.EqualFold(r.Class, class) {
			return r, true
		}
	}
	return config.Rule{}, false
}

// Apply sets c's tags and floating state from the rule matching c.Class.
// It reports whether a rule matched. When the rule names a tag that no
// longer exists, the floating part still applies and the error is
// returned so that c keeps its current tags.
func (m *Matcher) Apply(reg *tags.Registry, c *tree.Client) (bool, error) {
	r, ok := m.Match(c.Class)
	if !ok {
		return false, nil
	}
	if r.Floating != nil {
		c.Floating = *r.Floating
	}
	if len(r.Tags) == 0 {
		return true, nil
	}
	mask, err := reg.MaskOf(r.Tags...)
	if err != nil {
		return true, err
	}
	c.Tags = mask
	return true, nil
}
