package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/1broseidon/tagtile/internal/tags"
)

// LayoutMode defines how visible tiled windows are arranged.
type LayoutMode string

const (
	LayoutModeTree        LayoutMode = "tree"         // Partition along the tiling tree's splits.
	LayoutModeAuto        LayoutMode = "auto"         // Dynamic grid based on count.
	LayoutModeVertical    LayoutMode = "vertical"     // Single column stack.
	LayoutModeHorizontal  LayoutMode = "horizontal"   // Single row side-by-side.
	LayoutModeMasterStack LayoutMode = "master-stack" // Master pane left, stack column right.
)

// Layout defines the tiling parameters applied to every desktop.
type Layout struct {
	Mode               LayoutMode `yaml:"mode"`
	GapSize            int        `yaml:"gap_size"`
	MasterWidthPercent int        `yaml:"master_width_percent"` // 10-90, master-stack only
}

// DesktopConfig names a desktop and the tags it shows at startup.
type DesktopConfig struct {
	Name string   `yaml:"name"`
	Tags []string `yaml:"tags,omitempty"`
}

// MonitorConfig lists the desktops of one RandR output.
type MonitorConfig struct {
	Desktops []DesktopConfig `yaml:"desktops"`
}

// Rule sets the initial tags and floating state of windows whose WM_CLASS
// matches Class, case-insensitively. The first matching rule wins.
type Rule struct {
	Class    string   `yaml:"class"`
	Tags     []string `yaml:"tags,omitempty"`
	Floating *bool    `yaml:"floating,omitempty"`
}

// Hotkeys maps key sequences ("Mod4-1") to tag names.
type Hotkeys struct {
	View         map[string]string `yaml:"view,omitempty"`
	Toggle       map[string]string `yaml:"toggle,omitempty"`
	ToggleWindow map[string]string `yaml:"toggle_window,omitempty"`
}

// Len returns the total number of bindings.
func (h Hotkeys) Len() int { return len(h.View) + len(h.Toggle) + len(h.ToggleWindow) }

const (
	DefaultTagName           = "default"
	DefaultDesktopName       = "I"
	DefaultReconcileInterval = 2 * time.Second
	DefaultGapSize           = 8
	DefaultMasterWidth       = 55
)

// Config holds the application configuration.
type Config struct {
	DefaultTag        string                   `yaml:"default_tag"`
	Tags              []string                 `yaml:"tags,omitempty"`
	Monitors          map[string]MonitorConfig `yaml:"monitors,omitempty"`
	Layout            Layout                   `yaml:"layout"`
	StatusFIFO        string                   `yaml:"status_fifo,omitempty"`
	ReconcileInterval time.Duration            `yaml:"reconcile_interval"`
	LogLevel          string                   `yaml:"log_level"`
	Hotkeys           Hotkeys                  `yaml:"hotkeys,omitempty"`
	Rules             []Rule                   `yaml:"rules,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		DefaultTag: DefaultTagName,
		Monitors:   map[string]MonitorConfig{},
		Layout: Layout{
			Mode:               LayoutModeTree,
			GapSize:            DefaultGapSize,
			MasterWidthPercent: DefaultMasterWidth,
		},
		ReconcileInterval: DefaultReconcileInterval,
		LogLevel:          "info",
		Hotkeys: Hotkeys{
			View:         map[string]string{},
			Toggle:       map[string]string{},
			ToggleWindow: map[string]string{},
		},
	}
}

// TagNames returns the default tag followed by the extra tags, in
// registration order.
func (c *Config) TagNames() []string {
	names := []string{c.DefaultTag}
	for _, name := range c.Tags {
		if !slices.Contains(names, name) {
			names = append(names, name)
		}
	}
	return names
}

// DesktopsFor returns the desktops configured for the output named monitor,
// or a single desktop showing the default tag.
func (c *Config) DesktopsFor(monitor string) []DesktopConfig {
	if mc, ok := c.Monitors[monitor]; ok && len(mc.Desktops) > 0 {
		return mc.Desktops
	}
	return []DesktopConfig{{Name: DefaultDesktopName, Tags: []string{c.DefaultTag}}}
}

// Save writes the configuration to path.
func (c *Config) Save(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate performs strict validation of the effective configuration.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DefaultTag) == "" {
		return &ValidationError{Path: "default_tag", Err: fmt.Errorf("default_tag is required")}
	}
	if err := validateTagName(c.DefaultTag); err != nil {
		return &ValidationError{Path: "default_tag", Err: err}
	}
	known := map[string]bool{c.DefaultTag: true}
	for i, name := range c.Tags {
		if err := validateTagName(name); err != nil {
			return &ValidationError{Path: fmt.Sprintf("tags[%d]", i), Err: err}
		}
		known[name] = true
	}
	if len(known) > tags.Capacity {
		return &ValidationError{Path: "tags", Err: fmt.Errorf("at most %d tags are supported, got %d", tags.Capacity, len(known))}
	}

	for output, mc := range c.Monitors {
		seen := map[string]bool{}
		for i, d := range mc.Desktops {
			path := fmt.Sprintf("monitors.%s.desktops[%d]", output, i)
			if strings.TrimSpace(d.Name) == "" {
				return &ValidationError{Path: path + ".name", Err: fmt.Errorf("desktop name is required")}
			}
			if seen[d.Name] {
				return &ValidationError{Path: path + ".name", Err: fmt.Errorf("duplicate desktop %q", d.Name)}
			}
			seen[d.Name] = true
			for _, tag := range d.Tags {
				if !known[tag] {
					return &ValidationError{Path: path + ".tags", Err: fmt.Errorf("unknown tag %q", tag)}
				}
			}
		}
	}

	for i, r := range c.Rules {
		path := fmt.Sprintf("rules[%d]", i)
		if strings.TrimSpace(r.Class) == "" {
			return &ValidationError{Path: path + ".class", Err: fmt.Errorf("class is required")}
		}
		if len(r.Tags) == 0 && r.Floating == nil {
			return &ValidationError{Path: path, Err: fmt.Errorf("rule for %q sets neither tags nor floating", r.Class)}
		}
		for _, tag := range r.Tags {
			if !known[tag] {
				return &ValidationError{Path: path + ".tags", Err: fmt.Errorf("unknown tag %q", tag)}
			}
		}
	}

	if err := validateLayout(&c.Layout); err != nil {
		return &ValidationError{Path: "layout", Err: err}
	}
	if c.ReconcileInterval < 100*time.Millisecond {
		return &ValidationError{Path: "reconcile_interval", Err: fmt.Errorf("reconcile_interval must be >= 100ms")}
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warn, error")}
	}

	for section, bindings := range map[string]map[string]string{
		"hotkeys.view":          c.Hotkeys.View,
		"hotkeys.toggle":        c.Hotkeys.Toggle,
		"hotkeys.toggle_window": c.Hotkeys.ToggleWindow,
	} {
		for key, tag := range bindings {
			if strings.TrimSpace(key) == "" {
				return &ValidationError{Path: section, Err: fmt.Errorf("empty key sequence")}
			}
			if !known[tag] {
				return &ValidationError{Path: section + "." + key, Err: fmt.Errorf("unknown tag %q", tag)}
			}
		}
	}
	return nil
}

// validateLayout checks if a layout configuration is valid.
// validateTagName rejects names the registry would refuse or truncate, so
// that desktops and rules naming the full string still resolve.
func validateTagName(name string) error {
	switch {
	case strings.TrimSpace(name) == "" || strings.ContainsAny(name, " \t\r\n"):
		return fmt.Errorf("tag name %q must be non-empty without whitespace", name)
	case len(name) > tags.MaxNameLen:
		return fmt.Errorf("tag name %q is longer than %d bytes", name, tags.MaxNameLen)
	}
	return nil
}

func validateLayout(layout *Layout) error {
	switch layout.Mode {
	case LayoutModeTree, LayoutModeAuto, LayoutModeVertical, LayoutModeHorizontal, LayoutModeMasterStack:
	default:
		return fmt.Errorf("invalid mode %q", layout.Mode)
	}
	if layout.GapSize < 0 {
		return fmt.Errorf("gap_size must be >= 0")
	}
	if layout.Mode == LayoutModeMasterStack {
		if layout.MasterWidthPercent < 10 || layout.MasterWidthPercent > 90 {
			return fmt.Errorf("master_width_percent must be between 10 and 90")
		}
	}
	return nil
}
