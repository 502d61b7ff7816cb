package config

import (
	"fmt"
	"maps"
	"slices"
	"time"

	"gopkg.in/yaml.v3"
)

// IncludeList supports either:
//
//	include: "/path/to/file.yaml"
//
// or:
//
//	include:
//	  - "/path/to/file.yaml"
//	  - "/path/to/dir"
type IncludeList []string

func (l *IncludeList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case 0:
		// Not present.
		*l = nil
		return nil
	case yaml.ScalarNode:
		if value.Tag != "!!str" {
			return fmt.Errorf("include must be a string or list of strings")
		}
		*l = []string{value.Value}
		return nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return fmt.Errorf("include entries must be strings")
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("include must be a string or list of strings")
	}
}

type RawLayout struct {
	Mode               *LayoutMode `yaml:"mode"`
	GapSize            *int        `yaml:"gap_size"`
	MasterWidthPercent *int        `yaml:"master_width_percent"`
}

type RawHotkeys struct {
	View         map[string]string `yaml:"view"`
	Toggle       map[string]string `yaml:"toggle"`
	ToggleWindow map[string]string `yaml:"toggle_window"`
}

// RawConfig mirrors Config with every scalar optional, so that a file only
// overrides the keys it sets.
type RawConfig struct {
	Include           IncludeList              `yaml:"include"`
	DefaultTag        *string                  `yaml:"default_tag"`
	Tags              []string                 `yaml:"tags"`
	Monitors          map[string]MonitorConfig `yaml:"monitors"`
	Layout            *RawLayout               `yaml:"layout"`
	StatusFIFO        *string                  `yaml:"status_fifo"`
	ReconcileInterval *time.Duration           `yaml:"reconcile_interval"`
	LogLevel          *string                  `yaml:"log_level"`
	Hotkeys           *RawHotkeys              `yaml:"hotkeys"`
	Rules             []Rule                   `yaml:"rules"`
}

// merge applies overlay on top of c. Tags and rules accumulate in order;
// monitors and hotkey bindings merge per key.
func (c RawConfig) merge(overlay RawConfig) RawConfig {
	out := c
	if overlay.DefaultTag != nil {
		out.DefaultTag = overlay.DefaultTag
	}
	for _, name := range overlay.Tags {
		if !slices.Contains(out.Tags, name) {
			out.Tags = append(out.Tags, name)
		}
	}
	if len(overlay.Monitors) > 0 {
		merged := make(map[string]MonitorConfig, len(out.Monitors)+len(overlay.Monitors))
		maps.Copy(merged, out.Monitors)
		maps.Copy(merged, overlay.Monitors)
		out.Monitors = merged
	}
	if overlay.Layout != nil {
		base := RawLayout{}
		if out.Layout != nil {
			base = *out.Layout
		}
		merged := mergeRawLayout(base, *overlay.Layout)
		out.Layout = &merged
	}
	if overlay.StatusFIFO != nil {
		out.StatusFIFO = overlay.StatusFIFO
	}
	if overlay.ReconcileInterval != nil {
		out.ReconcileInterval = overlay.ReconcileInterval
	}
	if overlay.LogLevel != nil {
		out.LogLevel = overlay.LogLevel
	}
	if overlay.Hotkeys != nil {
		base := RawHotkeys{}
		if out.Hotkeys != nil {
			base = *out.Hotkeys
		}
		merged := RawHotkeys{
			View:         mergeStringMap(base.View, overlay.Hotkeys.View),
			Toggle:       mergeStringMap(base.Toggle, overlay.Hotkeys.Toggle),
			ToggleWindow: mergeStringMap(base.ToggleWindow, overlay.Hotkeys.ToggleWindow),
		}
		out.Hotkeys = &merged
	}
	if len(overlay.Rules) > 0 {
		out.Rules = append(slices.Clip(out.Rules), overlay.Rules...)
	}
	return out
}

func mergeRawLayout(base RawLayout, overlay RawLayout) RawLayout {
	out := base
	if overlay.Mode != nil {
		out.Mode = overlay.Mode
	}
	if overlay.GapSize != nil {
		out.GapSize = overlay.GapSize
	}
	if overlay.MasterWidthPercent != nil {
		out.MasterWidthPercent = overlay.MasterWidthPercent
	}
	return out
}

func mergeStringMap(base map[string]string, overlay map[string]string) map[string]string {
	if len(base) == 0 && len(overlay) == 0 {
		return nil
	}
	out := make(map[string]string, len(base)+len(overlay))
	maps.Copy(out, base)
	maps.Copy(out, overlay)
	return out
}
