package config

import (
	"fmt"
	"strings"
)

// Explain returns the effective value at the given YAML-like path and its source.
//
// Supported paths include:
//
//	default_tag
//	tags
//	layout.mode
//	layout.gap_size
//	layout.master_width_percent
//	status_fifo
//	reconcile_interval
//	log_level
//	monitors.<output>.desktops
//	hotkeys.view.<key>
//	rules
func Explain(res *LoadResult, path string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	if path == "" {
		return nil, Source{}, fmt.Errorf("path is empty")
	}
	value, err := lookupValue(res.Config, path)
	if err != nil {
		return nil, Source{}, err
	}
	if src, ok := res.Sources[path]; ok {
		return value, src, nil
	}
	return value, Source{Kind: SourceDefault}, nil
}

func lookupValue(cfg *Config, path string) (any, error) {
	parts := strings.Split(path, ".")
	leaf := func(v any) (any, error) {
		if len(parts) != 1 {
			return nil, fmt.Errorf("%s has no fields", parts[0])
		}
		return v, nil
	}

	switch parts[0] {
	case "default_tag":
		return leaf(cfg.DefaultTag)
	case "tags":
		return leaf(cfg.TagNames())
	case "status_fifo":
		return leaf(cfg.StatusFIFO)
	case "reconcile_interval":
		return leaf(cfg.ReconcileInterval.String())
	case "log_level":
		return leaf(cfg.LogLevel)
	case "rules":
		return leaf(cfg.Rules)
	case "layout":
		if len(parts) == 1 {
			return cfg.Layout, nil
		}
		switch parts[1] {
		case "mode":
			return string(cfg.Layout.Mode), nil
		case "gap_size":
			return cfg.Layout.GapSize, nil
		case "master_width_percent":
			return cfg.Layout.MasterWidthPercent, nil
		}
	case "monitors":
		if len(parts) == 1 {
			return cfg.Monitors, nil
		}
		output := parts[1]
		if len(parts) == 2 || parts[2] == "desktops" {
			return cfg.DesktopsFor(output), nil
		}
	case "hotkeys":
		if len(parts) == 1 {
			return cfg.Hotkeys, nil
		}
		var section map[string]string
		switch parts[1] {
		case "view":
			section = cfg.Hotkeys.View
		case "toggle":
			section = cfg.Hotkeys.Toggle
		case "toggle_window":
			section = cfg.Hotkeys.ToggleWindow
		default:
			return nil, fmt.Errorf("unknown hotkeys section %q", parts[1])
		}
		if len(parts) == 2 {
			return section, nil
		}
		key := strings.Join(parts[2:], ".")
		tag, ok := section[key]
		if !ok {
			return nil, fmt.Errorf("no binding for %q", key)
		}
		return tag, nil
	}
	return nil, fmt.Errorf("unknown config path %q", path)
}
