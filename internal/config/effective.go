package config

import (
	"fmt"
	"maps"
	"strings"
)

type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

// BuildEffectiveConfig applies raw on top of DefaultConfig.
func BuildEffectiveConfig(raw RawConfig) (*Config, error) {
	cfg := DefaultConfig()

	if raw.DefaultTag != nil {
		cfg.DefaultTag = strings.TrimSpace(*raw.DefaultTag)
	}
	if len(raw.Tags) > 0 {
		cfg.Tags = append([]string(nil), raw.Tags...)
	}
	if len(raw.Monitors) > 0 {
		maps.Copy(cfg.Monitors, raw.Monitors)
	}
	if raw.Layout != nil {
		if raw.Layout.Mode != nil {
			cfg.Layout.Mode = *raw.Layout.Mode
		}
		cfg.Layout.GapSize = derefInt(raw.Layout.GapSize, cfg.Layout.GapSize)
		cfg.Layout.MasterWidthPercent = derefInt(raw.Layout.MasterWidthPercent, cfg.Layout.MasterWidthPercent)
	}
	if raw.StatusFIFO != nil {
		cfg.StatusFIFO = *raw.StatusFIFO
	}
	if raw.ReconcileInterval != nil {
		cfg.ReconcileInterval = *raw.ReconcileInterval
	}
	if raw.LogLevel != nil {
		level := strings.ToLower(strings.TrimSpace(*raw.LogLevel))
		if level == "warning" {
			level = "warn"
		}
		cfg.LogLevel = level
	}
	if raw.Hotkeys != nil {
		maps.Copy(cfg.Hotkeys.View, raw.Hotkeys.View)
		maps.Copy(cfg.Hotkeys.Toggle, raw.Hotkeys.Toggle)
		maps.Copy(cfg.Hotkeys.ToggleWindow, raw.Hotkeys.ToggleWindow)
	}

	if len(raw.Rules) > 0 {
		cfg.Rules = append([]Rule(nil), raw.Rules...)
	}

	for output, mc := range cfg.Monitors {
		if len(mc.Desktops) == 0 {
			return nil, &ValidationError{Path: "monitors." + output + ".desktops", Err: fmt.Errorf("at least one desktop is required")}
		}
	}
	return cfg, nil
}

func derefInt(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}
