package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/1broseidon/tagtile/internal/ipc"
	"github.com/1broseidon/tagtile/internal/tags"
)

func (a *app) tagCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tag",
		Short: "Manage the tag registry",
	}
	cmd.AddCommand(a.tagAddCmd(), a.tagRemoveCmd(), a.tagGetCmd(), a.tagListCmd())
	return cmd
}

func (a *app) tagAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <name>...",
		Short: "Register tags",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := a.client()
			for _, name := range args {
				info, err := c.AddTag(name)
				if err != nil {
					return fmt.Errorf("add %s: %w", name, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %d\n", info.Name, info.Mask)
			}
			return nil
		},
	}
}

func (a *app) tagRemoveCmd() *cobra.Command {
	var index int
	cmd := &cobra.Command{
		Use:   "remove <name> | --index N",
		Short: "Remove a tag, stripping it from every desktop and window first",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := tagRef(args, index, cmd.Flags().Changed("index"))
			if err != nil {
				return err
			}
			return a.client().RemoveTag(ref)
		},
	}
	cmd.Flags().IntVar(&index, "index", 0, "Registry index of the tag")
	return cmd
}

func (a *app) tagGetCmd() *cobra.Command {
	var index int
	cmd := &cobra.Command{
		Use:   "get <name> | --index N",
		Short: "Show one tag",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := tagRef(args, index, cmd.Flags().Changed("index"))
			if err != nil {
				return err
			}
			info, err := a.client().GetTag(ref)
			if err != nil {
				return err
			}
			if a.jsonOutput() {
				return printJSON(cmd.OutOrStdout(), info)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d %s %d\n", info.Index, info.Name, info.Mask)
			return nil
		},
	}
	cmd.Flags().IntVar(&index, "index", 0, "Registry index of the tag")
	return cmd
}

func (a *app) tagListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List tags in index order as \"<name> <mask>\"",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := a.client().ListTags()
			if err != nil {
				return err
			}
			if a.jsonOutput() {
				return printJSON(cmd.OutOrStdout(), data.Tags)
			}
			fmt.Fprint(cmd.OutOrStdout(), data.Text)
			return nil
		},
	}
}

func (a *app) desktopCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "desktop",
		Short: "Change which tags a desktop shows",
	}

	var monitor, desktop, mask string
	tagC := &cobra.Command{
		Use:   "tag [<tag>...]",
		Short: "Set a desktop's tags",
		Example: `  tagtile desktop tag web code
  tagtile desktop tag --desktop II --mask 0x6`,
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := maskSpec(args, mask)
			if err != nil {
				return err
			}
			return a.client().TagDesktop(ipc.TagDesktopPayload{Monitor: monitor, Desktop: desktop, Spec: spec})
		},
	}
	tagC.Flags().StringVar(&monitor, "monitor", "", "Monitor name (default: focused)")
	tagC.Flags().StringVar(&desktop, "desktop", "", "Desktop name (default: displayed desktop)")
	tagC.Flags().StringVar(&mask, "mask", "", "Raw mask (decimal, 0x hex or 0b binary) instead of tag names")

	viewC := &cobra.Command{
		Use:   "view <tag>",
		Short: "Show exactly one tag on the focused desktop",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.client().ViewTag(args[0])
		},
	}
	toggleC := &cobra.Command{
		Use:   "toggle <tag>",
		Short: "Flip one tag on the focused desktop",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.client().ToggleTag(args[0], false)
		},
	}
	var focusMonitor string
	focusC := &cobra.Command{
		Use:   "focus <desktop>",
		Short: "Display a desktop on its monitor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.client().FocusDesktop(ipc.DesktopRef{Monitor: focusMonitor, Desktop: args[0]})
		},
	}
	focusC.Flags().StringVar(&focusMonitor, "monitor", "", "Monitor name (default: focused)")

	cmd.AddCommand(tagC, viewC, toggleC, focusC)
	return cmd
}

func (a *app) windowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "window",
		Short: "Change which tags a window carries",
	}

	var window, mask string
	tagC := &cobra.Command{
		Use:   "tag [<tag>...]",
		Short: "Set a window's tags",
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := maskSpec(args, mask)
			if err != nil {
				return err
			}
			id, err := parseWindowID(window)
			if err != nil {
				return err
			}
			return a.client().TagWindow(ipc.TagWindowPayload{Window: id, Spec: spec})
		},
	}
	tagC.Flags().StringVar(&window, "window", "", "Window id (default: focused window)")
	tagC.Flags().StringVar(&mask, "mask", "", "Raw mask (decimal, 0x hex or 0b binary) instead of tag names")

	toggleC := &cobra.Command{
		Use:   "toggle <tag>",
		Short: "Flip one tag on the focused window",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.client().ToggleTag(args[0], true)
		},
	}
	presenceC := &cobra.Command{
		Use:   "presence <window> on|off",
		Short: "Pull a window into its desktop's view, or push it out",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseWindowID(args[0])
			if err != nil {
				return err
			}
			if id == 0 {
				return errors.New("window id is required")
			}
			present, err := parseOnOff(args[1])
			if err != nil {
				return err
			}
			return a.client().SetPresence(id, present)
		},
	}
	cmd.AddCommand(tagC, toggleC, presenceC)
	return cmd
}

func tagRef(args []string, index int, indexSet bool) (ipc.TagRef, error) {
	switch {
	case len(args) == 1 && indexSet:
		return ipc.TagRef{}, errors.New("give a name or --index, not both")
	case len(args) == 1:
		return ipc.TagRef{Name: args[0]}, nil
	case indexSet:
		return ipc.TagRef{Index: &index}, nil
	default:
		return ipc.TagRef{}, errors.New("a tag name or --index is required")
	}
}

// maskSpec builds a mask spec from tag names, which may also be comma
// separated, or from a raw mask.
func maskSpec(args []string, mask string) (ipc.MaskSpec, error) {
	var names []string
	for _, arg := range args {
		for _, name := range strings.Split(arg, ",") {
			if name = strings.TrimSpace(name); name != "" {
				names = append(names, name)
			}
		}
	}
	switch {
	case len(names) > 0 && mask != "":
		return ipc.MaskSpec{}, errors.New("give tag names or --mask, not both")
	case len(names) > 0:
		return ipc.MaskSpec{Tags: names}, nil
	case mask != "":
		m, err := tags.ParseMask(mask)
		if err != nil {
			return ipc.MaskSpec{}, err
		}
		raw := uint32(m)
		return ipc.MaskSpec{Mask: &raw}, nil
	default:
		return ipc.MaskSpec{}, errors.New("tag names or --mask required")
	}
}

// parseWindowID accepts decimal or 0x hex ids. Empty means the focused
// window.
func parseWindowID(s string) (uint32, error) {
	if s == "" {
		return 0, nil
	}
	id, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid window id %q", s)
	}
	return uint32(id), nil
}

func parseOnOff(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "true", "yes", "1":
		return true, nil
	case "off", "false", "no", "0":
		return false, nil
	}
	return false, fmt.Errorf("expected on or off, got %q", s)
}
