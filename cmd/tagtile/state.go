package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/1broseidon/tagtile/internal/ipc"
)

func (a *app) stateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "state",
		Short: "Show monitors, desktops and the windows on them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := a.client().GetState()
			if err != nil {
				return err
			}
			if a.jsonOutput() {
				return printJSON(cmd.OutOrStdout(), state)
			}
			return writeState(cmd.OutOrStdout(), state, isTerminal(cmd.OutOrStdout()))
		},
	}
}

// writeState prints one row per window, plus one per empty desktop. A
// terminal gets an aligned table with a header; pipes get tab-separated
// rows.
func writeState(w io.Writer, state *ipc.StateData, pretty bool) error {
	out := w
	var tw *tabwriter.Writer
	if pretty {
		tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		out = tw
		fmt.Fprintln(out, "MONITOR\tDESKTOP\tSHOWS\tWINDOW\tTAGS\tVISIBLE\tCLASS")
	}
	for _, m := range state.Monitors {
		mon := m.Name
		if m.Focused {
			mon += "*"
		}
		for _, d := range m.Desktops {
			desk := d.Name
			if d.Displayed {
				desk += "*"
			}
			shows := strings.Join(d.TagNames, ",")
			if shows == "" {
				shows = "-"
			}
			if len(d.Windows) == 0 {
				fmt.Fprintf(out, "%s\t%s\t%s\t-\t-\t-\t-\n", mon, desk, shows)
				continue
			}
			for _, win := range d.Windows {
				id := fmt.Sprintf("0x%08x", win.ID)
				if win.Focused {
					id += "*"
				}
				class := win.Class
				if class == "" {
					class = "-"
				}
				fmt.Fprintf(out, "%s\t%s\t%s\t%s\t%d\t%t\t%s\n", mon, desk, shows, id, win.Tags, win.Visible, class)
			}
		}
	}
	if tw != nil {
		return tw.Flush()
	}
	return nil
}

func (a *app) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon status and the current status line",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.client().GetStatus()
			if err != nil {
				return err
			}
			if a.jsonOutput() {
				return printJSON(cmd.OutOrStdout(), st)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Daemon: running (uptime %s)\n", time.Duration(st.UptimeSeconds)*time.Second)
			fmt.Fprintf(out, "Tags: %d\n", st.Tags)
			fmt.Fprintf(out, "Windows: %d\n", st.Windows)
			fmt.Fprint(out, st.Line)
			return nil
		},
	}
}

func (a *app) reloadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reload",
		Short: "Ask the daemon to re-read its config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.client().Reload(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "config reloaded")
			return nil
		},
	}
}

func (a *app) layoutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Change how tiled windows are arranged",
	}
	var reverse bool
	cycleC := &cobra.Command{
		Use:   "cycle",
		Short: "Switch to the next layout mode",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			delta := 1
			if reverse {
				delta = -1
			}
			data, err := a.client().CycleLayout(delta)
			if err != nil {
				return err
			}
			if a.jsonOutput() {
				return printJSON(cmd.OutOrStdout(), data)
			}
			fmt.Fprintln(cmd.OutOrStdout(), data.Mode)
			return nil
		},
	}
	cycleC.Flags().BoolVar(&reverse, "reverse", false, "Go to the previous mode instead")
	cmd.AddCommand(cycleC)
	return cmd
}
