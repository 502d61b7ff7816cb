package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/1broseidon/tagtile/internal/config"
	"github.com/1broseidon/tagtile/internal/ipc"
)

// Set via ldflags at build time
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func buildVersion() string {
	if commit == "none" {
		return version
	}
	return fmt.Sprintf("%s (%s, %s)", version, commit, date)
}

func main() {
	if err := newRootCmd(&app{v: viper.New()}).Execute(); err != nil {
		os.Exit(1)
	}
}

// app carries the global settings. Flags win over TAGTILE_* environment
// variables.
type app struct {
	v *viper.Viper
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "tagtile",
		Short:         "Tag-based window visibility for X11 tiling",
		Long:          "tagtile groups windows under named tags. A desktop shows the windows whose tags intersect its own.",
		Version:       buildVersion(),
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "Config file path (default: ~/.config/tagtile/config.yaml)")
	flags.String("socket", "", "IPC socket path (default: $XDG_RUNTIME_DIR/tagtile.sock)")
	flags.String("log-level", "", "Log level override: debug, info, warn, error")
	flags.Bool("json", false, "Print JSON instead of text")
	_ = a.v.BindPFlags(flags)
	a.v.SetEnvPrefix("TAGTILE")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	root.AddGroup(
		&cobra.Group{ID: "daemon", Title: "Daemon:"},
		&cobra.Group{ID: "tags", Title: "Tag Commands:"},
		&cobra.Group{ID: "config", Title: "Configuration:"},
	)

	for _, c := range []*cobra.Command{a.daemonCmd(), a.stateCmd(), a.statusCmd(), a.reloadCmd()} {
		c.GroupID = "daemon"
		root.AddCommand(c)
	}
	for _, c := range []*cobra.Command{a.tagCmd(), a.desktopCmd(), a.windowCmd(), a.layoutCmd()} {
		c.GroupID = "tags"
		root.AddCommand(c)
	}
	for _, c := range []*cobra.Command{a.configCmd(), a.mcpCmd()} {
		c.GroupID = "config"
		root.AddCommand(c)
	}
	return root
}

func (a *app) configPath() (string, error) {
	if p := a.v.GetString("config"); p != "" {
		return p, nil
	}
	return config.DefaultConfigPath()
}

// loadConfig loads the config file and applies the log-level override.
func (a *app) loadConfig() (*config.LoadResult, error) {
	path, err := a.configPath()
	if err != nil {
		return nil, err
	}
	res, err := config.LoadFromPath(path)
	if err != nil {
		return nil, err
	}
	if lvl := a.v.GetString("log-level"); lvl != "" {
		res.Config.LogLevel = lvl
		if err := res.Config.Validate(); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func (a *app) client() *ipc.Client {
	if s := a.v.GetString("socket"); s != "" {
		return ipc.NewClientWithSocket(s)
	}
	return ipc.NewClient()
}

func (a *app) jsonOutput() bool { return a.v.GetBool("json") }

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
