package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"

	"github.com/1broseidon/tagtile/internal/config"
	"github.com/1broseidon/tagtile/internal/ipc"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd(&app{v: viper.New()})
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestCommandTree(t *testing.T) {
	root := newRootCmd(&app{v: viper.New()})
	for _, path := range [][]string{
		{"daemon"},
		{"tag", "add"}, {"tag", "remove"}, {"tag", "get"}, {"tag", "list"},
		{"desktop", "tag"}, {"desktop", "view"}, {"desktop", "toggle"}, {"desktop", "focus"},
		{"window", "tag"}, {"window", "toggle"}, {"window", "presence"},
		{"layout", "cycle"},
		{"state"}, {"status"}, {"reload"},
		{"config", "init"}, {"config", "validate"}, {"config", "print"}, {"config", "explain"},
		{"mcp", "serve"},
	} {
		cmd, _, err := root.Find(path)
		if err != nil || cmd.Name() != path[len(path)-1] {
			t.Errorf("command %v not found (err=%v)", path, err)
		}
	}
}

func TestSocketFromEnvAndFlag(t *testing.T) {
	t.Setenv("TAGTILE_SOCKET", "/tmp/from-env.sock")
	a := &app{v: viper.New()}
	root := newRootCmd(a)

	if got := a.v.GetString("socket"); got != "/tmp/from-env.sock" {
		t.Fatalf("socket from env = %q", got)
	}
	if err := root.PersistentFlags().Set("socket", "/tmp/from-flag.sock"); err != nil {
		t.Fatal(err)
	}
	if got := a.v.GetString("socket"); got != "/tmp/from-flag.sock" {
		t.Fatalf("flag should win over env, got %q", got)
	}
}

func TestConfigValidateAndExplain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "tags: [web, code]\nlayout:\n  gap_size: 4\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, "--config", path, "config", "validate")
	if err != nil {
		t.Fatalf("validate error = %v", err)
	}
	if !strings.Contains(out, "config: ok") {
		t.Fatalf("validate output = %q", out)
	}

	out, err = run(t, "--config", path, "config", "explain", "layout.gap_size")
	if err != nil {
		t.Fatalf("explain error = %v", err)
	}
	if !strings.Contains(out, "source: file:") || !strings.Contains(out, ":3:") || !strings.Contains(out, "4") {
		t.Fatalf("explain output = %q", out)
	}

	if _, err := run(t, "--config", path, "--log-level", "loud", "config", "validate"); err == nil {
		t.Fatal("expected invalid log level override to fail validation")
	}
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tagtile", "config.yaml")

	out, err := run(t, "--config", path, "config", "init")
	if err != nil {
		t.Fatalf("init error = %v", err)
	}
	if !strings.Contains(out, "wrote "+path) {
		t.Fatalf("init output = %q", out)
	}
	if _, err := run(t, "--config", path, "config", "validate"); err != nil {
		t.Fatalf("written config does not validate: %v", err)
	}
	if _, err := run(t, "--config", path, "config", "init"); err == nil {
		t.Fatal("expected init to refuse an existing file")
	}
	if _, err := run(t, "--config", path, "config", "init", "--force"); err != nil {
		t.Fatalf("init --force error = %v", err)
	}
}

func TestConfigPrintDefaults(t *testing.T) {
	out, err := run(t, "config", "print", "--defaults")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "default_tag: "+config.DefaultTagName) {
		t.Fatalf("defaults output = %q", out)
	}
}

func TestClientCommandsWithoutDaemon(t *testing.T) {
	sock := filepath.Join(t.TempDir(), "none.sock")
	t.Setenv("TAGTILE_SOCKET", sock)
	if _, err := run(t, "status"); err == nil {
		t.Fatal("expected error when no daemon is listening")
	}
}

func TestMaskSpec(t *testing.T) {
	spec, err := maskSpec([]string{"web,code", " chat "}, "")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(spec.Tags, "|") != "web|code|chat" || spec.Mask != nil {
		t.Fatalf("spec = %+v", spec)
	}

	spec, err = maskSpec(nil, "0b101")
	if err != nil {
		t.Fatal(err)
	}
	if spec.Mask == nil || *spec.Mask != 5 {
		t.Fatalf("mask spec = %+v", spec)
	}

	if _, err := maskSpec([]string{"web"}, "3"); err == nil {
		t.Fatal("expected error for names and mask together")
	}
	if _, err := maskSpec(nil, ""); err == nil {
		t.Fatal("expected error for empty spec")
	}
	if _, err := maskSpec(nil, "zz"); err == nil {
		t.Fatal("expected error for bad mask")
	}
}

func TestTagRef(t *testing.T) {
	ref, err := tagRef([]string{"web"}, 0, false)
	if err != nil || ref.Name != "web" || ref.Index != nil {
		t.Fatalf("tagRef(name) = %+v, %v", ref, err)
	}
	ref, err = tagRef(nil, 2, true)
	if err != nil || ref.Index == nil || *ref.Index != 2 {
		t.Fatalf("tagRef(index) = %+v, %v", ref, err)
	}
	if _, err := tagRef([]string{"web"}, 2, true); err == nil {
		t.Fatal("expected error for name and index")
	}
	if _, err := tagRef(nil, 0, false); err == nil {
		t.Fatal("expected error for neither")
	}
}

func TestParseWindowID(t *testing.T) {
	tests := []struct {
		in      string
		want    uint32
		wantErr bool
	}{
		{"", 0, false},
		{"4194307", 4194307, false},
		{"0x400003", 0x400003, false},
		{"window", 0, true},
		{"0x1ffffffff", 0, true},
	}
	for _, tt := range tests {
		got, err := parseWindowID(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("parseWindowID(%q) = %d, %v", tt.in, got, err)
		}
	}

	for in, want := range map[string]bool{"on": true, "OFF": false, "1": true, "no": false} {
		got, err := parseOnOff(in)
		if err != nil || got != want {
			t.Errorf("parseOnOff(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := parseOnOff("maybe"); err == nil {
		t.Error("expected error for maybe")
	}
}

func TestWriteState(t *testing.T) {
	state := &ipc.StateData{Monitors: []ipc.MonitorState{{
		Name:    "DP-1",
		Focused: true,
		Desktops: []ipc.DesktopState{
			{Name: "I", TagNames: []string{"default"}, Displayed: true, Windows: []ipc.WindowState{
				{ID: 0x400003, Tags: 1, Visible: true, Focused: true, Class: "kitty"},
			}},
			{Name: "II"},
		},
	}}}

	var plain bytes.Buffer
	if err := writeState(&plain, state, false); err != nil {
		t.Fatal(err)
	}
	want := "DP-1*\tI*\tdefault\t0x00400003*\t1\ttrue\tkitty\n" +
		"DP-1*\tII\t-\t-\t-\t-\t-\n"
	if plain.String() != want {
		t.Fatalf("plain = %q, want %q", plain.String(), want)
	}

	var pretty bytes.Buffer
	if err := writeState(&pretty, state, true); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(pretty.String(), "MONITOR") || strings.Contains(pretty.String(), "\t") {
		t.Fatalf("pretty = %q", pretty.String())
	}
}

func TestFormatSource(t *testing.T) {
	tests := []struct {
		src  config.Source
		want string
	}{
		{config.Source{Kind: config.SourceDefault}, "default"},
		{config.Source{Kind: config.SourceFile}, "file"},
		{config.Source{Kind: config.SourceFile, File: "/c.yaml"}, "file:/c.yaml"},
		{config.Source{Kind: config.SourceFile, File: "/c.yaml", Line: 3, Column: 5}, "file:/c.yaml:3:5"},
	}
	for _, tt := range tests {
		if got := formatSource(tt.src); got != tt.want {
			t.Errorf("formatSource(%+v) = %q, want %q", tt.src, got, tt.want)
		}
	}
}
