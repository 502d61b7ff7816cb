package daemon

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/1broseidon/tagtile/internal/config"
	"github.com/1broseidon/tagtile/internal/ipc"
	"github.com/1broseidon/tagtile/internal/platform"
)

type fakeBackend struct {
	mu       sync.Mutex
	displays []platform.Display
	windows  []platform.Window
	hidden   map[platform.WindowID]bool
	focused  platform.WindowID
	moves    map[platform.WindowID]platform.Rect
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		displays: []platform.Display{{
			ID:     0,
			Name:   "DP-1",
			Bounds: platform.Rect{Width: 1920, Height: 1080},
			Usable: platform.Rect{Y: 30, Width: 1920, Height: 1050},
		}},
		hidden: map[platform.WindowID]bool{},
		moves:  map[platform.WindowID]platform.Rect{},
	}
}

func (b *fakeBackend) Displays() ([]platform.Display, error) { return b.displays, nil }
func (b *fakeBackend) ActiveDisplay() (platform.Display, error) { return b.displays[0], nil }
func (b *fakeBackend) ActiveWindow() (platform.WindowID, error) { return b.focused, nil }

func (b *fakeBackend) ListWindows() ([]platform.Window, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]platform.Window(nil), b.windows...), nil
}

func (b *fakeBackend) MoveResize(w platform.WindowID, r platform.Rect) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.moves[w] = r
	return nil
}

func (b *fakeBackend) Show(w platform.WindowID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.hidden[w] = false
	return nil
}

func (b *fakeBackend) Hide(w platform.WindowID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.hidden[w] = true
	return nil
}

func (b *fakeBackend) Focus(w platform.WindowID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.focused = w
	return nil
}

func (b *fakeBackend) open(ids ...platform.WindowID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, id := range ids {
		b.windows = append(b.windows, platform.Window{
			ID:     id,
			Bounds: platform.Rect{X: 100, Y: 100, Width: 400, Height: 300},
		})
	}
}

func (b *fakeBackend) close(id platform.WindowID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, w := range b.windows {
		if w.ID == id {
			b.windows = append(b.windows[:i], b.windows[i+1:]...)
			return
		}
	}
}

func (b *fakeBackend) isHidden(w platform.WindowID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hidden[w]
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestDaemon(t *testing.T, cfg *config.Config) (*Daemon, *fakeBackend) {
	t.Helper()
	b := newFakeBackend()
	d, err := New(Options{Config: cfg, Backend: b, Logger: testLogger()})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return d, b
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Tags = []string{"web", "code"}
	cfg.Monitors = map[string]config.MonitorConfig{
		"DP-1": {Desktops: []config.DesktopConfig{
			{Name: "main", Tags: []string{"default"}},
			{Name: "side"},
		}},
	}
	return cfg
}

func TestNewBuildsMonitorsFromConfig(t *testing.T) {
	d, _ := newTestDaemon(t, testConfig())

	st := d.State()
	if len(st.Monitors) != 1 {
		t.Fatalf("monitors = %d, want 1", len(st.Monitors))
	}
	m := st.Monitors[0]
	if m.Name != "DP-1" || !m.Focused {
		t.Fatalf("monitor = %+v", m)
	}
	if len(m.Desktops) != 2 {
		t.Fatalf("desktops = %d, want 2", len(m.Desktops))
	}
	if !m.Desktops[0].Displayed || m.Desktops[1].Displayed {
		t.Fatalf("only the first desktop should be displayed: %+v", m.Desktops)
	}
	// A desktop without configured tags shows the default tag.
	if got := m.Desktops[1].TagNames; len(got) != 1 || got[0] != "default" {
		t.Fatalf("side tags = %v, want [default]", got)
	}
	if got := d.ListTags().Text; got != "default 1\nweb 2\ncode 4\n" {
		t.Fatalf("ListTags = %q", got)
	}
}

func TestNewRejectsUnknownDesktopTag(t *testing.T) {
	cfg := testConfig()
	cfg.Monitors["DP-1"] = config.MonitorConfig{Desktops: []config.DesktopConfig{{Name: "x", Tags: []string{"nope"}}}}
	if _, err := New(Options{Config: cfg, Backend: newFakeBackend(), Logger: testLogger()}); err == nil {
		t.Fatal("expected error for unknown desktop tag")
	}
}

func TestSyncManagesAndUnmanages(t *testing.T) {
	d, b := newTestDaemon(t, testConfig())
	b.open(10, 11)
	if err := d.Reconcile(); err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	if got := d.Status().Windows; got != 2 {
		t.Fatalf("windows = %d, want 2", got)
	}
	if b.focused != 11 {
		t.Fatalf("focused = %d, want newest window 11", b.focused)
	}
	if _, ok := b.moves[10]; !ok {
		t.Fatal("window 10 was not arranged")
	}

	b.close(11)
	if err := d.Reconcile(); err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	if got := d.Status().Windows; got != 1 {
		t.Fatalf("windows = %d, want 1", got)
	}
	if b.focused != 10 {
		t.Fatalf("focused = %d, want 10 after close", b.focused)
	}
}

func TestTagWindowHidesAndViewShows(t *testing.T) {
	d, b := newTestDaemon(t, testConfig())
	b.open(10, 11)
	d.Reconcile()

	if err := d.TagWindow(ipc.TagWindowPayload{Window: 11, Spec: ipc.MaskSpec{Tags: []string{"web"}}}); err != nil {
		t.Fatalf("TagWindow() error = %v", err)
	}
	if !b.isHidden(11) {
		t.Fatal("window 11 should be hidden after moving to web")
	}
	if b.focused != 10 {
		t.Fatalf("focus should hand off to 10, got %d", b.focused)
	}

	if err := d.ViewTag("web"); err != nil {
		t.Fatalf("ViewTag() error = %v", err)
	}
	if b.isHidden(11) || !b.isHidden(10) {
		t.Fatalf("after view web: hidden = %v", b.hidden)
	}

	if err := d.ToggleTag(ipc.TogglePayload{Name: "default"}); err != nil {
		t.Fatalf("ToggleTag() error = %v", err)
	}
	if b.isHidden(10) || b.isHidden(11) {
		t.Fatalf("both windows should show: %v", b.hidden)
	}
}

func TestTagDesktopByMask(t *testing.T) {
	d, _ := newTestDaemon(t, testConfig())
	mask := uint32(6)
	if err := d.TagDesktop(ipc.TagDesktopPayload{Desktop: "side", Spec: ipc.MaskSpec{Mask: &mask}}); err != nil {
		t.Fatalf("TagDesktop() error = %v", err)
	}
	side := d.State().Monitors[0].Desktops[1]
	if side.Tags != 6 || strings.Join(side.TagNames, ",") != "web,code" {
		t.Fatalf("side = %+v", side)
	}

	bad := uint32(1 << 9)
	if err := d.TagDesktop(ipc.TagDesktopPayload{Spec: ipc.MaskSpec{Mask: &bad}}); err == nil {
		t.Fatal("expected error for unregistered mask bits")
	}
	if err := d.TagDesktop(ipc.TagDesktopPayload{Monitor: "HDMI-9", Spec: ipc.MaskSpec{Tags: []string{"web"}}}); err == nil {
		t.Fatal("expected error for unknown monitor")
	}
	if err := d.TagDesktop(ipc.TagDesktopPayload{}); err == nil {
		t.Fatal("expected error for empty spec")
	}
}

func TestRemoveTagStripsBits(t *testing.T) {
	d, b := newTestDaemon(t, testConfig())
	b.open(10)
	d.Reconcile()
	d.TagWindow(ipc.TagWindowPayload{Window: 10, Spec: ipc.MaskSpec{Tags: []string{"default", "web"}}})

	idx := 1
	if err := d.RemoveTag(ipc.TagRef{Index: &idx}); err != nil {
		t.Fatalf("RemoveTag() error = %v", err)
	}
	w := d.State().Monitors[0].Desktops[0].Windows[0]
	if w.Tags != 1 {
		t.Fatalf("window tags = %d, want 1", w.Tags)
	}
	if _, err := d.GetTag(ipc.TagRef{Name: "web"}); err == nil {
		t.Fatal("web should be gone")
	}
	info, err := d.AddTag("chat")
	if err != nil {
		t.Fatalf("AddTag() error = %v", err)
	}
	if info.Mask != 2 || info.Index != 2 {
		t.Fatalf("chat = %+v, want reused bit 2 at index 2", info)
	}
}

func TestSetPresence(t *testing.T) {
	d, b := newTestDaemon(t, testConfig())
	b.open(10)
	d.Reconcile()
	if err := d.SetPresence(ipc.PresencePayload{Window: 10, Present: false}); err != nil {
		t.Fatalf("SetPresence() error = %v", err)
	}
	if !b.isHidden(10) {
		t.Fatal("window should be hidden")
	}
	if err := d.SetPresence(ipc.PresencePayload{Window: 99, Present: true}); err == nil {
		t.Fatal("expected error for unmanaged window")
	}
}

func TestReloadAddsTagsAndRunsHooks(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("tags: [web]\n"), 0644); err != nil {
		t.Fatal(err)
	}
	res, err := config.LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath() error = %v", err)
	}
	b := newFakeBackend()
	d, err := New(Options{Config: res.Config, ConfigPath: path, Backend: b, Logger: testLogger()})
	if err != nil {
		t.Fatal(err)
	}
	var reloaded int
	d.OnReload(func(*config.Config) { reloaded++ })

	if err := os.WriteFile(path, []byte("tags: [web, mail]\nlayout:\n  mode: vertical\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := d.Reload(); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if reloaded != 1 {
		t.Fatalf("hooks ran %d times, want 1", reloaded)
	}
	if _, err := d.GetTag(ipc.TagRef{Name: "mail"}); err != nil {
		t.Fatalf("mail tag missing after reload: %v", err)
	}
	if got := d.Config().Layout.Mode; got != config.LayoutModeVertical {
		t.Fatalf("layout = %q, want vertical", got)
	}

	if err := os.WriteFile(path, []byte("bogus: 1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := d.Reload(); err == nil {
		t.Fatal("expected error for invalid config")
	}
	if reloaded != 1 {
		t.Fatal("hooks must not run on a failed reload")
	}
}

func TestStatusLine(t *testing.T) {
	d, b := newTestDaemon(t, testConfig())
	b.open(10)
	d.Reconcile()
	line := d.Status().Line
	if !strings.HasPrefix(line, "MDP-1:Dmain:") {
		t.Fatalf("status line = %q", line)
	}
}

type countingSyncer struct {
	calls int
	err   error
	panic bool
}

func (s *countingSyncer) Reconcile() error {
	s.calls++
	if s.panic {
		panic("boom")
	}
	return s.err
}

func TestReconcilerRecovers(t *testing.T) {
	s := &countingSyncer{err: errors.New("x server gone")}
	r := NewReconciler(ReconcilerConfig{Logger: testLogger()}, s)
	r.ReconcileNow()
	s.panic = true
	r.ReconcileNow()
	if s.calls != 2 {
		t.Fatalf("calls = %d, want 2", s.calls)
	}
}

func TestRulesSetInitialTags(t *testing.T) {
	cfg := testConfig()
	floating := true
	cfg.Rules = []config.Rule{{Class: "mpv", Tags: []string{"web"}, Floating: &floating}}
	d, b := newTestDaemon(t, cfg)

	b.mu.Lock()
	b.windows = append(b.windows,
		platform.Window{ID: 20, AppID: "MPV", Bounds: platform.Rect{X: 10, Y: 10, Width: 300, Height: 200}},
		platform.Window{ID: 21, AppID: "kitty", Bounds: platform.Rect{X: 10, Y: 10, Width: 300, Height: 200}},
	)
	b.mu.Unlock()
	if err := d.Reconcile(); err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}

	if !b.isHidden(20) {
		t.Fatal("mpv is tagged web and should start hidden")
	}
	if b.isHidden(21) {
		t.Fatal("kitty should be visible")
	}
	var got *ipc.WindowState
	for _, w := range d.State().Monitors[0].Desktops[0].Windows {
		if w.ID == 20 {
			got = &w
		}
	}
	if got == nil || got.Tags != 2 || !got.Floating {
		t.Fatalf("mpv state = %+v", got)
	}
}

func TestFocusDesktopSwitchesWindows(t *testing.T) {
	d, b := newTestDaemon(t, testConfig())
	b.open(10)
	d.Reconcile()

	if err := d.FocusDesktop(ipc.DesktopRef{Desktop: "side"}); err != nil {
		t.Fatalf("FocusDesktop() error = %v", err)
	}
	if !b.isHidden(10) {
		t.Fatal("window on main should hide when side is displayed")
	}
	if !d.State().Monitors[0].Desktops[1].Displayed {
		t.Fatal("side should be displayed")
	}
	if err := d.FocusDesktop(ipc.DesktopRef{Desktop: "nope"}); err == nil {
		t.Fatal("expected error for unknown desktop")
	}
}

func TestCycleLayout(t *testing.T) {
	d, _ := newTestDaemon(t, testConfig())
	got, err := d.CycleLayout(1)
	if err != nil {
		t.Fatalf("CycleLayout() error = %v", err)
	}
	if got.Mode != string(config.LayoutModeAuto) {
		t.Fatalf("mode = %q, want auto after tree", got.Mode)
	}
	if got, _ := d.CycleLayout(-1); got.Mode != string(config.LayoutModeTree) {
		t.Fatalf("mode = %q, want tree", got.Mode)
	}
}

func TestStatusFollowsWindowTags(t *testing.T) {
	d, b := newTestDaemon(t, testConfig())
	b.open(10, 11)
	d.Reconcile()
	// Toggling twice leaves the state as it was but caches a line.
	for range 2 {
		if err := d.ToggleTag(ipc.TogglePayload{Name: "code"}); err != nil {
			t.Fatal(err)
		}
	}

	if err := d.TagWindow(ipc.TagWindowPayload{Window: 11, Spec: ipc.MaskSpec{Tags: []string{"web"}}}); err != nil {
		t.Fatalf("TagWindow() error = %v", err)
	}
	if got, want := d.Status().Line, "MDP-1:Dmain:Adefault:Oweb:Fcode\n"; got != want {
		t.Fatalf("status = %q, want %q", got, want)
	}

	b.close(11)
	d.Reconcile()
	if got, want := d.Status().Line, "MDP-1:Dmain:Adefault:Fweb:Fcode\n"; got != want {
		t.Fatalf("status after close = %q, want %q", got, want)
	}
}

func TestStatusFollowsUnfocusedMonitor(t *testing.T) {
	cfg := testConfig()
	cfg.Monitors["HDMI-1"] = config.MonitorConfig{Desktops: []config.DesktopConfig{{Name: "ext"}}}
	b := newFakeBackend()
	b.displays = append(b.displays, platform.Display{
		ID:     1,
		Name:   "HDMI-1",
		Bounds: platform.Rect{X: 1920, Width: 1280, Height: 1024},
	})
	d, err := New(Options{Config: cfg, Backend: b, Logger: testLogger()})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	d.Status()

	if err := d.TagDesktop(ipc.TagDesktopPayload{Monitor: "HDMI-1", Spec: ipc.MaskSpec{Tags: []string{"web"}}}); err != nil {
		t.Fatalf("TagDesktop() error = %v", err)
	}
	line := d.Status().Line
	if !strings.Contains(line, "mHDMI-1:dext:Fdefault:Aweb:Fcode") {
		t.Fatalf("status = %q", line)
	}
	if !strings.HasPrefix(line, "MDP-1:Dmain:") {
		t.Fatalf("focused monitor should lead: %q", line)
	}
}

func TestHidingLastWindowReleasesFocus(t *testing.T) {
	d, b := newTestDaemon(t, testConfig())
	b.open(10)
	d.Reconcile()
	if b.focused != 10 {
		t.Fatalf("focused = %d, want 10", b.focused)
	}

	if err := d.TagWindow(ipc.TagWindowPayload{Window: 10, Spec: ipc.MaskSpec{Tags: []string{"web"}}}); err != nil {
		t.Fatalf("TagWindow() error = %v", err)
	}
	if b.focused != 0 {
		t.Fatalf("focused = %d, want focus returned to the root", b.focused)
	}
}
