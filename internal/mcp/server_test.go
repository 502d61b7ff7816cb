package mcp

import (
	"context"
	"errors"
	"slices"
	"testing"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/tagtile/internal/ipc"
)

type fakeDaemon struct {
	tags     []ipc.TagInfo
	desktop  *ipc.TagDesktopPayload
	window   *ipc.TagWindowPayload
	removed  *ipc.TagRef
	viewed   string
	toggled  string
	presence map[uint32]bool
	state    ipc.StateData
	focused  *ipc.DesktopRef
}

func newFakeDaemon() *fakeDaemon {
	return &fakeDaemon{
		tags: []ipc.TagInfo{
			{Index: 0, Name: "default", Mask: 1},
			{Index: 1, Name: "web", Mask: 2},
		},
		presence: map[uint32]bool{},
	}
}

func (f *fakeDaemon) AddTag(name string) (*ipc.TagInfo, error) {
	for _, t := range f.tags {
		if t.Name == name {
			return nil, errors.New("tag exists")
		}
	}
	info := ipc.TagInfo{Index: len(f.tags), Name: name, Mask: 1 << len(f.tags)}
	f.tags = append(f.tags, info)
	return &info, nil
}

func (f *fakeDaemon) RemoveTag(ref ipc.TagRef) error {
	f.removed = &ref
	return nil
}

func (f *fakeDaemon) ListTags() (*ipc.TagsData, error) {
	return &ipc.TagsData{Tags: f.tags}, nil
}

func (f *fakeDaemon) TagDesktop(p ipc.TagDesktopPayload) error {
	f.desktop = &p
	return nil
}

func (f *fakeDaemon) TagWindow(p ipc.TagWindowPayload) error {
	f.window = &p
	return nil
}

func (f *fakeDaemon) ViewTag(name string) error {
	if name == "nope" {
		return errors.New(`tag "nope" not found`)
	}
	f.viewed = name
	return nil
}

func (f *fakeDaemon) ToggleTag(name string, window bool) error {
	f.toggled = name
	if window {
		f.toggled += "@window"
	}
	return nil
}

func (f *fakeDaemon) SetPresence(window uint32, present bool) error {
	f.presence[window] = present
	return nil
}

func (f *fakeDaemon) FocusDesktop(ref ipc.DesktopRef) error {
	f.focused = &ref
	return nil
}

func (f *fakeDaemon) GetState() (*ipc.StateData, error) { return &f.state, nil }

func (f *fakeDaemon) GetStatus() (*ipc.StatusData, error) {
	return &ipc.StatusData{Line: "MDP-1:DI:Adefault:Fweb\n"}, nil
}

func TestAddAndListTags(t *testing.T) {
	f := newFakeDaemon()
	s := NewServer(f)
	ctx := context.Background()

	_, out, err := s.handleAddTag(ctx, nil, TagInput{Name: " code "})
	if err != nil {
		t.Fatalf("add_tag error = %v", err)
	}
	if out.Name != "code" || out.Mask != 4 {
		t.Fatalf("add_tag = %+v", out)
	}
	if _, _, err := s.handleAddTag(ctx, nil, TagInput{}); err == nil {
		t.Fatal("expected error for empty name")
	}

	_, list, err := s.handleListTags(ctx, nil, struct{}{})
	if err != nil {
		t.Fatalf("list_tags error = %v", err)
	}
	var names []string
	for _, tag := range list.Tags {
		names = append(names, tag.Name)
	}
	if want := []string{"default", "web", "code"}; !slices.Equal(names, want) {
		t.Fatalf("names = %v, want %v", names, want)
	}
}

func TestFocusDesktop(t *testing.T) {
	f := newFakeDaemon()
	s := NewServer(f)
	ctx := context.Background()

	if _, _, err := s.handleFocusDesktop(ctx, nil, FocusDesktopInput{Monitor: "DP-1"}); err == nil {
		t.Fatal("expected error without desktop")
	}
	if _, _, err := s.handleFocusDesktop(ctx, nil, FocusDesktopInput{Desktop: " II "}); err != nil {
		t.Fatalf("focus_desktop error = %v", err)
	}
	if f.focused == nil || *f.focused != (ipc.DesktopRef{Desktop: "II"}) {
		t.Fatalf("focused = %+v", f.focused)
	}
}

func TestRemoveTagByNameOrIndex(t *testing.T) {
	f := newFakeDaemon()
	s := NewServer(f)
	ctx := context.Background()

	if _, _, err := s.handleRemoveTag(ctx, nil, RemoveTagInput{}); err == nil {
		t.Fatal("expected error without name or index")
	}
	idx := 1
	if _, _, err := s.handleRemoveTag(ctx, nil, RemoveTagInput{Index: &idx}); err != nil {
		t.Fatal(err)
	}
	if f.removed == nil || f.removed.Index == nil || *f.removed.Index != 1 {
		t.Fatalf("removed = %+v", f.removed)
	}
	if _, _, err := s.handleRemoveTag(ctx, nil, RemoveTagInput{Name: "web", Index: &idx}); err != nil {
		t.Fatal(err)
	}
	if f.removed.Name != "web" || f.removed.Index != nil {
		t.Fatalf("name should win over index: %+v", f.removed)
	}
}

func TestRetagTools(t *testing.T) {
	f := newFakeDaemon()
	s := NewServer(f)
	ctx := context.Background()

	if _, _, err := s.handleTagDesktop(ctx, nil, TagDesktopInput{}); err == nil {
		t.Fatal("expected error without tags or mask")
	}
	if _, _, err := s.handleTagDesktop(ctx, nil, TagDesktopInput{Desktop: "II", Tags: []string{"web"}}); err != nil {
		t.Fatal(err)
	}
	if f.desktop.Desktop != "II" || !slices.Equal(f.desktop.Spec.Tags, []string{"web"}) {
		t.Fatalf("desktop payload = %+v", f.desktop)
	}

	mask := uint32(3)
	if _, _, err := s.handleTagWindow(ctx, nil, TagWindowInput{Window: 42, Mask: &mask}); err != nil {
		t.Fatal(err)
	}
	if f.window.Window != 42 || *f.window.Spec.Mask != 3 {
		t.Fatalf("window payload = %+v", f.window)
	}

	if _, _, err := s.handleToggleTag(ctx, nil, ToggleTagInput{Name: "web", Window: true}); err != nil {
		t.Fatal(err)
	}
	if f.toggled != "web@window" {
		t.Fatalf("toggled = %q", f.toggled)
	}

	if _, _, err := s.handleViewTag(ctx, nil, TagInput{Name: "nope"}); err == nil {
		t.Fatal("expected daemon error to propagate")
	}

	if _, _, err := s.handleSetPresence(ctx, nil, SetPresenceInput{}); err == nil {
		t.Fatal("expected error without window")
	}
	if _, _, err := s.handleSetPresence(ctx, nil, SetPresenceInput{Window: 7, Present: true}); err != nil {
		t.Fatal(err)
	}
	if !f.presence[7] {
		t.Fatal("presence not forwarded")
	}
}

func TestGetState(t *testing.T) {
	f := newFakeDaemon()
	f.state = ipc.StateData{Monitors: []ipc.MonitorState{{
		Name:    "DP-1",
		Focused: true,
		Desktops: []ipc.DesktopState{
			{Name: "I", TagNames: []string{"default"}, Displayed: true, Windows: []ipc.WindowState{
				{ID: 10, Tags: 3, Visible: true, Focused: true},
			}},
			{Name: "II", TagNames: []string{"web"}},
		},
	}}}
	s := NewServer(f)

	_, out, err := s.handleGetState(context.Background(), nil, struct{}{})
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Desktops) != 2 {
		t.Fatalf("desktops = %d", len(out.Desktops))
	}
	if !out.Desktops[0].Focused || out.Desktops[1].Focused {
		t.Fatalf("focus flags wrong: %+v", out.Desktops)
	}
	if got := out.Desktops[0].Windows[0].Tags; !slices.Equal(got, []string{"default", "web"}) {
		t.Fatalf("window tags = %v", got)
	}
	if out.Status != "MDP-1:DI:Adefault:Fweb" {
		t.Fatalf("status = %q", out.Status)
	}
}

func TestToolsAreRegistered(t *testing.T) {
	s := NewServer(newFakeDaemon())
	ctx := context.Background()

	serverT, clientT := mcpsdk.NewInMemoryTransports()
	if _, err := s.mcpServer.Connect(ctx, serverT, nil); err != nil {
		t.Fatalf("server connect: %v", err)
	}
	client := mcpsdk.NewClient(&mcpsdk.Implementation{Name: "test", Version: "0"}, nil)
	session, err := client.Connect(ctx, clientT, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	defer session.Close()

	res, err := session.ListTools(ctx, nil)
	if err != nil {
		t.Fatalf("ListTools: %v", err)
	}
	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	slices.Sort(names)
	want := []string{"add_tag", "focus_desktop", "get_state", "list_tags", "remove_tag", "set_presence", "tag_desktop", "tag_window", "toggle_tag", "view_tag"}
	if !slices.Equal(names, want) {
		t.Fatalf("tools = %v, want %v", names, want)
	}

	call, err := session.CallTool(ctx, &mcpsdk.CallToolParams{
		Name:      "view_tag",
		Arguments: map[string]any{"name": "web"},
	})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	if call.IsError {
		t.Fatalf("view_tag returned tool error: %+v", call.Content)
	}
}
