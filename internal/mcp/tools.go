package mcp

import (
	"context"
	"fmt"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/tagtile/internal/ipc"
)

var ok = OKOutput{OK: true}

func (s *Server) handleListTags(_ context.Context, _ *mcpsdk.CallToolRequest, _ struct{}) (*mcpsdk.CallToolResult, ListTagsOutput, error) {
	data, err := s.daemon.ListTags()
	if err != nil {
		return nil, ListTagsOutput{}, err
	}
	out := ListTagsOutput{Tags: []TagOutput{}}
	for _, t := range data.Tags {
		out.Tags = append(out.Tags, TagOutput(t))
	}
	return nil, out, nil
}

func (s *Server) handleAddTag(_ context.Context, _ *mcpsdk.CallToolRequest, args TagInput) (*mcpsdk.CallToolResult, TagOutput, error) {
	name := strings.TrimSpace(args.Name)
	if name == "" {
		return nil, TagOutput{}, fmt.Errorf("name is required")
	}
	info, err := s.daemon.AddTag(name)
	if err != nil {
		return nil, TagOutput{}, err
	}
	return nil, TagOutput(*info), nil
}

func (s *Server) handleRemoveTag(_ context.Context, _ *mcpsdk.CallToolRequest, args RemoveTagInput) (*mcpsdk.CallToolResult, OKOutput, error) {
	name := strings.TrimSpace(args.Name)
	if name == "" && args.Index == nil {
		return nil, OKOutput{}, fmt.Errorf("name or index is required")
	}
	ref := ipc.TagRef{Name: name}
	if name == "" {
		ref.Index = args.Index
	}
	if err := s.daemon.RemoveTag(ref); err != nil {
		return nil, OKOutput{}, err
	}
	return nil, ok, nil
}

func (s *Server) handleViewTag(_ context.Context, _ *mcpsdk.CallToolRequest, args TagInput) (*mcpsdk.CallToolResult, OKOutput, error) {
	if err := s.daemon.ViewTag(strings.TrimSpace(args.Name)); err != nil {
		return nil, OKOutput{}, err
	}
	return nil, ok, nil
}

func (s *Server) handleToggleTag(_ context.Context, _ *mcpsdk.CallToolRequest, args ToggleTagInput) (*mcpsdk.CallToolResult, OKOutput, error) {
	if err := s.daemon.ToggleTag(strings.TrimSpace(args.Name), args.Window); err != nil {
		return nil, OKOutput{}, err
	}
	return nil, ok, nil
}

func maskSpec(tags []string, mask *uint32) (ipc.MaskSpec, error) {
	if len(tags) == 0 && mask == nil {
		return ipc.MaskSpec{}, fmt.Errorf("tags or mask is required")
	}
	return ipc.MaskSpec{Tags: tags, Mask: mask}, nil
}

func (s *Server) handleTagDesktop(_ context.Context, _ *mcpsdk.CallToolRequest, args TagDesktopInput) (*mcpsdk.CallToolResult, OKOutput, error) {
	spec, err := maskSpec(args.Tags, args.Mask)
	if err != nil {
		return nil, OKOutput{}, err
	}
	if err := s.daemon.TagDesktop(ipc.TagDesktopPayload{Monitor: args.Monitor, Desktop: args.Desktop, Spec: spec}); err != nil {
		return nil, OKOutput{}, err
	}
	return nil, ok, nil
}

func (s *Server) handleTagWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args TagWindowInput) (*mcpsdk.CallToolResult, OKOutput, error) {
	spec, err := maskSpec(args.Tags, args.Mask)
	if err != nil {
		return nil, OKOutput{}, err
	}
	if err := s.daemon.TagWindow(ipc.TagWindowPayload{Window: args.Window, Spec: spec}); err != nil {
		return nil, OKOutput{}, err
	}
	return nil, ok, nil
}

func (s *Server) handleSetPresence(_ context.Context, _ *mcpsdk.CallToolRequest, args SetPresenceInput) (*mcpsdk.CallToolResult, OKOutput, error) {
	if args.Window == 0 {
		return nil, OKOutput{}, fmt.Errorf("window is required")
	}
	if err := s.daemon.SetPresence(args.Window, args.Present); err != nil {
		return nil, OKOutput{}, err
	}
	return nil, ok, nil
}

func (s *Server) handleGetState(_ context.Context, _ *mcpsdk.CallToolRequest, _ struct{}) (*mcpsdk.CallToolResult, GetStateOutput, error) {
	state, err := s.daemon.GetState()
	if err != nil {
		return nil, GetStateOutput{}, err
	}
	tagData, err := s.daemon.ListTags()
	if err != nil {
		return nil, GetStateOutput{}, err
	}

	out := GetStateOutput{Desktops: []DesktopOutput{}}
	for _, m := range state.Monitors {
		for _, d := range m.Desktops {
			desk := DesktopOutput{
				Monitor:   m.Name,
				Name:      d.Name,
				Tags:      d.TagNames,
				Displayed: d.Displayed,
				Focused:   m.Focused && d.Displayed,
				Windows:   []WindowOutput{},
			}
			for _, w := range d.Windows {
				desk.Windows = append(desk.Windows, WindowOutput{
					ID:       w.ID,
					Tags:     namesOf(tagData.Tags, w.Tags),
					Visible:  w.Visible,
					Focused:  w.Focused,
					Floating: w.Floating,
					Class:    w.Class,
					Title:    w.Title,
				})
			}
			out.Desktops = append(out.Desktops, desk)
		}
	}

	// The status line is informational; a failure here does not fail the call.
	if st, err := s.daemon.GetStatus(); err == nil {
		out.Status = strings.TrimSuffix(st.Line, "\n")
	}
	return nil, out, nil
}

func (s *Server) handleFocusDesktop(_ context.Context, _ *mcpsdk.CallToolRequest, args FocusDesktopInput) (*mcpsdk.CallToolResult, OKOutput, error) {
	desktop := strings.TrimSpace(args.Desktop)
	if desktop == "" {
		return nil, OKOutput{}, fmt.Errorf("desktop is required")
	}
	if err := s.daemon.FocusDesktop(ipc.DesktopRef{Monitor: strings.TrimSpace(args.Monitor), Desktop: desktop}); err != nil {
		return nil, OKOutput{}, err
	}
	return nil, ok, nil
}

// namesOf lists the names of the tags whose bit is set in mask.
func namesOf(all []ipc.TagInfo, mask uint32) []string {
	names := []string{}
	for _, t := range all {
		if mask&t.Mask != 0 {
			names = append(names, t.Name)
		}
	}
	return names
}
