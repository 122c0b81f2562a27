package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"mycobot/internal/panels"
)

// AskParams parameters for ask_mycobot
type AskParams struct {
	Question string `json:"question" mcp:"the mushroom farming question to answer"`
}

// ListPanelsParams parameters for list_panels
type ListPanelsParams struct{}

// RunPanelParams parameters for run_panel
type RunPanelParams struct {
	Panel  string            `json:"panel" mcp:"panel name as returned by list_panels"`
	Fields map[string]string `json:"fields,omitempty" mcp:"field values keyed by field name"`
}

// MycoBotMCPServer exposes the panel catalog as MCP tools.
type MycoBotMCPServer struct {
	catalog *panels.Catalog
	logger  *zap.Logger
}

func NewMycoBotMCPServer(catalog *panels.Catalog, logger *zap.Logger) *MycoBotMCPServer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MycoBotMCPServer{catalog: catalog, logger: logger}
}

func (s *MycoBotMCPServer) Ask(ctx context.Context, session *mcp.ServerSession, params *mcp.CallToolParamsFor[AskParams]) (*mcp.CallToolResultFor[any], error) {
	question := strings.TrimSpace(params.Arguments.Question)
	s.logger.Info("ask_mycobot", zap.Int("question_len", len(question)))
	return s.run(ctx, "chat", panels.Input{Values: map[string]string{"question": question}})
}

func (s *MycoBotMCPServer) ListPanels(ctx context.Context, session *mcp.ServerSession, params *mcp.CallToolParamsFor[ListPanelsParams]) (*mcp.CallToolResultFor[any], error) {
	var b strings.Builder
	names := make([]string, 0)
	for _, p := range s.catalog.Panels() {
		names = append(names, p.Name)
		fmt.Fprintf(&b, "%s - %s\n", p.Name, p.Title)
		if u := p.Usage(); u != "" {
			fmt.Fprintf(&b, "  fields: %s\n", u)
		}
	}
	return &mcp.CallToolResultFor[any]{
		Content: []mcp.Content{&mcp.TextContent{Text: b.String()}},
		Meta: map[string]interface{}{
			"panels": names,
		},
	}, nil
}

func (s *MycoBotMCPServer) RunPanel(ctx context.Context, session *mcp.ServerSession, params *mcp.CallToolParamsFor[RunPanelParams]) (*mcp.CallToolResultFor[any], error) {
	args := params.Arguments
	s.logger.Info("run_panel", zap.String("panel", args.Panel))
	values := make(map[string]string, len(args.Fields))
	for k, v := range args.Fields {
		values[strings.ToLower(k)] = v
	}
	return s.run(ctx, strings.ToLower(strings.TrimSpace(args.Panel)), panels.Input{Values: values})
}

func (s *MycoBotMCPServer) run(ctx context.Context, name string, in panels.Input) (*mcp.CallToolResultFor[any], error) {
	out, err := s.catalog.Run(ctx, name, in)
	var inputErr *panels.InputError
	switch {
	case errors.As(err, &inputErr):
		return errorResult("⚠️ " + inputErr.Message), nil
	case errors.Is(err, panels.ErrUnknownPanel):
		return errorResult(fmt.Sprintf("❌ Unknown panel %q, call list_panels first", name)), nil
	case err != nil:
		s.logger.Error("panel failed", zap.String("panel", name), zap.Error(err))
		return errorResult(fmt.Sprintf("❌ Panel %s failed: %v", name, err)), nil
	}

	text := out.Text
	if out.CSV != "" {
		text = out.CSV
	}
	res := &mcp.CallToolResultFor[any]{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
	if out.CSVName != "" {
		res.Meta = map[string]interface{}{"file_name": out.CSVName, "rows": len(out.Rows)}
	}
	return res, nil
}

func errorResult(text string) *mcp.CallToolResultFor[any] {
	return &mcp.CallToolResultFor[any]{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}
