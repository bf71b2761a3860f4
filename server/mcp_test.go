package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/liuyuxiang92/MOFMaster-Scientific-Server/registry"
)

func newTestMCPServer(t *testing.T) *MCPServer {
	t.Helper()

	reg := registry.New()
	_, err := reg.Register(registry.ToolMetadata{
		Name:        "search_mofs",
		Description: "Search the MOF catalog",
		Category:    registry.CategorySearch,
		Operation: func(ctx context.Context, args map[string]any) string {
			q, _ := args["query"].(string)
			return `{"success": true, "echo": "` + q + `"}`
		},
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	srv, err := NewMCPServer(MCPServerConfig{
		Registry: reg,
		Schemas: map[string]map[string]any{
			"search_mofs": {"type": "object"},
		},
		Logger: slog.Default(),
	})
	if err != nil {
		t.Fatalf("NewMCPServer: %v", err)
	}
	return srv
}

func dispatchRaw(t *testing.T, srv *MCPServer, method string, params string) jsonRPCResponse {
	t.Helper()
	req := jsonRPCRequest{JSONRPC: "2.0", ID: 1, Method: method}
	if params != "" {
		req.Params = json.RawMessage(params)
	}
	return srv.dispatch(context.Background(), req)
}

func TestDispatchInitialize(t *testing.T) {
	srv := newTestMCPServer(t)

	resp := dispatchRaw(t, srv, "initialize", "")
	if resp.Error != nil {
		t.Fatalf("initialize error: %+v", resp.Error)
	}
	result := resp.Result.(map[string]any)
	if result["protocolVersion"] != protocolVersion {
		t.Fatalf("protocolVersion = %v", result["protocolVersion"])
	}
	info := result["serverInfo"].(map[string]any)
	if info["name"] != serverName {
		t.Fatalf("serverInfo.name = %v", info["name"])
	}
}

func TestDispatchToolsList(t *testing.T) {
	srv := newTestMCPServer(t)

	resp := dispatchRaw(t, srv, "tools/list", "")
	if resp.Error != nil {
		t.Fatalf("tools/list error: %+v", resp.Error)
	}
	toolList := resp.Result.(map[string]any)["tools"].([]map[string]any)
	if len(toolList) != 1 {
		t.Fatalf("len(tools) = %d, want 1", len(toolList))
	}
	if toolList[0]["name"] != "search_mofs" {
		t.Fatalf("tools[0].name = %v", toolList[0]["name"])
	}
	if toolList[0]["inputSchema"] == nil {
		t.Fatal("inputSchema missing")
	}
}

func TestDispatchToolsCall(t *testing.T) {
	srv := newTestMCPServer(t)

	resp := dispatchRaw(t, srv, "tools/call", `{"name":"search_mofs","arguments":{"query":"MOF-5"}}`)
	if resp.Error != nil {
		t.Fatalf("tools/call error: %+v", resp.Error)
	}
	content := resp.Result.(map[string]any)["content"].([]map[string]string)
	if len(content) != 1 {
		t.Fatalf("len(content) = %d, want 1", len(content))
	}
	if content[0]["type"] != "text" {
		t.Fatalf("content type = %q", content[0]["type"])
	}
	if !strings.Contains(content[0]["text"], "MOF-5") {
		t.Fatalf("content text = %q", content[0]["text"])
	}
}

func TestDispatchUnknownTool(t *testing.T) {
	srv := newTestMCPServer(t)

	resp := dispatchRaw(t, srv, "tools/call", `{"name":"no_such_tool","arguments":{}}`)
	if resp.Error == nil || resp.Error.Code != -32602 {
		t.Fatalf("error = %+v, want code -32602", resp.Error)
	}
}

func TestDispatchUnknownMethod(t *testing.T) {
	srv := newTestMCPServer(t)

	resp := dispatchRaw(t, srv, "resources/list", "")
	if resp.Error == nil || resp.Error.Code != -32601 {
		t.Fatalf("error = %+v, want code -32601", resp.Error)
	}
}

func TestDispatchPing(t *testing.T) {
	srv := newTestMCPServer(t)

	resp := dispatchRaw(t, srv, "ping", "")
	if resp.Error != nil {
		t.Fatalf("ping error: %+v", resp.Error)
	}
}

func TestToolsListSchemaForAliasedTool(t *testing.T) {
	reg := registry.New()
	_, err := reg.Register(registry.ToolMetadata{
		Name:         "find_mofs",
		Description:  "Search the MOF catalog under an alias",
		Category:     registry.CategorySearch,
		FunctionName: "search_mofs",
		Operation: func(ctx context.Context, args map[string]any) string {
			return `{"success": true}`
		},
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	srv, err := NewMCPServer(MCPServerConfig{
		Registry: reg,
		Schemas: map[string]map[string]any{
			"search_mofs": {"type": "object"},
		},
	})
	if err != nil {
		t.Fatalf("NewMCPServer: %v", err)
	}

	defs := srv.toolDefinitions()
	if len(defs) != 1 {
		t.Fatalf("len(defs) = %d, want 1", len(defs))
	}
	if defs[0]["name"] != "find_mofs" {
		t.Fatalf("name = %v, want find_mofs", defs[0]["name"])
	}
	if _, ok := defs[0]["inputSchema"]; !ok {
		t.Fatal("aliased tool advertises no input schema")
	}
}
