// Package server hosts the registered tools over MCP (line-delimited JSON-RPC
// 2.0 on TCP) and exposes liveness and readiness endpoints.
package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/liuyuxiang92/MOFMaster-Scientific-Server/registry"
)

const (
	protocolVersion = "2024-11-05"
	serverName      = "mof-tools"
	serverVersion   = "1.0.0"
)

type ctxKey string

const ctxKeyTraceID ctxKey = "trace_id"

// MCPServerConfig configures the MCP tool server.
type MCPServerConfig struct {
	Addr     string
	Registry *registry.Registry
	Schemas  map[string]map[string]any
	Logger   *slog.Logger
}

// MCPServer serves registry tools over the MCP wire protocol.
type MCPServer struct {
	addr     string
	registry *registry.Registry
	schemas  map[string]map[string]any
	logger   *slog.Logger

	mu     sync.Mutex
	ln     net.Listener
	closed bool
}

// NewMCPServer creates an MCP server for the given registry.
func NewMCPServer(cfg MCPServerConfig) (*MCPServer, error) {
	if cfg.Registry == nil {
		return nil, fmt.Errorf("mcp server requires a registry")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &MCPServer{
		addr:     cfg.Addr,
		registry: cfg.Registry,
		schemas:  cfg.Schemas,
		logger:   cfg.Logger,
	}, nil
}

type jsonRPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type jsonRPCResponse struct {
	JSONRPC string    `json:"jsonrpc"`
	ID      any       `json:"id"`
	Result  any       `json:"result,omitempty"`
	Error   *rpcError `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// ListenAndServe accepts connections until Shutdown is called.
func (s *MCPServer) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()

	s.logger.Info("mcp server starting", "addr", ln.Addr().String())

	for {
		conn, err := ln.Accept()
		if err != nil {
			s.mu.Lock()
			closed := s.closed
			s.mu.Unlock()
			if closed {
				return nil
			}
			s.logger.Error("mcp accept error", "err", err)
			continue
		}
		go s.handleConn(conn)
	}
}

// Addr returns the bound listener address, or "" before ListenAndServe.
func (s *MCPServer) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return ""
	}
	return s.ln.Addr().String()
}

// Shutdown stops accepting connections.
func (s *MCPServer) Shutdown(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.ln != nil {
		return s.ln.Close()
	}
	return nil
}

func (s *MCPServer) handleConn(conn net.Conn) {
	defer conn.Close()
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req jsonRPCRequest
		if err := json.Unmarshal(line, &req); err != nil {
			s.writeResponse(conn, jsonRPCResponse{
				JSONRPC: "2.0",
				ID:      nil,
				Error:   &rpcError{Code: -32700, Message: "parse error"},
			})
			continue
		}

		traceID := uuid.New().String()
		ctx := context.WithValue(context.Background(), ctxKeyTraceID, traceID)
		resp := s.dispatch(ctx, req)
		s.writeResponse(conn, resp)
	}
}

func (s *MCPServer) writeResponse(w io.Writer, resp jsonRPCResponse) {
	data, _ := json.Marshal(resp)
	data = append(data, '\n')
	w.Write(data)
}

func (s *MCPServer) dispatch(ctx context.Context, req jsonRPCRequest) jsonRPCResponse {
	base := jsonRPCResponse{JSONRPC: "2.0", ID: req.ID}

	switch req.Method {
	case "initialize":
		base.Result = map[string]any{
			"protocolVersion": protocolVersion,
			"capabilities":    map[string]any{"tools": map[string]any{"listChanged": false}},
			"serverInfo":      map[string]any{"name": serverName, "version": serverVersion},
		}
		return base

	case "ping":
		base.Result = map[string]any{}
		return base

	case "tools/list":
		base.Result = map[string]any{"tools": s.toolDefinitions()}
		return base

	case "tools/call":
		return s.handleToolCall(ctx, req, base)

	default:
		base.Error = &rpcError{Code: -32601, Message: fmt.Sprintf("method not found: %s", req.Method)}
		return base
	}
}

func (s *MCPServer) toolDefinitions() []map[string]any {
	metas := s.registry.GetAll()
	defs := make([]map[string]any, 0, len(metas))
	for _, meta := range metas {
		def := map[string]any{
			"name":        meta.Name,
			"description": meta.Description,
		}
		// Schemas are keyed by function name, which may differ from the
		// advertised tool name.
		if schema, ok := s.schemas[meta.FunctionName]; ok {
			def["inputSchema"] = schema
		}
		defs = append(defs, def)
	}
	return defs
}

type toolCallParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

func (s *MCPServer) handleToolCall(ctx context.Context, req jsonRPCRequest, base jsonRPCResponse) jsonRPCResponse {
	var params toolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		base.Error = &rpcError{Code: -32602, Message: "invalid params: " + err.Error()}
		return base
	}

	meta, ok := s.registry.Get(params.Name)
	if !ok {
		base.Error = &rpcError{Code: -32602, Message: fmt.Sprintf("unknown tool: %s", params.Name)}
		return base
	}

	traceID, _ := ctx.Value(ctxKeyTraceID).(string)
	start := time.Now()
	envelope := meta.Operation(ctx, params.Arguments)
	s.logger.Info("tool call completed",
		"trace_id", traceID,
		"tool_name", params.Name,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	base.Result = mcpContent(envelope)
	return base
}

func mcpContent(text string) map[string]any {
	return map[string]any{
		"content": []map[string]string{
			{"type": "text", "text": text},
		},
	}
}
