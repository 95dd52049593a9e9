// Package mcp implements the tool server (spec §6 "Tool server"): a
// JSON-RPC-style dispatcher exposing homer_query, homer_graph and
// homer_risk over stdio, mirroring the teacher's own internal/mcp
// package (Handler/Tool/StdioTransport) generalized from its
// Neo4j/Postgres-backed risk-evidence tool to this module's single
// hypergraph store.
package mcp

import (
	"context"

	"github.com/rand/homer-sub001/internal/mcp/tools"
)

// Tool is the capability every MCP tool implements. Execute returns an
// error for malformed arguments and for store or encoding failures; an
// expected miss (no matching node) is an ordinary result message.
// Handle turns any error Execute returns into a plain string body
// prefixed "Error: ", so a tool author never has to repeat it inline.
type Tool interface {
	Execute(ctx context.Context, args map[string]interface{}) (string, error)
	GetSchema() map[string]interface{}
}

// Handler dispatches JSON-RPC 2.0 requests to registered tools.
type Handler struct {
	toolsByName map[string]Tool
}

// NewHandler builds a Handler with no tools registered.
func NewHandler() *Handler {
	return &Handler{toolsByName: make(map[string]Tool)}
}

// RegisterTool adds a tool under name, overwriting any prior tool with
// the same name.
func (h *Handler) RegisterTool(name string, tool Tool) {
	h.toolsByName[name] = tool
}

// Handle processes one JSON-RPC request and returns its response.
func (h *Handler) Handle(req *tools.JSONRPCRequest) *tools.JSONRPCResponse {
	switch req.Method {
	case "initialize":
		return h.handleInitialize(req)
	case "tools/list":
		return h.handleToolsList(req)
	case "tools/call":
		return h.handleToolCall(req)
	default:
		return &tools.JSONRPCResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error:   &tools.JSONRPCError{Code: -32601, Message: "Method not found"},
		}
	}
}

func (h *Handler) handleInitialize(req *tools.JSONRPCRequest) *tools.JSONRPCResponse {
	return &tools.JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"protocolVersion": "1.0",
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{},
			},
			"serverInfo": map[string]string{
				"name":    "homer-mcp",
				"version": "0.1.0",
			},
		},
	}
}

func (h *Handler) handleToolsList(req *tools.JSONRPCRequest) *tools.JSONRPCResponse {
	list := make([]map[string]interface{}, 0, len(h.toolsByName))
	for name, tool := range h.toolsByName {
		list = append(list, map[string]interface{}{
			"name":   name,
			"schema": tool.GetSchema(),
		})
	}
	return &tools.JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result:  map[string]interface{}{"tools": list},
	}
}

func (h *Handler) handleToolCall(req *tools.JSONRPCRequest) *tools.JSONRPCResponse {
	toolName, ok := req.Params["name"].(string)
	if !ok {
		return &tools.JSONRPCResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error:   &tools.JSONRPCError{Code: -32602, Message: "Invalid params: 'name' is required"},
		}
	}

	tool, exists := h.toolsByName[toolName]
	if !exists {
		return &tools.JSONRPCResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error:   &tools.JSONRPCError{Code: -32602, Message: "Tool not found: " + toolName},
		}
	}

	args, ok := req.Params["arguments"].(map[string]interface{})
	if !ok {
		args = make(map[string]interface{})
	}

	result, err := tool.Execute(context.Background(), args)
	if err != nil {
		result = "Error: " + err.Error()
	}

	return &tools.JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result:  result,
	}
}
