package mcp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rand/homer-sub001/internal/mcp/tools"
)

type echoTool struct {
	result string
	err    error
}

func (e *echoTool) Execute(ctx context.Context, args map[string]interface{}) (string, error) {
	return e.result, e.err
}

func (e *echoTool) GetSchema() map[string]interface{} {
	return map[string]interface{}{"description": "echo"}
}

func TestHandleInitializeReturnsServerInfo(t *testing.T) {
	h := NewHandler()
	resp := h.Handle(&tools.JSONRPCRequest{JSONRPC: "2.0", ID: 1, Method: "initialize"})
	require.Nil(t, resp.Error)
	result, ok := resp.Result.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "1.0", result["protocolVersion"])
}

func TestHandleUnknownMethodReturnsJSONRPCError(t *testing.T) {
	h := NewHandler()
	resp := h.Handle(&tools.JSONRPCRequest{JSONRPC: "2.0", ID: 1, Method: "bogus"})
	require.NotNil(t, resp.Error)
	assert.Equal(t, -32601, resp.Error.Code)
}

func TestHandleToolsListIncludesRegisteredTool(t *testing.T) {
	h := NewHandler()
	h.RegisterTool("homer_query", &echoTool{result: "ok"})

	resp := h.Handle(&tools.JSONRPCRequest{JSONRPC: "2.0", ID: 1, Method: "tools/list"})
	require.Nil(t, resp.Error)
	result := resp.Result.(map[string]interface{})
	list := result["tools"].([]map[string]interface{})
	require.Len(t, list, 1)
	assert.Equal(t, "homer_query", list[0]["name"])
}

func TestHandleToolCallDispatchesToRegisteredTool(t *testing.T) {
	h := NewHandler()
	h.RegisterTool("homer_query", &echoTool{result: "match found"})

	resp := h.Handle(&tools.JSONRPCRequest{
		JSONRPC: "2.0", ID: 1, Method: "tools/call",
		Params: map[string]interface{}{"name": "homer_query", "arguments": map[string]interface{}{"name": "x"}},
	})
	require.Nil(t, resp.Error)
	assert.Equal(t, "match found", resp.Result)
}

func TestHandleToolCallTurnsExecuteErrorIntoPlainStringResult(t *testing.T) {
	h := NewHandler()
	h.RegisterTool("homer_query", &echoTool{err: assertError("boom")})

	resp := h.Handle(&tools.JSONRPCRequest{
		JSONRPC: "2.0", ID: 1, Method: "tools/call",
		Params: map[string]interface{}{"name": "homer_query"},
	})
	require.Nil(t, resp.Error)
	assert.Equal(t, "Error: boom", resp.Result)
}

func TestHandleToolCallUnknownToolReturnsJSONRPCError(t *testing.T) {
	h := NewHandler()
	resp := h.Handle(&tools.JSONRPCRequest{
		JSONRPC: "2.0", ID: 1, Method: "tools/call",
		Params: map[string]interface{}{"name": "nope"},
	})
	require.NotNil(t, resp.Error)
	assert.Equal(t, -32602, resp.Error.Code)
}

type assertError string

func (e assertError) Error() string { return string(e) }
