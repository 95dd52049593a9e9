package mcp

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/rand/homer-sub001/internal/mcp/tools"
)

// StdioTransport reads one JSON-RPC request per line from in and
// writes one JSON-RPC response per line to out, matching
// spec §6's "JSON-RPC-style tool protocol on stdio" and the teacher's
// own StdioTransport.
type StdioTransport struct {
	scanner *bufio.Scanner
	out     io.Writer
	handler *Handler
}

// NewStdioTransport builds a transport over in/out (os.Stdin/os.Stdout
// in production, in-memory pipes in tests).
func NewStdioTransport(handler *Handler, in io.Reader, out io.Writer) *StdioTransport {
	return &StdioTransport{scanner: bufio.NewScanner(in), out: out, handler: handler}
}

// Serve blocks, dispatching requests until in is exhausted or returns
// an error.
func (t *StdioTransport) Serve() error {
	for t.scanner.Scan() {
		line := t.scanner.Text()
		if line == "" {
			continue
		}

		var req tools.JSONRPCRequest
		if err := json.Unmarshal([]byte(line), &req); err != nil {
			t.writeError(nil, -32700, "Parse error")
			continue
		}

		resp := t.handler.Handle(&req)
		t.write(resp)
	}
	return t.scanner.Err()
}

func (t *StdioTransport) write(resp *tools.JSONRPCResponse) {
	body, err := json.Marshal(resp)
	if err != nil {
		t.writeError(resp.ID, -32603, "Internal error: failed to marshal response")
		return
	}
	fmt.Fprintln(t.out, string(body))
}

func (t *StdioTransport) writeError(id interface{}, code int, message string) {
	resp := &tools.JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &tools.JSONRPCError{Code: code, Message: message},
	}
	body, _ := json.Marshal(resp)
	fmt.Fprintln(t.out, string(body))
}
