package mcp

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStdioTransportEchoesOneResponsePerRequestLine(t *testing.T) {
	h := NewHandler()
	in := strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"initialize"}` + "\n")
	var out bytes.Buffer

	transport := NewStdioTransport(h, in, &out)
	require.NoError(t, transport.Serve())

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "protocolVersion")
}

func TestStdioTransportReturnsParseErrorOnMalformedLine(t *testing.T) {
	h := NewHandler()
	in := strings.NewReader("not json\n")
	var out bytes.Buffer

	transport := NewStdioTransport(h, in, &out)
	require.NoError(t, transport.Serve())

	assert.Contains(t, out.String(), "Parse error")
}
