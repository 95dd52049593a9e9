package scopegraph

import "github.com/rand/homer-sub001/internal/models"

// CallHyperedge projects a CallEdge into the hypergraph Calls edge
// shape the store persists: the edge kind and the caller/callee role
// tags, plus metadata carrying the caller name, the callee name as
// written at the call site, and the call's line span. The extractor
// resolves the caller and callee Function/Type node IDs itself.
func CallHyperedge(e CallEdge) (kind models.EdgeKind, callerRole, calleeRole string, metadata map[string]any) {
	return models.EdgeCalls, models.RoleCaller, models.RoleCallee, map[string]any{
		"caller_name": e.CallerName,
		"callee_name": e.CalleeName,
		"start_line":  e.Span.StartLine,
		"end_line":    e.Span.EndLine,
	}
}
