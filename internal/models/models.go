// Package models defines the hypergraph data model shared by the
// store, extractors, analyzers and renderers: nodes, hyperedges,
// analysis results, checkpoints and snapshots.
package models

import "time"

// NodeID is an opaque handle assigned by the store on first insert.
type NodeID int64

// HyperedgeID is an opaque handle assigned by the store on first insert.
type HyperedgeID int64

// AnalysisResultID is an opaque handle assigned by the store on first insert.
type AnalysisResultID int64

// SnapshotID is an opaque handle assigned by the store on first insert.
type SnapshotID int64

// NodeKind enumerates the entity kinds a Node may take.
type NodeKind string

const (
	NodeFile        NodeKind = "File"
	NodeFunction    NodeKind = "Function"
	NodeType        NodeKind = "Type"
	NodeModule      NodeKind = "Module"
	NodeDocument    NodeKind = "Document"
	NodeCommit      NodeKind = "Commit"
	NodeContributor NodeKind = "Contributor"
	NodePullRequest NodeKind = "PullRequest"
	NodeIssue       NodeKind = "Issue"
	NodeExternalDep NodeKind = "ExternalDep"
)

// Node is a typed entity in the hypergraph. (kind, name) is unique.
type Node struct {
	ID            NodeID         `json:"id" db:"id"`
	Kind          NodeKind       `json:"kind" db:"kind"`
	Name          string         `json:"name" db:"name"`
	ContentHash   *uint64        `json:"content_hash,omitempty" db:"content_hash"`
	LastExtracted time.Time      `json:"last_extracted" db:"last_extracted"`
	Metadata      map[string]any `json:"metadata" db:"-"`
	Stale         bool           `json:"stale" db:"stale"`
}

// EdgeKind enumerates the relationship kinds a Hyperedge may take.
type EdgeKind string

const (
	EdgeCalls       EdgeKind = "Calls"
	EdgeImports     EdgeKind = "Imports"
	EdgeDocuments   EdgeKind = "Documents"
	EdgeBelongsTo   EdgeKind = "BelongsTo"
	EdgeModifies    EdgeKind = "Modifies"
	EdgeCoChanges   EdgeKind = "CoChanges"
	EdgeAuthors     EdgeKind = "Authors"
	EdgeDependsOn   EdgeKind = "DependsOn"
	EdgeReferences  EdgeKind = "References"
)

// Member is one participant in a hyperedge, carrying a string role and
// an ordering position. Roles are string-valued intentionally (see
// spec §9 "Role strings vs enums") to accommodate legacy aliases.
type Member struct {
	NodeID   NodeID `json:"node_id"`
	Role     string `json:"role"`
	Position int    `json:"position"`
}

// Hyperedge is an n-ary typed relationship among nodes.
type Hyperedge struct {
	ID          HyperedgeID    `json:"id" db:"id"`
	Kind        EdgeKind       `json:"kind" db:"kind"`
	Members     []Member       `json:"members" db:"-"`
	Confidence  float64        `json:"confidence" db:"confidence"`
	LastUpdated time.Time      `json:"last_updated" db:"last_updated"`
	Metadata    map[string]any `json:"metadata" db:"-"`
}

// Canonical role names. Legacy aliases are accepted on read and
// normalized to these on write (spec §9).
const (
	RoleImporter = "importer"
	RoleImported = "imported"
	RoleCodeEntity = "code_entity"
	RoleContainer  = "container"
	RoleMember     = "member"
	RoleCaller     = "caller"
	RoleCallee     = "callee"
	RoleCommit     = "commit"
	RoleFile       = "file"
	RoleContributor = "contributor"
	RoleDocument   = "document"
	RoleDependent  = "dependent"
	RoleDependency = "dependency"
	RoleIssue      = "issue"
)

// legacyRoleAliases maps a legacy role spelling to its canonical form.
var legacyRoleAliases = map[string]string{
	"source":  RoleImporter,
	"target":  RoleImported,
	"entity":  RoleCodeEntity,
	"subject": RoleCodeEntity,
}

// NormalizeRole converts a legacy role alias to its canonical spelling.
// Roles with no known alias pass through unchanged.
func NormalizeRole(role string) string {
	if canon, ok := legacyRoleAliases[role]; ok {
		return canon
	}
	return role
}

// AnalysisResult is a cached, invalidatable derived computation over a
// single node. (node_id, kind) is unique.
type AnalysisResult struct {
	ID         AnalysisResultID `json:"id" db:"id"`
	NodeID     NodeID           `json:"node_id" db:"node_id"`
	Kind       string           `json:"kind" db:"kind"`
	Data       map[string]any   `json:"data" db:"-"`
	InputHash  uint64           `json:"input_hash" db:"input_hash"`
	ComputedAt time.Time        `json:"computed_at" db:"computed_at"`
}

// AnalysisResultKind string constants for the analyzers defined in
// spec §4.5.
const (
	AnalysisChangeFrequency          = "ChangeFrequency"
	AnalysisContributorConcentration = "ContributorConcentration"
	AnalysisStabilityClassification  = "StabilityClassification"
	AnalysisPageRank                 = "PageRank"
	AnalysisHITS                     = "HITS"
	AnalysisBetweennessCentrality    = "BetweennessCentrality"
	AnalysisCompositeSalience        = "CompositeSalience"
	AnalysisCommunityAssignment      = "CommunityAssignment"
	AnalysisSemanticSummary          = "SemanticSummary"
)

// Checkpoint is an opaque "last processed state" marker used by
// extractors to skip unchanged work.
type Checkpoint struct {
	Kind      string    `json:"kind" db:"kind"`
	Value     string    `json:"value" db:"value"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Snapshot is a named, immutable summary captured for longitudinal
// comparison.
type Snapshot struct {
	ID         SnapshotID `json:"id" db:"id"`
	Label      string     `json:"label" db:"label"`
	SnapshotAt time.Time  `json:"snapshot_at" db:"snapshot_at"`
	NodeCount  int        `json:"node_count" db:"node_count"`
	EdgeCount  int        `json:"edge_count" db:"edge_count"`
}

// SearchHit is a single full-text search result.
type SearchHit struct {
	NodeID      NodeID  `json:"node_id"`
	ContentType string  `json:"content_type"`
	Snippet     string  `json:"snippet"`
	Rank        float64 `json:"rank"`
}

// NodeFilter restricts find_nodes queries.
type NodeFilter struct {
	Kind         NodeKind
	NameContains string
	MetadataKey  string
	MetadataVal  string
}

// Stats summarizes store contents for the `homer status` command.
type Stats struct {
	TotalNodes     int            `json:"total_nodes"`
	TotalEdges     int            `json:"total_edges"`
	TotalAnalyses  int            `json:"total_analyses"`
	NodesByKind    map[string]int `json:"nodes_by_kind"`
	EdgesByKind    map[string]int `json:"edges_by_kind"`
	DBSizeBytes    int64          `json:"db_size_bytes"`
}
