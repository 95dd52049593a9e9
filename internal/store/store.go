// Package store implements the hypergraph store (spec §4.1): the
// single source of truth for nodes, hyperedges, analysis results,
// full-text search, checkpoints and snapshots. Two backends satisfy
// the same Store interface — an embedded SQLite engine for durability
// and an in-memory engine for tests — mirroring the teacher's
// interchangeable internal/storage.Store implementations.
package store

import (
	"context"

	"github.com/rand/homer-sub001/internal/models"
)

// Store is the single source of truth for the hypergraph. All writes
// serialize on the store's internal write lock (spec §3 concurrency
// invariant); readers see a consistent snapshot of each individual
// query but not across queries.
type Store interface {
	// Node operations.
	UpsertNode(ctx context.Context, n *models.Node) (models.NodeID, error)
	GetNode(ctx context.Context, id models.NodeID) (*models.Node, error)
	GetNodeByName(ctx context.Context, kind models.NodeKind, name string) (*models.Node, error)
	FindNodes(ctx context.Context, filter models.NodeFilter) ([]*models.Node, error)
	MarkNodeStale(ctx context.Context, id models.NodeID) error
	DeleteNode(ctx context.Context, id models.NodeID) error

	// Hyperedge operations.
	UpsertHyperedge(ctx context.Context, e *models.Hyperedge) (models.HyperedgeID, error)
	GetEdgesInvolving(ctx context.Context, id models.NodeID) ([]*models.Hyperedge, error)
	GetEdgesByKind(ctx context.Context, kind models.EdgeKind) ([]*models.Hyperedge, error)
	GetCoMembers(ctx context.Context, id models.NodeID, kind models.EdgeKind) ([]models.NodeID, error)

	// Analysis operations.
	StoreAnalysis(ctx context.Context, r *models.AnalysisResult) (models.AnalysisResultID, error)
	GetAnalysis(ctx context.Context, id models.NodeID, kind string) (*models.AnalysisResult, error)
	GetAnalysesByKind(ctx context.Context, kind string) ([]*models.AnalysisResult, error)
	InvalidateAnalyses(ctx context.Context, id models.NodeID) (int, error)
	ClearAnalyses(ctx context.Context) error
	ClearAnalysesByKinds(ctx context.Context, kinds []string) error

	// Full-text search.
	IndexText(ctx context.Context, id models.NodeID, contentType, content string) error
	SearchText(ctx context.Context, query string, scope models.NodeKind) ([]models.SearchHit, error)

	// Checkpoints.
	GetCheckpoint(ctx context.Context, kind string) (string, bool, error)
	SetCheckpoint(ctx context.Context, kind, value string) error
	ClearCheckpoints(ctx context.Context) error

	// Snapshots.
	CreateSnapshot(ctx context.Context, label string) (models.SnapshotID, error)
	ListSnapshots(ctx context.Context) ([]*models.Snapshot, error)
	DeleteSnapshot(ctx context.Context, label string) (bool, error)

	// Stats.
	Stats(ctx context.Context) (*models.Stats, error)

	Close() error
}

// ErrNotFound is returned when a lookup finds no matching row.
var ErrNotFound = errNotFound{}

type errNotFound struct{}

func (errNotFound) Error() string { return "not found" }
