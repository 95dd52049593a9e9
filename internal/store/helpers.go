package store

import (
	"context"

	"github.com/rand/homer-sub001/internal/models"
)

// UpsertIfChanged is the composite invalidation helper described in
// spec §4.1: if the stored node's content_hash differs from the
// incoming value (or no record exists yet), it upserts and then
// invalidates that node's cached analyses; otherwise it's a no-op
// write with changed=false. Extractors use this for automatic cache
// invalidation on content change.
func UpsertIfChanged(ctx context.Context, s Store, n *models.Node) (id models.NodeID, changed bool, err error) {
	existing, err := s.GetNodeByName(ctx, n.Kind, n.Name)
	if err != nil && err != ErrNotFound {
		return 0, false, err
	}

	sameHash := existing != nil && existing.ContentHash != nil && n.ContentHash != nil && *existing.ContentHash == *n.ContentHash
	if existing != nil && sameHash {
		return existing.ID, false, nil
	}

	id, err = s.UpsertNode(ctx, n)
	if err != nil {
		return 0, false, err
	}
	if _, err := s.InvalidateAnalyses(ctx, id); err != nil {
		return id, true, err
	}
	return id, true, nil
}

// FindRootModule picks the repository root Module node out of an
// already-fetched set of Module nodes, per spec §4.4's "canonical
// helper that prefers is_root, then '.', then the shortest module
// name" (original_source homer-core src/contracts.rs's
// find_root_module_id). Returns nil if modules is empty.
func FindRootModule(modules []*models.Node) *models.Node {
	if len(modules) == 0 {
		return nil
	}
	for _, m := range modules {
		if isRoot, _ := m.Metadata["is_root"].(bool); isRoot {
			return m
		}
	}
	for _, m := range modules {
		if m.Name == "." {
			return m
		}
	}
	shortest := modules[0]
	for _, m := range modules[1:] {
		if len(m.Name) < len(shortest.Name) {
			shortest = m
		}
	}
	return shortest
}

// InvalidateDependents visits every co-member on every edge touching
// id and invalidates that co-member's cached analyses (spec §4.1
// "cascaded invalidation"): used when the structural neighborhood of a
// node changes, e.g. a new caller or a new co-change partner.
func InvalidateDependents(ctx context.Context, s Store, id models.NodeID) (int, error) {
	edges, err := s.GetEdgesInvolving(ctx, id)
	if err != nil {
		return 0, err
	}

	seen := map[models.NodeID]bool{id: true}
	total := 0
	for _, e := range edges {
		for _, m := range e.Members {
			if seen[m.NodeID] {
				continue
			}
			seen[m.NodeID] = true
			n, err := s.InvalidateAnalyses(ctx, m.NodeID)
			if err != nil {
				return total, err
			}
			total += n
		}
	}
	return total, nil
}
