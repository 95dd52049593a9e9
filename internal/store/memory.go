package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rand/homer-sub001/internal/models"
)

// MemoryStore is an in-process Store backend used by package tests
// across internal/extract, internal/analyze and internal/render, so
// those suites don't need a real SQLite file. It implements the same
// semantics as SQLiteStore (identity, dedup, invalidation) without a
// SQL engine underneath, mirroring how the teacher keeps its storage
// interface swappable between SQLite and Postgres.
type MemoryStore struct {
	mu sync.Mutex

	nodes      map[models.NodeID]*models.Node
	nodeByKey  map[string]models.NodeID
	nextNodeID models.NodeID

	edges      map[models.HyperedgeID]*models.Hyperedge
	nextEdgeID models.HyperedgeID

	analyses    map[models.NodeID]map[string]*models.AnalysisResult
	nextAnalyID models.AnalysisResultID

	textIndex map[models.NodeID]map[string]string // nodeID -> contentType -> content

	checkpoints map[string]string

	snapshots    []*models.Snapshot
	nextSnapID   models.SnapshotID
}

// NewMemoryStore constructs an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nodes:       make(map[models.NodeID]*models.Node),
		nodeByKey:   make(map[string]models.NodeID),
		edges:       make(map[models.HyperedgeID]*models.Hyperedge),
		analyses:    make(map[models.NodeID]map[string]*models.AnalysisResult),
		textIndex:   make(map[models.NodeID]map[string]string),
		checkpoints: make(map[string]string),
	}
}

func nodeKey(kind models.NodeKind, name string) string { return string(kind) + "\x00" + name }

func cloneNode(n *models.Node) *models.Node {
	cp := *n
	cp.Metadata = cloneMeta(n.Metadata)
	if n.ContentHash != nil {
		h := *n.ContentHash
		cp.ContentHash = &h
	}
	return &cp
}

func cloneMeta(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (m *MemoryStore) UpsertNode(_ context.Context, n *models.Node) (models.NodeID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := nodeKey(n.Kind, n.Name)
	if id, ok := m.nodeByKey[key]; ok {
		stored := m.nodes[id]
		stored.ContentHash = n.ContentHash
		stored.Metadata = cloneMeta(n.Metadata)
		stored.Stale = n.Stale
		if n.LastExtracted.IsZero() {
			stored.LastExtracted = time.Now().UTC()
		} else {
			stored.LastExtracted = n.LastExtracted
		}
		return id, nil
	}

	m.nextNodeID++
	id := m.nextNodeID
	cp := cloneNode(n)
	cp.ID = id
	if cp.LastExtracted.IsZero() {
		cp.LastExtracted = time.Now().UTC()
	}
	m.nodes[id] = cp
	m.nodeByKey[key] = id
	return id, nil
}

func (m *MemoryStore) GetNode(_ context.Context, id models.NodeID) (*models.Node, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.nodes[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneNode(n), nil
}

func (m *MemoryStore) GetNodeByName(_ context.Context, kind models.NodeKind, name string) (*models.Node, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.nodeByKey[nodeKey(kind, name)]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneNode(m.nodes[id]), nil
}

func (m *MemoryStore) FindNodes(_ context.Context, filter models.NodeFilter) ([]*models.Node, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]models.NodeID, 0, len(m.nodes))
	for id := range m.nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]*models.Node, 0)
	for _, id := range ids {
		n := m.nodes[id]
		if filter.Kind != "" && n.Kind != filter.Kind {
			continue
		}
		if filter.NameContains != "" && !strings.Contains(n.Name, filter.NameContains) {
			continue
		}
		if filter.MetadataKey != "" {
			v, ok := n.Metadata[filter.MetadataKey]
			if !ok || fmt.Sprintf("%v", v) != filter.MetadataVal {
				continue
			}
		}
		out = append(out, cloneNode(n))
	}
	return out, nil
}

func (m *MemoryStore) MarkNodeStale(_ context.Context, id models.NodeID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.nodes[id]
	if !ok {
		return ErrNotFound
	}
	n.Stale = true
	return nil
}

func (m *MemoryStore) DeleteNode(_ context.Context, id models.NodeID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.nodes[id]
	if !ok {
		return nil
	}
	delete(m.nodeByKey, nodeKey(n.Kind, n.Name))
	delete(m.nodes, id)
	delete(m.analyses, id)
	delete(m.textIndex, id)
	for eid, e := range m.edges {
		kept := e.Members[:0:0]
		for _, mem := range e.Members {
			if mem.NodeID != id {
				kept = append(kept, mem)
			}
		}
		if len(kept) == 0 {
			delete(m.edges, eid)
		} else {
			e.Members = kept
		}
	}
	return nil
}

func memberSetKey(kind models.EdgeKind, members []models.Member) string {
	norm := make([]string, len(members))
	for i, mem := range members {
		norm[i] = fmt.Sprintf("%d:%s", mem.NodeID, models.NormalizeRole(mem.Role))
	}
	sort.Strings(norm)
	return fmt.Sprintf("%s|%v", kind, norm)
}

func (m *MemoryStore) UpsertHyperedge(_ context.Context, e *models.Hyperedge) (models.HyperedgeID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(e.Members) == 0 {
		return 0, fmt.Errorf("hyperedge has no members")
	}
	targetKey := memberSetKey(e.Kind, e.Members)

	for id, existing := range m.edges {
		if memberSetKey(existing.Kind, existing.Members) == targetKey {
			existing.Confidence = nonZeroOr(e.Confidence, 1.0)
			existing.Metadata = cloneMeta(e.Metadata)
			existing.LastUpdated = nonZeroTimeOr(e.LastUpdated)
			return id, nil
		}
	}

	m.nextEdgeID++
	id := m.nextEdgeID
	members := make([]models.Member, len(e.Members))
	for i, mem := range e.Members {
		members[i] = models.Member{NodeID: mem.NodeID, Role: models.NormalizeRole(mem.Role), Position: mem.Position}
	}
	m.edges[id] = &models.Hyperedge{
		ID:          id,
		Kind:        e.Kind,
		Members:     members,
		Confidence:  nonZeroOr(e.Confidence, 1.0),
		LastUpdated: nonZeroTimeOr(e.LastUpdated),
		Metadata:    cloneMeta(e.Metadata),
	}
	return id, nil
}

func nonZeroOr(v, fallback float64) float64 {
	if v == 0 {
		return fallback
	}
	return v
}

func nonZeroTimeOr(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t
}

func cloneEdge(e *models.Hyperedge) *models.Hyperedge {
	cp := *e
	cp.Members = append([]models.Member(nil), e.Members...)
	cp.Metadata = cloneMeta(e.Metadata)
	return &cp
}

func (m *MemoryStore) GetEdgesInvolving(_ context.Context, id models.NodeID) ([]*models.Hyperedge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Hyperedge
	for _, e := range m.edges {
		for _, mem := range e.Members {
			if mem.NodeID == id {
				out = append(out, cloneEdge(e))
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) GetEdgesByKind(_ context.Context, kind models.EdgeKind) ([]*models.Hyperedge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Hyperedge
	for _, e := range m.edges {
		if e.Kind == kind {
			out = append(out, cloneEdge(e))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) GetCoMembers(_ context.Context, id models.NodeID, kind models.EdgeKind) ([]models.NodeID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := map[models.NodeID]bool{}
	var out []models.NodeID
	for _, e := range m.edges {
		if e.Kind != kind {
			continue
		}
		present := false
		for _, mem := range e.Members {
			if mem.NodeID == id {
				present = true
				break
			}
		}
		if !present {
			continue
		}
		for _, mem := range e.Members {
			if mem.NodeID != id && !seen[mem.NodeID] {
				seen[mem.NodeID] = true
				out = append(out, mem.NodeID)
			}
		}
	}
	return out, nil
}

func (m *MemoryStore) StoreAnalysis(_ context.Context, r *models.AnalysisResult) (models.AnalysisResultID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	byKind, ok := m.analyses[r.NodeID]
	if !ok {
		byKind = make(map[string]*models.AnalysisResult)
		m.analyses[r.NodeID] = byKind
	}
	ts := r.ComputedAt
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	if existing, ok := byKind[r.Kind]; ok {
		existing.Data = cloneMeta(r.Data)
		existing.InputHash = r.InputHash
		existing.ComputedAt = ts
		return existing.ID, nil
	}
	m.nextAnalyID++
	id := m.nextAnalyID
	byKind[r.Kind] = &models.AnalysisResult{
		ID:         id,
		NodeID:     r.NodeID,
		Kind:       r.Kind,
		Data:       cloneMeta(r.Data),
		InputHash:  r.InputHash,
		ComputedAt: ts,
	}
	return id, nil
}

func (m *MemoryStore) GetAnalysis(_ context.Context, id models.NodeID, kind string) (*models.AnalysisResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	byKind, ok := m.analyses[id]
	if !ok {
		return nil, ErrNotFound
	}
	ar, ok := byKind[kind]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *ar
	cp.Data = cloneMeta(ar.Data)
	return &cp, nil
}

func (m *MemoryStore) GetAnalysesByKind(_ context.Context, kind string) ([]*models.AnalysisResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.AnalysisResult
	for _, byKind := range m.analyses {
		if ar, ok := byKind[kind]; ok {
			cp := *ar
			cp.Data = cloneMeta(ar.Data)
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NodeID < out[j].NodeID })
	return out, nil
}

func (m *MemoryStore) InvalidateAnalyses(_ context.Context, id models.NodeID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	byKind, ok := m.analyses[id]
	if !ok {
		return 0, nil
	}
	n := len(byKind)
	delete(m.analyses, id)
	return n, nil
}

func (m *MemoryStore) ClearAnalyses(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.analyses = make(map[models.NodeID]map[string]*models.AnalysisResult)
	return nil
}

func (m *MemoryStore) ClearAnalysesByKinds(_ context.Context, kinds []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	set := make(map[string]bool, len(kinds))
	for _, k := range kinds {
		set[k] = true
	}
	for nodeID, byKind := range m.analyses {
		for k := range byKind {
			if set[k] {
				delete(byKind, k)
			}
		}
		if len(byKind) == 0 {
			delete(m.analyses, nodeID)
		}
	}
	return nil
}

func (m *MemoryStore) IndexText(_ context.Context, id models.NodeID, contentType, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	byType, ok := m.textIndex[id]
	if !ok {
		byType = make(map[string]string)
		m.textIndex[id] = byType
	}
	byType[contentType] = content
	return nil
}

// SearchText does a naive substring match over indexed content; the
// SQLite backend does real FTS5 ranking, but package tests only need
// membership, not relevance.
func (m *MemoryStore) SearchText(_ context.Context, query string, scope models.NodeKind) ([]models.SearchHit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q := strings.ToLower(query)
	var out []models.SearchHit
	for id, byType := range m.textIndex {
		if scope != "" {
			n, ok := m.nodes[id]
			if !ok || n.Kind != scope {
				continue
			}
		}
		for ct, content := range byType {
			if strings.Contains(strings.ToLower(content), q) {
				out = append(out, models.SearchHit{NodeID: id, ContentType: ct, Snippet: content, Rank: 1.0})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NodeID < out[j].NodeID })
	return out, nil
}

func (m *MemoryStore) GetCheckpoint(_ context.Context, kind string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.checkpoints[kind]
	return v, ok, nil
}

func (m *MemoryStore) SetCheckpoint(_ context.Context, kind, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checkpoints[kind] = value
	return nil
}

func (m *MemoryStore) ClearCheckpoints(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checkpoints = make(map[string]string)
	return nil
}

func (m *MemoryStore) CreateSnapshot(_ context.Context, label string) (models.SnapshotID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextSnapID++
	snap := &models.Snapshot{
		ID:         m.nextSnapID,
		Label:      label,
		SnapshotAt: time.Now().UTC(),
		NodeCount:  len(m.nodes),
		EdgeCount:  len(m.edges),
	}
	m.snapshots = append(m.snapshots, snap)
	return snap.ID, nil
}

func (m *MemoryStore) ListSnapshots(_ context.Context) ([]*models.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.Snapshot, len(m.snapshots))
	for i, s := range m.snapshots {
		cp := *s
		out[i] = &cp
	}
	return out, nil
}

func (m *MemoryStore) DeleteSnapshot(_ context.Context, label string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, s := range m.snapshots {
		if s.Label == label {
			m.snapshots = append(m.snapshots[:i], m.snapshots[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryStore) Stats(_ context.Context) (*models.Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := &models.Stats{NodesByKind: map[string]int{}, EdgesByKind: map[string]int{}}
	for _, n := range m.nodes {
		st.TotalNodes++
		st.NodesByKind[string(n.Kind)]++
	}
	for _, e := range m.edges {
		st.TotalEdges++
		st.EdgesByKind[string(e.Kind)]++
	}
	for _, byKind := range m.analyses {
		st.TotalAnalyses += len(byKind)
	}
	return st, nil
}

func (m *MemoryStore) Close() error { return nil }
