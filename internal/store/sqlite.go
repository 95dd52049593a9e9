package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	homererrors "github.com/rand/homer-sub001/internal/errors"
	"github.com/rand/homer-sub001/internal/models"
)

// SQLiteStore is the durable Store backend, built on jmoiron/sqlx over
// mattn/go-sqlite3, matching the teacher's internal/storage.SQLiteStore
// construction and pragma sequence.
type SQLiteStore struct {
	db     *sqlx.DB
	logger *logrus.Logger
}

// NewSQLiteStore opens (creating if absent) the database at path,
// applies pragmas, and initializes the schema idempotently.
func NewSQLiteStore(path string, logger *logrus.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = logrus.New()
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, homererrors.StoreErrorf(err, "create database directory %s", dir)
		}
	}

	db, err := sqlx.Connect("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, homererrors.StoreErrorf(err, "connect to sqlite at %s", path)
	}

	s := &SQLiteStore{db: db, logger: logger}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) init() error {
	if _, err := s.db.Exec(pragmasSQL); err != nil {
		return homererrors.StoreErrorf(err, "apply pragmas")
	}
	if _, err := s.db.Exec(schemaSQL); err != nil {
		return homererrors.StoreErrorf(err, "init schema")
	}
	if _, err := s.db.Exec(viewsSQL); err != nil {
		return homererrors.StoreErrorf(err, "init views")
	}

	var existing string
	err := s.db.Get(&existing, `SELECT value FROM homer_meta WHERE key = 'schema_version'`)
	switch {
	case err == sql.ErrNoRows:
		_, err = s.db.Exec(`INSERT INTO homer_meta(key, value) VALUES ('schema_version', ?)`, schemaVersion)
		if err != nil {
			return homererrors.StoreErrorf(err, "record schema version")
		}
	case err != nil:
		return homererrors.StoreErrorf(err, "read schema version")
	case existing != schemaVersion:
		return homererrors.New(homererrors.KindStore, homererrors.SeverityCritical,
			fmt.Sprintf("database schema version %q does not match expected %q", existing, schemaVersion))
	}
	return nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

// --- nodes ---

type nodeRow struct {
	ID            int64          `db:"id"`
	Kind          string         `db:"kind"`
	Name          string         `db:"name"`
	ContentHash   sql.NullInt64  `db:"content_hash"`
	LastExtracted string         `db:"last_extracted"`
	Metadata      string         `db:"metadata"`
	Stale         bool           `db:"stale"`
}

func (r *nodeRow) toModel() (*models.Node, error) {
	n := &models.Node{
		ID:    models.NodeID(r.ID),
		Kind:  models.NodeKind(r.Kind),
		Name:  r.Name,
		Stale: r.Stale,
	}
	if r.ContentHash.Valid {
		h := uint64(r.ContentHash.Int64)
		n.ContentHash = &h
	}
	t, err := time.Parse(time.RFC3339Nano, r.LastExtracted)
	if err != nil {
		return nil, err
	}
	n.LastExtracted = t
	if r.Metadata == "" {
		n.Metadata = map[string]any{}
	} else if err := json.Unmarshal([]byte(r.Metadata), &n.Metadata); err != nil {
		return nil, err
	}
	return n, nil
}

func (s *SQLiteStore) UpsertNode(ctx context.Context, n *models.Node) (models.NodeID, error) {
	meta, err := json.Marshal(nonNilMeta(n.Metadata))
	if err != nil {
		return 0, homererrors.StoreErrorf(err, "marshal node metadata")
	}
	ts := n.LastExtracted
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	var contentHash any
	if n.ContentHash != nil {
		contentHash = int64(*n.ContentHash)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO nodes (kind, name, content_hash, last_extracted, metadata, stale)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(kind, name) DO UPDATE SET
			content_hash = excluded.content_hash,
			last_extracted = excluded.last_extracted,
			metadata = excluded.metadata,
			stale = excluded.stale
	`, string(n.Kind), n.Name, contentHash, ts.Format(time.RFC3339Nano), string(meta), n.Stale)
	if err != nil {
		return 0, homererrors.StoreErrorf(err, "upsert node %s/%s", n.Kind, n.Name)
	}

	var id int64
	if err := s.db.GetContext(ctx, &id, `SELECT id FROM nodes WHERE kind = ? AND name = ?`, string(n.Kind), n.Name); err != nil {
		return 0, homererrors.StoreErrorf(err, "read back node id for %s/%s", n.Kind, n.Name)
	}
	return models.NodeID(id), nil
}

func (s *SQLiteStore) GetNode(ctx context.Context, id models.NodeID) (*models.Node, error) {
	var row nodeRow
	err := s.db.GetContext(ctx, &row, `SELECT id, kind, name, content_hash, last_extracted, metadata, stale FROM nodes WHERE id = ?`, int64(id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, homererrors.StoreErrorf(err, "get node %d", id)
	}
	return row.toModel()
}

func (s *SQLiteStore) GetNodeByName(ctx context.Context, kind models.NodeKind, name string) (*models.Node, error) {
	var row nodeRow
	err := s.db.GetContext(ctx, &row, `SELECT id, kind, name, content_hash, last_extracted, metadata, stale FROM nodes WHERE kind = ? AND name = ?`, string(kind), name)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, homererrors.StoreErrorf(err, "get node by name %s/%s", kind, name)
	}
	return row.toModel()
}

func (s *SQLiteStore) FindNodes(ctx context.Context, filter models.NodeFilter) ([]*models.Node, error) {
	query := `SELECT id, kind, name, content_hash, last_extracted, metadata, stale FROM nodes WHERE 1=1`
	var args []any
	if filter.Kind != "" {
		query += ` AND kind = ?`
		args = append(args, string(filter.Kind))
	}
	if filter.NameContains != "" {
		query += ` AND name LIKE ?`
		args = append(args, "%"+filter.NameContains+"%")
	}
	if filter.MetadataKey != "" {
		query += ` AND json_extract(metadata, ?) = ?`
		args = append(args, "$."+filter.MetadataKey, filter.MetadataVal)
	}
	query += ` ORDER BY id`

	var rows []nodeRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, homererrors.StoreErrorf(err, "find nodes")
	}
	out := make([]*models.Node, 0, len(rows))
	for i := range rows {
		n, err := rows[i].toModel()
		if err != nil {
			return nil, homererrors.StoreErrorf(err, "decode node row")
		}
		out = append(out, n)
	}
	return out, nil
}

func (s *SQLiteStore) MarkNodeStale(ctx context.Context, id models.NodeID) error {
	_, err := s.db.ExecContext(ctx, `UPDATE nodes SET stale = 1 WHERE id = ?`, int64(id))
	if err != nil {
		return homererrors.StoreErrorf(err, "mark node %d stale", id)
	}
	return nil
}

func (s *SQLiteStore) DeleteNode(ctx context.Context, id models.NodeID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM nodes WHERE id = ?`, int64(id))
	if err != nil {
		return homererrors.StoreErrorf(err, "delete node %d", id)
	}
	return nil
}

// --- hyperedges ---

type edgeRow struct {
	ID          int64   `db:"id"`
	Kind        string  `db:"kind"`
	Confidence  float64 `db:"confidence"`
	LastUpdated string  `db:"last_updated"`
	Metadata    string  `db:"metadata"`
}

type memberRow struct {
	HyperedgeID int64  `db:"hyperedge_id"`
	NodeID      int64  `db:"node_id"`
	Role        string `db:"role"`
	Position    int    `db:"position"`
}

func (s *SQLiteStore) UpsertHyperedge(ctx context.Context, e *models.Hyperedge) (models.HyperedgeID, error) {
	if len(e.Members) == 0 {
		return 0, homererrors.New(homererrors.KindStore, homererrors.SeverityMedium, "hyperedge has no members")
	}

	memberKey := func(ms []models.Member) string {
		norm := make([]string, len(ms))
		for i, m := range ms {
			norm[i] = fmt.Sprintf("%d:%s", m.NodeID, models.NormalizeRole(m.Role))
		}
		sort.Strings(norm)
		return fmt.Sprintf("%s|%v", e.Kind, norm)
	}
	targetKey := memberKey(e.Members)

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, homererrors.StoreErrorf(err, "begin upsert hyperedge tx")
	}
	defer tx.Rollback()

	var candidates []edgeRow
	if err := tx.SelectContext(ctx, &candidates, `SELECT id, kind, confidence, last_updated, metadata FROM hyperedges WHERE kind = ?`, string(e.Kind)); err != nil {
		return 0, homererrors.StoreErrorf(err, "scan candidate hyperedges")
	}

	var existingID int64 = -1
	for _, c := range candidates {
		var members []memberRow
		if err := tx.SelectContext(ctx, &members, `SELECT hyperedge_id, node_id, role, position FROM hyperedge_members WHERE hyperedge_id = ?`, c.ID); err != nil {
			return 0, homererrors.StoreErrorf(err, "scan candidate edge members")
		}
		ms := make([]models.Member, len(members))
		for i, m := range members {
			ms[i] = models.Member{NodeID: models.NodeID(m.NodeID), Role: m.Role, Position: m.Position}
		}
		existing := &models.Hyperedge{Kind: e.Kind, Members: ms}
		if memberKey(existing.Members) == targetKey {
			existingID = c.ID
			break
		}
	}

	meta, err := json.Marshal(nonNilMeta(e.Metadata))
	if err != nil {
		return 0, homererrors.StoreErrorf(err, "marshal hyperedge metadata")
	}
	ts := e.LastUpdated
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	confidence := e.Confidence
	if confidence == 0 {
		confidence = 1.0
	}

	var id int64
	if existingID >= 0 {
		id = existingID
		_, err = tx.ExecContext(ctx, `UPDATE hyperedges SET confidence = ?, last_updated = ?, metadata = ? WHERE id = ?`,
			confidence, ts.Format(time.RFC3339Nano), string(meta), id)
		if err != nil {
			return 0, homererrors.StoreErrorf(err, "update hyperedge %d", id)
		}
	} else {
		res, err := tx.ExecContext(ctx, `INSERT INTO hyperedges (kind, confidence, last_updated, metadata) VALUES (?, ?, ?, ?)`,
			string(e.Kind), confidence, ts.Format(time.RFC3339Nano), string(meta))
		if err != nil {
			return 0, homererrors.StoreErrorf(err, "insert hyperedge")
		}
		id, err = res.LastInsertId()
		if err != nil {
			return 0, homererrors.StoreErrorf(err, "read hyperedge id")
		}
		for _, m := range e.Members {
			_, err = tx.ExecContext(ctx, `INSERT OR IGNORE INTO hyperedge_members (hyperedge_id, node_id, role, position) VALUES (?, ?, ?, ?)`,
				id, int64(m.NodeID), models.NormalizeRole(m.Role), m.Position)
			if err != nil {
				return 0, homererrors.StoreErrorf(err, "insert hyperedge member")
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, homererrors.StoreErrorf(err, "commit upsert hyperedge tx")
	}
	return models.HyperedgeID(id), nil
}

func (s *SQLiteStore) loadEdges(ctx context.Context, query string, args ...any) ([]*models.Hyperedge, error) {
	var rows []edgeRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, homererrors.StoreErrorf(err, "load hyperedges")
	}
	out := make([]*models.Hyperedge, 0, len(rows))
	for _, r := range rows {
		e, err := s.hydrateEdge(ctx, r)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (s *SQLiteStore) hydrateEdge(ctx context.Context, r edgeRow) (*models.Hyperedge, error) {
	var members []memberRow
	if err := s.db.SelectContext(ctx, &members, `SELECT hyperedge_id, node_id, role, position FROM hyperedge_members WHERE hyperedge_id = ? ORDER BY position`, r.ID); err != nil {
		return nil, homererrors.StoreErrorf(err, "load hyperedge members")
	}
	ms := make([]models.Member, len(members))
	for i, m := range members {
		ms[i] = models.Member{NodeID: models.NodeID(m.NodeID), Role: m.Role, Position: m.Position}
	}
	e := &models.Hyperedge{
		ID:         models.HyperedgeID(r.ID),
		Kind:       models.EdgeKind(r.Kind),
		Members:    ms,
		Confidence: r.Confidence,
	}
	t, err := time.Parse(time.RFC3339Nano, r.LastUpdated)
	if err != nil {
		return nil, err
	}
	e.LastUpdated = t
	if r.Metadata == "" {
		e.Metadata = map[string]any{}
	} else if err := json.Unmarshal([]byte(r.Metadata), &e.Metadata); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *SQLiteStore) GetEdgesInvolving(ctx context.Context, id models.NodeID) ([]*models.Hyperedge, error) {
	return s.loadEdges(ctx, `
		SELECT DISTINCT h.id, h.kind, h.confidence, h.last_updated, h.metadata
		FROM hyperedges h
		JOIN hyperedge_members m ON m.hyperedge_id = h.id
		WHERE m.node_id = ?
		ORDER BY h.id
	`, int64(id))
}

func (s *SQLiteStore) GetEdgesByKind(ctx context.Context, kind models.EdgeKind) ([]*models.Hyperedge, error) {
	return s.loadEdges(ctx, `SELECT id, kind, confidence, last_updated, metadata FROM hyperedges WHERE kind = ? ORDER BY id`, string(kind))
}

func (s *SQLiteStore) GetCoMembers(ctx context.Context, id models.NodeID, kind models.EdgeKind) ([]models.NodeID, error) {
	var ids []int64
	err := s.db.SelectContext(ctx, &ids, `
		SELECT DISTINCT m2.node_id
		FROM hyperedge_members m1
		JOIN hyperedges h ON h.id = m1.hyperedge_id
		JOIN hyperedge_members m2 ON m2.hyperedge_id = m1.hyperedge_id AND m2.node_id != m1.node_id
		WHERE m1.node_id = ? AND h.kind = ?
	`, int64(id), string(kind))
	if err != nil {
		return nil, homererrors.StoreErrorf(err, "get co-members of %d", id)
	}
	out := make([]models.NodeID, len(ids))
	for i, v := range ids {
		out[i] = models.NodeID(v)
	}
	return out, nil
}

// --- analysis results ---

type analysisRow struct {
	ID         int64  `db:"id"`
	NodeID     int64  `db:"node_id"`
	Kind       string `db:"kind"`
	Data       string `db:"data"`
	InputHash  int64  `db:"input_hash"`
	ComputedAt string `db:"computed_at"`
}

func (r *analysisRow) toModel() (*models.AnalysisResult, error) {
	ar := &models.AnalysisResult{
		ID:        models.AnalysisResultID(r.ID),
		NodeID:    models.NodeID(r.NodeID),
		Kind:      r.Kind,
		InputHash: uint64(r.InputHash),
	}
	t, err := time.Parse(time.RFC3339Nano, r.ComputedAt)
	if err != nil {
		return nil, err
	}
	ar.ComputedAt = t
	if r.Data == "" {
		ar.Data = map[string]any{}
	} else if err := json.Unmarshal([]byte(r.Data), &ar.Data); err != nil {
		return nil, err
	}
	return ar, nil
}

func (s *SQLiteStore) StoreAnalysis(ctx context.Context, r *models.AnalysisResult) (models.AnalysisResultID, error) {
	data, err := json.Marshal(nonNilMeta(r.Data))
	if err != nil {
		return 0, homererrors.StoreErrorf(err, "marshal analysis data")
	}
	ts := r.ComputedAt
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO analysis_results (node_id, kind, data, input_hash, computed_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(node_id, kind) DO UPDATE SET
			data = excluded.data,
			input_hash = excluded.input_hash,
			computed_at = excluded.computed_at
	`, int64(r.NodeID), r.Kind, string(data), int64(r.InputHash), ts.Format(time.RFC3339Nano))
	if err != nil {
		return 0, homererrors.StoreErrorf(err, "store analysis %s for node %d", r.Kind, r.NodeID)
	}
	var id int64
	if err := s.db.GetContext(ctx, &id, `SELECT id FROM analysis_results WHERE node_id = ? AND kind = ?`, int64(r.NodeID), r.Kind); err != nil {
		return 0, homererrors.StoreErrorf(err, "read back analysis id")
	}
	return models.AnalysisResultID(id), nil
}

func (s *SQLiteStore) GetAnalysis(ctx context.Context, id models.NodeID, kind string) (*models.AnalysisResult, error) {
	var row analysisRow
	err := s.db.GetContext(ctx, &row, `SELECT id, node_id, kind, data, input_hash, computed_at FROM analysis_results WHERE node_id = ? AND kind = ?`, int64(id), kind)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, homererrors.StoreErrorf(err, "get analysis %s for node %d", kind, id)
	}
	return row.toModel()
}

func (s *SQLiteStore) GetAnalysesByKind(ctx context.Context, kind string) ([]*models.AnalysisResult, error) {
	var rows []analysisRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT id, node_id, kind, data, input_hash, computed_at FROM analysis_results WHERE kind = ? ORDER BY node_id`, kind); err != nil {
		return nil, homererrors.StoreErrorf(err, "get analyses by kind %s", kind)
	}
	out := make([]*models.AnalysisResult, 0, len(rows))
	for i := range rows {
		ar, err := rows[i].toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, ar)
	}
	return out, nil
}

func (s *SQLiteStore) InvalidateAnalyses(ctx context.Context, id models.NodeID) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM analysis_results WHERE node_id = ?`, int64(id))
	if err != nil {
		return 0, homererrors.StoreErrorf(err, "invalidate analyses for node %d", id)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, homererrors.StoreErrorf(err, "count invalidated analyses")
	}
	return int(n), nil
}

func (s *SQLiteStore) ClearAnalyses(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM analysis_results`); err != nil {
		return homererrors.StoreErrorf(err, "clear analyses")
	}
	return nil
}

func (s *SQLiteStore) ClearAnalysesByKinds(ctx context.Context, kinds []string) error {
	if len(kinds) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`DELETE FROM analysis_results WHERE kind IN (?)`, kinds)
	if err != nil {
		return homererrors.StoreErrorf(err, "build clear-by-kinds query")
	}
	query = s.db.Rebind(query)
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return homererrors.StoreErrorf(err, "clear analyses by kinds")
	}
	return nil
}

// --- full-text search ---

func (s *SQLiteStore) IndexText(ctx context.Context, id models.NodeID, contentType, content string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM text_search WHERE node_id = ? AND content_type = ?`, int64(id), contentType); err != nil {
		return homererrors.StoreErrorf(err, "clear existing text index row")
	}
	if _, err := s.db.ExecContext(ctx, `INSERT INTO text_search (node_id, content_type, content) VALUES (?, ?, ?)`, int64(id), contentType, content); err != nil {
		return homererrors.StoreErrorf(err, "index text for node %d", id)
	}
	return nil
}

func (s *SQLiteStore) SearchText(ctx context.Context, query string, scope models.NodeKind) ([]models.SearchHit, error) {
	sqlQuery := `
		SELECT t.node_id AS node_id, t.content_type AS content_type,
		       snippet(text_search, 2, '[', ']', '...', 10) AS snippet,
		       bm25(text_search) AS rank
		FROM text_search t
	`
	var args []any
	if scope != "" {
		sqlQuery += ` JOIN nodes n ON n.id = t.node_id WHERE text_search MATCH ? AND n.kind = ?`
		args = append(args, query, string(scope))
	} else {
		sqlQuery += ` WHERE text_search MATCH ?`
		args = append(args, query)
	}
	sqlQuery += ` ORDER BY rank LIMIT 50`

	type hitRow struct {
		NodeID      int64   `db:"node_id"`
		ContentType string  `db:"content_type"`
		Snippet     string  `db:"snippet"`
		Rank        float64 `db:"rank"`
	}
	var rows []hitRow
	if err := s.db.SelectContext(ctx, &rows, sqlQuery, args...); err != nil {
		return nil, homererrors.StoreErrorf(err, "search text %q", query)
	}
	out := make([]models.SearchHit, len(rows))
	for i, r := range rows {
		out[i] = models.SearchHit{
			NodeID:      models.NodeID(r.NodeID),
			ContentType: r.ContentType,
			Snippet:     r.Snippet,
			Rank:        r.Rank,
		}
	}
	return out, nil
}

// --- checkpoints ---

func (s *SQLiteStore) GetCheckpoint(ctx context.Context, kind string) (string, bool, error) {
	var value string
	err := s.db.GetContext(ctx, &value, `SELECT value FROM checkpoints WHERE kind = ?`, kind)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, homererrors.StoreErrorf(err, "get checkpoint %s", kind)
	}
	return value, true, nil
}

func (s *SQLiteStore) SetCheckpoint(ctx context.Context, kind, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO checkpoints (kind, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(kind) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, kind, value, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return homererrors.StoreErrorf(err, "set checkpoint %s", kind)
	}
	return nil
}

func (s *SQLiteStore) ClearCheckpoints(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM checkpoints`); err != nil {
		return homererrors.StoreErrorf(err, "clear checkpoints")
	}
	return nil
}

// --- snapshots ---

func (s *SQLiteStore) CreateSnapshot(ctx context.Context, label string) (models.SnapshotID, error) {
	var nodeCount, edgeCount int
	if err := s.db.GetContext(ctx, &nodeCount, `SELECT COUNT(*) FROM nodes`); err != nil {
		return 0, homererrors.StoreErrorf(err, "count nodes for snapshot")
	}
	if err := s.db.GetContext(ctx, &edgeCount, `SELECT COUNT(*) FROM hyperedges`); err != nil {
		return 0, homererrors.StoreErrorf(err, "count edges for snapshot")
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO graph_snapshots (label, snapshot_at, node_count, edge_count) VALUES (?, ?, ?, ?)
	`, label, time.Now().UTC().Format(time.RFC3339Nano), nodeCount, edgeCount)
	if err != nil {
		return 0, homererrors.StoreErrorf(err, "create snapshot %s", label)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, homererrors.StoreErrorf(err, "read snapshot id")
	}
	return models.SnapshotID(id), nil
}

func (s *SQLiteStore) ListSnapshots(ctx context.Context) ([]*models.Snapshot, error) {
	type row struct {
		ID         int64  `db:"id"`
		Label      string `db:"label"`
		SnapshotAt string `db:"snapshot_at"`
		NodeCount  int    `db:"node_count"`
		EdgeCount  int    `db:"edge_count"`
	}
	var rows []row
	if err := s.db.SelectContext(ctx, &rows, `SELECT id, label, snapshot_at, node_count, edge_count FROM graph_snapshots ORDER BY id`); err != nil {
		return nil, homererrors.StoreErrorf(err, "list snapshots")
	}
	out := make([]*models.Snapshot, len(rows))
	for i, r := range rows {
		t, err := time.Parse(time.RFC3339Nano, r.SnapshotAt)
		if err != nil {
			return nil, err
		}
		out[i] = &models.Snapshot{
			ID:         models.SnapshotID(r.ID),
			Label:      r.Label,
			SnapshotAt: t,
			NodeCount:  r.NodeCount,
			EdgeCount:  r.EdgeCount,
		}
	}
	return out, nil
}

func (s *SQLiteStore) DeleteSnapshot(ctx context.Context, label string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM graph_snapshots WHERE label = ?`, label)
	if err != nil {
		return false, homererrors.StoreErrorf(err, "delete snapshot %s", label)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, homererrors.StoreErrorf(err, "count deleted snapshots")
	}
	return n > 0, nil
}

// --- stats ---

func (s *SQLiteStore) Stats(ctx context.Context) (*models.Stats, error) {
	st := &models.Stats{NodesByKind: map[string]int{}, EdgesByKind: map[string]int{}}
	if err := s.db.GetContext(ctx, &st.TotalNodes, `SELECT COUNT(*) FROM nodes`); err != nil {
		return nil, homererrors.StoreErrorf(err, "count total nodes")
	}
	if err := s.db.GetContext(ctx, &st.TotalEdges, `SELECT COUNT(*) FROM hyperedges`); err != nil {
		return nil, homererrors.StoreErrorf(err, "count total edges")
	}
	if err := s.db.GetContext(ctx, &st.TotalAnalyses, `SELECT COUNT(*) FROM analysis_results`); err != nil {
		return nil, homererrors.StoreErrorf(err, "count total analyses")
	}

	type kindCount struct {
		Kind  string `db:"kind"`
		Count int    `db:"count"`
	}
	var nodeKinds []kindCount
	if err := s.db.SelectContext(ctx, &nodeKinds, `SELECT kind, COUNT(*) AS count FROM nodes GROUP BY kind`); err != nil {
		return nil, homererrors.StoreErrorf(err, "count nodes by kind")
	}
	for _, kc := range nodeKinds {
		st.NodesByKind[kc.Kind] = kc.Count
	}
	var edgeKinds []kindCount
	if err := s.db.SelectContext(ctx, &edgeKinds, `SELECT kind, COUNT(*) AS count FROM hyperedges GROUP BY kind`); err != nil {
		return nil, homererrors.StoreErrorf(err, "count edges by kind")
	}
	for _, kc := range edgeKinds {
		st.EdgesByKind[kc.Kind] = kc.Count
	}

	if path := s.dbFilePath(); path != "" {
		if fi, err := os.Stat(path); err == nil {
			st.DBSizeBytes = fi.Size()
		}
	}
	return st, nil
}

func (s *SQLiteStore) dbFilePath() string {
	var rows []struct {
		Seq  int    `db:"seq"`
		Name string `db:"name"`
		File string `db:"file"`
	}
	if err := s.db.Select(&rows, `PRAGMA database_list`); err != nil {
		return ""
	}
	for _, r := range rows {
		if r.Name == "main" {
			return r.File
		}
	}
	return ""
}

func nonNilMeta(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}
