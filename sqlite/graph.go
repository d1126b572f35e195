package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/docgraph"
)

// Compile-time interface verification.
var _ docgraph.GraphService = (*GraphService)(nil)

// GraphService implements docgraph.GraphService using SQLite tables for
// nodes and edges.
type GraphService struct {
	db *DB
}

// NewGraphService creates a new GraphService.
func NewGraphService(db *DB) *GraphService {
	return &GraphService{db: db}
}

// NodeID returns the stable id of the node with the given label and name.
func NodeID(label, name string) string {
	return fmt.Sprintf("%s_%016x", strings.ToLower(label), xxhash.Sum64String(label+"\x00"+name))
}

func edgeID(sourceID, edgeType, targetID string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(sourceID+"\x00"+edgeType+"\x00"+targetID))
}

// execer is implemented by *sql.DB, *sql.Tx and *DB.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// CreateNode stores a node. Creating an existing node is a no-op.
func (s *GraphService) CreateNode(ctx context.Context, node *docgraph.Node) error {
	if err := node.Validate(); err != nil {
		return err
	}
	return insertNode(ctx, s.db, node)
}

func insertNode(ctx context.Context, db execer, node *docgraph.Node) error {
	if node.CreatedAt.IsZero() {
		node.CreatedAt = time.Now().UTC()
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO nodes (id, label, name, document_id, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, node.ID, node.Label, node.Name, nullable(node.DocumentID), node.CreatedAt.Format(timeLayout))
	return err
}

// FindNodeByID retrieves a node by ID.
func (s *GraphService) FindNodeByID(ctx context.Context, id string) (*docgraph.Node, error) {
	var node docgraph.Node
	var documentID sql.NullString
	var createdAt string

	err := s.db.QueryRowContext(ctx, `
		SELECT id, label, name, document_id, created_at
		FROM nodes
		WHERE id = ?
	`, id).Scan(&node.ID, &node.Label, &node.Name, &documentID, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, docgraph.Errorf(docgraph.ENOTFOUND, "node not found")
	}
	if err != nil {
		return nil, err
	}

	node.DocumentID = documentID.String
	node.CreatedAt, err = parseTime(createdAt, "created_at")
	if err != nil {
		return nil, err
	}
	return &node, nil
}

// DeleteNode removes a node and its edges.
func (s *GraphService) DeleteNode(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM nodes WHERE id = ?", id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return docgraph.Errorf(docgraph.ENOTFOUND, "node not found")
	}

	return nil
}

// CreateEdge stores an edge between two existing nodes. An empty ID is
// derived from the endpoints and type, so storing the same edge twice is a
// no-op.
func (s *GraphService) CreateEdge(ctx context.Context, edge *docgraph.Edge) error {
	if edge.SourceID == "" || edge.TargetID == "" {
		return docgraph.Errorf(docgraph.EINVALID, "edge endpoints required")
	}
	if edge.Type == "" {
		return docgraph.Errorf(docgraph.EINVALID, "edge type required")
	}

	var found int
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM nodes WHERE id IN (?, ?)", edge.SourceID, edge.TargetID,
	).Scan(&found); err != nil {
		return err
	}
	want := 2
	if edge.SourceID == edge.TargetID {
		want = 1
	}
	if found < want {
		return docgraph.Errorf(docgraph.ENOTFOUND, "edge endpoint not found")
	}

	return insertEdge(ctx, s.db, edge)
}

func insertEdge(ctx context.Context, db execer, edge *docgraph.Edge) error {
	if edge.ID == "" {
		edge.ID = edgeID(edge.SourceID, edge.Type, edge.TargetID)
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO edges (id, source_id, target_id, type, description, document_id)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, edge.ID, edge.SourceID, edge.TargetID, edge.Type, edge.Description, nullable(edge.DocumentID))
	return err
}

// FindEdges returns the edges leaving or entering a node, oldest first.
func (s *GraphService) FindEdges(ctx context.Context, nodeID string) ([]*docgraph.Edge, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source_id, target_id, type, description, document_id
		FROM edges
		WHERE source_id = ? OR target_id = ?
		ORDER BY rowid
	`, nodeID, nodeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var edges []*docgraph.Edge
	for rows.Next() {
		var edge docgraph.Edge
		var documentID sql.NullString
		if err := rows.Scan(&edge.ID, &edge.SourceID, &edge.TargetID, &edge.Type, &edge.Description, &documentID); err != nil {
			return nil, err
		}
		edge.DocumentID = documentID.String
		edges = append(edges, &edge)
	}
	return edges, rows.Err()
}

// DeleteEdges removes every edge touching a node.
func (s *GraphService) DeleteEdges(ctx context.Context, nodeID string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM edges WHERE source_id = ? OR target_id = ?", nodeID, nodeID)
	return err
}

// StoreAnalysis writes the analysis of a stored document in one
// transaction. Entity, concept and hierarchy nodes are shared between
// documents; the document node and every edge belong to doc.
func (s *GraphService) StoreAnalysis(ctx context.Context, doc *docgraph.Document, a *docgraph.AnalysisResult) (*docgraph.GraphUpdate, error) {
	if doc == nil || doc.ID == "" {
		return nil, docgraph.Errorf(docgraph.EINVALID, "stored document required")
	}
	if a == nil {
		return nil, docgraph.Errorf(docgraph.EINVALID, "analysis required")
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	w := &graphWriter{ctx: ctx, tx: tx, documentID: doc.ID, now: time.Now().UTC()}
	update := &docgraph.GraphUpdate{}

	docNode := w.node(docgraph.NodeDocument, doc.ID, doc.Name)
	update.DocumentNodes = 1

	entities := make(map[string]bool, len(a.Entities))
	for _, name := range a.Entities {
		if name = strings.TrimSpace(name); name == "" || entities[name] {
			continue
		}
		entities[name] = true
		w.edge(docNode, w.node(docgraph.NodeEntity, name, name), docgraph.EdgeMentions, "")
		update.EntityNodes++
	}

	concepts := make(map[string]bool, len(a.Concepts))
	for _, name := range a.Concepts {
		if name = strings.TrimSpace(name); name == "" || concepts[name] {
			continue
		}
		concepts[name] = true
		w.edge(docNode, w.node(docgraph.NodeConcept, name, name), docgraph.EdgeDiscusses, "")
		update.ConceptNodes++
	}

	endpoint := func(name string) string {
		if concepts[name] && !entities[name] {
			return w.node(docgraph.NodeConcept, name, name)
		}
		return w.node(docgraph.NodeEntity, name, name)
	}
	for _, rel := range a.Relationships {
		source, target := strings.TrimSpace(rel.Source), strings.TrimSpace(rel.Target)
		if source == "" || target == "" {
			continue
		}
		w.edge(endpoint(source), endpoint(target), RelationshipEdgeType(rel.Type), rel.Description)
		update.Relationships++
	}

	if tree := a.KnowledgeTree; !tree.IsZero() {
		parent := docNode
		if domain := strings.TrimSpace(tree.Domain); domain != "" {
			parent = w.node(docgraph.NodeDomain, domain, domain)
			w.edge(docNode, parent, docgraph.EdgeBelongsTo, "")
			update.HierarchyNodes++
		}
		for _, theme := range tree.Themes {
			if theme = strings.TrimSpace(theme); theme == "" {
				continue
			}
			w.edge(parent, w.node(docgraph.NodeTheme, theme, theme), docgraph.EdgeContainsTheme, "")
			update.HierarchyNodes++
		}
		for _, cluster := range tree.SemanticClusters {
			members := nonEmpty(cluster)
			if len(members) == 0 {
				continue
			}
			name := strings.Join(members, ", ")
			clusterNode := w.node(docgraph.NodeSemanticCluster, name, name)
			w.edge(docNode, clusterNode, docgraph.EdgeHasCluster, "")
			for _, m := range members {
				w.edge(clusterNode, w.node(docgraph.NodeConcept, m, m), docgraph.EdgeClusterMember, "")
			}
			update.HierarchyNodes++
		}
	}

	if w.err != nil {
		return nil, w.err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return update, nil
}

// RelationshipEdgeType converts a relationship type to an edge type:
// upper case with underscores, RELATED when blank.
func RelationshipEdgeType(t string) string {
	t = strings.Join(strings.Fields(strings.ToUpper(t)), "_")
	if t == "" {
		return docgraph.EdgeRelatedDefault
	}
	return t
}

// graphWriter inserts nodes and edges within a transaction, keeping the
// first error.
type graphWriter struct {
	ctx        context.Context
	tx         *sql.Tx
	documentID string
	now        time.Time
	err        error
}

// node inserts a node keyed by label and key and returns its id. Only
// document nodes are owned by the document.
func (w *graphWriter) node(label, key, name string) string {
	id := NodeID(label, key)
	if w.err != nil {
		return id
	}
	n := &docgraph.Node{ID: id, Label: label, Name: name, CreatedAt: w.now}
	if label == docgraph.NodeDocument {
		n.DocumentID = w.documentID
	}
	w.err = insertNode(w.ctx, w.tx, n)
	return id
}

func (w *graphWriter) edge(sourceID, targetID, edgeType, description string) {
	if w.err != nil {
		return
	}
	w.err = insertEdge(w.ctx, w.tx, &docgraph.Edge{
		ID:          edgeID(sourceID, edgeType, targetID) + "_" + w.documentID,
		SourceID:    sourceID,
		TargetID:    targetID,
		Type:        edgeType,
		Description: description,
		DocumentID:  w.documentID,
	})
}

// FindPaths explores the graph from nodes with the given names, following
// edges in both directions.
func (s *GraphService) FindPaths(ctx context.Context, start []string, maxHops int) (*docgraph.GraphPath, error) {
	if len(nonEmpty(start)) == 0 {
		return nil, docgraph.Errorf(docgraph.EINVALID, "start entities required")
	}
	if maxHops < 0 {
		return nil, docgraph.Errorf(docgraph.EINVALID, "max hops must not be negative")
	}
	return docgraph.Explore(ctx, nonEmpty(start), maxHops, s.neighbors)
}

// neighbors lists the nodes adjacent to every node named name, outgoing
// edges first, each group in insertion order.
func (s *GraphService) neighbors(ctx context.Context, name string) ([]docgraph.Relationship, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.name, e.type, 0 AS dir, e.rowid AS seq
		FROM edges e
		JOIN nodes f ON f.id = e.source_id
		JOIN nodes t ON t.id = e.target_id
		WHERE f.name = ?
		UNION ALL
		SELECT f.name, e.type, 1 AS dir, e.rowid AS seq
		FROM edges e
		JOIN nodes f ON f.id = e.source_id
		JOIN nodes t ON t.id = e.target_id
		WHERE t.name = ?
		ORDER BY dir, seq
	`, name, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rels []docgraph.Relationship
	for rows.Next() {
		var target, edgeType string
		var dir, seq int64
		if err := rows.Scan(&target, &edgeType, &dir, &seq); err != nil {
			return nil, err
		}
		rels = append(rels, docgraph.Relationship{Source: name, Target: target, Type: edgeType})
	}
	return rels, rows.Err()
}

// Stats returns node and edge counts overall and per label or type.
func (s *GraphService) Stats(ctx context.Context) (*docgraph.GraphStats, error) {
	stats := &docgraph.GraphStats{
		NodesByLabel: map[string]int{},
		EdgesByType:  map[string]int{},
	}

	var err error
	stats.Nodes, err = s.countBy(ctx, "SELECT label, COUNT(*) FROM nodes GROUP BY label", stats.NodesByLabel)
	if err != nil {
		return nil, err
	}
	stats.Edges, err = s.countBy(ctx, "SELECT type, COUNT(*) FROM edges GROUP BY type", stats.EdgesByType)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *GraphService) countBy(ctx context.Context, query string, into map[string]int) (int, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	total := 0
	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return 0, err
		}
		into[key] = n
		total += n
	}
	return total, rows.Err()
}

// deleteOrphanNodes removes shared nodes that no edge refers to anymore.
func deleteOrphanNodes(ctx context.Context, db execer) error {
	_, err := db.ExecContext(ctx, `
		DELETE FROM nodes
		WHERE document_id IS NULL
		AND NOT EXISTS (SELECT 1 FROM edges WHERE edges.source_id = nodes.id OR edges.target_id = nodes.id)
	`)
	return err
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
