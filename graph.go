package docgraph

import (
	"context"
	"time"
)

// Node labels used by the graph store.
const (
	NodeDocument        = "Document"
	NodeEntity          = "Entity"
	NodeConcept         = "Concept"
	NodeDomain          = "Domain"
	NodeTheme           = "Theme"
	NodeSemanticCluster = "SemanticCluster"
)

// Edge types written when storing an analysis. Relationship edges use the
// upper-cased relationship type instead.
const (
	EdgeMentions       = "MENTIONS"
	EdgeDiscusses      = "DISCUSSES"
	EdgeBelongsTo      = "BELONGS_TO_DOMAIN"
	EdgeContainsTheme  = "CONTAINS_THEME"
	EdgeHasCluster     = "HAS_SEMANTIC_CLUSTER"
	EdgeClusterMember  = "IN_CLUSTER"
	EdgeRelatedDefault = "RELATED"
)

// Node is a vertex of the knowledge graph.
type Node struct {
	ID         string    `json:"id"`
	Label      string    `json:"label"`
	Name       string    `json:"name"`
	DocumentID string    `json:"documentId,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Validate returns an error if the node contains invalid fields.
func (n *Node) Validate() error {
	if n.ID == "" {
		return Errorf(EINVALID, "node id required")
	}
	if n.Label == "" {
		return Errorf(EINVALID, "node label required")
	}
	if n.Name == "" {
		return Errorf(EINVALID, "node name required")
	}
	return nil
}

// Edge is a directed, typed link between two nodes.
type Edge struct {
	ID          string `json:"id"`
	SourceID    string `json:"sourceId"`
	TargetID    string `json:"targetId"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	DocumentID  string `json:"documentId,omitempty"`
}

// GraphStats summarizes the graph store.
type GraphStats struct {
	Nodes        int            `json:"nodes"`
	Edges        int            `json:"edges"`
	NodesByLabel map[string]int `json:"nodesByLabel"`
	EdgesByType  map[string]int `json:"edgesByType"`
}

// GraphUpdate counts what storing one analysis wrote.
type GraphUpdate struct {
	DocumentNodes  int `json:"document_nodes"`
	EntityNodes    int `json:"entity_nodes"`
	ConceptNodes   int `json:"concept_nodes"`
	Relationships  int `json:"relationships"`
	HierarchyNodes int `json:"hierarchy_nodes"`
}

// Hop is one edge traversed during multi-hop exploration.
type Hop struct {
	Step   int    `json:"step"`
	Source string `json:"source"`
	Target string `json:"target"`
	Type   string `json:"type"`
}

// GraphPath is the result of a multi-hop exploration from starting names.
type GraphPath struct {
	Start          []string `json:"start"`
	Visited        []string `json:"visited"`
	Hops           []Hop    `json:"hops"`
	StepsCompleted int      `json:"steps_completed"`
}

// GraphService represents a service for managing the knowledge graph.
type GraphService interface {
	// CreateNode stores a node. Creating an existing node is a no-op.
	CreateNode(ctx context.Context, node *Node) error

	// FindNodeByID retrieves a node by ID.
	// Returns ENOTFOUND if node does not exist.
	FindNodeByID(ctx context.Context, id string) (*Node, error)

	// DeleteNode removes a node and its edges.
	// Returns ENOTFOUND if node does not exist.
	DeleteNode(ctx context.Context, id string) error

	// CreateEdge stores an edge between two existing nodes.
	CreateEdge(ctx context.Context, edge *Edge) error

	// FindEdges returns the edges leaving or entering a node.
	FindEdges(ctx context.Context, nodeID string) ([]*Edge, error)

	// DeleteEdges removes every edge touching a node.
	DeleteEdges(ctx context.Context, nodeID string) error

	// StoreAnalysis writes a document node, its entities, concepts,
	// relationships and knowledge-tree hierarchy.
	StoreAnalysis(ctx context.Context, doc *Document, a *AnalysisResult) (*GraphUpdate, error)

	// FindPaths explores the graph outward from the named nodes.
	FindPaths(ctx context.Context, start []string, maxHops int) (*GraphPath, error)

	// Stats returns node and edge counts.
	Stats(ctx context.Context) (*GraphStats, error)
}

// NeighborFunc returns the relationships leaving the named node.
type NeighborFunc func(ctx context.Context, name string) ([]Relationship, error)

// Explore walks the graph breadth first from start for at most maxHops
// steps. At step i (zero-based) each frontier node expands to at most
// max(1, 3-i) unvisited neighbors, so exploration narrows as it deepens.
func Explore(ctx context.Context, start []string, maxHops int, neighbors NeighborFunc) (*GraphPath, error) {
	path := &GraphPath{Start: start, Hops: []Hop{}}
	visited := make(map[string]bool, len(start))
	for _, s := range start {
		if !visited[s] {
			visited[s] = true
			path.Visited = append(path.Visited, s)
		}
	}

	current := append([]string(nil), path.Visited...)
	for step := 0; step < maxHops && len(current) > 0; step++ {
		width := max(1, 3-step)
		var next []string
		for _, name := range current {
			rels, err := neighbors(ctx, name)
			if err != nil {
				return nil, err
			}
			taken := 0
			for _, rel := range rels {
				if taken == width {
					break
				}
				if visited[rel.Target] {
					continue
				}
				visited[rel.Target] = true
				taken++
				next = append(next, rel.Target)
				path.Visited = append(path.Visited, rel.Target)
				path.Hops = append(path.Hops, Hop{Step: step + 1, Source: name, Target: rel.Target, Type: rel.Type})
			}
		}
		if len(next) == 0 {
			break
		}
		path.StepsCompleted = step + 1
		current = next
	}
	return path, nil
}
