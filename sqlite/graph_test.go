package sqlite_test

import (
	"context"
	"testing"

	"github.com/fwojciec/docgraph"
	"github.com/fwojciec/docgraph/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createNode(t *testing.T, svc *sqlite.GraphService, label, name string) *docgraph.Node {
	t.Helper()
	node := &docgraph.Node{ID: sqlite.NodeID(label, name), Label: label, Name: name}
	require.NoError(t, svc.CreateNode(context.Background(), node))
	return node
}

func TestNodeID(t *testing.T) {
	t.Parallel()

	a := sqlite.NodeID(docgraph.NodeEntity, "Go")
	assert.Equal(t, a, sqlite.NodeID(docgraph.NodeEntity, "Go"))
	assert.NotEqual(t, a, sqlite.NodeID(docgraph.NodeConcept, "Go"))
	assert.Regexp(t, `^entity_[0-9a-f]{16}$`, a)
}

func TestGraphService_Nodes(t *testing.T) {
	t.Parallel()

	t.Run("creates and finds a node", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewGraphService(setupTestDB(t))
		node := createNode(t, svc, docgraph.NodeEntity, "Go")

		found, err := svc.FindNodeByID(context.Background(), node.ID)

		require.NoError(t, err)
		assert.Equal(t, "Go", found.Name)
		assert.Equal(t, docgraph.NodeEntity, found.Label)
		assert.Empty(t, found.DocumentID)
		assert.False(t, found.CreatedAt.IsZero())
	})

	t.Run("creating an existing node is a no-op", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewGraphService(setupTestDB(t))
		createNode(t, svc, docgraph.NodeEntity, "Go")
		createNode(t, svc, docgraph.NodeEntity, "Go")

		stats, err := svc.Stats(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 1, stats.Nodes)
	})

	t.Run("rejects invalid node", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewGraphService(setupTestDB(t))

		err := svc.CreateNode(context.Background(), &docgraph.Node{ID: "x", Label: docgraph.NodeEntity})

		assert.Equal(t, docgraph.EINVALID, docgraph.ErrorCode(err))
	})

	t.Run("returns ENOTFOUND for unknown node", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewGraphService(setupTestDB(t))

		_, err := svc.FindNodeByID(context.Background(), "missing")
		assert.Equal(t, docgraph.ENOTFOUND, docgraph.ErrorCode(err))

		err = svc.DeleteNode(context.Background(), "missing")
		assert.Equal(t, docgraph.ENOTFOUND, docgraph.ErrorCode(err))
	})

	t.Run("deleting a node removes its edges", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewGraphService(setupTestDB(t))
		ctx := context.Background()
		a := createNode(t, svc, docgraph.NodeEntity, "Go")
		b := createNode(t, svc, docgraph.NodeEntity, "SQLite")
		require.NoError(t, svc.CreateEdge(ctx, &docgraph.Edge{SourceID: a.ID, TargetID: b.ID, Type: "USES"}))

		require.NoError(t, svc.DeleteNode(ctx, b.ID))

		edges, err := svc.FindEdges(ctx, a.ID)
		require.NoError(t, err)
		assert.Empty(t, edges)
	})
}

func TestGraphService_Edges(t *testing.T) {
	t.Parallel()

	t.Run("creates edges and finds them from either end", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewGraphService(setupTestDB(t))
		ctx := context.Background()
		a := createNode(t, svc, docgraph.NodeEntity, "Go")
		b := createNode(t, svc, docgraph.NodeEntity, "SQLite")

		edge := &docgraph.Edge{SourceID: a.ID, TargetID: b.ID, Type: "USES", Description: "storage"}
		require.NoError(t, svc.CreateEdge(ctx, edge))
		assert.NotEmpty(t, edge.ID)

		fromTarget, err := svc.FindEdges(ctx, b.ID)
		require.NoError(t, err)
		require.Len(t, fromTarget, 1)
		assert.Equal(t, *edge, *fromTarget[0])
	})

	t.Run("storing the same edge twice is a no-op", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewGraphService(setupTestDB(t))
		ctx := context.Background()
		a := createNode(t, svc, docgraph.NodeEntity, "Go")
		b := createNode(t, svc, docgraph.NodeEntity, "SQLite")

		require.NoError(t, svc.CreateEdge(ctx, &docgraph.Edge{SourceID: a.ID, TargetID: b.ID, Type: "USES"}))
		require.NoError(t, svc.CreateEdge(ctx, &docgraph.Edge{SourceID: a.ID, TargetID: b.ID, Type: "USES"}))

		edges, err := svc.FindEdges(ctx, a.ID)
		require.NoError(t, err)
		assert.Len(t, edges, 1)
	})

	t.Run("returns ENOTFOUND for missing endpoint", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewGraphService(setupTestDB(t))
		a := createNode(t, svc, docgraph.NodeEntity, "Go")

		err := svc.CreateEdge(context.Background(), &docgraph.Edge{SourceID: a.ID, TargetID: "missing", Type: "USES"})

		assert.Equal(t, docgraph.ENOTFOUND, docgraph.ErrorCode(err))
	})

	t.Run("returns EINVALID without type", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewGraphService(setupTestDB(t))
		a := createNode(t, svc, docgraph.NodeEntity, "Go")

		err := svc.CreateEdge(context.Background(), &docgraph.Edge{SourceID: a.ID, TargetID: a.ID})

		assert.Equal(t, docgraph.EINVALID, docgraph.ErrorCode(err))
	})

	t.Run("deletes every edge touching a node", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewGraphService(setupTestDB(t))
		ctx := context.Background()
		a := createNode(t, svc, docgraph.NodeEntity, "Go")
		b := createNode(t, svc, docgraph.NodeEntity, "SQLite")
		c := createNode(t, svc, docgraph.NodeEntity, "Docker")
		require.NoError(t, svc.CreateEdge(ctx, &docgraph.Edge{SourceID: a.ID, TargetID: b.ID, Type: "USES"}))
		require.NoError(t, svc.CreateEdge(ctx, &docgraph.Edge{SourceID: c.ID, TargetID: a.ID, Type: "RUNS"}))

		require.NoError(t, svc.DeleteEdges(ctx, a.ID))

		stats, err := svc.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, stats.Edges)
		assert.Equal(t, 3, stats.Nodes)
	})
}

func storeDocument(t *testing.T, db *sqlite.DB, name string, a *docgraph.AnalysisResult) (*docgraph.Document, *docgraph.GraphUpdate) {
	t.Helper()
	doc := &docgraph.Document{Name: name, Source: name, Kind: docgraph.KindFile, Content: "content"}
	require.NoError(t, sqlite.NewDocumentService(db).CreateDocument(context.Background(), doc))
	update, err := sqlite.NewGraphService(db).StoreAnalysis(context.Background(), doc, a)
	require.NoError(t, err)
	return doc, update
}

func TestGraphService_StoreAnalysis(t *testing.T) {
	t.Parallel()

	t.Run("writes nodes, edges and hierarchy", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		doc, update := storeDocument(t, db, "guide.md", &docgraph.AnalysisResult{
			Entities: []string{"Go", "SQLite", "Go", " "},
			Concepts: []string{"persistence"},
			Relationships: []docgraph.Relationship{
				{Source: "Go", Target: "SQLite", Type: "stores data in", Description: "driver"},
				{Source: "Go", Target: ""},
			},
			KnowledgeTree: &docgraph.KnowledgeTree{
				Domain:           "Software",
				Themes:           []string{"databases"},
				SemanticClusters: [][]string{{"persistence", "durability"}},
			},
		})

		assert.Equal(t, &docgraph.GraphUpdate{
			DocumentNodes:  1,
			EntityNodes:    2,
			ConceptNodes:   1,
			Relationships:  1,
			HierarchyNodes: 3,
		}, update)

		svc := sqlite.NewGraphService(db)
		ctx := context.Background()

		docNode, err := svc.FindNodeByID(ctx, sqlite.NodeID(docgraph.NodeDocument, doc.ID))
		require.NoError(t, err)
		assert.Equal(t, "guide.md", docNode.Name)
		assert.Equal(t, doc.ID, docNode.DocumentID)

		stats, err := svc.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, map[string]int{
			docgraph.NodeDocument:        1,
			docgraph.NodeEntity:          2,
			docgraph.NodeConcept:         2,
			docgraph.NodeDomain:          1,
			docgraph.NodeTheme:           1,
			docgraph.NodeSemanticCluster: 1,
		}, stats.NodesByLabel)
		assert.Equal(t, map[string]int{
			docgraph.EdgeMentions:      2,
			docgraph.EdgeDiscusses:     1,
			"STORES_DATA_IN":           1,
			docgraph.EdgeBelongsTo:     1,
			docgraph.EdgeContainsTheme: 1,
			docgraph.EdgeHasCluster:    1,
			docgraph.EdgeClusterMember: 2,
		}, stats.EdgesByType)
		assert.Equal(t, 8, stats.Nodes)
		assert.Equal(t, 9, stats.Edges)

		edges, err := svc.FindEdges(ctx, sqlite.NodeID(docgraph.NodeEntity, "SQLite"))
		require.NoError(t, err)
		var rel *docgraph.Edge
		for _, e := range edges {
			if e.Type == "STORES_DATA_IN" {
				rel = e
			}
		}
		require.NotNil(t, rel)
		assert.Equal(t, "driver", rel.Description)
		assert.Equal(t, doc.ID, rel.DocumentID)
	})

	t.Run("links themes to the document without a domain", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		doc, _ := storeDocument(t, db, "a.txt", &docgraph.AnalysisResult{
			KnowledgeTree: &docgraph.KnowledgeTree{Themes: []string{"testing"}},
		})

		edges, err := sqlite.NewGraphService(db).FindEdges(context.Background(), sqlite.NodeID(docgraph.NodeTheme, "testing"))

		require.NoError(t, err)
		require.Len(t, edges, 1)
		assert.Equal(t, sqlite.NodeID(docgraph.NodeDocument, doc.ID), edges[0].SourceID)
		assert.Equal(t, docgraph.EdgeContainsTheme, edges[0].Type)
	})

	t.Run("shares entity nodes between documents", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		storeDocument(t, db, "a.txt", &docgraph.AnalysisResult{Entities: []string{"Go"}})
		storeDocument(t, db, "b.txt", &docgraph.AnalysisResult{Entities: []string{"Go"}})

		stats, err := sqlite.NewGraphService(db).Stats(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 1, stats.NodesByLabel[docgraph.NodeEntity])
		assert.Equal(t, 2, stats.NodesByLabel[docgraph.NodeDocument])
		assert.Equal(t, 2, stats.EdgesByType[docgraph.EdgeMentions])
	})

	t.Run("requires a stored document", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewGraphService(setupTestDB(t))

		_, err := svc.StoreAnalysis(context.Background(), &docgraph.Document{Name: "a"}, &docgraph.AnalysisResult{})

		assert.Equal(t, docgraph.EINVALID, docgraph.ErrorCode(err))
	})
}

func TestRelationshipEdgeType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want string
	}{
		{"uses", "USES"},
		{"depends on", "DEPENDS_ON"},
		{"  part   of ", "PART_OF"},
		{"", docgraph.EdgeRelatedDefault},
		{"   ", docgraph.EdgeRelatedDefault},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, sqlite.RelationshipEdgeType(tt.in))
		})
	}
}

func TestGraphService_FindPaths(t *testing.T) {
	t.Parallel()

	t.Run("follows edges in both directions", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		storeDocument(t, db, "a.txt", &docgraph.AnalysisResult{
			Entities:      []string{"Go", "Docker"},
			Relationships: []docgraph.Relationship{{Source: "Go", Target: "Docker", Type: "uses"}},
		})

		path, err := sqlite.NewGraphService(db).FindPaths(context.Background(), []string{"Go"}, 1)

		require.NoError(t, err)
		assert.Equal(t, []string{"Go", "Docker", "a.txt"}, path.Visited)
		assert.Equal(t, []docgraph.Hop{
			{Step: 1, Source: "Go", Target: "Docker", Type: "USES"},
			{Step: 1, Source: "Go", Target: "a.txt", Type: docgraph.EdgeMentions},
		}, path.Hops)
		assert.Equal(t, 1, path.StepsCompleted)
	})

	t.Run("returns only the start when nothing matches", func(t *testing.T) {
		t.Parallel()

		path, err := sqlite.NewGraphService(setupTestDB(t)).FindPaths(context.Background(), []string{"Nowhere"}, 3)

		require.NoError(t, err)
		assert.Equal(t, []string{"Nowhere"}, path.Visited)
		assert.Empty(t, path.Hops)
		assert.Equal(t, 0, path.StepsCompleted)
	})

	t.Run("rejects empty start", func(t *testing.T) {
		t.Parallel()

		_, err := sqlite.NewGraphService(setupTestDB(t)).FindPaths(context.Background(), []string{" "}, 2)

		assert.Equal(t, docgraph.EINVALID, docgraph.ErrorCode(err))
	})
}
