package graph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"scholar-graph/apierr"
	"scholar-graph/models"
)

func project(t *testing.T, m *memStore, ids []string, rels []models.RelationType, vis models.Visibility) (*Graph, error) {
	t.Helper()
	return NewProjector(m, zap.NewNop()).Project(context.Background(), ids, rels, vis)
}

func projectorStore() *memStore {
	m := newMemStore()
	m.addScholar("A", models.RolePrimary).addScholar("B", models.RoleSecondary).
		addScholar("C", models.RoleSecondary).addScholar("N", models.RoleNotInterested)
	m.coauthor("A", "B", 2)
	m.rel("A", "C", models.RelationAdvisor, 1)
	m.coauthor("B", "N", 1)
	return m
}

func TestProjectKeepsEdgesBetweenCandidates(t *testing.T) {
	g, err := project(t, projectorStore(), []string{"A", "B"}, nil, models.VisibilityDefault)

	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, nodeIDs(g))
	require.Len(t, g.Edges, 1)
	assert.Equal(t, "coauthor", g.Edges[0].Label)
	assert.Equal(t, 2, g.Edges[0].Weight)
	requireEdgesClosed(t, g)
}

func TestProjectRelationFilter(t *testing.T) {
	m := projectorStore()
	ids := []string{"A", "B", "C"}

	g, err := project(t, m, ids, []models.RelationType{models.RelationAdvisor}, models.VisibilityDefault)
	require.NoError(t, err)
	require.Len(t, g.Edges, 1)
	assert.Equal(t, "advisor", g.Edges[0].Label)
	// Knoten bleiben, auch wenn ihre Kanten herausgefiltert werden.
	assert.Len(t, g.Nodes, 3)

	g, err = project(t, m, ids, nil, models.VisibilityDefault)
	require.NoError(t, err)
	assert.Len(t, g.Edges, 2)
}

func TestProjectSkipsMissingAndDuplicateCandidates(t *testing.T) {
	g, err := project(t, projectorStore(), []string{"A", "ghost", "A", "", "B"}, nil, models.VisibilityDefault)

	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, nodeIDs(g))
	assert.Len(t, g.Edges, 1)
}

func TestProjectVisibility(t *testing.T) {
	m := projectorStore()

	g, err := project(t, m, []string{"B", "N"}, nil, models.VisibilityDefault)
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, nodeIDs(g))
	assert.Empty(t, g.Edges)

	g, err = project(t, m, []string{"B", "N"}, nil, models.VisibilityShowAll)
	require.NoError(t, err)
	n, ok := nodeByID(g, "N")
	require.True(t, ok)
	assert.Equal(t, GroupNotInterested, n.Group)
	assert.Len(t, g.Edges, 1)
}

func TestProjectNoCandidates(t *testing.T) {
	m := projectorStore()

	for _, ids := range [][]string{nil, {"ghost"}, {"N"}} {
		g, err := project(t, m, ids, nil, models.VisibilityStrictHidden)
		require.ErrorIs(t, err, ErrNoCandidateNodes)
		assert.True(t, apierr.IsEmptyResult(err))
		assert.True(t, g.IsEmpty())
	}
}

func TestProjectSymmetricRowsYieldOneEdge(t *testing.T) {
	m := newMemStore()
	m.addScholar("A", models.RoleSecondary).addScholar("B", models.RoleSecondary)
	m.coauthor("A", "B", 5)
	m.rel("A", "B", models.RelationColleague, 1)

	g, err := project(t, m, []string{"B", "A"}, nil, models.VisibilityDefault)

	require.NoError(t, err)
	require.Len(t, g.Edges, 1)
	e := g.Edges[0]
	assert.Equal(t, "B", e.Source)
	assert.Equal(t, "colleague", e.Label)
	assert.Equal(t, 5, e.Weight)
	require.NotNil(t, e.Data)
	assert.Equal(t, []string{"colleague", "coauthor"}, e.Data.AllRelations)
}

func TestProjectEmptyRelationFilterAllowsAllTypes(t *testing.T) {
	all, err := project(t, projectorStore(), []string{"A", "B", "C"}, nil, models.VisibilityDefault)
	require.NoError(t, err)

	g, err := project(t, projectorStore(), []string{"A", "B", "C"}, []models.RelationType{}, models.VisibilityDefault)

	require.NoError(t, err)
	assert.Len(t, g.Nodes, 3)
	assert.Len(t, g.Edges, 2)
	assert.Equal(t, all.Edges, g.Edges)
}
