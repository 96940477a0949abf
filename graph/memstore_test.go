package graph

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"scholar-graph/apierr"
	"scholar-graph/models"
)

// memStore ist ein Store im Speicher für die Engine-Tests.
type memStore struct {
	scholars  map[string]models.Scholar
	entities  map[string]models.Entity
	rels      []models.Relationship
	interests map[string][]models.Interest

	failRelationships map[string]bool
	failPrimaries     bool
}

func newMemStore() *memStore {
	return &memStore{
		scholars:          make(map[string]models.Scholar),
		entities:          make(map[string]models.Entity),
		interests:         make(map[string][]models.Interest),
		failRelationships: make(map[string]bool),
	}
}

func (m *memStore) addScholar(id string, role models.Role) *memStore {
	m.scholars[id] = models.Scholar{ID: id, Role: role, Affiliation: "Uni " + id, CitedBy: 10}
	m.entities[id] = models.Entity{ID: id, Kind: models.KindScholar, Name: "Name " + id}
	return m
}

func (m *memStore) rel(src, tgt string, typ models.RelationType, weight int) *memStore {
	m.rels = append(m.rels, models.Relationship{
		SourceID: src, SourceKind: models.KindScholar,
		TargetID: tgt, TargetKind: models.KindScholar,
		Type: typ, Weight: weight,
	})
	return m
}

func (m *memStore) coauthor(a, b string, weight int) *memStore {
	return m.rel(a, b, models.RelationCoauthor, weight).rel(b, a, models.RelationCoauthor, weight)
}

func (m *memStore) ScholarsByRole(_ context.Context, roles ...models.Role) ([]models.Scholar, error) {
	if m.failPrimaries {
		return nil, apierr.Persistence("memStore.ScholarsByRole", errors.New("connection refused"))
	}
	var out []models.Scholar
	for _, s := range m.scholars {
		for _, r := range roles {
			if s.Role == r {
				out = append(out, s)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) Scholar(_ context.Context, id string) (*models.Scholar, error) {
	s, ok := m.scholars[id]
	if !ok {
		return nil, apierr.NotFound("memStore.Scholar", fmt.Errorf("scholar %s", id))
	}
	return &s, nil
}

func (m *memStore) Entity(_ context.Context, id string) (*models.Entity, error) {
	e, ok := m.entities[id]
	if !ok {
		return nil, apierr.NotFound("memStore.Entity", fmt.Errorf("entity %s", id))
	}
	return &e, nil
}

func (m *memStore) RelationshipsFor(_ context.Context, id string) ([]models.Relationship, error) {
	if m.failRelationships[id] {
		return nil, apierr.Persistence("memStore.RelationshipsFor", errors.New("timeout"))
	}
	var out []models.Relationship
	for _, r := range m.rels {
		if r.SourceID == id || r.TargetID == id {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memStore) Interests(_ context.Context, id string) ([]models.Interest, error) {
	return m.interests[id], nil
}

// requireEdgesClosed prüft, dass jede Kante nur Knoten des Graphen referenziert.
func requireEdgesClosed(t *testing.T, g *Graph) {
	t.Helper()
	ids := g.NodeIDs()
	for _, e := range g.Edges {
		require.Contains(t, ids, e.Source, "edge %s-%s", e.Source, e.Target)
		require.Contains(t, ids, e.Target, "edge %s-%s", e.Source, e.Target)
	}
}

func nodeIDs(g *Graph) []string {
	out := make([]string, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		out = append(out, n.ID)
	}
	sort.Strings(out)
	return out
}

func nodeByID(g *Graph, id string) (Node, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

func primaryIDs(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("p%02d", i)
	}
	return ids
}
