package graph

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"scholar-graph/apierr"
	"scholar-graph/models"
)

// ErrNoCandidateNodes: keiner der Kandidaten ließ sich zu einem Knoten auflösen.
var ErrNoCandidateNodes = apierr.EmptyResult("graph.Project", errors.New("no candidate nodes"))

// Projector leitet aus einer Kandidatenmenge einen konsistenten Teilgraphen ab.
type Projector struct {
	store Store
	log   *zap.Logger
}

func NewProjector(store Store, log *zap.Logger) *Projector {
	return &Projector{store: store, log: log.With(zap.String("component", "graph_projector"))}
}

// Project materialisiert je Kandidat einen Knoten und behält nur Kanten
// zwischen Kandidaten, deren Label im Beziehungsfilter liegt. Ein leerer
// Filter bedeutet alle bekannten Typen.
func (p *Projector) Project(ctx context.Context, candidates []string, relations []models.RelationType, vis models.Visibility) (*Graph, error) {
	log := p.log.With(zap.Stringer("visibility", vis), zap.Int("candidates", len(candidates)))

	allowed := relationFilter(relations)
	nb := newNodeBuilder(p.store, log)

	g := Empty()
	members := make(map[string]struct{}, len(candidates))
	hidden := 0
	for _, id := range candidates {
		if id == "" {
			continue
		}
		if _, dup := members[id]; dup {
			continue
		}
		s, err := p.store.Scholar(ctx, id)
		if err != nil {
			nb.logLookup("candidate scholar", id, err)
			continue
		}
		if vis.Hides(s.Role) {
			hidden++
			continue
		}
		node, err := nb.scholarNode(ctx, s)
		if err != nil {
			nb.logLookup("candidate entity", id, err)
			continue
		}
		g.Nodes = append(g.Nodes, node)
		members[id] = struct{}{}
	}
	if len(g.Nodes) == 0 {
		log.Info("No candidate could be materialized", zap.Int("hidden", hidden))
		return Empty(), ErrNoCandidateNodes
	}

	seen := make(map[string]struct{})
	for _, node := range g.Nodes {
		rows, err := p.store.RelationshipsFor(ctx, node.ID)
		if err != nil {
			log.Error("Failed to load relationships", zap.String("scholar_id", node.ID), zap.Error(err))
			continue
		}
		for _, c := range Consolidate(node.ID, rows) {
			if _, ok := members[c.EndpointID]; !ok {
				continue
			}
			if _, ok := allowed[c.Label]; !ok {
				continue
			}
			key := pairKey(node.ID, c.EndpointID)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			g.Edges = append(g.Edges, edgeFrom(node.ID, c))
		}
	}

	log.Info("Subgraph projected",
		zap.Int("nodes", len(g.Nodes)),
		zap.Int("edges", len(g.Edges)),
		zap.Int("hidden", hidden))
	return g, nil
}

func relationFilter(relations []models.RelationType) map[models.RelationType]struct{} {
	if len(relations) == 0 {
		relations = models.KnownRelationTypes
	}
	allowed := make(map[models.RelationType]struct{}, len(relations))
	for _, r := range relations {
		allowed[r] = struct{}{}
	}
	return allowed
}
