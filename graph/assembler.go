package graph

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"scholar-graph/apierr"
	"scholar-graph/models"
)

var (
	// ErrNoPrimaryScholars: es gibt keine Primär-Scholars.
	ErrNoPrimaryScholars = apierr.EmptyResult("graph.Assemble", errors.New("no primary scholars"))
	// ErrNoValidNodes: kein Primär-Scholar ließ sich zu einem Knoten auflösen.
	ErrNoValidNodes = apierr.EmptyResult("graph.Assemble", errors.New("no valid nodes"))
)

// Assembler baut den vollständigen, ungefilterten Graphen.
type Assembler struct {
	store  Store
	log    *zap.Logger
	policy SignificancePolicy
}

// NewAssembler erstellt einen Assembler mit der gegebenen Signifikanz-Policy.
func NewAssembler(store Store, policy SignificancePolicy, log *zap.Logger) *Assembler {
	return &Assembler{
		store:  store,
		log:    log.With(zap.String("component", "graph_assembler")),
		policy: policy.normalized(),
	}
}

// Assemble baut den Graphen aus allen Primär-Scholars und den signifikanten
// Sekundär-Scholars. Leere Ergebnisse werden als apierr EmptyResult gemeldet
// (ErrNoPrimaryScholars, ErrNoValidNodes), zusammen mit einem leeren Graphen.
func (a *Assembler) Assemble(ctx context.Context, vis models.Visibility) (*Graph, error) {
	log := a.log.With(zap.Stringer("visibility", vis))

	primaries, err := a.store.ScholarsByRole(ctx, models.RolePrimary)
	if err != nil {
		return Empty(), fmt.Errorf("list primary scholars: %w", err)
	}
	if len(primaries) == 0 {
		log.Warn("No primary scholars found")
		return Empty(), ErrNoPrimaryScholars
	}
	sort.Slice(primaries, func(i, j int) bool { return primaries[i].ID < primaries[j].ID })

	nb := newNodeBuilder(a.store, log)
	g := Empty()
	primarySet := make(map[string]struct{}, len(primaries))
	for i := range primaries {
		s := &primaries[i]
		node, err := nb.scholarNode(ctx, s)
		if err != nil {
			nb.logLookup("primary entity", s.ID, err)
			continue
		}
		g.Nodes = append(g.Nodes, node)
		primarySet[s.ID] = struct{}{}
	}
	if len(g.Nodes) == 0 {
		log.Error("No primary scholar could be materialized", zap.Int("primary_scholars", len(primaries)))
		return Empty(), ErrNoValidNodes
	}

	log.Info("Collecting relationships", zap.Int("primary_scholars", len(primarySet)))

	var candidates []Edge
	connectivity := make(map[string]int)
	for _, node := range g.Nodes {
		rows, err := a.store.RelationshipsFor(ctx, node.ID)
		if err != nil {
			log.Error("Failed to load relationships", zap.String("scholar_id", node.ID), zap.Error(err))
			continue
		}
		for _, c := range Consolidate(node.ID, rows) {
			candidates = append(candidates, edgeFrom(node.ID, c))
			if _, isPrimary := primarySet[c.EndpointID]; isPrimary {
				continue
			}
			if vis.Strict() {
				if role, ok := nb.role(ctx, c.EndpointID); ok && vis.Hides(role) {
					continue
				}
			}
			// Consolidate liefert je Endpunkt einen Datensatz, daher zählt
			// jeder Primär-Scholar höchstens einmal.
			connectivity[c.EndpointID]++
		}
	}

	sel := a.policy.Select(len(primarySet), connectivity)
	switch {
	case sel.ShowAll:
		log.Info("Small graph, including all secondary scholars", zap.Int("secondary_scholars", len(sel.IDs)))
	case sel.Fallback:
		log.Info("No secondary scholar above connectivity threshold, falling back to all",
			zap.Int("threshold", a.policy.MinConnectivity), zap.Int("secondary_scholars", len(sel.IDs)))
	default:
		log.Info("Including significant secondary scholars",
			zap.Int("threshold", a.policy.MinConnectivity), zap.Int("secondary_scholars", len(sel.IDs)),
			zap.Int("referenced", len(connectivity)))
	}

	for _, id := range sel.IDs {
		s, err := a.store.Scholar(ctx, id)
		if err != nil {
			nb.logLookup("secondary scholar", id, err)
			continue
		}
		if vis.Hides(s.Role) {
			log.Debug("Hiding not-interested scholar", zap.String("scholar_id", id))
			continue
		}
		node, err := nb.scholarNode(ctx, s)
		if err != nil {
			nb.logLookup("secondary entity", id, err)
			continue
		}
		g.Nodes = append(g.Nodes, node)
	}

	g.Edges = pruneEdges(candidates, g.NodeIDs())

	log.Info("Graph assembled",
		zap.Int("nodes", len(g.Nodes)),
		zap.Int("edges", len(g.Edges)),
		zap.Int("candidate_edges", len(candidates)),
		zap.Bool("fallback", sel.Fallback))
	return g, nil
}

// pruneEdges behält nur Kanten, deren beide Endpunkte Knoten sind, und
// entfernt Duplikate desselben ungeordneten Paars. Ein Kantenende ohne Knoten
// verwirft die ganze Kante.
func pruneEdges(edges []Edge, nodes map[string]struct{}) []Edge {
	out := make([]Edge, 0, len(edges))
	seen := make(map[string]struct{}, len(edges))
	for _, e := range edges {
		if _, ok := nodes[e.Source]; !ok {
			continue
		}
		if _, ok := nodes[e.Target]; !ok {
			continue
		}
		key := pairKey(e.Source, e.Target)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, e)
	}
	return out
}
