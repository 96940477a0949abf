package services

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"scholar-graph/apierr"
	"scholar-graph/filter"
	"scholar-graph/graph"
	"scholar-graph/models"
)

// ErrNoMatchingScholars: kein Scholar erfüllt die Filterbedingungen.
var ErrNoMatchingScholars = apierr.EmptyResult("services.FilterGraph", errors.New("no scholars match the filter"))

// GraphStore ist alles, was Assembler, Projector und Compiler lesen.
type GraphStore interface {
	graph.Store
	filter.Store
}

// GraphService stellt die beiden Graph-Operationen der API bereit.
type GraphService struct {
	Assembler *graph.Assembler
	Projector *graph.Projector
	Compiler  *filter.Compiler
	Logger    *zap.Logger
}

// NewGraphService erstellt eine neue Instanz des GraphService.
func NewGraphService(store GraphStore, policy graph.SignificancePolicy, logger *zap.Logger) *GraphService {
	return &GraphService{
		Assembler: graph.NewAssembler(store, policy, logger),
		Projector: graph.NewProjector(store, logger),
		Compiler:  filter.NewCompiler(store, logger),
		Logger:    logger.With(zap.String("component", "graph_service")),
	}
}

// AssembleGraph baut den vollständigen Graphen. Leere Ergebnisse kommen als
// leerer Graph zusammen mit einem EmptyResult-Fehler zurück.
func (s *GraphService) AssembleGraph(ctx context.Context, vis models.Visibility) (*graph.Graph, error) {
	start := time.Now()
	g, err := s.Assembler.Assemble(ctx, vis)
	observe("assemble", start, g, err)
	return g, err
}

// FilterGraph kompiliert die Optionen, ermittelt die Kandidaten und
// projiziert den Teilgraphen.
func (s *GraphService) FilterGraph(ctx context.Context, opts filter.Options) (*graph.Graph, error) {
	start := time.Now()
	g, err := s.filterGraph(ctx, opts)
	observe("filter", start, g, err)
	return g, err
}

func (s *GraphService) filterGraph(ctx context.Context, opts filter.Options) (*graph.Graph, error) {
	q := s.Compiler.Compile(opts)
	ids, err := s.Compiler.Candidates(ctx, q)
	if err != nil {
		s.Logger.Error("Filter query failed", zap.Error(err))
		return graph.Empty(), err
	}
	if len(ids) == 0 {
		s.Logger.Info("No scholars match the filter", zap.Stringer("query", q))
		return graph.Empty(), ErrNoMatchingScholars
	}
	return s.Projector.Project(ctx, ids, q.Relations, q.Visibility)
}

func observe(op string, start time.Time, g *graph.Graph, err error) {
	graphBuildDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	outcome := outcomeOK
	switch {
	case apierr.IsEmptyResult(err):
		outcome = outcomeEmpty
	case err != nil:
		outcome = outcomeError
	}
	graphBuildsTotal.WithLabelValues(op, outcome).Inc()
	if g != nil {
		graphNodes.WithLabelValues(op).Set(float64(len(g.Nodes)))
	}
}
