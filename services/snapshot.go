package services

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"scholar-graph/apierr"
	"scholar-graph/models"
	"scholar-graph/storage"
)

// SnapshotResult beschreibt einen exportierten Graph-Snapshot.
type SnapshotResult struct {
	LatestKey string `json:"latest_key"`
	Key       string `json:"key"`
	URL       string `json:"url"`
	Nodes     int    `json:"nodes"`
	Edges     int    `json:"edges"`
	Empty     bool   `json:"empty"`
	Deleted   int    `json:"deleted"`
}

// SnapshotService exportiert den Standardgraphen als data.json nach S3.
type SnapshotService struct {
	Graphs  *GraphService
	Objects storage.ObjectStore
	Prefix  string
	Keep    int
	Logger  *zap.Logger

	now func() time.Time
}

func NewSnapshotService(graphs *GraphService, objects storage.ObjectStore, prefix string, keep int, logger *zap.Logger) *SnapshotService {
	return &SnapshotService{
		Graphs:  graphs,
		Objects: objects,
		Prefix:  prefix,
		Keep:    keep,
		Logger:  logger.With(zap.String("component", "snapshot_service")),
		now:     time.Now,
	}
}

// Export baut den Graphen mit Standard-Sichtbarkeit und lädt ihn als
// <prefix>/data.json sowie als datierten Snapshot hoch. Ein leerer Graph
// wird ebenfalls exportiert.
func (s *SnapshotService) Export(ctx context.Context) (*SnapshotResult, error) {
	g, err := s.Graphs.AssembleGraph(ctx, models.VisibilityDefault)
	empty := apierr.IsEmptyResult(err)
	if err != nil && !empty {
		return nil, fmt.Errorf("assemble graph: %w", err)
	}

	data, err := json.Marshal(g)
	if err != nil {
		return nil, fmt.Errorf("encode graph: %w", err)
	}

	res := &SnapshotResult{
		LatestKey: path.Join(s.Prefix, "data.json"),
		Key:       path.Join(s.Prefix, "snapshots", "data-"+s.now().UTC().Format("2006-01-02T15-04-05Z")+".json"),
		Nodes:     len(g.Nodes),
		Edges:     len(g.Edges),
		Empty:     empty,
	}
	if _, err := s.Objects.Put(ctx, res.Key, data, "application/json"); err != nil {
		return nil, err
	}
	if res.URL, err = s.Objects.Put(ctx, res.LatestKey, data, "application/json"); err != nil {
		return nil, err
	}

	deleted, err := storage.Rotate(ctx, s.Objects, path.Join(s.Prefix, "snapshots")+"/", s.Keep, s.Logger)
	if err != nil {
		s.Logger.Error("Snapshot rotation failed", zap.Error(err))
	}
	res.Deleted = len(deleted)

	s.Logger.Info("Graph snapshot exported",
		zap.String("key", res.Key),
		zap.Int("nodes", res.Nodes),
		zap.Int("edges", res.Edges),
		zap.Bool("empty", res.Empty))
	return res, nil
}

// Schedule registriert den Export im Cron-Scheduler.
func (s *SnapshotService) Schedule(c *cron.Cron, spec string) (cron.EntryID, error) {
	return c.AddFunc(spec, func() {
		s.Logger.Info("Running scheduled snapshot export...")
		if _, err := s.Export(context.Background()); err != nil {
			s.Logger.Error("Scheduled snapshot export failed", zap.Error(err))
		}
	})
}
