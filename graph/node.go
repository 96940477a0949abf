package graph

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"scholar-graph/apierr"
	"scholar-graph/models"
)

// nodeBuilder materialisiert Knoten und merkt sich Rollen pro Aufruf.
// Er lebt nur für einen Request.
type nodeBuilder struct {
	store Store
	log   *zap.Logger
	roles map[string]models.Role
}

func newNodeBuilder(store Store, log *zap.Logger) *nodeBuilder {
	return &nodeBuilder{store: store, log: log, roles: make(map[string]models.Role)}
}

// role liefert die Rolle eines Scholars; false wenn er nicht auflösbar ist.
func (b *nodeBuilder) role(ctx context.Context, id string) (models.Role, bool) {
	if r, ok := b.roles[id]; ok {
		return r, true
	}
	s, err := b.store.Scholar(ctx, id)
	if err != nil {
		b.logLookup("scholar", id, err)
		return models.RoleSecondary, false
	}
	b.roles[id] = s.Role
	return s.Role, true
}

// scholarNode baut den Knoten für einen bereits geladenen Scholar.
func (b *nodeBuilder) scholarNode(ctx context.Context, s *models.Scholar) (Node, error) {
	b.roles[s.ID] = s.Role

	entity, err := b.store.Entity(ctx, s.ID)
	if err != nil {
		return Node{}, fmt.Errorf("entity %s: %w", s.ID, err)
	}
	if entity.Name == "" {
		return Node{}, apierr.NotFound("graph.node", fmt.Errorf("entity %s has no name", s.ID))
	}

	var interests, tags []string
	rows, err := b.store.Interests(ctx, s.ID)
	if err != nil {
		// Interessen sind optional.
		b.log.Warn("Failed to load interests", zap.String("scholar_id", s.ID), zap.Error(err))
	}
	for _, row := range rows {
		if row.IsCustom {
			tags = append(tags, row.Text)
			continue
		}
		interests = append(interests, row.Text)
	}
	if interests == nil {
		interests = []string{}
	}
	if tags == nil {
		tags = []string{}
	}

	data := NodeData{
		ID:           s.ID,
		Name:         entity.Name,
		ScholarID:    s.ID,
		Affiliation:  s.Affiliation,
		Interests:    interests,
		Tags:         tags,
		IsSecondary:  s.Role != models.RolePrimary,
		Role:         s.Role,
		CitedBy:      s.CitedBy,
		HIndex:       s.HIndex,
		I10Index:     s.I10Index,
		CitesPerYear: s.CitesPerYear.Data(),
		URLPicture:   s.URLPicture,
		Homepage:     s.Homepage,
	}
	if len(entity.Data) > 0 {
		data.Extensions = make(map[string]any, len(entity.Data))
		for k, v := range entity.Data {
			data.Extensions[k] = v
		}
	}

	return Node{
		ID:    s.ID,
		Label: entity.Name,
		Group: GroupForRole(s.Role),
		Data:  data,
	}, nil
}

func (b *nodeBuilder) logLookup(what, id string, err error) {
	if apierr.IsNotFound(err) {
		b.log.Warn("Skipping unresolvable "+what, zap.String("scholar_id", id), zap.Error(err))
		return
	}
	b.log.Error("Failed to load "+what, zap.String("scholar_id", id), zap.Error(err))
}
