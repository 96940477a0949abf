package services

import (
	"context"

	"go.uber.org/zap"

	"scholar-graph/models"
	"scholar-graph/store"
)

// ScholarDetail ist die Detailansicht eines Scholars.
type ScholarDetail struct {
	Entity       *models.Entity          `json:"entity"`
	Scholar      *models.Scholar         `json:"scholar"`
	Interests    []string                `json:"interests"`
	Tags         []string                `json:"tags"`
	Publications []models.Publication    `json:"publications"`
	Institutions []store.InstitutionLink `json:"institutions"`
}

type ScholarService struct {
	Store  *store.Store
	Logger *zap.Logger
}

func NewScholarService(st *store.Store, logger *zap.Logger) *ScholarService {
	return &ScholarService{Store: st, Logger: logger.With(zap.String("component", "scholar_service"))}
}

// Detail lädt alle Daten eines Scholars. Fehlt er, kommt ein NotFound-Fehler.
func (s *ScholarService) Detail(ctx context.Context, id string) (*ScholarDetail, error) {
	sc, err := s.Store.Scholar(ctx, id)
	if err != nil {
		return nil, err
	}
	entity, err := s.Store.Entity(ctx, id)
	if err != nil {
		return nil, err
	}
	rows, err := s.Store.Interests(ctx, id)
	if err != nil {
		return nil, err
	}
	d := &ScholarDetail{Entity: entity, Scholar: sc, Interests: []string{}, Tags: []string{}}
	for _, r := range rows {
		if r.IsCustom {
			d.Tags = append(d.Tags, r.Text)
		} else {
			d.Interests = append(d.Interests, r.Text)
		}
	}
	if d.Publications, err = s.Store.Publications(ctx, id); err != nil {
		return nil, err
	}
	if d.Institutions, err = s.Store.InstitutionLinks(ctx, id); err != nil {
		return nil, err
	}
	return d, nil
}

// SetRole macht einen Scholar zum Primär-Scholar, markiert ihn als
// NotInterested oder setzt ihn auf Sekundär zurück.
func (s *ScholarService) SetRole(ctx context.Context, id string, role models.Role) error {
	if err := s.Store.SetRole(ctx, id, role); err != nil {
		return err
	}
	s.Logger.Info("Scholar role changed", zap.String("scholar_id", id), zap.Stringer("role", role))
	return nil
}
