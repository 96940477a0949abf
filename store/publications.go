package store

import (
	"context"

	"gorm.io/gorm/clause"

	"scholar-graph/models"
)

// InstitutionLink ist eine Institution mit den Angaben der Zugehörigkeit.
type InstitutionLink struct {
	models.Institution
	StartYear *int `json:"start_year,omitempty"`
	EndYear   *int `json:"end_year,omitempty"`
	IsCurrent bool `json:"is_current"`
}

// Publications liefert die Veröffentlichungen eines Scholars, neueste zuerst.
func (s *Store) Publications(ctx context.Context, scholarID string) ([]models.Publication, error) {
	var out []models.Publication
	err := s.conn(ctx).
		Joins("JOIN authorships ON authorships.publication_id = publications.id").
		Where("authorships.scholar_id = ?", scholarID).
		Order("publications.year DESC").Order("publications.id").
		Find(&out).Error
	if err != nil {
		return nil, wrap("store.Publications", err)
	}
	return out, nil
}

func (s *Store) UpsertPublication(ctx context.Context, p *models.Publication) error {
	err := s.conn(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"pub_id", "title", "year", "venue", "citation_text", "num_citations", "citedby_url",
		}),
	}).Create(p).Error
	return wrap("store.UpsertPublication", err)
}

// AddAuthorship verknüpft Scholar und Publication; doppelte Paare werden ignoriert.
func (s *Store) AddAuthorship(ctx context.Context, scholarID, publicationID string) (bool, error) {
	res := s.conn(ctx).Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.Authorship{ScholarID: scholarID, PublicationID: publicationID})
	if res.Error != nil {
		return false, wrap("store.AddAuthorship", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *Store) UpsertInstitution(ctx context.Context, inst *models.Institution) error {
	err := s.conn(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "inst_type", "url", "lab", "country", "region"}),
	}).Create(inst).Error
	return wrap("store.UpsertInstitution", err)
}

// LinkInstitution legt die Zugehörigkeit an oder aktualisiert Zeitraum und
// Aktualität.
func (s *Store) LinkInstitution(ctx context.Context, link *models.ScholarInstitution) error {
	err := s.conn(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "scholar_id"}, {Name: "institution_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"start_year", "end_year", "is_current"}),
	}).Create(link).Error
	return wrap("store.LinkInstitution", err)
}

// InstitutionLinks liefert die Institutionen eines Scholars, aktuelle zuerst.
func (s *Store) InstitutionLinks(ctx context.Context, scholarID string) ([]InstitutionLink, error) {
	var out []InstitutionLink
	err := s.conn(ctx).
		Table("scholar_institutions").
		Select("institutions.*, scholar_institutions.start_year, scholar_institutions.end_year, scholar_institutions.is_current").
		Joins("JOIN institutions ON institutions.id = scholar_institutions.institution_id").
		Where("scholar_institutions.scholar_id = ?", scholarID).
		Order("scholar_institutions.is_current DESC").Order("institutions.name").
		Scan(&out).Error
	if err != nil {
		return nil, wrap("store.InstitutionLinks", err)
	}
	return out, nil
}
