package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"scholar-graph/apierr"
	"scholar-graph/models"
)

func (s *Store) Entity(ctx context.Context, id string) (*models.Entity, error) {
	var e models.Entity
	if err := s.conn(ctx).First(&e, "id = ?", id).Error; err != nil {
		return nil, wrap("store.Entity", fmt.Errorf("entity %s: %w", id, err))
	}
	return &e, nil
}

func (s *Store) Scholar(ctx context.Context, id string) (*models.Scholar, error) {
	var sc models.Scholar
	if err := s.conn(ctx).First(&sc, "id = ?", id).Error; err != nil {
		return nil, wrap("store.Scholar", fmt.Errorf("scholar %s: %w", id, err))
	}
	return &sc, nil
}

// ScholarsByRole liefert alle Scholars mit einer der Rollen, sortiert nach ID.
func (s *Store) ScholarsByRole(ctx context.Context, roles ...models.Role) ([]models.Scholar, error) {
	var out []models.Scholar
	if len(roles) == 0 {
		return out, nil
	}
	err := s.conn(ctx).Where("role IN ?", roleValues(roles)).Order("id").Find(&out).Error
	if err != nil {
		return nil, wrap("store.ScholarsByRole", err)
	}
	return out, nil
}

// Interests liefert Interessen und Tags einer Entity, alphabetisch.
func (s *Store) Interests(ctx context.Context, entityID string) ([]models.Interest, error) {
	var out []models.Interest
	err := s.conn(ctx).Where("entity_id = ?", entityID).Order("interest").Find(&out).Error
	if err != nil {
		return nil, wrap("store.Interests", err)
	}
	return out, nil
}

// UpsertEntity legt eine Entity an oder überschreibt Name, Art und Data.
func (s *Store) UpsertEntity(ctx context.Context, e *models.Entity) error {
	err := s.conn(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"kind", "name", "data", "updated_at"}),
	}).Create(e).Error
	return wrap("store.UpsertEntity", err)
}

// EnsureEntity legt eine Entity nur an, wenn sie fehlt.
func (s *Store) EnsureEntity(ctx context.Context, e *models.Entity) (bool, error) {
	res := s.conn(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(e)
	if res.Error != nil {
		return false, wrap("store.EnsureEntity", res.Error)
	}
	return res.RowsAffected > 0, nil
}

var scholarUpdateColumns = []string{
	"affiliation", "email_domain", "homepage", "url_picture",
	"citedby", "citedby5y", "hindex", "hindex5y", "i10index", "i10index5y",
	"cites_per_year", "role", "last_updated",
}

// UpsertScholar schreibt alle Detailfelder inklusive Rolle.
func (s *Store) UpsertScholar(ctx context.Context, sc *models.Scholar) error {
	err := s.conn(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns(scholarUpdateColumns),
	}).Create(sc).Error
	return wrap("store.UpsertScholar", err)
}

// EnsureScholar legt einen Scholar nur an, wenn er fehlt. Eine bestehende
// Rolle bleibt unverändert.
func (s *Store) EnsureScholar(ctx context.Context, sc *models.Scholar) (bool, error) {
	res := s.conn(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(sc)
	if res.Error != nil {
		return false, wrap("store.EnsureScholar", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// SetRole ändert die Rolle eines bestehenden Scholars.
func (s *Store) SetRole(ctx context.Context, id string, role models.Role) error {
	if !role.Valid() {
		return apierr.Validation("store.SetRole", fmt.Errorf("invalid role %d", role))
	}
	res := s.conn(ctx).Model(&models.Scholar{}).Where("id = ?", id).Update("role", int(role))
	if res.Error != nil {
		return wrap("store.SetRole", res.Error)
	}
	if res.RowsAffected == 0 {
		return apierr.NotFound("store.SetRole", fmt.Errorf("scholar %s: %w", id, gorm.ErrRecordNotFound))
	}
	return nil
}

// ReplaceInterests ersetzt die nicht-eigenen Interessen einer Entity.
// Eigene Tags (IsCustom) bleiben erhalten; ein Interesse mit demselben Text
// wie ein Tag wird nicht doppelt angelegt.
func (s *Store) ReplaceInterests(ctx context.Context, entityID string, texts []string) error {
	db := s.conn(ctx)
	if err := db.Where("entity_id = ? AND is_custom = ?", entityID, false).Delete(&models.Interest{}).Error; err != nil {
		return wrap("store.ReplaceInterests", err)
	}
	rows := make([]models.Interest, 0, len(texts))
	seen := make(map[string]struct{}, len(texts))
	for _, t := range texts {
		t = models.NormalizeText(t)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		rows = append(rows, models.Interest{EntityID: entityID, Text: t})
	}
	if len(rows) == 0 {
		return nil
	}
	err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
	return wrap("store.ReplaceInterests", err)
}

// AddTag legt einen eigenen Tag an.
func (s *Store) AddTag(ctx context.Context, entityID, tag string) error {
	tag = models.NormalizeText(tag)
	if tag == "" {
		return apierr.Validation("store.AddTag", fmt.Errorf("empty tag"))
	}
	err := s.conn(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "entity_id"}, {Name: "interest"}},
		DoUpdates: clause.Assignments(map[string]any{"is_custom": true}),
	}).Create(&models.Interest{EntityID: entityID, Text: tag, IsCustom: true}).Error
	return wrap("store.AddTag", err)
}

func roleValues(roles []models.Role) []int {
	out := make([]int, len(roles))
	for i, r := range roles {
		out[i] = int(r)
	}
	return out
}
