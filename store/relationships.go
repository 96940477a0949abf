package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"scholar-graph/apierr"
	"scholar-graph/models"
)

// RelationshipsFor liefert alle Scholar-zu-Scholar-Zeilen, die id in einer
// der beiden Richtungen berühren.
func (s *Store) RelationshipsFor(ctx context.Context, id string) ([]models.Relationship, error) {
	var out []models.Relationship
	err := s.conn(ctx).
		Where("source_kind = ? AND target_kind = ?", models.KindScholar, models.KindScholar).
		Where("source_id = ? OR target_id = ?", id, id).
		Order("id").
		Find(&out).Error
	if err != nil {
		return nil, wrap("store.RelationshipsFor", err)
	}
	return out, nil
}

// Relationship liefert die Zeile (source, target, type).
func (s *Store) Relationship(ctx context.Context, source, target string, typ models.RelationType) (*models.Relationship, error) {
	var r models.Relationship
	err := s.conn(ctx).
		Where("source_id = ? AND target_id = ? AND relation_type = ?", source, target, typ).
		First(&r).Error
	if err != nil {
		return nil, wrap("store.Relationship", fmt.Errorf("relationship %s-%s (%s): %w", source, target, typ, err))
	}
	return &r, nil
}

// UpsertRelationship legt rel an oder erhöht das Gewicht der bestehenden
// Zeile um delta. Neue Zeilen bekommen mindestens Gewicht 1. Das Gewicht
// wird nie verringert.
//
// Das ist Lesen-Ändern-Schreiben; nebenläufige Importe desselben Paars
// brauchen einen äußeren Lock.
func (s *Store) UpsertRelationship(ctx context.Context, rel models.Relationship, delta int) (*models.Relationship, error) {
	if delta < 0 {
		delta = 0
	}
	if rel.SourceID == "" || rel.TargetID == "" {
		return nil, apierr.Validation("store.UpsertRelationship", errors.New("source and target are required"))
	}
	if rel.Type == "" {
		rel.Type = models.RelationCoauthor
	}

	db := s.conn(ctx)
	var existing models.Relationship
	err := db.Where("source_id = ? AND target_id = ? AND relation_type = ?", rel.SourceID, rel.TargetID, rel.Type).
		First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		rel.ID = 0
		rel.Weight = max(delta, 1)
		if err := db.Create(&rel).Error; err != nil {
			return nil, wrap("store.UpsertRelationship", err)
		}
		return &rel, nil
	case err != nil:
		return nil, wrap("store.UpsertRelationship", err)
	}

	if delta == 0 {
		return &existing, nil
	}
	err = db.Model(&existing).Update("weight", gorm.Expr("weight + ?", delta)).Error
	if err != nil {
		return nil, wrap("store.UpsertRelationship", err)
	}
	existing.Weight += delta
	return &existing, nil
}

// DeleteRelationship löscht die Zeile (source, target, type) und meldet, ob
// es sie gab.
func (s *Store) DeleteRelationship(ctx context.Context, source, target string, typ models.RelationType) (bool, error) {
	res := s.conn(ctx).
		Where("source_id = ? AND target_id = ? AND relation_type = ?", source, target, typ).
		Delete(&models.Relationship{})
	if res.Error != nil {
		return false, wrap("store.DeleteRelationship", res.Error)
	}
	return res.RowsAffected > 0, nil
}
