package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"scholar-graph/apierr"
	"scholar-graph/models"
	"scholar-graph/store"
)

// RelationshipKey identifiziert eine gespeicherte Beziehung.
type RelationshipKey struct {
	SourceID string              `json:"source_id"`
	TargetID string              `json:"target_id"`
	Type     models.RelationType `json:"type"`
}

func (k RelationshipKey) normalized() RelationshipKey {
	return RelationshipKey{
		SourceID: strings.TrimSpace(k.SourceID),
		TargetID: strings.TrimSpace(k.TargetID),
		Type:     models.RelationType(strings.ToLower(strings.TrimSpace(string(k.Type)))),
	}
}

func (k RelationshipKey) validate(op string) error {
	switch {
	case k.SourceID == "" || k.TargetID == "":
		return apierr.Validation(op, errors.New("source_id and target_id are required"))
	case k.SourceID == k.TargetID:
		return apierr.Validation(op, errors.New("source_id and target_id must differ"))
	case k.Type == "":
		return apierr.Validation(op, errors.New("type is required"))
	}
	return nil
}

// RelationshipService verwaltet eigene Beziehungen zwischen Entities.
type RelationshipService struct {
	Store  *store.Store
	Logger *zap.Logger
}

func NewRelationshipService(st *store.Store, logger *zap.Logger) *RelationshipService {
	return &RelationshipService{Store: st, Logger: logger.With(zap.String("component", "relationship_service"))}
}

// Add legt eine eigene Beziehung mit Gewicht 1 an. Beide Entities müssen
// existieren. Eine bestehende Beziehung bleibt unverändert.
func (s *RelationshipService) Add(ctx context.Context, key RelationshipKey) (*models.Relationship, error) {
	const op = "services.RelationshipService.Add"
	key = key.normalized()
	if err := key.validate(op); err != nil {
		return nil, err
	}

	var rel *models.Relationship
	err := s.Store.Transaction(ctx, func(tx *store.Store) error {
		source, err := tx.Entity(ctx, key.SourceID)
		if err != nil {
			return err
		}
		target, err := tx.Entity(ctx, key.TargetID)
		if err != nil {
			return err
		}
		rel, err = tx.UpsertRelationship(ctx, models.Relationship{
			SourceID: source.ID, SourceKind: source.Kind,
			TargetID: target.ID, TargetKind: target.Kind,
			Type:     key.Type,
			IsCustom: true,
			Data:     datatypes.JSONMap{"is_custom": true, "created": time.Now().UTC().Format(time.RFC3339)},
		}, 0)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("add relationship %s-%s: %w", key.SourceID, key.TargetID, err)
	}
	s.Logger.Info("Relationship added",
		zap.String("source_id", key.SourceID),
		zap.String("target_id", key.TargetID),
		zap.String("type", string(key.Type)))
	return rel, nil
}

// DeleteBatch löscht die angegebenen Beziehungen in einer Transaktion und
// gibt die Anzahl tatsächlich gelöschter Zeilen zurück.
func (s *RelationshipService) DeleteBatch(ctx context.Context, keys []RelationshipKey) (int, error) {
	const op = "services.RelationshipService.DeleteBatch"
	if len(keys) == 0 {
		return 0, apierr.Validation(op, errors.New("no relationships given"))
	}
	for i := range keys {
		keys[i] = keys[i].normalized()
		if err := keys[i].validate(op); err != nil {
			return 0, fmt.Errorf("relationship %d: %w", i, err)
		}
	}

	deleted := 0
	err := s.Store.Transaction(ctx, func(tx *store.Store) error {
		for _, k := range keys {
			ok, err := tx.DeleteRelationship(ctx, k.SourceID, k.TargetID, k.Type)
			if err != nil {
				return err
			}
			if ok {
				deleted++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.Logger.Info("Relationships deleted", zap.Int("requested", len(keys)), zap.Int("deleted", deleted))
	return deleted, nil
}
