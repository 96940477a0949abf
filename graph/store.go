package graph

import (
	"context"

	"scholar-graph/models"
)

// Store ist der lesende Teil des RelationalStore, den der Graph benötigt.
// Fehlende Datensätze werden als apierr NotFound gemeldet.
type Store interface {
	ScholarsByRole(ctx context.Context, roles ...models.Role) ([]models.Scholar, error)
	Scholar(ctx context.Context, id string) (*models.Scholar, error)
	Entity(ctx context.Context, id string) (*models.Entity, error)
	// RelationshipsFor liefert alle Scholar-Scholar-Zeilen mit id als Quelle oder Ziel.
	RelationshipsFor(ctx context.Context, scholarID string) ([]models.Relationship, error)
	Interests(ctx context.Context, entityID string) ([]models.Interest, error)
}
