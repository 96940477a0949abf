package models

import (
	"time"

	"gorm.io/datatypes"
)

// Relationship ist eine gerichtete Kante zwischen zwei Entities.
// (source, target, relation_type) ist eindeutig; coauthor wird als zwei
// gerichtete Zeilen mit gleichem Gewicht gespeichert.
type Relationship struct {
	ID         uint         `json:"id" gorm:"primaryKey"`
	SourceID   string       `json:"source_id" gorm:"size:191;not null;uniqueIndex:idx_relationship_edge;index:idx_rel_source"`
	SourceKind EntityKind   `json:"source_type" gorm:"size:32;not null;index:idx_rel_source"`
	TargetID   string       `json:"target_id" gorm:"size:191;not null;uniqueIndex:idx_relationship_edge;index:idx_rel_target"`
	TargetKind EntityKind   `json:"target_type" gorm:"size:32;not null;index:idx_rel_target"`
	Type       RelationType `json:"relation_type" gorm:"column:relation_type;size:64;not null;uniqueIndex:idx_relationship_edge;index"`
	Weight     int          `json:"weight" gorm:"not null"`
	IsCustom   bool         `json:"is_custom"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`

	Data datatypes.JSONMap `json:"data,omitempty"`
}

// TableName gibt den expliziten Tabellennamen für GORM an.
func (Relationship) TableName() string {
	return "relationships"
}

// Other liefert den Endpunkt auf der anderen Seite von id.
func (r Relationship) Other(id string) (string, bool) {
	switch id {
	case r.SourceID:
		return r.TargetID, true
	case r.TargetID:
		return r.SourceID, true
	}
	return "", false
}
