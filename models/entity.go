package models

import (
	"time"

	"gorm.io/datatypes"
)

// EntityKind unterscheidet die Art eines Entity-Datensatzes.
type EntityKind string

const (
	KindScholar     EntityKind = "scholar"
	KindInstitution EntityKind = "institution"
	KindPublication EntityKind = "publication"
)

// Entity ist der Basisdatensatz, an den Scholar-, Publication- und
// Institution-Details über die ID gejoint werden.
type Entity struct {
	ID        string     `json:"id" gorm:"primaryKey;size:191"`
	Kind      EntityKind `json:"type" gorm:"column:kind;size:32;index;not null"`
	Name      string     `json:"name" gorm:"not null"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	// Offene Zusatzattribute (z.B. source, filled, is_coauthor)
	Data datatypes.JSONMap `json:"data,omitempty"`
}

// TableName gibt den expliziten Tabellennamen für GORM an.
func (Entity) TableName() string {
	return "entities"
}
