package models

// Interest ist ein Forschungsinteresse (gescraped) oder ein Tag (IsCustom).
type Interest struct {
	EntityID string `json:"entity_id" gorm:"primaryKey;size:191"`
	Text     string `json:"interest" gorm:"column:interest;primaryKey;size:191;index"`
	IsCustom bool   `json:"is_custom"`
}

// TableName gibt den expliziten Tabellennamen für GORM an.
func (Interest) TableName() string {
	return "interests"
}
