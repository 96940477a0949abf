package models

// Institution ist eine Forschungseinrichtung.
type Institution struct {
	ID      string `json:"inst_id" gorm:"primaryKey;size:191"`
	Name    string `json:"name" gorm:"not null;index"`
	Type    string `json:"type,omitempty" gorm:"column:inst_type;index"`
	URL     string `json:"url,omitempty"`
	Lab     string `json:"lab,omitempty"`
	Country string `json:"country,omitempty" gorm:"index"`
	Region  string `json:"region,omitempty"`
}

// TableName gibt den expliziten Tabellennamen für GORM an.
func (Institution) TableName() string {
	return "institutions"
}

// ScholarInstitution ist der InstitutionLink zwischen Scholar und Institution.
type ScholarInstitution struct {
	ID            uint   `json:"id" gorm:"primaryKey"`
	ScholarID     string `json:"scholar_id" gorm:"size:191;not null;uniqueIndex:idx_scholar_institution"`
	InstitutionID string `json:"inst_id" gorm:"size:191;not null;uniqueIndex:idx_scholar_institution;index"`
	StartYear     *int   `json:"start_year,omitempty"`
	EndYear       *int   `json:"end_year,omitempty"`
	IsCurrent     bool   `json:"is_current"`
}

// TableName gibt den expliziten Tabellennamen für GORM an.
func (ScholarInstitution) TableName() string {
	return "scholar_institutions"
}
