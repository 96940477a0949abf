package models

// Publication ist eine Veröffentlichung. Die ID wird aus der externen
// Zitations-ID abgeleitet (siehe PublicationID).
type Publication struct {
	ID           string `json:"cites_id" gorm:"primaryKey;size:191"`
	PubID        string `json:"pub_id,omitempty" gorm:"index"`
	Title        string `json:"title" gorm:"not null"`
	Year         int    `json:"year,omitempty" gorm:"index"`
	Venue        string `json:"venue,omitempty"`
	CitationText string `json:"citation_text,omitempty" gorm:"type:text"`
	NumCitations int    `json:"num_citations"`
	CitedByURL   string `json:"citedby_url,omitempty" gorm:"column:citedby_url"`
}

// TableName gibt den expliziten Tabellennamen für GORM an.
func (Publication) TableName() string {
	return "publications"
}

// Authorship verknüpft Scholar und Publication (n:m).
type Authorship struct {
	ID              uint   `json:"id" gorm:"primaryKey"`
	ScholarID       string `json:"scholar_id" gorm:"size:191;not null;uniqueIndex:idx_authorship_pair"`
	PublicationID   string `json:"cites_id" gorm:"size:191;not null;uniqueIndex:idx_authorship_pair;index"`
	IsCorresponding bool   `json:"is_corresponding"`
}

// TableName gibt den expliziten Tabellennamen für GORM an.
func (Authorship) TableName() string {
	return "authorships"
}
