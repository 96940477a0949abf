package models

import (
	"time"

	"gorm.io/datatypes"
)

// Scholar enthält die Detaildaten eines Wissenschaftlers (ScholarDetail).
type Scholar struct {
	ID          string `json:"scholar_id" gorm:"primaryKey;size:191"`
	Affiliation string `json:"affiliation" gorm:"index"`
	EmailDomain string `json:"email_domain,omitempty"`
	Homepage    string `json:"homepage,omitempty"`
	URLPicture  string `json:"url_picture,omitempty"`

	CitedBy    int `json:"citedby" gorm:"column:citedby;index"`
	CitedBy5y  int `json:"citedby5y" gorm:"column:citedby5y"`
	HIndex     int `json:"hindex" gorm:"column:hindex"`
	HIndex5y   int `json:"hindex5y" gorm:"column:hindex5y"`
	I10Index   int `json:"i10index" gorm:"column:i10index"`
	I10Index5y int `json:"i10index5y" gorm:"column:i10index5y"`

	// Zitate pro Jahr, z.B. {"2021": 120}
	CitesPerYear datatypes.JSONType[map[string]int] `json:"cites_per_year"`

	Role        Role       `json:"role" gorm:"index;not null"`
	LastUpdated *time.Time `json:"last_updated,omitempty"`
}

// TableName gibt den expliziten Tabellennamen für GORM an.
func (Scholar) TableName() string {
	return "scholars"
}
