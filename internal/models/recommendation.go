package models

import "time"

type RecommendationEntry struct {
	ID             uint   `gorm:"primaryKey" json:"-"`
	Position       int    `gorm:"not null;index" json:"-"`
	Phase          string `gorm:"not null;index" json:"phase"`
	Mood           string `gorm:"not null;default:''" json:"mood,omitempty"`
	Category       string `gorm:"not null" json:"category"`
	Recommendation string `gorm:"not null" json:"recommendation"`
}

func (RecommendationEntry) TableName() string {
	return "recommendations"
}

// Display renders the entry the way results list it.
func (entry RecommendationEntry) Display() string {
	return entry.Category + ": " + entry.Recommendation
}

// RecommendationCatalog describes the currently imported recommendation table.
type RecommendationCatalog struct {
	ID         uint      `gorm:"primaryKey"`
	Source     string    `gorm:"not null"`
	Encoding   string    `gorm:"not null;default:''"`
	HasMood    bool      `gorm:"not null;default:false"`
	EntryCount int       `gorm:"not null;default:0"`
	ImportedAt time.Time `gorm:"not null"`
}

func (RecommendationCatalog) TableName() string {
	return "recommendation_catalogs"
}
