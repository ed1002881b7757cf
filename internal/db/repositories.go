package db

import "gorm.io/gorm"

type Repositories struct {
	Recommendations *RecommendationRepository
}

func NewRepositories(database *gorm.DB) *Repositories {
	return &Repositories{
		Recommendations: NewRecommendationRepository(database),
	}
}
