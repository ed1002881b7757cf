package db

import (
	"errors"
	"fmt"
	"time"

	"github.com/terraincognita07/bloomly/internal/models"
	"gorm.io/gorm"
)

var ErrCatalogNotImported = errors.New("no recommendation catalog imported")

const recommendationBatchSize = 200

type RecommendationRepository struct {
	database *gorm.DB
}

func NewRecommendationRepository(database *gorm.DB) *RecommendationRepository {
	return &RecommendationRepository{database: database}
}

// ReplaceCatalog swaps the stored table for entries in one transaction, so
// readers see either the old catalog or the new one.
func (repo *RecommendationRepository) ReplaceCatalog(source string, encoding string, hasMood bool, entries []models.RecommendationEntry, importedAt time.Time) (models.RecommendationCatalog, error) {
	catalog := models.RecommendationCatalog{
		Source:     source,
		Encoding:   encoding,
		HasMood:    hasMood,
		EntryCount: len(entries),
		ImportedAt: importedAt.UTC(),
	}

	err := repo.database.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.RecommendationEntry{}).Error; err != nil {
			return fmt.Errorf("clear recommendations: %w", err)
		}
		if err := tx.Where("1 = 1").Delete(&models.RecommendationCatalog{}).Error; err != nil {
			return fmt.Errorf("clear catalog: %w", err)
		}

		if len(entries) > 0 {
			rows := make([]models.RecommendationEntry, len(entries))
			for index, entry := range entries {
				entry.ID = 0
				entry.Position = index + 1
				rows[index] = entry
			}
			if err := tx.CreateInBatches(&rows, recommendationBatchSize).Error; err != nil {
				return fmt.Errorf("insert recommendations: %w", err)
			}
		}

		if err := tx.Create(&catalog).Error; err != nil {
			return fmt.Errorf("record catalog: %w", err)
		}
		return nil
	})
	if err != nil {
		return models.RecommendationCatalog{}, err
	}
	return catalog, nil
}

// LoadCatalog returns the imported catalog and its entries in table order.
func (repo *RecommendationRepository) LoadCatalog() (models.RecommendationCatalog, []models.RecommendationEntry, error) {
	catalog := models.RecommendationCatalog{}
	if err := repo.database.Order("id DESC").First(&catalog).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.RecommendationCatalog{}, nil, ErrCatalogNotImported
		}
		return models.RecommendationCatalog{}, nil, err
	}

	entries := make([]models.RecommendationEntry, 0, catalog.EntryCount)
	if err := repo.database.Order("position ASC").Find(&entries).Error; err != nil {
		return models.RecommendationCatalog{}, nil, err
	}
	return catalog, entries, nil
}

func (repo *RecommendationRepository) CountByPhase() (map[string]int64, error) {
	var rows []struct {
		Phase string
		Total int64
	}
	if err := repo.database.Model(&models.RecommendationEntry{}).
		Select("phase, COUNT(*) AS total").
		Group("phase").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Phase] = row.Total
	}
	return counts, nil
}
