// Package app assembles the wizard runtime shared by the HTTP server, the
// Telegram bot and the command line.
package app

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/terraincognita07/bloomly/internal/catalog"
	"github.com/terraincognita07/bloomly/internal/classifier"
	"github.com/terraincognita07/bloomly/internal/config"
	"github.com/terraincognita07/bloomly/internal/db"
	"github.com/terraincognita07/bloomly/internal/i18n"
	"github.com/terraincognita07/bloomly/internal/models"
	"github.com/terraincognita07/bloomly/internal/security"
	"github.com/terraincognita07/bloomly/internal/services"
	"gorm.io/gorm"
)

const (
	nextPeriodModelName = "next_period"
	cyclePhaseModelName = "cycle_phase"
)

type Runtime struct {
	Config       config.Config
	Database     *gorm.DB
	Repositories *db.Repositories
	I18n         *i18n.Manager
	Predictor    *services.PredictionService
	Matcher      *services.RecommendationMatcher
	Wizard       *services.WizardController
}

// Open connects the database, imports RECOMMENDATIONS_PATH when set, loads
// both classifiers and builds the wizard. Classifier load faults are logged
// and surface later as prediction failures.
func Open(cfg config.Config) (*Runtime, error) {
	manager, err := i18n.NewManager(cfg.DefaultLanguage, i18n.Locales())
	if err != nil {
		return nil, fmt.Errorf("i18n init failed: %w", err)
	}

	database, err := db.OpenSQLite(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}
	repositories := db.NewRepositories(database)

	matcher, err := LoadMatcher(repositories.Recommendations, cfg, time.Now())
	if err != nil {
		_ = db.Close(database)
		return nil, err
	}

	predictor, err := BuildPredictor(cfg)
	if err != nil {
		_ = db.Close(database)
		return nil, err
	}

	wizard, err := BuildWizard(cfg, predictor, matcher)
	if err != nil {
		_ = db.Close(database)
		return nil, err
	}

	return &Runtime{
		Config:       cfg,
		Database:     database,
		Repositories: repositories,
		I18n:         manager,
		Predictor:    predictor,
		Matcher:      matcher,
		Wizard:       wizard,
	}, nil
}

func (runtime *Runtime) Close() error {
	return db.Close(runtime.Database)
}

// ImportReport is the stored catalog plus the rows left out of it.
type ImportReport struct {
	Catalog models.RecommendationCatalog
	Skipped []catalog.SkippedRow
}

// ImportCatalog reads a recommendation table and replaces the stored one.
// Rows with a blank required cell are logged and left out.
func ImportCatalog(repo *db.RecommendationRepository, path string, encoding string, now time.Time) (ImportReport, error) {
	table, err := catalog.LoadFile(path, encoding)
	if err != nil {
		return ImportReport{}, fmt.Errorf("load recommendations: %w", err)
	}
	for _, row := range table.Skipped {
		log.Printf("recommendations %s: row skipped, %s", path, row)
	}
	imported, err := repo.ReplaceCatalog(path, encoding, table.HasMood, table.Entries, now)
	if err != nil {
		return ImportReport{}, fmt.Errorf("store recommendations: %w", err)
	}
	return ImportReport{Catalog: imported, Skipped: table.Skipped}, nil
}

// LoadMatcher returns a matcher over the stored catalog. An empty database
// yields a matcher that finds nothing.
func LoadMatcher(repo *db.RecommendationRepository, cfg config.Config, now time.Time) (*services.RecommendationMatcher, error) {
	if cfg.RecommendationsPath != "" {
		report, err := ImportCatalog(repo, cfg.RecommendationsPath, cfg.RecommendationsEncoding, now)
		if err != nil {
			return nil, err
		}
		log.Printf("imported %d recommendations from %s (%d rows skipped)", report.Catalog.EntryCount, report.Catalog.Source, len(report.Skipped))
	}

	stored, entries, err := repo.LoadCatalog()
	if errors.Is(err, db.ErrCatalogNotImported) {
		log.Printf("no recommendation catalog imported; results will list none")
		return services.NewRecommendationMatcher(nil, false), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load recommendation catalog: %w", err)
	}

	mode, err := services.ParseMatchMode(cfg.RecommendationMatch)
	if err != nil {
		return nil, err
	}
	matchMood, err := services.ResolveMatchMood(mode, stored.HasMood)
	if err != nil {
		return nil, err
	}
	return services.NewRecommendationMatcher(entries, matchMood), nil
}

func BuildPredictor(cfg config.Config) (*services.PredictionService, error) {
	decoding, err := services.ParsePhaseDecoding(cfg.PhaseDecoding)
	if err != nil {
		return nil, err
	}
	nextPeriod := loadClassifier(nextPeriodModelName, cfg.NextPeriodModelPath, cfg.ClassifierTimeout())
	phase := loadClassifier(cyclePhaseModelName, cfg.CyclePhaseModelPath, cfg.ClassifierTimeout())
	return services.NewPredictionService(nextPeriod, phase, decoding), nil
}

func loadClassifier(name string, path string, timeout time.Duration) classifier.Classifier {
	if path == "" {
		return classifier.Unavailable{Name: name, Err: classifier.ErrArtifactNotFound}
	}
	model, err := classifier.LoadFile(path, timeout)
	if err != nil {
		log.Printf("classifier %s not loaded: %v", name, err)
		return classifier.Unavailable{Name: name, Err: err}
	}
	return model
}

func BuildWizard(cfg config.Config, predictor services.OutcomePredictor, matcher services.RecommendationLookup) (*services.WizardController, error) {
	parser, err := config.DateParserFor(cfg.DateParsing, cfg.Location)
	if err != nil {
		return nil, err
	}
	return services.NewWizardController(services.WizardOptions{
		Parser:          parser,
		Predictor:       predictor,
		Recommendations: matcher,
		PseudoIdentity:  security.PseudoIdentity,
		Moods:           cfg.Moods,
		Defaults: services.WizardDefaults{
			AverageCycleLength:  cfg.DefaultCycleLength,
			TypicalPeriodLength: cfg.DefaultPeriodLength,
			Mood:                cfg.DefaultMood,
		},
	}), nil
}
