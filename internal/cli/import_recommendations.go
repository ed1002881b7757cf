package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/terraincognita07/bloomly/internal/app"
	"github.com/terraincognita07/bloomly/internal/catalog"
	"github.com/terraincognita07/bloomly/internal/config"
	"github.com/terraincognita07/bloomly/internal/db"
)

type importOptions struct {
	Path     string
	Encoding string
}

func parseImportFlags(fs *flag.FlagSet, args []string, cfg config.Config) (importOptions, error) {
	options := importOptions{}
	fs.StringVar(&options.Path, "path", cfg.RecommendationsPath, "recommendation CSV to import")
	fs.StringVar(&options.Encoding, "encoding", cfg.RecommendationsEncoding, "text encoding of the CSV")
	if err := fs.Parse(args); err != nil {
		return importOptions{}, err
	}
	if strings.TrimSpace(options.Path) == "" {
		return importOptions{}, errors.New("-path is required")
	}
	if _, err := catalog.LookupEncoding(options.Encoding); err != nil {
		return importOptions{}, err
	}
	return options, nil
}

// RunImportRecommendationsCommand replaces the stored catalog with a CSV and
// prints how many entries each phase received.
func RunImportRecommendationsCommand(cfg config.Config, args []string, stdout io.Writer) error {
	options, err := parseImportFlags(flag.NewFlagSet("import-recommendations", flag.ContinueOnError), args, cfg)
	if err != nil {
		return err
	}

	database, err := db.OpenSQLite(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("database init failed: %w", err)
	}
	defer db.Close(database)

	repo := db.NewRecommendationRepository(database)
	report, err := app.ImportCatalog(repo, options.Path, options.Encoding, time.Now())
	if err != nil {
		return err
	}
	counts, err := repo.CountByPhase()
	if err != nil {
		return fmt.Errorf("count recommendations: %w", err)
	}

	phases := make([]string, 0, len(counts))
	for phase := range counts {
		phases = append(phases, phase)
	}
	sort.Strings(phases)

	imported := report.Catalog
	fmt.Fprintf(stdout, "imported=%d skipped=%d source=%s encoding=%s mood_column=%t\n", imported.EntryCount, len(report.Skipped), imported.Source, imported.Encoding, imported.HasMood)
	for _, row := range report.Skipped {
		fmt.Fprintf(stdout, "  skipped %s\n", row)
	}
	for _, phase := range phases {
		fmt.Fprintf(stdout, "  %s=%d\n", phase, counts[phase])
	}
	return nil
}
