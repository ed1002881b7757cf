package cli

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/terraincognita07/bloomly/internal/app"
	"github.com/terraincognita07/bloomly/internal/config"
	"github.com/terraincognita07/bloomly/internal/models"
	"github.com/terraincognita07/bloomly/internal/services"
)

var ErrPredictionFailed = errors.New("prediction failed")

type predictOptions struct {
	Dates        string
	Symptoms     string
	Mood         string
	CycleLength  int
	PeriodLength int
	Email        string
	Language     string
	JSON         bool
}

func parsePredictFlags(fs *flag.FlagSet, args []string, defaultLanguage string) (predictOptions, error) {
	options := predictOptions{}
	fs.StringVar(&options.Dates, "dates", "", "period start dates separated by commas")
	fs.StringVar(&options.Symptoms, "symptoms", "", "symptoms separated by commas, or None")
	fs.StringVar(&options.Mood, "mood", "", "current mood (defaults to the configured mood)")
	fs.IntVar(&options.CycleLength, "cycle-length", 0, "average cycle length in days")
	fs.IntVar(&options.PeriodLength, "period-length", 0, "typical period length in days")
	fs.StringVar(&options.Email, "email", "", "sign in with this email instead of a guest identity")
	fs.StringVar(&options.Language, "lang", defaultLanguage, "language for text output")
	fs.BoolVar(&options.JSON, "json", false, "print results as JSON")
	if err := fs.Parse(args); err != nil {
		return predictOptions{}, err
	}
	if strings.TrimSpace(options.Dates) == "" {
		return predictOptions{}, errors.New("-dates is required")
	}
	return options, nil
}

type intakeResult struct {
	State   models.WizardState   `json:"state"`
	Report  services.CycleReport `json:"report"`
	Results services.Results     `json:"results"`
}

// RunPredictCommand drives one wizard session from flags. A prediction
// failure is printed like any result and then returned as ErrPredictionFailed.
func RunPredictCommand(cfg config.Config, args []string, stdout io.Writer) error {
	options, err := parsePredictFlags(flag.NewFlagSet("predict", flag.ContinueOnError), args, cfg.DefaultLanguage)
	if err != nil {
		return err
	}

	runtime, err := app.Open(cfg)
	if err != nil {
		return err
	}
	defer runtime.Close()

	language := runtime.I18n.NormalizeLanguage(options.Language)
	outcome, err := runIntake(context.Background(), runtime.Wizard, options)
	if err != nil {
		var validation *services.ValidationFailure
		if errors.As(err, &validation) {
			return fmt.Errorf("%s: %w", runtime.I18n.Translate(language, services.MessageKey(err)), err)
		}
		return err
	}

	if options.JSON {
		encoder := json.NewEncoder(stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(outcome); err != nil {
			return err
		}
	} else if err := writeResultsText(stdout, runtime.I18n, language, outcome); err != nil {
		return err
	}

	if outcome.Results.Failure != nil {
		return fmt.Errorf("%w: %s", ErrPredictionFailed, outcome.Results.Failure.Detail)
	}
	return nil
}

func runIntake(ctx context.Context, wizard *services.WizardController, options predictOptions) (intakeResult, error) {
	state, err := wizard.Continue(wizard.NewState())
	if err != nil {
		return intakeResult{}, err
	}

	login := services.LoginInput{Provider: models.ProviderGoogle}
	if strings.TrimSpace(options.Email) != "" {
		login = services.LoginInput{Provider: models.ProviderEmail, Email: options.Email}
	}
	if state, err = wizard.Login(state, login); err != nil {
		return intakeResult{}, err
	}

	state, report, err := wizard.SubmitCycle(state, services.CycleInput{
		Text:                options.Dates,
		AverageCycleLength:  options.CycleLength,
		TypicalPeriodLength: options.PeriodLength,
	})
	if err != nil {
		return intakeResult{Report: report}, err
	}

	state, results, err := wizard.Submit(ctx, state, services.SymptomMoodInput{
		SymptomsText: options.Symptoms,
		Mood:         options.Mood,
	})
	if err != nil {
		return intakeResult{Report: report}, err
	}
	return intakeResult{State: state, Report: report, Results: results}, nil
}

func writeResultsText(out io.Writer, translator services.Translator, language string, outcome intakeResult) error {
	lines := make([]string, 0, 8)
	if len(outcome.Report.Rejected) > 0 {
		lines = append(lines, translator.Translatef(language, "cli.skipped", strings.Join(outcome.Report.Rejected, ", ")))
	}
	features := outcome.Results.Features
	lines = append(lines, translator.Translatef(language, "cli.features", features.PreviousCycleLength, features.PMSIndicator))
	lines = append(lines, services.ResultSummary(translator, language, outcome.Results)...)
	if failure := outcome.Results.Failure; failure != nil && failure.Detail != "" {
		lines = append(lines, "  "+failure.Detail)
	}

	if len(outcome.Results.Recommendations) > 0 {
		lines = append(lines, "", translator.Translate(language, "results.recommendations"))
		for _, entry := range outcome.Results.Recommendations {
			lines = append(lines, "  - "+entry.Display())
		}
	}

	_, err := fmt.Fprintln(out, strings.Join(lines, "\n"))
	return err
}
