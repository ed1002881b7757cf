// Package cli implements the bloomly subcommands other than serve.
package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/terraincognita07/bloomly/internal/config"
)

var ErrUnknownCommand = errors.New("unknown command")

const Usage = `usage: bloomly [command] [flags]

commands:
  serve                    run the HTTP server and, with TELEGRAM_BOT_TOKEN, the bot (default)
  predict                  run one intake from flags and print the results
  import-recommendations   load a recommendation CSV into the database
  artifact-schema          print the JSON schema for classifier artifacts`

// IsCommand reports whether name is handled by Run.
func IsCommand(name string) bool {
	switch strings.TrimSpace(name) {
	case "predict", "import-recommendations", "artifact-schema", "help", "-h", "--help":
		return true
	default:
		return false
	}
}

func Run(cfg config.Config, args []string, stdout io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: none given\n%s", ErrUnknownCommand, Usage)
	}

	switch args[0] {
	case "predict":
		return RunPredictCommand(cfg, args[1:], stdout)
	case "import-recommendations":
		return RunImportRecommendationsCommand(cfg, args[1:], stdout)
	case "artifact-schema":
		return RunArtifactSchemaCommand(stdout)
	case "help", "-h", "--help":
		_, err := fmt.Fprintln(stdout, Usage)
		return err
	default:
		return fmt.Errorf("%w %q\n%s", ErrUnknownCommand, args[0], Usage)
	}
}
