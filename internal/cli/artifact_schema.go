package cli

import (
	"io"

	"github.com/terraincognita07/bloomly/internal/classifier"
)

func RunArtifactSchemaCommand(stdout io.Writer) error {
	schema, err := classifier.ArtifactSchema()
	if err != nil {
		return err
	}
	if _, err := stdout.Write(schema); err != nil {
		return err
	}
	_, err = io.WriteString(stdout, "\n")
	return err
}
