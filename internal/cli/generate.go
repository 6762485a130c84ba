package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vitalvas/routekit/internal/config"
	"github.com/vitalvas/routekit/openapi"
)

func newGenerateCommand(opts *options) *cobra.Command {
	var validate bool

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the OpenAPI document from route files",
		Long: `Generate loads every route file, merges them in file order and writes
the OpenAPI document.

Example:
  routekit generate                          # openapi.yaml from routes/**/*.yaml
  routekit generate -r 'api/*.yaml' -o -     # print to stdout
  routekit generate --openapi 3.0.3 -o api.json --validate`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			return opts.generate(cmd, cfg, validate)
		},
	}

	cmd.Flags().BoolVar(&validate, "validate", false, "validate the document before writing it")

	return cmd
}

// generate builds and writes the document once.
func (o *options) generate(cmd *cobra.Command, cfg *config.Config, validate bool) error {
	_, doc, err := o.build(cfg)
	if err != nil {
		return err
	}

	if validate {
		if err := o.validate(cmd, doc); err != nil {
			return err
		}
	}

	format := cfg.OutputFormat()
	if cfg.Output == "-" {
		return openapi.Encode(cmd.OutOrStdout(), doc, format)
	}
	if err := openapi.WriteFile(doc, cfg.Output, format); err != nil {
		return err
	}

	o.printInfo(cmd, "Wrote %s (%d paths, OpenAPI %s)", cfg.Output, len(doc.Paths), doc.OpenAPI)
	return nil
}

var errInvalidDocument = errors.New("generated document is invalid")

// validate prints document issues to stderr.
func (o *options) validate(cmd *cobra.Command, doc *openapi.Document) error {
	report, err := openapi.Validate(cmd.Context(), doc)
	if err != nil {
		return err
	}
	if report.Valid {
		return nil
	}
	for _, issue := range report.Issues {
		fmt.Fprintln(cmd.ErrOrStderr(), "  "+issue.String())
	}
	return fmt.Errorf("%w: %d issues", errInvalidDocument, len(report.Issues))
}
