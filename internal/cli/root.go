// Package cli implements the routekit command-line interface.
package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/vitalvas/routekit/internal/config"
	"github.com/vitalvas/routekit/internal/routefile"
	"github.com/vitalvas/routekit/openapi"
	"github.com/vitalvas/routekit/router"
)

// options holds the global flags shared by every command.
type options struct {
	configFile string
	output     string
	format     string
	version    string
	routes     []string
	verbose    bool
	quiet      bool

	logger *slog.Logger
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	opts := &options{logger: slog.New(slog.DiscardHandler)}

	cmd := &cobra.Command{
		Use:   "routekit",
		Short: "Declarative routes and OpenAPI documents",
		Long: `routekit loads declarative route files and turns them into OpenAPI
documents, route listings and a validating mock server.

Example:
  routekit generate -o openapi.yaml     # Write the OpenAPI document
  routekit routes                       # List collected routes
  routekit match GET /users/42          # Resolve a request against the routes
  routekit check                        # Check routes and the generated document
  routekit watch                        # Regenerate on route file changes
  routekit serve --addr :8080           # Serve routes with docs at /docs`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			opts.logger = newLogger(cmd.ErrOrStderr(), opts.verbose, opts.quiet)
		},
	}

	cmd.Version = VersionString()
	cmd.SetVersionTemplate("{{.Version}}\n")

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.configFile, "config", "c", "", "config file (default: routekit.yaml)")
	flags.StringVarP(&opts.output, "output", "o", "", `output file, "-" for stdout (default: openapi.yaml)`)
	flags.StringVarP(&opts.format, "format", "f", "", "output format: yaml, json (default: from output extension)")
	flags.StringVar(&opts.version, "openapi", "", "OpenAPI version: 3.1.0, 3.0.3")
	flags.StringSliceVarP(&opts.routes, "routes", "r", nil, "route file patterns (default: routes/**/*.yaml)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")
	flags.BoolVarP(&opts.quiet, "quiet", "q", false, "suppress non-error output")

	cmd.AddCommand(
		newGenerateCommand(opts),
		newRoutesCommand(opts),
		newMatchCommand(opts),
		newCheckCommand(opts),
		newWatchCommand(opts),
		newServeCommand(opts),
		newVersionCommand(),
	)

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCommand().Execute()
}

func newLogger(w io.Writer, verbose, quiet bool) *slog.Logger {
	level := slog.LevelInfo
	switch {
	case quiet:
		level = slog.LevelWarn
	case verbose:
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// loadConfig reads the config file and applies flag overrides.
func (o *options) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.configFile)
	if err != nil {
		return nil, err
	}

	if o.output != "" {
		cfg.Output = o.output
	}
	if o.format != "" {
		cfg.Format = o.format
	}
	if o.version != "" {
		cfg.OpenAPI.Version = o.version
	}
	if len(o.routes) > 0 {
		cfg.Routes = o.routes
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (o *options) loadRoutes(cfg *config.Config) (*router.Definition, error) {
	return routefile.Load(cfg.Routes, routefile.WithLogger(o.logger))
}

// build loads the routes and generates the document.
func (o *options) build(cfg *config.Config) (*router.Definition, *openapi.Document, error) {
	def, err := o.loadRoutes(cfg)
	if err != nil {
		return nil, nil, err
	}
	doc := openapi.FromConfig(cfg.DocumentConfig()).WithLogger(o.logger).Build(def)
	return def, doc, nil
}

func (o *options) printInfo(cmd *cobra.Command, format string, args ...any) {
	if !o.quiet {
		fmt.Fprintf(cmd.OutOrStdout(), format+"\n", args...)
	}
}
