package cli

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"
	"github.com/vitalvas/routekit/pathpattern"
	"github.com/vitalvas/routekit/route"
	"github.com/vitalvas/routekit/router"
)

var errCheckFailed = errors.New("check failed")

// checkRoutes runs route.Check on every collected route and reports
// routes that resolve to the same method and OpenAPI path.
func checkRoutes(src router.Source) error {
	var merr *multierror.Error
	seen := make(map[string]string)

	for _, c := range router.Collect(src) {
		if err := route.Check(c.Route); err != nil {
			merr = multierror.Append(merr, fmt.Errorf("%s: %w", c.Key, err))
		}

		id := string(c.Route.Method()) + " " + pathpattern.ToOpenAPIPath(c.Route.Path())
		if prev, ok := seen[id]; ok {
			merr = multierror.Append(merr, fmt.Errorf("%s: %s is already declared by %s", c.Key, id, prev))
			continue
		}
		seen[id] = c.Key
	}

	return merr.ErrorOrNil()
}

func newCheckCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check routes and the generated document",
		Long: `Check reports route declarations that are inconsistent (params schema
properties missing from the path template and the reverse, invalid status
keys, duplicate method and path pairs) and validates the generated
OpenAPI document.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			def, doc, err := opts.build(cfg)
			if err != nil {
				return err
			}

			failed := false
			if err := checkRoutes(def); err != nil {
				failed = true
				fmt.Fprintln(cmd.ErrOrStderr(), err)
			}
			if err := opts.validate(cmd, doc); err != nil {
				if !errors.Is(err, errInvalidDocument) {
					return err
				}
				failed = true
				fmt.Fprintln(cmd.ErrOrStderr(), err)
			}
			if failed {
				return errCheckFailed
			}

			opts.printInfo(cmd, "OK: %d routes, %d paths", len(router.Collect(def)), len(doc.Paths))
			return nil
		},
	}
}
