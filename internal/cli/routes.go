package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/vitalvas/routekit/mux"
	"github.com/vitalvas/routekit/openapi"
	"github.com/vitalvas/routekit/pathpattern"
	"github.com/vitalvas/routekit/router"
)

type routeInfo struct {
	Key         string   `json:"key"`
	Method      string   `json:"method"`
	Path        string   `json:"path"`
	OperationID string   `json:"operationId"`
	Tags        []string `json:"tags,omitempty"`
}

func collectRoutes(src router.Source) []routeInfo {
	collected := router.Collect(src)
	out := make([]routeInfo, 0, len(collected))
	for _, c := range collected {
		opID := c.Route.Docs().OperationID
		if opID == "" {
			opID = openapi.OperationID(c.Key)
		}
		out = append(out, routeInfo{
			Key:         c.Key,
			Method:      string(c.Route.Method()),
			Path:        c.Route.Path(),
			OperationID: opID,
			Tags:        c.Route.Tags(),
		})
	}
	return out
}

func newRoutesCommand(opts *options) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "List collected routes in declaration order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			def, err := opts.loadRoutes(cfg)
			if err != nil {
				return err
			}

			routes := collectRoutes(def)
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(routes)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "KEY\tMETHOD\tPATH\tOPERATION\tTAGS")
			for _, r := range routes {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
					r.Key, r.Method, pathpattern.ToOpenAPIPath(r.Path), r.OperationID, strings.Join(r.Tags, ","))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print routes as JSON")

	return cmd
}

func newMatchCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "match METHOD PATH",
		Short: "Resolve a request against the routes",
		Long: `Match finds the first route, in declaration order, whose method and
path template match the request and prints its key and path parameters.

Example:
  routekit match GET /users/42`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			def, err := opts.loadRoutes(cfg)
			if err != nil {
				return err
			}

			table := mux.NewTable(def)
			method, path := strings.ToUpper(args[0]), args[1]

			match, status := table.Lookup(method, path)
			switch status {
			case mux.NotFound:
				return fmt.Errorf("no route matches %s", path)
			case mux.MethodNotAllowed:
				return fmt.Errorf("%s not allowed for %s, allowed: %s",
					method, path, strings.Join(table.Allowed(path), ", "))
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s\t%s %s\n", match.Key, match.Route.Method(), match.Route.Path())
			for _, name := range pathpattern.ParamNames(match.Route.Path()) {
				fmt.Fprintf(out, "  %s=%s\n", name, match.Params[name])
			}
			return nil
		},
	}
}
