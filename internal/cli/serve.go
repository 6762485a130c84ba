package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/vitalvas/routekit/internal/config"
	"github.com/vitalvas/routekit/mux"
	"github.com/vitalvas/routekit/muxhandlers"
	"github.com/vitalvas/routekit/openapi"
	"github.com/vitalvas/routekit/router"
)

const shutdownTimeout = 5 * time.Second

func newServeCommand(opts *options) *cobra.Command {
	var (
		addr     string
		docsPath string
		docsUI   string
		noCheck  bool
		origins  []string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the routes as a validating mock API with docs",
		Long: `Serve answers every declared route. Requests are validated against the
route schemas; valid requests get 200 with the decoded input echoed back,
invalid ones get 400 with the validation issues. The OpenAPI document and
an interactive docs page are served under the docs path.

Example:
  routekit serve --addr :8080 --docs-path /docs --docs-ui redoc`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("addr") {
				cfg.Serve.Addr = addr
			}
			if flags.Changed("docs-path") {
				cfg.Serve.DocsPath = docsPath
			}
			if flags.Changed("docs-ui") {
				cfg.Serve.DocsUI = docsUI
			}
			if len(origins) > 0 {
				cfg.Serve.CORSOrigins = origins
			}
			if noCheck {
				cfg.Serve.Validate = false
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			handler, err := opts.serveHandler(cfg)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return opts.listen(ctx, cmd, cfg.Serve.Addr, handler)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&addr, "addr", "", "listen address (default: :8080)")
	flags.StringVar(&docsPath, "docs-path", "", "docs base path (default: /docs)")
	flags.StringVar(&docsUI, "docs-ui", "", "docs page: swagger, rapidoc, redoc")
	flags.BoolVar(&noCheck, "no-validate", false, "do not validate requests")
	flags.StringSliceVar(&origins, "cors-origin", nil, `allowed CORS origins, "*" for any`)

	return cmd
}

// serveHandler builds the mock router with docs endpoints.
func (o *options) serveHandler(cfg *config.Config) (*mux.Router, error) {
	def, doc, err := o.build(cfg)
	if err != nil {
		return nil, err
	}

	muxOpts := []mux.Option{mux.WithLogger(o.logger)}
	if !cfg.Serve.Validate {
		muxOpts = append(muxOpts, mux.WithoutValidation())
	}
	r := mux.New(def, muxOpts...)
	r.Use(mux.RequestIDMiddleware(), mux.RecoveryMiddleware(o.logger))

	if len(cfg.Serve.CORSOrigins) > 0 {
		corsMW, err := muxhandlers.CORSMiddleware(r, muxhandlers.CORSConfig{
			AllowedOrigins: cfg.Serve.CORSOrigins,
			ExposeHeaders:  []string{mux.RequestIDHeader},
		})
		if err != nil {
			return nil, err
		}
		r.Use(corsMW)
	}

	for _, c := range router.Collect(def) {
		if err := r.BindFunc(c.Key, echoHandler); err != nil {
			return nil, err
		}
	}

	ui, err := openapi.ParseDocsUI(cfg.Serve.DocsUI)
	if err != nil {
		return nil, err
	}
	openapi.Handle(r, cfg.Serve.DocsPath, doc, &openapi.HandleConfig{UI: ui})

	return r, nil
}

type echoResponse struct {
	Route     string            `json:"route"`
	RequestID string            `json:"requestId,omitempty"`
	Params    map[string]string `json:"params,omitempty"`
	Input     *mux.Input        `json:"input,omitempty"`
}

func echoHandler(w http.ResponseWriter, r *http.Request) {
	resp := echoResponse{
		RequestID: mux.RequestIDFromContext(r.Context()),
		Params:    mux.Params(r),
	}
	if m := mux.CurrentRoute(r); m != nil {
		resp.Route = m.Key
	}
	if in, ok := mux.Validated(r); ok {
		resp.Input = &in
	}
	mux.ResponseJSON(w, http.StatusOK, resp)
}

func (o *options) listen(ctx context.Context, cmd *cobra.Command, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	o.printInfo(cmd, "Listening on %s", addr)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	o.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
