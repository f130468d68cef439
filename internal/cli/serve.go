package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/tracewire/tracewire/pkg/bom"
	"github.com/tracewire/tracewire/pkg/cache"
	"github.com/tracewire/tracewire/pkg/diagram"
	"github.com/tracewire/tracewire/pkg/loader"
	"github.com/tracewire/tracewire/pkg/render"
)

const (
	defaultAddr = ":8177"

	// maxBodySize caps uploaded harness descriptions at 1 MiB.
	maxBodySize = 1 << 20

	// serveCacheTTL bounds artifact lifetime in shared cache backends.
	serveCacheTTL = 24 * time.Hour
)

// newServeCmd creates the serve command, exposing the renderer as an HTTP
// service. POST /render accepts a TOML harness description body and responds
// with the rendered artifact in the requested format.
func newServeCmd() *cobra.Command {
	var addr, cacheSpec string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the harness renderer as an HTTP service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), addr, cacheSpec)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", defaultAddr, "listen address")
	cmd.Flags().StringVar(&cacheSpec, "cache", "", `artifact cache: directory, redis:// URL, or "off" (default ~/.cache/tracewire)`)
	return cmd
}

func runServe(ctx context.Context, addr, cacheSpec string) error {
	logger := loggerFromContext(ctx)

	artifacts := openCache(ctx, cacheSpec)
	defer artifacts.Close()

	srv := &http.Server{
		Addr:        addr,
		Handler:     newServeHandler(artifacts, logger),
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("Listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// serveContentTypes maps response formats to their media types.
var serveContentTypes = map[string]string{
	"svg": "image/svg+xml",
	"png": "image/png",
	"pdf": "application/pdf",
	"gv":  "text/vnd.graphviz",
	"bom": "text/tab-separated-values",
}

// newServeHandler builds the HTTP routing tree: POST /render and
// GET /healthz, with request IDs and request logging on every route.
func newServeHandler(artifacts cache.Cache, logger *log.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(requestLogMiddleware(logger))

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		fmt.Fprintln(w, "ok")
	})
	r.Post("/render", func(w http.ResponseWriter, req *http.Request) {
		handleRender(w, req, artifacts)
	})

	return r
}

// requestIDMiddleware tags every request with a UUID, echoed in the
// X-Request-ID response header.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		id := req.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, req)
	})
}

func requestLogMiddleware(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, req)
			logger.Debugf("%s %s (%s) %s", req.Method, req.URL.Path,
				w.Header().Get("X-Request-ID"), time.Since(start).Round(time.Millisecond))
		})
	}
}

// handleRender renders the description in the request body. The format query
// parameter selects the artifact (svg by default); results are cached by the
// hash of the body.
func handleRender(w http.ResponseWriter, req *http.Request, artifacts cache.Cache) {
	format := req.URL.Query().Get("format")
	if format == "" {
		format = "svg"
	}
	contentType, ok := serveContentTypes[format]
	if !ok {
		http.Error(w, fmt.Sprintf("unknown format: %s", format), http.StatusBadRequest)
		return
	}

	source, err := io.ReadAll(http.MaxBytesReader(w, req.Body, maxBodySize))
	if err != nil {
		http.Error(w, "read body: "+err.Error(), http.StatusBadRequest)
		return
	}

	ctx := req.Context()
	key := cache.ArtifactKey(source, format)
	if data, hit, err := artifacts.Get(ctx, key); err == nil && hit {
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("X-Cache", "hit")
		w.Write(data)
		return
	}

	data, err := renderForServe(ctx, source, format)
	if err != nil {
		status := http.StatusUnprocessableEntity
		if errors.Is(err, errRenderFailed) {
			status = http.StatusInternalServerError
		}
		http.Error(w, err.Error(), status)
		return
	}
	_ = artifacts.Set(ctx, key, data, serveCacheTTL)

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("X-Cache", "miss")
	w.Write(data)
}

// errRenderFailed marks failures in the layout and conversion stages, as
// opposed to invalid input.
var errRenderFailed = errors.New("render failed")

func renderForServe(ctx context.Context, source []byte, format string) ([]byte, error) {
	h, err := loader.LoadBytes(source)
	if err != nil {
		return nil, err
	}
	if format == "bom" {
		return bom.TSV(bom.Build(h)), nil
	}

	g, err := diagram.Compile(h)
	if err != nil {
		return nil, err
	}
	dot := g.DOT()
	if format == "gv" {
		return []byte(dot), nil
	}

	svg, err := render.SVG(ctx, dot)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errRenderFailed, err)
	}
	switch format {
	case "svg":
		return svg, nil
	case "pdf":
		data, err := render.ToPDF(ctx, svg)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errRenderFailed, err)
		}
		return data, nil
	case "png":
		data, err := render.ToPNG(ctx, svg, defaultPNGScale)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errRenderFailed, err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("unknown format: %s", format)
}
