package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tracewire/tracewire/pkg/bom"
	"github.com/tracewire/tracewire/pkg/cache"
	"github.com/tracewire/tracewire/pkg/diagram"
	"github.com/tracewire/tracewire/pkg/loader"
	"github.com/tracewire/tracewire/pkg/render"
)

const defaultPNGScale = 2.0 // 2x resolution for high-DPI displays

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output    string   // output base path; derived from input when empty
	formats   []string // output formats: "svg", "png", "pdf"
	cacheSpec string   // cache backend: directory, redis:// URL, or "off"
	pngScale  float64  // raster scale factor for PNG output
}

// newRenderCmd creates the render command. It compiles a harness description
// into a diagram and writes the requested formats, always alongside the DOT
// text (.gv) and the bill of materials (.bom.tsv).
func newRenderCmd() *cobra.Command {
	var formatsStr string
	opts := renderOpts{pngScale: defaultPNGScale}

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render a harness description to diagram and BOM files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := validateFormats(opts.formats); err != nil {
				return err
			}
			return runRender(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output base path (default: input path without extension)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, pdf (comma-separated)")
	cmd.Flags().StringVar(&opts.cacheSpec, "cache", "", `artifact cache: directory, redis:// URL, or "off" (default ~/.cache/tracewire)`)
	cmd.Flags().Float64Var(&opts.pngScale, "png-scale", opts.pngScale, "raster scale factor for PNG output")

	return cmd
}

// parseFormats parses the --format flag, defaulting to ["svg"].
func parseFormats(s string) []string {
	if s == "" {
		return []string{"svg"}
	}
	return strings.Split(s, ",")
}

// validFormats is the set of supported diagram output formats. The DOT text
// and the BOM are written unconditionally and are not listed here.
var validFormats = map[string]bool{"svg": true, "png": true, "pdf": true}

// validateFormats checks that all requested formats are valid.
func validateFormats(formats []string) error {
	for _, f := range formats {
		if !validFormats[f] {
			return fmt.Errorf("invalid format: %s (must be 'svg', 'png', or 'pdf')", f)
		}
	}
	return nil
}

// basePath derives the output base path: the explicit output with any known
// format extension stripped, or the input path without its extension.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if validFormats[strings.TrimPrefix(ext, ".")] || ext == ".gv" {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// openCache selects the artifact cache backend from the --cache flag,
// defaulting to the file cache in the XDG cache directory. Backend failures
// disable caching instead of failing the render.
func openCache(ctx context.Context, spec string) cache.Cache {
	logger := loggerFromContext(ctx)
	if spec == "" {
		dir, err := cacheDir()
		if err != nil {
			return cache.NewNullCache()
		}
		spec = dir
	}
	c, err := cache.Open(ctx, spec)
	if err != nil {
		logger.Warnf("Cache disabled: %v", err)
		return cache.NewNullCache()
	}
	return c
}

// runRender loads the description, compiles the diagram, and writes the DOT
// text, the BOM, and every requested diagram format.
func runRender(ctx context.Context, input string, opts *renderOpts) error {
	logger := loggerFromContext(ctx)
	logger.Infof("Rendering %s", input)

	source, err := os.ReadFile(input)
	if err != nil {
		return err
	}
	h, err := loader.LoadBytes(source)
	if err != nil {
		return err
	}
	logger.Infof("Loaded harness: %d connectors, %d cables", len(h.Connectors()), len(h.Cables()))

	g, err := diagram.Compile(h)
	if err != nil {
		return err
	}
	dot := g.DOT()
	logger.Debugf("Compiled graph: %d nodes, %d edges", len(g.Nodes), len(g.Edges))

	base := basePath(opts.output, input)
	if err := writeOutput(ctx, base+".gv", []byte(dot)); err != nil {
		return err
	}
	if err := writeOutput(ctx, base+".bom.tsv", bom.TSV(bom.Build(h))); err != nil {
		return err
	}

	artifacts := openCache(ctx, opts.cacheSpec)
	defer artifacts.Close()

	// The SVG is the base artifact for the raster and PDF conversions; lay
	// out at most once per run.
	var svg []byte
	renderSVG := func() ([]byte, error) {
		if svg != nil {
			return svg, nil
		}
		s := newSpinnerWithContext(ctx, "Laying out diagram...")
		s.Start()
		defer s.Stop()
		svg, err = render.SVG(ctx, dot)
		return svg, err
	}

	for _, format := range opts.formats {
		data, err := renderArtifact(ctx, artifacts, source, format, renderSVG, opts.pngScale)
		if err != nil {
			return fmt.Errorf("%s: %w", format, err)
		}
		if err := writeOutput(ctx, base+"."+format, data); err != nil {
			return err
		}
	}
	return nil
}

// renderArtifact returns the rendered artifact for one format, consulting the
// cache keyed by the description source before invoking the renderer.
func renderArtifact(ctx context.Context, artifacts cache.Cache, source []byte,
	format string, renderSVG func() ([]byte, error), pngScale float64) ([]byte, error) {

	logger := loggerFromContext(ctx)
	key := cache.ArtifactKey(source, format)
	if data, hit, err := artifacts.Get(ctx, key); err == nil && hit {
		logger.Debugf("Cache hit for %s", format)
		return data, nil
	}

	p := newProgress(logger)
	svg, err := renderSVG()
	if err != nil {
		return nil, err
	}

	var data []byte
	switch format {
	case "svg":
		data = svg
	case "pdf":
		data, err = render.ToPDF(ctx, svg)
	case "png":
		data, err = render.ToPNG(ctx, svg, pngScale)
	default:
		return nil, fmt.Errorf("unknown format: %s", format)
	}
	if err != nil {
		return nil, err
	}
	p.done(fmt.Sprintf("Rendered %s (%d bytes)", format, len(data)))

	if err := artifacts.Set(ctx, key, data, 0); err != nil {
		logger.Debugf("Cache store failed: %v", err)
	}
	return data, nil
}

// writeOutput writes one artifact file and logs it.
func writeOutput(ctx context.Context, path string, data []byte) error {
	if err := os.WriteFile(path, data, 0644); err != nil {
		return err
	}
	loggerFromContext(ctx).Infof("Generated %s", path)
	printFile(path)
	return nil
}
