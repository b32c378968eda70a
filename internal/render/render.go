// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render fills the paper HTML template from a document record and
// converts the result to PDF with weasyprint, either on the host or inside a
// container image.
package render

import (
	"context"
	_ "embed"
	"fmt"
	"html"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/paper-engine/internal/container"
	"github.com/pdiddy/paper-engine/internal/naming"
	"github.com/pdiddy/paper-engine/internal/pipeline"
	"github.com/pdiddy/paper-engine/pkg/types"
)

//go:embed paper.html
var defaultTemplate string

// DefaultTemplate returns the built-in paper template.
func DefaultTemplate() string { return defaultTemplate }

// rawFields are inserted without HTML escaping.
var rawFields = map[string]bool{"body": true}

// Fill replaces each {{key}} placeholder in tmpl with its value, in the
// order given. Values are HTML-escaped except the body, which is already
// markup. Placeholders without a field are left untouched.
func Fill(tmpl string, fields [][2]string) string {
	for _, f := range fields {
		value := f[1]
		if !rawFields[f[0]] {
			value = html.EscapeString(value)
		}
		tmpl = strings.ReplaceAll(tmpl, "{{"+f[0]+"}}", value)
	}
	return tmpl
}

// Converter turns an HTML file into a PDF file.
type Converter interface {
	Convert(ctx context.Context, htmlPath, pdfPath string) error
}

// WeasyPrint runs the weasyprint binary on the host.
type WeasyPrint struct {
	Binary string
	Exec   container.Executor
}

// Convert runs `weasyprint <html> <pdf>`.
func (w *WeasyPrint) Convert(ctx context.Context, htmlPath, pdfPath string) error {
	bin := w.Binary
	if bin == "" {
		bin = "weasyprint"
	}
	if _, err := w.Exec.LookPath(bin); err != nil {
		return fmt.Errorf("%s not found on PATH: %w", bin, err)
	}
	if err := w.Exec.RunPiped(ctx, bin, []string{htmlPath, pdfPath}, nil, io.Discard); err != nil {
		return fmt.Errorf("running %s: %w", bin, err)
	}
	return nil
}

// ContainerConverter pipes HTML through a weasyprint container image that
// reads stdin and writes the PDF to stdout.
type ContainerConverter struct {
	Runtime container.Runtime
	Image   string
}

// Convert streams htmlPath into the container and writes its output to pdfPath.
func (c *ContainerConverter) Convert(ctx context.Context, htmlPath, pdfPath string) error {
	in, err := os.Open(htmlPath)
	if err != nil {
		return fmt.Errorf("opening HTML %s: %w", htmlPath, err)
	}
	defer in.Close()

	out, err := os.Create(pdfPath)
	if err != nil {
		return fmt.Errorf("creating PDF %s: %w", pdfPath, err)
	}
	if err := c.Runtime.Run(ctx, c.Image, []string{"-", "-"}, in, out); err != nil {
		out.Close()
		os.Remove(pdfPath)
		return fmt.Errorf("converting %s in %s: %w", htmlPath, c.Runtime.Name(), err)
	}
	return out.Close()
}

// Renderer implements pipeline.Renderer.
type Renderer struct {
	Template  string
	OutputDir string
	Converter Converter

	// Progress receives one line per rendered file. Nil discards.
	Progress io.Writer
}

var _ pipeline.Renderer = (*Renderer)(nil)

// New builds a renderer from cfg. A configured template path overrides the
// built-in template; the container backend requires a runtime with the
// image present.
func New(ctx context.Context, cfg types.RenderConfig, outputDir string, progress io.Writer) (*Renderer, error) {
	tmpl := defaultTemplate
	if cfg.Template != "" {
		data, err := os.ReadFile(cfg.Template)
		if err != nil {
			return nil, fmt.Errorf("reading template: %w", err)
		}
		tmpl = string(data)
	}

	var conv Converter
	switch cfg.Backend {
	case types.RenderWeasyPrint, "":
		conv = &WeasyPrint{Binary: cfg.Binary, Exec: container.OSExecutor{}}
	case types.RenderContainer:
		rt, err := container.DetectRuntime(ctx)
		if err != nil {
			return nil, err
		}
		if err := rt.ImageExists(ctx, cfg.Image); err != nil {
			return nil, fmt.Errorf("render image not available in %s: %w", rt.Name(), err)
		}
		conv = &ContainerConverter{Runtime: rt, Image: cfg.Image}
	default:
		return nil, fmt.Errorf("unknown render backend %q", cfg.Backend)
	}

	return &Renderer{Template: tmpl, OutputDir: outputDir, Converter: conv, Progress: progress}, nil
}

// MarkupPath returns the HTML path for doc under dir.
func MarkupPath(dir string, doc types.DocumentRecord) string {
	return filepath.Join(dir, fmt.Sprintf("paper_%s_%s.html", doc.Track, doc.DateShort))
}

// Render writes the filled HTML and converts it to a PDF named by
// naming.Filename.
func (r *Renderer) Render(ctx context.Context, doc types.DocumentRecord) (types.Artifact, error) {
	if err := os.MkdirAll(r.OutputDir, 0o755); err != nil {
		return types.Artifact{}, fmt.Errorf("creating output directory: %w", err)
	}

	markup := MarkupPath(r.OutputDir, doc)
	if err := os.WriteFile(markup, []byte(Fill(r.Template, doc.Fields())), 0o644); err != nil {
		return types.Artifact{}, fmt.Errorf("writing HTML: %w", err)
	}
	r.progress("html: %s", markup)

	filename := naming.Filename(doc.Title, doc.DateShort)
	pdf := filepath.Join(r.OutputDir, filename)
	if err := r.Converter.Convert(ctx, markup, pdf); err != nil {
		return types.Artifact{}, err
	}

	info, err := os.Stat(pdf)
	if err != nil {
		return types.Artifact{}, fmt.Errorf("PDF not produced: %w", err)
	}
	if info.Size() == 0 {
		return types.Artifact{}, fmt.Errorf("PDF %s is empty", pdf)
	}
	r.progress("pdf: %s", pdf)

	return types.Artifact{MarkupPath: markup, PDFPath: pdf, Filename: filename}, nil
}

func (r *Renderer) progress(format string, args ...any) {
	if r.Progress == nil {
		return
	}
	fmt.Fprintf(r.Progress, format+"\n", args...)
}
