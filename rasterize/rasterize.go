// Package rasterize renders single PDF pages to PNG-encoded images.
//
// All rendering work is delegated to an Engine; this package adds the
// fixed output policy on top: a 2000x2000 pixel bounding box, automatic
// rotation of landscape pages to portrait and PNG encoding. The engine
// handle is created once and passed explicitly, never rebound per call.
package rasterize

import (
	"bytes"
	"errors"
	"fmt"
	"image/png"
	"log/slog"

	"github.com/disintegration/imaging"
)

const (
	// DefaultTargetWidth is the render bounding box width in pixels.
	DefaultTargetWidth = 2000
	// DefaultMaxHeight is the render bounding box height in pixels.
	DefaultMaxHeight = 2000
)

var (
	ErrBinding      = errors.New("unable to bind render engine")
	ErrLoad         = errors.New("unable to load PDF document")
	ErrPageNotFound = errors.New("page not found")
	ErrRender       = errors.New("unable to render page")
	ErrEncode       = errors.New("unable to encode page image")
)

// Options control the fixed output policy applied on top of the engine.
type Options struct {
	RenderOptions

	// AutoRotate rotates landscape renders 90 degrees clockwise so the
	// output is always portrait-or-square.
	AutoRotate bool

	// Grayscale converts the rendered page to grayscale before encoding.
	Grayscale bool
}

// DefaultOptions returns the standard rasterization settings: a 2000x2000
// bounding box with landscape auto-rotation.
func DefaultOptions() Options {
	return Options{
		RenderOptions: RenderOptions{
			TargetWidth: DefaultTargetWidth,
			MaxHeight:   DefaultMaxHeight,
		},
		AutoRotate: true,
	}
}

// Rasterizer turns single pages of a PDF document into PNG bytes
type Rasterizer struct {
	engine Engine
	opts   Options
	logger *slog.Logger
}

// New creates a Rasterizer backed by the default PDFium engine. The
// returned Rasterizer owns the engine; release it with Close.
func New(logger *slog.Logger) (*Rasterizer, error) {
	engine, err := NewEngine()
	if err != nil {
		return nil, err
	}
	return NewWithEngine(engine, DefaultOptions(), logger), nil
}

// NewWithEngine creates a Rasterizer on top of an existing engine.
// Zero-valued box dimensions fall back to the defaults.
func NewWithEngine(engine Engine, opts Options, logger *slog.Logger) *Rasterizer {
	if opts.TargetWidth <= 0 {
		opts.TargetWidth = DefaultTargetWidth
	}
	if opts.MaxHeight <= 0 {
		opts.MaxHeight = DefaultMaxHeight
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Rasterizer{
		engine: engine,
		opts:   opts,
		logger: logger,
	}
}

// PageCount returns the number of pages in the document
func (r *Rasterizer) PageCount(document []byte) (int, error) {
	return r.engine.PageCount(document)
}

// RasterizePage renders the page at the given 0-based index and returns it
// as PNG bytes. An index outside the document's page range returns
// ErrPageNotFound.
func (r *Rasterizer) RasterizePage(document []byte, pageIndex int) ([]byte, error) {
	count, err := r.engine.PageCount(document)
	if err != nil {
		return nil, err
	}
	if pageIndex < 0 || pageIndex >= count {
		return nil, fmt.Errorf("%w: page index %d, document has %d pages", ErrPageNotFound, pageIndex, count)
	}

	img, err := r.engine.RenderPage(document, pageIndex, r.opts.RenderOptions)
	if err != nil {
		return nil, err
	}

	if r.opts.AutoRotate {
		bounds := img.Bounds()
		if bounds.Dx() > bounds.Dy() {
			// Rotate270 is 90 degrees clockwise
			img = imaging.Rotate270(img)
		}
	}

	if r.opts.Grayscale {
		img = imaging.Grayscale(img)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("%w: page %d: %w", ErrEncode, pageIndex, err)
	}

	bounds := img.Bounds()
	r.logger.Debug("Rasterized page",
		"page", pageIndex,
		"width", bounds.Dx(),
		"height", bounds.Dy(),
		"bytes", buf.Len())

	return buf.Bytes(), nil
}

// Close releases the underlying engine
func (r *Rasterizer) Close() error {
	return r.engine.Close()
}
