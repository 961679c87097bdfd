package rasterize

import (
	"image"
)

// RenderOptions control how a page is turned into pixels. When DPI is
// positive the page is rendered at that resolution; otherwise it is
// rendered to fit within TargetWidth x MaxHeight while keeping the page
// aspect ratio.
type RenderOptions struct {
	TargetWidth int
	MaxHeight   int
	DPI         float64
}

// Engine defines the interface to a PDF rendering backend
type Engine interface {
	// PageCount returns the number of pages in the document
	PageCount(document []byte) (int, error)

	// RenderPage renders the page at the given 0-based index to an image
	RenderPage(document []byte, pageIndex int, opts RenderOptions) (image.Image, error)

	// Close cleans up any resources used by the engine
	Close() error
}

// NewEngine creates a new PDFium-based render engine (pure Go, no CGo)
func NewEngine() (Engine, error) {
	return NewPDFiumEngine()
}
