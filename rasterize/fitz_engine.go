package rasterize

import (
	"fmt"
	"image"
	"math"

	"github.com/gen2brain/go-fitz"
)

// FitzEngine renders pages using go-fitz (requires CGo and MuPDF). It is
// an alternative to the default PDFium engine for hosts where the
// WebAssembly runtime is unwanted.
type FitzEngine struct {
}

// NewFitzEngine creates a new Fitz-based render engine
func NewFitzEngine() (*FitzEngine, error) {
	return &FitzEngine{}, nil
}

// PageCount returns the number of pages in the document
func (e *FitzEngine) PageCount(document []byte) (int, error) {
	doc, err := fitz.NewFromMemory(document)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	defer doc.Close()

	return doc.NumPage(), nil
}

// RenderPage renders a single page to an RGBA image. MuPDF has no pixel
// bounding box render call, so the box is translated into a DPI from the
// page's 72 DPI bounds.
func (e *FitzEngine) RenderPage(document []byte, pageIndex int, opts RenderOptions) (image.Image, error) {
	doc, err := fitz.NewFromMemory(document)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	defer doc.Close()

	dpi := opts.DPI
	if dpi <= 0 {
		bound, err := doc.Bound(pageIndex)
		if err != nil {
			return nil, fmt.Errorf("%w: page %d bounds: %w", ErrRender, pageIndex, err)
		}
		if bound.Dx() <= 0 || bound.Dy() <= 0 {
			return nil, fmt.Errorf("%w: page %d has empty bounds", ErrRender, pageIndex)
		}
		sx := float64(opts.TargetWidth) / float64(bound.Dx())
		sy := float64(opts.MaxHeight) / float64(bound.Dy())
		dpi = 72 * math.Min(sx, sy)
	}

	img, err := doc.ImageDPI(pageIndex, dpi)
	if err != nil {
		return nil, fmt.Errorf("%w: page %d: %w", ErrRender, pageIndex, err)
	}

	return img, nil
}

// Close cleans up resources (no-op, documents are closed per render)
func (e *FitzEngine) Close() error {
	return nil
}
