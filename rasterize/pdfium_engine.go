package rasterize

import (
	"fmt"
	"image"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/klippa-app/go-pdfium"
	"github.com/klippa-app/go-pdfium/requests"
	"github.com/klippa-app/go-pdfium/webassembly"
)

// PDFiumEngine renders pages using go-pdfium with WebAssembly (pure Go,
// no CGo). The pool and instance are initialized once and reused for
// every call until Close, so the library is never rebound per render.
type PDFiumEngine struct {
	pool     pdfium.Pool
	instance pdfium.Pdfium
}

// NewPDFiumEngine initializes the PDFium WebAssembly runtime and claims a
// single worker instance from it.
func NewPDFiumEngine() (*PDFiumEngine, error) {
	// Single-threaded usage, one worker is enough
	pool, err := webassembly.Init(webassembly.Config{
		MinIdle:  1,
		MaxIdle:  1,
		MaxTotal: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: initializing PDFium WebAssembly: %w", ErrBinding, err)
	}

	instance, err := pool.GetInstance(time.Second * 30)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: acquiring PDFium instance: %w", ErrBinding, err)
	}

	return &PDFiumEngine{
		pool:     pool,
		instance: instance,
	}, nil
}

// PageCount returns the number of pages in the document
func (e *PDFiumEngine) PageCount(document []byte) (int, error) {
	doc, err := e.instance.OpenDocument(&requests.OpenDocument{
		File: &document,
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	defer e.instance.FPDF_CloseDocument(&requests.FPDF_CloseDocument{
		Document: doc.Document,
	})

	pageCountResp, err := e.instance.FPDF_GetPageCount(&requests.FPDF_GetPageCount{
		Document: doc.Document,
	})
	if err != nil {
		return 0, fmt.Errorf("%w: counting pages: %w", ErrLoad, err)
	}

	return pageCountResp.PageCount, nil
}

// RenderPage renders a single page to an RGBA image
func (e *PDFiumEngine) RenderPage(document []byte, pageIndex int, opts RenderOptions) (image.Image, error) {
	doc, err := e.instance.OpenDocument(&requests.OpenDocument{
		File: &document,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	defer e.instance.FPDF_CloseDocument(&requests.FPDF_CloseDocument{
		Document: doc.Document,
	})

	page := requests.Page{
		ByIndex: &requests.PageByIndex{
			Document: doc.Document,
			Index:    pageIndex,
		},
	}

	if opts.DPI > 0 {
		pageRender, err := e.instance.RenderPageInDPI(&requests.RenderPageInDPI{
			DPI:  int(opts.DPI),
			Page: page,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: page %d: %w", ErrRender, pageIndex, err)
		}
		img := pageRender.Result.Image
		pageRender.Cleanup()
		return img, nil
	}

	// Width and height act as a bounding box, aspect ratio is kept
	pageRender, err := e.instance.RenderPageInPixels(&requests.RenderPageInPixels{
		Width:  opts.TargetWidth,
		Height: opts.MaxHeight,
		Page:   page,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: page %d: %w", ErrRender, pageIndex, err)
	}
	img := pageRender.Result.Image
	pageRender.Cleanup()
	return img, nil
}

// Close releases the PDFium instance and shuts down the pool
func (e *PDFiumEngine) Close() error {
	var result *multierror.Error
	if e.instance != nil {
		if err := e.instance.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("closing PDFium instance: %w", err))
		}
		e.instance = nil
	}
	if e.pool != nil {
		if err := e.pool.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("closing PDFium pool: %w", err))
		}
		e.pool = nil
	}
	return result.ErrorOrNil()
}
