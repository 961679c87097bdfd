// Package pagesnap renders single PDF pages to PNG images and shrinks
// encoded images to fit under a byte-size limit.
//
// The two halves are independent: rasterize turns document bytes plus a
// page index into a PNG, compact takes any PNG and a byte budget. This
// package ties them together for the common render-then-fit case.
package pagesnap

import (
	"github.com/pagesnap/pagesnap/compact"
	"github.com/pagesnap/pagesnap/rasterize"
)

// RasterizePageToLimit renders the page at pageIndex and, if the encoded
// result exceeds maxBytes, downscales it until it fits or the resize
// floor is reached. The floor case returns the closest result without an
// error; see compact.Compact.
func RasterizePageToLimit(r *rasterize.Rasterizer, document []byte, pageIndex int, maxBytes int, opts compact.Options) ([]byte, error) {
	encoded, err := r.RasterizePage(document, pageIndex)
	if err != nil {
		return nil, err
	}
	return compact.Compact(encoded, maxBytes, opts)
}
