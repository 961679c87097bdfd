package pagesnap_test

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagesnap/pagesnap"
	"github.com/pagesnap/pagesnap/compact"
	"github.com/pagesnap/pagesnap/rasterize"
)

// noisePage fakes a rendered PDF page with incompressible content
type noisePage struct {
	width, height int
}

func (p *noisePage) PageCount(document []byte) (int, error) {
	return 1, nil
}

func (p *noisePage) RenderPage(document []byte, pageIndex int, opts rasterize.RenderOptions) (image.Image, error) {
	rng := rand.New(rand.NewSource(7))
	img := image.NewNRGBA(image.Rect(0, 0, p.width, p.height))
	for y := 0; y < p.height; y++ {
		for x := 0; x < p.width; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(rng.Intn(256)),
				G: uint8(rng.Intn(256)),
				B: uint8(rng.Intn(256)),
				A: 255,
			})
		}
	}
	return img, nil
}

func (p *noisePage) Close() error {
	return nil
}

func TestRasterizePageToLimitIdentity(t *testing.T) {
	r := rasterize.NewWithEngine(&noisePage{width: 600, height: 800}, rasterize.DefaultOptions(), nil)

	rendered, err := r.RasterizePage([]byte("%PDF-"), 0)
	require.NoError(t, err)

	out, err := pagesnap.RasterizePageToLimit(r, []byte("%PDF-"), 0, len(rendered), compact.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, rendered, out, "a render already under the limit passes through untouched")
}

func TestRasterizePageToLimitShrinks(t *testing.T) {
	r := rasterize.NewWithEngine(&noisePage{width: 600, height: 800}, rasterize.DefaultOptions(), nil)

	rendered, err := r.RasterizePage([]byte("%PDF-"), 0)
	require.NoError(t, err)

	limit := len(rendered) / 2
	out, err := pagesnap.RasterizePageToLimit(r, []byte("%PDF-"), 0, limit, compact.DefaultOptions())
	require.NoError(t, err)
	assert.Less(t, len(out), len(rendered))

	img, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	bounds := img.Bounds()
	assert.Greater(t, bounds.Dx(), compact.DefaultMinDimension)
	assert.Greater(t, bounds.Dy(), compact.DefaultMinDimension)
}

func TestRasterizePageToLimitPageNotFound(t *testing.T) {
	r := rasterize.NewWithEngine(&noisePage{width: 100, height: 100}, rasterize.DefaultOptions(), nil)

	_, err := pagesnap.RasterizePageToLimit(r, []byte("%PDF-"), 5, 1_000_000, compact.DefaultOptions())
	assert.ErrorIs(t, err, rasterize.ErrPageNotFound)
}

func TestRasterizePageToLimitInvalidStep(t *testing.T) {
	r := rasterize.NewWithEngine(&noisePage{width: 100, height: 100}, rasterize.DefaultOptions(), nil)

	opts := compact.DefaultOptions()
	opts.StepSize = 1.5
	_, err := pagesnap.RasterizePageToLimit(r, []byte("%PDF-"), 0, 0, opts)
	assert.ErrorIs(t, err, compact.ErrInvalidStepSize)
}
