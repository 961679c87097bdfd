// Package compact shrinks an encoded PNG image until its byte size fits
// under a caller-supplied limit.
//
// The image is repeatedly decoded, geometrically downscaled and re-encoded.
// The scale factor compounds across iterations while the pixel dimensions
// are re-read from the freshly decoded candidate each pass, so every
// iteration shrinks relative to where the previous one left off. The loop
// stops as soon as the encoded size fits, or when the next step would push
// either dimension at or below the minimum-dimension floor. Hitting the
// floor is not an error: the best result reached so far is returned and a
// warning is logged.
package compact

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"log/slog"

	"github.com/disintegration/imaging"
)

// Mode selects how new dimensions are mapped onto pixels.
type Mode int

const (
	// ModeThumbnail downscales preserving the source aspect ratio, without
	// cropping and without upscaling. Output dimensions may be smaller than
	// the computed bounds.
	ModeThumbnail Mode = iota
	// ModeResize performs a direct bilinear resize to exactly the computed
	// dimensions, which may alter the aspect ratio.
	ModeResize
)

func (m Mode) String() string {
	switch m {
	case ModeThumbnail:
		return "thumbnail"
	case ModeResize:
		return "resize"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode converts a resize mode string into a Mode. Only the literals
// "thumbnail" and "resize" are accepted.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "thumbnail":
		return ModeThumbnail, nil
	case "resize":
		return ModeResize, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
}

const (
	// DefaultStepSize shrinks the scale factor by 10% per iteration.
	DefaultStepSize = 0.1
	// DefaultMinDimension is the per-axis pixel floor below which the image
	// is not degraded any further.
	DefaultMinDimension = 200
)

var (
	ErrInvalidStepSize = errors.New("step size must be strictly between 0 and 1")
	ErrInvalidMode     = errors.New("unrecognized resize mode")
	ErrInvalidLimit    = errors.New("size limit must not be negative")
	ErrDecode          = errors.New("unable to decode image")
	ErrEncode          = errors.New("unable to encode image")
)

// Options control a single Compact call.
type Options struct {
	Mode         Mode
	StepSize     float64
	MinDimension int
	Logger       *slog.Logger
}

// DefaultOptions returns the standard compaction settings: thumbnail mode,
// 10% step, 200 pixel floor.
func DefaultOptions() Options {
	return Options{
		Mode:         ModeThumbnail,
		StepSize:     DefaultStepSize,
		MinDimension: DefaultMinDimension,
	}
}

// shrinkState is the loop's working state. scale compounds across
// iterations and is never reset; output is the last successfully encoded
// candidate, which is what Compact returns if the floor is hit.
type shrinkState struct {
	scale  float64
	output []byte
}

// Compact returns a PNG whose encoded size is at or under maxBytes, when
// that is reachable without shrinking either dimension to the floor or
// below. If the input already fits it is returned unchanged, byte for
// byte. If the floor is reached first, the last candidate is returned
// without error and a warning is logged.
//
// Parameters are validated before any decoding happens; malformed input
// only surfaces as ErrDecode once the loop actually runs.
func Compact(encoded []byte, maxBytes int, opts Options) ([]byte, error) {
	if opts.StepSize <= 0 || opts.StepSize >= 1 {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidStepSize, opts.StepSize)
	}
	if opts.Mode != ModeThumbnail && opts.Mode != ModeResize {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMode, opts.Mode)
	}
	if maxBytes < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, maxBytes)
	}
	if opts.MinDimension <= 0 {
		opts.MinDimension = DefaultMinDimension
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if len(encoded) <= maxBytes {
		return encoded, nil
	}

	state := shrinkState{scale: 1.0, output: encoded}
	for len(state.output) > maxBytes {
		img, err := png.Decode(bytes.NewReader(state.output))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDecode, err)
		}
		bounds := img.Bounds()
		width, height := bounds.Dx(), bounds.Dy()

		state.scale *= 1 - opts.StepSize
		newWidth := int(float64(width) * state.scale)
		newHeight := int(float64(height) * state.scale)

		if newWidth <= opts.MinDimension || newHeight <= opts.MinDimension {
			logger.Warn("Unable to reach size limit before hitting the resize floor",
				"bytes", len(state.output),
				"limit", maxBytes,
				"width", width,
				"height", height)
			return state.output, nil
		}

		var resized image.Image
		switch opts.Mode {
		case ModeThumbnail:
			resized = imaging.Fit(img, newWidth, newHeight, imaging.Lanczos)
		case ModeResize:
			resized = imaging.Resize(img, newWidth, newHeight, imaging.Linear)
		}

		var buf bytes.Buffer
		if err := png.Encode(&buf, resized); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrEncode, err)
		}
		state.output = buf.Bytes()
	}

	return state.output, nil
}
