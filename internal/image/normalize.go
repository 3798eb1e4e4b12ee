// Package image normalizes user-supplied photos for transmission to the
// generation service.
//
// Normalization rescales the photo so its longer side fits a fixed cap and
// re-encodes it as JPEG, stepping the quality down until the encoded size
// fits a byte budget or the quality floor is reached. The result is a
// self-contained data URI. Normalization is best-effort: once a photo
// decodes, it always produces a result, even if the budget could not be met
// at the floor quality.
package image

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"math"

	xdraw "golang.org/x/image/draw"
)

const (
	// MaxDimension is the cap on the longer image side, in pixels.
	MaxDimension = 1200
	// TargetBytes is the encoded size budget for the normalized image.
	TargetBytes = 300 * 1024
	// StartQuality is the initial JPEG quality (1-100 scale).
	StartQuality = 85
	// QualityFloor is the lowest JPEG quality tried before giving up on
	// the byte budget.
	QualityFloor = 15
	// QualityStep is how much quality drops per re-encode attempt.
	QualityStep = 10

	// dataURIPrefix is prepended to the base64 payload.
	dataURIPrefix = "data:image/jpeg;base64,"
)

// ErrDecode indicates the input could not be decoded as an image.
// Unreadable input is a classified failure, not a hang: callers surface it
// to the user and move on.
var ErrDecode = errors.New("image cannot be decoded")

// Normalize decodes an image from r, rescales it to fit MaxDimension, and
// re-encodes it as a JPEG data URI within TargetBytes (best effort).
//
// Registered decoders: JPEG, PNG, GIF. Aspect ratio is preserved exactly,
// with integer rounding applied to the shorter dimension only.
func Normalize(r io.Reader) (string, error) {
	src, _, err := image.Decode(r)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecode, err)
	}

	scaled := scaleToFit(src, MaxDimension)

	data, err := encodeUnderBudget(scaled, TargetBytes)
	if err != nil {
		return "", err
	}

	return dataURIPrefix + base64.StdEncoding.EncodeToString(data), nil
}

// scaleToFit returns img rescaled so its longer side equals limit, or img
// unchanged if both sides already fit. The shorter side scales
// proportionally with round-to-nearest.
func scaleToFit(img image.Image, limit int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= limit && h <= limit {
		return img
	}

	var nw, nh int
	if w >= h {
		nw = limit
		nh = roundedScale(h, limit, w)
	} else {
		nh = limit
		nw = roundedScale(w, limit, h)
	}

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}

// roundedScale scales side by num/den, rounding to nearest with a minimum
// of one pixel so degenerate inputs never produce a zero dimension.
func roundedScale(side, num, den int) int {
	scaled := int(math.Round(float64(side) * float64(num) / float64(den)))
	if scaled < 1 {
		return 1
	}
	return scaled
}

// encodeUnderBudget encodes img as JPEG, lowering quality by QualityStep
// per attempt while the result exceeds budget and quality stays above
// QualityFloor. It returns the last encoding regardless of whether the
// budget was met.
func encodeUnderBudget(img image.Image, budget int) ([]byte, error) {
	var buf bytes.Buffer

	quality := StartQuality
	for {
		buf.Reset()
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			// jpeg.Encode only fails on writer errors, which bytes.Buffer
			// does not produce, but the contract stays explicit.
			return nil, fmt.Errorf("failed to encode image: %w", err)
		}
		if buf.Len() <= budget || quality <= QualityFloor {
			break
		}
		quality -= QualityStep
		if quality < QualityFloor {
			quality = QualityFloor
		}
	}

	return buf.Bytes(), nil
}
