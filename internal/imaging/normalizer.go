// Package imaging turns arbitrary user uploads into transmission-ready
// JPEGs under a byte budget, preserving enough quality for face analysis.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"

	_ "image/gif"
	_ "image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// ErrUnsupportedFormat means the payload could not be decoded as an
// image. The funnel aborts the attempt back to idle on this error.
var ErrUnsupportedFormat = errors.New("unsupported image format")

type Normalizer struct {
	MaxDimension int // longest edge after downscale
	MaxBytes     int // encoded output budget
	Quality      int // initial JPEG quality
}

func NewNormalizer(maxDimension, maxBytes, quality int) *Normalizer {
	return &Normalizer{
		MaxDimension: maxDimension,
		MaxBytes:     maxBytes,
		Quality:      quality,
	}
}

// Normalize decodes raw, downscales it so the longest edge fits
// MaxDimension (aspect ratio preserved), and re-encodes as JPEG. If the
// encoded size still exceeds MaxBytes the quality is stepped down, and
// once quality bottoms out the dimensions shrink until the output fits.
// Deterministic for a given input and budget.
func (n *Normalizer) Normalize(raw []byte) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}

	src = downscale(src, n.MaxDimension)

	quality := n.Quality
	for {
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, src, &jpeg.Options{Quality: quality}); err != nil {
			return nil, fmt.Errorf("encode jpeg: %w", err)
		}
		if buf.Len() <= n.MaxBytes {
			return buf.Bytes(), nil
		}
		if quality > 10 {
			quality -= 10
			continue
		}

		longest := longestEdge(src)
		if longest <= 64 {
			return nil, fmt.Errorf("image does not fit %d bytes at minimum quality", n.MaxBytes)
		}
		src = downscale(src, longest*3/4)
	}
}

func longestEdge(src image.Image) int {
	b := src.Bounds()
	if b.Dx() >= b.Dy() {
		return b.Dx()
	}
	return b.Dy()
}

func downscale(src image.Image, maxEdge int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxEdge && h <= maxEdge {
		return src
	}

	var tw, th int
	if w >= h {
		tw = maxEdge
		th = h * maxEdge / w
	} else {
		th = maxEdge
		tw = w * maxEdge / h
	}
	if tw < 1 {
		tw = 1
	}
	if th < 1 {
		th = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, tw, th))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}
