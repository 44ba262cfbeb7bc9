package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testImage builds a gradient so JPEG encoding produces non-trivial
// output sizes.
func testImage(t *testing.T, w, h int) image.Image {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: uint8((x + y) % 256), A: 255})
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func encodeJPEG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}))
	return buf.Bytes()
}

func TestNormalizeDownscalesLandscape(t *testing.T) {
	n := NewNormalizer(800, 400*1024, 80)

	out, err := n.Normalize(encodePNG(t, testImage(t, 1600, 1200)))
	require.NoError(t, err)

	cfg, format, err := image.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 800, cfg.Width)
	assert.Equal(t, 600, cfg.Height, "aspect ratio preserved")
}

func TestNormalizeDownscalesPortrait(t *testing.T) {
	n := NewNormalizer(800, 400*1024, 80)

	out, err := n.Normalize(encodePNG(t, testImage(t, 1200, 1600)))
	require.NoError(t, err)

	cfg, _, err := image.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 600, cfg.Width)
	assert.Equal(t, 800, cfg.Height)
}

func TestNormalizeLeavesSmallImagesAtSize(t *testing.T) {
	n := NewNormalizer(800, 400*1024, 80)

	out, err := n.Normalize(encodeJPEG(t, testImage(t, 320, 240)))
	require.NoError(t, err)

	cfg, _, err := image.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 320, cfg.Width)
	assert.Equal(t, 240, cfg.Height)
}

// noisyImage defeats JPEG compression so the quality stepping loop has
// to run.
func noisyImage(t *testing.T, w, h int) image.Image {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	seed := uint32(2463534242)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			seed ^= seed << 13
			seed ^= seed >> 17
			seed ^= seed << 5
			img.Set(x, y, color.RGBA{R: uint8(seed), G: uint8(seed >> 8), B: uint8(seed >> 16), A: 255})
		}
	}
	return img
}

func TestNormalizeRespectsByteBudget(t *testing.T) {
	n := NewNormalizer(800, 100*1024, 80)

	out, err := n.Normalize(encodePNG(t, noisyImage(t, 1600, 1200)))
	require.NoError(t, err)
	assert.LessOrEqual(t, len(out), 100*1024)

	_, _, err = image.Decode(bytes.NewReader(out))
	assert.NoError(t, err, "budget-squeezed output still decodes")
}

func TestNormalizeTightBudgetShrinksDimensions(t *testing.T) {
	// Small enough that noise at minimum quality cannot fit at 800px,
	// forcing the dimension step after quality bottoms out.
	n := NewNormalizer(800, 16*1024, 80)

	out, err := n.Normalize(encodePNG(t, noisyImage(t, 1600, 1200)))
	require.NoError(t, err)
	assert.LessOrEqual(t, len(out), 16*1024)

	cfg, _, err := image.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Less(t, cfg.Width, 800)
	assert.Greater(t, cfg.Width, 64)
}

func TestNormalizeIsDeterministic(t *testing.T) {
	n := NewNormalizer(800, 400*1024, 80)
	raw := encodePNG(t, testImage(t, 1024, 768))

	a, err := n.Normalize(raw)
	require.NoError(t, err)
	b, err := n.Normalize(raw)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestNormalizeRejectsNonImagePayload(t *testing.T) {
	n := NewNormalizer(800, 400*1024, 80)

	_, err := n.Normalize([]byte("%PDF-1.7 not an image at all"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestNormalizeRejectsEmptyPayload(t *testing.T) {
	n := NewNormalizer(800, 400*1024, 80)

	_, err := n.Normalize(nil)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
