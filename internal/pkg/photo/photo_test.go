package photo

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := imaging.New(w, h, color.NRGBA{R: 200, G: 120, B: 40, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestNormalize_ResizesAndEncodesJPEG(t *testing.T) {
	out, err := Normalize(pngBytes(t, 1200, 800), Options{MaxDimension: 600, JPEGQuality: 85})
	require.NoError(t, err)

	cfg, format, err := image.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 600, cfg.Width)
	assert.Equal(t, 400, cfg.Height)
}

func TestNormalize_KeepsSmallImages(t *testing.T) {
	out, err := Normalize(pngBytes(t, 120, 160), DefaultOptions)
	require.NoError(t, err)

	cfg, _, err := image.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 120, cfg.Width)
	assert.Equal(t, 160, cfg.Height)
}

func TestNormalize_RejectsGarbage(t *testing.T) {
	_, err := Normalize([]byte("not an image"), DefaultOptions)
	assert.ErrorIs(t, err, ErrUnsupportedImage)

	_, err = Normalize(nil, DefaultOptions)
	assert.ErrorIs(t, err, ErrUnsupportedImage)
}
