package converter

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func gradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 16), G: uint8(y * 16), B: 200, A: uint8((x + y) * 8)})
		}
	}
	return img
}

func encodeJPEG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}))
	return buf.Bytes()
}

func TestDecode(t *testing.T) {
	var pngBuf bytes.Buffer
	require.NoError(t, png.Encode(&pngBuf, gradient(8, 4)))

	tests := []struct {
		name       string
		raw        []byte
		wantFormat string
		wantErr    bool
	}{
		{name: "png", raw: pngBuf.Bytes(), wantFormat: "png"},
		{name: "jpeg", raw: encodeJPEG(t, gradient(8, 4)), wantFormat: "jpeg"},
		{name: "garbage", raw: []byte("definitely not an image"), wantErr: true},
		{name: "truncated png", raw: pngBuf.Bytes()[:20], wantErr: true},
		{name: "empty", raw: nil, wantErr: true},
	}

	d := MustDecoder(zap.NewNop())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := d.Decode(context.Background(), tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantFormat, img.Format)
			assert.Equal(t, 8, img.Width)
			assert.Equal(t, 4, img.Height)
			assert.Equal(t, tt.raw, img.Raw)
		})
	}
}

func TestDecodeEmptyInput(t *testing.T) {
	_, err := MustDecoder(zap.NewNop()).Decode(context.Background(), []byte{})
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestDecodeNormalize(t *testing.T) {
	raw := encodeJPEG(t, gradient(8, 4))

	t.Run("normalized bytes are decoded", func(t *testing.T) {
		var pngBuf bytes.Buffer
		require.NoError(t, png.Encode(&pngBuf, gradient(3, 2)))

		called := false
		d := MustDecoder(zap.NewNop(), WithNormalize(func(in []byte) ([]byte, error) {
			called = true
			assert.Equal(t, raw, in)
			return pngBuf.Bytes(), nil
		}))

		img, err := d.Decode(context.Background(), raw)
		require.NoError(t, err)
		assert.True(t, called)
		assert.Equal(t, "png", img.Format)
		assert.Equal(t, 3, img.Width)
	})

	t.Run("normalize failure falls back to raw bytes", func(t *testing.T) {
		d := MustDecoder(zap.NewNop(), WithNormalize(func([]byte) ([]byte, error) {
			return nil, errors.New("vips unavailable")
		}))

		img, err := d.Decode(context.Background(), raw)
		require.NoError(t, err)
		assert.Equal(t, "jpeg", img.Format)
	})
}

func TestPngEncodeRoundTrip(t *testing.T) {
	src := gradient(16, 16)
	enc := MustPng(zap.NewNop())

	out, err := enc.Encode(context.Background(), src)
	require.NoError(t, err)

	decoded, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	require.Equal(t, src.Bounds(), decoded.Bounds())

	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			got := color.NRGBAModel.Convert(decoded.At(x, y)).(color.NRGBA)
			assert.Equal(t, src.NRGBAAt(x, y), got, "pixel %d,%d", x, y)
		}
	}
}

func TestPngEncodeIdempotent(t *testing.T) {
	enc := MustPng(zap.NewNop())

	first, err := enc.Encode(context.Background(), gradient(10, 6))
	require.NoError(t, err)

	decoded, err := png.Decode(bytes.NewReader(first))
	require.NoError(t, err)

	second, err := enc.Encode(context.Background(), decoded)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestDecodeMaxPixels(t *testing.T) {
	// a flat 4000x4000 PNG compresses to a few KB
	var big bytes.Buffer
	require.NoError(t, png.Encode(&big, image.NewGray(image.Rect(0, 0, 4000, 4000))))
	require.Less(t, big.Len(), 100*1024)

	d := MustDecoder(zap.NewNop(), WithMaxPixels(1000*1000))

	_, err := d.Decode(context.Background(), big.Bytes())
	assert.ErrorIs(t, err, ErrTooManyPixels)
	assert.Contains(t, err.Error(), "4000x4000")

	var small bytes.Buffer
	require.NoError(t, png.Encode(&small, image.NewGray(image.Rect(0, 0, 1000, 1000))))

	img, err := d.Decode(context.Background(), small.Bytes())
	require.NoError(t, err)
	assert.Equal(t, 1000, img.Width)

	_, err = d.Decode(context.Background(), []byte("not an image"))
	assert.Error(t, err)
}
