package converter

import (
	"bgremover/api/model"
	"bgremover/shared/log"
	"bytes"
	"context"
	"errors"
	"fmt"
	"go.uber.org/zap"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

var (
	ErrEmptyInput    = errors.New("empty input")
	ErrTooManyPixels = errors.New("image has too many pixels")
)

// Normalize rewrites raw image bytes before decoding, e.g. to apply EXIF
// orientation.
type Normalize func(raw []byte) ([]byte, error)

type Decoder struct {
	normalize Normalize
	maxPixels int64
	logger    *zap.Logger
}

type DecoderOption func(*Decoder)

func WithNormalize(n Normalize) DecoderOption {
	return func(d *Decoder) {
		d.normalize = n
	}
}

// WithMaxPixels rejects images whose width*height exceeds max before their
// pixels are decoded. Zero disables the check.
func WithMaxPixels(max int64) DecoderOption {
	return func(d *Decoder) {
		d.maxPixels = max
	}
}

func MustDecoder(logger *zap.Logger, opts ...DecoderOption) *Decoder {
	d := &Decoder{logger: logger}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Decoder) Decode(ctx context.Context, raw []byte) (*model.Image, error) {
	logger := log.LoggerWithTrace(ctx, d.logger)

	if len(raw) == 0 {
		return nil, ErrEmptyInput
	}

	if d.normalize != nil {
		normalized, err := d.normalize(raw)
		if err != nil {
			// the unnormalized bytes may still decode
			logger.Warn("Error normalizing image", zap.Error(err))
		} else {
			raw = normalized
		}
	}

	if d.maxPixels > 0 {
		conf, _, err := image.DecodeConfig(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("cannot identify image file: %w", err)
		}
		if pixels := int64(conf.Width) * int64(conf.Height); pixels > d.maxPixels {
			return nil, fmt.Errorf("%w: %dx%d exceeds the limit of %d pixels", ErrTooManyPixels, conf.Width, conf.Height, d.maxPixels)
		}
	}

	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("cannot identify image file: %w", err)
	}

	bounds := img.Bounds()
	if bounds.Empty() {
		return nil, errors.New("image has no pixels")
	}

	logger.Debug("Decoded image",
		zap.String("format", format),
		zap.Int("width", bounds.Dx()),
		zap.Int("height", bounds.Dy()))

	return &model.Image{
		Image:  img,
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
		Format: format,
		Raw:    raw,
	}, nil
}
