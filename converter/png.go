package converter

import (
	"bgremover/shared/log"
	"bytes"
	"context"
	"go.uber.org/zap"
	"image"
	"image/png"
)

type Png struct {
	logger *zap.Logger
}

func MustPng(logger *zap.Logger) *Png {
	return &Png{logger: logger}
}

// Encode writes img as a lossless PNG. The alpha channel is kept and the
// output depends only on the pixels.
func (w *Png) Encode(ctx context.Context, img image.Image) ([]byte, error) {
	logger := log.LoggerWithTrace(ctx, w.logger)
	logger.Debug("Converting image to png")

	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.DefaultCompression}
	if err := enc.Encode(&buf, img); err != nil {
		logger.Error("Error converting image to png", zap.Error(err))
		return nil, err
	}

	return buf.Bytes(), nil
}
