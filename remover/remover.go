package remover

import (
	"context"
	"image"
)

// Remover turns background pixels transparent. The returned image has the
// same width and height as the input.
type Remover interface {
	Remove(ctx context.Context, img image.Image) (image.Image, error)
}

type Func func(ctx context.Context, img image.Image) (image.Image, error)

func (f Func) Remove(ctx context.Context, img image.Image) (image.Image, error) {
	return f(ctx, img)
}
