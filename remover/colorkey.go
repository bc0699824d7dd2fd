package remover

import (
	"bgremover/shared/log"
	"context"
	"github.com/disintegration/imaging"
	"go.uber.org/zap"
	"image"
)

// ColorKey removes the region connected to the image border whose color is
// within tolerance of the mean border color. It needs no external service
// and works best on product shots against a plain backdrop.
type ColorKey struct {
	tolerance float64
	logger    *zap.Logger
}

func MustColorKey(tolerance float64, logger *zap.Logger) *ColorKey {
	return &ColorKey{tolerance: tolerance, logger: logger}
}

func (c *ColorKey) Remove(ctx context.Context, src image.Image) (image.Image, error) {
	logger := log.LoggerWithTrace(ctx, c.logger)

	img := imaging.Clone(src)
	w, h := img.Rect.Dx(), img.Rect.Dy()
	if w == 0 || h == 0 {
		return img, nil
	}

	ref := borderMean(img)
	tol2 := c.tolerance * c.tolerance

	visited := make([]bool, w*h)
	queue := make([]int, 0, 2*(w+h))

	push := func(x, y int) {
		i := y*w + x
		if visited[i] {
			return
		}
		if distance2(img, x, y, ref) > tol2 {
			return
		}
		visited[i] = true
		queue = append(queue, i)
	}

	for x := 0; x < w; x++ {
		push(x, 0)
		push(x, h-1)
	}
	for y := 0; y < h; y++ {
		push(0, y)
		push(w-1, y)
	}

	removed := 0
	for len(queue) > 0 {
		if removed%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		i := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		x, y := i%w, i/w

		img.Pix[y*img.Stride+x*4+3] = 0
		removed++

		if x > 0 {
			push(x-1, y)
		}
		if x < w-1 {
			push(x+1, y)
		}
		if y > 0 {
			push(x, y-1)
		}
		if y < h-1 {
			push(x, y+1)
		}
	}

	logger.Debug("Color key applied",
		zap.Int("removed_pixels", removed),
		zap.Int("total_pixels", w*h))

	return img, nil
}

type rgb struct {
	r, g, b float64
}

func borderMean(img *image.NRGBA) rgb {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	var sum rgb
	n := 0

	add := func(x, y int) {
		p := img.Pix[y*img.Stride+x*4:]
		sum.r += float64(p[0])
		sum.g += float64(p[1])
		sum.b += float64(p[2])
		n++
	}

	for x := 0; x < w; x++ {
		add(x, 0)
		if h > 1 {
			add(x, h-1)
		}
	}
	for y := 1; y < h-1; y++ {
		add(0, y)
		if w > 1 {
			add(w-1, y)
		}
	}

	return rgb{r: sum.r / float64(n), g: sum.g / float64(n), b: sum.b / float64(n)}
}

func distance2(img *image.NRGBA, x, y int, ref rgb) float64 {
	p := img.Pix[y*img.Stride+x*4:]
	dr := float64(p[0]) - ref.r
	dg := float64(p[1]) - ref.g
	db := float64(p[2]) - ref.b
	return dr*dr + dg*dg + db*db
}
