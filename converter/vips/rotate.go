// Package vips holds the libvips-backed helpers. It is kept apart from the
// converter package so that only the binary links against libvips.
package vips

import (
	"github.com/h2non/bimg"
)

// AutoRotate applies the EXIF orientation and drops it from the metadata.
// Images without orientation data come back unchanged.
func AutoRotate(raw []byte) ([]byte, error) {
	img := bimg.NewImage(raw)

	meta, err := img.Metadata()
	if err != nil {
		return nil, err
	}
	if meta.Orientation <= 1 {
		return raw, nil
	}

	return img.AutoRotate()
}
