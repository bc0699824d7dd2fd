package model

import (
	"image"
	"io"
)

const (
	ProcessedFileName = "processed.png"
	ProcessedMimeType = "image/png"
)

// Upload is a user-supplied file for one request. Body is owned and closed
// by the caller.
type Upload struct {
	Name string
	Size int64

	Body io.Reader
}

type Origin string

const (
	OriginUpload  Origin = "upload"
	OriginDefault Origin = "default"
)

type Input struct {
	Name   string
	Origin Origin
	Bytes  []byte
}

type Image struct {
	Image  image.Image
	Width  int
	Height int
	Format string

	// Raw holds the bytes the image was decoded from.
	Raw []byte
}

// MimeType of the source bytes, derived from the decoded format.
func (i *Image) MimeType() string {
	switch i.Format {
	case "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}

type EncodedOutput struct {
	Body     []byte
	FileName string
	MimeType string
}

type Result struct {
	Origin    Origin
	Original  *Image
	Processed image.Image
	Output    *EncodedOutput
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
