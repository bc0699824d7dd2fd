package source

import (
	"bgremover/api/model"
	"bgremover/shared/log"
	"context"
	"errors"
	"fmt"
	"go.uber.org/zap"
	"io"
	"path/filepath"
	"strings"
)

var (
	ErrTooLarge = errors.New("file too large")
	ErrNotFound = errors.New("default image not found")
)

// AllowedExtensions is advisory: decoding decides what is a valid image.
var AllowedExtensions = []string{".png", ".jpg", ".jpeg"}

// Fallback loads the image used when nothing was uploaded.
// It returns ErrNotFound when there is no such image.
type Fallback interface {
	Load(ctx context.Context) (name string, raw []byte, err error)
}

type Source struct {
	maxSize  int64
	fallback Fallback

	logger *zap.Logger
}

func NewSource(maxSize int64, fallback Fallback, logger *zap.Logger) *Source {
	return &Source{maxSize: maxSize, fallback: fallback, logger: logger}
}

func (s *Source) MaxSize() int64 {
	return s.maxSize
}

// Obtain returns the upload bytes, or the fallback image when upload is nil.
func (s *Source) Obtain(ctx context.Context, upload *model.Upload) (*model.Input, error) {
	if upload == nil {
		return s.loadDefault(ctx)
	}
	return s.readUpload(ctx, upload)
}

func (s *Source) readUpload(ctx context.Context, upload *model.Upload) (*model.Input, error) {
	logger := log.LoggerWithTrace(ctx, s.logger).With(zap.String("file", upload.Name))

	if upload.Size > s.maxSize {
		return nil, fmt.Errorf("%w: %d bytes exceeds the limit of %d bytes", ErrTooLarge, upload.Size, s.maxSize)
	}

	if !allowedExtension(upload.Name) {
		logger.Warn("Unexpected upload extension", zap.Strings("allowed", AllowedExtensions))
	}

	raw, err := io.ReadAll(io.LimitReader(upload.Body, s.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(raw)) > s.maxSize {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, s.maxSize)
	}

	logger.Debug("Upload received", zap.Int("bytes", len(raw)))

	return &model.Input{Name: upload.Name, Origin: model.OriginUpload, Bytes: raw}, nil
}

func (s *Source) loadDefault(ctx context.Context) (*model.Input, error) {
	logger := log.LoggerWithTrace(ctx, s.logger)

	if s.fallback == nil {
		return nil, ErrNotFound
	}

	name, raw, err := s.fallback.Load(ctx)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			logger.Error("Error loading default image", zap.Error(err))
			return nil, fmt.Errorf("%w: %v", ErrNotFound, err)
		}
		return nil, err
	}

	logger.Debug("Default image loaded", zap.String("file", name), zap.Int("bytes", len(raw)))

	return &model.Input{Name: name, Origin: model.OriginDefault, Bytes: raw}, nil
}

func allowedExtension(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, allowed := range AllowedExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}
