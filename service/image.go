package service

import (
	"bgremover/api/model"
	"bgremover/shared/log"
	"bgremover/source"
	"context"
	"errors"
	"fmt"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"image"
)

type Source interface {
	Obtain(ctx context.Context, upload *model.Upload) (*model.Input, error)
	MaxSize() int64
}

type Decoder interface {
	Decode(ctx context.Context, raw []byte) (*model.Image, error)
}

type Remover interface {
	Remove(ctx context.Context, img image.Image) (image.Image, error)
}

type Encoder interface {
	Encode(ctx context.Context, img image.Image) ([]byte, error)
}

type ImageService struct {
	source  Source
	decoder Decoder
	remover Remover
	encoder Encoder

	tracer trace.Tracer
	logger *zap.Logger
}

func NewImageService(src Source, decoder Decoder, remover Remover, encoder Encoder, logger *zap.Logger) *ImageService {
	return &ImageService{
		source:  src,
		decoder: decoder,
		remover: remover,
		encoder: encoder,
		tracer:  otel.Tracer("bgremover/service"),
		logger:  logger,
	}
}

// MaxUploadSize is the largest upload Handle accepts.
func (i *ImageService) MaxUploadSize() int64 {
	return i.source.MaxSize()
}

// Handle runs one request: obtain input, decode, remove the background and
// encode the result as PNG. Failures are returned as *UserError.
func (i *ImageService) Handle(ctx context.Context, upload *model.Upload) (*model.Result, error) {
	ctx, span := i.tracer.Start(ctx, "ImageService.Handle")
	defer span.End()
	logger := log.LoggerWithTrace(ctx, i.logger)

	input, err := i.obtain(ctx, upload)
	if err != nil {
		return nil, i.fail(span, logger, err)
	}
	span.SetAttributes(attribute.String("image.origin", string(input.Origin)), attribute.Int("image.bytes", len(input.Bytes)))

	original, err := i.decode(ctx, input)
	if err != nil {
		return nil, i.fail(span, logger, err)
	}

	processed, err := i.remove(ctx, original)
	if err != nil {
		return nil, i.fail(span, logger, err)
	}

	body, err := i.encode(ctx, processed)
	if err != nil {
		return nil, i.fail(span, logger, err)
	}

	logger.Info("Background removed",
		zap.String("origin", string(input.Origin)),
		zap.String("file", input.Name),
		zap.Int("width", original.Width),
		zap.Int("height", original.Height),
		zap.Int("output_bytes", len(body)))

	return &model.Result{
		Origin:    input.Origin,
		Original:  original,
		Processed: processed,
		Output: &model.EncodedOutput{
			Body:     body,
			FileName: model.ProcessedFileName,
			MimeType: model.ProcessedMimeType,
		},
	}, nil
}

func (i *ImageService) obtain(ctx context.Context, upload *model.Upload) (*model.Input, error) {
	ctx, span := i.tracer.Start(ctx, "source.Obtain")
	defer span.End()

	input, err := i.source.Obtain(ctx, upload)
	switch {
	case err == nil:
		return input, nil
	case errors.Is(err, source.ErrTooLarge):
		return nil, &UserError{Kind: FileTooLarge, Err: err, Limit: i.source.MaxSize()}
	case errors.Is(err, source.ErrNotFound):
		return nil, &UserError{Kind: NoInputAvailable, Err: err}
	default:
		// reading the upload failed part way
		return nil, &UserError{Kind: DecodeFailure, Err: err}
	}
}

func (i *ImageService) decode(ctx context.Context, input *model.Input) (*model.Image, error) {
	ctx, span := i.tracer.Start(ctx, "converter.Decode")
	defer span.End()

	img, err := i.decoder.Decode(ctx, input.Bytes)
	if err != nil {
		return nil, &UserError{Kind: DecodeFailure, Err: err}
	}
	span.SetAttributes(attribute.String("image.format", img.Format))
	return img, nil
}

func (i *ImageService) remove(ctx context.Context, original *model.Image) (processed image.Image, err error) {
	ctx, span := i.tracer.Start(ctx, "remover.Remove")
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			processed = nil
			err = &UserError{Kind: RemovalFailure, Err: fmt.Errorf("remover panicked: %v", r)}
		}
	}()

	processed, err = i.remover.Remove(ctx, original.Image)
	if err != nil {
		return nil, &UserError{Kind: RemovalFailure, Err: err}
	}
	if processed == nil {
		return nil, &UserError{Kind: RemovalFailure, Err: errors.New("remover returned no image")}
	}

	b := processed.Bounds()
	if b.Dx() != original.Width || b.Dy() != original.Height {
		return nil, &UserError{Kind: RemovalFailure, Err: fmt.Errorf(
			"result is %dx%d, expected %dx%d", b.Dx(), b.Dy(), original.Width, original.Height)}
	}

	return processed, nil
}

func (i *ImageService) encode(ctx context.Context, img image.Image) ([]byte, error) {
	ctx, span := i.tracer.Start(ctx, "converter.Encode")
	defer span.End()

	body, err := i.encoder.Encode(ctx, img)
	if err != nil {
		return nil, &UserError{Kind: EncodeFailure, Err: err}
	}
	return body, nil
}

func (i *ImageService) fail(span trace.Span, logger *zap.Logger, err error) error {
	var uerr *UserError
	if errors.As(err, &uerr) && uerr.Warning() {
		logger.Warn("No input image", zap.Error(uerr.Err))
		return err
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	logger.Error("Error handling image", zap.Error(err))
	return err
}
