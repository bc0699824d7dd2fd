package remover

import (
	"bgremover/shared/log"
	"bytes"
	"context"
	"errors"
	"fmt"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"image"
	"image/png"
	"strings"
	"time"
)

const maxErrorBody = 256

// Rembg calls a rembg HTTP server ("rembg s") and decodes its PNG answer.
type Rembg struct {
	url     string
	model   string
	timeout time.Duration

	logger *zap.Logger
}

func MustRembg(baseURL, model string, timeout time.Duration, logger *zap.Logger) *Rembg {
	return &Rembg{
		url:     strings.TrimRight(baseURL, "/") + "/api/remove",
		model:   model,
		timeout: timeout,
		logger:  logger,
	}
}

func (r *Rembg) Remove(ctx context.Context, img image.Image) (image.Image, error) {
	logger := log.LoggerWithTrace(ctx, r.logger)

	var payload bytes.Buffer
	if err := png.Encode(&payload, img); err != nil {
		return nil, fmt.Errorf("encode request image: %w", err)
	}

	timeout := r.timeout
	if deadline, ok := ctx.Deadline(); ok {
		left := time.Until(deadline)
		if left <= 0 {
			return nil, context.DeadlineExceeded
		}
		if timeout <= 0 || left < timeout {
			timeout = left
		}
	}

	args := fiber.AcquireArgs()
	defer fiber.ReleaseArgs(args)
	if r.model != "" {
		args.Set("model", r.model)
	}

	agent := fiber.Post(r.url).
		FileData(&fiber.FormFile{Fieldname: "file", Name: "image.png", Content: payload.Bytes()}).
		MultipartForm(args)
	if timeout > 0 {
		agent = agent.Timeout(timeout)
	}

	logger.Debug("Calling rembg", zap.String("url", r.url), zap.Int("payload_bytes", payload.Len()))

	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return nil, fmt.Errorf("rembg request failed: %w", errors.Join(errs...))
	}
	if code != fiber.StatusOK {
		return nil, fmt.Errorf("rembg responded with status %d: %s", code, excerpt(body))
	}

	out, _, err := image.Decode(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("decode rembg response: %w", err)
	}

	return out, nil
}

func excerpt(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxErrorBody {
		return s[:maxErrorBody] + "..."
	}
	return s
}
