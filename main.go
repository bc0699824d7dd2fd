package main

import (
	"bgremover/api/rest"
	"bgremover/config"
	"bgremover/converter"
	"bgremover/converter/vips"
	"bgremover/remover"
	"bgremover/service"
	"bgremover/shared/log"
	"bgremover/shared/trace"
	"bgremover/source"
	"context"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/gofiber/contrib/fiberzap/v2"
	"github.com/gofiber/contrib/otelfiber/v2"
	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/etag"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/hyperdxio/otel-config-go/otelconfig"
	"go.uber.org/zap"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"
)

//	@title			Image Background Remover
//	@version		1.0
//	@description	Upload an image and download it with the background removed

// @BasePath	/
func main() {
	serviceConfig := config.New()

	ctx := context.Background()

	tp := trace.InitTrace(serviceConfig.TraceStdoutEnabled)
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			slog.Error("Error shutting down tracer provider", "error", err)
		}
	}()

	if serviceConfig.OtelConfigureEnabled {
		otelShutdown, err := otelconfig.ConfigureOpenTelemetry()
		if err != nil {
			slog.Error("Error configuring OpenTelemetry", "error", err)
		} else {
			defer otelShutdown()
		}
	}

	logger := log.InitLogger(ctx, serviceConfig.LogLevel, serviceConfig.OtlpLogsEnabled)
	defer func() {
		_ = logger.Sync()
	}()

	fallback, err := defaultImage(serviceConfig)
	if err != nil {
		logger.Error(err.Error())
		panic("Failed to create aws session")
	}

	removerType, err := remover.MakeFromString(serviceConfig.Remover)
	if err != nil {
		logger.Panic(err.Error())
	}
	imageRemover, err := remover.MustStrategy(serviceConfig, logger).Apply(removerType)
	if err != nil {
		logger.Panic(err.Error())
	}

	decoderOpts := []converter.DecoderOption{converter.WithMaxPixels(serviceConfig.MaxImagePixels)}
	if serviceConfig.AutoRotate {
		decoderOpts = append(decoderOpts, converter.WithNormalize(vips.AutoRotate))
	}

	imageService := service.NewImageService(
		source.NewSource(serviceConfig.MaxUploadSize, fallback, logger),
		converter.MustDecoder(logger, decoderOpts...),
		imageRemover,
		converter.MustPng(logger),
		logger,
	)

	app := fiber.New(fiber.Config{
		AppName:      serviceConfig.AppName,
		BodyLimit:    serviceConfig.BodyLimit,
		ReadTimeout:  serviceConfig.RequestTimeout,
		WriteTimeout: serviceConfig.RequestTimeout,
		ErrorHandler: rest.ErrorHandler(serviceConfig.MaxUploadSize, logger),
	})
	app.Use(
		recover.New(),
		requestid.New(requestid.Config{Generator: uuid.NewString}),
		otelfiber.Middleware(),
		fiberzap.New(fiberzap.Config{Logger: logger, Fields: []string{"requestId", "ip", "latency", "status", "method", "url"}}),
		compress.New(compress.Config{Level: compress.LevelBestSpeed}),
		etag.New(),
		limiter.New(limiter.Config{
			Next: func(c *fiber.Ctx) bool {
				return c.IP() == "127.0.0.1"
			},
			Max:        serviceConfig.RateLimitMaxRequests,
			Expiration: serviceConfig.RateLimitDuration(),
		}),
		swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: "./docs/swagger.json",
			Path:     "docs",
			Title:    serviceConfig.AppName,
		}),
	)

	rest.NewImageController(app, serviceConfig, imageService, logger)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		sig := <-quit
		logger.Info("Shutting down", zap.String("signal", sig.String()))

		shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			logger.Error("Error shutting down server", zap.Error(err))
		}
	}()

	logger.Info("Starting server",
		zap.String("port", serviceConfig.Port),
		zap.String("remover", removerType.String()),
		zap.Int64("max_upload_size", serviceConfig.MaxUploadSize))

	if err = app.Listen(":" + serviceConfig.Port); err != nil {
		logger.Panic(err.Error())
		return
	}
}

func defaultImage(cfg *config.Config) (source.Fallback, error) {
	if !cfg.UseS3DefaultImage() {
		return source.NewFile(cfg.DefaultImagePath), nil
	}

	awsConfig := &aws.Config{Region: aws.String(cfg.S3Region)}
	if cfg.S3AccessKey != "" {
		awsConfig.Credentials = credentials.NewStaticCredentials(cfg.S3AccessKey, cfg.S3SecretKey, "")
	}
	if cfg.S3Endpoint != "" {
		awsConfig.Endpoint = aws.String(cfg.S3Endpoint)
		awsConfig.S3ForcePathStyle = aws.Bool(true)
	}

	awsSession, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, err
	}

	return source.NewS3(s3.New(awsSession), cfg.DefaultImageS3Bucket, cfg.DefaultImageS3Key), nil
}
