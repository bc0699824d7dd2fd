package rest

import (
	"bgremover/api/model"
	"bgremover/api/view"
	"bgremover/config"
	"bgremover/service"
	"bgremover/shared/log"
	"bytes"
	"context"
	"errors"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"net/http"
	"strings"
)

// FormField is the multipart field carrying the upload.
const FormField = "image"

type ImageController struct {
	cfg     *config.Config
	service *service.ImageService
	logger  *zap.Logger
}

func NewImageController(app *fiber.App, cfg *config.Config, service *service.ImageService, logger *zap.Logger) *ImageController {
	i := &ImageController{service: service, cfg: cfg, logger: logger}

	app.Get("/", i.Page)
	app.Post("/", i.Page)
	app.Post("/api/remove", i.Remove)
	app.Get("/health", i.Health)

	return i
}

// Page renders the remover page
//
//	@Summary		Render the background remover page
//	@Description	Processes the uploaded image, or the default image when nothing was uploaded, and renders both images with a download link.
//	@Tags			page
//	@Accept			multipart/form-data
//	@Produce		text/html
//	@Param			image	formData	file	false	"Image to process (png, jpg, jpeg)"
//	@Success		200		{string}	string	"HTML page"
//	@Router			/ [get]
//	@Router			/ [post]
func (i *ImageController) Page(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), i.cfg.RequestTimeout)
	defer cancel()

	result, err := i.handle(ctx, c)

	var page *model.Page
	status := http.StatusOK
	if err != nil {
		page = view.NewErrorPage(err, i.service.MaxUploadSize())
		status = pageStatus(err)
	} else {
		page = view.NewPage(result, i.service.MaxUploadSize())
	}

	return i.render(ctx, c.Status(status), page)
}

// Remove background via API
//
//	@Summary		Remove the background of an image
//	@Description	Returns the processed image as a PNG attachment named processed.png. Without an upload the default image is used.
//	@Tags			image
//	@Accept			multipart/form-data
//	@Produce		image/png
//	@Param			image	formData	file	false	"Image to process (png, jpg, jpeg)"
//	@Success		200		{file}		file	"processed.png"
//	@Failure		404		{object}	model.ErrorResponse
//	@Failure		413		{object}	model.ErrorResponse
//	@Failure		422		{object}	model.ErrorResponse
//	@Failure		502		{object}	model.ErrorResponse
//	@Router			/api/remove [post]
func (i *ImageController) Remove(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), i.cfg.RequestTimeout)
	defer cancel()

	result, err := i.handle(ctx, c)
	if err != nil {
		return err
	}

	c.Attachment(result.Output.FileName)
	c.Set(fiber.HeaderContentType, result.Output.MimeType)

	return c.Send(result.Output.Body)
}

// Health check
//
//	@Summary	Health check
//	@Tags		health
//	@Produce	json
//	@Success	200	{object}	map[string]string
//	@Router		/health [get]
func (i *ImageController) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (i *ImageController) handle(ctx context.Context, c *fiber.Ctx) (*model.Result, error) {
	logger := log.LoggerWithTrace(ctx, i.logger)

	upload, closeUpload, err := formUpload(c)
	if err != nil {
		logger.Error("Error reading upload", zap.Error(err))
		return nil, err
	}
	defer closeUpload()

	return i.service.Handle(ctx, upload)
}

func (i *ImageController) render(ctx context.Context, c *fiber.Ctx, page *model.Page) error {
	var buf bytes.Buffer
	if err := view.Render(&buf, page); err != nil {
		log.LoggerWithTrace(ctx, i.logger).Error("Error rendering page", zap.Error(err))
		return err
	}

	c.Type("html", "utf-8")
	return c.Send(buf.Bytes())
}

// formUpload returns nil when the request carries no file.
func formUpload(c *fiber.Ctx) (*model.Upload, func(), error) {
	noop := func() {}

	if !strings.HasPrefix(string(c.Request().Header.ContentType()), fiber.MIMEMultipartForm) {
		return nil, noop, nil
	}

	form, err := c.MultipartForm()
	if err != nil {
		return nil, noop, fiber.NewError(fiber.StatusBadRequest, "malformed multipart form: "+err.Error())
	}

	files := form.File[FormField]
	if len(files) == 0 || files[0].Filename == "" {
		return nil, noop, nil
	}
	fh := files[0]

	f, err := fh.Open()
	if err != nil {
		return nil, noop, err
	}

	return &model.Upload{Name: fh.Filename, Size: fh.Size, Body: f}, func() { _ = f.Close() }, nil
}

func pageStatus(err error) int {
	var uerr *service.UserError
	if errors.As(err, &uerr) {
		if uerr.Warning() {
			return http.StatusOK
		}
		return uerr.Kind.Status()
	}
	var ferr *fiber.Error
	if errors.As(err, &ferr) {
		return ferr.Code
	}
	return http.StatusInternalServerError
}
