package rest

import (
	"bgremover/api/model"
	"bgremover/api/view"
	"bgremover/service"
	"bytes"
	"errors"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"go.uber.org/zap"
	"strings"
)

// ErrorHandler answers API routes with JSON and every other route with the
// page carrying a notice. Oversized bodies rejected by the server read as
// FileTooLarge.
func ErrorHandler(maxUpload int64, logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var ferr *fiber.Error
		if errors.As(err, &ferr) && ferr.Code == fiber.StatusRequestEntityTooLarge {
			err = &service.UserError{Kind: service.FileTooLarge, Err: err, Limit: maxUpload}
		}

		status := fiber.StatusInternalServerError
		resp := model.ErrorResponse{Code: "INTERNAL_ERROR", Message: "internal server error"}

		var uerr *service.UserError
		switch {
		case errors.As(err, &uerr):
			status = uerr.Kind.Status()
			resp = model.ErrorResponse{Code: uerr.Kind.String(), Message: uerr.Error()}
		case errors.As(err, &ferr):
			status = ferr.Code
			resp = model.ErrorResponse{Code: strings.ToUpper(strings.ReplaceAll(utils.StatusMessage(status), " ", "_")), Message: ferr.Message}
		default:
			logger.Error("Unhandled error", zap.String("path", c.Path()), zap.Error(err))
		}

		if strings.HasPrefix(c.Path(), "/api/") || c.Path() == "/health" {
			return c.Status(status).JSON(resp)
		}

		page := view.NewErrorPage(err, maxUpload)
		if uerr == nil && ferr != nil {
			page = view.NewNoticePage(ferr.Message, maxUpload)
		}

		var buf bytes.Buffer
		if rerr := view.Render(&buf, page); rerr != nil {
			return c.Status(status).JSON(resp)
		}
		c.Type("html", "utf-8")
		return c.Status(status).Send(buf.Bytes())
	}
}
