package view

import (
	"bgremover/api/model"
	"bgremover/service"
	"embed"
	"encoding/base64"
	"errors"
	"html/template"
	"io"
)

const Title = "Image Background Remover"

//go:embed templates/index.html
var templates embed.FS

var index = template.Must(template.New("index.html").ParseFS(templates, "templates/index.html"))

// Render writes the page. Image sources are data URIs so a page carries its
// own download and needs no server-side state.
func Render(w io.Writer, page *model.Page) error {
	return index.Execute(w, page)
}

// NewPage builds the page showing both images and the download action.
func NewPage(result *model.Result, maxUpload int64) *model.Page {
	processed := DataURI(result.Output.MimeType, result.Output.Body)

	return &model.Page{
		Title:        Title,
		MaxUploadMB:  service.FormatSize(maxUpload),
		OriginalURI:  DataURI(result.Original.MimeType(), result.Original.Raw),
		ProcessedURI: processed,
		DownloadName: result.Output.FileName,
		DownloadURI:  processed,
	}
}

// NewErrorPage builds a page with a notice and no images.
func NewErrorPage(err error, maxUpload int64) *model.Page {
	notice := &model.Notice{Severity: model.SeverityError, Message: "unexpected error, please try again"}

	var uerr *service.UserError
	if errors.As(err, &uerr) {
		notice.Message = uerr.Error()
		if uerr.Warning() {
			notice.Severity = model.SeverityWarning
		}
	}

	return &model.Page{
		Title:       Title,
		Notice:      notice,
		MaxUploadMB: service.FormatSize(maxUpload),
	}
}

// NewNoticePage builds an error page with a plain message.
func NewNoticePage(message string, maxUpload int64) *model.Page {
	return &model.Page{
		Title:       Title,
		Notice:      &model.Notice{Severity: model.SeverityError, Message: message},
		MaxUploadMB: service.FormatSize(maxUpload),
	}
}

func DataURI(mime string, body []byte) template.URL {
	return template.URL("data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(body))
}
