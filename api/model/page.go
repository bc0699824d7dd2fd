package model

import "html/template"

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

type Notice struct {
	Severity Severity
	Message  string
}

// Page is everything the HTML view needs for one render.
type Page struct {
	Title       string
	Notice      *Notice
	MaxUploadMB string

	OriginalURI  template.URL
	ProcessedURI template.URL

	DownloadName string
	DownloadURI  template.URL
}

func (p *Page) HasImages() bool {
	return p.OriginalURI != "" && p.ProcessedURI != ""
}
