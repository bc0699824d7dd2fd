package config

import (
	"errors"
	"fmt"
)

var knownRemovers = map[string]struct{}{
	"colorkey": {},
	"rembg":    {},
}

func (c *Config) validate() error {
	if c.MaxUploadSize <= 0 {
		return errors.New("MAX_UPLOAD_SIZE must be positive")
	}
	if c.MaxImagePixels <= 0 {
		return errors.New("MAX_IMAGE_PIXELS must be positive")
	}
	if int64(c.BodyLimit) < c.MaxUploadSize {
		return fmt.Errorf("BODY_LIMIT (%d) must not be smaller than MAX_UPLOAD_SIZE (%d)", c.BodyLimit, c.MaxUploadSize)
	}
	if c.RequestTimeout <= 0 {
		return errors.New("REQUEST_TIMEOUT must be positive")
	}
	if _, ok := knownRemovers[c.Remover]; !ok {
		return fmt.Errorf("unknown REMOVER: %s", c.Remover)
	}
	if c.Remover == "rembg" && c.RembgURL == "" {
		return errors.New("REMBG_URL is required when REMOVER=rembg")
	}
	if c.ColorKeyTolerance < 0 {
		return errors.New("COLORKEY_TOLERANCE must not be negative")
	}
	return nil
}
