package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	conf, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, int64(5*1024*1024), conf.MaxUploadSize)
	assert.Equal(t, "./zebra.jpg", conf.DefaultImagePath)
	assert.Equal(t, "rembg", conf.Remover)
	assert.Equal(t, "http://localhost:7000", conf.RembgURL)
	assert.Equal(t, int64(178956970), conf.MaxImagePixels)
	assert.Equal(t, 60*time.Second, conf.RembgTimeout)
	assert.Equal(t, 5*time.Second, conf.RateLimitDuration())
	assert.False(t, conf.UseS3DefaultImage())
}

func TestParseOverrides(t *testing.T) {
	t.Setenv("MAX_UPLOAD_SIZE", "1024")
	t.Setenv("REMOVER", "colorkey")
	t.Setenv("REMBG_URL", "http://rembg:7000")
	t.Setenv("DEFAULT_IMAGE_S3_BUCKET", "assets")

	conf, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, int64(1024), conf.MaxUploadSize)
	assert.Equal(t, "colorkey", conf.Remover)
	assert.Equal(t, "http://rembg:7000", conf.RembgURL)
	assert.True(t, conf.UseS3DefaultImage())
}

func TestParseRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{name: "unknown remover", key: "REMOVER", val: "magic"},
		{name: "zero upload size", key: "MAX_UPLOAD_SIZE", val: "0"},
		{name: "body limit below upload size", key: "BODY_LIMIT", val: "1024"},
		{name: "zero pixel limit", key: "MAX_IMAGE_PIXELS", val: "0"},
		{name: "negative tolerance", key: "COLORKEY_TOLERANCE", val: "-1"},
		{name: "malformed timeout", key: "REMBG_TIMEOUT", val: "soon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)

			_, err := Parse()
			assert.Error(t, err)
		})
	}
}

func TestNewPanicsOnInvalidConfig(t *testing.T) {
	t.Setenv("REMOVER", "magic")

	assert.Panics(t, func() { New() })
}
