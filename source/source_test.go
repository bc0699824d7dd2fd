package source

import (
	"bgremover/api/model"
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type failingReader struct {
	t *testing.T
}

func (r failingReader) Read([]byte) (int, error) {
	r.t.Fatal("upload body must not be read")
	return 0, nil
}

type stubFallback struct {
	name string
	raw  []byte
	err  error
}

func (s stubFallback) Load(context.Context) (string, []byte, error) {
	return s.name, s.raw, s.err
}

func TestObtainUpload(t *testing.T) {
	const limit = 16

	tests := []struct {
		name    string
		upload  *model.Upload
		wantErr error
		wantLen int
	}{
		{
			name:    "within limit",
			upload:  &model.Upload{Name: "cat.png", Size: 10, Body: bytes.NewReader(make([]byte, 10))},
			wantLen: 10,
		},
		{
			name:    "exactly at limit",
			upload:  &model.Upload{Name: "cat.JPG", Size: limit, Body: bytes.NewReader(make([]byte, limit))},
			wantLen: limit,
		},
		{
			name:    "declared size too large",
			upload:  &model.Upload{Name: "big.png", Size: limit + 1, Body: failingReader{t: t}},
			wantErr: ErrTooLarge,
		},
		{
			name:    "body larger than declared",
			upload:  &model.Upload{Name: "liar.png", Size: 1, Body: bytes.NewReader(make([]byte, limit+5))},
			wantErr: ErrTooLarge,
		},
		{
			name:    "unexpected extension is still read",
			upload:  &model.Upload{Name: "cat.bmp", Size: 3, Body: bytes.NewReader([]byte("abc"))},
			wantLen: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSource(limit, nil, zap.NewNop())

			in, err := s.Obtain(context.Background(), tt.upload)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, model.OriginUpload, in.Origin)
			assert.Equal(t, tt.upload.Name, in.Name)
			assert.Len(t, in.Bytes, tt.wantLen)
		})
	}
}

func TestObtainDefault(t *testing.T) {
	t.Run("fallback image", func(t *testing.T) {
		s := NewSource(1, stubFallback{name: "zebra.jpg", raw: []byte("raw bytes")}, zap.NewNop())

		in, err := s.Obtain(context.Background(), nil)
		require.NoError(t, err)
		assert.Equal(t, model.OriginDefault, in.Origin)
		assert.Equal(t, "zebra.jpg", in.Name)
		// the upload limit does not apply to the bundled image
		assert.Equal(t, []byte("raw bytes"), in.Bytes)
	})

	t.Run("no fallback", func(t *testing.T) {
		_, err := NewSource(1, nil, zap.NewNop()).Obtain(context.Background(), nil)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("fallback failure reads as not found", func(t *testing.T) {
		s := NewSource(1, stubFallback{err: errors.New("permission denied")}, zap.NewNop())

		_, err := s.Obtain(context.Background(), nil)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Contains(t, err.Error(), "permission denied")
	})
}

func TestFileLoad(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "zebra.jpg")
	require.NoError(t, os.WriteFile(p, []byte("stripes"), 0o644))

	name, raw, err := NewFile(p).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "zebra.jpg", name)
	assert.Equal(t, []byte("stripes"), raw)

	_, _, err = NewFile(filepath.Join(dir, "missing.jpg")).Load(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)
}
