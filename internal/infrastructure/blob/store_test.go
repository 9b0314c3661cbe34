package blob

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Activos-api/internal/domain"
)

func newTestStore(t *testing.T) (*Store, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	s, err := New(fs, "/data/blobs", "http://localhost:8080/files/")
	require.NoError(t, err)
	return s, fs
}

func TestUpload_EscribeYDevuelveURL(t *testing.T) {
	s, fs := newTestStore(t)

	url, err := s.Upload(context.Background(), "avatars/u1/1.png", []byte("png"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/files/avatars/u1/1.png", url)

	data, err := afero.ReadFile(fs, "/data/blobs/avatars/u1/1.png")
	require.NoError(t, err)
	assert.Equal(t, []byte("png"), data)

	exists, err := afero.Exists(fs, "/data/blobs/avatars/u1/1.png.tmp")
	require.NoError(t, err)
	assert.False(t, exists, "no debe quedar el archivo temporal")
}

func TestUpload_RechazaRutasFueraDeLaRaiz(t *testing.T) {
	s, _ := newTestStore(t)
	for _, key := range []string{"", "../etc/passwd", "/abs/path", "a/../../b"} {
		_, err := s.Upload(context.Background(), key, []byte("x"), "text/plain")
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "clave %q", key)
	}
}

func TestUpload_ContextoCancelado(t *testing.T) {
	s, _ := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Upload(ctx, "avatars/u1/1.png", []byte("x"), "image/png")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestURL_EscapaSegmentos(t *testing.T) {
	s, _ := newTestStore(t)
	assert.Equal(t, "http://localhost:8080/files/avatars/a%20b/1.png", s.URL("avatars/a b/1.png"))
}
