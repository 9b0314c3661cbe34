// Package blob implementa ports.BlobStorage sobre un sistema de archivos afero.
package blob

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/spf13/afero"

	"github.com/jhoicas/Activos-api/internal/application/ports"
	"github.com/jhoicas/Activos-api/internal/domain"
)

var _ ports.BlobStorage = (*Store)(nil)

// Store guarda archivos bajo una raíz y los expone bajo baseURL.
// En producción usa afero.NewOsFs; en pruebas afero.NewMemMapFs.
type Store struct {
	fs      afero.Fs
	baseURL string
}

// New construye el store. root se crea si no existe.
func New(fs afero.Fs, root, baseURL string) (*Store, error) {
	if err := fs.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("crear directorio de blobs: %w", err)
	}
	return &Store{
		fs:      afero.NewBasePathFs(fs, root),
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

// FS devuelve el sistema de archivos con raíz en el directorio de blobs (para servir /files).
func (s *Store) FS() afero.Fs {
	return s.fs
}

// Upload escribe data bajo key de forma atómica (archivo temporal + rename) y devuelve su URL.
func (s *Store) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	clean, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	if err := s.fs.MkdirAll(path.Dir(clean), 0o755); err != nil {
		return "", fmt.Errorf("crear directorio: %w", err)
	}
	tmp := clean + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("escribir blob: %w", err)
	}
	if err := s.fs.Rename(tmp, clean); err != nil {
		_ = s.fs.Remove(tmp)
		return "", fmt.Errorf("publicar blob: %w", err)
	}
	return s.URL(clean), nil
}

// URL devuelve la URL pública de key.
func (s *Store) URL(key string) string {
	clean := strings.TrimPrefix(path.Clean("/"+key), "/")
	segments := strings.Split(clean, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return s.baseURL + "/" + strings.Join(segments, "/")
}

// cleanKey normaliza key y rechaza rutas que escapen de la raíz.
func cleanKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" || strings.Contains(key, "..") || strings.HasPrefix(key, "/") {
		return "", fmt.Errorf("%w: clave de blob inválida %q", domain.ErrInvalidInput, key)
	}
	return path.Clean(key), nil
}
