package ports

import "context"

// BlobStorage almacena archivos binarios (avatares) y los expone por URL estable.
type BlobStorage interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (url string, err error)
	URL(key string) string
}
