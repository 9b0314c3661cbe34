package session

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"

	"github.com/jhoicas/Activos-api/internal/domain"
)

// MaxAvatarBytes tamaño máximo aceptado para un avatar.
const MaxAvatarBytes = 5 << 20

var avatarExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// Avatar imagen a subir antes de guardarse en el perfil.
type Avatar struct {
	Data        []byte
	ContentType string
}

// Validate verifica tipo y tamaño.
func (a *Avatar) Validate() error {
	if len(a.Data) == 0 {
		return fmt.Errorf("%w: avatar vacío", domain.ErrInvalidInput)
	}
	if len(a.Data) > MaxAvatarBytes {
		return fmt.Errorf("%w: el avatar supera %d bytes", domain.ErrInvalidInput, MaxAvatarBytes)
	}
	if _, ok := avatarExtensions[a.ContentType]; !ok {
		return fmt.Errorf("%w: tipo de imagen %q no soportado", domain.ErrInvalidInput, a.ContentType)
	}
	return nil
}

// Extension extensión de archivo según el tipo de contenido.
func (a *Avatar) Extension() string {
	if ext, ok := avatarExtensions[a.ContentType]; ok {
		return ext
	}
	return ".bin"
}

// ParseDataURI decodifica "data:<mime>[;base64],<payload>".
func ParseDataURI(raw string) (*Avatar, error) {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(strings.ToLower(raw), "data:") {
		return nil, fmt.Errorf("%w: no es un data URI", domain.ErrInvalidInput)
	}
	header, payload, ok := strings.Cut(raw[len("data:"):], ",")
	if !ok {
		return nil, fmt.Errorf("%w: data URI sin payload", domain.ErrInvalidInput)
	}
	params := strings.Split(header, ";")
	contentType := strings.ToLower(strings.TrimSpace(params[0]))
	if contentType == "" {
		contentType = "text/plain"
	}
	isBase64 := false
	for _, p := range params[1:] {
		if strings.EqualFold(strings.TrimSpace(p), "base64") {
			isBase64 = true
		}
	}
	var data []byte
	if isBase64 {
		decoded, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: base64 inválido: %v", domain.ErrInvalidInput, err)
		}
		data = decoded
	} else {
		unescaped, err := url.PathUnescape(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: payload inválido: %v", domain.ErrInvalidInput, err)
		}
		data = []byte(unescaped)
	}
	return &Avatar{Data: data, ContentType: contentType}, nil
}
