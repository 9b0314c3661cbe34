// Package ai contiene los adaptadores de IA generativa.
package ai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/jhoicas/Activos-api/internal/application/ports"
)

// Verificar en tiempo de compilación que AvatarService implementa AvatarGenerator.
var _ ports.AvatarGenerator = (*AvatarService)(nil)

// DefaultAvatarModel modelo de Gemini con salida de imagen.
const DefaultAvatarModel = "gemini-2.0-flash-preview-image-generation"

// ErrNoAPIKey se devuelve cuando no hay API key configurada.
var ErrNoAPIKey = errors.New("AI: AI_GEMINI_API_KEY no configurado")

// avatarPrompt fija el estilo; la descripción del usuario va al final.
const avatarPrompt = `Create a professional, high-quality avatar for a corporate profile: a close-up portrait of a person, photorealistic, with no text or logos. Description: %s`

// contentGenerator es el subconjunto de *genai.Models que usa el servicio.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// AvatarService genera avatares con Gemini a través del SDK google.golang.org/genai.
type AvatarService struct {
	models contentGenerator
	model  string
}

// NewAvatarService construye el adaptador. Si apiKey está vacío, las llamadas devuelven
// ErrNoAPIKey en lugar de fallar al arrancar.
func NewAvatarService(ctx context.Context, apiKey, model string) (*AvatarService, error) {
	if model == "" {
		model = DefaultAvatarModel
	}
	if apiKey == "" {
		return &AvatarService{model: model}, nil
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("AI: crear cliente GenAI: %w", err)
	}
	return &AvatarService{models: client.Models, model: model}, nil
}

// GenerateAvatar pide al modelo una imagen y la devuelve como data URI.
func (s *AvatarService) GenerateAvatar(ctx context.Context, prompt string) (string, error) {
	if s.models == nil {
		return "", ErrNoAPIKey
	}
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", fmt.Errorf("AI: la descripción del avatar es requerida")
	}

	contents := []*genai.Content{
		genai.NewContentFromText(fmt.Sprintf(avatarPrompt, prompt), genai.RoleUser),
	}
	resp, err := s.models.GenerateContent(ctx, s.model, contents, &genai.GenerateContentConfig{
		ResponseModalities: []string{"TEXT", "IMAGE"},
	})
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("AI: timeout o cancelación: %w", ctx.Err())
		}
		return "", fmt.Errorf("AI: generar avatar: %w", err)
	}
	return imageDataURI(resp)
}

// imageDataURI devuelve la primera imagen inline de la respuesta como data URI.
func imageDataURI(resp *genai.GenerateContentResponse) (string, error) {
	if resp != nil {
		for _, cand := range resp.Candidates {
			if cand == nil || cand.Content == nil {
				continue
			}
			for _, part := range cand.Content.Parts {
				if part == nil || part.InlineData == nil || len(part.InlineData.Data) == 0 {
					continue
				}
				mime := part.InlineData.MIMEType
				if !strings.HasPrefix(mime, "image/") {
					continue
				}
				return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(part.InlineData.Data), nil
			}
		}
	}
	return "", fmt.Errorf("AI: el modelo no devolvió una imagen")
}
