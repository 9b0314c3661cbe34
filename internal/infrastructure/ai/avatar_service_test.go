package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type fakeModels struct {
	resp   *genai.GenerateContentResponse
	err    error
	model  string
	prompt string
	config *genai.GenerateContentConfig
}

func (f *fakeModels) GenerateContent(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model = model
	f.config = config
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		f.prompt = contents[0].Parts[0].Text
	}
	return f.resp, f.err
}

func imageResponse(parts ...*genai.Part) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: parts}}},
	}
}

func TestGenerateAvatar_DevuelveDataURI(t *testing.T) {
	fake := &fakeModels{resp: imageResponse(
		&genai.Part{Text: "aquí está"},
		&genai.Part{InlineData: &genai.Blob{MIMEType: "image/png", Data: []byte{0x89, 'P', 'N', 'G'}}},
	)}
	svc := &AvatarService{models: fake, model: DefaultAvatarModel}

	uri, err := svc.GenerateAvatar(context.Background(), "  ingeniera con gafas ")
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,iVBORw==", uri)
	assert.Equal(t, DefaultAvatarModel, fake.model)
	assert.Contains(t, fake.prompt, "ingeniera con gafas")
	assert.Equal(t, []string{"TEXT", "IMAGE"}, fake.config.ResponseModalities)
}

func TestGenerateAvatar_SinImagen(t *testing.T) {
	svc := &AvatarService{models: &fakeModels{resp: imageResponse(&genai.Part{Text: "no puedo"})}}
	_, err := svc.GenerateAvatar(context.Background(), "retrato")
	require.Error(t, err)
}

func TestGenerateAvatar_ErrorDelModelo(t *testing.T) {
	svc := &AvatarService{models: &fakeModels{err: errors.New("quota")}}
	_, err := svc.GenerateAvatar(context.Background(), "retrato")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota")
}

func TestGenerateAvatar_SinAPIKey(t *testing.T) {
	svc, err := NewAvatarService(context.Background(), "", "")
	require.NoError(t, err)
	_, err = svc.GenerateAvatar(context.Background(), "retrato")
	assert.ErrorIs(t, err, ErrNoAPIKey)
}

func TestGenerateAvatar_PromptVacio(t *testing.T) {
	fake := &fakeModels{}
	svc := &AvatarService{models: fake}
	_, err := svc.GenerateAvatar(context.Background(), "   ")
	require.Error(t, err)
	assert.Empty(t, fake.model, "no debe llamar al modelo")
}
