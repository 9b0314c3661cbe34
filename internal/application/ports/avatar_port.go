package ports

import "context"

// AvatarGenerator define el puerto de salida para generar avatares con IA.
// El resultado es un data URI para previsualizar; nunca se guarda así en el perfil.
type AvatarGenerator interface {
	// GenerateAvatar produce un retrato a partir de una descripción en texto.
	// El contexto debe llevar un timeout para evitar bloqueos en llamadas externas.
	GenerateAvatar(ctx context.Context, prompt string) (dataURI string, err error)
}
