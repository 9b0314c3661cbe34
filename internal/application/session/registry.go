package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Activos-api/internal/application/ports"
)

// ClientFactory crea un cliente de identidad nuevo para cada sesión.
type ClientFactory func() ports.IdentityClient

// RegistryDeps dependencias del registro de sesiones.
type RegistryDeps struct {
	NewClient    ClientFactory
	Profiles     ProfileStore
	Blobs        ports.BlobStorage
	Logger       zerolog.Logger
	FetchTimeout time.Duration
	// TTL vida de una sesión desde que se abre o se extiende; igual a la del token.
	// 0 = sin vencimiento.
	TTL time.Duration
	// Now reloj; nil usa time.Now.
	Now func() time.Time
}

type registryEntry struct {
	session *Session
	expires time.Time // cero = no vence
}

// Registry mantiene una Session por login. La API HTTP identifica la sesión por el ID que
// viaja en el token.
type Registry struct {
	deps     RegistryDeps
	log      zerolog.Logger
	now      func() time.Time
	mu       sync.RWMutex
	sessions map[string]*registryEntry
}

// NewRegistry construye el registro.
func NewRegistry(deps RegistryDeps) *Registry {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &Registry{
		deps:     deps,
		log:      deps.Logger.With().Str("component", "session_registry").Logger(),
		now:      now,
		sessions: make(map[string]*registryEntry),
	}
}

// Open crea y registra una sesión nueva, sin identidad.
func (r *Registry) Open() *Session {
	id := uuid.New().String()
	s := New(id, Deps{
		Client:       r.deps.NewClient(),
		Profiles:     r.deps.Profiles,
		Blobs:        r.deps.Blobs,
		Logger:       r.deps.Logger,
		FetchTimeout: r.deps.FetchTimeout,
	})
	r.mu.Lock()
	r.sessions[id] = &registryEntry{session: s, expires: r.expiry()}
	r.mu.Unlock()
	return s
}

// Get devuelve la sesión o nil si no existe o ya venció.
func (r *Registry) Get(id string) *Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.sessions[id]
	if !ok || e.expired(r.now()) {
		return nil
	}
	return e.session
}

// Extend renueva el vencimiento de la sesión (token reemitido). Devuelve false si la
// sesión ya no existe o venció.
func (r *Registry) Extend(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[id]
	if !ok || e.expired(r.now()) {
		return false
	}
	e.expires = r.expiry()
	return true
}

// Close cierra la sesión del proveedor y la elimina del registro.
func (r *Registry) Close(ctx context.Context, id string) error {
	r.mu.Lock()
	e, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if !ok {
		return nil
	}
	err := e.session.Logout(ctx)
	e.session.Close()
	return err
}

// Discard elimina la sesión del registro sin tocar al proveedor (login fallido).
func (r *Registry) Discard(id string) {
	r.mu.Lock()
	e, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if ok {
		e.session.Close()
	}
}

// RevokeUser cierra todas las sesiones del usuario (desactivado o eliminado por un
// administrador). Devuelve cuántas se cerraron.
func (r *Registry) RevokeUser(ctx context.Context, uid string) int {
	r.mu.RLock()
	var ids []string
	for id, e := range r.sessions {
		snap := e.session.Snapshot()
		if snap.Identity != nil && snap.Identity.UID == uid {
			ids = append(ids, id)
		}
	}
	r.mu.RUnlock()

	for _, id := range ids {
		if err := r.Close(ctx, id); err != nil {
			r.log.Warn().Err(err).Str("session_id", id).Msg("revocar sesión")
		}
	}
	if len(ids) > 0 {
		r.log.Info().Str("uid", uid).Int("sessions", len(ids)).Msg("sesiones revocadas")
	}
	return len(ids)
}

// Prune cierra las sesiones vencidas. Devuelve cuántas se cerraron.
func (r *Registry) Prune(ctx context.Context) int {
	now := r.now()
	r.mu.RLock()
	var ids []string
	for id, e := range r.sessions {
		if e.expired(now) {
			ids = append(ids, id)
		}
	}
	r.mu.RUnlock()

	for _, id := range ids {
		if err := r.Close(ctx, id); err != nil {
			r.log.Warn().Err(err).Str("session_id", id).Msg("cerrar sesión vencida")
		}
	}
	if len(ids) > 0 {
		r.log.Debug().Int("sessions", len(ids)).Msg("sesiones vencidas cerradas")
	}
	return len(ids)
}

// Run ejecuta Prune cada interval hasta que ctx se cancele.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Prune(ctx)
		}
	}
}

// Len cantidad de sesiones abiertas.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

func (r *Registry) expiry() time.Time {
	if r.deps.TTL <= 0 {
		return time.Time{}
	}
	return r.now().Add(r.deps.TTL)
}

func (e *registryEntry) expired(now time.Time) bool {
	return !e.expires.IsZero() && !now.Before(e.expires)
}
