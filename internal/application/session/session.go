// Package session reconcilia la identidad del proveedor de autenticación con el perfil
// local (Employee) y expone un único estado {identity, profile, loading}.
//
// Dos tareas escriben la misma celda de estado: el listener de identidad (con su lectura
// de perfil asíncrona) y las operaciones locales (Signup, Logout, UpdateUser). Cada evento
// de identidad recibe un número de secuencia; una lectura de perfil solo se confirma si su
// secuencia y su UID siguen siendo los últimos observados.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/Activos-api/internal/application/catalog"
	"github.com/jhoicas/Activos-api/internal/application/ports"
	"github.com/jhoicas/Activos-api/internal/domain"
	"github.com/jhoicas/Activos-api/internal/domain/entity"
)

// DefaultFetchTimeout límite de la lectura de perfil disparada por el listener.
const DefaultFetchTimeout = 10 * time.Second

// ProfileStore es la parte de la capa de datos que usa la sesión.
// Lo implementa *catalog.Store.
type ProfileStore interface {
	FetchEmployee(ctx context.Context, id string) (*entity.Employee, error)
	CreateProfile(ctx context.Context, employee *entity.Employee) error
	UpdateEmployee(ctx context.Context, id string, patch catalog.EmployeePatch) (*entity.Employee, error)
}

// Deps dependencias de una sesión.
type Deps struct {
	Client       ports.IdentityClient
	Profiles     ProfileStore
	Blobs        ports.BlobStorage
	Logger       zerolog.Logger
	FetchTimeout time.Duration
}

// Session es la capa de reconciliación de una sesión de usuario.
type Session struct {
	id           string
	client       ports.IdentityClient
	profiles     ProfileStore
	blobs        ports.BlobStorage
	log          zerolog.Logger
	fetchTimeout time.Duration

	mu          sync.Mutex
	state       Snapshot
	changed     chan struct{}
	seq         uint64          // secuencia del último evento de identidad
	current     *ports.Identity // última identidad observada
	subject     string          // UID al que se refiere el último estado resuelto
	signingUp   bool
	signupUID   string
	closed      bool
	unsubscribe func()
	now         func() time.Time
}

// New crea la sesión y la suscribe al flujo de identidad del cliente.
func New(id string, deps Deps) *Session {
	timeout := deps.FetchTimeout
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	s := &Session{
		id:           id,
		client:       deps.Client,
		profiles:     deps.Profiles,
		blobs:        deps.Blobs,
		log:          deps.Logger.With().Str("component", "session").Str("session_id", id).Logger(),
		fetchTimeout: timeout,
		state:        Snapshot{Status: StatusLoading},
		changed:      make(chan struct{}),
		now:          time.Now,
	}
	unsubscribe := s.client.OnIdentityChanged(s.handleIdentity)
	s.mu.Lock()
	s.unsubscribe = unsubscribe
	s.mu.Unlock()
	return s
}

// ID identificador de la sesión.
func (s *Session) ID() string { return s.id }

// Snapshot devuelve una copia del estado actual.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Allowed informa si la sesión puede usar la aplicación.
func (s *Session) Allowed() bool {
	return s.Snapshot().Allowed()
}

// Wait bloquea hasta que el estado deja de estar en Loading o ctx termina.
func (s *Session) Wait(ctx context.Context) (Snapshot, error) {
	return s.waitFor(ctx, func() bool { return s.state.Status != StatusLoading })
}

// Close cancela la suscripción al flujo de identidad. No cierra la sesión del proveedor.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	unsubscribe := s.unsubscribe
	s.mu.Unlock()
	if unsubscribe != nil {
		unsubscribe()
	}
}

// handleIdentity es el listener del proveedor. No bloquea: la lectura de perfil corre aparte.
func (s *Session) handleIdentity(ident *ports.Identity) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.seq++
	seq := s.seq

	if ident == nil {
		s.current = nil
		s.signupUID = ""
		if s.state.Status != StatusUnauthenticated {
			// Un rechazo ya dejó el estado en Unauthenticated con su motivo; no se pisa.
			s.subject = ""
			s.setLocked(Snapshot{Status: StatusUnauthenticated})
		}
		s.mu.Unlock()
		return
	}

	id := *ident
	s.current = &id
	if s.signupUID == id.UID {
		// Confirmación del registro local: el estado ya se fijó de forma optimista.
		s.mu.Unlock()
		s.log.Debug().Str("uid", id.UID).Msg("identidad de registro confirmada")
		return
	}
	s.setLocked(Snapshot{Status: StatusLoading, Identity: &id})
	if s.signingUp {
		// Signup fija el estado al terminar de escribir el perfil.
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	go s.reconcile(id, seq)
}

// reconcile lee el perfil de ident y aplica las reglas de acceso si el resultado sigue vigente.
func (s *Session) reconcile(ident ports.Identity, seq uint64) {
	ctx, cancel := context.WithTimeout(context.Background(), s.fetchTimeout)
	defer cancel()

	profile, err := s.profiles.FetchEmployee(ctx, ident.UID)

	s.mu.Lock()
	if s.closed || seq != s.seq || s.current == nil || s.current.UID != ident.UID {
		s.mu.Unlock()
		s.log.Debug().Str("uid", ident.UID).Msg("resultado de perfil obsoleto descartado")
		return
	}
	var reason error
	switch {
	case err != nil:
		reason = fmt.Errorf("no se pudo cargar el perfil: %w", err)
	case profile == nil:
		reason = domain.ErrProfileMissing
	case !profile.Active:
		reason = domain.ErrPendingActivation
	default:
		s.subject = ident.UID
		s.setLocked(Snapshot{Status: StatusActive, Identity: &ident, Profile: profile})
		s.mu.Unlock()
		s.log.Info().Str("uid", ident.UID).Str("role", profile.Role).Msg("sesión activa")
		return
	}
	s.rejectLocked(ident.UID, reason)
	s.mu.Unlock()

	s.log.Warn().Err(reason).Str("uid", ident.UID).Msg("identidad rechazada, cerrando sesión del proveedor")
	if err := s.client.SignOut(ctx); err != nil {
		s.log.Error().Err(err).Msg("cerrar sesión del proveedor")
	}
}

// Login delega la verificación de credenciales al proveedor y espera la transición que
// produce el listener para esa identidad. No fija el estado por sí mismo.
func (s *Session) Login(ctx context.Context, email, password string) error {
	ident, err := s.client.SignIn(ctx, strings.TrimSpace(email), password)
	if err != nil {
		return &AuthError{Code: classifyProvider(err), Err: err}
	}
	snap, err := s.waitFor(ctx, func() bool {
		return s.state.Status != StatusLoading && s.subject == ident.UID
	})
	if err != nil {
		return &AuthError{Code: CodeUnknown, Err: err}
	}
	if snap.Allowed() {
		return nil
	}
	reason := snap.Err
	if reason == nil {
		reason = domain.ErrPendingActivation
	}
	return &AuthError{Code: classifyRejection(reason), Err: reason}
}

// Signup crea la identidad, escribe el perfil {active:false, role:Employee} con el mismo ID
// y fija el estado local de inmediato, sin esperar al listener: la lectura del listener
// podría correr antes de que el perfil exista y rechazar a un usuario recién creado.
// Como el perfil nace inactivo el estado resultante es StatusPendingActivation.
func (s *Session) Signup(ctx context.Context, name, email, password string) (*entity.Employee, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" {
		return nil, fmt.Errorf("%w: el nombre es requerido", domain.ErrInvalidInput)
	}

	s.mu.Lock()
	s.signingUp = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.signingUp = false
		s.mu.Unlock()
	}()

	ident, err := s.client.SignUp(ctx, email, password)
	if err != nil {
		return nil, signupError(err)
	}

	s.mu.Lock()
	s.signupUID = ident.UID
	s.mu.Unlock()

	profile := &entity.Employee{
		ID:         ident.UID,
		Name:       name,
		Email:      email,
		Department: entity.DefaultDepartment,
		JobTitle:   entity.DefaultJobTitle,
		AvatarURL:  "",
		Role:       entity.RoleEmployee,
		Active:     false,
	}
	if err := s.profiles.CreateProfile(ctx, profile); err != nil {
		s.log.Error().Err(err).Str("uid", ident.UID).Msg("no se pudo crear el perfil, revirtiendo la cuenta")
		s.mu.Lock()
		s.signupUID = ""
		s.rejectLocked(ident.UID, err)
		s.mu.Unlock()
		if derr := s.client.DeleteAccount(ctx); derr != nil {
			s.log.Error().Err(derr).Str("uid", ident.UID).Msg("revertir cuenta")
		}
		return nil, err
	}

	s.mu.Lock()
	if s.current != nil && s.current.UID == ident.UID {
		id := *ident
		s.subject = ident.UID
		s.setLocked(Snapshot{Status: StatusPendingActivation, Identity: &id, Profile: profile})
	}
	s.mu.Unlock()
	s.log.Info().Str("uid", ident.UID).Msg("cuenta creada, pendiente de activación")
	return profile, nil
}

// Logout cierra la sesión del proveedor y deja el estado en Unauthenticated, sin esperar a
// ninguna lectura de perfil en curso (su resultado se descarta).
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.seq++
	s.current = nil
	s.signupUID = ""
	s.subject = ""
	s.setLocked(Snapshot{Status: StatusUnauthenticated})
	s.mu.Unlock()
	return s.client.SignOut(ctx)
}

// Reload vuelve a reconciliar la identidad actual (p. ej. después de que un administrador
// activó la cuenta). Devuelve el estado resultante.
func (s *Session) Reload(ctx context.Context) (Snapshot, error) {
	s.mu.Lock()
	if s.current == nil {
		snap := s.state.clone()
		s.mu.Unlock()
		return snap, domain.ErrNotAuthenticated
	}
	s.seq++
	seq := s.seq
	ident := *s.current
	s.signupUID = ""
	s.setLocked(Snapshot{Status: StatusLoading, Identity: &ident})
	s.mu.Unlock()

	s.reconcile(ident, seq)
	return s.Snapshot(), nil
}

// UpdateUser guarda cambios de autoservicio del perfil. Si se entrega un avatar, se sube
// primero a blob storage y en el perfil se guarda la URL resultante.
func (s *Session) UpdateUser(ctx context.Context, patch catalog.EmployeePatch, avatar *Avatar) (*entity.Employee, error) {
	snap := s.Snapshot()
	if !snap.Allowed() {
		return nil, domain.ErrNotAuthenticated
	}
	if patch.Role != nil || patch.Active != nil {
		return nil, fmt.Errorf("%w: rol y estado solo los cambia un administrador", domain.ErrForbidden)
	}
	uid := snap.Profile.ID

	if avatar == nil && patch.AvatarURL != nil && catalog.IsInlinePayload(*patch.AvatarURL) {
		parsed, err := ParseDataURI(*patch.AvatarURL)
		if err != nil {
			return nil, err
		}
		avatar = parsed
	}
	if avatar != nil {
		url, err := s.uploadAvatar(ctx, uid, avatar)
		if err != nil {
			return nil, err
		}
		patch.AvatarURL = &url
	}
	if patch.Empty() {
		return snap.Profile, nil
	}

	updated, err := s.profiles.UpdateEmployee(ctx, uid, patch)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.state.Profile != nil && s.state.Profile.ID == uid {
		next := s.state
		p := *updated
		next.Profile = &p
		s.setLocked(next)
	}
	s.mu.Unlock()
	return updated, nil
}

func (s *Session) uploadAvatar(ctx context.Context, uid string, avatar *Avatar) (string, error) {
	if s.blobs == nil {
		return "", errors.New("blob storage no configurado")
	}
	if err := avatar.Validate(); err != nil {
		return "", err
	}
	key := fmt.Sprintf("avatars/%s/%d%s", uid, s.now().UnixNano(), avatar.Extension())
	url, err := s.blobs.Upload(ctx, key, avatar.Data, avatar.ContentType)
	if err != nil {
		return "", fmt.Errorf("subir avatar: %w", err)
	}
	return url, nil
}

// rejectLocked deja el estado en Unauthenticated con el motivo. Requiere s.mu.
func (s *Session) rejectLocked(uid string, reason error) {
	s.subject = uid
	s.setLocked(Snapshot{Status: StatusUnauthenticated, Err: reason})
}

// setLocked reemplaza el estado y despierta a quien espere un cambio. Requiere s.mu.
func (s *Session) setLocked(next Snapshot) {
	s.state = next
	close(s.changed)
	s.changed = make(chan struct{})
}

func (s *Session) waitFor(ctx context.Context, done func() bool) (Snapshot, error) {
	for {
		s.mu.Lock()
		if done() {
			snap := s.state.clone()
			s.mu.Unlock()
			return snap, nil
		}
		ch := s.changed
		s.mu.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			return s.Snapshot(), ctx.Err()
		}
	}
}

func signupError(err error) error {
	switch ports.ProviderCode(err) {
	case ports.CodeEmailInUse:
		return fmt.Errorf("%w: %v", domain.ErrEmailAlreadyExists, err)
	case ports.CodeWeakPassword:
		return fmt.Errorf("%w: %v", domain.ErrWeakPassword, err)
	case ports.CodeInvalidEmail:
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	case ports.CodeTooManyRequests:
		return fmt.Errorf("%w: %v", domain.ErrTooManyRequests, err)
	}
	return err
}
