// Package identity implementa el servicio de autenticación: credenciales con hash bcrypt,
// limitación de intentos fallidos por email y un cliente por sesión con flujo de identidad.
package identity

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"

	"github.com/jhoicas/Activos-api/internal/application/ports"
	"github.com/jhoicas/Activos-api/internal/domain"
	"github.com/jhoicas/Activos-api/internal/domain/entity"
	"github.com/jhoicas/Activos-api/internal/domain/repository"
)

// Config parámetros del servicio.
type Config struct {
	// MaxFailedAttempts intentos fallidos permitidos por email dentro de Window.
	MaxFailedAttempts int
	Window            time.Duration
	MinPasswordLen    int
	// BcryptCost 0 usa bcrypt.DefaultCost.
	BcryptCost int
}

func (c Config) withDefaults() Config {
	if c.MaxFailedAttempts <= 0 {
		c.MaxFailedAttempts = 5
	}
	if c.Window <= 0 {
		c.Window = 15 * time.Minute
	}
	if c.MinPasswordLen <= 0 {
		c.MinPasswordLen = 8
	}
	if c.BcryptCost == 0 {
		c.BcryptCost = bcrypt.DefaultCost
	}
	return c
}

// Service es el servicio de identidad compartido por todos los clientes.
type Service struct {
	creds repository.CredentialRepository
	cfg   Config
	log   zerolog.Logger

	now func() time.Time

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	// pruneAt tamaño del mapa a partir del cual limiter descarta los contadores llenos.
	pruneAt int

	// dummyHash iguala el tiempo de respuesta cuando el email no existe.
	dummyHash []byte
}

// NewService construye el servicio sobre el repositorio de credenciales.
func NewService(creds repository.CredentialRepository, cfg Config, logger zerolog.Logger) *Service {
	cfg = cfg.withDefaults()
	dummy, _ := bcrypt.GenerateFromPassword([]byte("activos-dummy-password"), cfg.BcryptCost)
	return &Service{
		creds:     creds,
		cfg:       cfg,
		log:       logger.With().Str("component", "identity").Logger(),
		now:       time.Now,
		limiters:  make(map[string]*rate.Limiter),
		pruneAt:   minPruneAt,
		dummyHash: dummy,
	}
}

// NewClient crea un cliente sin identidad. Implementa ports.IdentityClient.
func (s *Service) NewClient() ports.IdentityClient {
	return newClient(s)
}

// Register crea una credencial con un UID nuevo. Lo usan los clientes y el seeder.
func (s *Service) Register(ctx context.Context, email, password string) (*entity.Credential, error) {
	email = normalizeEmail(email)
	if !govalidator.IsEmail(email) {
		return nil, &ports.ProviderError{Code: ports.CodeInvalidEmail}
	}
	if len(password) < s.cfg.MinPasswordLen {
		return nil, &ports.ProviderError{Code: ports.CodeWeakPassword}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	if err != nil {
		return nil, &ports.ProviderError{Code: ports.CodeInternal, Err: err}
	}
	cred := &entity.Credential{
		UID:          uuid.New().String(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}
	if err := s.creds.Create(ctx, cred); err != nil {
		if errors.Is(err, domain.ErrEmailAlreadyExists) {
			return nil, &ports.ProviderError{Code: ports.CodeEmailInUse, Err: err}
		}
		return nil, &ports.ProviderError{Code: ports.CodeInternal, Err: err}
	}
	s.log.Info().Str("uid", cred.UID).Msg("cuenta creada")
	return cred, nil
}

// Verify comprueba email y contraseña. Tras MaxFailedAttempts fallos dentro de Window
// responde auth/too-many-requests sin consultar el almacenamiento.
func (s *Service) Verify(ctx context.Context, email, password string) (*entity.Credential, error) {
	email = normalizeEmail(email)
	now := s.now()
	// Cada intento reserva un token antes de verificar; solo los fallos lo consumen.
	reservation := s.limiter(email).ReserveN(now, 1)
	if !reservation.OK() || reservation.DelayFrom(now) > 0 {
		reservation.CancelAt(now)
		return nil, &ports.ProviderError{Code: ports.CodeTooManyRequests}
	}

	cred, err := s.creds.GetByEmail(ctx, email)
	if err != nil {
		reservation.CancelAt(now)
		return nil, &ports.ProviderError{Code: ports.CodeInternal, Err: err}
	}
	if cred == nil {
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		return nil, &ports.ProviderError{Code: ports.CodeInvalidCredential}
	}
	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)); err != nil {
		s.log.Debug().Str("uid", cred.UID).Msg("contraseña incorrecta")
		return nil, &ports.ProviderError{Code: ports.CodeInvalidCredential}
	}
	s.forget(email)
	return cred, nil
}

// Remove elimina la credencial.
func (s *Service) Remove(ctx context.Context, uid string) error {
	if err := s.creds.Delete(ctx, uid); err != nil {
		return &ports.ProviderError{Code: ports.CodeInternal, Err: err}
	}
	return nil
}

const minPruneAt = 1024

func (s *Service) limiter(email string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()
	lim, ok := s.limiters[email]
	if !ok {
		if len(s.limiters) >= s.pruneAt {
			s.pruneLocked()
			s.pruneAt = max(minPruneAt, 2*len(s.limiters))
		}
		every := s.cfg.Window / time.Duration(s.cfg.MaxFailedAttempts)
		lim = rate.NewLimiter(rate.Every(every), s.cfg.MaxFailedAttempts)
		s.limiters[email] = lim
	}
	return lim
}

// Prune descarta los contadores de emails que ya recuperaron todos sus intentos.
// Devuelve cuántos quedan.
func (s *Service) Prune() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked()
	return len(s.limiters)
}

// pruneLocked requiere s.mu. Un contador lleno equivale a uno nuevo.
func (s *Service) pruneLocked() {
	now := s.now()
	full := float64(s.cfg.MaxFailedAttempts)
	for email, lim := range s.limiters {
		if lim.TokensAt(now) >= full {
			delete(s.limiters, email)
		}
	}
}

func (s *Service) forget(email string) {
	s.mu.Lock()
	delete(s.limiters, email)
	s.mu.Unlock()
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
