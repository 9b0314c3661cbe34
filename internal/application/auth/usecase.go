// Package auth expone el flujo de sesión (registro, login, logout, perfil propio) sobre el
// registro de sesiones y emite los tokens que identifican cada sesión.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/Activos-api/internal/application/catalog"
	"github.com/jhoicas/Activos-api/internal/application/dto"
	"github.com/jhoicas/Activos-api/internal/application/ports"
	"github.com/jhoicas/Activos-api/internal/application/session"
	"github.com/jhoicas/Activos-api/internal/application/usecase"
	"github.com/jhoicas/Activos-api/internal/domain"
	"github.com/jhoicas/Activos-api/pkg/jwt"
)

// avatarTimeout tope de la llamada al generador de avatares.
const avatarTimeout = 60 * time.Second

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase casos de uso de autenticación y perfil propio.
type AuthUseCase struct {
	sessions     *session.Registry
	avatars      ports.AvatarGenerator
	jwtCfg       JWTConfig
	loginTimeout time.Duration
	log          zerolog.Logger
}

// NewAuthUseCase construye el caso de uso. avatars puede ser nil (generación deshabilitada).
func NewAuthUseCase(sessions *session.Registry, avatars ports.AvatarGenerator, jwtCfg JWTConfig, loginTimeout time.Duration, logger zerolog.Logger) *AuthUseCase {
	if loginTimeout <= 0 {
		loginTimeout = session.DefaultFetchTimeout
	}
	return &AuthUseCase{
		sessions:     sessions,
		avatars:      avatars,
		jwtCfg:       jwtCfg,
		loginTimeout: loginTimeout,
		log:          logger.With().Str("component", "auth").Logger(),
	}
}

// Signup registra una cuenta nueva. La sesión queda en PENDING_ACTIVATION: el token solo
// sirve para consultar o recargar la sesión hasta que un administrador active el perfil.
func (uc *AuthUseCase) Signup(ctx context.Context, in dto.SignupRequest) (*dto.SignupResponse, error) {
	s := uc.sessions.Open()
	profile, err := s.Signup(ctx, in.Name, in.Email, in.Password)
	if err != nil {
		uc.sessions.Discard(s.ID())
		return nil, err
	}
	token, err := uc.token(profile.ID, s.ID(), profile.Role)
	if err != nil {
		_ = uc.sessions.Close(ctx, s.ID())
		return nil, err
	}
	return &dto.SignupResponse{
		Token:   token,
		Session: sessionResponse(s.ID(), s.Snapshot()),
		User:    *usecase.ToEmployeeResponse(profile),
	}, nil
}

// Login abre una sesión, espera la reconciliación del perfil y emite el token.
// Los errores son *session.AuthError con un código de la taxonomía cerrada.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	s := uc.sessions.Open()
	loginCtx, cancel := context.WithTimeout(ctx, uc.loginTimeout)
	defer cancel()

	if err := s.Login(loginCtx, in.Email, in.Password); err != nil {
		if cerr := uc.sessions.Close(context.WithoutCancel(ctx), s.ID()); cerr != nil {
			uc.log.Warn().Err(cerr).Str("session_id", s.ID()).Msg("cerrar sesión de login fallido")
		}
		uc.log.Info().Str("code", string(session.CodeOf(err))).Msg("login rechazado")
		return nil, err
	}
	snap := s.Snapshot()
	token, err := uc.token(snap.Profile.ID, s.ID(), snap.Profile.Role)
	if err != nil {
		_ = uc.sessions.Close(ctx, s.ID())
		return nil, err
	}
	uc.log.Info().Str("uid", snap.Profile.ID).Str("session_id", s.ID()).Msg("login")
	return &dto.LoginResponse{
		Token:   token,
		Session: sessionResponse(s.ID(), snap),
		User:    *usecase.ToEmployeeResponse(snap.Profile),
	}, nil
}

// Logout cierra la sesión.
func (uc *AuthUseCase) Logout(ctx context.Context, sessionID string) error {
	return uc.sessions.Close(ctx, sessionID)
}

// Session devuelve el estado de la sesión.
func (uc *AuthUseCase) Session(sessionID string) (*dto.SessionResponse, error) {
	s := uc.sessions.Get(sessionID)
	if s == nil {
		return nil, domain.ErrNotAuthenticated
	}
	out := sessionResponse(sessionID, s.Snapshot())
	return &out, nil
}

// Reload vuelve a reconciliar el perfil de la sesión. Si ahora está activa, emite un token
// nuevo con el rol vigente.
func (uc *AuthUseCase) Reload(ctx context.Context, sessionID string) (*dto.LoginResponse, error) {
	s := uc.sessions.Get(sessionID)
	if s == nil {
		return nil, domain.ErrNotAuthenticated
	}
	reloadCtx, cancel := context.WithTimeout(ctx, uc.loginTimeout)
	defer cancel()
	snap, err := s.Reload(reloadCtx)
	if err != nil {
		return nil, err
	}
	out := &dto.LoginResponse{Session: sessionResponse(sessionID, snap)}
	if snap.Profile != nil {
		out.User = *usecase.ToEmployeeResponse(snap.Profile)
	}
	if !snap.Allowed() {
		// El rechazo cerró la sesión del proveedor; el registro ya no la necesita.
		uc.sessions.Discard(sessionID)
		return out, nil
	}
	token, err := uc.token(snap.Profile.ID, sessionID, snap.Profile.Role)
	if err != nil {
		return nil, err
	}
	out.Token = token
	return out, nil
}

// Profile devuelve el perfil de la sesión activa.
func (uc *AuthUseCase) Profile(sessionID string) (*dto.EmployeeResponse, error) {
	s := uc.sessions.Get(sessionID)
	if s == nil {
		return nil, domain.ErrNotAuthenticated
	}
	snap := s.Snapshot()
	if !snap.Allowed() {
		return nil, domain.ErrNotAuthenticated
	}
	return usecase.ToEmployeeResponse(snap.Profile), nil
}

// UpdateProfile guarda cambios de autoservicio. Un avatar_url en data URI se sube a blob
// storage antes de guardarse.
func (uc *AuthUseCase) UpdateProfile(ctx context.Context, sessionID string, in dto.UpdateProfileRequest, avatar *session.Avatar) (*dto.EmployeeResponse, error) {
	s := uc.sessions.Get(sessionID)
	if s == nil {
		return nil, domain.ErrNotAuthenticated
	}
	updated, err := s.UpdateUser(ctx, catalog.EmployeePatch{
		Name:       in.Name,
		Department: in.Department,
		JobTitle:   in.JobTitle,
		AvatarURL:  in.AvatarURL,
	}, avatar)
	if err != nil {
		return nil, err
	}
	return usecase.ToEmployeeResponse(updated), nil
}

// GenerateAvatar genera una previsualización de avatar con IA (data URI).
func (uc *AuthUseCase) GenerateAvatar(ctx context.Context, in dto.GenerateAvatarRequest) (*dto.GenerateAvatarResponse, error) {
	if uc.avatars == nil {
		return nil, fmt.Errorf("%w: generación de avatares no configurada", domain.ErrConflict)
	}
	ctx, cancel := context.WithTimeout(ctx, avatarTimeout)
	defer cancel()
	uri, err := uc.avatars.GenerateAvatar(ctx, strings.TrimSpace(in.Prompt))
	if err != nil {
		return nil, err
	}
	return &dto.GenerateAvatarResponse{AvatarURL: uri}, nil
}

func (uc *AuthUseCase) token(userID, sessionID, role string) (string, error) {
	tok, err := jwt.Generate(uc.jwtCfg.Secret, userID, sessionID, role, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return "", fmt.Errorf("emitir token: %w", err)
	}
	// La sesión vive lo mismo que el último token emitido.
	uc.sessions.Extend(sessionID)
	return tok, nil
}

func sessionResponse(id string, snap session.Snapshot) dto.SessionResponse {
	out := dto.SessionResponse{ID: id, Status: snap.Status.String(), Allowed: snap.Allowed()}
	if snap.Err != nil {
		out.Reason = string(reasonCode(snap.Err))
	}
	return out
}

func reasonCode(err error) session.LoginCode {
	switch {
	case errors.Is(err, domain.ErrPendingActivation):
		return session.CodeAccountNotActive
	case errors.Is(err, domain.ErrProfileMissing):
		return session.CodeInvalidCredentials
	}
	return session.CodeUnknown
}
