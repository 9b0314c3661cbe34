package dto

// SignupRequest entrada para registro propio. La cuenta nace inactiva.
type SignupRequest struct {
	Name     string `json:"name" valid:"required,length(1|200)"`
	Email    string `json:"email" valid:"required,email"`
	Password string `json:"password" valid:"required"`
}

// LoginRequest entrada para login.
type LoginRequest struct {
	Email    string `json:"email" valid:"required,email"`
	Password string `json:"password" valid:"required"`
}

// LoginResponse salida con token JWT de la sesión y el perfil.
type LoginResponse struct {
	Token   string           `json:"token"`
	Session SessionResponse  `json:"session"`
	User    EmployeeResponse `json:"user"`
}

// SignupResponse salida del registro. El token solo permite consultar o recargar la sesión
// hasta que un administrador active la cuenta.
type SignupResponse struct {
	Token   string           `json:"token"`
	Session SessionResponse  `json:"session"`
	User    EmployeeResponse `json:"user"`
}

// SessionResponse estado de la sesión del servidor.
type SessionResponse struct {
	ID      string `json:"id"`
	Status  string `json:"status"` // loading, unauthenticated, active, pending_activation
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

// UpdateProfileRequest cambios de autoservicio. avatar_url puede ser un data URI: se sube a
// blob storage y en el perfil queda la URL.
type UpdateProfileRequest struct {
	Name       *string `json:"name" valid:"-"`
	Department *string `json:"department" valid:"-"`
	JobTitle   *string `json:"job_title" valid:"-"`
	AvatarURL  *string `json:"avatar_url" valid:"-"`
}

// GenerateAvatarRequest descripción del avatar a generar con IA.
type GenerateAvatarRequest struct {
	Prompt string `json:"prompt" valid:"required,length(3|500)"`
}

// GenerateAvatarResponse previsualización (data URI). Para guardarla se envía como
// avatar_url en PUT /api/profile.
type GenerateAvatarResponse struct {
	AvatarURL string `json:"avatar_url"`
}
