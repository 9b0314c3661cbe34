package http_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	appanalytics "github.com/jhoicas/Activos-api/internal/application/analytics"
	"github.com/jhoicas/Activos-api/internal/application/auth"
	"github.com/jhoicas/Activos-api/internal/application/catalog"
	"github.com/jhoicas/Activos-api/internal/application/dto"
	"github.com/jhoicas/Activos-api/internal/application/refresh"
	"github.com/jhoicas/Activos-api/internal/application/session"
	"github.com/jhoicas/Activos-api/internal/application/usecase"
	"github.com/jhoicas/Activos-api/internal/domain/entity"
	"github.com/jhoicas/Activos-api/internal/infrastructure/blob"
	"github.com/jhoicas/Activos-api/internal/infrastructure/identity"
	"github.com/jhoicas/Activos-api/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/Activos-api/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// Entorno de integración: router completo sobre el driver en memoria
// ──────────────────────────────────────────────────────────────────────────────

type testEnv struct {
	app      *fiber.App
	store    *catalog.Store
	ids      *identity.Service
	sessions *session.Registry
	signal   *refresh.Signal
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	repos := memory.New().Repositories()
	sig := refresh.NewSignal()
	store := catalog.NewStore(catalog.StoreDeps{
		Companies: repos.Companies,
		Employees: repos.Employees,
		Assets:    repos.Assets,
		Activity:  repos.Activity,
		Tx:        repos.Tx,
		Notifier:  sig,
	})
	ids := identity.NewService(repos.Credentials, identity.Config{BcryptCost: bcrypt.MinCost}, zerolog.Nop())
	blobs, err := blob.New(afero.NewMemMapFs(), "/blobs", "http://test/files")
	require.NoError(t, err)

	sessions := session.NewRegistry(session.RegistryDeps{
		NewClient:    ids.NewClient,
		Profiles:     store,
		Blobs:        blobs,
		Logger:       zerolog.Nop(),
		FetchTimeout: 2 * time.Second,
	})
	authUC := auth.NewAuthUseCase(sessions, nil, auth.JWTConfig{
		Secret:     testJWTSecret,
		ExpMinutes: testExpMin,
		Issuer:     testIssuer,
	}, 2*time.Second, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler})
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC:      authUC,
		CompanyUC:   usecase.NewCompanyUseCase(store),
		EmployeeUC:  usecase.NewEmployeeUseCase(store, sessions, zerolog.Nop()),
		AssetUC:     usecase.NewAssetUseCase(store),
		DashboardUC: appanalytics.NewDashboardUseCase(store),
		Refresh:     apphttp.NewRefreshHandler(ctx, sig, time.Second),
		Sessions:    sessions,
		Files:       afero.NewHttpFs(blobs.FS()),
		JWTSecret:   testJWTSecret,
	})
	return &testEnv{app: app, store: store, ids: ids, sessions: sessions, signal: sig}
}

// addAccount crea identidad y perfil directamente (como lo hace cmd/seed).
func (e *testEnv) addAccount(t *testing.T, email, role string, active bool) string {
	t.Helper()
	ctx := context.Background()
	cred, err := e.ids.Register(ctx, email, "password123")
	require.NoError(t, err)
	require.NoError(t, e.store.CreateProfile(ctx, &entity.Employee{
		ID: cred.UID, Name: strings.Split(email, "@")[0], Email: cred.Email,
		Department: "IT", JobTitle: "Staff", Role: role, Active: active,
	}))
	return cred.UID
}

func (e *testEnv) login(t *testing.T, email string) string {
	t.Helper()
	resp, body := e.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": email, "password": "password123"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var out dto.LoginResponse
	require.NoError(t, json.Unmarshal(body, &out))
	require.NotEmpty(t, out.Token)
	return out.Token
}

func (e *testEnv) do(t *testing.T, method, path, token string, payload any) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	return resp, body
}

func decode[T any](t *testing.T, body []byte) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(body, &out), string(body))
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// Registro, login y activación
// ──────────────────────────────────────────────────────────────────────────────

func TestSignup_CuentaQuedaPendiente(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"name": "Nuevo", "email": "nuevo@example.com", "password": "password123",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	out := decode[dto.SignupResponse](t, body)
	assert.Equal(t, "pending_activation", out.Session.Status)
	assert.False(t, out.Session.Allowed)
	assert.False(t, out.User.Active)
	assert.Equal(t, entity.RoleEmployee, out.User.Role)
	assert.Equal(t, entity.DefaultDepartment, out.User.Department)

	// El token de registro no abre rutas de la aplicación...
	resp, body = env.do(t, http.MethodGet, "/api/profile", out.Token, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Contains(t, string(body), string(session.CodeAccountNotActive))

	// ...pero sí permite consultar la sesión.
	resp, body = env.do(t, http.MethodGet, "/api/auth/session", out.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "pending_activation", decode[dto.SessionResponse](t, body).Status)
}

func TestSignup_EmailDuplicado(t *testing.T) {
	env := newTestEnv(t)
	env.addAccount(t, "ana@example.com", entity.RoleEmployee, true)

	resp, body := env.do(t, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"name": "Ana", "email": "ana@example.com", "password": "password123",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode, string(body))
}

func TestLogin_CodigosDeError(t *testing.T) {
	env := newTestEnv(t)
	env.addAccount(t, "activo@example.com", entity.RoleEmployee, true)
	env.addAccount(t, "pendiente@example.com", entity.RoleEmployee, false)

	resp, body := env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "activo@example.com", "password": "mala-clave"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, string(body), string(session.CodeInvalidCredentials))

	resp, body = env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "pendiente@example.com", "password": "password123"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Contains(t, string(body), string(session.CodeAccountNotActive))

	assert.Zero(t, env.sessions.Len(), "los logins fallidos no dejan sesiones abiertas")
}

func TestActivacion_ReloadEmiteTokenActivo(t *testing.T) {
	env := newTestEnv(t)
	env.addAccount(t, "admin@example.com", entity.RoleAdmin, true)
	adminToken := env.login(t, "admin@example.com")

	resp, body := env.do(t, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"name": "Luis", "email": "luis@example.com", "password": "password123",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	signup := decode[dto.SignupResponse](t, body)

	resp, body = env.do(t, http.MethodPut, "/api/employees/"+signup.User.ID, adminToken, map[string]any{"active": true})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	resp, body = env.do(t, http.MethodPost, "/api/auth/reload", signup.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	reloaded := decode[dto.LoginResponse](t, body)
	assert.True(t, reloaded.Session.Allowed)
	require.NotEmpty(t, reloaded.Token)

	resp, body = env.do(t, http.MethodGet, "/api/profile", reloaded.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.True(t, decode[dto.EmployeeResponse](t, body).Active)
}

func TestDesactivarEmpleado_RevocaSusSesiones(t *testing.T) {
	env := newTestEnv(t)
	env.addAccount(t, "admin@example.com", entity.RoleAdmin, true)
	uid := env.addAccount(t, "emp@example.com", entity.RoleEmployee, true)
	adminToken := env.login(t, "admin@example.com")
	empToken := env.login(t, "emp@example.com")

	resp, _ := env.do(t, http.MethodGet, "/api/companies", empToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := env.do(t, http.MethodPut, "/api/employees/"+uid, adminToken, map[string]any{"active": false})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	resp, body = env.do(t, http.MethodGet, "/api/companies", empToken, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, string(body), "SESSION_EXPIRED")
}

func TestLogout_InvalidaToken(t *testing.T) {
	env := newTestEnv(t)
	env.addAccount(t, "emp@example.com", entity.RoleEmployee, true)
	token := env.login(t, "emp@example.com")

	resp, _ := env.do(t, http.MethodPost, "/api/auth/logout", token, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = env.do(t, http.MethodGet, "/api/profile", token, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Empresas, activos y actividad
// ──────────────────────────────────────────────────────────────────────────────

func createCompany(t *testing.T, env *testEnv, token, name string) dto.CompanyResponse {
	t.Helper()
	resp, body := env.do(t, http.MethodPost, "/api/companies", token, map[string]string{"name": name})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	return decode[dto.CompanyResponse](t, body)
}

func createAsset(t *testing.T, env *testEnv, token, companyID, tag string) dto.AssetResponse {
	t.Helper()
	resp, body := env.do(t, http.MethodPost, "/api/assets", token, map[string]any{
		"serial_number": "SN-" + tag,
		"tag_no":        tag,
		"category":      entity.CategoryLaptop,
		"company_id":    companyID,
		"brand":         "Lenovo",
		"model":         "T14",
		"purchase_date": "2024-03-15",
		"asset_value":   "1250.50",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	return decode[dto.AssetResponse](t, body)
}

func TestCompanies_SoloAdminCrea(t *testing.T) {
	env := newTestEnv(t)
	env.addAccount(t, "emp@example.com", entity.RoleEmployee, true)
	token := env.login(t, "emp@example.com")

	resp, body := env.do(t, http.MethodPost, "/api/companies", token, map[string]string{"name": "Acme"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Contains(t, string(body), "FORBIDDEN")
}

func TestAssets_FlujoCompleto(t *testing.T) {
	env := newTestEnv(t)
	adminID := env.addAccount(t, "admin@example.com", entity.RoleAdmin, true)
	token := env.login(t, "admin@example.com")
	before := env.signal.Version()

	company := createCompany(t, env, token, "Acme")
	asset := createAsset(t, env, token, company.ID, "TAG-001")
	assert.Equal(t, "2026-03-15", asset.WarrantyExpiry)
	assert.Equal(t, entity.AssetStatusAvailable, asset.Status)
	assert.Greater(t, env.signal.Version(), before)

	// Placa repetida sin distinguir mayúsculas.
	resp, body := env.do(t, http.MethodPost, "/api/assets", token, map[string]any{
		"serial_number": "SN-X", "tag_no": "tag-001", "category": "Phone", "company_id": company.ID,
		"brand": "Apple", "model": "iPhone", "purchase_date": "2024-01-01", "asset_value": "900",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, string(body), "DUPLICATE_TAG")

	resp, body = env.do(t, http.MethodPost, "/api/assets/"+asset.ID+"/assign", token, map[string]string{"employee_id": adminID})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assigned := decode[dto.AssetResponse](t, body)
	assert.Equal(t, entity.AssetStatusInUse, assigned.Status)
	require.Len(t, assigned.History, 1)
	assert.Equal(t, entity.DefaultAssignmentNotes, assigned.History[0].Notes)

	// Guardar sin cambiar el asignado no agrega historial.
	brand := "Lenovo"
	resp, body = env.do(t, http.MethodPut, "/api/assets/"+asset.ID, token, map[string]any{"brand": brand})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Len(t, decode[dto.AssetResponse](t, body).History, 1)

	resp, body = env.do(t, http.MethodGet, "/api/activity", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	activity := decode[[]dto.ActivityResponse](t, body)
	require.Len(t, activity, 1)
	assert.Equal(t, entity.ActivityAssigned, activity[0].Action)
	assert.Equal(t, adminID, activity[0].EmployeeID)

	resp, body = env.do(t, http.MethodGet, "/api/assets?status=In+Use", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, decode[dto.AssetListResponse](t, body).Total)

	resp, body = env.do(t, http.MethodGet, "/api/dashboard", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	summary := decode[dto.DashboardSummaryDTO](t, body)
	assert.Equal(t, 1, summary.TotalAssets)
	assert.Equal(t, 1, summary.AssignedAssets)
	assert.Equal(t, 1, summary.Companies)

	resp, body = env.do(t, http.MethodPost, "/api/assets/"+asset.ID+"/decommission", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	decommissioned := decode[dto.AssetResponse](t, body)
	assert.Equal(t, entity.AssetStatusDecommissioned, decommissioned.Status)
	assert.Empty(t, decommissioned.AssignedTo)
}

func TestDeleteCompany_EnUso(t *testing.T) {
	env := newTestEnv(t)
	env.addAccount(t, "admin@example.com", entity.RoleAdmin, true)
	token := env.login(t, "admin@example.com")
	company := createCompany(t, env, token, "Acme")
	createAsset(t, env, token, company.ID, "T-1")

	resp, body := env.do(t, http.MethodDelete, "/api/companies/"+company.ID, token, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, string(body), "COMPANY_IN_USE")

	resp, _ = env.do(t, http.MethodGet, "/api/companies/"+company.ID, token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAssets_NoEncontrado(t *testing.T) {
	env := newTestEnv(t)
	env.addAccount(t, "emp@example.com", entity.RoleEmployee, true)
	token := env.login(t, "emp@example.com")

	resp, body := env.do(t, http.MethodGet, "/api/assets/no-existe", token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, string(body), "NOT_FOUND")
}

func TestCreateAsset_ValidacionDeCuerpo(t *testing.T) {
	env := newTestEnv(t)
	env.addAccount(t, "emp@example.com", entity.RoleEmployee, true)
	token := env.login(t, "emp@example.com")

	resp, body := env.do(t, http.MethodPost, "/api/assets", token, map[string]any{"serial_number": "SN", "category": "Toaster"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), "VALIDATION")
}

// ──────────────────────────────────────────────────────────────────────────────
// Perfil y archivos
// ──────────────────────────────────────────────────────────────────────────────

func TestUpdateProfile_AvatarDataURISeSubeYSeSirve(t *testing.T) {
	env := newTestEnv(t)
	env.addAccount(t, "emp@example.com", entity.RoleEmployee, true)
	token := env.login(t, "emp@example.com")

	png := []byte("\x89PNG\r\n\x1a\nfake")
	dataURI := "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
	resp, body := env.do(t, http.MethodPut, "/api/profile", token, map[string]any{"avatar_url": dataURI, "job_title": "Dev"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	profile := decode[dto.EmployeeResponse](t, body)
	assert.Equal(t, "Dev", profile.JobTitle)
	require.True(t, strings.HasPrefix(profile.AvatarURL, "http://test/files/avatars/"), profile.AvatarURL)

	resp, body = env.do(t, http.MethodGet, strings.TrimPrefix(profile.AvatarURL, "http://test"), "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, png, body)
}

func TestUpdateProfile_NoPermiteCambiarRol(t *testing.T) {
	env := newTestEnv(t)
	env.addAccount(t, "emp@example.com", entity.RoleEmployee, true)
	token := env.login(t, "emp@example.com")

	// role no es parte del cuerpo de perfil: se ignora.
	resp, body := env.do(t, http.MethodPut, "/api/profile", token, map[string]any{"role": "Admin"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Equal(t, entity.RoleEmployee, decode[dto.EmployeeResponse](t, body).Role)
}

func TestGenerateAvatar_SinGenerador(t *testing.T) {
	env := newTestEnv(t)
	env.addAccount(t, "emp@example.com", entity.RoleEmployee, true)
	token := env.login(t, "emp@example.com")

	resp, _ := env.do(t, http.MethodPost, "/api/profile/avatar/generate", token, map[string]string{"prompt": "retrato"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Señal de refresco
// ──────────────────────────────────────────────────────────────────────────────

func TestRefresh_VersionAvanzaConEscrituras(t *testing.T) {
	env := newTestEnv(t)
	env.addAccount(t, "admin@example.com", entity.RoleAdmin, true)
	token := env.login(t, "admin@example.com")

	resp, body := env.do(t, http.MethodGet, "/api/refresh", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	v0 := decode[dto.RefreshResponse](t, body).Version

	createCompany(t, env, token, "Acme")

	_, body = env.do(t, http.MethodGet, "/api/refresh", token, nil)
	assert.Equal(t, v0+1, decode[dto.RefreshResponse](t, body).Version)
}

func TestRutaInexistente_FormatoError(t *testing.T) {
	env := newTestEnv(t)
	resp, body := env.do(t, http.MethodGet, "/no-existe", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, string(body), "NOT_FOUND")
}
