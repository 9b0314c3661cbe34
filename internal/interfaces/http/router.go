package http

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/filesystem"

	appanalytics "github.com/jhoicas/Activos-api/internal/application/analytics"
	"github.com/jhoicas/Activos-api/internal/application/auth"
	"github.com/jhoicas/Activos-api/internal/application/usecase"
	"github.com/jhoicas/Activos-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC      *auth.AuthUseCase
	CompanyUC   *usecase.CompanyUseCase
	EmployeeUC  *usecase.EmployeeUseCase
	AssetUC     *usecase.AssetUseCase
	DashboardUC *appanalytics.DashboardUseCase
	Refresh     *RefreshHandler
	Sessions    sessionLookup
	// Files sirve los archivos subidos (avatares). Nil deshabilita /files.
	Files     http.FileSystem
	JWTSecret string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	if deps.Files != nil {
		app.Use("/files", filesystem.New(filesystem.Config{
			Root:   deps.Files,
			Browse: false,
			MaxAge: 3600,
		}))
	}

	api := app.Group("/api")
	authHandler := NewAuthHandler(deps.AuthUC)

	// Auth (público)
	authGroup := api.Group("/auth")
	authGroup.Post("/signup", authHandler.Signup)
	authGroup.Post("/login", authHandler.Login)

	// Token válido y sesión viva, aunque la cuenta esté pendiente de activación
	pending := api.Group("/auth", AuthMiddleware(deps.JWTSecret), RequireSession(deps.Sessions, true))
	pending.Get("/session", authHandler.Session)
	pending.Post("/reload", authHandler.Reload)
	pending.Post("/logout", authHandler.Logout)

	// Rutas protegidas (Bearer Token + perfil activo)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret), RequireSession(deps.Sessions, false))
	adminOnly := RequireRole(entity.RoleAdmin)

	profile := protected.Group("/profile")
	profile.Get("/", authHandler.GetProfile)
	profile.Put("/", authHandler.UpdateProfile)
	profile.Post("/avatar/generate", authHandler.GenerateAvatar)

	companies := protected.Group("/companies")
	companyHandler := NewCompanyHandler(deps.CompanyUC)
	companies.Get("/", companyHandler.List)
	companies.Get("/:id", companyHandler.GetByID)
	companies.Post("/", adminOnly, companyHandler.Create)
	companies.Put("/:id", adminOnly, companyHandler.Update)
	companies.Delete("/:id", adminOnly, companyHandler.Delete)

	employees := protected.Group("/employees")
	employeeHandler := NewEmployeeHandler(deps.EmployeeUC)
	employees.Get("/", employeeHandler.List)
	employees.Get("/:id", employeeHandler.GetByID)
	employees.Post("/", adminOnly, employeeHandler.Create)
	employees.Put("/:id", adminOnly, employeeHandler.Update)
	employees.Delete("/:id", adminOnly, employeeHandler.Delete)

	assets := protected.Group("/assets")
	assetHandler := NewAssetHandler(deps.AssetUC)
	assets.Get("/", assetHandler.List)
	assets.Get("/:id", assetHandler.GetByID)
	assets.Post("/", assetHandler.Create)
	assets.Put("/:id", assetHandler.Update)
	assets.Post("/:id/assign", assetHandler.Assign)
	assets.Post("/:id/decommission", adminOnly, assetHandler.Decommission)
	protected.Get("/activity", assetHandler.Activity)

	dashboardHandler := NewDashboardHandler(deps.DashboardUC)
	protected.Get("/dashboard", dashboardHandler.GetSummary)

	if deps.Refresh != nil {
		protected.Get("/refresh", deps.Refresh.Version)
		protected.Get("/refresh/stream", deps.Refresh.Stream)
	}
}
