package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/afero"

	appanalytics "github.com/jhoicas/Activos-api/internal/application/analytics"
	"github.com/jhoicas/Activos-api/internal/application/auth"
	"github.com/jhoicas/Activos-api/internal/application/catalog"
	"github.com/jhoicas/Activos-api/internal/application/ports"
	"github.com/jhoicas/Activos-api/internal/application/refresh"
	"github.com/jhoicas/Activos-api/internal/application/session"
	"github.com/jhoicas/Activos-api/internal/application/usecase"
	"github.com/jhoicas/Activos-api/internal/domain/repository"
	infraai "github.com/jhoicas/Activos-api/internal/infrastructure/ai"
	"github.com/jhoicas/Activos-api/internal/infrastructure/blob"
	"github.com/jhoicas/Activos-api/internal/infrastructure/identity"
	"github.com/jhoicas/Activos-api/internal/infrastructure/memory"
	inframongo "github.com/jhoicas/Activos-api/internal/infrastructure/mongo"
	"github.com/jhoicas/Activos-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/Activos-api/internal/interfaces/http"
	"github.com/jhoicas/Activos-api/pkg/config"
	"github.com/jhoicas/Activos-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Store.Driver).
		Msg("iniciando aplicación")

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	repos, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión al almacenamiento")
	}
	defer closeStore()

	blobFs := afero.NewOsFs()
	if cfg.Store.Driver == config.DriverMemory {
		blobFs = afero.NewMemMapFs()
	}
	blobs, err := blob.New(blobFs, cfg.Blob.Dir, cfg.Blob.BaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("almacenamiento de archivos")
	}

	identitySvc := identity.NewService(repos.Credentials, identity.Config{
		MaxFailedAttempts: cfg.Auth.MaxFailedAttempts,
		Window:            cfg.Auth.ThrottleWindow,
		MinPasswordLen:    cfg.Auth.MinPasswordLength,
	}, log.Component("identity"))

	refreshSignal := refresh.NewSignal()
	store := catalog.NewStore(catalog.StoreDeps{
		Companies:      repos.Companies,
		Employees:      repos.Employees,
		Assets:         repos.Assets,
		Activity:       repos.Activity,
		Tx:             repos.Tx,
		Notifier:       refreshSignal,
		Logger:         log.Zerolog(),
		ActivityWindow: cfg.Catalog.ActivityWindow,
	})

	sessions := session.NewRegistry(session.RegistryDeps{
		NewClient:    identitySvc.NewClient,
		Profiles:     store,
		Blobs:        blobs,
		Logger:       log.Zerolog(),
		FetchTimeout: cfg.Auth.LoginTimeout,
		TTL:          time.Duration(cfg.JWT.Expiration) * time.Minute,
	})
	go sessions.Run(ctx, time.Minute)

	var avatars ports.AvatarGenerator
	avatarSvc, err := infraai.NewAvatarService(ctx, cfg.AI.GeminiAPIKey, cfg.AI.AvatarModel)
	if err != nil {
		log.Warn().Err(err).Msg("generación de avatares deshabilitada")
	} else {
		avatars = avatarSvc
	}

	authUC := auth.NewAuthUseCase(sessions, avatars, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	}, cfg.Auth.LoginTimeout, log.Zerolog())
	companyUC := usecase.NewCompanyUseCase(store)
	employeeUC := usecase.NewEmployeeUseCase(store, sessions, log.Zerolog())
	assetUC := usecase.NewAssetUseCase(store)
	dashboardUC := appanalytics.NewDashboardUseCase(store)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		IdleTimeout:  time.Second * 60,
		BodyLimit:    session.MaxAvatarBytes + 1<<20,
		ErrorHandler: httpRouter.ErrorHandler,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log.Component("http")))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Activos API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "store": cfg.Store.Driver})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:      authUC,
		CompanyUC:   companyUC,
		EmployeeUC:  employeeUC,
		AssetUC:     assetUC,
		DashboardUC: dashboardUC,
		Refresh:     httpRouter.NewRefreshHandler(ctx, refreshSignal, 0),
		Sessions:    sessions,
		Files:       afero.NewHttpFs(blobs.FS()),
		JWTSecret:   cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")
	stop() // cierra los flujos SSE abiertos

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

// openStore conecta el driver configurado y devuelve sus repositorios y la función de cierre.
func openStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (repository.Set, func(), error) {
	switch cfg.Store.Driver {
	case config.DriverMongo:
		client, db, err := inframongo.Connect(ctx, cfg.Mongo)
		if err != nil {
			return repository.Set{}, nil, err
		}
		if err := inframongo.EnsureIndexes(ctx, db); err != nil {
			_ = inframongo.Disconnect(client)
			return repository.Set{}, nil, err
		}
		closeFn := func() {
			if err := inframongo.Disconnect(client); err != nil {
				log.Error().Err(err).Msg("desconectar MongoDB")
			}
		}
		return inframongo.NewRepositories(client, db, cfg.Mongo.Transactions), closeFn, nil

	case config.DriverMemory:
		log.Warn().Msg("STORE_DRIVER=memory: los datos se pierden al reiniciar")
		return memory.New().Repositories(), func() {}, nil

	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return repository.Set{}, nil, err
		}
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return repository.Set{}, nil, err
		}
		return postgres.NewRepositories(pool), pool.Close, nil
	}
}
