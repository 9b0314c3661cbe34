// seed prepara una instalación nueva: crea (o reactiva) el primer administrador y, si se
// indica, importa empresas desde un CSV.
//
// Uso: go run ./cmd/seed [-companies empresas.csv] [-encoding windows-1252|utf-8]
// Credenciales del administrador: SEED_ADMIN_EMAIL, SEED_ADMIN_PASSWORD, SEED_ADMIN_NAME.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/jhoicas/Activos-api/internal/application/catalog"
	"github.com/jhoicas/Activos-api/internal/domain/repository"
	"github.com/jhoicas/Activos-api/internal/infrastructure/identity"
	inframongo "github.com/jhoicas/Activos-api/internal/infrastructure/mongo"
	"github.com/jhoicas/Activos-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Activos-api/pkg/config"
	"github.com/jhoicas/Activos-api/pkg/logger"
)

func main() {
	csvPath := flag.String("companies", "", "CSV de empresas (una por fila, columna name)")
	encoding := flag.String("encoding", "windows-1252", "codificación del CSV: windows-1252 o utf-8")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	repos, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión al almacenamiento")
	}
	defer closeStore()

	store := catalog.NewStore(catalog.StoreDeps{
		Companies: repos.Companies,
		Employees: repos.Employees,
		Assets:    repos.Assets,
		Activity:  repos.Activity,
		Tx:        repos.Tx,
		Logger:    log.Zerolog(),
	})
	identitySvc := identity.NewService(repos.Credentials, identity.Config{
		MinPasswordLen: cfg.Auth.MinPasswordLength,
	}, log.Component("identity"))

	if cfg.Seed.AdminEmail != "" {
		admin, created, err := bootstrapAdmin(ctx, identitySvc, repos.Credentials, store, cfg.Seed)
		if err != nil {
			log.Fatal().Err(err).Msg("crear administrador")
		}
		log.Info().Str("uid", admin.ID).Str("email", admin.Email).Bool("created", created).Msg("administrador listo")
	} else {
		log.Warn().Msg("SEED_ADMIN_EMAIL vacío: no se crea administrador")
	}

	if *csvPath != "" {
		f, err := os.Open(*csvPath)
		if err != nil {
			log.Fatal().Err(err).Msg("abrir CSV")
		}
		defer f.Close()
		added, skipped, err := importCompanies(ctx, f, *encoding, store)
		if err != nil {
			log.Fatal().Err(err).Msg("importar empresas")
		}
		log.Info().Int("added", added).Int("skipped", skipped).Msg("empresas importadas")
	}
}

func openStore(ctx context.Context, cfg *config.Config) (repository.Set, func(), error) {
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
		return inframongo.NewRepositories(client, db, cfg.Mongo.Transactions), func() { _ = inframongo.Disconnect(client) }, nil
	case config.DriverPostgres:
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
	return repository.Set{}, nil, fmt.Errorf("seed no aplica al driver %q", cfg.Store.Driver)
}
