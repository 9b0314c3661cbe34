// Package mongo implementa los puertos de repositorio sobre MongoDB (driver oficial v1).
package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/jhoicas/Activos-api/internal/domain/repository"
	"github.com/jhoicas/Activos-api/pkg/config"
)

// Nombres de colección.
const (
	collCompanies   = "companies"
	collEmployees   = "employees"
	collAssets      = "assets"
	collActivity    = "activity"
	collCredentials = "credentials"
)

// Connect abre el cliente, verifica la conexión con ping y devuelve la base configurada.
func Connect(ctx context.Context, cfg config.MongoConfig) (*mongo.Client, *mongo.Database, error) {
	if cfg.URI == "" {
		return nil, nil, fmt.Errorf("MONGO_URI es requerido cuando STORE_DRIVER=mongo")
	}
	clientOptions := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(20 * time.Second).
		SetServerSelectionTimeout(15 * time.Second).
		SetMaxPoolSize(50)

	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	client, err := mongo.Connect(connectCtx, clientOptions)
	if err != nil {
		return nil, nil, fmt.Errorf("crear cliente MongoDB: %w", err)
	}

	pingCtx, cancelPing := context.WithTimeout(ctx, 10*time.Second)
	defer cancelPing()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("ping MongoDB: %w", err)
	}
	return client, client.Database(cfg.Database), nil
}

// Disconnect cierra el cliente con un timeout acotado.
func Disconnect(client *mongo.Client) error {
	if client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return client.Disconnect(ctx)
}

// EnsureIndexes crea los índices únicos y de orden (idempotente).
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	specs := map[string][]mongo.IndexModel{
		collAssets: {
			{Keys: bson.D{{Key: "tagKey", Value: 1}}, Options: options.Index().SetUnique(true).SetName("assets_tag_key_uq")},
			{Keys: bson.D{{Key: "companyId", Value: 1}}},
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		},
		collActivity: {
			{Keys: bson.D{{Key: "date", Value: -1}}},
		},
		collCredentials: {
			{Keys: bson.D{{Key: "emailKey", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
	}
	for coll, models := range specs {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("índices de %s: %w", coll, err)
		}
	}
	return nil
}

// NewRepositories construye el conjunto de repositorios. withTx habilita transacciones
// (solo con replica set).
func NewRepositories(client *mongo.Client, db *mongo.Database, withTx bool) repository.Set {
	set := repository.Set{
		Companies:   NewCompanyRepository(db),
		Employees:   NewEmployeeRepository(db),
		Assets:      NewAssetRepository(db),
		Activity:    NewActivityRepository(db),
		Credentials: NewCredentialRepository(db),
	}
	if withTx {
		set.Tx = NewTxRunner(client, db)
	}
	return set
}
