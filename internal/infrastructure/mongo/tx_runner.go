package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/jhoicas/Activos-api/internal/domain/repository"
)

var _ repository.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks en una transacción multi-documento. Requiere un replica set;
// en un servidor standalone no se debe configurar (el store escribe de forma secuencial).
type TxRunner struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewTxRunner construye el runner.
func NewTxRunner(client *mongo.Client, db *mongo.Database) *TxRunner {
	return &TxRunner{client: client, db: db}
}

// RunAssetTx ejecuta fn con repos de activos y actividad atados a la sesión de la transacción.
func (r *TxRunner) RunAssetTx(ctx context.Context, fn func(
	assets repository.AssetRepository,
	activity repository.ActivityRepository,
) error) error {
	sess, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		assets := NewAssetRepository(r.db)
		assets.sess = sc
		activity := NewActivityRepository(r.db)
		activity.sess = sc
		return nil, fn(assets, activity)
	})
	return err
}
