package repository

import "context"

// TxRunner ejecuta fn dentro de una transacción, pasando repositorios atados a ella.
// Se usa para escribir un activo y su registro de actividad de forma atómica.
type TxRunner interface {
	RunAssetTx(ctx context.Context, fn func(assets AssetRepository, activity ActivityRepository) error) error
}
