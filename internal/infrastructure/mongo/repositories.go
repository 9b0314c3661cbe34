package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jhoicas/Activos-api/internal/domain"
	"github.com/jhoicas/Activos-api/internal/domain/entity"
	"github.com/jhoicas/Activos-api/internal/domain/repository"
)

var (
	_ repository.CompanyRepository    = (*CompanyRepo)(nil)
	_ repository.EmployeeRepository   = (*EmployeeRepo)(nil)
	_ repository.AssetRepository      = (*AssetRepo)(nil)
	_ repository.ActivityRepository   = (*ActivityRepo)(nil)
	_ repository.CredentialRepository = (*CredentialRepo)(nil)
)

// bound ata las operaciones a la sesión de una transacción cuando existe.
type bound struct {
	sess context.Context
}

func (b bound) ctx(ctx context.Context) context.Context {
	if b.sess != nil {
		return b.sess
	}
	return ctx
}

// ---------------------------------------------------------------------------
// Empresas
// ---------------------------------------------------------------------------

// CompanyRepo implementación de CompanyRepository sobre la colección companies.
type CompanyRepo struct {
	coll *mongo.Collection
}

// NewCompanyRepository construye el adaptador.
func NewCompanyRepository(db *mongo.Database) *CompanyRepo {
	return &CompanyRepo{coll: db.Collection(collCompanies)}
}

func (r *CompanyRepo) Create(ctx context.Context, c *entity.Company) error {
	if _, err := r.coll.InsertOne(ctx, companyToDoc(c)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert company: %w", err)
	}
	return nil
}

func (r *CompanyRepo) GetByID(ctx context.Context, id string) (*entity.Company, error) {
	var doc companyDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("get company: %w", err)
	}
	return doc.entity(), nil
}

func (r *CompanyRepo) Update(ctx context.Context, c *entity.Company) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": c.ID}, bson.M{"$set": bson.M{
		"name":      c.Name,
		"updatedAt": c.UpdatedAt,
	}})
	if err != nil {
		return fmt.Errorf("update company: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *CompanyRepo) List(ctx context.Context) ([]*entity.Company, error) {
	cursor, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	var docs []companyDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode companies: %w", err)
	}
	list := make([]*entity.Company, 0, len(docs))
	for _, d := range docs {
		list = append(list, d.entity())
	}
	return list, nil
}

func (r *CompanyRepo) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete company: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ---------------------------------------------------------------------------
// Perfiles
// ---------------------------------------------------------------------------

// EmployeeRepo implementación de EmployeeRepository sobre la colección employees.
type EmployeeRepo struct {
	coll *mongo.Collection
}

// NewEmployeeRepository construye el adaptador.
func NewEmployeeRepository(db *mongo.Database) *EmployeeRepo {
	return &EmployeeRepo{coll: db.Collection(collEmployees)}
}

func (r *EmployeeRepo) Create(ctx context.Context, e *entity.Employee) error {
	if _, err := r.coll.InsertOne(ctx, employeeToDoc(e)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert employee: %w", err)
	}
	return nil
}

func (r *EmployeeRepo) GetByID(ctx context.Context, id string) (*entity.Employee, error) {
	var doc employeeDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("get employee: %w", err)
	}
	return doc.entity(), nil
}

func (r *EmployeeRepo) Update(ctx context.Context, e *entity.Employee) error {
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": e.ID}, employeeToDoc(e))
	if err != nil {
		return fmt.Errorf("update employee: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *EmployeeRepo) List(ctx context.Context) ([]*entity.Employee, error) {
	cursor, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	var docs []employeeDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode employees: %w", err)
	}
	list := make([]*entity.Employee, 0, len(docs))
	for _, d := range docs {
		list = append(list, d.entity())
	}
	return list, nil
}

func (r *EmployeeRepo) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete employee: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ---------------------------------------------------------------------------
// Activos
// ---------------------------------------------------------------------------

// AssetRepo implementación de AssetRepository. El historial vive embebido en el documento.
type AssetRepo struct {
	bound
	coll *mongo.Collection
}

// NewAssetRepository construye el adaptador.
func NewAssetRepository(db *mongo.Database) *AssetRepo {
	return &AssetRepo{coll: db.Collection(collAssets)}
}

func (r *AssetRepo) Create(ctx context.Context, a *entity.Asset) error {
	doc, err := assetToDoc(a)
	if err != nil {
		return fmt.Errorf("encode asset: %w", err)
	}
	if _, err := r.coll.InsertOne(r.ctx(ctx), doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateTag
		}
		return fmt.Errorf("insert asset: %w", err)
	}
	return nil
}

func (r *AssetRepo) GetByID(ctx context.Context, id string) (*entity.Asset, error) {
	var doc assetDoc
	if err := r.coll.FindOne(r.ctx(ctx), bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("get asset: %w", err)
	}
	return doc.entity()
}

func (r *AssetRepo) Update(ctx context.Context, a *entity.Asset) error {
	doc, err := assetToDoc(a)
	if err != nil {
		return fmt.Errorf("encode asset: %w", err)
	}
	res, err := r.coll.ReplaceOne(r.ctx(ctx), bson.M{"_id": a.ID}, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateTag
		}
		return fmt.Errorf("update asset: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *AssetRepo) List(ctx context.Context) ([]*entity.Asset, error) {
	ctx = r.ctx(ctx)
	cursor, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	var docs []assetDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode assets: %w", err)
	}
	list := make([]*entity.Asset, 0, len(docs))
	for _, d := range docs {
		a, err := d.entity()
		if err != nil {
			return nil, fmt.Errorf("decode asset %s: %w", d.ID, err)
		}
		list = append(list, a)
	}
	return list, nil
}

func (r *AssetRepo) CountByCompany(ctx context.Context, companyID string) (int, error) {
	n, err := r.coll.CountDocuments(r.ctx(ctx), bson.M{"companyId": companyID})
	if err != nil {
		return 0, fmt.Errorf("count assets by company: %w", err)
	}
	return int(n), nil
}

// ---------------------------------------------------------------------------
// Actividad
// ---------------------------------------------------------------------------

// ActivityRepo implementación de ActivityRepository sobre la colección activity.
type ActivityRepo struct {
	bound
	coll *mongo.Collection
}

// NewActivityRepository construye el adaptador.
func NewActivityRepository(db *mongo.Database) *ActivityRepo {
	return &ActivityRepo{coll: db.Collection(collActivity)}
}

func (r *ActivityRepo) Create(ctx context.Context, a *entity.Activity) error {
	doc := activityDoc{
		ID: a.ID, AssetID: a.AssetID, AssetSerial: a.AssetSerial, EmployeeID: a.EmployeeID,
		EmployeeName: a.EmployeeName, Date: a.Date, Action: a.Action,
	}
	if _, err := r.coll.InsertOne(r.ctx(ctx), doc); err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

func (r *ActivityRepo) ListRecent(ctx context.Context, limit int) ([]*entity.Activity, error) {
	ctx = r.ctx(ctx)
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}}).SetLimit(int64(limit))
	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	var docs []activityDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode activity: %w", err)
	}
	list := make([]*entity.Activity, 0, len(docs))
	for _, d := range docs {
		list = append(list, &entity.Activity{
			ID: d.ID, AssetID: d.AssetID, AssetSerial: d.AssetSerial, EmployeeID: d.EmployeeID,
			EmployeeName: d.EmployeeName, Date: d.Date, Action: d.Action,
		})
	}
	return list, nil
}

// ---------------------------------------------------------------------------
// Credenciales
// ---------------------------------------------------------------------------

// CredentialRepo almacén de credenciales del proveedor de identidad.
type CredentialRepo struct {
	coll *mongo.Collection
}

// NewCredentialRepository construye el adaptador.
func NewCredentialRepository(db *mongo.Database) *CredentialRepo {
	return &CredentialRepo{coll: db.Collection(collCredentials)}
}

func (r *CredentialRepo) Create(ctx context.Context, c *entity.Credential) error {
	doc := credentialDoc{
		UID: c.UID, Email: c.Email, EmailKey: emailKey(c.Email), PasswordHash: c.PasswordHash, CreatedAt: c.CreatedAt,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrEmailAlreadyExists
		}
		return fmt.Errorf("insert credential: %w", err)
	}
	return nil
}

func (r *CredentialRepo) GetByEmail(ctx context.Context, email string) (*entity.Credential, error) {
	var doc credentialDoc
	if err := r.coll.FindOne(ctx, bson.M{"emailKey": emailKey(email)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("get credential by email: %w", err)
	}
	return &entity.Credential{UID: doc.UID, Email: doc.Email, PasswordHash: doc.PasswordHash, CreatedAt: doc.CreatedAt}, nil
}

func (r *CredentialRepo) Delete(ctx context.Context, uid string) error {
	if _, err := r.coll.DeleteOne(ctx, bson.M{"_id": uid}); err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}
	return nil
}
