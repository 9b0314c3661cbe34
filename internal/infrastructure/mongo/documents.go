package mongo

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/jhoicas/Activos-api/internal/domain/entity"
)

type companyDoc struct {
	ID        string    `bson:"_id"`
	Name      string    `bson:"name"`
	CreatedAt time.Time `bson:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

func companyToDoc(c *entity.Company) companyDoc {
	return companyDoc{ID: c.ID, Name: c.Name, CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt}
}

func (d companyDoc) entity() *entity.Company {
	return &entity.Company{ID: d.ID, Name: d.Name, CreatedAt: d.CreatedAt, UpdatedAt: d.UpdatedAt}
}

type employeeDoc struct {
	ID         string    `bson:"_id"`
	Name       string    `bson:"name"`
	Email      string    `bson:"email"`
	Department string    `bson:"department"`
	JobTitle   string    `bson:"jobTitle"`
	AvatarURL  string    `bson:"avatarUrl"`
	Role       string    `bson:"role"`
	Active     bool      `bson:"active"`
	CreatedAt  time.Time `bson:"createdAt"`
	UpdatedAt  time.Time `bson:"updatedAt"`
}

func employeeToDoc(e *entity.Employee) employeeDoc {
	return employeeDoc{
		ID: e.ID, Name: e.Name, Email: e.Email, Department: e.Department, JobTitle: e.JobTitle,
		AvatarURL: e.AvatarURL, Role: e.Role, Active: e.Active, CreatedAt: e.CreatedAt, UpdatedAt: e.UpdatedAt,
	}
}

func (d employeeDoc) entity() *entity.Employee {
	return &entity.Employee{
		ID: d.ID, Name: d.Name, Email: d.Email, Department: d.Department, JobTitle: d.JobTitle,
		AvatarURL: d.AvatarURL, Role: d.Role, Active: d.Active, CreatedAt: d.CreatedAt, UpdatedAt: d.UpdatedAt,
	}
}

type assetDoc struct {
	ID             string               `bson:"_id"`
	SerialNumber   string               `bson:"serialNumber"`
	TagNo          string               `bson:"tagNo"`
	TagKey         string               `bson:"tagKey"`
	Category       string               `bson:"category"`
	CompanyID      string               `bson:"companyId"`
	Brand          string               `bson:"brand"`
	Model          string               `bson:"model"`
	PurchaseDate   time.Time            `bson:"purchaseDate"`
	WarrantyExpiry time.Time            `bson:"warrantyExpiry"`
	AssetValue     primitive.Decimal128 `bson:"assetValue"`
	Status         string               `bson:"status"`
	AssignedTo     string               `bson:"assignedTo"`
	PhotoURL       string               `bson:"photoUrl"`
	History        []entity.Assignment  `bson:"history"`
	CreatedAt      time.Time            `bson:"createdAt"`
	UpdatedAt      time.Time            `bson:"updatedAt"`
}

func assetToDoc(a *entity.Asset) (assetDoc, error) {
	value, err := primitive.ParseDecimal128(a.AssetValue.String())
	if err != nil {
		return assetDoc{}, err
	}
	history := a.History
	if history == nil {
		history = []entity.Assignment{}
	}
	return assetDoc{
		ID: a.ID, SerialNumber: a.SerialNumber, TagNo: a.TagNo, TagKey: entity.FoldTag(a.TagNo),
		Category: a.Category, CompanyID: a.CompanyID, Brand: a.Brand, Model: a.Model,
		PurchaseDate: a.PurchaseDate, WarrantyExpiry: a.WarrantyExpiry, AssetValue: value,
		Status: a.Status, AssignedTo: a.AssignedTo, PhotoURL: a.PhotoURL, History: history,
		CreatedAt: a.CreatedAt, UpdatedAt: a.UpdatedAt,
	}, nil
}

func (d assetDoc) entity() (*entity.Asset, error) {
	value, err := decimal.NewFromString(d.AssetValue.String())
	if err != nil {
		return nil, err
	}
	return &entity.Asset{
		ID: d.ID, SerialNumber: d.SerialNumber, TagNo: d.TagNo, Category: d.Category,
		CompanyID: d.CompanyID, Brand: d.Brand, Model: d.Model,
		PurchaseDate: d.PurchaseDate.UTC(), WarrantyExpiry: d.WarrantyExpiry.UTC(), AssetValue: value,
		Status: d.Status, AssignedTo: d.AssignedTo, PhotoURL: d.PhotoURL, History: d.History,
		CreatedAt: d.CreatedAt, UpdatedAt: d.UpdatedAt,
	}, nil
}

type activityDoc struct {
	ID           string    `bson:"_id"`
	AssetID      string    `bson:"assetId"`
	AssetSerial  string    `bson:"assetSerial"`
	EmployeeID   string    `bson:"employeeId"`
	EmployeeName string    `bson:"employeeName"`
	Date         time.Time `bson:"date"`
	Action       string    `bson:"action"`
}

type credentialDoc struct {
	UID          string    `bson:"_id"`
	Email        string    `bson:"email"`
	EmailKey     string    `bson:"emailKey"`
	PasswordHash string    `bson:"passwordHash"`
	CreatedAt    time.Time `bson:"createdAt"`
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
