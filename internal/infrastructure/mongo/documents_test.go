package mongo

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/jhoicas/Activos-api/internal/domain/entity"
)

func TestAssetDoc_BSON(t *testing.T) {
	purchase := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	asset := &entity.Asset{
		ID:             "a-1",
		SerialNumber:   "SN-1",
		TagNo:          "Straße-01",
		Category:       entity.CategoryLaptop,
		CompanyID:      "c-1",
		Brand:          "Dell",
		Model:          "Latitude",
		PurchaseDate:   purchase,
		WarrantyExpiry: entity.WarrantyFrom(purchase),
		AssetValue:     decimal.RequireFromString("1499.99"),
		Status:         entity.AssetStatusInUse,
		AssignedTo:     "e-1",
		History: []entity.Assignment{
			{Date: purchase, AssignedTo: "e-1", Status: entity.AssetStatusInUse, Notes: entity.DefaultAssignmentNotes},
		},
	}

	doc, err := assetToDoc(asset)
	require.NoError(t, err)
	assert.Equal(t, "strasse-01", doc.TagKey, "la clave del índice único usa plegado Unicode")

	raw, err := bson.Marshal(doc)
	require.NoError(t, err)
	var decoded assetDoc
	require.NoError(t, bson.Unmarshal(raw, &decoded))

	got, err := decoded.entity()
	require.NoError(t, err)
	assert.True(t, asset.AssetValue.Equal(got.AssetValue), "Decimal128 conserva el valor exacto")
	assert.Equal(t, asset.WarrantyExpiry, got.WarrantyExpiry)
	require.Len(t, got.History, 1)
	assert.Equal(t, entity.DefaultAssignmentNotes, got.History[0].Notes)
	assert.Equal(t, "e-1", got.History[0].AssignedTo)
}

func TestAssetToDoc_HistorialVacioNoEsNulo(t *testing.T) {
	doc, err := assetToDoc(&entity.Asset{ID: "a-1", TagNo: "T-1", AssetValue: decimal.Zero})
	require.NoError(t, err)

	raw, err := bson.Marshal(doc)
	require.NoError(t, err)
	history := bson.Raw(raw).Lookup("history")
	assert.Equal(t, bson.TypeArray, history.Type, "se guarda [] y no null")
}

func TestEmailKey(t *testing.T) {
	assert.Equal(t, "ana@example.com", emailKey("  Ana@Example.COM "))
}
