package usecase

import (
	"github.com/jhoicas/Activos-api/internal/application/dto"
	"github.com/jhoicas/Activos-api/internal/domain/entity"
)

// ToCompanyResponse convierte la entidad a DTO.
func ToCompanyResponse(c *entity.Company) *dto.CompanyResponse {
	if c == nil {
		return nil
	}
	return &dto.CompanyResponse{ID: c.ID, Name: c.Name, CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt}
}

// ToEmployeeResponse convierte la entidad a DTO.
func ToEmployeeResponse(e *entity.Employee) *dto.EmployeeResponse {
	if e == nil {
		return nil
	}
	return &dto.EmployeeResponse{
		ID:         e.ID,
		Name:       e.Name,
		Email:      e.Email,
		Department: e.Department,
		JobTitle:   e.JobTitle,
		AvatarURL:  e.AvatarURL,
		Role:       e.Role,
		Active:     e.Active,
		CreatedAt:  e.CreatedAt,
		UpdatedAt:  e.UpdatedAt,
	}
}

// ToAssetResponse convierte la entidad a DTO. Las fechas de calendario salen como YYYY-MM-DD.
func ToAssetResponse(a *entity.Asset) *dto.AssetResponse {
	if a == nil {
		return nil
	}
	history := make([]dto.AssignmentResponse, 0, len(a.History))
	for _, h := range a.History {
		history = append(history, dto.AssignmentResponse{
			Date:       h.Date.Format(entity.DateLayout),
			AssignedTo: h.AssignedTo,
			Status:     h.Status,
			Notes:      h.Notes,
		})
	}
	return &dto.AssetResponse{
		ID:             a.ID,
		SerialNumber:   a.SerialNumber,
		TagNo:          a.TagNo,
		Category:       a.Category,
		CompanyID:      a.CompanyID,
		Brand:          a.Brand,
		Model:          a.Model,
		PurchaseDate:   formatDate(a.PurchaseDate),
		WarrantyExpiry: formatDate(a.WarrantyExpiry),
		AssetValue:     a.AssetValue,
		Status:         a.Status,
		AssignedTo:     a.AssignedTo,
		PhotoURL:       a.PhotoURL,
		History:        history,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

// ToActivityResponses convierte la lista de actividad a DTOs.
func ToActivityResponses(list []entity.Activity) []dto.ActivityResponse {
	out := make([]dto.ActivityResponse, 0, len(list))
	for _, a := range list {
		out = append(out, dto.ActivityResponse{
			ID:           a.ID,
			AssetID:      a.AssetID,
			AssetSerial:  a.AssetSerial,
			EmployeeID:   a.EmployeeID,
			EmployeeName: a.EmployeeName,
			Date:         a.Date,
			Action:       a.Action,
		})
	}
	return out
}
