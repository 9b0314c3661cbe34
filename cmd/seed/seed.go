package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/Activos-api/internal/application/catalog"
	"github.com/jhoicas/Activos-api/internal/application/ports"
	"github.com/jhoicas/Activos-api/internal/domain/entity"
	"github.com/jhoicas/Activos-api/internal/domain/repository"
	"github.com/jhoicas/Activos-api/pkg/config"
)

type registrar interface {
	Register(ctx context.Context, email, password string) (*entity.Credential, error)
}

type profileWriter interface {
	FetchEmployee(ctx context.Context, id string) (*entity.Employee, error)
	CreateProfile(ctx context.Context, employee *entity.Employee) error
	UpdateEmployee(ctx context.Context, id string, patch catalog.EmployeePatch) (*entity.Employee, error)
}

type companyWriter interface {
	Companies(ctx context.Context) []entity.Company
	AddCompany(ctx context.Context, name string) (*entity.Company, error)
}

// bootstrapAdmin registra la cuenta del administrador o, si el email ya existe, activa su
// perfil con rol Admin. Es idempotente.
func bootstrapAdmin(ctx context.Context, ids registrar, creds repository.CredentialRepository, profiles profileWriter, seed config.SeedConfig) (*entity.Employee, bool, error) {
	name := strings.TrimSpace(seed.AdminName)
	if name == "" {
		name = "Administrator"
	}

	cred, err := ids.Register(ctx, seed.AdminEmail, seed.AdminPassword)
	created := err == nil
	if err != nil {
		if ports.ProviderCode(err) != ports.CodeEmailInUse {
			return nil, false, err
		}
		cred, err = creds.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(seed.AdminEmail)))
		if err != nil {
			return nil, false, err
		}
		if cred == nil {
			return nil, false, errors.New("credencial existente no encontrada")
		}
	}

	existing, err := profiles.FetchEmployee(ctx, cred.UID)
	if err != nil {
		return nil, false, err
	}
	if existing == nil {
		admin := &entity.Employee{
			ID:         cred.UID,
			Name:       name,
			Email:      cred.Email,
			Department: "IT",
			JobTitle:   "Administrator",
			Role:       entity.RoleAdmin,
			Active:     true,
		}
		if err := profiles.CreateProfile(ctx, admin); err != nil {
			return nil, false, err
		}
		return admin, created, nil
	}

	role, active := entity.RoleAdmin, true
	admin, err := profiles.UpdateEmployee(ctx, cred.UID, catalog.EmployeePatch{Role: &role, Active: &active})
	if err != nil {
		return nil, false, err
	}
	return admin, created, nil
}

// importCompanies crea una empresa por fila (primera columna). Omite la cabecera "name",
// filas vacías y nombres ya existentes sin distinguir mayúsculas.
func importCompanies(ctx context.Context, r io.Reader, encoding string, companies companyWriter) (added, skipped int, err error) {
	switch strings.ToLower(encoding) {
	case "windows-1252", "cp1252", "":
		r = transform.NewReader(r, charmap.Windows1252.NewDecoder())
	case "iso-8859-1", "latin1":
		r = transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	case "utf-8", "utf8":
	default:
		return 0, 0, fmt.Errorf("codificación no soportada %q", encoding)
	}

	fold := cases.Fold()
	seen := make(map[string]bool)
	for _, c := range companies.Companies(ctx) {
		seen[fold.String(strings.TrimSpace(c.Name))] = true
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	for line := 1; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return added, skipped, fmt.Errorf("línea %d: %w", line, err)
		}
		if len(record) == 0 {
			continue
		}
		name := strings.TrimSpace(record[0])
		key := fold.String(name)
		if name == "" || (line == 1 && key == "name") {
			continue
		}
		if seen[key] {
			skipped++
			continue
		}
		if _, err := companies.AddCompany(ctx, name); err != nil {
			return added, skipped, fmt.Errorf("línea %d: %w", line, err)
		}
		seen[key] = true
		added++
	}
	return added, skipped, nil
}
