// Package company reads the persisted business entities that resolved RNCs
// are cross-referenced against.
package company

import (
	"context"
	"time"
)

// Company is a row of the company table.
type Company struct {
	ID                int64     `json:"company_id" yaml:"company_id"`
	Name              string    `json:"company_name" yaml:"company_name"`
	RNC               string    `json:"company_rnc,omitempty" yaml:"company_rnc,omitempty"`
	MercantilRegistry string    `json:"mercantil_registry,omitempty" yaml:"mercantil_registry,omitempty"`
	Nationality       string    `json:"nationality,omitempty" yaml:"nationality,omitempty"`
	Email             string    `json:"email,omitempty" yaml:"email,omitempty"`
	Phone             string    `json:"phone,omitempty" yaml:"phone,omitempty"`
	Website           string    `json:"website,omitempty" yaml:"website,omitempty"`
	Type              string    `json:"company_type,omitempty" yaml:"company_type,omitempty"`
	Description       string    `json:"company_description,omitempty" yaml:"company_description,omitempty"`
	IsActive          bool      `json:"is_active" yaml:"is_active"`
	CreatedAt         time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt         time.Time `json:"updated_at" yaml:"updated_at"`
}

// Store reads companies. Implementations are safe for concurrent use.
type Store interface {
	// FindByRNC returns the active company whose RNC equals rnc, or nil when
	// there is none.
	FindByRNC(ctx context.Context, rnc string) (*Company, error)

	Migrate(ctx context.Context) error
	Close() error
}

// companyColumns is shared by both backends; nullable text is coalesced so
// rows scan into plain strings.
const companyColumns = `company_id, company_name,
	COALESCE(company_rnc, ''), COALESCE(mercantil_registry, ''),
	COALESCE(nationality, ''), COALESCE(email, ''), COALESCE(phone, ''),
	COALESCE(website, ''), COALESCE(company_type, ''), COALESCE(company_description, ''),
	is_active, created_at, updated_at`

func companyDests(c *Company) []any {
	return []any{
		&c.ID, &c.Name,
		&c.RNC, &c.MercantilRegistry,
		&c.Nationality, &c.Email, &c.Phone,
		&c.Website, &c.Type, &c.Description,
		&c.IsActive, &c.CreatedAt, &c.UpdatedAt,
	}
}
