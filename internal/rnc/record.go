// Package rnc holds the taxpayer registry record, identifier normalization, and
// the classified failures shared by the local index and the DGII form client.
package rnc

// Provenance marks where a Record came from.
type Provenance string

const (
	// SourceLocal is a record served from the bulk DGII dataset.
	SourceLocal Provenance = "csv"
	// SourceRemote is a record scraped from the live DGII consultation form.
	SourceRemote Provenance = "web"
)

// Record is one taxpayer registry entry. Optional fields are empty strings,
// never absent, so local and remote records marshal to the same shape.
type Record struct {
	RNC                 string     `json:"rnc" yaml:"rnc"`
	Name                string     `json:"nombre" yaml:"nombre"`
	Status              string     `json:"estado" yaml:"estado"`
	EconomicActivity    string     `json:"actividad_economica" yaml:"actividad_economica"`
	OperationsStartDate string     `json:"fecha_inicio" yaml:"fecha_inicio"`
	PaymentRegime       string     `json:"regimen_pago" yaml:"regimen_pago"`
	Source              Provenance `json:"source" yaml:"source"`
}
