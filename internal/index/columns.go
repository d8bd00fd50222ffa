package index

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

type field int

const (
	fieldRNC field = iota
	fieldName
	fieldActivity
	fieldStartDate
	fieldStatus
	fieldRegime
	numFields
)

// headerAliases maps folded header text to the record field it feeds.
var headerAliases = map[string]field{
	"RNC":                         fieldRNC,
	"RNC/CEDULA":                  fieldRNC,
	"RNC CEDULA":                  fieldRNC,
	"CEDULA/RNC":                  fieldRNC,
	"IDENTIFICADOR":               fieldRNC,
	"RAZON SOCIAL":                fieldName,
	"NOMBRE":                      fieldName,
	"NOMBRE/RAZON SOCIAL":         fieldName,
	"ACTIVIDAD ECONOMICA":         fieldActivity,
	"FECHA DE INICIO OPERACIONES": fieldStartDate,
	"FECHA INICIO OPERACIONES":    fieldStartDate,
	"FECHA DE INICIO":             fieldStartDate,
	"ESTADO":                      fieldStatus,
	"REGIMEN DE PAGO":             fieldRegime,
	"REGIMEN PAGO":                fieldRegime,
}

// columnMap holds the column index of each field, -1 when absent.
type columnMap [numFields]int

func (m columnMap) get(row []string, f field) string {
	i := m[f]
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

// mapHeader resolves header cells to fields. The first column matching a
// field wins. ok is false when no identifier column exists.
func mapHeader(header []string) (m columnMap, ok bool) {
	for i := range m {
		m[i] = -1
	}
	for i, cell := range header {
		f, known := headerAliases[foldHeader(cell)]
		if known && m[f] < 0 {
			m[f] = i
		}
	}
	return m, m[fieldRNC] >= 0
}

// foldHeader upper-cases, strips accents, and collapses whitespace so
// "Razón  Social" and "RAZON SOCIAL" compare equal.
func foldHeader(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.Join(strings.Fields(strings.ToUpper(folded)), " ")
}
