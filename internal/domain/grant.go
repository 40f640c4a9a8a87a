package domain

import (
	"fmt"
	"strings"
	"time"
)

// Grant is a public funding announcement ("convocatoria") fetched from BDNS.
type Grant struct {
	ID               int64
	BDNSCode         string
	Title            string
	Purpose          string
	LegalBasis       string
	Budget           float64
	IssuingBody      string
	ReceivedAt       string
	ApplicationOpen  string
	ApplicationClose string
	URL              string
	Embedding        []float32
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// IndexText renders the field/value lines that are embedded and retrieved.
// Empty fields are omitted so the passage stays compact.
func (g *Grant) IndexText() string {
	fields := []struct {
		label string
		value string
	}{
		{"Título", g.Title},
		{"Finalidad", g.Purpose},
		{"Bases Reguladoras", g.LegalBasis},
		{"Presupuesto", formatBudget(g.Budget)},
		{"Órgano convocante", g.IssuingBody},
		{"Código BDNS", g.BDNSCode},
		{"Fecha de Recepción", g.ReceivedAt},
		{"Inicio de Solicitud", g.ApplicationOpen},
		{"Fin de Solicitud", g.ApplicationClose},
		{"URL Bases Reguladoras", g.URL},
	}

	lines := make([]string, 0, len(fields))
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		lines = append(lines, f.label+": "+f.value)
	}
	return strings.Join(lines, "\n")
}

func formatBudget(v float64) string {
	if v == 0 {
		return ""
	}
	return fmt.Sprintf("%.2f", v)
}
