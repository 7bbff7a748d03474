package plan

import (
	"github.com/shopspring/decimal"
)

// Well-known plan identifiers. The catalog order determines upgrade order:
// a plan's upgrades are the entries strictly after it.
const (
	PlanIDFree    = "free"
	PlanIDPremium = "premium"
	PlanIDPro     = "pro"
)

// Catalog is the ordered, static plan catalog. It is reference data resolved
// against subscription plan ids, never persisted.
type Catalog struct {
	plans []*Plan
}

// NewCatalog returns the default free/premium/pro catalog
func NewCatalog() *Catalog {
	return &Catalog{
		plans: []*Plan{
			{
				ID:       PlanIDFree,
				Name:     "Gratis",
				Price:    decimal.Zero,
				Currency: "usd",
				Features: []string{
					"Registro de transacciones por WhatsApp",
					"Hasta 3 categorías personalizadas",
					"Resumen mensual",
				},
				Limitations: []string{
					"Sin metas de ahorro",
					"Sin análisis avanzado",
				},
			},
			{
				ID:       PlanIDPremium,
				Name:     "Premium",
				Price:    decimal.NewFromFloat(4.99),
				Currency: "usd",
				Features: []string{
					"Categorías ilimitadas",
					"Metas de ahorro",
					"Recordatorios de suscripciones",
					"Análisis de gastos",
				},
			},
			{
				ID:       PlanIDPro,
				Name:     "Pro",
				Price:    decimal.NewFromFloat(9.99),
				Currency: "usd",
				Features: []string{
					"Todo lo de Premium",
					"Coach financiero personalizado",
					"Reportes exportables",
					"Soporte prioritario",
				},
			},
		},
	}
}

// Plans returns the catalog entries in upgrade order
func (c *Catalog) Plans() []*Plan {
	return c.plans
}

// Get returns the plan with the given id, or nil when unknown
func (c *Catalog) Get(id string) *Plan {
	for _, p := range c.plans {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// Free returns the catalog's free entry
func (c *Catalog) Free() *Plan {
	return c.Get(PlanIDFree)
}

// UpgradesAfter returns the catalog entries strictly after the plan with the
// given id. Unknown ids yield nil.
func (c *Catalog) UpgradesAfter(id string) []*Plan {
	for i, p := range c.plans {
		if p.ID == id {
			return c.plans[i+1:]
		}
	}
	return nil
}
