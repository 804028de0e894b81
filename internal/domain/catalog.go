package domain

import (
	"time"
)

// ProductRecord is one eligible row from the stock table, read-only to
// this service. Eligibility means a strictly positive final price.
type ProductRecord struct {
	Code        string
	Description string
	FinalPrice  float64
}

// CatalogEntry is the denormalized mirror row derived from a
// ProductRecord. JSON names follow the mirror table's columns.
type CatalogEntry struct {
	Code                  string    `json:"codigo"`
	Description           string    `json:"descripcion"`
	NormalizedDescription string    `json:"descripcion_normalizada"`
	FinalPrice            float64   `json:"precio_final"`
	Keywords              []string  `json:"keywords"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// SyncReport summarizes one catalog sync run.
type SyncReport struct {
	RunID    string        `json:"run_id"`
	Read     int           `json:"read"`
	Inserted int           `json:"inserted"`
	Batches  int           `json:"batches"`
	Duration time.Duration `json:"duration"`
}
