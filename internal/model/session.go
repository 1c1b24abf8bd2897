package model

// SessionState is the lifecycle state of one scan session.
type SessionState string

const (
	SessionStateExtracting  SessionState = "extracting"
	SessionStateReconciling SessionState = "reconciling"
	SessionStateSubmitting  SessionState = "submitting"
	SessionStateCompleted   SessionState = "completed"
	SessionStateFailed      SessionState = "failed"
)

// MedicineLineItem is one editable row in the reconciliation form. CatalogID
// is empty for items that were extracted but never resolved against the
// catalog; those carry a TempID until the user picks a real item.
type MedicineLineItem struct {
	CatalogID   string  `json:"catalog_id,omitempty"`
	TempID      string  `json:"temp_id,omitempty"`
	Name        string  `json:"name"`
	Strength    string  `json:"strength,omitempty"`
	Quantity    int     `json:"quantity"`
	Unit        string  `json:"unit,omitempty"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	Dosage      string  `json:"dosage,omitempty"`
	Frequency   string  `json:"frequency,omitempty"`
	Duration    string  `json:"duration,omitempty"`
	IsExtracted bool    `json:"is_extracted"`
}

// Bound reports whether the line item is tied to a real catalog entry.
func (li MedicineLineItem) Bound() bool {
	return li.CatalogID != ""
}
