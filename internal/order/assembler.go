package order

import (
	"time"

	"github.com/jwalitptl/pharmacy-api/internal/model"
	"github.com/jwalitptl/pharmacy-api/internal/reconcile"
)

// Assembler converts a validated reconciliation snapshot into the request
// shape the external order service expects. It assumes Validate already
// passed; it performs no checking of its own.
type Assembler struct {
	now func() time.Time
}

func NewAssembler() *Assembler {
	return &Assembler{now: time.Now}
}

// Build produces an OrderRequest with status "pending". Unbound line items
// carry their temporary id so the order service can flag them for manual
// fulfilment.
func (a *Assembler) Build(state *reconcile.State) model.OrderRequest {
	items := make([]model.OrderItem, 0, len(state.Items))
	for _, li := range state.Items {
		id := li.CatalogID
		if id == "" {
			id = li.TempID
		}
		items = append(items, model.OrderItem{
			MedicineID: id,
			Quantity:   li.Quantity,
			Unit:       li.Unit,
			Dosage:     li.Dosage,
			Frequency:  li.Frequency,
			Duration:   li.Duration,
		})
	}

	return model.OrderRequest{
		PatientName:      state.PatientName,
		DoctorName:       state.DoctorName,
		PrescriptionDate: a.now(),
		Notes:            state.Notes,
		Items:            items,
		Status:           model.OrderStatusPending,
		TotalAmount:      state.Total,
	}
}
