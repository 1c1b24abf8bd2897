package model

import "time"

const OrderStatusPending = "pending"

// OrderItem is one medicine position inside an order request.
type OrderItem struct {
	MedicineID string `json:"medicine_id"`
	Quantity   int    `json:"quantity"`
	Unit       string `json:"unit,omitempty"`
	Dosage     string `json:"dosage,omitempty"`
	Frequency  string `json:"frequency,omitempty"`
	Duration   string `json:"duration,omitempty"`
}

// OrderRequest is the payload submitted to the external order service once a
// reconciliation snapshot has passed validation.
type OrderRequest struct {
	PatientName      string      `json:"patient_name"`
	DoctorName       string      `json:"doctor_name,omitempty"`
	PrescriptionDate time.Time   `json:"prescription_date"`
	Notes            string      `json:"notes,omitempty"`
	Items            []OrderItem `json:"items"`
	Status           string      `json:"status"`
	TotalAmount      float64     `json:"total_amount"`
}
