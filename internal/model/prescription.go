package model

// PrescriptionDocument is the structured snapshot recovered from one scan's
// recognized text. It is produced once per scan and never mutated afterwards;
// corrections happen on the reconciliation line items instead.
type PrescriptionDocument struct {
	PatientName     string          `json:"patient_name"`
	DoctorName      string          `json:"doctor_name"`
	MedicineEntries []MedicineEntry `json:"medicine_entries"`
}

// MedicineEntry is one parsed medicine line. Fields the extractor could not
// derive stay empty; quantity defaults to 1.
type MedicineEntry struct {
	Name       string `json:"name"`
	Strength   string `json:"strength"`
	Quantity   int    `json:"quantity"`
	Dosage     string `json:"dosage"`
	Frequency  string `json:"frequency"`
	Duration   string `json:"duration"`
	SourceLine string `json:"source_line"`
}
