package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/pharmacy-api/pkg/logger"
)

func newTestExtractor() *FieldExtractor {
	return NewFieldExtractor(logger.NewLogger(nil))
}

func TestExtractWellFormedPrescription(t *testing.T) {
	e := newTestExtractor()

	doc := e.Extract("Patient: John Doe\nParacetamol 500mg 1 tablet twice daily for 5 days")

	assert.Equal(t, "John Doe", doc.PatientName)
	require.Len(t, doc.MedicineEntries, 1)

	entry := doc.MedicineEntries[0]
	assert.Equal(t, "Paracetamol", entry.Name)
	assert.Equal(t, "500mg", entry.Strength)
	assert.Equal(t, 1, entry.Quantity)
	assert.Equal(t, "twice", entry.Frequency)
	assert.Equal(t, "5 days", entry.Duration)
}

func TestExtractDoctorName(t *testing.T) {
	e := newTestExtractor()

	doc := e.Extract("Dr. Sarah Smith\nPatient: Ramesh Kumar\nAmoxicillin 250mg 2 capsules daily for 7 days")

	assert.Equal(t, "Sarah Smith", doc.DoctorName)
	assert.Equal(t, "Ramesh Kumar", doc.PatientName)
	require.Len(t, doc.MedicineEntries, 1)
	assert.Equal(t, "Amoxicillin", doc.MedicineEntries[0].Name)
	assert.Equal(t, 2, doc.MedicineEntries[0].Quantity)
}

func TestExtractMultipleMedicineLines(t *testing.T) {
	e := newTestExtractor()

	doc := e.Extract(strings.Join([]string{
		"Patient Name: Asha Patel",
		"1. Paracetamol 650mg 2 tablets thrice daily for 3 days",
		"2. Cetirizine 10mg 1 tablet night for 5 days",
		"Take after meals",
	}, "\n"))

	require.Len(t, doc.MedicineEntries, 2)
	assert.Equal(t, "Paracetamol", doc.MedicineEntries[0].Name)
	assert.Equal(t, "650mg", doc.MedicineEntries[0].Strength)
	assert.Equal(t, 2, doc.MedicineEntries[0].Quantity)
	assert.Equal(t, "Cetirizine", doc.MedicineEntries[1].Name)
	assert.Equal(t, "night", doc.MedicineEntries[1].Frequency)
}

func TestExtractQuantityDefaultsToOne(t *testing.T) {
	e := newTestExtractor()

	doc := e.Extract("Ibuprofen 400mg daily for 2 days")

	require.Len(t, doc.MedicineEntries, 1)
	assert.Equal(t, 1, doc.MedicineEntries[0].Quantity)
}

func TestExtractGarbageNeverFails(t *testing.T) {
	e := newTestExtractor()

	for _, raw := range []string{
		"",
		"   \n\t\n  ",
		"@@@###$$$",
		"500mg 500mg 500mg",
		strings.Repeat("x", 10000),
	} {
		doc := e.Extract(raw)
		assert.NotNil(t, doc.MedicineEntries, "raw=%q", raw)
	}
}

func TestExtractEmptyTextYieldsEmptyDocument(t *testing.T) {
	e := newTestExtractor()

	doc := e.Extract("")

	assert.Empty(t, doc.PatientName)
	assert.Empty(t, doc.DoctorName)
	assert.Empty(t, doc.MedicineEntries)
}

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"crlf to lf", "a\r\nb", "a\nb"},
		{"tabs to space", "a\t\tb", "a b"},
		{"collapse spaces", "a    b", "a b"},
		{"trim line edges", "  a  \n  b  ", "a\nb"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeText(tt.in))
		})
	}
}

func TestNormalizeTextIdempotent(t *testing.T) {
	in := "Patient:\tJohn  Doe\r\nParacetamol   500mg"
	once := NormalizeText(in)
	assert.Equal(t, once, NormalizeText(once))
}

func TestExtractStrengthWhitespaceJoined(t *testing.T) {
	e := newTestExtractor()

	doc := e.Extract("Metformin 500 mg 1 tablet twice daily")

	require.Len(t, doc.MedicineEntries, 1)
	assert.Equal(t, "500mg", doc.MedicineEntries[0].Strength)
}
