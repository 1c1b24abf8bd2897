package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCandidatesCapitalizedNames(t *testing.T) {
	e := NewCandidateNameExtractor()

	names := e.Extract("Paracetamol 500mg\nAzithromycin 250mg")

	assert.Contains(t, names, "Paracetamol")
	assert.Contains(t, names, "Azithromycin")
}

func TestCandidatesGenericSuffixes(t *testing.T) {
	e := NewCandidateNameExtractor()

	names := e.Extract("take amoxicillin after meals\nomeprazole before breakfast")

	assert.Contains(t, names, "amoxicillin")
	assert.Contains(t, names, "omeprazole")
}

func TestCandidatesBrandStyleTokens(t *testing.T) {
	e := NewCandidateNameExtractor()

	names := e.Extract("CalPol 650 and Dolo650 as needed")

	assert.Contains(t, names, "CalPol")
	assert.Contains(t, names, "Dolo650")
}

func TestCandidatesDeduplicatedCaseInsensitive(t *testing.T) {
	e := NewCandidateNameExtractor()

	names := e.Extract("Paracetamol 500mg\nPARACETAMOL\nparacetamol twice daily")

	count := 0
	for _, n := range names {
		if n == "Paracetamol" || n == "PARACETAMOL" || n == "paracetamol" {
			count++
		}
	}
	assert.Equal(t, 1, count, "expected a single candidate across case variants, got %v", names)
}

func TestCandidatesSkipInstructionOnlyLines(t *testing.T) {
	e := NewCandidateNameExtractor()

	names := e.Extract("take twice daily after meals\nfor 5 days")

	assert.Empty(t, names)
}

func TestCandidatesEmptyInput(t *testing.T) {
	e := NewCandidateNameExtractor()

	assert.Nil(t, e.Extract(""))
	assert.Nil(t, e.Extract("   \n  "))
}

func TestCandidatesLengthBounds(t *testing.T) {
	e := NewCandidateNameExtractor()

	names := e.Extract("Ab 500mg")
	assert.NotContains(t, names, "Ab")
}

func TestCandidatesRescueNoisyLine(t *testing.T) {
	e := NewCandidateNameExtractor()

	// The strict medicine-line pattern rejects this line; the residual pass
	// still surfaces the name for the catalog matcher.
	names := e.Extract("take 2 augmentin-dds tablets twice daily")

	assert.Contains(t, names, "augmentin-dds")
}
