package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/jwalitptl/pharmacy-api/internal/model"
	"github.com/jwalitptl/pharmacy-api/pkg/logger"
)

var (
	reCRLF       = regexp.MustCompile(`\r\n?`)
	reTabs       = regexp.MustCompile(`\t+`)
	reMultiSpace = regexp.MustCompile(` {2,}`)

	// A line is a medicine candidate when it carries a dosage or form keyword.
	reDoseKeyword = regexp.MustCompile(`(?i)(\d\s*(?:mcg|mg|ml|g)\b|\b(?:tablet|capsule|syrup|drop|injection)s?\b)`)

	// name = leading run of word characters, strength = the following
	// number+unit token. Lines that fail this are dropped.
	reNameStrength = regexp.MustCompile(`(?i)^\s*(?:\d+[\).]\s*)?([A-Za-z][A-Za-z\- ]*?)\s*(\d+(?:\.\d+)?\s*(?:mcg|mg|ml|g)\b)`)

	reQuantity  = regexp.MustCompile(`(?i)\b(\d+)\s*(?:tablet|capsule|ml|bottle|strip|box)(?:s|es)?\b`)
	reDosage    = regexp.MustCompile(`(?i)\b(\d+\s*(?:tablet|capsule|ml|drop)s?\s+(?:once|twice|thrice|daily|morning|evening|night))\b`)
	reFrequency = regexp.MustCompile(`(?i)\b(twice|once|thrice|daily|morning|evening|night)\b`)
	reDuration  = regexp.MustCompile(`(?i)\b(\d+\s*(?:day|week|month)s?)\b`)
)

// NormalizeText collapses noisy whitespace from the recognition engine while
// keeping line breaks, since all downstream parsing is line oriented.
func NormalizeText(s string) string {
	if s == "" {
		return s
	}
	s = reCRLF.ReplaceAllString(s, "\n")
	s = reTabs.ReplaceAllString(s, " ")
	s = reMultiSpace.ReplaceAllString(s, " ")
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// FieldExtractor parses recognized text into a structured prescription
// document. It never fails: unreadable input degrades to a partial or empty
// document and the reconciliation form is the correctness backstop.
type FieldExtractor struct {
	patient RuleChain
	doctor  RuleChain
	logger  *logger.Logger
}

func NewFieldExtractor(log *logger.Logger) *FieldExtractor {
	return &FieldExtractor{
		patient: patientRules(),
		doctor:  doctorRules(),
		logger:  log.WithComponent("extractor"),
	}
}

// Extract builds a PrescriptionDocument from raw recognized text. Extraction
// is intentionally lossy and first-match-wins; it never infers missing
// fields.
func (e *FieldExtractor) Extract(raw string) model.PrescriptionDocument {
	text := NormalizeText(raw)

	doc := model.PrescriptionDocument{
		PatientName:     trimName(e.patient.Evaluate(text)),
		DoctorName:      trimName(e.doctor.Evaluate(text)),
		MedicineEntries: []model.MedicineEntry{},
	}

	for _, line := range strings.Split(text, "\n") {
		if line == "" || !reDoseKeyword.MatchString(line) {
			continue
		}
		entry, ok := parseMedicineLine(line)
		if !ok {
			// Partial extraction is expected; the candidate extractor
			// gives the matcher a second chance on lines dropped here.
			e.logger.Debug("medicine line did not parse", "line", line)
			continue
		}
		doc.MedicineEntries = append(doc.MedicineEntries, entry)
	}

	return doc
}

func parseMedicineLine(line string) (model.MedicineEntry, bool) {
	m := reNameStrength.FindStringSubmatch(line)
	if m == nil {
		return model.MedicineEntry{}, false
	}

	name := strings.TrimSpace(m[1])
	strength := strings.Join(strings.Fields(m[2]), "")
	if name == "" {
		return model.MedicineEntry{}, false
	}

	entry := model.MedicineEntry{
		Name:       name,
		Strength:   strength,
		Quantity:   1,
		SourceLine: line,
	}

	// The first number preceding a count-unit keyword is the quantity.
	if qm := reQuantity.FindStringSubmatch(line); qm != nil {
		if q, err := strconv.Atoi(qm[1]); err == nil && q >= 1 {
			entry.Quantity = q
		}
	}
	if dm := reDosage.FindStringSubmatch(line); dm != nil {
		entry.Dosage = dm[1]
	}
	if fm := reFrequency.FindStringSubmatch(line); fm != nil {
		entry.Frequency = strings.ToLower(fm[1])
	}
	if um := reDuration.FindStringSubmatch(line); um != nil {
		entry.Duration = um[1]
	}

	return entry, true
}

func trimName(s string) string {
	return strings.Trim(strings.TrimSpace(s), ".-")
}
