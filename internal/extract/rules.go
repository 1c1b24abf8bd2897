package extract

import (
	"regexp"
	"strings"
)

// FieldRule is one named extraction pattern. The first capture group carries
// the extracted value.
type FieldRule struct {
	Name    string
	Pattern *regexp.Regexp
}

// Apply runs the rule against text and returns the trimmed capture.
func (r FieldRule) Apply(text string) (string, bool) {
	m := r.Pattern.FindStringSubmatch(text)
	if len(m) < 2 {
		return "", false
	}
	v := strings.TrimSpace(m[1])
	return v, v != ""
}

// RuleChain is an ordered list of rules for a single logical field.
// Evaluation is first-match-wins: precedence lives in the order of the
// slice, not inside the patterns.
type RuleChain struct {
	Field string
	Rules []FieldRule
}

// Evaluate returns the first non-empty capture, or "".
func (c RuleChain) Evaluate(text string) string {
	for _, r := range c.Rules {
		if v, ok := r.Apply(text); ok {
			return v
		}
	}
	return ""
}

func newRule(name, pattern string) FieldRule {
	return FieldRule{Name: name, Pattern: regexp.MustCompile(pattern)}
}

// patientRules recover the patient name from the whole recognized text.
// Explicit labels first, honorific prefixes last.
func patientRules() RuleChain {
	return RuleChain{
		Field: "patient_name",
		Rules: []FieldRule{
			newRule("patient-label", `(?i)\bpatient(?:\s*name)?\s*[:\-]\s*([A-Za-z][A-Za-z .']*)`),
			newRule("name-label", `(?i)\bname\s*[:\-]\s*([A-Za-z][A-Za-z .']*)`),
			newRule("for-label", `(?i)\bfor\s*[:\-]\s*([A-Za-z][A-Za-z .']*)`),
			newRule("honorific", `\b(?:Mr|Mrs|Ms|Master|Miss)\.? +([A-Z][a-z]+(?: +[A-Z][a-z]+)*)`),
		},
	}
}

// doctorRules recover the prescribing doctor's name. Same precedence idea:
// labels before the bare Dr. prefix.
func doctorRules() RuleChain {
	return RuleChain{
		Field: "doctor_name",
		Rules: []FieldRule{
			newRule("doctor-label", `(?i)\bdoctor\s*[:\-]\s*(?:Dr\.?\s*)?([A-Za-z][A-Za-z .']*)`),
			newRule("physician-label", `(?i)\bphysician\s*[:\-]\s*(?:Dr\.?\s*)?([A-Za-z][A-Za-z .']*)`),
			// Separators are spaces only; \s would let a capture run across
			// line breaks into the next label.
			newRule("dr-prefix", `\bDr\.? +([A-Z][A-Za-z.]*(?: +[A-Z][A-Za-z.]*)*)`),
		},
	}
}
