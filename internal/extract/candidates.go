package extract

import (
	"regexp"
	"strings"
)

const (
	minCandidateLen = 3
	maxCandidateLen = 49
)

var (
	// Pass 1: capitalized single or multi word tokens, optionally followed
	// by a dosage unit ("Paracetamol", "Amoxicillin Clavulanate 625mg").
	reCapitalizedName = regexp.MustCompile(`\b([A-Z][a-z]{2,}(?: +[A-Z][a-z]{2,}){0,2})(?: +\d+ ?(?:mcg|mg|ml|g))?\b`)

	// Pass 2: lowercase generic-style tokens ending in common drug suffixes.
	reGenericName = regexp.MustCompile(`\b([a-z]{2,}(?:cillin|mycin|azole|prazole|zole|pril|sartan|statin|formin|olol|dipine|floxacin|cycline|cetamol|profen|dryl))\b`)

	// Pass 3: mixed-case brand-style tokens ("CalPol", "Dolo650").
	reBrandName = regexp.MustCompile(`\b([A-Z][a-z]+[A-Z][A-Za-z]*|[A-Z][A-Za-z]*\d+[A-Za-z0-9]*)\b`)

	reDoseToken = regexp.MustCompile(`(?i)\b\d+(?:\.\d+)?\s*(?:mcg|mg|ml|g)\b`)
	reNumber    = regexp.MustCompile(`\b\d+\b`)
)

// instructionWords is the vocabulary stripped from a line before its
// residual is considered a candidate name.
var instructionWords = map[string]struct{}{
	"take": {}, "takes": {}, "taken": {}, "use": {}, "apply": {},
	"tablet": {}, "tablets": {}, "capsule": {}, "capsules": {},
	"syrup": {}, "drops": {}, "drop": {}, "injection": {}, "bottle": {},
	"strip": {}, "box": {},
	"once": {}, "twice": {}, "thrice": {}, "daily": {},
	"morning": {}, "evening": {}, "night": {}, "bedtime": {},
	"before": {}, "after": {}, "with": {}, "food": {}, "meal": {},
	"meals": {}, "water": {},
	"for": {}, "day": {}, "days": {}, "week": {}, "weeks": {},
	"month": {}, "months": {},
	"patient": {}, "doctor": {}, "name": {}, "age": {}, "date": {},
	"address": {}, "signature": {}, "rx": {},
}

// CandidateNameExtractor harvests plausible medicine-name strings from
// recognized text, independent of the stricter field extraction. Its output
// is only ever used as fallback search keys for the catalog matcher.
type CandidateNameExtractor struct{}

func NewCandidateNameExtractor() *CandidateNameExtractor {
	return &CandidateNameExtractor{}
}

// Extract returns a deduplicated, order-preserving list of candidate names.
func (e *CandidateNameExtractor) Extract(raw string) []string {
	text := NormalizeText(raw)
	if text == "" {
		return nil
	}

	var out []string
	seen := make(map[string]struct{})
	add := func(name string) {
		name = strings.TrimSpace(name)
		if len(name) < minCandidateLen || len(name) > maxCandidateLen {
			return
		}
		if !hasLetter(name) || isInstructionOnly(name) {
			return
		}
		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		out = append(out, name)
	}

	for _, m := range reCapitalizedName.FindAllStringSubmatch(text, -1) {
		add(m[1])
	}
	for _, m := range reGenericName.FindAllStringSubmatch(text, -1) {
		add(m[1])
	}
	for _, m := range reBrandName.FindAllStringSubmatch(text, -1) {
		add(m[1])
	}

	// Final pass: strip instructional vocabulary and dosage tokens from each
	// line and keep the residual. This is what rescues noisy lines the
	// field extractor's combined pattern rejects.
	for _, line := range strings.Split(text, "\n") {
		add(lineResidual(line))
	}

	return out
}

func lineResidual(line string) string {
	line = reDoseToken.ReplaceAllString(line, " ")
	line = reNumber.ReplaceAllString(line, " ")

	var kept []string
	for _, word := range strings.Fields(line) {
		clean := strings.ToLower(strings.Trim(word, ".,:;()-"))
		if clean == "" {
			continue
		}
		if _, skip := instructionWords[clean]; skip {
			continue
		}
		kept = append(kept, strings.Trim(word, ".,:;()"))
	}
	return strings.Join(kept, " ")
}

func isInstructionOnly(s string) bool {
	for _, word := range strings.Fields(strings.ToLower(s)) {
		if _, ok := instructionWords[strings.Trim(word, ".,:;()-")]; !ok {
			return false
		}
	}
	return true
}

func hasLetter(s string) bool {
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			return true
		}
	}
	return false
}
