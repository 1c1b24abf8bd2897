package catalog

import (
	"context"
	"regexp"
	"strings"

	"github.com/jwalitptl/pharmacy-api/internal/model"
	"github.com/jwalitptl/pharmacy-api/pkg/logger"
)

var reDigits = regexp.MustCompile(`\d+`)

// Query is one candidate name to resolve, with the extracted strength when
// the field extractor recovered one.
type Query struct {
	Name     string
	Strength string
}

type MatcherConfig struct {
	// MinScore is the permissive threshold passed to the search service.
	MinScore float64 `mapstructure:"min_score"`
	// MinConfidence is the floor below which the matcher refuses to
	// auto-select and reports the candidate as unmatched. Tunable on
	// purpose; auto-selecting a weak partial match silently picks the
	// wrong medicine.
	MinConfidence float64 `mapstructure:"min_confidence"`
	Limit         int     `mapstructure:"limit"`
	// Workers bounds how many candidates are resolved concurrently.
	Workers int `mapstructure:"workers"`
}

func DefaultMatcherConfig() MatcherConfig {
	return MatcherConfig{
		MinScore:      0.3,
		MinConfidence: 0.4,
		Limit:         10,
		Workers:       4,
	}
}

// Matcher resolves candidate medicine names against the live catalog via a
// cascade of search-term variants.
type Matcher struct {
	search Searcher
	cfg    MatcherConfig
	logger *logger.Logger
}

func NewMatcher(search Searcher, cfg MatcherConfig, log *logger.Logger) *Matcher {
	if cfg.Limit <= 0 {
		cfg.Limit = DefaultMatcherConfig().Limit
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultMatcherConfig().Workers
	}
	return &Matcher{
		search: search,
		cfg:    cfg,
		logger: log.WithComponent("matcher"),
	}
}

// Match tries search-term variants in order and stops at the first variant
// returning at least one result. A search error on one variant is treated as
// "no result for this variant", never as fatal.
func (m *Matcher) Match(ctx context.Context, q Query) model.MatchResult {
	unmatched := model.MatchResult{QueryName: q.Name}
	opts := SearchOptions{MinScore: m.cfg.MinScore, Limit: m.cfg.Limit}

	for _, variant := range searchVariants(q.Name) {
		results, err := m.search.Search(ctx, variant, opts)
		if err != nil {
			m.logger.Debug("variant search failed", "variant", variant, "error", err.Error())
			continue
		}
		if len(results) == 0 {
			continue
		}

		chosen := pickBest(q, results)
		if chosen.Score < m.cfg.MinConfidence {
			m.logger.Debug("best match below confidence floor",
				"query", q.Name, "item", chosen.Item.Name, "score", chosen.Score)
			return unmatched
		}
		item := chosen.Item
		return model.MatchResult{
			QueryName:   q.Name,
			Item:        &item,
			Confidence:  chosen.Score,
			IsAvailable: item.StockQuantity > 0,
		}
	}

	return unmatched
}

// searchVariants builds the ordered cascade of search terms for a name:
// full lowercased name, name without whitespace, leading token, name with
// digits stripped.
func searchVariants(name string) []string {
	full := strings.ToLower(strings.TrimSpace(name))
	if full == "" {
		return nil
	}

	candidates := []string{
		full,
		strings.Join(strings.Fields(full), ""),
		firstToken(full),
		strings.TrimSpace(reDigits.ReplaceAllString(full, "")),
	}

	var out []string
	seen := make(map[string]struct{})
	for _, v := range candidates {
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// pickBest applies the tie-break over the service's best-first results:
// containment or leading-token agreement wins, strength overlap wins among
// those, and the service's top result is the fallback.
func pickBest(q Query, results []ScoredItem) ScoredItem {
	qname := strings.ToLower(strings.TrimSpace(q.Name))
	qtok := firstToken(qname)

	var contained *ScoredItem
	for i := range results {
		name := strings.ToLower(results[i].Item.Name)
		if !strings.Contains(name, qname) && !strings.Contains(qname, name) && firstToken(name) != qtok {
			continue
		}
		if q.Strength != "" && strengthOverlap(results[i].Item.Strength, q.Strength) {
			return results[i]
		}
		if contained == nil {
			contained = &results[i]
		}
	}
	if contained != nil {
		return *contained
	}
	return results[0]
}

// strengthOverlap compares the numeric parts of two strength strings, so
// "500mg" agrees with "500 mg" and "Paracetamol 500".
func strengthOverlap(a, b string) bool {
	da := strings.Join(reDigits.FindAllString(a, -1), "")
	db := strings.Join(reDigits.FindAllString(b, -1), "")
	if da == "" || db == "" {
		return false
	}
	return strings.Contains(da, db) || strings.Contains(db, da)
}

func firstToken(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
