package catalog

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/pharmacy-api/internal/model"
	"github.com/jwalitptl/pharmacy-api/pkg/logger"
)

// fakeSearcher returns canned results per search term and records every term
// it was asked for.
type fakeSearcher struct {
	mu      sync.Mutex
	results map[string][]ScoredItem
	errs    map[string]error
	terms   []string
}

func (f *fakeSearcher) Search(_ context.Context, term string, _ SearchOptions) ([]ScoredItem, error) {
	f.mu.Lock()
	f.terms = append(f.terms, term)
	f.mu.Unlock()
	if err, ok := f.errs[term]; ok {
		return nil, err
	}
	return f.results[term], nil
}

func scored(id, name, strength string, stock int, score float64) ScoredItem {
	return ScoredItem{
		Item: model.CatalogItem{
			ID:            id,
			Name:          name,
			Strength:      strength,
			StockQuantity: stock,
			Price:         10,
		},
		Score: score,
	}
}

func newTestMatcher(search Searcher) *Matcher {
	return NewMatcher(search, DefaultMatcherConfig(), logger.NewLogger(nil))
}

func TestMatchFirstVariantWins(t *testing.T) {
	search := &fakeSearcher{results: map[string][]ScoredItem{
		"paracetamol": {scored("m1", "Paracetamol", "500mg", 20, 0.95)},
	}}
	m := newTestMatcher(search)

	res := m.Match(context.Background(), Query{Name: "Paracetamol", Strength: "500mg"})

	require.True(t, res.Matched())
	assert.Equal(t, "m1", res.Item.ID)
	assert.Equal(t, "Paracetamol", res.QueryName)
	assert.True(t, res.IsAvailable)
	assert.InDelta(t, 0.95, res.Confidence, 1e-9)
}

func TestMatchFallsThroughVariantCascade(t *testing.T) {
	// Full name and no-space variants return nothing; the leading token hits.
	search := &fakeSearcher{results: map[string][]ScoredItem{
		"amoxicillin": {scored("m2", "Amoxicillin Clavulanate", "625mg", 5, 0.7)},
	}}
	m := newTestMatcher(search)

	res := m.Match(context.Background(), Query{Name: "Amoxicillin Clavulanate"})

	require.True(t, res.Matched())
	assert.Equal(t, "m2", res.Item.ID)
	assert.Equal(t, []string{"amoxicillin clavulanate", "amoxicillinclavulanate", "amoxicillin"}, search.terms)
}

func TestMatchAllVariantsEmpty(t *testing.T) {
	search := &fakeSearcher{}
	m := newTestMatcher(search)

	res := m.Match(context.Background(), Query{Name: "Xyzzified"})

	assert.False(t, res.Matched())
	assert.Equal(t, "Xyzzified", res.QueryName)
	assert.Nil(t, res.Item)
}

func TestMatchVariantErrorIsNotFatal(t *testing.T) {
	search := &fakeSearcher{
		errs: map[string]error{"cetirizine 10": fmt.Errorf("search timeout")},
		results: map[string][]ScoredItem{
			"cetirizine": {scored("m4", "Cetirizine", "10mg", 8, 0.8)},
		},
	}
	m := newTestMatcher(search)

	res := m.Match(context.Background(), Query{Name: "Cetirizine 10"})

	// The first variant errored; a later variant still resolved the match.
	require.True(t, res.Matched())
	assert.Equal(t, "m4", res.Item.ID)
	assert.Contains(t, search.terms, "cetirizine 10")
	assert.Contains(t, search.terms, "cetirizine")
}

func TestMatchStrengthOverlapBreaksTie(t *testing.T) {
	search := &fakeSearcher{results: map[string][]ScoredItem{
		"paracetamol": {
			scored("m650", "Paracetamol", "650mg", 10, 0.9),
			scored("m500", "Paracetamol", "500mg", 10, 0.85),
		},
	}}
	m := newTestMatcher(search)

	res := m.Match(context.Background(), Query{Name: "Paracetamol", Strength: "500mg"})

	require.True(t, res.Matched())
	assert.Equal(t, "m500", res.Item.ID)
}

func TestMatchContainmentBeatsUnrelatedTopResult(t *testing.T) {
	search := &fakeSearcher{results: map[string][]ScoredItem{
		"dolo": {
			scored("mx", "Diclofenac", "50mg", 10, 0.9),
			scored("md", "Dolo 650", "650mg", 10, 0.6),
		},
	}}
	m := newTestMatcher(search)

	res := m.Match(context.Background(), Query{Name: "Dolo"})

	require.True(t, res.Matched())
	assert.Equal(t, "md", res.Item.ID)
}

func TestMatchBelowConfidenceFloorIsUnmatched(t *testing.T) {
	search := &fakeSearcher{results: map[string][]ScoredItem{
		"obscurine": {scored("m9", "Something Else", "10mg", 3, 0.2)},
	}}
	m := newTestMatcher(search)

	res := m.Match(context.Background(), Query{Name: "Obscurine"})

	assert.False(t, res.Matched(), "a weak partial match must not be auto-selected")
}

func TestMatchOutOfStockIsUnavailable(t *testing.T) {
	search := &fakeSearcher{results: map[string][]ScoredItem{
		"ibuprofen": {scored("m3", "Ibuprofen", "400mg", 0, 0.9)},
	}}
	m := newTestMatcher(search)

	res := m.Match(context.Background(), Query{Name: "Ibuprofen"})

	require.True(t, res.Matched())
	assert.False(t, res.IsAvailable)
}

func TestMatchEmptyName(t *testing.T) {
	m := newTestMatcher(&fakeSearcher{})

	res := m.Match(context.Background(), Query{Name: "   "})

	assert.False(t, res.Matched())
}

func TestMatchAllPreservesOrder(t *testing.T) {
	search := &fakeSearcher{results: map[string][]ScoredItem{
		"alpha": {scored("a", "Alpha", "", 1, 0.9)},
		"gamma": {scored("g", "Gamma", "", 1, 0.9)},
	}}
	m := newTestMatcher(search)

	results := m.MatchAll(context.Background(), []Query{
		{Name: "Alpha"},
		{Name: "Beta"},
		{Name: "Gamma"},
	})

	require.Len(t, results, 3)
	assert.Equal(t, "Alpha", results[0].QueryName)
	assert.True(t, results[0].Matched())
	assert.False(t, results[1].Matched())
	assert.Equal(t, "Gamma", results[2].QueryName)
	assert.True(t, results[2].Matched())
}

func TestMatchAllEmptyBatch(t *testing.T) {
	m := newTestMatcher(&fakeSearcher{})

	assert.Nil(t, m.MatchAll(context.Background(), nil))
}

func TestSearchVariants(t *testing.T) {
	assert.Equal(t,
		[]string{"dolo 650", "dolo650", "dolo"},
		searchVariants("Dolo 650"))
	assert.Equal(t, []string{"paracetamol"}, searchVariants("Paracetamol"))
	assert.Nil(t, searchVariants("  "))
}
