package catalog

import (
	"context"
	"sync"

	"github.com/jwalitptl/pharmacy-api/internal/model"
)

// MatchAll resolves a batch of candidates with a bounded worker pool. Input
// order is preserved in the result slice, and one candidate's failure never
// aborts the rest of the batch: Match already degrades to an unmatched
// result.
func (m *Matcher) MatchAll(ctx context.Context, queries []Query) []model.MatchResult {
	if len(queries) == 0 {
		return nil
	}

	results := make([]model.MatchResult, len(queries))
	sem := make(chan struct{}, m.cfg.Workers)
	var wg sync.WaitGroup

	for i := range queries {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = m.Match(ctx, queries[i])
		}(i)
	}
	wg.Wait()

	return results
}
