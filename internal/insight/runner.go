package insight

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/spendlens/spendlens/internal/model"
)

// Run invokes all detectors concurrently over the same inputs and
// concatenates their results in a fixed order: budget recommendations,
// largest outlier, frequency spike, duplicate charges. The detectors
// are pure, so running them in parallel needs no coordination beyond
// the join; Run adds no ranking of its own. The only possible error is
// a cancelled context.
func (e *Engine) Run(ctx context.Context, txns []model.Transaction, budgets []model.Budget, days int) (model.Insights, error) {
	var results [4]model.Insights

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		results[0] = e.BudgetRecommendations(txns, budgets)
		return nil
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		results[1] = e.LargestOutlier(txns)
		return nil
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		results[2] = e.FrequencySpike(txns, days)
		return nil
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		results[3] = e.DuplicateCharges(txns)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var combined model.Insights
	for _, r := range results {
		combined = append(combined, r...)
	}
	return combined, nil
}
