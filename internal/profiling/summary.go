package profiling

import (
	"slices"

	"chainbench/domain/run"
	"chainbench/internal/errors"
)

// Summary aggregates every logged run that timed the same ordering over the
// same number of keys.
type Summary struct {
	Order  run.Order  `json:"order"`
	Count  int        `json:"count"`
	Runs   int        `json:"runs"`
	Insert PhaseStats `json:"insert"`
	Search PhaseStats `json:"search"`
	Delete PhaseStats `json:"delete"`
}

type groupKey struct {
	count int
	order run.Order
}

// Summarize groups records by (count, order) and describes each phase.
// Groups come back ordered by count, then in run.Orders sequence.
func (da *DistributionAnalyzer) Summarize(records []run.Record) ([]Summary, error) {
	groups := make(map[groupKey][]run.Record)
	var keys []groupKey
	for _, rec := range records {
		k := groupKey{count: rec.Count, order: rec.Order}
		if _, ok := groups[k]; !ok {
			keys = append(keys, k)
		}
		groups[k] = append(groups[k], rec)
	}

	slices.SortFunc(keys, func(a, b groupKey) int {
		if a.count != b.count {
			return a.count - b.count
		}
		return slices.Index(run.Orders, a.order) - slices.Index(run.Orders, b.order)
	})

	summaries := make([]Summary, 0, len(keys))
	for _, k := range keys {
		recs := groups[k]
		insert := make([]float64, len(recs))
		search := make([]float64, len(recs))
		del := make([]float64, len(recs))
		for i, rec := range recs {
			insert[i], search[i], del[i] = rec.InsertSeconds, rec.SearchSeconds, rec.DeleteSeconds
		}

		s := Summary{Order: k.order, Count: k.count, Runs: len(recs)}
		var err error
		if s.Insert, err = da.Describe(insert); err != nil {
			return nil, errors.Wrapf(err, "summarizing %s insert timings for %d keys", k.order, k.count)
		}
		if s.Search, err = da.Describe(search); err != nil {
			return nil, errors.Wrapf(err, "summarizing %s search timings for %d keys", k.order, k.count)
		}
		if s.Delete, err = da.Describe(del); err != nil {
			return nil, errors.Wrapf(err, "summarizing %s delete timings for %d keys", k.order, k.count)
		}
		summaries = append(summaries, s)
	}
	return summaries, nil
}
