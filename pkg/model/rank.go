package model

import "sort"

// SortByOverall orders results by descending overall score. Equal scores keep their order.
func SortByOverall(results []WordResult) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Scores.Overall > results[j].Scores.Overall
	})
}

// Diversify buckets results by dominant pattern and keeps at most ceil(len/buckets) of
// the best per bucket, then sorts the survivors. With spread false it only sorts.
// The input slice is not reordered.
func Diversify(results []WordResult, spread bool) []WordResult {
	out := append([]WordResult(nil), results...)
	if !spread || len(out) == 0 {
		SortByOverall(out)
		return out
	}

	var order []string
	groups := make(map[string][]WordResult)
	for _, r := range out {
		p := r.DominantPattern()
		if _, ok := groups[p]; !ok {
			order = append(order, p)
		}
		groups[p] = append(groups[p], r)
	}

	limit := (len(out) + len(groups) - 1) / len(groups)
	out = out[:0]
	for _, p := range order {
		group := groups[p]
		SortByOverall(group)
		out = append(out, group[:min(limit, len(group))]...)
	}
	SortByOverall(out)
	return out
}
