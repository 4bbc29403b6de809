package scenario

import (
	"sort"

	"github.com/segyhp/credit-risk-engine/internal/domain"
)

// MergeScenarios joins scenario lists, keeping the first occurrence of each
// id, and returns them ordered by id.
func MergeScenarios(lists ...[]domain.RateScenario) []domain.RateScenario {
	seen := make(map[int64]bool)
	var out []domain.RateScenario
	for _, list := range lists {
		for _, s := range list {
			if seen[s.ID] {
				continue
			}
			seen[s.ID] = true
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
