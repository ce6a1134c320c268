package datasource

import (
	"sort"
	"strings"
	"time"

	"github.com/yourusername/prop-calibrator/internal/models"
)

// Filter narrows a dataset to one market and an inclusive date window. Zero
// values disable the corresponding check.
type Filter struct {
	Market string
	Start  time.Time
	End    time.Time
}

// Apply returns the matching observations in their original order. Rows
// without a date pass a date window only when it is unset.
func (f Filter) Apply(observations []models.Observation) []models.Observation {
	out := make([]models.Observation, 0, len(observations))
	for _, obs := range observations {
		if f.Market != "" && !strings.EqualFold(obs.Market, f.Market) {
			continue
		}
		if !f.Start.IsZero() && obs.Date.Before(f.Start) {
			continue
		}
		if !f.End.IsZero() && obs.Date.After(f.End) {
			continue
		}
		out = append(out, obs)
	}
	return out
}

// Markets lists the distinct non-empty market labels, sorted
func Markets(observations []models.Observation) []string {
	seen := make(map[string]struct{})
	for _, obs := range observations {
		if obs.Market != "" {
			seen[obs.Market] = struct{}{}
		}
	}
	markets := make([]string, 0, len(seen))
	for m := range seen {
		markets = append(markets, m)
	}
	sort.Strings(markets)
	return markets
}
