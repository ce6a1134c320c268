package scoring

import (
	"math"
	"sort"
)

// rocAUC computes the Mann-Whitney estimate of the ROC area, giving tied
// scores their average rank.
func rocAUC(ys, ps []float64) float64 {
	n := len(ps)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return ps[order[a]] < ps[order[b]] })

	ranks := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j+1 < n && ps[order[j+1]] == ps[order[i]] {
			j++
		}
		avg := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			ranks[order[k]] = avg
		}
		i = j + 1
	}

	positives, negatives := 0, 0
	rankSum := 0.0
	for i, y := range ys {
		if y == 1 {
			positives++
			rankSum += ranks[i]
		} else {
			negatives++
		}
	}
	if positives == 0 || negatives == 0 {
		return math.NaN()
	}

	pos := float64(positives)
	return (rankSum - pos*(pos+1)/2) / (pos * float64(negatives))
}
