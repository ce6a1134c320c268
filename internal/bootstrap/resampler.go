// Package bootstrap estimates percentile confidence intervals for scalar
// statistics of paired outcome/prediction samples.
package bootstrap

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/yourusername/prop-calibrator/internal/models"
)

const (
	// DefaultResamples is used when Config.Resamples is not positive
	DefaultResamples = 1000
	// DefaultAlpha gives a 95% interval
	DefaultAlpha = 0.05
)

// Statistic reduces a resampled set of pairs to a scalar. Returning an error,
// returning a non-finite value or panicking discards the resample. The slices are reused between
// resamples and must not be retained.
type Statistic func(outcomes, predictions []float64) (float64, error)

// Config configures a bootstrap run
type Config struct {
	Resamples int
	Alpha     float64
	Workers   int
	Seed      int64
}

func (c Config) withDefaults() Config {
	if c.Resamples <= 0 {
		c.Resamples = DefaultResamples
	}
	if c.Alpha == 0 {
		c.Alpha = DefaultAlpha
	}
	if c.Workers <= 0 {
		c.Workers = 1
	}
	if c.Workers > c.Resamples {
		c.Workers = c.Resamples
	}
	return c
}

// draw is the outcome of evaluating the statistic on one resample
type draw struct {
	value float64
	ok    bool
}

// ConfidenceInterval resamples the usable pairs with replacement and reports
// the median and the alpha/2, 1-alpha/2 percentiles of the statistic. The
// result is fully determined by cfg.Seed and cfg.Resamples; the worker count
// only changes how the iterations are scheduled.
func ConfidenceInterval(ctx context.Context, fn Statistic, outcomes, predictions []float64, cfg Config) (models.BootstrapResult, error) {
	if fn == nil {
		return models.UndefinedBootstrap(), models.ErrNilStatistic
	}
	if len(outcomes) != len(predictions) {
		return models.UndefinedBootstrap(), fmt.Errorf("bootstrap (%d outcomes, %d predictions): %w", len(outcomes), len(predictions), models.ErrLengthMismatch)
	}
	cfg = cfg.withDefaults()
	if cfg.Alpha <= 0 || cfg.Alpha >= 1 {
		return models.UndefinedBootstrap(), fmt.Errorf("bootstrap alpha %v: %w", cfg.Alpha, models.ErrInvalidAlpha)
	}

	ys, ps := pairs(outcomes, predictions)
	if len(ps) == 0 {
		return models.UndefinedBootstrap(), nil
	}

	draws, err := resample(ctx, fn, ys, ps, cfg)
	if err != nil {
		return models.UndefinedBootstrap(), err
	}

	values := kept(draws)
	if len(values) == 0 {
		return models.UndefinedBootstrap(), nil
	}
	sort.Float64s(values)

	return models.BootstrapResult{
		Median:    percentile(values, 0.5),
		Lower:     percentile(values, cfg.Alpha/2),
		Upper:     percentile(values, 1-cfg.Alpha/2),
		Resamples: len(values),
	}, nil
}

// resample spreads the iterations over the workers with a stride. Every
// iteration owns a generator seeded from the caller's seed and its index, so
// the draws never depend on scheduling.
func resample(ctx context.Context, fn Statistic, ys, ps []float64, cfg Config) ([]draw, error) {
	draws := make([]draw, cfg.Resamples)

	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < cfg.Workers; w++ {
		w := w
		g.Go(func() error {
			n := len(ps)
			sy := make([]float64, n)
			sp := make([]float64, n)
			for i := w; i < cfg.Resamples; i += cfg.Workers {
				if err := ctx.Err(); err != nil {
					return err
				}
				rng := rand.New(rand.NewSource(iterationSeed(cfg.Seed, i)))
				for j := 0; j < n; j++ {
					k := rng.Intn(n)
					sy[j] = ys[k]
					sp[j] = ps[k]
				}
				draws[i] = evaluate(fn, sy, sp)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return draws, nil
}

// iterationSeed mixes the iteration index into the seed (splitmix64 finalizer)
func iterationSeed(seed int64, i int) int64 {
	z := uint64(seed) + uint64(i+1)*0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return int64(z ^ (z >> 31))
}

// evaluate runs fn on one resample. A panicking statistic discards the draw.
func evaluate(fn Statistic, ys, ps []float64) (d draw) {
	defer func() {
		if recover() != nil {
			d = draw{}
		}
	}()

	v, err := fn(ys, ps)
	if err != nil || !models.IsDefined(v) {
		return draw{}
	}
	return draw{value: v, ok: true}
}

func kept(draws []draw) []float64 {
	values := make([]float64, 0, len(draws))
	for _, d := range draws {
		if d.ok {
			values = append(values, d.value)
		}
	}
	return values
}

func pairs(outcomes, predictions []float64) ([]float64, []float64) {
	ys := make([]float64, 0, len(outcomes))
	ps := make([]float64, 0, len(predictions))
	for i, p := range predictions {
		if !models.IsDefined(p) {
			continue
		}
		ys = append(ys, outcomes[i])
		ps = append(ps, p)
	}
	return ys, ps
}

// percentile interpolates linearly between closest ranks of sorted values
func percentile(sorted []float64, q float64) float64 {
	pos := q * float64(len(sorted)-1)
	lo := math.Floor(pos)
	hi := math.Ceil(pos)
	if lo == hi {
		return sorted[int(lo)]
	}
	frac := pos - lo
	return sorted[int(lo)] + (sorted[int(hi)]-sorted[int(lo)])*frac
}
