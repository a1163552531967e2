package optimizer

import (
	"math/rand"
	"sort"
	"sync"

	wr "github.com/mroth/weightedrand/v2"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"
)

// sampleWeight squares the projection so high scorers dominate the draw
// without shutting out the rest of the pool. Weak and negative projections
// are floored so every eligible player keeps a nonzero chance.
func sampleWeight(p Player) int64 {
	pts := p.ProjectedPoints
	if pts < 0.1 {
		pts = 0.1
	}
	w := int64(pts * pts * 100)
	if w < 1 {
		w = 1
	}
	return w
}

// monteCarlo runs weighted random lineup attempts across a worker pool and
// keeps the highest scoring valid one.
func monteCarlo(ctx *solveContext) (*lineupCandidate, []string) {
	workers := ctx.opts.Workers
	attempts := ctx.opts.Attempts

	type workerResult struct {
		best   *lineupCandidate
		scores []float64
	}

	results := make(chan workerResult, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		n := attempts / workers
		if w < attempts%workers {
			n++
		}
		if n == 0 {
			continue
		}
		wg.Add(1)
		go func(worker, n int) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(ctx.workerSeed(worker)))
			var best *lineupCandidate
			var scores []float64
			for i := 0; i < n; i++ {
				cand := mcAttempt(ctx, rng)
				if cand == nil {
					continue
				}
				scores = append(scores, cand.totalPoints)
				if best == nil || cand.totalPoints > best.totalPoints {
					best = cand
				}
			}
			results <- workerResult{best: best, scores: scores}
		}(w, n)
	}
	wg.Wait()
	close(results)

	var best *lineupCandidate
	var scores []float64
	for res := range results {
		scores = append(scores, res.scores...)
		if res.best != nil && (best == nil || res.best.totalPoints > best.totalPoints) {
			best = res.best
		}
	}

	logMCStats(ctx.log, attempts, scores)
	if best == nil {
		return nil, nil
	}
	return best, nil
}

// mcAttempt draws one weighted random lineup. Returns nil when a slot cannot
// be covered within the cap or the finished lineup misses the salary window.
func mcAttempt(ctx *solveContext, rng *rand.Rand) *lineupCandidate {
	cand := ctx.seed.clone()
	used := cand.usedKeys()
	teams := cand.teamCounts()
	remaining := remainingCounts(ctx.req, cand)

	for _, slot := range ctx.req.Slots {
		for remaining[slot.Name] > 0 {
			var open []Player
			for _, p := range eligibleFor(ctx.pool, slot, used) {
				if teamFits(teams, p.Team, ctx.opts.MaxPerTeam) {
					open = append(open, p)
				}
			}
			if len(open) == 0 {
				return nil
			}

			choices := make([]wr.Choice[Player, int64], 0, len(open))
			for _, p := range open {
				choices = append(choices, wr.NewChoice(p, sampleWeight(p)))
			}
			chooser, err := wr.NewChooser(choices...)
			if err != nil {
				return nil
			}
			pick := chooser.PickSource(rng)

			captain, salary, points := ctx.values(pick, slot.Name)
			if cand.totalSalary+salary > ctx.opts.SalaryCap {
				// Out of money for the draw; fall back to the cheapest player
				// that still fits.
				found := false
				for _, p := range sortBySalary(open) {
					c, s, pts := ctx.values(p, slot.Name)
					if cand.totalSalary+s <= ctx.opts.SalaryCap {
						pick, captain, salary, points = p, c, s, pts
						found = true
						break
					}
				}
				if !found {
					return nil
				}
			}

			cand.seat(pick, slot.Name, captain, salary, points)
			used[pick.LogicalKey()] = true
			if pick.Team != "" {
				teams[pick.Team]++
			}
			remaining[slot.Name]--
		}
	}

	if cand.totalSalary < ctx.opts.minSalary() {
		return nil
	}
	return cand
}

func logMCStats(log *logrus.Entry, attempts int, scores []float64) {
	if len(scores) == 0 {
		log.WithField("attempts", attempts).Debug("Monte Carlo produced no valid lineups")
		return
	}
	sort.Float64s(scores)
	mean, stddev := stat.MeanStdDev(scores, nil)
	log.WithFields(logrus.Fields{
		"attempts":   attempts,
		"valid":      len(scores),
		"valid_rate": float64(len(scores)) / float64(attempts),
		"mean":       mean,
		"stddev":     stddev,
		"p90":        stat.Quantile(0.9, stat.Empirical, scores, nil),
	}).Debug("Monte Carlo attempt statistics")
}
