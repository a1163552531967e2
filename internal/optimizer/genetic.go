package optimizer

import (
	"math/rand"
	"sort"
)

// genetic evolves a population of Monte Carlo lineups: keep the top half
// each generation, breed the rest by recombining parent pairs. Children that
// cannot be slotted or bust the cap are discarded and redrawn.
func genetic(ctx *solveContext) (*lineupCandidate, []string) {
	rng := rand.New(rand.NewSource(ctx.workerSeed(101)))
	popSize := ctx.opts.Population

	population := make([]*lineupCandidate, 0, popSize)
	for tries := 0; len(population) < popSize && tries < popSize*10; tries++ {
		if cand := mcAttempt(ctx, rng); cand != nil {
			population = append(population, cand)
		}
	}
	if len(population) == 0 {
		return nil, nil
	}
	if len(population) == 1 {
		return population[0], nil
	}

	for gen := 0; gen < ctx.opts.Generations; gen++ {
		sort.SliceStable(population, func(i, j int) bool {
			return population[i].totalPoints > population[j].totalPoints
		})
		survivors := population[:(len(population)+1)/2]
		next := make([]*lineupCandidate, len(survivors), popSize)
		copy(next, survivors)
		for tries := 0; len(next) < popSize && tries < popSize*4; tries++ {
			p1 := survivors[rng.Intn(len(survivors))]
			p2 := survivors[rng.Intn(len(survivors))]
			if child := crossover(ctx, p1, p2, rng); child != nil {
				next = append(next, child)
			}
		}
		population = next
	}

	sort.SliceStable(population, func(i, j int) bool {
		return population[i].totalPoints > population[j].totalPoints
	})
	return population[0], nil
}

// crossover samples a lineup from the union of two parents' players, then
// re-runs slot assignment from scratch so flex coverage is rebuilt rather
// than inherited.
func crossover(ctx *solveContext, p1, p2 *lineupCandidate, rng *rand.Rand) *lineupCandidate {
	locked := make(map[string]bool, ctx.seed.size())
	for _, s := range ctx.seed.seats {
		locked[s.player.LogicalKey()] = true
	}

	var genes []Player
	seen := make(map[string]bool)
	for _, parent := range []*lineupCandidate{p1, p2} {
		for _, s := range parent.seats {
			key := s.player.LogicalKey()
			if locked[key] || seen[key] {
				continue
			}
			seen[key] = true
			genes = append(genes, s.player)
		}
	}

	need := ctx.req.TotalSlots() - ctx.seed.size()
	if len(genes) < need {
		return nil
	}
	rng.Shuffle(len(genes), func(i, j int) {
		genes[i], genes[j] = genes[j], genes[i]
	})
	picked := genes[:need]

	assigned, err := assignSlots(picked, ctx.req, remainingCounts(ctx.req, ctx.seed))
	if err != nil {
		return nil
	}

	cand := ctx.seed.clone()
	teams := cand.teamCounts()
	for _, p := range picked {
		if !teamFits(teams, p.Team, ctx.opts.MaxPerTeam) {
			return nil
		}
		slot := assigned[p.ID]
		captain, salary, points := ctx.values(p, slot)
		cand.seat(p, slot, captain, salary, points)
		if p.Team != "" {
			teams[p.Team]++
		}
	}
	if cand.totalSalary > ctx.opts.SalaryCap {
		return nil
	}
	return cand
}
