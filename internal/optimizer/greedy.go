package optimizer

import (
	"sort"
)

// positionGreedy fills slots in requirement order, taking the best
// points-per-dollar player that fits the remaining budget and team limit.
// Scarce slots come first in the requirement definitions, so flex slots see
// whatever the scarce ones left behind. Returns nil plus the slots it could
// not cover when the pool runs dry.
func positionGreedy(ctx *solveContext) (*lineupCandidate, []string) {
	return greedyComplete(ctx, ctx.seed.clone())
}

// greedyComplete finishes a partial candidate with the value-first rule.
func greedyComplete(ctx *solveContext, cand *lineupCandidate) (*lineupCandidate, []string) {
	remaining := remainingCounts(ctx.req, cand)
	used := cand.usedKeys()
	teams := cand.teamCounts()

	var unfilled []string
	for _, slot := range ctx.req.Slots {
		for remaining[slot.Name] > 0 {
			picked := false
			for _, p := range sortByValue(eligibleFor(ctx.pool, slot, used), ctx.opts.PreferConfirmed) {
				captain, salary, points := ctx.values(p, slot.Name)
				if cand.totalSalary+salary > ctx.opts.SalaryCap {
					continue
				}
				if !teamFits(teams, p.Team, ctx.opts.MaxPerTeam) {
					continue
				}
				cand.seat(p, slot.Name, captain, salary, points)
				used[p.LogicalKey()] = true
				if p.Team != "" {
					teams[p.Team]++
				}
				picked = true
				break
			}
			if !picked {
				unfilled = append(unfilled, slot.Name)
				break
			}
			remaining[slot.Name]--
		}
	}

	if len(unfilled) > 0 {
		return nil, unfilled
	}
	return cand, nil
}

// cheapestFill builds the cheapest possible lineup first, then repairs the
// budget by swapping expensive seats for cheaper eligible players one at a
// time. Useful when the value-first pass strands a scarce slot with no money
// left.
func cheapestFill(ctx *solveContext) (*lineupCandidate, []string) {
	cand := ctx.seed.clone()
	remaining := remainingCounts(ctx.req, cand)
	used := cand.usedKeys()
	teams := cand.teamCounts()

	var unfilled []string
	for _, slot := range ctx.req.Slots {
		for remaining[slot.Name] > 0 {
			picked := false
			for _, p := range sortBySalary(eligibleFor(ctx.pool, slot, used)) {
				if !teamFits(teams, p.Team, ctx.opts.MaxPerTeam) {
					continue
				}
				captain, salary, points := ctx.values(p, slot.Name)
				cand.seat(p, slot.Name, captain, salary, points)
				used[p.LogicalKey()] = true
				if p.Team != "" {
					teams[p.Team]++
				}
				picked = true
				break
			}
			if !picked {
				unfilled = append(unfilled, slot.Name)
				break
			}
			remaining[slot.Name]--
		}
	}
	if len(unfilled) > 0 {
		return nil, unfilled
	}

	if !repairBudget(ctx, cand, used, teams) {
		return nil, nil
	}
	return cand, nil
}

// repairBudget swaps seats until the lineup fits the salary cap, most
// expensive seat first, cheapest replacement wins. Reports false when no
// swap can bring the total under the cap.
func repairBudget(ctx *solveContext, cand *lineupCandidate, used map[string]bool, teams map[string]int) bool {
	for cand.totalSalary > ctx.opts.SalaryCap {
		order := make([]int, len(cand.seats))
		for i := range order {
			order[i] = i
		}
		sort.Slice(order, func(a, b int) bool {
			return cand.seats[order[a]].salary > cand.seats[order[b]].salary
		})

		swapped := false
		for _, i := range order {
			seat := cand.seats[i]
			if isLockedSeat(ctx, seat) {
				continue
			}
			slot := ctx.req.SlotByName(seat.slot)
			var best *Player
			bestSalary := seat.salary
			var bestCaptain bool
			var bestPoints float64
			for _, p := range ctx.pool {
				if used[p.LogicalKey()] || !CanFillSlot(p, *slot) {
					continue
				}
				captain, salary, points := ctx.values(p, seat.slot)
				if salary >= bestSalary {
					continue
				}
				if p.Team != seat.player.Team && !teamFits(teams, p.Team, ctx.opts.MaxPerTeam) {
					continue
				}
				q := p
				best = &q
				bestSalary = salary
				bestCaptain = captain
				bestPoints = points
			}
			if best == nil {
				continue
			}
			delete(used, seat.player.LogicalKey())
			used[best.LogicalKey()] = true
			if seat.player.Team != "" {
				teams[seat.player.Team]--
			}
			if best.Team != "" {
				teams[best.Team]++
			}
			cand.replaceSeat(i, *best, bestCaptain, bestSalary, bestPoints)
			swapped = true
			break
		}
		if !swapped {
			return false
		}
	}
	return true
}

// Helper functions

func eligibleFor(pool []Player, slot SlotRequirement, used map[string]bool) []Player {
	var out []Player
	for _, p := range pool {
		if used[p.LogicalKey()] {
			continue
		}
		if CanFillSlot(p, slot) {
			out = append(out, p)
		}
	}
	return out
}

func sortByValue(players []Player, preferConfirmed bool) []Player {
	sorted := make([]Player, len(players))
	copy(sorted, players)
	sort.SliceStable(sorted, func(i, j int) bool {
		vi, vj := sorted[i].Value(), sorted[j].Value()
		if vi != vj {
			return vi > vj
		}
		if preferConfirmed && sorted[i].Confirmed != sorted[j].Confirmed {
			return sorted[i].Confirmed
		}
		return sorted[i].ProjectedPoints > sorted[j].ProjectedPoints
	})
	return sorted
}

func sortBySalary(players []Player) []Player {
	sorted := make([]Player, len(players))
	copy(sorted, players)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Salary != sorted[j].Salary {
			return sorted[i].Salary < sorted[j].Salary
		}
		return sorted[i].ProjectedPoints > sorted[j].ProjectedPoints
	})
	return sorted
}

func teamFits(teams map[string]int, team string, maxPerTeam int) bool {
	if maxPerTeam <= 0 || team == "" {
		return true
	}
	return teams[team] < maxPerTeam
}

func isLockedSeat(ctx *solveContext, seat lineupSeat) bool {
	for _, s := range ctx.seed.seats {
		if s.player.ID == seat.player.ID {
			return true
		}
	}
	return false
}
