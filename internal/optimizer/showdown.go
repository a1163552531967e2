package optimizer

import (
	"fmt"
	"math"
)

// captainValues is the effective price of a player in the captain seat.
type captainValues struct {
	salary int
	points float64
}

// normalizeShowdownPool folds a captain pool down to one entry per player.
// Sites publish these pools two ways: a single entry per player, or a pair
// of entries sharing a logical key where the captain copy carries the
// pre-multiplied salary and points. Both collapse to the base entry plus a
// captain price table; singletons get their captain price derived from the
// contest multiplier. A captain-only entry with no base twin is dropped, a
// key listed more than twice or a pair whose captain copy cannot be told
// apart is rejected.
func normalizeShowdownPool(pool []Player, req *Requirement) ([]Player, map[string]captainValues, error) {
	order := make([]string, 0, len(pool))
	groups := make(map[string][]Player, len(pool))
	for _, p := range pool {
		key := p.LogicalKey()
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], p)
	}

	base := make([]Player, 0, len(order))
	captains := make(map[string]captainValues, len(order))
	for _, key := range order {
		entries := groups[key]
		switch len(entries) {
		case 1:
			p := entries[0]
			if p.HasPosition("CPT") {
				continue // captain copy without a base twin
			}
			base = append(base, p)
			captains[key] = captainValues{
				salary: int(math.Round(float64(p.Salary) * req.CaptainMultiplier)),
				points: p.ProjectedPoints * req.CaptainMultiplier,
			}
		case 2:
			util, cpt, err := splitCaptainPair(entries)
			if err != nil {
				return nil, nil, err
			}
			base = append(base, util)
			captains[key] = captainValues{salary: cpt.Salary, points: cpt.ProjectedPoints}
		default:
			return nil, nil, &InputError{Reason: fmt.Sprintf("player %s listed %d times, at most 2 allowed", key, len(entries))}
		}
	}
	return base, captains, nil
}

// splitCaptainPair decides which of two same-key entries is the captain
// copy: the CPT position marker wins, otherwise the strictly higher salary.
func splitCaptainPair(entries []Player) (util, cpt Player, err error) {
	aCpt := entries[0].HasPosition("CPT")
	bCpt := entries[1].HasPosition("CPT")
	switch {
	case aCpt && !bCpt:
		return entries[1], entries[0], nil
	case bCpt && !aCpt:
		return entries[0], entries[1], nil
	case aCpt && bCpt:
		return Player{}, Player{}, &InputError{
			Reason: fmt.Sprintf("both entries for %s are marked captain", entries[0].LogicalKey()),
		}
	}
	if entries[0].Salary > entries[1].Salary {
		return entries[1], entries[0], nil
	}
	if entries[1].Salary > entries[0].Salary {
		return entries[0], entries[1], nil
	}
	return Player{}, Player{}, &InputError{
		Reason: fmt.Sprintf("cannot tell the captain copy of %s apart, equal salaries and no CPT marker", entries[0].LogicalKey()),
	}
}

// showdownValuer prices seats for a captain contest: the captain seat uses
// the captain price table, every other seat the base values.
func showdownValuer(req *Requirement, captains map[string]captainValues) seatValuer {
	return func(p Player, slot string) (bool, int, float64) {
		if slot != req.CaptainSlot {
			return false, p.Salary, p.ProjectedPoints
		}
		cv, ok := captains[p.LogicalKey()]
		if !ok {
			cv = captainValues{
				salary: int(math.Round(float64(p.Salary) * req.CaptainMultiplier)),
				points: p.ProjectedPoints * req.CaptainMultiplier,
			}
		}
		return true, cv.salary, cv.points
	}
}

// captainGreedy tries every player in the captain seat and finishes each
// lineup with the value-first fill, keeping the best. The enumeration is
// exhaustive over captains, which is where the multiplier makes or breaks a
// captain lineup.
func captainGreedy(ctx *solveContext) (*lineupCandidate, []string) {
	for _, s := range ctx.seed.seats {
		if s.captain {
			return greedyComplete(ctx, ctx.seed.clone())
		}
	}

	var best *lineupCandidate
	var lastUnfilled []string
	for _, p := range ctx.pool {
		captain, salary, points := ctx.values(p, ctx.req.CaptainSlot)
		if ctx.seed.totalSalary+salary > ctx.opts.SalaryCap {
			continue
		}
		if !teamFits(ctx.seed.teamCounts(), p.Team, ctx.opts.MaxPerTeam) {
			continue
		}
		cand := ctx.seed.clone()
		cand.seat(p, ctx.req.CaptainSlot, captain, salary, points)
		full, unfilled := greedyComplete(ctx, cand)
		if full == nil {
			lastUnfilled = unfilled
			continue
		}
		if best == nil || full.totalPoints > best.totalPoints {
			best = full
		}
	}
	if best == nil {
		return nil, lastUnfilled
	}
	return best, nil
}
