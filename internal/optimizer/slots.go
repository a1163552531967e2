package optimizer

import (
	"fmt"
	"sort"
)

// remainingCounts returns how many seats each slot still needs given the
// candidate's current fill.
func remainingCounts(req *Requirement, cand *lineupCandidate) map[string]int {
	remaining := make(map[string]int, len(req.Slots))
	for _, slot := range req.Slots {
		remaining[slot.Name] = slot.Count
	}
	for _, s := range cand.seats {
		remaining[s.slot]--
	}
	return remaining
}

// assignSlots maps each player to a distinct open slot so that every slot
// reaches its exact count. Players with a single eligible slot are placed
// first, then the least flexible remaining player each round; within a
// player, the scarcest eligible slot wins. Returns an error when some player
// cannot be placed, which callers treat as a failed candidate rather than a
// failed solve.
func assignSlots(players []Player, req *Requirement, remaining map[string]int) (map[string]string, error) {
	open := make(map[string]int, len(remaining))
	for name, count := range remaining {
		open[name] = count
	}

	assigned := make(map[string]string, len(players))
	unplaced := make([]Player, len(players))
	copy(unplaced, players)

	for len(unplaced) > 0 {
		// Pick the player with the fewest open eligible slots.
		bestIdx := -1
		var bestSlots []string
		for i, p := range unplaced {
			var options []string
			for _, name := range req.eligibleSlots(p) {
				if open[name] > 0 {
					options = append(options, name)
				}
			}
			if len(options) == 0 {
				return nil, fmt.Errorf("no open slot for player %s (%v)", p.Name, p.Positions)
			}
			if bestIdx == -1 || len(options) < len(bestSlots) {
				bestIdx = i
				bestSlots = options
			}
		}

		p := unplaced[bestIdx]
		slot := scarcestSlot(bestSlots, unplaced, req, open)
		assigned[p.ID] = slot
		open[slot]--
		unplaced = append(unplaced[:bestIdx], unplaced[bestIdx+1:]...)
	}

	for name, count := range open {
		if count > 0 {
			return nil, fmt.Errorf("slot %s still needs %d players after assignment", name, count)
		}
	}
	return assigned, nil
}

// scarcestSlot picks, from the player's options, the slot with the fewest
// other unplaced players able to fill it.
func scarcestSlot(options []string, unplaced []Player, req *Requirement, open map[string]int) string {
	if len(options) == 1 {
		return options[0]
	}
	best := options[0]
	bestSupply := -1
	for _, name := range options {
		slot := req.SlotByName(name)
		supply := 0
		for _, p := range unplaced {
			if CanFillSlot(p, *slot) {
				supply++
			}
		}
		// Supply beyond demand is slack; scarcer slots have less of it.
		slack := supply - open[name]
		if bestSupply == -1 || slack < bestSupply {
			best = name
			bestSupply = slack
		}
	}
	return best
}

// lineupFromCandidate renders a finished candidate in requirement slot
// order, highest points first within a slot.
func lineupFromCandidate(cand *lineupCandidate, req *Requirement) []LineupSlot {
	lineup := make([]LineupSlot, 0, len(cand.seats))
	for _, slot := range req.Slots {
		var group []lineupSeat
		for _, s := range cand.seats {
			if s.slot == slot.Name {
				group = append(group, s)
			}
		}
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].points > group[j].points
		})
		for _, s := range group {
			lineup = append(lineup, LineupSlot{
				Slot:    s.slot,
				Player:  s.player,
				Captain: s.captain,
				Salary:  s.salary,
				Points:  s.points,
			})
		}
	}
	return lineup
}

// positionCounts tallies how many lineup players carry each raw position,
// counting a multi-position player once per listed position.
func positionCounts(lineup []LineupSlot) map[string]int {
	counts := make(map[string]int)
	for _, ls := range lineup {
		for _, pos := range ls.Player.Positions {
			counts[pos]++
		}
	}
	return counts
}
