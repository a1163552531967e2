package optimizer

import (
	"fmt"
	"strings"
)

// CheckFeasibility runs a quick count-based screen before any solving: every
// slot needs at least as many eligible distinct players as its count, and the
// pool needs enough distinct players overall. Passing the screen does not
// guarantee a lineup exists (budget and overlap can still make the contest
// unwinnable); failing it guarantees one does not.
func CheckFeasibility(pool []Player, req *Requirement) (bool, string, []PositionShortfall) {
	var shortfalls []PositionShortfall

	distinct := make(map[string]bool)
	for _, p := range pool {
		distinct[p.LogicalKey()] = true
	}
	if len(distinct) < req.TotalSlots() {
		shortfalls = append(shortfalls, PositionShortfall{
			Position: "total",
			Required: req.TotalSlots(),
			Eligible: len(distinct),
		})
	}

	for _, slot := range req.Slots {
		eligible := make(map[string]bool)
		for _, p := range pool {
			if CanFillSlot(p, slot) {
				eligible[p.LogicalKey()] = true
			}
		}
		if len(eligible) < slot.Count {
			shortfalls = append(shortfalls, PositionShortfall{
				Position: slot.Name,
				Required: slot.Count,
				Eligible: len(eligible),
			})
		}
	}

	if len(shortfalls) == 0 {
		return true, "", nil
	}
	return false, shortfallReason(shortfalls), shortfalls
}

func shortfallReason(shortfalls []PositionShortfall) string {
	parts := make([]string, 0, len(shortfalls))
	for _, s := range shortfalls {
		if s.Position == "total" {
			parts = append(parts, fmt.Sprintf("pool has %d distinct players, lineup needs %d", s.Eligible, s.Required))
			continue
		}
		parts = append(parts, fmt.Sprintf("position %s requires %d eligible players, pool has %d", s.Position, s.Required, s.Eligible))
	}
	return strings.Join(parts, "; ")
}
