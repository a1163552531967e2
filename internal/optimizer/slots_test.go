package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssignSlots_SingleEligibilityFirst(t *testing.T) {
	req := &Requirement{
		Name: "mini",
		Slots: []SlotRequirement{
			{Name: "OF", Count: 1, Allowed: []string{"OF"}},
			{Name: "SS", Count: 1, Allowed: []string{"SS"}},
		},
	}
	// Betts can play both slots, Judge only the outfield. Placing Betts
	// first would strand Judge.
	players := []Player{
		{ID: "betts", Name: "Mookie Betts", Positions: []string{"OF", "SS"}},
		{ID: "judge", Name: "Aaron Judge", Positions: []string{"OF"}},
	}

	assigned, err := assignSlots(players, req, map[string]int{"OF": 1, "SS": 1})
	require.NoError(t, err)
	assert.Equal(t, "OF", assigned["judge"])
	assert.Equal(t, "SS", assigned["betts"])
}

func TestAssignSlots_OverSubscribed(t *testing.T) {
	req := &Requirement{
		Name:  "mini",
		Slots: []SlotRequirement{{Name: "C", Count: 1, Allowed: []string{"C"}}},
	}
	players := []Player{
		{ID: "realmuto", Name: "J.T. Realmuto", Positions: []string{"C"}},
		{ID: "smith", Name: "Will Smith", Positions: []string{"C"}},
	}

	_, err := assignSlots(players, req, map[string]int{"C": 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no open slot for player")
}

func TestAssignSlots_ScarceSupplyWins(t *testing.T) {
	req := &Requirement{
		Name: "mini",
		Slots: []SlotRequirement{
			{Name: "1B", Count: 1, Allowed: []string{"1B"}},
			{Name: "UTIL", Count: 1},
		},
	}
	// Freeman fits both seats but the 1B seat has no other taker.
	players := []Player{
		{ID: "freeman", Name: "Freddie Freeman", Positions: []string{"1B"}},
		{ID: "turner", Name: "Trea Turner", Positions: []string{"SS"}},
	}

	assigned, err := assignSlots(players, req, map[string]int{"1B": 1, "UTIL": 1})
	require.NoError(t, err)
	assert.Equal(t, "1B", assigned["freeman"])
	assert.Equal(t, "UTIL", assigned["turner"])
}

func TestRemainingCounts(t *testing.T) {
	req := ClassicRequirement()
	cand := newCandidate()
	cand.seat(Player{ID: "cole", Positions: []string{"SP"}}, "P", false, 10500, 21)

	remaining := remainingCounts(req, cand)
	assert.Equal(t, 1, remaining["P"])
	assert.Equal(t, 3, remaining["OF"])
	assert.Equal(t, 1, remaining["C"])
}

func TestLineupFromCandidate_RequirementOrder(t *testing.T) {
	req := ClassicRequirement()
	cand := newCandidate()

	// Seat in scrambled order; rendering puts the slots back in contest
	// order with the bigger projection first inside a slot.
	cand.seat(Player{ID: "soto", Name: "Juan Soto", Positions: []string{"LF"}}, "OF", false, 3800, 10)
	cand.seat(Player{ID: "realmuto", Name: "J.T. Realmuto", Positions: []string{"C"}}, "C", false, 3000, 5)
	cand.seat(Player{ID: "judge", Name: "Aaron Judge", Positions: []string{"RF"}}, "OF", false, 4000, 12)
	cand.seat(Player{ID: "cole", Name: "Gerrit Cole", Positions: []string{"SP"}}, "P", false, 10500, 21)

	lineup := lineupFromCandidate(cand, req)
	require.Len(t, lineup, 4)
	assert.Equal(t, "P", lineup[0].Slot)
	assert.Equal(t, "Gerrit Cole", lineup[0].Player.Name)
	assert.Equal(t, "C", lineup[1].Slot)
	assert.Equal(t, "OF", lineup[2].Slot)
	assert.Equal(t, "Aaron Judge", lineup[2].Player.Name, "higher projection leads the slot")
	assert.Equal(t, "Juan Soto", lineup[3].Player.Name)
}

func TestPositionCounts(t *testing.T) {
	lineup := []LineupSlot{
		{Slot: "P", Player: Player{ID: "cole", Positions: []string{"SP"}}},
		{Slot: "OF", Player: Player{ID: "betts", Positions: []string{"OF", "2B"}}},
	}
	counts := positionCounts(lineup)
	assert.Equal(t, 1, counts["SP"])
	assert.Equal(t, 1, counts["OF"])
	assert.Equal(t, 1, counts["2B"])
}
