package optimizer

import (
	"fmt"
)

// SlotRequirement is one slot type in a contest: how many of it the lineup
// needs and which player positions may fill it. A nil Allowed list accepts
// any position.
type SlotRequirement struct {
	Name    string   `json:"name"`
	Count   int      `json:"count"`
	Allowed []string `json:"allowed,omitempty"`
}

// Requirement is a full contest definition. CaptainSlot is empty for classic
// contests; when set, exactly one player occupies it and that player's salary
// and points are scaled by CaptainMultiplier.
type Requirement struct {
	Name              string            `json:"name"`
	Slots             []SlotRequirement `json:"slots"`
	CaptainSlot       string            `json:"captain_slot,omitempty"`
	CaptainMultiplier float64           `json:"captain_multiplier,omitempty"`
}

// ClassicRequirement is the 10-slot MLB contest: two pitchers, one of each
// infield spot, three outfielders.
func ClassicRequirement() *Requirement {
	return &Requirement{
		Name: "classic",
		Slots: []SlotRequirement{
			{Name: "P", Count: 2, Allowed: []string{"P", "SP", "RP"}},
			{Name: "C", Count: 1, Allowed: []string{"C"}},
			{Name: "1B", Count: 1, Allowed: []string{"1B"}},
			{Name: "2B", Count: 1, Allowed: []string{"2B"}},
			{Name: "3B", Count: 1, Allowed: []string{"3B"}},
			{Name: "SS", Count: 1, Allowed: []string{"SS"}},
			{Name: "OF", Count: 3, Allowed: []string{"OF", "LF", "CF", "RF"}},
		},
	}
}

// ShowdownRequirement is the 6-slot captain contest: one captain at 1.5x
// salary and points plus five utility players, any position eligible.
func ShowdownRequirement() *Requirement {
	return &Requirement{
		Name: "showdown",
		Slots: []SlotRequirement{
			{Name: "CPT", Count: 1},
			{Name: "UTIL", Count: 5},
		},
		CaptainSlot:       "CPT",
		CaptainMultiplier: 1.5,
	}
}

// TotalSlots is the lineup size the requirement demands.
func (r *Requirement) TotalSlots() int {
	total := 0
	for _, slot := range r.Slots {
		total += slot.Count
	}
	return total
}

// SlotByName returns the slot definition with the given name, or nil.
func (r *Requirement) SlotByName(name string) *SlotRequirement {
	for i := range r.Slots {
		if r.Slots[i].Name == name {
			return &r.Slots[i]
		}
	}
	return nil
}

// CanFillSlot reports whether the player's positions satisfy the slot's
// allowed list.
func CanFillSlot(p Player, slot SlotRequirement) bool {
	if len(slot.Allowed) == 0 {
		return true
	}
	for _, pos := range p.Positions {
		for _, allowed := range slot.Allowed {
			if pos == allowed {
				return true
			}
		}
	}
	return false
}

// eligibleSlots returns the names of every slot the player can fill, in
// requirement order.
func (r *Requirement) eligibleSlots(p Player) []string {
	var slots []string
	for _, slot := range r.Slots {
		if CanFillSlot(p, slot) {
			slots = append(slots, slot.Name)
		}
	}
	return slots
}

// ValidateLineup checks a finished lineup against the requirement and
// options. Every violation is a hard error: lineups are checked after every
// strategy and a failure here means the strategy itself is broken.
func (r *Requirement) ValidateLineup(lineup []LineupSlot, opts SolveOptions) error {
	if len(lineup) != r.TotalSlots() {
		return fmt.Errorf("lineup has %d players, contest requires %d", len(lineup), r.TotalSlots())
	}

	if err := r.validateSlotCounts(lineup); err != nil {
		return err
	}
	if err := r.validateSalaryCap(lineup, opts); err != nil {
		return err
	}
	if err := r.validateUniqueness(lineup); err != nil {
		return err
	}
	if err := r.validateCaptain(lineup); err != nil {
		return err
	}
	if err := r.validateTeamLimit(lineup, opts); err != nil {
		return err
	}
	return nil
}

func (r *Requirement) validateSlotCounts(lineup []LineupSlot) error {
	counts := make(map[string]int)
	for _, ls := range lineup {
		counts[ls.Slot]++
		slot := r.SlotByName(ls.Slot)
		if slot == nil {
			return fmt.Errorf("player %s assigned to unknown slot %s", ls.Player.Name, ls.Slot)
		}
		if !CanFillSlot(ls.Player, *slot) {
			return fmt.Errorf("player %s (%v) is not eligible for slot %s",
				ls.Player.Name, ls.Player.Positions, ls.Slot)
		}
	}
	for _, slot := range r.Slots {
		if counts[slot.Name] != slot.Count {
			return fmt.Errorf("slot %s requires exactly %d players, got %d",
				slot.Name, slot.Count, counts[slot.Name])
		}
	}
	return nil
}

func (r *Requirement) validateSalaryCap(lineup []LineupSlot, opts SolveOptions) error {
	total := 0
	for _, ls := range lineup {
		total += ls.Salary
	}
	if total > opts.SalaryCap {
		return fmt.Errorf("lineup salary %d exceeds cap %d", total, opts.SalaryCap)
	}
	return nil
}

func (r *Requirement) validateUniqueness(lineup []LineupSlot) error {
	seenID := make(map[string]bool)
	seenKey := make(map[string]string)
	for _, ls := range lineup {
		if seenID[ls.Player.ID] {
			return fmt.Errorf("player %s appears in multiple slots", ls.Player.Name)
		}
		seenID[ls.Player.ID] = true
		key := ls.Player.LogicalKey()
		if prev, ok := seenKey[key]; ok {
			return fmt.Errorf("players %s and %s share identity %s", prev, ls.Player.Name, key)
		}
		seenKey[key] = ls.Player.Name
	}
	return nil
}

func (r *Requirement) validateCaptain(lineup []LineupSlot) error {
	captains := 0
	for _, ls := range lineup {
		if ls.Captain {
			captains++
			if r.CaptainSlot == "" {
				return fmt.Errorf("player %s marked captain in a contest without a captain slot", ls.Player.Name)
			}
			if ls.Slot != r.CaptainSlot {
				return fmt.Errorf("captain %s sits in slot %s, expected %s", ls.Player.Name, ls.Slot, r.CaptainSlot)
			}
		}
	}
	if r.CaptainSlot != "" && captains != 1 {
		return fmt.Errorf("contest requires exactly 1 captain, got %d", captains)
	}
	return nil
}

func (r *Requirement) validateTeamLimit(lineup []LineupSlot, opts SolveOptions) error {
	if opts.MaxPerTeam <= 0 {
		return nil
	}
	counts := make(map[string]int)
	for _, ls := range lineup {
		if ls.Player.Team == "" {
			continue
		}
		counts[ls.Player.Team]++
		if counts[ls.Player.Team] > opts.MaxPerTeam {
			return fmt.Errorf("team %s has more than %d players in the lineup", ls.Player.Team, opts.MaxPerTeam)
		}
	}
	return nil
}
