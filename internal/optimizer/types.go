package optimizer

import (
	"fmt"
	"time"
)

// Status describes the outcome of a solve call.
type Status string

const (
	StatusOptimal      Status = "optimal"       // exact solver proved optimality
	StatusGreedy       Status = "greedy"        // produced by a fallback strategy
	StatusInfeasible   Status = "infeasible"    // no valid lineup exists or was found
	StatusInvalidInput Status = "invalid_input" // pool or options rejected before solving
)

// Method values for SolveOptions.Method.
const (
	MethodAuto          = "auto"      // exact solver first, fallback chain on failure
	MethodHeuristicOnly = "heuristic" // skip the exact solver entirely
)

// Player is one candidate for a lineup slot. The pool is read-only for the
// duration of a solve; salaries and projections are never mutated here.
type Player struct {
	ID              string   `json:"id"`
	Key             string   `json:"key,omitempty"` // logical identity; defaults to ID
	Name            string   `json:"name"`
	Team            string   `json:"team,omitempty"`
	Positions       []string `json:"positions"`
	Salary          int      `json:"salary"`
	ProjectedPoints float64  `json:"projected_points"`
	Confirmed       bool     `json:"confirmed,omitempty"`
}

// LogicalKey returns the identity used to prevent the same real-world player
// from occupying two slots. Pools for captain contests carry the same key on
// both price points of a player.
func (p Player) LogicalKey() string {
	if p.Key != "" {
		return p.Key
	}
	return p.ID
}

// Value is projected points per salary dollar, used for greedy ordering.
func (p Player) Value() float64 {
	if p.Salary <= 0 {
		return p.ProjectedPoints
	}
	return p.ProjectedPoints / float64(p.Salary)
}

// HasPosition reports whether pos appears in the player's position list.
func (p Player) HasPosition(pos string) bool {
	for _, pp := range p.Positions {
		if pp == pos {
			return true
		}
	}
	return false
}

// LineupSlot is one filled slot in a returned lineup. Salary and Points are
// effective values: for a captain seat they already include the multiplier.
type LineupSlot struct {
	Slot    string  `json:"slot"`
	Player  Player  `json:"player"`
	Captain bool    `json:"captain,omitempty"`
	Salary  int     `json:"salary"`
	Points  float64 `json:"points"`
}

// PositionShortfall reports a slot that cannot be covered by the pool.
type PositionShortfall struct {
	Position string `json:"position"`
	Required int    `json:"required"`
	Eligible int    `json:"eligible"`
}

// LineupResult is the outcome of one solve call. Business failures come back
// as a status with an empty lineup; a non-nil error from the solver means an
// internal invariant was violated and no result should be trusted.
type LineupResult struct {
	Status         Status              `json:"status"`
	Method         string              `json:"method,omitempty"`
	Reason         string              `json:"reason,omitempty"`
	Lineup         []LineupSlot        `json:"lineup"`
	TotalSalary    int                 `json:"total_salary"`
	TotalPoints    float64             `json:"total_points"`
	PositionCounts map[string]int      `json:"position_counts,omitempty"`
	Shortfalls     []PositionShortfall `json:"shortfalls,omitempty"`
	ElapsedMs      int64               `json:"elapsed_ms"`
}

// SolveOptions control a single solve call. Zero values fall back to
// DefaultSolveOptions for everything except SalaryCap, which is required.
type SolveOptions struct {
	SalaryCap       int           `json:"salary_cap"`
	MinSalaryUsage  float64       `json:"min_salary_usage,omitempty"` // fraction of cap, 0 disables
	MaxPerTeam      int           `json:"max_per_team,omitempty"`     // 0 disables
	Method          string        `json:"method,omitempty"`
	PreferConfirmed bool          `json:"prefer_confirmed,omitempty"`
	Locked          []string      `json:"locked,omitempty"`   // player IDs forced into the lineup
	Excluded        []string      `json:"excluded,omitempty"` // player IDs removed before solving
	Seed            int64         `json:"seed,omitempty"`     // 0 seeds from the clock
	Workers         int           `json:"workers,omitempty"`
	Attempts        int           `json:"attempts,omitempty"`    // monte carlo iteration cap
	Generations     int           `json:"generations,omitempty"` // evolutionary search
	Population      int           `json:"population,omitempty"`
	TimeLimit       time.Duration `json:"-"` // exact solver wall-clock ceiling
}

// DefaultSolveOptions returns the options used when a field is left zero.
func DefaultSolveOptions() SolveOptions {
	return SolveOptions{
		SalaryCap:   50000,
		Method:      MethodAuto,
		Workers:     4,
		Attempts:    2000,
		Generations: 40,
		Population:  50,
		TimeLimit:   30 * time.Second,
	}
}

func (o SolveOptions) withDefaults() SolveOptions {
	def := DefaultSolveOptions()
	if o.Method == "" {
		o.Method = def.Method
	}
	if o.Workers <= 0 {
		o.Workers = def.Workers
	}
	if o.Attempts <= 0 {
		o.Attempts = def.Attempts
	}
	if o.Generations <= 0 {
		o.Generations = def.Generations
	}
	if o.Population <= 0 {
		o.Population = def.Population
	}
	if o.TimeLimit <= 0 {
		o.TimeLimit = def.TimeLimit
	}
	return o
}

// minSalary returns the lower salary bound implied by MinSalaryUsage, or 0.
func (o SolveOptions) minSalary() int {
	if o.MinSalaryUsage <= 0 {
		return 0
	}
	return int(float64(o.SalaryCap) * o.MinSalaryUsage)
}

// ProgressUpdate is sent on the optional progress channel as a solve moves
// through its phases.
type ProgressUpdate struct {
	Type        string    `json:"type"`
	Progress    float64   `json:"progress"`
	Message     string    `json:"message"`
	CurrentStep string    `json:"current_step"`
	TotalSteps  int       `json:"total_steps"`
	Timestamp   time.Time `json:"timestamp"`
}

// InputError rejects a pool or option set before any solving is attempted.
type InputError struct {
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid input: %s", e.Reason)
}

// InfeasibleError reports that no valid lineup can be built from the pool,
// with per-position shortfalls when they are known.
type InfeasibleError struct {
	Reason     string
	Shortfalls []PositionShortfall
}

func (e *InfeasibleError) Error() string {
	return fmt.Sprintf("infeasible: %s", e.Reason)
}

// lineupSeat is one filled slot inside a working candidate. Salary and
// points are effective values so captain scaling is settled at seat time.
type lineupSeat struct {
	player  Player
	slot    string
	captain bool
	salary  int
	points  float64
}

// lineupCandidate is the working representation shared by the exact solver
// and every fallback strategy.
type lineupCandidate struct {
	seats       []lineupSeat
	totalSalary int
	totalPoints float64
}

func newCandidate() *lineupCandidate {
	return &lineupCandidate{seats: make([]lineupSeat, 0, 10)}
}

func (c *lineupCandidate) clone() *lineupCandidate {
	cp := &lineupCandidate{
		seats:       make([]lineupSeat, len(c.seats)),
		totalSalary: c.totalSalary,
		totalPoints: c.totalPoints,
	}
	copy(cp.seats, c.seats)
	return cp
}

func (c *lineupCandidate) seat(p Player, slot string, captain bool, salary int, points float64) {
	c.seats = append(c.seats, lineupSeat{player: p, slot: slot, captain: captain, salary: salary, points: points})
	c.totalSalary += salary
	c.totalPoints += points
}

func (c *lineupCandidate) size() int {
	return len(c.seats)
}

// replaceSeat swaps the player at seat i, keeping totals consistent.
func (c *lineupCandidate) replaceSeat(i int, p Player, captain bool, salary int, points float64) {
	old := c.seats[i]
	c.totalSalary += salary - old.salary
	c.totalPoints += points - old.points
	c.seats[i] = lineupSeat{player: p, slot: old.slot, captain: captain, salary: salary, points: points}
}

func (c *lineupCandidate) usedKeys() map[string]bool {
	used := make(map[string]bool, len(c.seats))
	for _, s := range c.seats {
		used[s.player.LogicalKey()] = true
	}
	return used
}

func (c *lineupCandidate) teamCounts() map[string]int {
	counts := make(map[string]int)
	for _, s := range c.seats {
		if s.player.Team != "" {
			counts[s.player.Team]++
		}
	}
	return counts
}

func (c *lineupCandidate) slotCounts() map[string]int {
	counts := make(map[string]int)
	for _, s := range c.seats {
		counts[s.slot]++
	}
	return counts
}
