package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSeatModel_Dimensions(t *testing.T) {
	req := &Requirement{
		Name: "mini",
		Slots: []SlotRequirement{
			{Name: "A", Count: 1, Allowed: []string{"A"}},
			{Name: "B", Count: 1, Allowed: []string{"B"}},
		},
	}
	pool := []Player{
		{ID: "a1", Name: "A One", Positions: []string{"A"}, Salary: 10, ProjectedPoints: 5},
		{ID: "ab", Name: "Swing", Positions: []string{"A", "B"}, Salary: 10, ProjectedPoints: 5},
		{ID: "b1", Name: "B One", Positions: []string{"B"}, Salary: 10, ProjectedPoints: 5},
	}
	ctx := newTestContext(pool, req, SolveOptions{SalaryCap: 100}.withDefaults())

	model, pairs := buildSeatModel(ctx)

	// a1 has one admissible seat, the swing player two, b1 one.
	require.Len(t, pairs, 4)
	assert.Equal(t, 3+4, model.n)
	// size + one per player + one per slot
	assert.Len(t, model.aeq, 1+3+2)
	// budget + binary bounds
	assert.Len(t, model.aub, 1+model.n)
	assert.Len(t, model.c, model.n)

	// Objective is negated projections for selection variables.
	assert.Equal(t, -5.0, model.c[0])
}

func TestExactSolve_FindsProvenOptimum(t *testing.T) {
	ctx := newTestContext(classicTestPool(), ClassicRequirement(),
		SolveOptions{SalaryCap: 50000}.withDefaults())

	cand, err := exactSolve(ctx)
	require.NoError(t, err)
	require.NotNil(t, cand)

	assert.Equal(t, 10, cand.size())
	assert.Equal(t, 48000, cand.totalSalary)
	assert.InDelta(t, 102.0, cand.totalPoints, 1e-6)
}

func TestExactSolve_SalaryFloorChangesTheAnswer(t *testing.T) {
	req := &Requirement{
		Name: "mini",
		Slots: []SlotRequirement{
			{Name: "A", Count: 1, Allowed: []string{"A"}},
			{Name: "B", Count: 1, Allowed: []string{"B"}},
		},
	}
	pool := []Player{
		{ID: "a1", Name: "Cheap A", Positions: []string{"A"}, Salary: 10, ProjectedPoints: 100},
		{ID: "a2", Name: "Pricey A", Positions: []string{"A"}, Salary: 80, ProjectedPoints: 50},
		{ID: "b1", Name: "Cheap B", Positions: []string{"B"}, Salary: 10, ProjectedPoints: 40},
		{ID: "b2", Name: "Pricey B", Positions: []string{"B"}, Salary: 80, ProjectedPoints: 20},
	}

	free := newTestContext(pool, req, SolveOptions{SalaryCap: 100}.withDefaults())
	cand, err := exactSolve(free)
	require.NoError(t, err)
	assert.Equal(t, 20, cand.totalSalary)
	assert.InDelta(t, 140.0, cand.totalPoints, 1e-6)

	floored := newTestContext(pool, req, SolveOptions{SalaryCap: 100, MinSalaryUsage: 0.9}.withDefaults())
	cand, err = exactSolve(floored)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, cand.totalSalary, 90)
	assert.InDelta(t, 120.0, cand.totalPoints, 1e-6, "best pairing at or above the floor")
}

func TestExactSolve_TeamLimit(t *testing.T) {
	req := &Requirement{
		Name:  "mini",
		Slots: []SlotRequirement{{Name: "A", Count: 2, Allowed: []string{"A"}}},
	}
	pool := []Player{
		{ID: "a1", Name: "Yankee One", Team: "NYY", Positions: []string{"A"}, Salary: 10, ProjectedPoints: 50},
		{ID: "a2", Name: "Yankee Two", Team: "NYY", Positions: []string{"A"}, Salary: 10, ProjectedPoints: 40},
		{ID: "a3", Name: "Dodger", Team: "LAD", Positions: []string{"A"}, Salary: 10, ProjectedPoints: 30},
	}

	ctx := newTestContext(pool, req, SolveOptions{SalaryCap: 100, MaxPerTeam: 1}.withDefaults())
	cand, err := exactSolve(ctx)
	require.NoError(t, err)

	teams := cand.teamCounts()
	assert.Equal(t, 1, teams["NYY"], "one Yankee at most")
	assert.Equal(t, 1, teams["LAD"])
	assert.InDelta(t, 80.0, cand.totalPoints, 1e-6)
}

func TestExactSolve_DuplicateIdentityRows(t *testing.T) {
	// Two price points of the same hitter cannot both be selected even
	// though they are separate pool entries.
	req := &Requirement{
		Name:  "mini",
		Slots: []SlotRequirement{{Name: "A", Count: 2, Allowed: []string{"A"}}},
	}
	pool := []Player{
		{ID: "betts-a", Key: "betts", Name: "Mookie Betts", Positions: []string{"A"}, Salary: 10, ProjectedPoints: 50},
		{ID: "betts-b", Key: "betts", Name: "Mookie Betts", Positions: []string{"A"}, Salary: 12, ProjectedPoints: 48},
		{ID: "soto", Name: "Juan Soto", Positions: []string{"A"}, Salary: 10, ProjectedPoints: 20},
	}

	ctx := newTestContext(pool, req, SolveOptions{SalaryCap: 100}.withDefaults())
	cand, err := exactSolve(ctx)
	require.NoError(t, err)

	keys := make(map[string]int)
	for _, s := range cand.seats {
		keys[s.player.LogicalKey()]++
	}
	assert.Equal(t, 1, keys["betts"])
	assert.Equal(t, 1, keys["soto"])
	assert.InDelta(t, 70.0, cand.totalPoints, 1e-6)
}

func TestExtractCandidate_MismatchIsAnError(t *testing.T) {
	req := &Requirement{
		Name:  "mini",
		Slots: []SlotRequirement{{Name: "A", Count: 1, Allowed: []string{"A"}}},
	}
	pool := []Player{{ID: "a1", Name: "A One", Positions: []string{"A"}, Salary: 10, ProjectedPoints: 5}}
	ctx := newTestContext(pool, req, SolveOptions{SalaryCap: 100}.withDefaults())
	pairs := []seatPair{{player: 0, slot: "A"}}

	// Seated without being selected.
	_, err := extractCandidate(ctx, pairs, []float64{0, 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "extraction mismatch")

	// Selected without a seat.
	_, err = extractCandidate(ctx, pairs, []float64{1, 0})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "selected without a seat")
}

// newTestContext wires a solve context the way the dispatcher would for an
// unlocked classic solve.
func newTestContext(pool []Player, req *Requirement, opts SolveOptions) *solveContext {
	seed := opts.Seed
	if seed == 0 {
		seed = 1
	}
	return &solveContext{
		pool:     pool,
		req:      req,
		opts:     opts,
		seed:     newCandidate(),
		values:   baseValuer(),
		baseSeed: seed,
		log:      testLogger().WithField("test", true),
	}
}
