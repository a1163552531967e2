package optimizer

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampleWeight(t *testing.T) {
	assert.Equal(t, int64(10000), sampleWeight(Player{ProjectedPoints: 10}))
	assert.Equal(t, int64(14400), sampleWeight(Player{ProjectedPoints: 12}))

	// Zero and negative projections keep a minimal draw chance.
	assert.Equal(t, int64(1), sampleWeight(Player{ProjectedPoints: 0}))
	assert.Equal(t, int64(1), sampleWeight(Player{ProjectedPoints: -4.5}))

	assert.Greater(t,
		sampleWeight(Player{ProjectedPoints: 11}),
		sampleWeight(Player{ProjectedPoints: 10.5}))
}

func TestMCAttempt_BuildsValidLineup(t *testing.T) {
	req := ClassicRequirement()
	opts := SolveOptions{SalaryCap: 50000}.withDefaults()
	ctx := newTestContext(classicTestPool(), req, opts)
	rng := rand.New(rand.NewSource(7))

	cand := mcAttempt(ctx, rng)
	require.NotNil(t, cand)
	assert.Equal(t, 10, cand.size())
	assert.LessOrEqual(t, cand.totalSalary, 50000)
	assert.NoError(t, req.ValidateLineup(lineupFromCandidate(cand, req), opts))
}

func TestMCAttempt_FallsBackToCheapestUnderCap(t *testing.T) {
	req := &Requirement{
		Name:  "mini",
		Slots: []SlotRequirement{{Name: "A", Count: 1, Allowed: []string{"A"}}},
	}
	// The star is over the cap on his own, so no matter how the draw lands
	// the seat goes to the scrub.
	pool := []Player{
		{ID: "star", Name: "Star", Positions: []string{"A"}, Salary: 200, ProjectedPoints: 50},
		{ID: "scrub", Name: "Scrub", Positions: []string{"A"}, Salary: 50, ProjectedPoints: 1},
	}
	ctx := newTestContext(pool, req, SolveOptions{SalaryCap: 100}.withDefaults())

	for seed := int64(1); seed <= 5; seed++ {
		cand := mcAttempt(ctx, rand.New(rand.NewSource(seed)))
		require.NotNil(t, cand)
		assert.Equal(t, "scrub", cand.seats[0].player.ID)
		assert.Equal(t, 50, cand.totalSalary)
	}
}

func TestMCAttempt_RejectsLineupUnderSalaryFloor(t *testing.T) {
	req := &Requirement{
		Name:  "mini",
		Slots: []SlotRequirement{{Name: "A", Count: 1, Allowed: []string{"A"}}},
	}
	rng := rand.New(rand.NewSource(3))

	cheap := []Player{{ID: "cheap", Name: "Cheap", Positions: []string{"A"}, Salary: 50, ProjectedPoints: 5}}
	opts := SolveOptions{SalaryCap: 100, MinSalaryUsage: 0.9}.withDefaults()
	assert.Nil(t, mcAttempt(newTestContext(cheap, req, opts), rng))

	rich := []Player{{ID: "rich", Name: "Rich", Positions: []string{"A"}, Salary: 95, ProjectedPoints: 5}}
	cand := mcAttempt(newTestContext(rich, req, opts), rng)
	require.NotNil(t, cand)
	assert.Equal(t, 95, cand.totalSalary)
}

func TestMCAttempt_NoEligiblePlayerReturnsNil(t *testing.T) {
	req := &Requirement{
		Name:  "mini",
		Slots: []SlotRequirement{{Name: "A", Count: 1, Allowed: []string{"A"}}},
	}
	pool := []Player{{ID: "b", Name: "Wrong Spot", Positions: []string{"B"}, Salary: 10, ProjectedPoints: 5}}
	ctx := newTestContext(pool, req, SolveOptions{SalaryCap: 100}.withDefaults())

	assert.Nil(t, mcAttempt(ctx, rand.New(rand.NewSource(1))))
}

func TestMonteCarlo_DeterministicWithSingleWorker(t *testing.T) {
	req := ClassicRequirement()
	opts := SolveOptions{SalaryCap: 50000, Workers: 1, Attempts: 60, Seed: 42}.withDefaults()

	first, unfilled := monteCarlo(newTestContext(classicTestPool(), req, opts))
	require.NotNil(t, first)
	assert.Nil(t, unfilled)

	second, _ := monteCarlo(newTestContext(classicTestPool(), req, opts))
	require.NotNil(t, second)

	assert.Equal(t, first.totalPoints, second.totalPoints)
	assert.Equal(t,
		lineupNames(lineupFromCandidate(first, req)),
		lineupNames(lineupFromCandidate(second, req)))
}

func TestMonteCarlo_KeepsBestAcrossWorkers(t *testing.T) {
	req := ClassicRequirement()
	opts := SolveOptions{SalaryCap: 50000, Workers: 4, Attempts: 200, Seed: 9}.withDefaults()
	ctx := newTestContext(classicTestPool(), req, opts)

	best, unfilled := monteCarlo(ctx)
	require.NotNil(t, best)
	assert.Nil(t, unfilled)
	assert.NoError(t, req.ValidateLineup(lineupFromCandidate(best, req), opts))
	// 78 is the floor of this pool: worst two pitchers, the forced infield,
	// worst three outfielders.
	assert.GreaterOrEqual(t, best.totalPoints, 78.0)
}

func TestMonteCarlo_NoValidAttemptReturnsNil(t *testing.T) {
	req := &Requirement{
		Name:  "mini",
		Slots: []SlotRequirement{{Name: "A", Count: 1, Allowed: []string{"A"}}},
	}
	pool := []Player{{ID: "b", Name: "Wrong Spot", Positions: []string{"B"}, Salary: 10, ProjectedPoints: 5}}
	opts := SolveOptions{SalaryCap: 100, Workers: 2, Attempts: 8}.withDefaults()

	best, unfilled := monteCarlo(newTestContext(pool, req, opts))
	assert.Nil(t, best)
	assert.Nil(t, unfilled)
}
