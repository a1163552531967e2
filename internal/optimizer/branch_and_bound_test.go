package optimizer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func binaryTestModel(c []float64, aub [][]float64, bub []float64, aeq [][]float64, beq []float64) *lpModel {
	n := len(c)
	for i := 0; i < n; i++ {
		row := make([]float64, n)
		row[i] = 1
		aub = append(aub, row)
		bub = append(bub, 1)
	}
	return &lpModel{c: c, aub: aub, bub: bub, aeq: aeq, beq: beq, n: n}
}

func TestSolveBinaryProgram_PickOne(t *testing.T) {
	// Pick exactly one of two items, the 3-pointer wins.
	model := binaryTestModel(
		[]float64{-3, -2},
		nil, nil,
		[][]float64{{1, 1}}, []float64{1},
	)

	x, err := solveBinaryProgram(model, time.Now().Add(5*time.Second), testLogger().WithField("test", true))
	require.NoError(t, err)
	assert.Greater(t, x[0], 0.5)
	assert.Less(t, x[1], 0.5)
}

func TestSolveBinaryProgram_BranchesOnFractionalRoot(t *testing.T) {
	// Knapsack with uniform weight 2 and capacity 3: the relaxation splits
	// an item in half, the integer answer takes the single best item.
	model := binaryTestModel(
		[]float64{-5, -4, -3},
		[][]float64{{2, 2, 2}}, []float64{3},
		nil, nil,
	)

	x, err := solveBinaryProgram(model, time.Now().Add(5*time.Second), testLogger().WithField("test", true))
	require.NoError(t, err)
	assert.Greater(t, x[0], 0.5)
	assert.Less(t, x[1], 0.5)
	assert.Less(t, x[2], 0.5)
}

func TestSolveBinaryProgram_Infeasible(t *testing.T) {
	// Three selections demanded from two binary variables.
	model := binaryTestModel(
		[]float64{-1, -1},
		nil, nil,
		[][]float64{{1, 1}}, []float64{3},
	)

	_, err := solveBinaryProgram(model, time.Now().Add(5*time.Second), testLogger().WithField("test", true))
	assert.ErrorIs(t, err, errNoIntegerSolution)
}

func TestSolveBinaryProgram_DeadlineAborts(t *testing.T) {
	model := binaryTestModel(
		[]float64{-1, -1},
		nil, nil,
		[][]float64{{1, 1}}, []float64{1},
	)

	_, err := solveBinaryProgram(model, time.Now().Add(-time.Second), testLogger().WithField("test", true))
	assert.ErrorIs(t, err, errSolverDeadline)
}

func TestMostFractional(t *testing.T) {
	assert.Equal(t, -1, mostFractional([]float64{0, 1, 0, 1}))
	assert.Equal(t, 1, mostFractional([]float64{0, 0.5, 1}))
	assert.Equal(t, 2, mostFractional([]float64{0, 0.9, 0.5, 1}))
	assert.Equal(t, -1, mostFractional(nil))
}

func TestWithFixedVars(t *testing.T) {
	model := &lpModel{
		aeq: [][]float64{{1, 1, 0}},
		beq: []float64{2},
		n:   3,
	}
	node := bnbNode{fixed: []varFix{{idx: 2, val: 1}, {idx: 0, val: 0}}}

	aeq, beq := withFixedVars(model, node)
	require.Len(t, aeq, 3)
	require.Len(t, beq, 3)
	assert.Equal(t, []float64{0, 0, 1}, aeq[1])
	assert.Equal(t, 1.0, beq[1])
	assert.Equal(t, []float64{1, 0, 0}, aeq[2])
	assert.Equal(t, 0.0, beq[2])

	// The base system is untouched.
	assert.Len(t, model.aeq, 1)
}
