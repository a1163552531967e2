package optimizer

import (
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/willauld/lpsimplex"
)

// lpModel is a linear program in the minimize form the simplex engine
// expects. The lineup objective is negated into c so smaller is better.
type lpModel struct {
	c   []float64
	aub [][]float64
	bub []float64
	aeq [][]float64
	beq []float64
	n   int
}

var (
	errSolverDeadline    = errors.New("exact solver exceeded its time limit")
	errSolverLimit       = errors.New("exact solver exceeded its search limits")
	errNoIntegerSolution = errors.New("no integer solution in the feasible region")
)

const (
	lpMaxIter    = 4000
	lpTol        = 1.0e-12
	integralTol  = 1.0e-6
	boundTol     = 1.0e-9
	maxTreeNodes = 100000
)

type varFix struct {
	idx int
	val float64
}

type bnbNode struct {
	fixed []varFix
}

// solveBinaryProgram runs depth-first branch and bound over LP relaxations
// of the model, treating every variable as binary. Branches are fixed via
// extra equality rows; the one-side is explored first so an incumbent shows
// up early and the bound can start pruning. A deadline miss or an LP that
// stops on its iteration cap aborts the whole search: an unproven incumbent
// is not an optimal lineup.
func solveBinaryProgram(model *lpModel, deadline time.Time, log *logrus.Entry) ([]float64, error) {
	var (
		bestX   []float64
		bestObj float64
		found   bool
		nodes   int
	)

	stack := []bnbNode{{}}
	for len(stack) > 0 {
		if time.Now().After(deadline) {
			log.WithField("nodes", nodes).Warn("Branch and bound hit the time limit")
			return nil, errSolverDeadline
		}
		nodes++
		if nodes > maxTreeNodes {
			log.WithField("nodes", nodes).Warn("Branch and bound hit the node limit")
			return nil, errSolverLimit
		}

		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		aeq, beq := withFixedVars(model, node)
		callback := lpsimplex.Callbackfunc(nil)
		res := lpsimplex.LPSimplex(model.c, model.aub, model.bub, aeq, beq, nil, callback, false, lpMaxIter, lpTol, false)
		if !res.Success {
			if res.Status == 2 {
				continue // branch infeasible, prune
			}
			log.WithFields(logrus.Fields{
				"status":  res.Status,
				"message": res.Message,
				"nitr":    res.Nitr,
			}).Warn("LP relaxation did not converge")
			return nil, errSolverLimit
		}

		obj := -res.Fun
		if found && obj <= bestObj+boundTol {
			continue // cannot beat the incumbent, prune
		}

		frac := mostFractional(res.X)
		if frac < 0 {
			bestX = append([]float64(nil), res.X...)
			bestObj = obj
			found = true
			continue
		}

		zero := append(append([]varFix(nil), node.fixed...), varFix{idx: frac, val: 0})
		one := append(append([]varFix(nil), node.fixed...), varFix{idx: frac, val: 1})
		stack = append(stack, bnbNode{fixed: zero}, bnbNode{fixed: one})
	}

	if !found {
		return nil, errNoIntegerSolution
	}
	log.WithFields(logrus.Fields{
		"nodes":     nodes,
		"objective": bestObj,
	}).Debug("Branch and bound proved optimality")
	return bestX, nil
}

// withFixedVars extends the equality system with one pin row per branched
// variable. Variables default to x >= 0; the model carries the x <= 1 rows
// itself.
func withFixedVars(model *lpModel, node bnbNode) ([][]float64, []float64) {
	if len(node.fixed) == 0 {
		return model.aeq, model.beq
	}
	aeq := make([][]float64, 0, len(model.aeq)+len(node.fixed))
	aeq = append(aeq, model.aeq...)
	beq := make([]float64, 0, len(model.beq)+len(node.fixed))
	beq = append(beq, model.beq...)
	for _, fix := range node.fixed {
		row := make([]float64, model.n)
		row[fix.idx] = 1
		aeq = append(aeq, row)
		beq = append(beq, fix.val)
	}
	return aeq, beq
}

// mostFractional returns the index of the variable farthest from an integer
// value, or -1 when the solution is integral within tolerance.
func mostFractional(x []float64) int {
	best := -1
	bestDist := integralTol
	for i, v := range x {
		dist := v
		if 1-v < dist {
			dist = 1 - v
		}
		if dist > bestDist {
			best = i
			bestDist = dist
		}
	}
	return best
}
