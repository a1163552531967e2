package optimizer

import (
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
)

// seatPair is one admissible (player, slot) assignment in the exact model.
type seatPair struct {
	player int
	slot   string
}

// exactSolve formulates the open seats as a 0/1 program and solves it to
// proven optimality. Selection variables decide who makes the lineup,
// assignment variables decide which seat they occupy, and the two are tied
// together so a selected player fills exactly one seat. Captain pricing
// rides on the assignment variables as salary and point deltas.
func exactSolve(ctx *solveContext) (*lineupCandidate, error) {
	model, pairs := buildSeatModel(ctx)
	ctx.log.WithFields(logrus.Fields{
		"variables":    model.n,
		"assignments":  len(pairs),
		"equalities":   len(model.aeq),
		"inequalities": len(model.aub),
	}).Debug("Built exact model")

	deadline := time.Now().Add(ctx.opts.TimeLimit)
	x, err := solveBinaryProgram(model, deadline, ctx.log)
	if err != nil {
		return nil, err
	}
	return extractCandidate(ctx, pairs, x)
}

func buildSeatModel(ctx *solveContext) (*lpModel, []seatPair) {
	pool := ctx.pool
	remaining := remainingCounts(ctx.req, ctx.seed)
	totalRemaining := 0
	for _, count := range remaining {
		totalRemaining += count
	}

	var pairs []seatPair
	for i, p := range pool {
		for _, slot := range ctx.req.Slots {
			if remaining[slot.Name] > 0 && CanFillSlot(p, slot) {
				pairs = append(pairs, seatPair{player: i, slot: slot.Name})
			}
		}
	}

	n := len(pool)
	nvars := n + len(pairs)

	c := make([]float64, nvars)
	budget := make([]float64, nvars)
	for i, p := range pool {
		c[i] = -p.ProjectedPoints
		budget[i] = float64(p.Salary)
	}
	for j, pr := range pairs {
		base := pool[pr.player]
		_, salary, points := ctx.values(base, pr.slot)
		c[n+j] = -(points - base.ProjectedPoints)
		budget[n+j] = float64(salary - base.Salary)
	}

	var aeq [][]float64
	var beq []float64

	// Lineup size.
	sizeRow := make([]float64, nvars)
	for i := 0; i < n; i++ {
		sizeRow[i] = 1
	}
	aeq = append(aeq, sizeRow)
	beq = append(beq, float64(totalRemaining))

	// A selected player occupies exactly one seat, an unselected one none.
	for i := range pool {
		row := make([]float64, nvars)
		row[i] = -1
		for j, pr := range pairs {
			if pr.player == i {
				row[n+j] = 1
			}
		}
		aeq = append(aeq, row)
		beq = append(beq, 0)
	}

	// Exact seat count per slot.
	for _, slot := range ctx.req.Slots {
		if remaining[slot.Name] <= 0 {
			continue
		}
		row := make([]float64, nvars)
		for j, pr := range pairs {
			if pr.slot == slot.Name {
				row[n+j] = 1
			}
		}
		aeq = append(aeq, row)
		beq = append(beq, float64(remaining[slot.Name]))
	}

	var aub [][]float64
	var bub []float64

	// Salary cap on the open budget.
	aub = append(aub, budget)
	bub = append(bub, float64(ctx.opts.SalaryCap-ctx.seed.totalSalary))

	// Salary floor when requested.
	if floor := ctx.opts.minSalary() - ctx.seed.totalSalary; floor > 0 {
		row := make([]float64, nvars)
		for k, v := range budget {
			row[k] = -v
		}
		aub = append(aub, row)
		bub = append(bub, -float64(floor))
	}

	// At most one entry per identity when the pool lists duplicates.
	keyIdx := make(map[string][]int)
	keyOrder := make([]string, 0)
	for i, p := range pool {
		key := p.LogicalKey()
		if len(keyIdx[key]) == 0 {
			keyOrder = append(keyOrder, key)
		}
		keyIdx[key] = append(keyIdx[key], i)
	}
	for _, key := range keyOrder {
		idxs := keyIdx[key]
		if len(idxs) < 2 {
			continue
		}
		row := make([]float64, nvars)
		for _, i := range idxs {
			row[i] = 1
		}
		aub = append(aub, row)
		bub = append(bub, 1)
	}

	// Per-team ceiling.
	if ctx.opts.MaxPerTeam > 0 {
		seedTeams := ctx.seed.teamCounts()
		teamSet := make(map[string]bool)
		for _, p := range pool {
			if p.Team != "" {
				teamSet[p.Team] = true
			}
		}
		teams := make([]string, 0, len(teamSet))
		for team := range teamSet {
			teams = append(teams, team)
		}
		sort.Strings(teams)
		for _, team := range teams {
			row := make([]float64, nvars)
			for i, p := range pool {
				if p.Team == team {
					row[i] = 1
				}
			}
			allowance := ctx.opts.MaxPerTeam - seedTeams[team]
			if allowance < 0 {
				allowance = 0
			}
			aub = append(aub, row)
			bub = append(bub, float64(allowance))
		}
	}

	// Binary upper bounds.
	for i := 0; i < nvars; i++ {
		row := make([]float64, nvars)
		row[i] = 1
		aub = append(aub, row)
		bub = append(bub, 1)
	}

	return &lpModel{c: c, aub: aub, bub: bub, aeq: aeq, beq: beq, n: nvars}, pairs
}

// extractCandidate turns an integral solution vector back into a lineup and
// cross-checks it against the model's own constraints. Any mismatch means
// the solution cannot be trusted and the exact stage has failed.
func extractCandidate(ctx *solveContext, pairs []seatPair, x []float64) (*lineupCandidate, error) {
	n := len(ctx.pool)
	cand := ctx.seed.clone()
	used := cand.usedKeys()
	seated := make(map[int]bool)

	for j, pr := range pairs {
		if x[n+j] < 0.5 {
			continue
		}
		p := ctx.pool[pr.player]
		if x[pr.player] < 0.5 {
			return nil, fmt.Errorf("extraction mismatch: %s seated at %s without being selected", p.Name, pr.slot)
		}
		if seated[pr.player] {
			return nil, fmt.Errorf("extraction mismatch: %s seated twice", p.Name)
		}
		if used[p.LogicalKey()] {
			return nil, fmt.Errorf("extraction mismatch: identity %s already in the lineup", p.LogicalKey())
		}
		captain, salary, points := ctx.values(p, pr.slot)
		cand.seat(p, pr.slot, captain, salary, points)
		used[p.LogicalKey()] = true
		seated[pr.player] = true
	}

	for i, p := range ctx.pool {
		if x[i] > 0.5 && !seated[i] {
			return nil, fmt.Errorf("extraction mismatch: %s selected without a seat", p.Name)
		}
	}

	counts := cand.slotCounts()
	for _, slot := range ctx.req.Slots {
		if counts[slot.Name] != slot.Count {
			return nil, fmt.Errorf("extraction mismatch: slot %s has %d players, expected %d",
				slot.Name, counts[slot.Name], slot.Count)
		}
	}
	if cand.totalSalary > ctx.opts.SalaryCap {
		return nil, fmt.Errorf("extraction mismatch: salary %d exceeds cap %d", cand.totalSalary, ctx.opts.SalaryCap)
	}
	return cand, nil
}
