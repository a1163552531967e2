package optimizer

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Solver builds lineups: the exact stage first, then a chain of heuristics
// when exactness cannot be proven inside the time limit.
type Solver struct {
	logger *logrus.Logger
}

// NewSolver creates a Solver. A nil logger gets a default one.
func NewSolver(logger *logrus.Logger) *Solver {
	if logger == nil {
		logger = logrus.New()
	}
	return &Solver{logger: logger}
}

// seatValuer prices seating p at a slot: whether the seat is the captain
// seat plus the effective salary and points.
type seatValuer func(p Player, slot string) (bool, int, float64)

// solveContext carries everything a strategy needs: the working pool with
// excluded and locked players removed, the seed candidate holding the
// locked seats, and the seat pricing function.
type solveContext struct {
	pool     []Player
	req      *Requirement
	opts     SolveOptions
	seed     *lineupCandidate
	values   seatValuer
	baseSeed int64
	log      *logrus.Entry
}

func (ctx *solveContext) workerSeed(i int) int64 {
	return ctx.baseSeed + int64(i)*7919
}

// strategy is one fallback in the chain. It returns a complete candidate or
// nil plus the slots it could not cover.
type strategy struct {
	name string
	run  func(*solveContext) (*lineupCandidate, []string)
}

func classicStrategies() []strategy {
	return []strategy{
		{name: "position_greedy", run: positionGreedy},
		{name: "salary_repair", run: cheapestFill},
		{name: "monte_carlo", run: monteCarlo},
		{name: "genetic", run: genetic},
	}
}

func captainStrategies() []strategy {
	return []strategy{
		{name: "captain_greedy", run: captainGreedy},
		{name: "salary_repair", run: cheapestFill},
		{name: "monte_carlo", run: monteCarlo},
		{name: "genetic", run: genetic},
	}
}

const solveSteps = 5

// Solve builds the best lineup it can for the contest. Business failures
// come back as a status on the result with a nil error; a non-nil error
// means an internal invariant broke and the result cannot be trusted.
func (s *Solver) Solve(pool []Player, req *Requirement, opts SolveOptions) (*LineupResult, error) {
	return s.SolveWithProgress(pool, req, opts, nil)
}

// SolveShowdown is Solve against the standard captain contest.
func (s *Solver) SolveShowdown(pool []Player, opts SolveOptions) (*LineupResult, error) {
	return s.SolveWithProgress(pool, ShowdownRequirement(), opts, nil)
}

// SolveWithProgress is Solve with phase updates on the channel. Sends never
// block; a slow consumer just misses updates.
func (s *Solver) SolveWithProgress(pool []Player, req *Requirement, opts SolveOptions, progress chan<- ProgressUpdate) (*LineupResult, error) {
	start := time.Now()
	opts = opts.withDefaults()
	solveID := uuid.New().String()

	contest := "unknown"
	if req != nil {
		contest = req.Name
	}
	log := s.logger.WithFields(logrus.Fields{
		"solve_id":  solveID,
		"contest":   contest,
		"pool_size": len(pool),
	})
	log.WithFields(logrus.Fields{
		"salary_cap": opts.SalaryCap,
		"method":     opts.Method,
	}).Info("Starting lineup solve")

	fail := func(status Status, reason string, shortfalls []PositionShortfall) (*LineupResult, error) {
		sendProgress(progress, "completed", solveSteps, solveSteps, reason)
		return &LineupResult{
			Status:     status,
			Reason:     reason,
			Shortfalls: shortfalls,
			ElapsedMs:  time.Since(start).Milliseconds(),
		}, nil
	}

	sendProgress(progress, "validation", 1, solveSteps, "validating player pool")
	if reason := validateInput(pool, req, opts); reason != "" {
		log.WithField("reason", reason).Warn("Rejected solve input")
		return fail(StatusInvalidInput, reason, nil)
	}

	working := filterExcluded(pool, opts.Excluded)
	if len(working) == 0 {
		log.Warn("Every player in the pool is excluded")
		return fail(StatusInvalidInput, "every player in the pool is excluded", nil)
	}

	valuer := baseValuer()
	if req.CaptainSlot != "" {
		normalized, captains, err := normalizeShowdownPool(working, req)
		if err != nil {
			log.WithError(err).Warn("Rejected captain pool")
			return fail(StatusInvalidInput, err.Error(), nil)
		}
		working = normalized
		valuer = showdownValuer(req, captains)
	}

	sendProgress(progress, "feasibility", 2, solveSteps, "checking position coverage")
	if ok, reason, shortfalls := CheckFeasibility(working, req); !ok {
		log.WithField("reason", reason).Warn("Pool cannot cover the contest")
		return fail(StatusInfeasible, reason, shortfalls)
	}

	seed := newCandidate()
	residual := working
	if len(opts.Locked) > 0 {
		var err error
		seed, residual, err = buildSeed(working, req, opts, valuer)
		if err != nil {
			log.WithError(err).Warn("Locked players rejected")
			switch e := err.(type) {
			case *InputError:
				return fail(StatusInvalidInput, e.Reason, nil)
			case *InfeasibleError:
				return fail(StatusInfeasible, e.Reason, e.Shortfalls)
			default:
				return nil, err
			}
		}
	}

	baseSeed := opts.Seed
	if baseSeed == 0 {
		baseSeed = time.Now().UnixNano()
	}
	ctx := &solveContext{
		pool:     residual,
		req:      req,
		opts:     opts,
		seed:     seed,
		values:   valuer,
		baseSeed: baseSeed,
		log:      log,
	}

	if seed.size() == req.TotalSlots() {
		result, ferr := s.finishResult(ctx, seed.clone(), StatusOptimal, "locked", start)
		if ferr != nil {
			return nil, ferr
		}
		sendProgress(progress, "completed", solveSteps, solveSteps, string(result.Status))
		return result, nil
	}

	if opts.Method == MethodAuto && len(ctx.pool) > 0 {
		sendProgress(progress, "exact", 3, solveSteps, "running the exact solver")
		cand, err := exactSolve(ctx)
		if err == nil {
			result, ferr := s.finishResult(ctx, cand, StatusOptimal, "milp", start)
			if ferr != nil {
				return nil, ferr
			}
			sendProgress(progress, "completed", solveSteps, solveSteps, string(result.Status))
			return result, nil
		}
		switch err {
		case errNoIntegerSolution:
			// A clean exhaustive search means no lineup satisfies the
			// constraints; the heuristics cannot find one either.
			log.WithError(err).Warn("Exact stage proved the contest infeasible")
			return fail(StatusInfeasible, "no lineup satisfies the salary and roster constraints", nil)
		case errSolverDeadline, errSolverLimit:
			log.WithError(err).Warn("Exact stage failed, falling back")
		default:
			log.WithError(err).Error("Exact stage produced an inconsistent solution, falling back")
		}
	}

	strategies := classicStrategies()
	if req.CaptainSlot != "" {
		strategies = captainStrategies()
	}

	var unfilled []string
	belowFloor := false
	for i, strat := range strategies {
		sendProgress(progress, "fallback", 4, solveSteps,
			fmt.Sprintf("running fallback %d/%d: %s", i+1, len(strategies), strat.name))
		cand, missing := strat.run(ctx)
		if cand == nil {
			log.WithFields(logrus.Fields{
				"strategy": strat.name,
				"unfilled": missing,
			}).Debug("Strategy produced no lineup")
			unfilled = mergeUnique(unfilled, missing)
			continue
		}
		if floor := opts.minSalary(); floor > 0 && cand.totalSalary < floor {
			log.WithFields(logrus.Fields{
				"strategy":     strat.name,
				"total_salary": cand.totalSalary,
				"salary_floor": floor,
			}).Debug("Strategy lineup is under the salary floor")
			belowFloor = true
			continue
		}
		result, ferr := s.finishResult(ctx, cand, StatusGreedy, strat.name, start)
		if ferr != nil {
			return nil, ferr
		}
		sendProgress(progress, "completed", solveSteps, solveSteps, string(result.Status))
		return result, nil
	}

	reason := "all fallback strategies exhausted, no lineup fits the salary window"
	if len(unfilled) > 0 {
		reason = fmt.Sprintf("all fallback strategies exhausted, could not fill %s within the constraints",
			strings.Join(unfilled, ", "))
	} else if belowFloor {
		reason = "all fallback strategies exhausted, no lineup reaches the minimum salary usage"
	}
	log.WithField("unfilled", unfilled).Warn("No strategy produced a lineup")
	return fail(StatusInfeasible, reason, exhaustionShortfalls(working, req, unfilled))
}

// finishResult renders and validates a finished candidate. A validation
// failure here means the producing stage is broken, so it surfaces as a hard
// error rather than a status.
func (s *Solver) finishResult(ctx *solveContext, cand *lineupCandidate, status Status, method string, start time.Time) (*LineupResult, error) {
	lineup := lineupFromCandidate(cand, ctx.req)
	if err := ctx.req.ValidateLineup(lineup, ctx.opts); err != nil {
		ctx.log.WithError(err).WithField("method", method).Error("Lineup failed final validation")
		return nil, fmt.Errorf("lineup from %s failed validation: %w", method, err)
	}

	result := &LineupResult{
		Status:         status,
		Method:         method,
		Lineup:         lineup,
		TotalSalary:    cand.totalSalary,
		TotalPoints:    cand.totalPoints,
		PositionCounts: positionCounts(lineup),
		ElapsedMs:      time.Since(start).Milliseconds(),
	}
	ctx.log.WithFields(logrus.Fields{
		"status":       status,
		"method":       method,
		"total_salary": result.TotalSalary,
		"total_points": result.TotalPoints,
		"elapsed_ms":   result.ElapsedMs,
	}).Info("Lineup solve finished")
	return result, nil
}

// baseValuer prices every seat at face value.
func baseValuer() seatValuer {
	return func(p Player, slot string) (bool, int, float64) {
		return false, p.Salary, p.ProjectedPoints
	}
}

// validateInput screens the pool and options before any solving. Returns an
// empty string when everything is usable.
func validateInput(pool []Player, req *Requirement, opts SolveOptions) string {
	if req == nil || len(req.Slots) == 0 {
		return "contest requirement is empty"
	}
	for _, slot := range req.Slots {
		if slot.Count <= 0 {
			return fmt.Sprintf("slot %s has non-positive count %d", slot.Name, slot.Count)
		}
	}
	if req.CaptainSlot != "" {
		if req.SlotByName(req.CaptainSlot) == nil {
			return fmt.Sprintf("captain slot %s is not defined in the contest", req.CaptainSlot)
		}
		if req.CaptainMultiplier <= 0 {
			return fmt.Sprintf("captain multiplier %.2f must be positive", req.CaptainMultiplier)
		}
	}
	if opts.SalaryCap <= 0 {
		return fmt.Sprintf("salary cap %d must be positive", opts.SalaryCap)
	}
	if opts.MinSalaryUsage < 0 || opts.MinSalaryUsage > 1 {
		return fmt.Sprintf("minimum salary usage %.2f must be between 0 and 1", opts.MinSalaryUsage)
	}
	if opts.Method != MethodAuto && opts.Method != MethodHeuristicOnly {
		return fmt.Sprintf("unknown solve method %q", opts.Method)
	}
	if len(pool) == 0 {
		return "player pool is empty"
	}

	ids := make(map[string]bool, len(pool))
	for i, p := range pool {
		if p.ID == "" {
			return fmt.Sprintf("player at index %d has no id", i)
		}
		if ids[p.ID] {
			return fmt.Sprintf("duplicate player id %s", p.ID)
		}
		ids[p.ID] = true
		if len(p.Positions) == 0 {
			return fmt.Sprintf("player %s has no positions", p.ID)
		}
		if p.Salary < 0 {
			return fmt.Sprintf("player %s has negative salary %d", p.ID, p.Salary)
		}
		if math.IsNaN(p.ProjectedPoints) || math.IsInf(p.ProjectedPoints, 0) {
			return fmt.Sprintf("player %s has an unusable projection", p.ID)
		}
	}

	excluded := make(map[string]bool, len(opts.Excluded))
	for _, id := range opts.Excluded {
		excluded[id] = true
	}
	for _, id := range opts.Locked {
		if excluded[id] {
			return fmt.Sprintf("player %s is both locked and excluded", id)
		}
	}
	return ""
}

// buildSeed seats the locked players and returns the seed candidate plus the
// pool without them. Lock problems split two ways: unknown or conflicting
// ids are input errors, locks that cannot coexist are infeasibility.
func buildSeed(pool []Player, req *Requirement, opts SolveOptions, values seatValuer) (*lineupCandidate, []Player, error) {
	byID := make(map[string]Player, len(pool))
	for _, p := range pool {
		byID[p.ID] = p
	}

	seen := make(map[string]bool, len(opts.Locked))
	keys := make(map[string]string, len(opts.Locked))
	locked := make([]Player, 0, len(opts.Locked))
	for _, id := range opts.Locked {
		if seen[id] {
			return nil, nil, &InputError{Reason: fmt.Sprintf("player %s locked twice", id)}
		}
		seen[id] = true
		p, ok := byID[id]
		if !ok {
			return nil, nil, &InputError{Reason: fmt.Sprintf("locked player %s is not in the pool", id)}
		}
		if prev, ok := keys[p.LogicalKey()]; ok {
			return nil, nil, &InputError{Reason: fmt.Sprintf("locked players %s and %s share identity %s", prev, id, p.LogicalKey())}
		}
		keys[p.LogicalKey()] = id
		locked = append(locked, p)
	}
	if len(locked) > req.TotalSlots() {
		return nil, nil, &InputError{Reason: fmt.Sprintf("%d locked players for a %d slot lineup", len(locked), req.TotalSlots())}
	}

	seed := newCandidate()
	assigned, err := assignSlots(locked, req, remainingCounts(req, seed))
	if err != nil {
		return nil, nil, &InfeasibleError{Reason: fmt.Sprintf("locked players cannot all be seated: %v", err)}
	}

	teams := make(map[string]int)
	for _, p := range locked {
		if !teamFits(teams, p.Team, opts.MaxPerTeam) {
			return nil, nil, &InfeasibleError{Reason: fmt.Sprintf("locked players put team %s over the limit of %d", p.Team, opts.MaxPerTeam)}
		}
		slot := assigned[p.ID]
		captain, salary, points := values(p, slot)
		seed.seat(p, slot, captain, salary, points)
		if p.Team != "" {
			teams[p.Team]++
		}
	}
	if seed.totalSalary > opts.SalaryCap {
		return nil, nil, &InfeasibleError{Reason: fmt.Sprintf("locked players alone cost %d, cap is %d", seed.totalSalary, opts.SalaryCap)}
	}

	residual := make([]Player, 0, len(pool)-len(locked))
	for _, p := range pool {
		if seen[p.ID] {
			continue
		}
		if _, lockedKey := keys[p.LogicalKey()]; lockedKey {
			continue // same identity as a locked player
		}
		residual = append(residual, p)
	}
	return seed, residual, nil
}

// Helper functions

func sendProgress(progress chan<- ProgressUpdate, step string, current, total int, msg string) {
	if progress == nil {
		return
	}
	update := ProgressUpdate{
		Type:        "progress",
		Progress:    float64(current) / float64(total) * 100,
		Message:     msg,
		CurrentStep: step,
		TotalSteps:  total,
		Timestamp:   time.Now(),
	}
	if step == "completed" {
		update.Type = "completed"
		update.Progress = 100
	}
	select {
	case progress <- update:
	default:
	}
}

func filterExcluded(pool []Player, excluded []string) []Player {
	if len(excluded) == 0 {
		return pool
	}
	drop := make(map[string]bool, len(excluded))
	for _, id := range excluded {
		drop[id] = true
	}
	kept := make([]Player, 0, len(pool))
	for _, p := range pool {
		if !drop[p.ID] {
			kept = append(kept, p)
		}
	}
	return kept
}

func mergeUnique(existing, more []string) []string {
	seen := make(map[string]bool, len(existing))
	for _, s := range existing {
		seen[s] = true
	}
	for _, s := range more {
		if !seen[s] {
			seen[s] = true
			existing = append(existing, s)
		}
	}
	return existing
}

func exhaustionShortfalls(pool []Player, req *Requirement, unfilled []string) []PositionShortfall {
	var out []PositionShortfall
	for _, name := range unfilled {
		slot := req.SlotByName(name)
		if slot == nil {
			continue
		}
		eligible := make(map[string]bool)
		for _, p := range pool {
			if CanFillSlot(p, *slot) {
				eligible[p.LogicalKey()] = true
			}
		}
		out = append(out, PositionShortfall{
			Position: name,
			Required: slot.Count,
			Eligible: len(eligible),
		})
	}
	return out
}
