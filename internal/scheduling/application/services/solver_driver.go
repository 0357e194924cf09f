package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/meridianhire/panelsched/internal/scheduling/domain"
	"github.com/meridianhire/panelsched/internal/scheduling/infrastructure/audit"
	"github.com/meridianhire/panelsched/internal/scheduling/infrastructure/cache"
	"github.com/meridianhire/panelsched/internal/scheduling/infrastructure/cpsolver"
	shareddomain "github.com/meridianhire/panelsched/internal/shared/domain"
)

// ResultKind is the outcome variant of a single solve.
type ResultKind int

const (
	KindOptimal ResultKind = iota
	KindFeasible
	KindInfeasible
	KindTimeLimitReachedNoSolution
)

func (k ResultKind) String() string {
	switch k {
	case KindOptimal:
		return "OPTIMAL"
	case KindFeasible:
		return "FEASIBLE"
	case KindInfeasible:
		return "INFEASIBLE"
	case KindTimeLimitReachedNoSolution:
		return "TIME_LIMIT_NO_SOLUTION"
	default:
		return "UNKNOWN"
	}
}

// MarshalJSON renders a ResultKind as its string name, so a queued job's
// serialized result reads the same outcome vocabulary the CLI prints for
// the synchronous CLI.
func (k ResultKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// SolveResult is the outcome of one solve attempt. Solution is nil for
// KindInfeasible and KindTimeLimitReachedNoSolution.
type SolveResult struct {
	Kind     ResultKind
	Solution *domain.Solution
}

// SolveOptions configures a solve invocation.
type SolveOptions struct {
	MaxTimeSeconds int
	Workers        int
	RandomSeed     int64
}

// DefaultSolveOptions returns the default opts: a 60-second
// budget and one worker per available core.
func DefaultSolveOptions() SolveOptions {
	return SolveOptions{MaxTimeSeconds: 60, Workers: runtime.NumCPU()}
}

// SolverDriver builds the model, invokes the CP-SAT
// backend behind a circuit breaker (protecting callers from a wedged or
// crash-looping solver process the way Executor protects engine calls in
// the runtime package this is adapted from), and extracts/verifies results.
type SolverDriver struct {
	factory      cpsolver.Factory
	modelBuilder *ModelBuilder
	extractor    *Extractor
	diversity    *DiversityController

	breaker *gobreaker.CircuitBreaker[*cpsolver.Result]
	logger  *slog.Logger

	// auditLog is optional: when nil, Solve never writes a record. Set it
	// via SetAuditLog once a database.Connection has been established.
	auditLog audit.SolveAuditLog

	// resultCache is optional: when nil, Solve always invokes the backend.
	resultCache *cache.ResultCache
}

// SolverDriverConfig tunes the circuit breaker guarding the solver backend.
type SolverDriverConfig struct {
	CircuitBreakerEnabled bool
	MaxRequests           uint32
	Interval              time.Duration
	Timeout               time.Duration
	FailureThreshold      uint32
}

// DefaultSolverDriverConfig mirrors the conservative defaults used to guard
// other long-running out-of-process collaborators in this codebase.
func DefaultSolverDriverConfig() SolverDriverConfig {
	return SolverDriverConfig{
		CircuitBreakerEnabled: true,
		MaxRequests:           1,
		Interval:              10 * time.Second,
		Timeout:               30 * time.Second,
		FailureThreshold:      3,
	}
}

// NewSolverDriver wires a SolverDriver over a concrete cpsolver.Factory.
func NewSolverDriver(factory cpsolver.Factory, logger *slog.Logger, cfg SolverDriverConfig) *SolverDriver {
	if logger == nil {
		logger = slog.Default()
	}
	d := &SolverDriver{
		factory:      factory,
		modelBuilder: NewModelBuilder(),
		extractor:    NewExtractor(),
		diversity:    NewDiversityController(),
		logger:       logger,
	}
	if cfg.CircuitBreakerEnabled {
		d.breaker = gobreaker.NewCircuitBreaker[*cpsolver.Result](gobreaker.Settings{
			Name:        "cp_sat_solver",
			MaxRequests: cfg.MaxRequests,
			Interval:    cfg.Interval,
			Timeout:     cfg.Timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= cfg.FailureThreshold
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				d.logger.Warn("solver circuit breaker state changed", "from", from.String(), "to", to.String())
			},
		})
	}
	return d
}

// SetAuditLog attaches a SolveAuditLog. It's a separate setter rather than a
// required constructor argument because the audit log depends on a live
// database.Connection, which the CLI only establishes once it knows whether
// the caller asked for persistence at all.
func (d *SolverDriver) SetAuditLog(log audit.SolveAuditLog) { d.auditLog = log }

// SetResultCache attaches a ResultCache. Set via a separate setter for the
// same reason as SetAuditLog: it depends on a live Redis connection the
// CLI only establishes when the caller opts into caching.
func (d *SolverDriver) SetResultCache(c *cache.ResultCache) { d.resultCache = c }

// ErrCircuitOpen is returned when the solver backend has tripped the
// breaker and is being given time to recover.
var ErrCircuitOpen = errors.New("solver driver: circuit breaker open, backend is unhealthy")

// Solve runs the single-solution path. When a ResultCache is
// attached, a prior solution for the same ConfigDigest is returned without
// invoking the backend; SolveMulti never consults the cache, since each of
// its diversity-loop solutions is deliberately distinct.
func (d *SolverDriver) Solve(ctx context.Context, inst *domain.Instance, opts SolveOptions) (*SolveResult, error) {
	digest := ConfigDigest(inst)
	if d.resultCache != nil {
		if cached, ok, err := d.resultCache.Get(ctx, digest); err == nil && ok {
			kind := KindFeasible
			if cached.Summary.Status == domain.StatusOptimal {
				kind = KindOptimal
			}
			return &SolveResult{Kind: kind, Solution: cached}, nil
		}
	}

	model := d.factory.NewModel()
	built := d.modelBuilder.Build(inst, model)

	deadline, cancel := context.WithTimeout(ctx, time.Duration(opts.MaxTimeSeconds)*time.Second)
	defer cancel()

	result, err := d.invoke(deadline, model, opts)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return &SolveResult{Kind: KindTimeLimitReachedNoSolution}, nil
		}
		return nil, fmt.Errorf("solver driver: %w", err)
	}

	solved, err := d.toSolveResult(built, result)
	if err != nil {
		return nil, err
	}
	if d.resultCache != nil && solved.Solution != nil {
		if err := d.resultCache.Put(ctx, digest, solved.Solution); err != nil {
			d.logger.Warn("result cache put failed", "error", err)
		}
	}
	d.recordAudit(ctx, inst, solved)
	return solved, nil
}

// recordAudit appends a Record to the audit log, if one is attached.
// Failures are logged, never returned: the audit trail is an observer,
// and only the scheduling core's own invariants are fatal to a solve.
func (d *SolverDriver) recordAudit(ctx context.Context, inst *domain.Instance, result *SolveResult) {
	if d.auditLog == nil {
		return
	}

	panelNames := make([]string, inst.NumPanels())
	for i := range panelNames {
		panelNames[i] = inst.Panel(i).Name
	}

	rec := audit.Record{
		RunID:         shareddomain.NewRunID(),
		ConfigDigest:  ConfigDigest(inst),
		Status:        result.Kind.String(),
		NumCandidates: inst.NumCandidates,
		PanelNames:    panelNames,
		CreatedAt:     time.Now(),
	}
	if result.Solution != nil {
		rec.OrderBreaks = result.Solution.Summary.OrderBreaks
		rec.DayEndTime = result.Solution.Summary.DayEndTime
		rec.ElapsedMillis = result.Solution.Stats.Elapsed.Milliseconds()
	}

	if err := d.auditLog.Append(ctx, rec); err != nil {
		d.logger.Warn("audit log append failed", "error", err)
	}
}

// ConfigDigest hashes every field of inst that affects solver semantics —
// horizon, candidate count, panel catalog, availability windows,
// preferred order, position constraints, conflict groups, and the gap
// bound — so repeated solves of the same configuration share one digest
// in the audit trail and the result cache, and two configs that differ in
// any constraint never collide: a result cache hit returns a prior
// solution verbatim with no re-verification, so an under-hashed digest
// would let a semantically different config receive a schedule that
// violates its own constraints.
func ConfigDigest(inst *domain.Instance) string {
	h := sha256.New()
	fmt.Fprintf(h, "%d|%d|%d|%d", inst.SlotMinutes, inst.HorizonSlots, inst.NumCandidates, inst.NumPanels())

	for i := 0; i < inst.NumPanels(); i++ {
		p := inst.Panel(i)
		fmt.Fprintf(h, "|panel:%s:%d:%t", p.Name, p.DurationSlots, p.Unlimited)
		for _, w := range inst.Availability(i) {
			fmt.Fprintf(h, ":avail:%d,%d", w.Start, w.End)
		}
		if pc, ok := inst.PositionConstraint(i); ok {
			fmt.Fprintf(h, ":pos:%d,%d", pc.Kind, pc.Index)
		}
	}

	fmt.Fprintf(h, "|order:%v", inst.PreferredOrder())

	for _, group := range inst.ConflictGroups() {
		fmt.Fprintf(h, "|conflict:%v", group)
	}

	fmt.Fprintf(h, "|gap:%d", inst.MaxGapSlots())

	return hex.EncodeToString(h.Sum(nil))[:16]
}

// SolveMulti runs the diversity loop: solve once, then
// repeatedly cut out every previously produced solution's exact start-time
// assignment and re-solve, until k solutions are produced, the model goes
// infeasible, or the deadline expires.
func (d *SolverDriver) SolveMulti(ctx context.Context, inst *domain.Instance, opts SolveOptions, k int) ([]*SolveResult, error) {
	if k < 1 {
		return nil, fmt.Errorf("solver driver: k must be >= 1, got %d", k)
	}

	deadline, cancel := context.WithTimeout(ctx, time.Duration(opts.MaxTimeSeconds)*time.Second)
	defer cancel()

	d.diversity.Reset()
	var results []*SolveResult

	for i := 0; i < k; i++ {
		model := d.factory.NewModel()
		built := d.modelBuilder.Build(inst, model)
		d.diversity.ApplyCuts(model, built)

		result, err := d.invoke(deadline, model, opts)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
				break
			}
			return nil, fmt.Errorf("solver driver: %w", err)
		}

		solved, err := d.toSolveResult(built, result)
		if err != nil {
			return nil, err
		}
		if solved.Kind == KindInfeasible || solved.Kind == KindTimeLimitReachedNoSolution {
			break
		}
		results = append(results, solved)
		d.diversity.Record(built, result)
	}

	if len(results) == 0 {
		return nil, nil
	}
	return results, nil
}

func (d *SolverDriver) invoke(ctx context.Context, model cpsolver.Model, opts SolveOptions) (*cpsolver.Result, error) {
	params := cpsolver.SolveParams{
		MaxWorkers: opts.Workers,
		RandomSeed: opts.RandomSeed,
		TimeLimit:  time.Duration(opts.MaxTimeSeconds) * time.Second,
	}

	call := func() (*cpsolver.Result, error) { return model.Solve(ctx, params) }
	if d.breaker == nil {
		return call()
	}
	result, err := d.breaker.Execute(call)
	if errors.Is(err, gobreaker.ErrOpenState) {
		return nil, ErrCircuitOpen
	}
	return result, err
}

func (d *SolverDriver) toSolveResult(built *BuiltModel, result *cpsolver.Result) (*SolveResult, error) {
	switch result.Status {
	case cpsolver.StatusInfeasible, cpsolver.StatusModelInvalid:
		return &SolveResult{Kind: KindInfeasible}, nil
	case cpsolver.StatusUnknown:
		return &SolveResult{Kind: KindTimeLimitReachedNoSolution}, nil
	}

	solution, err := d.extractor.Extract(built, result)
	if err != nil {
		return nil, err
	}

	kind := KindFeasible
	if result.Status == cpsolver.StatusOptimal {
		kind = KindOptimal
	}
	return &SolveResult{Kind: kind, Solution: solution}, nil
}
