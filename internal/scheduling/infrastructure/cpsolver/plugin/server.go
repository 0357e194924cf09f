package plugin

import (
	"context"
	"fmt"
	"sync"

	"github.com/meridianhire/panelsched/internal/scheduling/infrastructure/cpsolver"
)

// ModelServer is the net/rpc service a plugin binary exposes: it holds one
// live cpsolver.Model at a time, forwarding every call the host makes
// straight through to the real backend (ortoolscp, or any other
// cpsolver.Model implementation the plugin binary links in). It also
// remembers every IntVar/BoolVar handle it has ever issued, because
// cpsolver.Result only supports querying a value you already hold a handle
// for — Solve replies with every remembered handle's solved value so the
// host can build a complete *cpsolver.Result locally without a second
// round-trip per variable.
type ModelServer struct {
	factory cpsolver.Factory

	mu       sync.Mutex
	model    cpsolver.Model
	intVars  []cpsolver.IntVar
	boolVars []cpsolver.BoolVar
}

// NewModelServer wraps factory for RPC serving. The plugin binary's main
// supplies the concrete backend, e.g. ortoolscp.NewFactory().
func NewModelServer(factory cpsolver.Factory) *ModelServer {
	return &ModelServer{factory: factory}
}

func (s *ModelServer) requireModel() (cpsolver.Model, error) {
	if s.model == nil {
		return nil, fmt.Errorf("plugin: NewModel must be called before any other RPC")
	}
	return s.model, nil
}

// NewModel resets the server to a fresh model, mirroring
// cpsolver.Factory.NewModel's "one Model per solve attempt" contract.
func (s *ModelServer) NewModel(args newModelArgs, reply *newModelReply) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.model = s.factory.NewModel()
	s.intVars = nil
	s.boolVars = nil
	return nil
}

func (s *ModelServer) NewIntVar(args newIntVarArgs, reply *newIntVarReply) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := s.requireModel()
	if err != nil {
		return err
	}
	v := m.NewIntVar(args.Domain)
	s.intVars = append(s.intVars, v)
	reply.Var = v
	return nil
}

func (s *ModelServer) NewBoolVar(args newBoolVarArgs, reply *newBoolVarReply) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := s.requireModel()
	if err != nil {
		return err
	}
	v := m.NewBoolVar()
	s.boolVars = append(s.boolVars, v)
	reply.Var = v
	return nil
}

func (s *ModelServer) NewConstant(args newConstantArgs, reply *newConstantReply) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := s.requireModel()
	if err != nil {
		return err
	}
	v := m.NewConstant(args.Value)
	s.intVars = append(s.intVars, v)
	reply.Var = v
	return nil
}

func (s *ModelServer) NewInterval(args newIntervalArgs, reply *newIntervalReply) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := s.requireModel()
	if err != nil {
		return err
	}
	reply.Interval = m.NewInterval(args.Start, args.Duration, args.End)
	return nil
}

func (s *ModelServer) NewFixedInterval(args newFixedIntervalArgs, reply *newFixedIntervalReply) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := s.requireModel()
	if err != nil {
		return err
	}
	reply.Interval = m.NewFixedInterval(args.StartOffset, args.Size)
	return nil
}

func (s *ModelServer) NewOptionalInterval(args newOptionalIntervalArgs, reply *newOptionalIntervalReply) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := s.requireModel()
	if err != nil {
		return err
	}
	reply.Interval = m.NewOptionalInterval(args.Start, args.Duration, args.End, args.Presence)
	return nil
}

func (s *ModelServer) AddNoOverlap(args addNoOverlapArgs, reply *addNoOverlapReply) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := s.requireModel()
	if err != nil {
		return err
	}
	m.AddNoOverlap(args.Intervals...)
	return nil
}

func (s *ModelServer) AddLinearEquality(args addLinearArgs, reply *addLinearReply) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := s.requireModel()
	if err != nil {
		return err
	}
	reply.Ref = m.AddLinearEquality(args.Terms, args.Offset)
	return nil
}

func (s *ModelServer) AddLinearLessOrEqual(args addLinearArgs, reply *addLinearReply) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := s.requireModel()
	if err != nil {
		return err
	}
	reply.Ref = m.AddLinearLessOrEqual(args.Terms, args.Offset)
	return nil
}

func (s *ModelServer) AddBoolOr(args addBoolOrArgs, reply *addBoolOrReply) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := s.requireModel()
	if err != nil {
		return err
	}
	reply.Ref = m.AddBoolOr(args.Lits...)
	return nil
}

func (s *ModelServer) AddImplication(args addImplicationArgs, reply *addImplicationReply) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := s.requireModel()
	if err != nil {
		return err
	}
	reply.Ref = m.AddImplication(args.A, args.B)
	return nil
}

func (s *ModelServer) AddEquality(args addPairArgs, reply *addPairReply) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := s.requireModel()
	if err != nil {
		return err
	}
	reply.Ref = m.AddEquality(args.A, args.B)
	return nil
}

func (s *ModelServer) AddLessOrEqual(args addPairArgs, reply *addPairReply) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := s.requireModel()
	if err != nil {
		return err
	}
	reply.Ref = m.AddLessOrEqual(args.A, args.B)
	return nil
}

func (s *ModelServer) AddLessThan(args addPairArgs, reply *addPairReply) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := s.requireModel()
	if err != nil {
		return err
	}
	reply.Ref = m.AddLessThan(args.A, args.B)
	return nil
}

func (s *ModelServer) OnlyEnforceIf(args onlyEnforceIfArgs, reply *onlyEnforceIfReply) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := s.requireModel()
	if err != nil {
		return err
	}
	m.OnlyEnforceIf(args.Ref, args.Lits...)
	return nil
}

func (s *ModelServer) AsIntVar(args asIntVarArgs, reply *asIntVarReply) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := s.requireModel()
	if err != nil {
		return err
	}
	v := m.AsIntVar(args.Lit)
	s.intVars = append(s.intVars, v)
	reply.Var = v
	return nil
}

func (s *ModelServer) Minimize(args minimizeArgs, reply *minimizeReply) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := s.requireModel()
	if err != nil {
		return err
	}
	m.Minimize(args.Terms)
	return nil
}

// Solve runs the wrapped model to completion and replies with every
// variable handle ever issued on this model, so the host-side client can
// reconstruct a complete *cpsolver.Result without further round-trips.
func (s *ModelServer) Solve(args solveArgs, reply *solveReply) error {
	s.mu.Lock()
	m, err := s.requireModel()
	intVars := append([]cpsolver.IntVar(nil), s.intVars...)
	boolVars := append([]cpsolver.BoolVar(nil), s.boolVars...)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	result, err := m.Solve(context.Background(), args.Params)
	if err != nil {
		return err
	}

	reply.Status = result.Status
	reply.ObjectiveValue = result.ObjectiveValue
	reply.ElapsedNanos = result.Elapsed.Nanoseconds()
	reply.IntValues = make(map[cpsolver.IntVar]int64, len(intVars))
	for _, v := range intVars {
		reply.IntValues[v] = result.IntValue(v)
	}
	reply.BoolValues = make(map[cpsolver.BoolVar]bool, len(boolVars))
	for _, v := range boolVars {
		reply.BoolValues[v] = result.BoolValue(v)
	}
	return nil
}
