package plugin

import (
	"context"
	"net/rpc"
	"time"

	"github.com/meridianhire/panelsched/internal/scheduling/infrastructure/cpsolver"
)

// rpcFactory is the host-side cpsolver.Factory backed by a plugin binary
// reached over rpc.Client. Dispense("cpsolver") on the go-plugin client
// returns one of these per CPSolverPlugin.Client call.
type rpcFactory struct {
	client *rpc.Client
}

func (f *rpcFactory) NewModel() cpsolver.Model {
	var reply newModelReply
	// NewModel resets the server's model; errors here would only ever be a
	// dead connection, which every subsequent call surfaces anyway.
	_ = f.client.Call("ModelServer.NewModel", newModelArgs{}, &reply)
	return &rpcModel{client: f.client}
}

// rpcModel is the host-side cpsolver.Model: every method is a single
// net/rpc round trip to the plugin binary's ModelServer.
type rpcModel struct {
	client *rpc.Client
}

func (m *rpcModel) NewIntVar(d cpsolver.Domain) cpsolver.IntVar {
	var reply newIntVarReply
	m.call("ModelServer.NewIntVar", newIntVarArgs{Domain: d}, &reply)
	return reply.Var
}

func (m *rpcModel) NewBoolVar() cpsolver.BoolVar {
	var reply newBoolVarReply
	m.call("ModelServer.NewBoolVar", newBoolVarArgs{}, &reply)
	return reply.Var
}

func (m *rpcModel) NewConstant(value int64) cpsolver.IntVar {
	var reply newConstantReply
	m.call("ModelServer.NewConstant", newConstantArgs{Value: value}, &reply)
	return reply.Var
}

func (m *rpcModel) NewInterval(start, duration, end cpsolver.IntVar) cpsolver.IntervalVar {
	var reply newIntervalReply
	m.call("ModelServer.NewInterval", newIntervalArgs{Start: start, Duration: duration, End: end}, &reply)
	return reply.Interval
}

func (m *rpcModel) NewFixedInterval(startOffset, size int64) cpsolver.IntervalVar {
	var reply newFixedIntervalReply
	m.call("ModelServer.NewFixedInterval", newFixedIntervalArgs{StartOffset: startOffset, Size: size}, &reply)
	return reply.Interval
}

func (m *rpcModel) NewOptionalInterval(start, duration, end cpsolver.IntVar, presence cpsolver.BoolVar) cpsolver.IntervalVar {
	var reply newOptionalIntervalReply
	m.call("ModelServer.NewOptionalInterval", newOptionalIntervalArgs{
		Start: start, Duration: duration, End: end, Presence: presence,
	}, &reply)
	return reply.Interval
}

func (m *rpcModel) AddNoOverlap(intervals ...cpsolver.IntervalVar) {
	var reply addNoOverlapReply
	m.call("ModelServer.AddNoOverlap", addNoOverlapArgs{Intervals: intervals}, &reply)
}

func (m *rpcModel) AddLinearEquality(terms []cpsolver.LinearTerm, offset int64) cpsolver.ConstraintRef {
	var reply addLinearReply
	m.call("ModelServer.AddLinearEquality", addLinearArgs{Terms: terms, Offset: offset}, &reply)
	return reply.Ref
}

func (m *rpcModel) AddLinearLessOrEqual(terms []cpsolver.LinearTerm, offset int64) cpsolver.ConstraintRef {
	var reply addLinearReply
	m.call("ModelServer.AddLinearLessOrEqual", addLinearArgs{Terms: terms, Offset: offset}, &reply)
	return reply.Ref
}

func (m *rpcModel) AddBoolOr(lits ...cpsolver.BoolVar) cpsolver.ConstraintRef {
	var reply addBoolOrReply
	m.call("ModelServer.AddBoolOr", addBoolOrArgs{Lits: lits}, &reply)
	return reply.Ref
}

func (m *rpcModel) AddImplication(a, b cpsolver.BoolVar) cpsolver.ConstraintRef {
	var reply addImplicationReply
	m.call("ModelServer.AddImplication", addImplicationArgs{A: a, B: b}, &reply)
	return reply.Ref
}

func (m *rpcModel) AddEquality(a, b cpsolver.IntVar) cpsolver.ConstraintRef {
	var reply addPairReply
	m.call("ModelServer.AddEquality", addPairArgs{A: a, B: b}, &reply)
	return reply.Ref
}

func (m *rpcModel) AddLessOrEqual(a, b cpsolver.IntVar) cpsolver.ConstraintRef {
	var reply addPairReply
	m.call("ModelServer.AddLessOrEqual", addPairArgs{A: a, B: b}, &reply)
	return reply.Ref
}

func (m *rpcModel) AddLessThan(a, b cpsolver.IntVar) cpsolver.ConstraintRef {
	var reply addPairReply
	m.call("ModelServer.AddLessThan", addPairArgs{A: a, B: b}, &reply)
	return reply.Ref
}

func (m *rpcModel) OnlyEnforceIf(ref cpsolver.ConstraintRef, lits ...cpsolver.BoolVar) {
	var reply onlyEnforceIfReply
	m.call("ModelServer.OnlyEnforceIf", onlyEnforceIfArgs{Ref: ref, Lits: lits}, &reply)
}

func (m *rpcModel) AsIntVar(lit cpsolver.BoolVar) cpsolver.IntVar {
	var reply asIntVarReply
	m.call("ModelServer.AsIntVar", asIntVarArgs{Lit: lit}, &reply)
	return reply.Var
}

func (m *rpcModel) Minimize(terms []cpsolver.LinearTerm) {
	var reply minimizeReply
	m.call("ModelServer.Minimize", minimizeArgs{Terms: terms}, &reply)
}

// Solve honors ctx cancellation by racing the RPC against ctx.Done, even
// though the underlying net/rpc call itself can't be interrupted mid-flight
// — the plugin process is killed by the Loader's Closer on shutdown, which
// is the same guarantee go-plugin's own clients rely on.
func (m *rpcModel) Solve(ctx context.Context, params cpsolver.SolveParams) (*cpsolver.Result, error) {
	call := m.client.Go("ModelServer.Solve", solveArgs{Params: params}, &solveReply{}, make(chan *rpc.Call, 1))

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case done := <-call.Done:
		if done.Error != nil {
			return nil, done.Error
		}
		reply := done.Reply.(*solveReply)
		elapsed := time.Duration(reply.ElapsedNanos)
		result := cpsolver.NewResult(reply.Status, reply.ObjectiveValue, elapsed)
		for v, val := range reply.IntValues {
			result.SetIntValue(v, val)
		}
		for v, val := range reply.BoolValues {
			result.SetBoolValue(v, val)
		}
		return result, nil
	}
}

func (m *rpcModel) call(method string, args, reply interface{}) {
	// A transport error here means the plugin process died; the caller
	// finds out for certain at Solve, whose error return is checked.
	_ = m.client.Call(method, args, reply)
}
