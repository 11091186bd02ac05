// Package predictor implements the data value prediction engine: given the
// PC of an integer-register-writing instruction, it predicts the value that
// instruction will produce, and is later told the true value so its tables
// can evolve. Four variants share the same cache-table substrate but differ
// in their lookup/update state machines: Last, Stride, TwoLev, and Hybrid.
package predictor

import "fmt"

// Class identifies which predictor variant a Predictor instance runs.
type Class uint8

const (
	ClassLast Class = iota
	ClassStride
	ClassTwoLev
	ClassHybrid
)

func (c Class) String() string {
	switch c {
	case ClassLast:
		return "last"
	case ClassStride:
		return "stride"
	case ClassTwoLev:
		return "2lev"
	case ClassHybrid:
		return "hybrid"
	default:
		return fmt.Sprintf("class(%d)", uint8(c))
	}
}

// Opcode is the host's classification of an instruction, used only to
// determine predictor eligibility. Decoding the instruction itself is out
// of scope (§1); this is the external collaborator's output, not this
// package's concern.
type Opcode uint8

const (
	// OpIntCompute is an integer ALU instruction that writes a register.
	OpIntCompute Opcode = iota
	// OpLoad is a (non-long-latency) memory load that writes a register.
	OpLoad
	// OpLongLatency is an integer-writing instruction excluded by the
	// eligibility predicate because of its latency (e.g. integer divide).
	OpLongLatency
	// OpOther is any instruction that does not write an integer register
	// (branches, stores, syscalls, floating point, ...).
	OpOther
)

// Eligible reports whether the engine should be consulted for this
// instruction. Per §6: "the predictor acts only when the instruction op is
// an integer-compute or load and not a long-latency op."
func (o Opcode) Eligible() bool {
	return o == OpIntCompute || o == OpLoad
}

// NoPredCode classifies why a Lookup did or did not produce a usable
// prediction.
type NoPredCode uint8

const (
	// PredOK means a prediction was emitted with full confidence.
	PredOK NoPredCode = 0
	// PredWithheld means a value was computed but confidence was too low
	// to call it a prediction (the value is still returned for trace).
	PredWithheld NoPredCode = 1
	// PredL1Miss means the first table (CT/VHT) missed.
	PredL1Miss NoPredCode = 2
	// PredL2Miss means the second table (VPT) missed.
	PredL2Miss NoPredCode = 3
	// PredIneligible means the instruction's opcode is not one the
	// engine acts on; it is never counted toward Lookups.
	PredIneligible NoPredCode = 4
)

// Result is the outcome of a Lookup.
type Result struct {
	PredictedValue uint64
	NoPred         NoPredCode
	// Tbl1Ref/Tbl2Ref are also re-used by Trace to re-fetch the looked-up
	// entries for the per-class table dump (see each variant's traceDump).
	Tbl1Ref uint32 // index probed in the first table (CT/VHT)
	Tbl2Ref uint32 // index probed in the second table (VPT/PHT), 0 if n/a
}

// Predicting reports whether Result carries a value worth comparing against
// the eventual true value (no_pred 0 or 1 both carry a value; 2/3/4 do not).
func (r Result) Predicting() bool {
	return r.NoPred == PredOK || r.NoPred == PredWithheld
}
