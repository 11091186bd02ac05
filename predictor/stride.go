package predictor

import "fmt"

// strideState is the three-state DFA capturing how stable the inter-sample
// stride has been at a given PC (§4.3, Glossary).
type strideState uint8

const (
	strideInit strideState = iota
	strideTransient
	strideSteady
)

func (s strideState) String() string {
	switch s {
	case strideInit:
		return "Init"
	case strideTransient:
		return "Transient"
	case strideSteady:
		return "Steady"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// strideVHTBody is the Stride VHT entry body: the DFA state, the last
// observed value, and the current stride (§3).
type strideVHTBody struct {
	State  strideState
	Value  uint64
	Stride int64
}

// stridePredictor implements the Stride class: predict last+stride once
// the stride has stabilized (§4.3).
type stridePredictor struct {
	vht   *CacheTable[strideVHTBody]
	stats *Stats
}

func newStridePredictor(cfg Config, stats *Stats) *stridePredictor {
	return &stridePredictor{
		vht:   NewCacheTable[strideVHTBody](cfg.VHTSize),
		stats: stats,
	}
}

func (s *stridePredictor) lookup(pc uint64, op Opcode) Result {
	res := Result{Tbl1Ref: s.vht.Index(pc)}

	entry, hit := s.vht.Lookup(pc)
	if !hit {
		res.NoPred = PredL1Miss
		return res
	}

	res.PredictedValue = uint64(int64(entry.Body.Value) + entry.Body.Stride)
	if entry.Body.State == strideSteady {
		res.NoPred = PredOK
	} else {
		res.NoPred = PredWithheld
	}
	return res
}

func (s *stridePredictor) update(pc uint64, data uint64, res Result, correct bool, op Opcode) {
	entry := s.vht.LruUpdate(pc)
	if !entry.Valid || entry.Addr != pc {
		s.stats.L1Misses++
		entry.Addr = pc
		entry.Valid = true
		entry.Op = op
		entry.Body = strideVHTBody{State: strideInit, Value: data, Stride: 0}
		return
	}

	body := &entry.Body
	newStride := int64(data) - int64(body.Value)

	// DFA transitions, §4.3:
	//   Init:      (first sample)      -> Transient, value=data, stride=0
	//   Transient: same stride         -> Steady,    value=data
	//              different stride    -> Transient, value=data, stride=newStride
	//   Steady:    same stride         -> Steady,    value=data
	//              different stride    -> Transient, value=data, stride=newStride
	switch body.State {
	case strideInit:
		body.State = strideTransient
		body.Value = data
		body.Stride = 0
	case strideTransient:
		body.Value = data
		if newStride == body.Stride {
			body.State = strideSteady
		} else {
			body.Stride = newStride
		}
	case strideSteady:
		body.Value = data
		if newStride != body.Stride {
			body.State = strideTransient
			body.Stride = newStride
		}
	}
}

func (s *stridePredictor) configLines() []string {
	return []string{fmt.Sprintf("vht_size=%d", s.vht.Sets())}
}

// traceDump renders the VHT state/stride fields dpred_trace prints for this
// class, grounded directly on dpred.c's DPredStride trace case.
func (s *stridePredictor) traceDump(pc uint64, res Result) string {
	if res.NoPred == PredL1Miss {
		return "VHT MISS "
	}
	entry := s.vht.At(res.Tbl1Ref)
	return fmt.Sprintf("state: %s stride: %d ", entry.Body.State, entry.Body.Stride)
}
