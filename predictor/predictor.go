package predictor

import (
	"fmt"

	"github.com/rs/zerolog"
)

// variant is implemented by each of the four class-specific engines. The
// source expresses per-class entry bodies and behavior as nested
// discriminated-free unions (§9); this interface is the Go rendition of
// the explicit discriminator that design calls for: Predictor.Class says
// which concrete variant is in play, and variant is never asked to do
// anything the wrong class could satisfy.
type variant interface {
	lookup(pc uint64, op Opcode) Result
	update(pc uint64, trueValue uint64, res Result, correct bool, op Opcode)
	configLines() []string
	traceDump(pc uint64, res Result) string
}

// Predictor is one instance of the value prediction engine: a class tag,
// its owned tables, and its statistics. It is not safe for concurrent use
// (§5): the host is expected to call Lookup then Update, to completion,
// once per eligible instruction, before issuing the next.
type Predictor struct {
	Class        Class
	Stats        Stats
	TraceEnabled bool

	cfg  Config
	impl variant
	log  zerolog.Logger
}

// Create validates cfg for class and allocates every table the class
// needs. A configuration error (non-power-of-two size, zero size,
// unsupported hist/xor/counter) is fatal at construction (§7); the Go
// rendition of "aborts with a descriptive message" is a returned error.
func Create(class Class, cfg Config) (*Predictor, error) {
	if err := cfg.Validate(class); err != nil {
		log := defaultLogger()
		log.Error().Err(err).Str("class", class.String()).Msg("predictor configuration rejected")
		return nil, err
	}

	p := &Predictor{
		Class: class,
		cfg:   cfg,
		log:   defaultLogger(),
	}

	switch class {
	case ClassLast:
		p.impl = newLastPredictor(cfg, &p.Stats)
	case ClassStride:
		p.impl = newStridePredictor(cfg, &p.Stats)
	case ClassTwoLev:
		p.impl = newTwoLevPredictor(cfg, &p.Stats)
	case ClassHybrid:
		p.impl = newHybridPredictor(cfg, &p.Stats)
	default:
		return nil, fmt.Errorf("vpred: unknown predictor class %d", uint8(class))
	}

	p.log.Info().Str("class", class.String()).Msg("predictor created")
	return p, nil
}

// Lookup predicts the value PC's next execution will write, per §6. An
// ineligible opcode returns NoPred=PredIneligible immediately and is not
// counted toward Stats.Lookups (§6, eligibility predicate).
func (p *Predictor) Lookup(pc uint64, op Opcode) Result {
	if !op.Eligible() {
		return Result{NoPred: PredIneligible}
	}
	p.Stats.Lookups++
	return p.impl.lookup(pc, op)
}

// Update tells the engine the true value PC's instruction produced,
// following the Result from the matching Lookup call and whether that
// Result's predicted value equals trueValue. It mutates tables per §4 and
// updates Stats. An ineligible opcode is a no-op: nothing was looked up
// for it, so nothing should be learned from it.
func (p *Predictor) Update(pc uint64, trueValue uint64, res Result, correct bool, op Opcode) {
	if !op.Eligible() {
		return
	}
	recordOutcome(&p.Stats, res, correct)
	p.impl.update(pc, trueValue, res, correct, op)
}
