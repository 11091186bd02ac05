package predictor

import (
	"fmt"
	"io"
)

// ConfigureDump writes a human-readable summary of the predictor's class
// and table configuration to w, the Go analogue of the source's
// pred_config_stream idiom (see SPEC_FULL.md, original_source supplement).
func (p *Predictor) ConfigureDump(w io.Writer) {
	fmt.Fprintf(w, "predictor: %s\n", p.Class)
	for _, line := range p.impl.configLines() {
		fmt.Fprintf(w, "  %s\n", line)
	}
}

// Trace writes one instruction's trace line, followed by a class-dependent
// predictor line plus a table dump, to w (§6, §8). It is a no-op unless
// TraceEnabled is set; trace output is a separate sink from Lookup/Update
// and is never produced on the hot path unless the host asked for it. The
// predictor line and table dump are grounded directly on dpred.c's
// dpred_trace, which renders them as one continuous line per class (see
// each variant's traceDump).
func (p *Predictor) Trace(w io.Writer, pc uint64, predictedValue, trueValue uint64, res Result) {
	if !p.TraceEnabled {
		return
	}

	status := "no_pred_inst"
	if res.Predicting() {
		status = "pred_inst"
	}
	fmt.Fprintf(w, "0x%06x %s - %s\n", pc, p.Class, status)

	if res.Predicting() {
		tag := "CRT"
		if predictedValue != trueValue {
			tag = "INCRT"
		}
		fmt.Fprintf(w, "%s pDATA:%#x rDATA:%#x - ", tag, predictedValue, trueValue)
	} else {
		fmt.Fprintf(w, "NOT_PRED rDATA:%#x - ", trueValue)
	}

	fmt.Fprintf(w, "%s\n", p.impl.traceDump(pc, res))
}
