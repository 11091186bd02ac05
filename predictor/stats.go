package predictor

import (
	"fmt"
	"io"
)

// Stats holds every counter exposed by a Predictor (§4.6). Fields that a
// given Class never touches (e.g. L2Misses for Stride, which has no
// second table) simply stay zero.
type Stats struct {
	Lookups     uint64
	DataHits    uint64
	Misses      uint64
	NoHits      uint64
	NoMisses    uint64
	L1Misses    uint64
	L2Misses    uint64
	Alias       uint64
	AliasHits   uint64
	AliasMisses uint64
}

// recordOutcome applies the stats bookkeeping common to every class's
// Update (§4.2, "identical bookkeeping" is repeated verbatim for Stride,
// TwoLev, and Hybrid). Codes PredL1Miss, PredL2Miss, and PredIneligible are
// bookkeeping-neutral here (§7): they credit neither a hit nor a miss
// bucket, only (for codes 2/3) the table-specific miss counters each class's
// Update increments directly.
//
// The no_pred=1 branch's naming is inverted from what a reader would
// expect: a correct withhold increments NoMisses, an incorrect one
// increments NoHits. This is the source's behavior, preserved bit-exact
// per §9's open note rather than "fixed."
func recordOutcome(stats *Stats, res Result, correct bool) {
	switch res.NoPred {
	case PredOK:
		if correct {
			stats.DataHits++
		} else {
			stats.Misses++
		}
	case PredWithheld:
		if correct {
			stats.NoMisses++
		} else {
			stats.NoHits++
		}
	}
}

func safeDiv(num, den uint64) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

// TotalHitRate is data_hits/lookups.
func (s Stats) TotalHitRate() float64 { return safeDiv(s.DataHits, s.Lookups) }

// DataHitRate is data_hits/(data_hits+misses).
func (s Stats) DataHitRate() float64 { return safeDiv(s.DataHits, s.DataHits+s.Misses) }

// NoHitRate is no_hits/(no_hits+no_misses).
func (s Stats) NoHitRate() float64 { return safeDiv(s.NoHits, s.NoHits+s.NoMisses) }

// MissRate is the combined L1/L2 miss rate relative to all lookups.
func (s Stats) MissRate() float64 { return safeDiv(s.L1Misses+s.L2Misses, s.Lookups) }

// AliasRate is alias/(data_hits+misses).
func (s Stats) AliasRate() float64 { return safeDiv(s.Alias, s.DataHits+s.Misses) }

// AliasHitRate is alias_hits/(alias_hits+alias_misses).
func (s Stats) AliasHitRate() float64 { return safeDiv(s.AliasHits, s.AliasHits+s.AliasMisses) }

// StatsDump writes every raw counter and derived rate to w, one per line,
// the Go-idiomatic analogue of the source's stats-database registration
// at shutdown (§6, "Persisted state"): this package owns no database, the
// host does, so dumping to an io.Writer is the whole of this package's
// responsibility.
func (p *Predictor) StatsDump(w io.Writer) {
	s := p.Stats
	fmt.Fprintf(w, "%s.lookups      = %d\n", p.Class, s.Lookups)
	fmt.Fprintf(w, "%s.data_hits    = %d\n", p.Class, s.DataHits)
	fmt.Fprintf(w, "%s.misses       = %d\n", p.Class, s.Misses)
	fmt.Fprintf(w, "%s.no_hits      = %d\n", p.Class, s.NoHits)
	fmt.Fprintf(w, "%s.no_misses    = %d\n", p.Class, s.NoMisses)
	fmt.Fprintf(w, "%s.l1_misses    = %d\n", p.Class, s.L1Misses)
	fmt.Fprintf(w, "%s.l2_misses    = %d\n", p.Class, s.L2Misses)
	if p.Class == ClassTwoLev || p.Class == ClassHybrid {
		fmt.Fprintf(w, "%s.alias        = %d\n", p.Class, s.Alias)
		fmt.Fprintf(w, "%s.alias_hits   = %d\n", p.Class, s.AliasHits)
		fmt.Fprintf(w, "%s.alias_misses = %d\n", p.Class, s.AliasMisses)
	}
	fmt.Fprintf(w, "%s.total_hit_rate = %.4f\n", p.Class, s.TotalHitRate())
	fmt.Fprintf(w, "%s.data_hit_rate  = %.4f\n", p.Class, s.DataHitRate())
	fmt.Fprintf(w, "%s.no_hit_rate    = %.4f\n", p.Class, s.NoHitRate())
	fmt.Fprintf(w, "%s.miss_rate      = %.4f\n", p.Class, s.MissRate())
	if p.Class == ClassTwoLev || p.Class == ClassHybrid {
		fmt.Fprintf(w, "%s.alias_rate     = %.4f\n", p.Class, s.AliasRate())
		fmt.Fprintf(w, "%s.alias_hit_rate = %.4f\n", p.Class, s.AliasHitRate())
	}
}

// ResetStats zeroes every counter but leaves table contents untouched
// (§4.6), typically invoked once a warm-up phase has ended.
func (p *Predictor) ResetStats() {
	p.Stats = Stats{}
	p.log.Debug().Str("class", p.Class.String()).Msg("stats reset")
}
