package predictor

import (
	"fmt"
	"strings"
)

// twoLevVHTBody is the TwoLev (and, embedded, Hybrid) Value History Table
// entry body: the hist most-recently-seen values, their LRU order
// (lru_info[hist-1] is the MRU), and the value-history pattern used to
// index the PHT (§3).
type twoLevVHTBody struct {
	Values  []uint64
	LruInfo []uint32
	Vhp     uint64
}

// phtBody is the Pattern History Table entry body: hist small saturating
// counters, one per VHT value slot (§3).
type phtBody struct {
	PhtVal []uint8
}

func newPHTTable(size uint32, hist uint32) *CacheTable[phtBody] {
	pht := NewCacheTable[phtBody](size)
	for i := range pht.entries {
		pht.entries[i].Body.PhtVal = make([]uint8, hist)
	}
	return pht
}

// phtIndex derives the PHT index from the VHT's value-history pattern,
// optionally XORed with low PC bits (§4.4, "Index derivation").
func phtIndex(daddr uint64, vhp uint64, xor uint32, phtSize uint32) uint32 {
	if xor == 0 {
		return uint32(vhp) & (phtSize - 1)
	}
	pctemp := daddr & ((uint64(1) << xor) - 1)
	return uint32(vhp^pctemp) & (phtSize - 1)
}

// twoLevProbe is the read-only half of §4.4: pick the PHT-indexed argmax
// value slot and report whether it clears threshold. It is shared,
// unmodified, by TwoLev's own lookup and by Hybrid's first lookup arm
// (§4.5 step 1).
func twoLevProbe(pht *CacheTable[phtBody], xor uint32, pc uint64, vhp uint64) (idx uint32, valueIdx int, max uint8, entry *Entry[phtBody]) {
	idx = phtIndex(pc, vhp, xor, pht.Sets())
	entry = pht.At(idx)
	valueIdx, max = argmaxFirstWins(entry.Body.PhtVal)
	return idx, valueIdx, max, entry
}

// twoLevUpdateHit performs §4.4 steps 1-5 against an already tag-matched
// VHT entry body. It is shared, unmodified, by TwoLev's own update and by
// Hybrid's update (§4.5, "perform the TwoLev update in full"), which calls
// it against the embedded twoLevVHTBody of its own entry.
func twoLevUpdateHit(stats *Stats, pht *CacheTable[phtBody], xor uint32, hist uint32, pc uint64, data uint64, body *twoLevVHTBody, creditAlias bool, correct bool) {
	_, _, _, phtEntry := twoLevProbe(pht, xor, pc, body.Vhp)

	matchedIndex := findValue(body.Values, data)

	// step 2: asymmetric counter update across every slot.
	for j := range phtEntry.Body.PhtVal {
		phtEntry.Body.PhtVal[j] = phtBump(phtEntry.Body.PhtVal[j], j == matchedIndex)
	}

	// step 3: aliasing accounting, only for a prior predicting lookup that
	// the TwoLev arm actually produced (the caller decides this: for plain
	// TwoLev every PredOK result came from this arm; for Hybrid it must
	// exclude the Stride-fallback arm, §4.5).
	if creditAlias && phtEntry.Valid && phtEntry.Addr != pc {
		if correct {
			stats.AliasHits++
		} else {
			stats.AliasMisses++
		}
	}

	hn := histNum(hist)
	mask := (uint64(1) << hn) - 1

	if matchedIndex < len(body.Values) {
		// step 4: value present.
		promoteToMRU(body.LruInfo, uint32(matchedIndex))
		body.Vhp = (body.Vhp << hn) | (uint64(matchedIndex) & mask)
		if correct {
			phtEntry.Addr = pc
			phtEntry.Valid = true
		}
		return
	}

	// step 5: value absent, evict the LRU slot.
	v := body.LruInfo[0]
	body.Values[v] = data
	promoteToMRU(body.LruInfo, v)
	body.Vhp = (body.Vhp << hn) | (uint64(v) & mask)
	phtEntry.Body.PhtVal[v] = 0
}

// twoLevPredictor implements the TwoLev class: index a pattern table by a
// value-history pattern to pick one of several recently seen values
// (§4.4).
type twoLevPredictor struct {
	vht   *CacheTable[twoLevVHTBody]
	pht   *CacheTable[phtBody]
	cfg   Config
	stats *Stats
}

func newTwoLevPredictor(cfg Config, stats *Stats) *twoLevPredictor {
	return &twoLevPredictor{
		vht:   NewCacheTable[twoLevVHTBody](cfg.VHTSize),
		pht:   newPHTTable(cfg.PHTSize, cfg.Hist),
		cfg:   cfg,
		stats: stats,
	}
}

func (t *twoLevPredictor) lookup(pc uint64, op Opcode) Result {
	res := Result{Tbl1Ref: t.vht.Index(pc)}

	vhtEntry, hit := t.vht.Lookup(pc)
	if !hit {
		res.NoPred = PredL1Miss
		return res
	}

	idx, valueIdx, max, phtEntry := twoLevProbe(t.pht, t.cfg.Xor, pc, vhtEntry.Body.Vhp)
	res.Tbl2Ref = idx

	if max >= t.cfg.Threshold {
		res.PredictedValue = vhtEntry.Body.Values[valueIdx]
		res.NoPred = PredOK
		if phtEntry.Valid && phtEntry.Addr != pc {
			t.stats.Alias++
		}
		return res
	}

	res.NoPred = PredWithheld
	return res
}

func (t *twoLevPredictor) update(pc uint64, data uint64, res Result, correct bool, op Opcode) {
	vhtEntry := t.vht.LruUpdate(pc)
	if !vhtEntry.Valid || vhtEntry.Addr != pc {
		// §4.4 step 6: VHT tag-miss.
		t.stats.L1Misses++
		values := make([]uint64, t.cfg.Hist)
		values[0] = data
		vhtEntry.Addr = pc
		vhtEntry.Valid = true
		vhtEntry.Op = op
		vhtEntry.Body = twoLevVHTBody{Values: values, LruInfo: identityLRU(t.cfg.Hist), Vhp: 0}
		return
	}

	twoLevUpdateHit(t.stats, t.pht, t.cfg.Xor, t.cfg.Hist, pc, data, &vhtEntry.Body, res.NoPred == PredOK, correct)
}

func (t *twoLevPredictor) configLines() []string {
	return []string{
		fmt.Sprintf("vht_size=%d hist=%d xor=%d", t.vht.Sets(), t.cfg.Hist, t.cfg.Xor),
		fmt.Sprintf("pht_size=%d threshold=%d", t.pht.Sets(), t.cfg.Threshold),
	}
}

// traceDump renders the value history, VHP-derived index, and PHT counters
// dpred_trace prints for this class (plus an ALIAS(addr) marker when the
// matched PHT slot belongs to a different PC), grounded directly on
// dpred.c's DPred2Level trace case. It is shared, unmodified, by Hybrid's
// traceDump against its own embedded twoLevVHTBody, same as twoLevProbe and
// twoLevUpdateHit above.
func twoLevTraceDump(pht *CacheTable[phtBody], xor uint32, hist uint32, pc uint64, res Result, body *twoLevVHTBody) string {
	if res.NoPred == PredL1Miss {
		return "VHT MISS "
	}

	var sb strings.Builder
	for i := uint32(0); i < hist; i++ {
		fmt.Fprintf(&sb, "%d ", body.Values[i])
	}

	rawIdx := phtIndex(pc, body.Vhp, 0, pht.Sets())
	fmt.Fprintf(&sb, "vhp:%x - ", rawIdx)

	if xor != 0 {
		xorIdx := phtIndex(pc, body.Vhp, xor, pht.Sets())
		fmt.Fprintf(&sb, "vhp^pc: %x - ", xorIdx)
	}

	phtEntry := pht.At(res.Tbl2Ref)
	if res.NoPred == PredOK && phtEntry.Valid && phtEntry.Addr != pc {
		fmt.Fprintf(&sb, "ALIAS(%x) ", phtEntry.Addr)
	}
	for _, c := range phtEntry.Body.PhtVal {
		fmt.Fprintf(&sb, "%d ", c)
	}
	return sb.String()
}

func (t *twoLevPredictor) traceDump(pc uint64, res Result) string {
	entry := t.vht.At(res.Tbl1Ref)
	return twoLevTraceDump(t.pht, t.cfg.Xor, t.cfg.Hist, pc, res, &entry.Body)
}
