package predictor

import "fmt"

// hybridVHTBody is the Hybrid VHT entry body: the TwoLev VHT fields plus a
// Stride sub-state that the same value history feeds (§3).
type hybridVHTBody struct {
	twoLevVHTBody
	State  strideState
	Stride int64
}

// hybridPredictor implements the Hybrid class: TwoLev plus a Stride
// fallback sharing the same VHT (§4.5).
type hybridPredictor struct {
	vht   *CacheTable[hybridVHTBody]
	pht   *CacheTable[phtBody]
	cfg   Config
	stats *Stats
}

func newHybridPredictor(cfg Config, stats *Stats) *hybridPredictor {
	return &hybridPredictor{
		vht:   NewCacheTable[hybridVHTBody](cfg.VHTSize),
		pht:   newPHTTable(cfg.PHTSize, cfg.Hist),
		cfg:   cfg,
		stats: stats,
	}
}

func (h *hybridPredictor) lookup(pc uint64, op Opcode) Result {
	res := Result{Tbl1Ref: h.vht.Index(pc)}

	vhtEntry, hit := h.vht.Lookup(pc)
	if !hit {
		res.NoPred = PredL1Miss
		return res
	}
	body := &vhtEntry.Body

	// §4.5 step 1: try the TwoLev arm first.
	idx, valueIdx, max, phtEntry := twoLevProbe(h.pht, h.cfg.Xor, pc, body.Vhp)
	res.Tbl2Ref = idx
	if max >= h.cfg.Threshold {
		res.PredictedValue = body.Values[valueIdx]
		res.NoPred = PredOK
		if phtEntry.Valid && phtEntry.Addr != pc {
			h.stats.Alias++
		}
		return res
	}

	// §4.5 step 2: Stride fallback.
	if body.State == strideSteady {
		mru := body.LruInfo[len(body.LruInfo)-1]
		res.PredictedValue = uint64(int64(body.Values[mru]) + body.Stride)
		res.NoPred = PredOK
		return res
	}

	res.NoPred = PredWithheld
	return res
}

func (h *hybridPredictor) update(pc uint64, data uint64, res Result, correct bool, op Opcode) {
	vhtEntry := h.vht.LruUpdate(pc)
	if !vhtEntry.Valid || vhtEntry.Addr != pc {
		h.stats.L1Misses++
		values := make([]uint64, h.cfg.Hist)
		values[0] = data
		vhtEntry.Addr = pc
		vhtEntry.Valid = true
		vhtEntry.Op = op
		vhtEntry.Body = hybridVHTBody{
			twoLevVHTBody: twoLevVHTBody{Values: values, LruInfo: identityLRU(h.cfg.Hist), Vhp: 0},
			State:         strideInit,
			Stride:        0,
		}
		return
	}

	body := &vhtEntry.Body

	// §4.5/§9: recompute, at update time, whether the TwoLev arm would
	// have engaged — nothing mutates the tables between a Lookup and its
	// matching Update (§5), so this reproduces exactly what Lookup saw,
	// and lets alias accounting exclude predictions the Stride arm made.
	_, _, max, _ := twoLevProbe(h.pht, h.cfg.Xor, pc, body.Vhp)
	twoLevArmEngaged := max >= h.cfg.Threshold

	twoLevUpdateHit(h.stats, h.pht, h.cfg.Xor, h.cfg.Hist, pc, data, &body.twoLevVHTBody, twoLevArmEngaged && res.NoPred == PredOK, correct)

	h.evolveStride(body, data)
}

// evolveStride runs the Stride DFA (§4.3's table) for the Hybrid arm.
// Hybrid has no VHT field of its own to hold "the last value seen": the
// TwoLev update above already installed data into the shared values
// table and advanced lru_info, and the value in slot lru_info[hist-2]
// stands in for Stride's value field (§4.5, §9 open note). That slot is
// the MRU from before this sample arrived only when data landed in a
// different slot; when data matched the value already in the MRU slot,
// lru_info is unchanged and lru_info[hist-2] names the next most recent
// slot instead.
func (h *hybridPredictor) evolveStride(body *hybridVHTBody, data uint64) {
	prevValue := body.Values[body.LruInfo[len(body.LruInfo)-2]]
	newStride := int64(data) - int64(prevValue)

	switch body.State {
	case strideInit:
		body.State = strideTransient
		body.Stride = 0
	case strideTransient:
		if newStride == body.Stride {
			body.State = strideSteady
		} else {
			body.Stride = newStride
		}
	case strideSteady:
		if newStride != body.Stride {
			body.State = strideTransient
			body.Stride = newStride
		}
	}
}

func (h *hybridPredictor) configLines() []string {
	return []string{
		fmt.Sprintf("vht_size=%d hist=%d xor=%d", h.vht.Sets(), h.cfg.Hist, h.cfg.Xor),
		fmt.Sprintf("pht_size=%d threshold=%d", h.pht.Sets(), h.cfg.Threshold),
	}
}

// traceDump renders the stride sub-state ahead of the TwoLev value
// history/PHT dump twoLevTraceDump already produces, grounded directly on
// dpred.c's DPredHybrid trace case (which prints the stride state before
// falling through to the same value-history/PHT dump as DPred2Level).
func (h *hybridPredictor) traceDump(pc uint64, res Result) string {
	if res.NoPred == PredL1Miss {
		return "VHT MISS "
	}
	entry := h.vht.At(res.Tbl1Ref)
	prefix := fmt.Sprintf("%s ", entry.Body.State)
	return prefix + twoLevTraceDump(h.pht, h.cfg.Xor, h.cfg.Hist, pc, res, &entry.Body.twoLevVHTBody)
}
