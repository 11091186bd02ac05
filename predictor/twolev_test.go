package predictor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTwoLevForTest(t *testing.T, threshold uint8) *Predictor {
	t.Helper()
	p, err := Create(ClassTwoLev, Config{VHTSize: 4096, Threshold: threshold, PHTSize: 4096, Hist: 4, Xor: 0})
	require.NoError(t, err)
	return p
}

// §8 scenario 4 / PHT saturation law: once a VHT entry exists, feeding the
// same value on four consecutive hits drives its matched pht_val to
// exactly 12 (0 -> 3 -> 6 -> 9 -> 12); the fifth, differing value then
// evicts via the LRU victim and decays that counter by one.
func TestTwoLev_Scenario4_SaturationThenEviction(t *testing.T) {
	p := newTwoLevForTest(t, 3)
	const pc = 0x300

	install := p.Lookup(pc, OpIntCompute)
	require.Equal(t, PredL1Miss, install.NoPred)
	p.Update(pc, 5, install, false, OpIntCompute)

	for i := 0; i < 4; i++ {
		res := p.Lookup(pc, OpIntCompute)
		p.Update(pc, 5, res, res.Predicting() && res.PredictedValue == 5, OpIntCompute)
	}

	two := p.impl.(*twoLevPredictor)
	vht := two.vht
	entry := vht.entries[vht.Index(pc)]
	idx, _, max, _ := twoLevProbe(two.pht, two.cfg.Xor, pc, entry.Body.Vhp)
	require.Equal(t, uint8(12), max)

	res := p.Lookup(pc, OpIntCompute)
	require.Equal(t, PredOK, res.NoPred)
	require.Equal(t, uint64(5), res.PredictedValue)

	victim := entry.Body.LruInfo[0]
	p.Update(pc, 9, res, false, OpIntCompute)

	entry = vht.entries[vht.Index(pc)]
	phtEntry := two.pht.At(idx)
	assert.Equal(t, uint8(11), phtEntry.Body.PhtVal[0], "the matched slot decays by one on a miss")
	assert.Equal(t, uint64(9), entry.Body.Values[victim], "the LRU victim slot receives the new value")
}

// §8 scenario 6 / aliasing law: two PCs whose VHT entries hash to the
// same PHT slot (xor=0, both fresh so vhp=0) credit `alias` on the
// non-owning PC's predicting Lookup.
func TestTwoLev_Scenario6_AliasingAcrossPCs(t *testing.T) {
	p := newTwoLevForTest(t, 3)
	const pc1, pc2 = 0x500, 0x504

	p.Update(pc1, 1, Result{NoPred: PredL1Miss}, false, OpIntCompute)
	res := p.Lookup(pc1, OpIntCompute)
	p.Update(pc1, 1, res, true, OpIntCompute) // matched_index=0 hit, pht_val[0]=3 >= threshold

	res1 := p.Lookup(pc1, OpIntCompute)
	require.Equal(t, PredOK, res1.NoPred, "pc1 must now clear the threshold on its own PHT slot")

	p.Update(pc2, 99, Result{NoPred: PredL1Miss}, false, OpIntCompute)

	before := p.Stats.Alias
	res2 := p.Lookup(pc2, OpIntCompute)
	require.True(t, res2.Predicting(), "pc2 must alias into pc1's warmed PHT slot")
	assert.Equal(t, before+1, p.Stats.Alias)
}

func TestTwoLev_ArgmaxTieBreaksOnLowestIndex(t *testing.T) {
	idx, max := argmaxFirstWins([]uint8{4, 4, 1, 0})
	assert.Equal(t, 0, idx)
	assert.Equal(t, uint8(4), max)
}

func TestTwoLev_FreshPCMisses(t *testing.T) {
	p := newTwoLevForTest(t, 3)
	res := p.Lookup(0x700, OpLoad)
	assert.Equal(t, PredL1Miss, res.NoPred)
}

func TestTwoLev_LruInfoStaysAPermutation(t *testing.T) {
	p := newTwoLevForTest(t, 10) // high threshold: never predicts, stays on the eviction path
	const pc = 0x800

	p.Update(pc, 0, Result{NoPred: PredL1Miss}, false, OpIntCompute)
	for i := uint64(1); i <= 20; i++ {
		res := p.Lookup(pc, OpIntCompute)
		p.Update(pc, i, res, false, OpIntCompute)
	}

	two := p.impl.(*twoLevPredictor)
	entry := two.vht.entries[two.vht.Index(pc)]
	assert.True(t, isPermutation(entry.Body.LruInfo))
}
