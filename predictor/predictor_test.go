package predictor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreate_RejectsInvalidConfig(t *testing.T) {
	_, err := Create(ClassLast, Config{CTSize: 100, CounterSize: 2, VPTSize: 4096, Hist: 1})
	assert.Error(t, err)

	_, err = Create(ClassTwoLev, Config{VHTSize: 4096, Threshold: 0, PHTSize: 4096, Hist: 4})
	assert.Error(t, err)
}

func TestCreate_OneInstancePerClass(t *testing.T) {
	for _, tt := range []struct {
		class Class
		cfg   Config
	}{
		{ClassLast, Config{CTSize: 1024, CounterSize: 2, VPTSize: 4096, Hist: 1}},
		{ClassStride, Config{VHTSize: 4096}},
		{ClassTwoLev, Config{VHTSize: 4096, Threshold: 3, PHTSize: 4096, Hist: 4}},
		{ClassHybrid, Config{VHTSize: 4096, Threshold: 6, PHTSize: 4096, Hist: 4}},
	} {
		p, err := Create(tt.class, tt.cfg)
		require.NoError(t, err)
		assert.Equal(t, tt.class, p.Class)
	}
}

func TestLookup_IneligibleOpcodeReturnsWithoutCountingLookups(t *testing.T) {
	p, err := Create(ClassStride, Config{VHTSize: 4096})
	require.NoError(t, err)

	for _, op := range []Opcode{OpLongLatency, OpOther} {
		res := p.Lookup(0x100, op)
		assert.Equal(t, PredIneligible, res.NoPred)
	}
	assert.Equal(t, uint64(0), p.Stats.Lookups)
}

func TestLookup_EligibleOpcodesCountTowardLookups(t *testing.T) {
	p, err := Create(ClassStride, Config{VHTSize: 4096})
	require.NoError(t, err)

	p.Lookup(0x100, OpIntCompute)
	p.Lookup(0x104, OpLoad)
	assert.Equal(t, uint64(2), p.Stats.Lookups)
}

// §8 invariant: lookups == data_hits + misses + no_hits + no_misses +
// (no_pred>=2 calls), for any sequence of Lookup/Update pairs.
func TestInvariant_LookupAccounting(t *testing.T) {
	p, err := Create(ClassTwoLev, Config{VHTSize: 64, Threshold: 3, PHTSize: 64, Hist: 4, Xor: 0})
	require.NoError(t, err)

	var bookkeepingNeutral uint64
	pcs := []uint64{0x100, 0x108, 0x110, 0x100, 0x108, 0x100, 0x118, 0x100}
	for i, pc := range pcs {
		res := p.Lookup(pc, OpIntCompute)
		if res.NoPred == PredL1Miss || res.NoPred == PredL2Miss {
			bookkeepingNeutral++
		}
		trueValue := uint64(i * 3)
		correct := res.Predicting() && res.PredictedValue == trueValue
		p.Update(pc, trueValue, res, correct, OpIntCompute)
	}

	s := p.Stats
	assert.Equal(t, s.Lookups, s.DataHits+s.Misses+s.NoHits+s.NoMisses+bookkeepingNeutral)
}

func TestTrace_NoopUnlessEnabled(t *testing.T) {
	p, err := Create(ClassStride, Config{VHTSize: 4096})
	require.NoError(t, err)

	var buf trackingWriter
	p.Trace(&buf, 0x100, 1, 1, Result{NoPred: PredOK})
	assert.False(t, buf.written, "Trace must be a no-op when TraceEnabled is false")

	p.TraceEnabled = true
	p.Trace(&buf, 0x100, 1, 1, Result{NoPred: PredOK})
	assert.True(t, buf.written)
}

type trackingWriter struct{ written bool }

func (w *trackingWriter) Write(p []byte) (int, error) {
	w.written = true
	return len(p), nil
}
