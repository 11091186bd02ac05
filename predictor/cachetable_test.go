package predictor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheTable_IndexMasksToSets(t *testing.T) {
	ct := NewCacheTable[struct{}](16)
	// index = (addr >> 3) & (sets-1); the low 3 bits are alignment noise.
	assert.Equal(t, uint32(0), ct.Index(0x00))
	assert.Equal(t, uint32(0), ct.Index(0x07))
	assert.Equal(t, uint32(1), ct.Index(0x08))
	assert.Equal(t, uint32(2), ct.Index(0x10))
	assert.Equal(t, ct.Index(0x123), ct.Index(0x123+16*8))
}

func TestCacheTable_LookupMissOnEmptyTable(t *testing.T) {
	ct := NewCacheTable[struct{ V int }](8)
	_, hit := ct.Lookup(0x40)
	assert.False(t, hit)
}

func TestCacheTable_LookupTagMismatchIsMiss(t *testing.T) {
	ct := NewCacheTable[struct{ V int }](8)
	e := ct.LruUpdate(0x40)
	e.Addr, e.Valid = 0x40, true

	// 0x40 and 0x80 collide on an 8-entry table: both addr>>3 values are
	// congruent mod 8 once the alignment bits are shifted out and masked.
	_, hit := ct.Lookup(0x80)
	assert.False(t, hit, "tag mismatch at a shared slot must miss, not return the other PC's entry")
}

func TestCacheTable_LruUpdateReturnsSlotRegardlessOfTag(t *testing.T) {
	ct := NewCacheTable[struct{ V int }](8)
	e1 := ct.LruUpdate(0x40)
	assert.False(t, e1.Valid)
	e1.Addr, e1.Valid, e1.Body.V = 0x40, true, 7

	e2 := ct.LruUpdate(0x40)
	require.True(t, e2.Valid)
	assert.Equal(t, 7, e2.Body.V, "LruUpdate on the same tag must return the same entry")
}

func TestCacheTable_AtMasksOutOfRangeIndex(t *testing.T) {
	ct := NewCacheTable[struct{ V int }](4)
	ct.At(0).Body.V = 9
	assert.Equal(t, 9, ct.At(4).Body.V, "At must mask idx into [0,sets)")
}

func TestNewCacheTable_PanicsOnNonPowerOfTwo(t *testing.T) {
	assert.Panics(t, func() { NewCacheTable[struct{}](0) })
	assert.Panics(t, func() { NewCacheTable[struct{}](3) })
}
