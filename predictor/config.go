package predictor

import "fmt"

// Config bundles every class's construction-time parameters in one place,
// in the manner of the pack's plain-struct-plus-Validate configuration
// idiom (cf. vybium-starks-vm's utils.Config), rather than the source's
// file-scope globals (see SPEC_FULL.md §9, "global-state externals").
//
// Not every field applies to every Class; Validate enforces only the
// fields relevant to the Class it is given.
type Config struct {
	// Last
	CTSize      uint32
	CounterSize uint32
	VPTSize     uint32

	// Stride, TwoLev, Hybrid
	VHTSize uint32

	// TwoLev, Hybrid
	Threshold uint8
	PHTSize   uint32
	Hist      uint32
	Xor       uint32
}

// validHist enumerates the history lengths the tables support, per §3:
// "hist is one of {1,2,4,6,8,10,12,14,16}".
var validHist = map[uint32]bool{1: true, 2: true, 4: true, 6: true, 8: true, 10: true, 12: true, 14: true, 16: true}

// validXor enumerates the supported PC/VHP XOR fold widths, per §3.
var validXor = map[uint32]bool{0: true, 6: true, 8: true, 12: true, 16: true}

func isPowerOfTwo(v uint32) bool {
	return v != 0 && v&(v-1) == 0
}

// histNum returns the number of VHP bits shifted in per update for a given
// hist, per invariant 5: 2 for hist∈{2,4}, 3 for hist∈{6,8}, 4 for
// hist∈{10,12,14,16}.
func histNum(hist uint32) uint32 {
	switch {
	case hist == 2 || hist == 4:
		return 2
	case hist == 6 || hist == 8:
		return 3
	case hist == 10 || hist == 12 || hist == 14 || hist == 16:
		return 4
	default:
		panic(fmt.Sprintf("vpred: hist %d has no defined hist_num", hist))
	}
}

// Validate checks cfg against the invariants §3 lists for class. A
// configuration error is fatal at construction (§7); the idiomatic Go
// rendition of that is a returned error rather than a process abort.
func (cfg Config) Validate(class Class) error {
	switch class {
	case ClassLast:
		if !isPowerOfTwo(cfg.CTSize) {
			return fmt.Errorf("vpred: last: ct_size %d must be a positive power of two", cfg.CTSize)
		}
		if !isPowerOfTwo(cfg.VPTSize) {
			return fmt.Errorf("vpred: last: vpt_size %d must be a positive power of two", cfg.VPTSize)
		}
		if cfg.CounterSize != 2 {
			return fmt.Errorf("vpred: last: counter_size %d unsupported (only 2 is implemented)", cfg.CounterSize)
		}
		if cfg.Hist != 1 {
			return fmt.Errorf("vpred: last: hist %d unsupported (only 1 is implemented)", cfg.Hist)
		}
		return nil

	case ClassStride:
		if !isPowerOfTwo(cfg.VHTSize) {
			return fmt.Errorf("vpred: stride: vht_size %d must be a positive power of two", cfg.VHTSize)
		}
		return nil

	case ClassTwoLev, ClassHybrid:
		if !isPowerOfTwo(cfg.VHTSize) {
			return fmt.Errorf("vpred: %s: vht_size %d must be a positive power of two", class, cfg.VHTSize)
		}
		if !isPowerOfTwo(cfg.PHTSize) {
			return fmt.Errorf("vpred: %s: pht_size %d must be a positive power of two", class, cfg.PHTSize)
		}
		if cfg.Threshold == 0 {
			return fmt.Errorf("vpred: %s: threshold must be > 0", class)
		}
		if !validHist[cfg.Hist] || cfg.Hist == 1 || cfg.Hist%2 != 0 {
			return fmt.Errorf("vpred: %s: hist %d is not one of the supported even lengths", class, cfg.Hist)
		}
		if !validXor[cfg.Xor] {
			return fmt.Errorf("vpred: %s: xor %d is not a supported fold width", class, cfg.Xor)
		}
		return nil

	default:
		return fmt.Errorf("vpred: unknown predictor class %d", uint8(class))
	}
}
