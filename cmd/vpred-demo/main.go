// Command vpred-demo drives the value prediction engine against a trace of
// (pc, op, true_value) tuples read from stdin, one per line, and prints the
// configuration and stats dumps described in §6/§8. It stands in for the
// simulator host the predictor package itself never implements (§1).
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/maemowong/vpred/predictor"
)

func main() {
	class := flag.String("dpred", "last", "predictor class: last|stride|2lev|hybrid")
	n := flag.Uint64("N", 0, "primary table size (ct_size/vht_size); 0 uses the class default")
	c := flag.Uint64("C", 0, "Last: counter_size; TwoLev/Hybrid: threshold")
	m := flag.Uint64("M", 0, "Last: vpt_size; TwoLev/Hybrid: pht_size")
	h := flag.Uint64("H", 0, "hist")
	x := flag.Uint64("X", 0, "xor fold width")
	trace := flag.Bool("trace", false, "enable per-instruction Trace output")
	flag.Parse()

	cls, cfg, err := resolveConfig(*class, *n, *c, *m, *h, *x)
	if err != nil {
		fmt.Fprintln(os.Stderr, "vpred-demo:", err)
		os.Exit(1)
	}

	p, err := predictor.Create(cls, cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "vpred-demo:", err)
		os.Exit(1)
	}
	p.TraceEnabled = *trace
	p.ConfigureDump(os.Stdout)

	if err := run(p, os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "vpred-demo:", err)
		os.Exit(1)
	}

	fmt.Fprintln(os.Stdout)
	p.StatsDump(os.Stdout)
}

// run feeds one "pc op true_value" line at a time through Lookup then
// Update, in the strict sequence §5 requires.
func run(p *predictor.Predictor, in *os.File, out *os.File) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 3 {
			return fmt.Errorf("malformed line %q: want \"pc op true_value\"", line)
		}
		pc, err := strconv.ParseUint(fields[0], 0, 64)
		if err != nil {
			return fmt.Errorf("bad pc %q: %w", fields[0], err)
		}
		op, err := parseOpcode(fields[1])
		if err != nil {
			return err
		}
		trueValue, err := strconv.ParseUint(fields[2], 0, 64)
		if err != nil {
			return fmt.Errorf("bad true_value %q: %w", fields[2], err)
		}

		res := p.Lookup(pc, op)
		correct := res.Predicting() && res.PredictedValue == trueValue
		p.Trace(out, pc, res.PredictedValue, trueValue, res)
		p.Update(pc, trueValue, res, correct, op)
	}
	return scanner.Err()
}

func parseOpcode(s string) (predictor.Opcode, error) {
	switch s {
	case "int":
		return predictor.OpIntCompute, nil
	case "load":
		return predictor.OpLoad, nil
	case "longlat":
		return predictor.OpLongLatency, nil
	case "other":
		return predictor.OpOther, nil
	default:
		return 0, fmt.Errorf("unknown op %q (want int|load|longlat|other)", s)
	}
}

// resolveConfig maps the CLI surface of §6 onto a predictor.Config, applying
// the documented per-class defaults when a flag is left at 0.
func resolveConfig(class string, n, c, m, hh, xx uint64) (predictor.Class, predictor.Config, error) {
	switch class {
	case "last":
		cfg := predictor.Config{
			CTSize:      orDefault32(n, 1024),
			CounterSize: orDefault32(c, 2),
			VPTSize:     orDefault32(m, 4096),
			Hist:        1,
		}
		return predictor.ClassLast, cfg, nil
	case "stride":
		cfg := predictor.Config{VHTSize: orDefault32(n, 4096)}
		return predictor.ClassStride, cfg, nil
	case "2lev":
		cfg := predictor.Config{
			VHTSize:   orDefault32(n, 4096),
			Threshold: uint8(orDefault32(c, 3)),
			PHTSize:   orDefault32(m, 4096),
			Hist:      orDefault32(hh, 4),
			Xor:       uint32(xx),
		}
		return predictor.ClassTwoLev, cfg, nil
	case "hybrid":
		cfg := predictor.Config{
			VHTSize:   orDefault32(n, 4096),
			Threshold: uint8(orDefault32(c, 6)),
			PHTSize:   orDefault32(m, 4096),
			Hist:      orDefault32(hh, 4),
			Xor:       uint32(xx),
		}
		return predictor.ClassHybrid, cfg, nil
	default:
		return 0, predictor.Config{}, fmt.Errorf("unknown -dpred class %q (want last|stride|2lev|hybrid)", class)
	}
}

func orDefault32(v uint64, def uint32) uint32 {
	if v == 0 {
		return def
	}
	return uint32(v)
}
