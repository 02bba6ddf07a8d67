package bench

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// Result is the timing of one path.
type Result struct {
	Path           Path    `cbor:"1,keyasint"`
	NsPerTraversal float64 `cbor:"2,keyasint"`
	// Ratio is NsPerTraversal over the baseline path's.
	Ratio float64 `cbor:"3,keyasint"`
}

// Report is one benchmark run.
type Report struct {
	ID         string    `cbor:"1,keyasint"`
	Created    time.Time `cbor:"2,keyasint"`
	GoVersion  string    `cbor:"3,keyasint"`
	Platform   string    `cbor:"4,keyasint"`
	CPUs       int       `cbor:"5,keyasint"`
	Length     int       `cbor:"6,keyasint"`
	Iterations int       `cbor:"7,keyasint"`
	Expected   int64     `cbor:"8,keyasint"`
	Results    []Result  `cbor:"9,keyasint"`
}

var (
	cborEncMode cbor.EncMode
	cborDecMode cbor.DecMode
)

func init() {
	opts := cbor.CanonicalEncOptions()
	opts.Time = cbor.TimeRFC3339Nano
	em, err := opts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("bench: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em

	dm, err := cbor.DecOptions{MaxArrayElements: math.MaxInt32}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("bench: failed to create CBOR dec mode: %v", err))
	}
	cborDecMode = dm
}

// MarshalReport serializes a Report to CBOR bytes.
func MarshalReport(r *Report) ([]byte, error) {
	return cborEncMode.Marshal(r)
}

// UnmarshalReport deserializes a Report from CBOR bytes.
func UnmarshalReport(data []byte) (*Report, error) {
	var r Report
	if err := cborDecMode.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("bench: unmarshal report: %w", err)
	}
	return &r, nil
}

// Result returns the result for p.
func (r *Report) Result(p Path) (Result, bool) {
	for _, res := range r.Results {
		if res.Path == p {
			return res, true
		}
	}
	return Result{}, false
}

// Baseline is the path ratios are computed against: PathFrozen when it was
// measured, otherwise the first result.
func (r *Report) Baseline() (Result, bool) {
	if res, ok := r.Result(PathFrozen); ok {
		return res, true
	}
	if len(r.Results) == 0 {
		return Result{}, false
	}
	return r.Results[0], true
}

func (r *Report) computeRatios() {
	base, ok := r.Baseline()
	if !ok || base.NsPerTraversal == 0 {
		return
	}
	for i := range r.Results {
		r.Results[i].Ratio = r.Results[i].NsPerTraversal / base.NsPerTraversal
	}
}

// HandleOverheadPerNode is the extra cost per node of the refcounted handle
// walk over the frozen native walk. ok is false unless both were measured.
func (r *Report) HandleOverheadPerNode() (ns float64, ok bool) {
	h, okH := r.Result(PathHandle)
	f, okF := r.Result(PathFrozen)
	if !okH || !okF || r.Length == 0 {
		return 0, false
	}
	return (h.NsPerTraversal - f.NsPerTraversal) / float64(r.Length), true
}

func (r *Report) hasCross() bool {
	for _, res := range r.Results {
		if res.Path.Cross() {
			return true
		}
	}
	return false
}

func (r *Report) printSection(w io.Writer, cross bool) {
	fmt.Fprintf(w, "%-40s  %14s  %8s\n", "Path", "ns/traversal", "ratio")
	fmt.Fprintln(w, strings.Repeat("-", 66))
	for _, res := range r.Results {
		if res.Path.Cross() != cross {
			continue
		}
		fmt.Fprintf(w, "%-40s  %14.0f  %7.2fx\n", res.Path, res.NsPerTraversal, res.Ratio)
	}
}

// Print writes a human-readable table. Native and cross paths get separate
// sections; both use the same baseline.
func (r *Report) Print(w io.Writer) {
	rule := strings.Repeat("=", 60)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "Frozen list traversal benchmark")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Run:      %s\n", r.ID)
	fmt.Fprintf(w, "Go:       %s\n", r.GoVersion)
	fmt.Fprintf(w, "Platform: %s (%d CPUs)\n", r.Platform, r.CPUs)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Correctness: all paths produce %d (sum 0..%d)\n\n", r.Expected, r.Length-1)

	fmt.Fprintf(w, "Linked list traversal: %d nodes, %d iterations\n", r.Length, r.Iterations)
	r.printSection(w, false)
	if r.hasCross() {
		fmt.Fprintf(w, "\nCross-representation traversal (generic accessor walk)\n")
		r.printSection(w, true)
	}

	if base, ok := r.Baseline(); ok {
		fmt.Fprintf(w, "\nRatios are relative to %s.\n", base.Path)
	}

	overhead, ok := r.HandleOverheadPerNode()
	if !ok {
		return
	}
	h, _ := r.Result(PathHandle)
	f, _ := r.Result(PathFrozen)
	if overhead < 0 {
		fmt.Fprintln(w, "UNEXPECTED: handle walk faster than the frozen native walk.")
		return
	}
	fmt.Fprintf(w, "Handle walk slower than native by %.0f ns/traversal (%.1f ns/node).\n",
		h.NsPerTraversal-f.NsPerTraversal, overhead)
}
