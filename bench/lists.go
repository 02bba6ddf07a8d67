package bench

import (
	"errors"
	"fmt"

	"github.com/chazu/frozenlist/chain"
	"github.com/chazu/frozenlist/handle"
	"github.com/chazu/frozenlist/snapshot"
)

var (
	ErrLength   = errors.New("list length must be positive")
	ErrWrongSum = errors.New("traversal produced wrong sum")
	ErrPath     = errors.New("unknown traversal path")
)

// Path names one list representation plus the loop that walks it.
type Path string

const (
	// PathPlain walks a mutable struct with exported fields. It is the
	// floor: no accessors, no sharing guarantees.
	PathPlain Path = "plain"
	// PathFrozen is chain.Sum over frozen nodes.
	PathFrozen Path = "frozen"
	// PathEntry is chain.SumValue: one type check at entry, then Sum.
	PathEntry Path = "entry"
	// PathBounded is chain.SumBounded with the configured limit.
	PathBounded Path = "bounded"
	// PathHandle is handle.Table.Sum: refcount churn on every step.
	PathHandle Path = "handle"
	// PathSnapshot decodes a CBOR snapshot into a fresh chain, then sums it.
	PathSnapshot Path = "snapshot"

	// The cross paths run one generic Cell walker over each representation.
	PathCrossPlain  Path = crossPrefix + "plain"
	PathCrossFrozen Path = crossPrefix + "frozen"
	PathCrossHandle Path = crossPrefix + "handle"
)

// AllPaths lists every path in report order.
var AllPaths = []Path{
	PathPlain, PathFrozen, PathEntry, PathBounded, PathHandle, PathSnapshot,
	PathCrossPlain, PathCrossFrozen, PathCrossHandle,
}

// ParsePath validates a path name.
func ParsePath(s string) (Path, error) {
	for _, p := range AllPaths {
		if string(p) == s {
			return p, nil
		}
	}
	return "", errPath(Path(s))
}

func errPath(p Path) error { return fmt.Errorf("%w: %q", ErrPath, string(p)) }

type plainNode struct {
	Value int64
	Next  *plainNode
}

func sumPlain(head *plainNode) int64 {
	var total int64
	for cur := head; cur != nil; cur = cur.Next {
		total += cur.Value
	}
	return total
}

// Lists holds the same values 0..n-1 in every representation.
type Lists struct {
	n     int
	limit int

	plain  *plainNode
	frozen *chain.Node
	entry  any
	table  *handle.Table
	head   handle.ID
	wire   []byte
}

// BuildLists builds one list of n nodes per representation. limit is the
// visit budget for PathBounded; 0 means n.
func BuildLists(n, limit int) (*Lists, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w, got %d", ErrLength, n)
	}
	if limit <= 0 {
		limit = n
	}

	l := &Lists{n: n, limit: limit, table: handle.NewTable()}

	l.plain = &plainNode{Value: int64(n - 1)}
	l.frozen = chain.New(int64(n-1), nil)
	for i := n - 2; i >= 0; i-- {
		l.plain = &plainNode{Value: int64(i), Next: l.plain}
		l.frozen = chain.New(int64(i), l.frozen)
	}
	l.entry = l.frozen

	wire, err := snapshot.MarshalChain(l.frozen)
	if err != nil {
		return nil, fmt.Errorf("encoding snapshot: %w", err)
	}
	l.wire = wire

	head := handle.None
	for i := n - 1; i >= 0; i-- {
		id, err := l.table.New(int64(i), head)
		if err != nil {
			return nil, fmt.Errorf("building handle list: %w", err)
		}
		if head != handle.None {
			// The new node owns its successor now.
			if err := l.table.Release(head); err != nil {
				return nil, fmt.Errorf("building handle list: %w", err)
			}
		}
		head = id
	}
	l.head = head

	return l, nil
}

// Len returns the node count of each list.
func (l *Lists) Len() int { return l.n }

// Expected returns n(n-1)/2, the sum of 0..n-1.
func (l *Lists) Expected() int64 {
	n := int64(l.n)
	return n * (n - 1) / 2
}

// Traverse runs one full traversal along p.
func (l *Lists) Traverse(p Path) (int64, error) {
	switch p {
	case PathPlain:
		return sumPlain(l.plain), nil
	case PathFrozen:
		return chain.Sum(l.frozen), nil
	case PathEntry:
		return chain.SumValue(l.entry)
	case PathBounded:
		return chain.SumBounded(l.frozen, l.limit)
	case PathHandle:
		return l.table.Sum(l.head)
	case PathSnapshot:
		head, err := snapshot.UnmarshalChain(l.wire)
		if err != nil {
			return 0, err
		}
		return chain.Sum(head), nil
	case PathCrossPlain, PathCrossFrozen, PathCrossHandle:
		return l.traverseCross(p)
	default:
		return 0, errPath(p)
	}
}

// Verify checks every path in paths against Expected.
func (l *Lists) Verify(paths []Path) error {
	want := l.Expected()
	for _, p := range paths {
		got, err := l.Traverse(p)
		if err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
		if got != want {
			return fmt.Errorf("%w: %s gave %d, want %d", ErrWrongSum, p, got, want)
		}
	}
	return nil
}

// Close releases the handle list.
func (l *Lists) Close() error {
	if l.head == handle.None {
		return nil
	}
	err := l.table.Release(l.head)
	l.head = handle.None
	return err
}
