package chain

import "fmt"

// ---------------------------------------------------------------------------
// Aggregation
// ---------------------------------------------------------------------------

// Sum returns the sum of every value reachable from head. The empty chain
// sums to 0. Overflow wraps.
//
// head must be acyclic; Sum does not detect cycles. Use SumBounded when the
// chain comes from an untrusted source.
func Sum(head *Node) int64 {
	var total int64
	for cur := head; cur != nil; cur = cur.next {
		total += cur.value
	}
	return total
}

// SumValue is Sum for callers holding an untyped value, such as a host
// runtime passing arguments through an interface. The type is checked once
// here, never per node.
func SumValue(head any) (int64, error) {
	switch h := head.(type) {
	case nil:
		return 0, nil
	case *Node:
		return Sum(h), nil
	default:
		return 0, &TypeMismatchError{Got: head}
	}
}

// SumBounded is Sum with a visit budget. It fails with ErrLimitExceeded
// instead of looping forever if more than limit nodes are reachable.
// A limit <= 0 disables the check.
func SumBounded(head *Node, limit int) (int64, error) {
	if limit <= 0 {
		return Sum(head), nil
	}
	var total int64
	visited := 0
	for cur := head; cur != nil; cur = cur.next {
		if visited == limit {
			return 0, fmt.Errorf("%w: more than %d nodes", ErrLimitExceeded, limit)
		}
		total += cur.value
		visited++
	}
	return total, nil
}

// Fold walks the chain once, threading acc through fn.
func Fold[T any](head *Node, init T, fn func(acc T, value int64) T) T {
	acc := init
	for cur := head; cur != nil; cur = cur.next {
		acc = fn(acc, cur.value)
	}
	return acc
}

// ---------------------------------------------------------------------------
// Inspection
// ---------------------------------------------------------------------------

// Len returns the number of nodes reachable from head.
func Len(head *Node) int {
	n := 0
	for cur := head; cur != nil; cur = cur.next {
		n++
	}
	return n
}

// Each calls fn for each value in order until fn returns false.
func Each(head *Node, fn func(value int64) bool) {
	for cur := head; cur != nil; cur = cur.next {
		if !fn(cur.value) {
			return
		}
	}
}

// Values copies the chain's values into a new slice.
func Values(head *Node) []int64 {
	out := make([]int64, 0, Len(head))
	for cur := head; cur != nil; cur = cur.next {
		out = append(out, cur.value)
	}
	return out
}
