// Package chain implements frozen singly-linked list nodes and the
// traversal routines that walk them.
//
// This package contains:
//   - Node, a value cell fixed at construction with a shared successor link
//   - Sum and the other single-pass aggregations over a chain
//   - Entry-point type validation for callers holding untyped values
//
// A chain is a *Node; nil is the empty chain. Any number of chains may share
// a suffix. Since no field of a Node is ever written after New returns, any
// number of goroutines may traverse the same nodes without locking.
package chain
