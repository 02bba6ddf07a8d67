package chain

// Node is an immutable list cell. Fields are assigned once by New and are
// never written again; there are no setters.
//
// Ownership is shared: a node stays reachable for as long as any chain,
// handle or goroutine holds a pointer to it. The collector frees unreachable
// suffixes without recursing down the chain.
type Node struct {
	value int64
	next  *Node
}

// New returns a frozen node holding value, linked to next. next may be nil
// and may already be the successor of other nodes.
func New(value int64, next *Node) *Node {
	return &Node{value: value, next: next}
}

// Value returns the node's value.
func (n *Node) Value() int64 {
	return n.value
}

// Next returns the shared successor, or nil at the end of the chain.
func (n *Node) Next() *Node {
	return n.next
}

// FromSlice builds a chain whose values appear in slice order.
// An empty slice yields nil.
func FromSlice(values []int64) *Node {
	return Prepend(values, nil)
}

// Prepend builds a new chain of values that continues into tail.
// tail is shared, not copied.
func Prepend(values []int64, tail *Node) *Node {
	head := tail
	for i := len(values) - 1; i >= 0; i-- {
		head = New(values[i], head)
	}
	return head
}
