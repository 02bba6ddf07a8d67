// Package handle exposes frozen chains to a host runtime through opaque,
// reference-counted IDs.
//
// A host that cannot hold Go pointers holds IDs instead. Each ID carries an
// owner count; a node entry keeps its successor retained for as long as the
// entry itself is live, mirroring a refcounted embedding. Counts are atomic,
// so any number of goroutines may retain, release and traverse the same
// entries concurrently. The value and successor of an entry never change.
package handle

import (
	"sync"
	"sync/atomic"

	"github.com/tliron/commonlog"

	"github.com/chazu/frozenlist/chain"
)

var log = commonlog.GetLogger("frozenlist.handle")

// ID is an opaque handle. None is the absent chain and is never issued.
type ID uint64

const None ID = 0

// entry is the table-side record behind an ID.
type entry struct {
	id   ID
	refs atomic.Int64

	// Exactly one of node and foreign is set.
	node    *chain.Node
	next    *entry
	foreign any
}

func (e *entry) isNode() bool { return e.node != nil }

// tryRetain adds a reference unless the entry has already dropped to zero.
func (e *entry) tryRetain() bool {
	for {
		n := e.refs.Load()
		if n <= 0 {
			return false
		}
		if e.refs.CompareAndSwap(n, n+1) {
			return true
		}
	}
}

// Table maps IDs to node and foreign entries.
type Table struct {
	mu      sync.RWMutex
	entries map[ID]*entry
	nextID  atomic.Uint64
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{entries: make(map[ID]*entry)}
}

// lookup returns the live entry for id, or nil.
func (t *Table) lookup(id ID) *entry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	e := t.entries[id]
	if e == nil || e.refs.Load() <= 0 {
		return nil
	}
	return e
}

// acquire looks up id and takes a reference on it in one step.
func (t *Table) acquire(id ID) *entry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	e := t.entries[id]
	if e == nil || !e.tryRetain() {
		return nil
	}
	return e
}

// insert issues the next free ID to e. After the counter wraps, None and
// IDs still held by live entries are skipped.
func (t *Table) insert(e *entry) ID {
	e.refs.Store(1)

	t.mu.Lock()
	defer t.mu.Unlock()
	for {
		id := ID(t.nextID.Add(1))
		if id == None {
			continue
		}
		if _, taken := t.entries[id]; taken {
			continue
		}
		e.id = id
		t.entries[id] = e
		return id
	}
}

// ---------------------------------------------------------------------------
// Construction
// ---------------------------------------------------------------------------

// New constructs a node holding value whose successor is next, and returns a
// handle owning one reference. A non-None next is retained for the lifetime
// of the new node.
func (t *Table) New(value int64, next ID) (ID, error) {
	if next == None {
		return t.insert(&entry{node: chain.New(value, nil)}), nil
	}

	succ := t.acquire(next)
	if succ == nil {
		return None, unknown(next)
	}
	if !succ.isNode() {
		t.release(succ)
		return None, &chain.TypeMismatchError{Got: succ.foreign}
	}
	return t.insert(&entry{node: chain.New(value, succ.node), next: succ}), nil
}

// Register stores an arbitrary host value under a new handle. Such handles
// can be retained and released like nodes but are rejected wherever a node
// is expected.
func (t *Table) Register(v any) ID {
	return t.insert(&entry{foreign: v})
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

// Value returns the value of the node behind id.
func (t *Table) Value(id ID) (int64, error) {
	e, err := t.node(id)
	if err != nil {
		return 0, err
	}
	return e.node.Value(), nil
}

// Next returns a new reference to the successor of id, or None at the end of
// the chain. The caller owns the returned reference.
func (t *Table) Next(id ID) (ID, error) {
	e := t.acquire(id)
	if e == nil {
		return None, unknown(id)
	}
	defer t.release(e)
	if !e.isNode() {
		return None, &chain.TypeMismatchError{Got: e.foreign}
	}
	if e.next == nil {
		return None, nil
	}
	// e owns a reference to next, so next is live here.
	e.next.refs.Add(1)
	return e.next.id, nil
}

// Node returns the frozen node behind id for native traversal.
func (t *Table) Node(id ID) (*chain.Node, error) {
	if id == None {
		return nil, nil
	}
	e, err := t.node(id)
	if err != nil {
		return nil, err
	}
	return e.node, nil
}

// Foreign returns the host value registered under id.
func (t *Table) Foreign(id ID) (any, bool) {
	e := t.lookup(id)
	if e == nil || e.isNode() {
		return nil, false
	}
	return e.foreign, true
}

func (t *Table) node(id ID) (*entry, error) {
	e := t.lookup(id)
	if e == nil {
		return nil, unknown(id)
	}
	if !e.isNode() {
		return nil, &chain.TypeMismatchError{Got: e.foreign}
	}
	return e, nil
}

// Refs returns the current owner count of id, or 0 if it is not live.
func (t *Table) Refs(id ID) int64 {
	e := t.lookup(id)
	if e == nil {
		return 0
	}
	return e.refs.Load()
}

// Len returns the number of live entries.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// ---------------------------------------------------------------------------
// Ownership
// ---------------------------------------------------------------------------

// Retain adds an owner to id.
func (t *Table) Retain(id ID) error {
	if t.acquire(id) == nil {
		return unknown(id)
	}
	return nil
}

// Release drops one owner of id. When the last owner goes, the entry is
// removed and its successor is released in turn, walking the chain in a loop
// until a node that still has other owners is reached.
func (t *Table) Release(id ID) error {
	e := t.lookup(id)
	if e == nil {
		return unknown(id)
	}
	t.release(e)
	return nil
}

func (t *Table) release(e *entry) {
	var freed []ID
	for e != nil && e.refs.Add(-1) == 0 {
		freed = append(freed, e.id)
		e = e.next
	}
	if len(freed) == 0 {
		return
	}

	t.mu.Lock()
	for _, id := range freed {
		delete(t.entries, id)
	}
	t.mu.Unlock()

	if len(freed) > 1 {
		log.Debugf("released %d handles starting at %d", len(freed), freed[0])
	}
}

// ---------------------------------------------------------------------------
// Traversal
// ---------------------------------------------------------------------------

// Cursor walks a chain by handle. It owns one reference to the node it is
// on; Step trades it for a reference to the successor, so nodes under the
// cursor stay live even if every other owner releases them.
type Cursor struct {
	t   *Table
	cur *entry
}

// Open resolves and type checks id once and returns a cursor positioned on
// it. Opening None yields a cursor that is already exhausted.
func (t *Table) Open(id ID) (Cursor, error) {
	if id == None {
		return Cursor{t: t}, nil
	}
	e := t.acquire(id)
	if e == nil {
		return Cursor{}, unknown(id)
	}
	if !e.isNode() {
		t.release(e)
		return Cursor{}, &chain.TypeMismatchError{Got: e.foreign}
	}
	return Cursor{t: t, cur: e}, nil
}

// Valid reports whether the cursor is on a node.
func (c *Cursor) Valid() bool { return c.cur != nil }

// Value returns the value of the current node. The cursor must be Valid.
func (c *Cursor) Value() int64 { return c.cur.node.Value() }

// ID returns the handle of the current node, or None.
func (c *Cursor) ID() ID {
	if c.cur == nil {
		return None
	}
	return c.cur.id
}

// Step moves to the successor: acquire next, then release current.
func (c *Cursor) Step() {
	e := c.cur
	if e == nil {
		return
	}
	if e.next != nil {
		e.next.refs.Add(1)
	}
	c.cur = e.next
	c.t.release(e)
}

// Close drops the cursor's reference. It is a no-op once the cursor has
// stepped past the end.
func (c *Cursor) Close() {
	if c.cur != nil {
		c.t.release(c.cur)
		c.cur = nil
	}
}

// Sum returns the sum of the chain starting at id. The handle is resolved
// and type checked once; each step then takes a reference on the successor
// and drops the one on the node just read, so a concurrent Release of the
// caller's handles can never free a node mid-walk.
func (t *Table) Sum(id ID) (int64, error) {
	c, err := t.Open(id)
	if err != nil {
		return 0, err
	}
	var total int64
	for ; c.Valid(); c.Step() {
		total += c.Value()
	}
	return total, nil
}
