package bench

import (
	"strings"

	"github.com/chazu/frozenlist/chain"
	"github.com/chazu/frozenlist/handle"
)

// Cell is the accessor protocol shared by every list representation. The
// generic walker sees only these methods, so one loop serves them all.
type Cell interface {
	Valid() bool
	Value() int64
	Step()
}

type plainCursor struct{ cur *plainNode }

func (c *plainCursor) Valid() bool  { return c.cur != nil }
func (c *plainCursor) Value() int64 { return c.cur.Value }
func (c *plainCursor) Step()        { c.cur = c.cur.Next }

type frozenCursor struct{ cur *chain.Node }

func (c *frozenCursor) Valid() bool  { return c.cur != nil }
func (c *frozenCursor) Value() int64 { return c.cur.Value() }
func (c *frozenCursor) Step()        { c.cur = c.cur.Next() }

var (
	_ Cell = (*plainCursor)(nil)
	_ Cell = (*frozenCursor)(nil)
	_ Cell = (*handle.Cursor)(nil)
)

// sumCells walks any Cell through the interface.
func sumCells(c Cell) int64 {
	var total int64
	for ; c.Valid(); c.Step() {
		total += c.Value()
	}
	return total
}

// Cross reports whether p walks its list through the Cell protocol rather
// than the representation's own loop.
func (p Path) Cross() bool { return strings.HasPrefix(string(p), crossPrefix) }

const crossPrefix = "cross-"

func (l *Lists) traverseCross(p Path) (int64, error) {
	switch p {
	case PathCrossPlain:
		return sumCells(&plainCursor{cur: l.plain}), nil
	case PathCrossFrozen:
		return sumCells(&frozenCursor{cur: l.frozen}), nil
	case PathCrossHandle:
		c, err := l.table.Open(l.head)
		if err != nil {
			return 0, err
		}
		defer c.Close()
		return sumCells(&c), nil
	}
	return 0, errPath(p)
}
