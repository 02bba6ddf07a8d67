// Package snapshot marshals the contents of a frozen chain for transfer
// across a process boundary using canonical CBOR.
//
// Only values travel; node identity and tail sharing do not. Decoding always
// yields a fresh, unshared chain.
package snapshot

import (
	"errors"
	"fmt"
	"math"

	"github.com/fxamacker/cbor/v2"

	"github.com/chazu/frozenlist/chain"
)

// Version is the snapshot layout written by MarshalChain.
const Version uint8 = 1

// MaxValues is the longest chain UnmarshalChain accepts. It is the largest
// array bound the CBOR decoder supports.
const MaxValues = math.MaxInt32

var (
	ErrVersion  = errors.New("unsupported snapshot version")
	ErrChecksum = errors.New("snapshot checksum mismatch")
)

// Snapshot is the wire form of a chain.
type Snapshot struct {
	Version uint8   `cbor:"1,keyasint"`
	Values  []int64 `cbor:"2,keyasint,omitempty"`
	Sum     int64   `cbor:"3,keyasint"` // wrapping sum of Values
}

var (
	cborEncMode cbor.EncMode
	cborDecMode cbor.DecMode
)

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("snapshot: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em

	dm, err := cbor.DecOptions{MaxArrayElements: MaxValues}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("snapshot: failed to create CBOR dec mode: %v", err))
	}
	cborDecMode = dm
}

// Take captures the values of the chain at head.
func Take(head *chain.Node) *Snapshot {
	return &Snapshot{
		Version: Version,
		Values:  chain.Values(head),
		Sum:     chain.Sum(head),
	}
}

// Chain rebuilds a chain from s after checking its version and checksum.
func (s *Snapshot) Chain() (*chain.Node, error) {
	if s.Version != Version {
		return nil, fmt.Errorf("%w: %d", ErrVersion, s.Version)
	}
	head := chain.FromSlice(s.Values)
	if got := chain.Sum(head); got != s.Sum {
		return nil, fmt.Errorf("%w: header %d, values %d", ErrChecksum, s.Sum, got)
	}
	return head, nil
}

// MarshalChain serializes the chain at head to CBOR bytes.
func MarshalChain(head *chain.Node) ([]byte, error) {
	return cborEncMode.Marshal(Take(head))
}

// UnmarshalChain deserializes CBOR bytes into a new chain.
func UnmarshalChain(data []byte) (*chain.Node, error) {
	var s Snapshot
	if err := cborDecMode.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("snapshot: unmarshal chain: %w", err)
	}
	return s.Chain()
}
