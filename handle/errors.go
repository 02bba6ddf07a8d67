package handle

import (
	"errors"
	"fmt"
)

// ErrUnknownHandle is returned for IDs that were never issued or whose last
// owner has already released them.
var ErrUnknownHandle = errors.New("unknown handle")

func unknown(id ID) error {
	return fmt.Errorf("%w: %d", ErrUnknownHandle, id)
}
