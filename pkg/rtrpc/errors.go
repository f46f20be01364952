package rtrpc

import (
	"errors"
	"fmt"
)

var (
	// connection-level failure. retrying is the caller's call, never ours.
	ErrTransport = errors.New("transport error")

	// response framing we could not make sense of
	ErrProtocol = errors.New("protocol error")
)

// application-level error reported by the remote for one call. In a batch a Fault
// only concerns its own entry; sibling entries still carry their values.
type Fault struct {
	Code    int
	Message string
}

func (f *Fault) Error() string {
	return fmt.Sprintf("remote fault %d: %s", f.Code, f.Message)
}
