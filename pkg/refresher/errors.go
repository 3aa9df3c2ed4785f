package refresher

import (
	"fmt"
	"time"
)

// UnavailableError is returned by Current when no document has ever been
// fetched and the last refresh failed.
type UnavailableError struct {
	// Message is the one-line probe error
	Message string

	// Details lists each candidate path failure as "<path>: <reason>"
	Details []string

	// At is when the failing refresh finished
	At time.Time
}

// Error implements the error interface.
func (e *UnavailableError) Error() string {
	return fmt.Sprintf("upstream unavailable: %s", e.Message)
}
