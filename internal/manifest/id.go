package manifest

import (
	"time"

	"github.com/google/uuid"
)

// Clock provides the current time. Injected so tests can pin timestamps.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// SystemClock returns a Clock backed by the wall clock (UTC).
func SystemClock() Clock { return systemClock{} }

// newComponentID allocates a component id. UUIDs make collisions
// effectively impossible, but the store still checks before committing.
func newComponentID() string {
	return "cmp-" + uuid.NewString()
}
