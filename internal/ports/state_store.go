package ports

import (
	"context"
	"time"

	"github.com/bnema/gatekeeper/internal/domain"
)

// StateStore persists session-scoped entries with a time-to-live.
//
// Read returns false when the entry is absent or older than ttl (or its own
// recorded ttl); dst is only written on a hit. A zero ttl means the entry's
// own ttl is the only limit.
type StateStore interface {
	Write(ctx context.Context, key domain.StateKey, value any, ttl time.Duration) error
	Read(ctx context.Context, key domain.StateKey, ttl time.Duration, dst any) (bool, error)
	Clear(ctx context.Context, key domain.StateKey) error
}
