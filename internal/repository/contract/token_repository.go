package contract

import "context"

// TokenRepository is the durable keyed slot the session credential survives restarts in.
// Get reports found=false, with a nil error, when the slot is empty.
type TokenRepository interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error
}
