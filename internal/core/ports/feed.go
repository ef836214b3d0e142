package ports

import (
	"context"

	"github.com/fxmirror/fxmirror/internal/core/domain"
)

// RateFeed fetches the current rate snapshot from the upstream provider.
type RateFeed interface {
	// FetchSnapshot performs one fetch attempt. Network, timeout, non-2xx
	// and parse failures are returned wrapping apperrors.ErrUpstream.
	FetchSnapshot(ctx context.Context) (domain.RateSnapshot, error)
}
