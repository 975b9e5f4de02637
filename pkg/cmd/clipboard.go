package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dukex/operion-canvas/pkg/clipboard"
)

// NewClipboard returns a Redis clipboard for redis:// and rediss:// urls and
// an in-memory one when url is empty.
func NewClipboard(ctx context.Context, url string, ttl time.Duration) (clipboard.Store, error) {
	switch {
	case url == "" || url == "memory":
		return clipboard.NewMemoryStore(), nil
	case strings.HasPrefix(url, "redis://"), strings.HasPrefix(url, "rediss://"):
		store, err := clipboard.NewRedisStore(ctx, url, ttl)
		if err != nil {
			return nil, err
		}

		return store, nil
	default:
		return nil, fmt.Errorf("unsupported clipboard url: %s", url)
	}
}
