package commands

import (
	"github.com/josephlewis42/vshell/core/shell"
	"github.com/juju/ratelimit"
)

// ticker hands out one tick per PollRate, up to MaxIterations.
type ticker struct {
	bucket    *ratelimit.Bucket
	remaining int
}

func newTicker(cfg shell.FollowConfig) *ticker {
	return &ticker{
		bucket:    ratelimit.NewBucket(cfg.PollRate, 1),
		remaining: cfg.MaxIterations,
	}
}

// Next blocks until the next tick and reports false once the cap is hit.
func (t *ticker) Next() bool {
	if t.remaining <= 0 {
		return false
	}
	t.remaining--
	t.bucket.Wait(1)
	return true
}
