package lock

import (
	"errors"
	"time"
)

// ErrNotAcquired is returned when the lock is still held elsewhere once the
// wait budget runs out.
var ErrNotAcquired = errors.New("lock: not acquired")

const (
	defaultTTL   = 30 * time.Second
	defaultWait  = 5 * time.Second
	retryBackoff = 50 * time.Millisecond
)
