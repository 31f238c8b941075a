package health

import "time"

func NewCachedForTest(c Checker, ttl time.Duration, now func() time.Time) Checker {
	return &cached{inner: c, ttl: ttl, now: now}
}
