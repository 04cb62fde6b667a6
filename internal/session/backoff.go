package session

import "time"

// Reconnect backoff: exponential from backoffBase, exponent capped so growth
// plateaus at backoffBase*32, and the resulting delay clamped to backoffMax.
// Deterministic on purpose (no jitter) so observers can show an exact
// countdown.
const (
	backoffBase        = time.Second
	backoffMax         = 30 * time.Second
	backoffCapExponent = 5
)

// Delay returns the wait before reconnect attempt n. Attempts are numbered
// from 1; values below 1 are treated as 1.
func Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	exp := attempt - 1
	if exp > backoffCapExponent {
		exp = backoffCapExponent
	}
	d := backoffBase << uint(exp)
	if d > backoffMax {
		d = backoffMax
	}
	return d
}
