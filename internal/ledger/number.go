package ledger

import (
	"math/rand"
	"strconv"
)

// newAccountNumber draws a candidate 10-digit account number. Uniqueness is
// enforced by the store's unique constraint; callers redraw on collision
// rather than check-then-insert.
func newAccountNumber() string {
	return strconv.FormatInt(1_000_000_000+rand.Int63n(9_000_000_000), 10)
}
