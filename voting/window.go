// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"time"

	"github.com/Jordancode-cyber/EV-test-app/models"
)

// IsOpen reports whether p accepts votes at now. Both bounds are inclusive.
func IsOpen(p models.Position, now time.Time) bool {
	return !now.Before(p.OpensAt) && !now.After(p.ClosesAt)
}
