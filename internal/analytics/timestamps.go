package analytics

import (
	"time"

	"github.com/LeiBaylon/kolekkita-backend/pkg/db/models"
)

// BookingTimestamp reports the booking's creation time and whether it is
// usable. Zero timestamps come from upstream records that never carried
// one; callers exclude those rather than backfilling with "now", so a bad
// record can never skew a time bucket.
func BookingTimestamp(booking models.Booking) (time.Time, bool) {
	if booking.CreatedAt.IsZero() {
		return time.Time{}, false
	}
	return booking.CreatedAt, true
}
