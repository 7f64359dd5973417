package dashboard

import (
	"errors"
	"resa/shared/constant"
	"time"
)

// Wire field names accepted by the reservation API's partial update.
const (
	FieldName     = "name"
	FieldPhone    = "phone"
	FieldDate     = "date"
	FieldTimeSlot = "time_slot"
	FieldStatus   = "status"
)

// Reservation is the dashboard's in-memory copy of a reservation record.
// The JSON tags are the wire naming used by the API and the change feed;
// everything past the decode boundary works with the Go field names.
type Reservation struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Date      string    `json:"date"`
	TimeSlot  string    `json:"time_slot"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

var (
	ErrMissingID     = errors.New("reservation record has no id")
	ErrUnknownStatus = errors.New("reservation record has unrecognized status")
)

// Validate rejects records that would corrupt the store: a missing id or
// a status outside the known set. Such records are data errors and are
// dropped by callers, never coerced.
func (r Reservation) Validate() error {
	if r.ID == constant.Empty {
		return ErrMissingID
	}

	if !constant.ValidStatus(r.Status) {
		return ErrUnknownStatus
	}

	return nil
}

// ParseDate parses the DD/MM/YYYY appointment date. The zero time and
// false are returned for malformed values; callers decide how malformed
// dates order.
func (r Reservation) ParseDate() (time.Time, bool) {
	t, err := time.Parse(constant.ReservationDateLayout, r.Date)
	if err != nil {
		return time.Time{}, false
	}

	return t, true
}
