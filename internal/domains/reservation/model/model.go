package model

import (
	"resa/shared/model"
)

const (
	TableName  = "reservations"
	EntityName = "reservation"

	FieldID       = "id"
	FieldName     = "name"
	FieldPhone    = "phone"
	FieldDate     = "date"
	FieldTimeSlot = "time_slot"
	FieldStatus   = "status"
)

// Reservation is an appointment request submitted through the customer
// form. Date stays the DD/MM/YYYY string the customer picked; it is never
// normalized server-side.
type Reservation struct {
	ID       string `db:"id"`
	Name     string `db:"name"`
	Phone    string `db:"phone"`
	Date     string `db:"date"`
	TimeSlot string `db:"time_slot"`
	Status   string `db:"status"`
	model.Metadata
}
