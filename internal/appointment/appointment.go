package appointment

import "errors"

var (
	ErrSlotTaken           = errors.New("appointment slot already taken")
	ErrAppointmentNotFound = errors.New("appointment not found")
)

type Appointment struct {
	ID    int
	Date  string
	Hour  string
	Name  string
	Email string
	Phone string
}
